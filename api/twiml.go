package api

import (
	"encoding/xml"
	"net/http"
)

// messagingResponse is the TwiML document returned to the messaging
// webhook. The provider sends its body to the user verbatim.
type messagingResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// respondTwiML writes a single-message TwiML reply.
func respondTwiML(w http.ResponseWriter, message string) {
	body, err := xml.Marshal(messagingResponse{Message: message})
	if err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml.Header))
	w.Write(body)
}
