package ingest

import (
	"regexp"
	"strings"
)

var (
	urlPattern = regexp.MustCompile(`https?://[^\s]+`)
	// The override set deliberately excludes "other": a manual tag only
	// makes sense as a positive assignment.
	categoryTagPattern = regexp.MustCompile(`#(fitness|coding|food|travel|design|fashion|business|education|entertainment)`)
)

// ParseMessage pulls the first URL and the first category hashtag out
// of a message body. Either may be absent; order does not matter.
// The returned category is the bare tag name without the "#".
func ParseMessage(body string) (targetURL, category string) {
	if m := urlPattern.FindString(body); m != "" {
		targetURL = m
	}
	if m := categoryTagPattern.FindStringSubmatch(strings.ToLower(body)); m != nil {
		category = m[1]
	}
	return targetURL, category
}

// NormalizePhone strips the messaging-channel prefix from a webhook
// sender identifier, leaving the bare phone number.
func NormalizePhone(phone string) string {
	return strings.TrimSpace(strings.TrimPrefix(phone, "whatsapp:"))
}
