package extract

import (
	"testing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TestHTTPClientUsesOtelTransport verifies the shared fetcher client
// is instrumented with otelhttp.Transport for trace propagation
func TestHTTPClientUsesOtelTransport(t *testing.T) {
	e := New(DefaultConfig())

	_, ok := e.httpClient.Transport.(*otelhttp.Transport)
	if !ok {
		t.Error("❌ Extractor HTTP client does not use otelhttp.Transport for trace propagation")
		t.Error("   This will cause traces to 'go dead' when fetchers call external services")
	} else {
		t.Log("✅ Extractor HTTP client correctly uses otelhttp.Transport")
		t.Log("   Trace context will be propagated when fetching external URLs")
	}
}
