package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerServesPrometheusFormat(t *testing.T) {
	ChannelsKnown.Set(3)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("got status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "epgrabber_channels_known") {
		t.Errorf("expected epgrabber_channels_known in output, got:\n%s", rec.Body.String())
	}
}
