package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareRecordsPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/hacks/{id}/similar", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := Middleware(mux)

	tests := []struct {
		path    string
		pattern string
		status  string
	}{
		{"/api/hacks/abc/similar", "GET /api/hacks/{id}/similar", "200"},
		{"/missing", "GET /missing", "404"},
		{"/nowhere", "unknown", "404"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, http.NoBody)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tt.pattern, tt.status))
			if val < 1 {
				t.Errorf("expected http_requests_total{path=%q,status=%q} >= 1, got %f", tt.pattern, tt.status, val)
			}
		})
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestNormalizePath(t *testing.T) {
	if got := normalizePath(""); got != "unknown" {
		t.Errorf("normalizePath(\"\") = %q", got)
	}
	if got := normalizePath("GET /health"); got != "GET /health" {
		t.Errorf("normalizePath = %q", got)
	}
}

func TestRecordCompletion(t *testing.T) {
	before := testutil.ToFloat64(completionsTotal.WithLabelValues("text", OutcomeDiscarded))
	RecordCompletion("text", OutcomeDiscarded)
	after := testutil.ToFloat64(completionsTotal.WithLabelValues("text", OutcomeDiscarded))

	if after != before+1 {
		t.Errorf("completions = %f, want %f", after, before+1)
	}
}

func TestObserveBackendAndImported(t *testing.T) {
	ObserveBackend("category", 10*time.Millisecond, nil)
	ObserveBackend("category", time.Millisecond, errors.New("boom"))
	if testutil.CollectAndCount(backendDuration) < 2 {
		t.Error("expected ok and error series")
	}

	before := testutil.ToFloat64(hacksImportedTotal)
	AddImported(3)
	AddImported(-1)
	if got := testutil.ToFloat64(hacksImportedTotal); got != before+3 {
		t.Errorf("imported = %f, want %f", got, before+3)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	SessionOpened()
	defer SessionClosed()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "hackfinder_live_sessions") {
		t.Error("expected live sessions gauge in exposition")
	}
}
