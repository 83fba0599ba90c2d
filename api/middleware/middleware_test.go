package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/logger"
	"github.com/lastros/pos-backend/pkg/metrics"
)

func TestRequestIDEchoesOrMints(t *testing.T) {
	var seen string
	handler := RequestID(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get(requestIDHeader)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "req-42" || rec.Header().Get(requestIDHeader) != "req-42" {
		t.Fatalf("expected echoed id, got %q", seen)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(rec.Header().Get(requestIDHeader)) != 36 {
		t.Fatalf("expected minted uuid, got %q", rec.Header().Get(requestIDHeader))
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestLoggingRecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := chi.NewRouter()
	router.Use(Logging(logger.Nop(), metrics.NewHTTPMetrics(reg)))
	router.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/123", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["route"] == "/products/{id}" && labels["status"] == "404" && m.GetHistogram().GetSampleCount() == 1 {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("expected latency sample labelled with the route pattern")
	}
}

func TestCORSPolicy(t *testing.T) {
	handler := CORS(config.CORSConfig{AllowedOrigins: []string{"http://caixa.local"}})(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/orders", nil)
	req.Header.Set("Origin", "http://caixa.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://caixa.local" {
		t.Fatalf("expected allowed origin, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS header for unknown origin, got %q", got)
	}
}
