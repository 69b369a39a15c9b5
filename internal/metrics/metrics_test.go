package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/*", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/items/*", "418"))
	for _, p := range []string{"/items/a.txt", "/items/b/c.txt"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/items/*", "418"))
	if after-before != 2 {
		t.Errorf("requests recorded = %v, want 2", after-before)
	}
}

func TestRecordOperation(t *testing.T) {
	ok := itemOperationsTotal.WithLabelValues("copy", "ok")
	failed := itemOperationsTotal.WithLabelValues("copy", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordOperation("copy", nil)
	RecordOperation("copy", errors.New("boom"))

	if testutil.ToFloat64(ok)-okBefore != 1 || testutil.ToFloat64(failed)-failedBefore != 1 {
		t.Error("operation counters not updated")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordUpload(10)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "storagekit_bytes_uploaded_total") {
		t.Error("metrics output missing upload counter")
	}
}
