package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestHealthRoutes(t *testing.T) {
	m := NewMonitor()
	h := NewHealthServer(m, "")
	r := chi.NewRouter()
	h.Routes(r)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No runs yet")

	m.RecordCriticalFailure(errors.New("smtp down"), time.Second)
	rec = get("/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "smtp down")

	rec = get("/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Last run failed")

	DiscoveryOutcomes.WithLabelValues("search", "success").Inc()
	rec = get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cinemai_discovery_outcomes_total")
}
