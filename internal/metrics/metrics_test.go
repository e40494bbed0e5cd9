package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(OrdersScheduled.WithLabelValues(SourceAutofill))
	OrdersScheduled.WithLabelValues(SourceAutofill).Add(30)
	assert.InDelta(t, before+30, testutil.ToFloat64(OrdersScheduled.WithLabelValues(SourceAutofill)), 1e-9)

	expired := testutil.ToFloat64(PackagesExpired)
	PackagesExpired.Add(2)
	assert.InDelta(t, expired+2, testutil.ToFloat64(PackagesExpired), 1e-9)
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/menus/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/menus/42", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.GreaterOrEqual(t, testutil.CollectAndCount(httpDuration), 1)

	var found bool
	ch := make(chan prometheus.Metric, 64)
	httpDuration.Collect(ch)
	close(ch)
	for m := range ch {
		var pb dto.Metric
		if err := m.Write(&pb); err != nil {
			continue
		}
		labels := map[string]string{}
		for _, l := range pb.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		if labels["route"] == "/menus/{id}" && labels["status"] == "418" {
			found = true
		}
	}
	assert.True(t, found, "route label must hold the chi pattern")
}
