package observability_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"github.com/designcise/hawkbit/internal"
	"github.com/designcise/hawkbit/pkg/observability"
)

func newApp(t *testing.T, m *observability.Metrics) *internal.App {
	t.Helper()

	app := internal.New(internal.WithHandlers(internal.RoutesFunc(func(r internal.Router) {
		r.GET("/", func(_ *http.Request, w *internal.Response) (*internal.Response, error) {
			_, err := w.WriteString("ok")
			return w, err
		})
		r.GET("/fail", func(*http.Request, *internal.Response) (*internal.Response, error) {
			return nil, errors.New("boom")
		})
	})))
	m.Subscribe(app.Events())
	return app
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	app := newApp(t, m)

	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	expected := `
# HELP hawkbit_lifecycle_errors_total Errors translated by the lifecycle, by response status
# TYPE hawkbit_lifecycle_errors_total counter
hawkbit_lifecycle_errors_total{status="404"} 1
hawkbit_lifecycle_errors_total{status="500"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "hawkbit_lifecycle_errors_total"))

	require.InDelta(t, 3, metricValue(t, reg, "hawkbit_lifecycle_phases_total", "phase", internal.PhaseRequestReceived), 0)
	require.InDelta(t, 3, metricValue(t, reg, "hawkbit_lifecycle_phases_total", "phase", internal.PhaseShutdown), 0)
	require.InDelta(t, 2, metricValue(t, reg, "hawkbit_lifecycle_phases_total", "phase", internal.PhaseLifecycleError), 0)
	require.InDelta(t, 1, metricValue(t, reg, "hawkbit_lifecycle_duration_seconds", "outcome", "ok"), 0)
	require.InDelta(t, 2, metricValue(t, reg, "hawkbit_lifecycle_duration_seconds", "outcome", "error"), 0)
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	app := newApp(t, m)
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `hawkbit_lifecycle_phases_total{phase="response.sent"} 1`)
}

func TestMetrics_EmbeddedApp(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	inner := newApp(t, m)
	outer := internal.New(
		internal.WithMiddleware(inner.AsMiddleware()),
		internal.WithHandlers(internal.RoutesFunc(func(r internal.Router) {
			r.GET("/outer", func(_ *http.Request, w *internal.Response) (*internal.Response, error) {
				_, err := w.WriteString("outer")
				return w, err
			})
		})),
	)

	for range 1000 {
		rec := httptest.NewRecorder()
		outer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/outer", nil))
		require.Equal(t, "outer", rec.Body.String())
	}
	for range 10 {
		rec := httptest.NewRecorder()
		outer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, "ok", rec.Body.String())
	}

	expected := `
# HELP hawkbit_lifecycle_pending Passes started and not yet shut down
# TYPE hawkbit_lifecycle_pending gauge
hawkbit_lifecycle_pending 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "hawkbit_lifecycle_pending"))
	require.InDelta(t, 10, metricValue(t, reg, "hawkbit_lifecycle_phases_total", "phase", internal.PhaseRequestReceived), 0)
	require.InDelta(t, 10, metricValue(t, reg, "hawkbit_lifecycle_phases_total", "phase", internal.PhaseShutdown), 0)
	require.InDelta(t, 10, metricValue(t, reg, "hawkbit_lifecycle_duration_seconds", "outcome", "ok"), 0)
}

func TestMetrics_PendingTTL(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg, observability.WithPendingTTL(time.Millisecond))
	require.NoError(t, err)
	app := newApp(t, m)

	pending := func(n int) string {
		return `
# HELP hawkbit_lifecycle_pending Passes started and not yet shut down
# TYPE hawkbit_lifecycle_pending gauge
hawkbit_lifecycle_pending ` + strconv.Itoa(n) + "\n"
	}

	_, err = app.Handle(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(pending(1)), "hawkbit_lifecycle_pending"))

	time.Sleep(5 * time.Millisecond)
	app.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(pending(0)), "hawkbit_lifecycle_pending"))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	require.Error(t, err)
}

// metricValue returns the counter value or histogram sample count of the
// series of name whose label equals value.
func metricValue(t *testing.T, g prometheus.Gatherer, name, label, value string) float64 {
	t.Helper()

	families, err := g.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if !hasLabel(metric, label, value) {
				continue
			}
			if h := metric.GetHistogram(); h != nil {
				return float64(h.GetSampleCount())
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func hasLabel(m *dto.Metric, name, value string) bool {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}

func TestMetrics_Check(t *testing.T) {
	t.Parallel()

	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	require.NoError(t, m.Check(context.Background()))
}
