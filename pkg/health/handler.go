package health

import (
	"net/http"
	"strings"

	"github.com/designcise/hawkbit/internal"
)

// Probes registers liveness and readiness routes on a hawkbit router.
type Probes struct {
	checks Checks
	cfg    *config
}

// New creates the probe routes for checks.
//
//	app := hawkbit.New(hawkbit.WithHandlers(
//	    health.New(health.Checks{"metrics": metrics.Check}),
//	))
func New(checks Checks, opts ...Option) *Probes {
	return &Probes{checks: checks, cfg: newConfig(opts...)}
}

// Routes declares GET {prefix}/live and GET {prefix}/ready.
func (p *Probes) Routes(r internal.Router) {
	r.Route(p.cfg.prefix, func(r internal.Router) {
		r.GET("/live", p.live)
		r.GET("/ready", p.ready)
	})
}

func (p *Probes) live(r *http.Request, w *internal.Response) (*internal.Response, error) {
	return write(r, w, &Report{Status: StatusHealthy})
}

func (p *Probes) ready(r *http.Request, w *internal.Response) (*internal.Response, error) {
	return write(r, w, runChecks(r.Context(), p.checks, p.cfg))
}

// write answers with plain text for probes, JSON when asked for.
func write(r *http.Request, w *internal.Response, rep *Report) (*internal.Response, error) {
	if !rep.Healthy() {
		w.SetStatus(http.StatusServiceUnavailable)
	}
	w.Header().Set("Cache-Control", "no-store")

	if wantsJSON(r) {
		return w, w.WriteJSON(rep)
	}

	w.Header().Set("Content-Type", internal.ContentTypeText)
	body := "OK"
	if !rep.Healthy() {
		body = "Service Unavailable"
	}
	_, err := w.WriteString(body)
	return w, err
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
