package internal_test

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/designcise/hawkbit/internal"
)

// writeBody returns a handler that writes body into the in-flight response.
func writeBody(body string) internal.HandlerFunc {
	return func(_ *http.Request, w *internal.Response) (*internal.Response, error) {
		_, err := w.WriteString(body)
		return w, err
	}
}

// failWith returns a handler that fails with err.
func failWith(err error) internal.HandlerFunc {
	return func(_ *http.Request, w *internal.Response) (*internal.Response, error) {
		return nil, err
	}
}

// routes registers fn as the app's only handler.
func routes(fn func(r internal.Router)) internal.Option {
	return internal.WithHandlers(internal.RoutesFunc(fn))
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// phaseRecorder records the names of every emitted phase.
type phaseRecorder struct {
	mu     sync.Mutex
	phases []string
}

func (p *phaseRecorder) listen(e *internal.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phases = append(p.phases, e.Name)
	return nil
}

func (p *phaseRecorder) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.phases...)
}

func (p *phaseRecorder) count(name string) int {
	n := 0
	for _, ph := range p.names() {
		if ph == name {
			n++
		}
	}
	return n
}
