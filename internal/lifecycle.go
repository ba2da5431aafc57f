package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/designcise/hawkbit/pkg/logger"
)

// Catch selects whether the error translator converts an error into a
// response or propagates it.
type Catch int

const (
	// CatchDefault defers to the "error.catch" configuration key, then to true.
	CatchDefault Catch = iota
	CatchOn
	CatchOff
)

type lifecycleCtxKey struct{}

// Lifecycle drives one request-handling pass through the phases
// request.received, response.created, response.sent, lifecycle.complete
// and system.shutdown. It owns all per-request state and must not be
// shared between requests or goroutines.
type Lifecycle struct {
	app         *App
	request     *http.Request
	event       *Event
	emitter     ResponseEmitter
	id          string
	contentType string
	output      outputBuffer
	stack       ExceptionStack
	errored     bool
	shutdown    bool
	held        bool // the caller shuts the pass down itself
}

// NewLifecycle starts a fresh pass over the app's collaborators.
func (a *App) NewLifecycle() *Lifecycle {
	l := &Lifecycle{
		app:     a,
		id:      uuid.NewString(),
		emitter: a.emitter,
	}
	l.event = NewEvent("", l)
	return l
}

// LoggerFromContext returns the logger of the app whose lifecycle is bound
// to ctx, or a logger that discards everything.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if l, ok := LifecycleFromContext(ctx); ok {
		return l.app.logger
	}
	return logger.NewNope()
}

// LifecycleFromContext returns the lifecycle bound to a request context.
func LifecycleFromContext(ctx context.Context) (*Lifecycle, bool) {
	if ctx == nil {
		return nil, false
	}
	l, ok := ctx.Value(lifecycleCtxKey{}).(*Lifecycle)
	return l, ok
}

// ID returns the unique identifier of the pass.
func (l *Lifecycle) ID() string { return l.id }

// Request returns the bound request, nil before Handle.
func (l *Lifecycle) Request() *http.Request { return l.request }

// ContentType returns the content type observed on the request, or on the
// response once it has been created.
func (l *Lifecycle) ContentType() string { return l.contentType }

// IsError reports whether the error translator ran during this pass.
func (l *Lifecycle) IsError() bool { return l.errored }

func (l *Lifecycle) Exceptions() *ExceptionStack { return &l.stack }

func (l *Lifecycle) Event() *Event { return l.event }

// Output returns a buffer for diagnostic output produced while handling.
// Its content is handed to system.shutdown listeners in Event.Output.
func (l *Lifecycle) Output() io.Writer { return &l.output }

// outputBuffer is safe for writers that outlive the pass, such as a
// handler abandoned by a deadline.
type outputBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// drain returns the buffered bytes and empties the buffer.
func (b *outputBuffer) drain() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := slices.Clone(b.buf.Bytes())
	b.buf.Reset()
	return out
}

// NewResponse creates an empty response whose content type follows the
// negotiation of the current request. A content type seen on the request
// is delegated to the response.
func (l *Lifecycle) NewResponse() *Response {
	res := NewResponse(ResponseContentType(l.negotiation(l.request)))
	if l.contentType != "" && !l.app.cli {
		res.Header().Set("Content-Type", l.contentType)
	}
	return res
}

// Handle runs the request through the middleware chain and the router.
// Errors are translated into responses unless they are fatal or catching
// is disabled while errors are shown. A nil w is replaced by a fresh
// response.
func (l *Lifecycle) Handle(r *http.Request, w *Response, catch Catch) (*Response, error) {
	if r == nil {
		return nil, ErrNoRequest
	}
	r = l.bind(r)
	l.contentType = r.Header.Get("Content-Type")
	if w == nil {
		w = l.NewResponse()
	}

	onError := l.errorFunc(catch)

	var (
		res *Response
		err error
	)
	l.event.Request = r
	l.event.Response = w
	if lerr := l.emit(PhaseRequestReceived); lerr != nil {
		res, err = onError(lerr, r, w, nil)
	} else {
		if l.event.Request != nil {
			r = l.event.Request
		}
		res, err = l.app.runner.Run(r, w, l.app.router.Dispatch, onError)
	}
	if err != nil {
		return nil, l.abort(err)
	}

	l.event.Request = r
	l.event.Response = res
	if lerr := l.emit(PhaseResponseCreated); lerr != nil {
		if res, err = onError(lerr, r, res, nil); err != nil {
			return nil, l.abort(err)
		}
	} else if l.event.Response != nil {
		res = l.event.Response
	}

	if res == nil {
		return nil, l.abort(&ContractViolationError{Subject: "response", Want: "a non-nil *Response"})
	}
	if ct := res.Header().Get("Content-Type"); ct != "" {
		l.contentType = ct
	}
	return res, nil
}

// Run handles the request, emits the response, then fires response.sent,
// lifecycle.complete when termination is enabled, and finally
// system.shutdown. Shutdown runs on every exit path. Errors from listeners
// of the later phases are logged and joined into the result.
func (l *Lifecycle) Run(r *http.Request, w *Response) (err error) {
	var res *Response
	defer func() {
		if serr := l.Shutdown(res); serr != nil {
			err = errors.Join(err, serr)
		}
	}()

	res, err = l.pass(r, w)
	return err
}

// pass handles r, emits the response and terminates without shutting
// down. The response is returned whenever one was created.
func (l *Lifecycle) pass(r *http.Request, w *Response) (*Response, error) {
	res, err := l.Handle(r, w, CatchDefault)
	if err != nil {
		return nil, err
	}
	r = l.event.Request

	if err := l.send(res); err != nil {
		return res, err
	}

	var errs []error
	l.event.Request = r
	l.event.Response = res
	if lerr := l.emit(PhaseResponseSent); lerr != nil {
		l.logError("response.sent listener failed", lerr)
		errs = append(errs, lerr)
	}
	if l.app.terminate {
		if terr := l.Terminate(r, res); terr != nil {
			l.logError("lifecycle.complete listener failed", terr)
			errs = append(errs, terr)
		}
	}
	return res, errors.Join(errs...)
}

// Terminate signals that the request/response cycle is complete.
func (l *Lifecycle) Terminate(r *http.Request, res *Response) error {
	l.event.Request = r
	l.event.Response = res
	return l.emit(PhaseLifecycleComplete)
}

// Shutdown releases the pass: it closes the response body, hands the
// buffered output to listeners and emits system.shutdown. Only the first
// call has an effect.
func (l *Lifecycle) Shutdown(res *Response) error {
	return l.release(res, true)
}

// release emits system.shutdown once. The body of res is closed only
// when closeBody is set; an embedded pass hands its response on.
func (l *Lifecycle) release(res *Response, closeBody bool) error {
	if l.shutdown {
		return nil
	}
	l.shutdown = true

	if closeBody && res != nil && res.Body != nil && res.Body.IsReadable() {
		_ = res.Body.Close()
	}
	l.event.Output = l.output.drain()
	l.event.Response = res

	if err := l.emit(PhaseShutdown); err != nil {
		l.logError("system.shutdown listener failed", err)
		return err
	}
	return nil
}

// HandleError translates raw into an error response. raw may be an error,
// a string, a slice, a scalar, any other value, or an ErrorProducer whose
// result is translated instead. The rendered message is written only when
// the error response body is writable and still empty after the
// lifecycle.error listeners ran. With catching disabled and errors shown,
// the pass is shut down and the normalized error is returned.
func (l *Lifecycle) HandleError(raw any, r *http.Request, w *Response, catch Catch) (*Response, error) {
	if r == nil {
		r = l.request
	}
	err := Normalize(raw, r, w)
	l.errored = true
	l.stack.Push(err)
	l.notify(r, err)

	show := l.app.showErrors()
	if !l.resolveCatch(catch) && show {
		l.stop(w)
		return nil, err
	}

	message := l.render(r, err, show)

	errRes := l.NewResponse()
	l.event.Err = err
	l.event.Request = r
	l.event.Response = w
	l.event.ErrorResponse = errRes
	if lerr := l.emit(PhaseLifecycleError); lerr != nil {
		l.stack.Push(lerr)
		l.logError("lifecycle.error listener failed", lerr)
	}
	if l.event.ErrorResponse != nil {
		errRes = l.event.ErrorResponse
	}

	if errRes.Body != nil && !errRes.Body.IsWritable() {
		return errRes, nil
	}
	if errRes.Body == nil || errRes.Body.Len() == 0 {
		_, _ = errRes.WriteString(message)
	}
	return errRes, nil
}

func (l *Lifecycle) errorFunc(catch Catch) ErrorFunc {
	return func(err error, r *http.Request, w *Response, _ *Response) (*Response, error) {
		if IsFatal(err) {
			return nil, err
		}
		res, herr := l.HandleError(err, r, w, catch)
		if herr != nil {
			return nil, herr
		}
		return res.SetStatus(StatusFromError(err)), nil
	}
}

// abort shuts the pass down after a fatal or escalated error.
func (l *Lifecycle) abort(err error) error {
	if IsFatal(err) {
		l.stack.Push(err)
		l.logError("lifecycle aborted", err)
	}
	l.stop(nil)
	return err
}

// stop shuts the pass down on an error path, unless it is held by a
// caller that shuts it down after reporting the error.
func (l *Lifecycle) stop(res *Response) {
	if !l.held {
		_ = l.Shutdown(res)
	}
}

func (l *Lifecycle) send(res *Response) error {
	ctx := l.context()
	err := l.emitter.Emit(ctx, res)
	if err == nil {
		return nil
	}
	if !l.app.forceEmit {
		return fmt.Errorf("emit response: %w", err)
	}
	l.app.logger.WarnContext(ctx, "response emitter failed, writing body to fallback output",
		slog.String("lifecycle_id", l.id),
		slog.Any("error", err),
	)
	if _, werr := io.WriteString(l.app.fallback, res.Body.String()); werr != nil {
		return errors.Join(fmt.Errorf("emit response: %w", err), werr)
	}
	return nil
}

func (l *Lifecycle) render(r *http.Request, err error, show bool) (message string) {
	mode := SelectRenderMode(l.negotiation(r), show)
	fallback := ErrorType(err) + ": " + err.Error()

	defer func() {
		if v := recover(); v != nil {
			message = l.renderFault(&PanicError{Value: v, Stack: debug.Stack()}, mode, fallback)
		}
	}()

	out, rerr := l.app.renderer.Render(err, mode)
	if rerr != nil {
		return l.renderFault(rerr, mode, fallback)
	}
	return out
}

func (l *Lifecycle) renderFault(err error, mode RenderMode, fallback string) string {
	fault := &RenderFaultError{Err: err, Mode: mode}
	l.stack.Push(fault)
	l.logError("error rendering failed", fault)

	l.event.Err = fault
	if lerr := l.emit(PhaseHandleError); lerr != nil {
		l.logError("handle.error listener failed", lerr)
	}
	return fallback
}

func (l *Lifecycle) notify(r *http.Request, err error) {
	ctx := l.context()
	if r != nil {
		ctx = r.Context()
	}
	l.app.logger.ErrorContext(ctx, "request failed",
		slog.String("lifecycle_id", l.id),
		slog.String("error_type", ErrorType(err)),
		slog.Any("error", err),
	)

	l.event.Err = err
	l.event.Request = r
	if lerr := l.emit(PhaseRuntimeError); lerr != nil {
		l.logError("runtime.error listener failed", lerr)
	}
}

func (l *Lifecycle) resolveCatch(catch Catch) bool {
	switch catch {
	case CatchOn:
		return true
	case CatchOff:
		return false
	default:
		return l.app.config.Bool(ConfigErrorCatch, true)
	}
}

func (l *Lifecycle) negotiation(r *http.Request) Negotiation {
	return NewNegotiation(r, l.contentType, l.app.cli)
}

// bind attaches the lifecycle to the request context. The first request
// seen becomes the bound request of the pass.
func (l *Lifecycle) bind(r *http.Request) *http.Request {
	if cur, ok := LifecycleFromContext(r.Context()); !ok || cur != l {
		r = r.WithContext(context.WithValue(r.Context(), lifecycleCtxKey{}, l))
	}
	if l.request == nil {
		l.request = r
	}
	return r
}

func (l *Lifecycle) emit(name string) error {
	l.event.Name = name
	return l.app.events.Emit(l.event)
}

func (l *Lifecycle) context() context.Context {
	if l.request != nil {
		return l.request.Context()
	}
	return context.Background()
}

func (l *Lifecycle) logError(msg string, err error) {
	l.app.logger.ErrorContext(l.context(), msg,
		slog.String("lifecycle_id", l.id),
		slog.Any("error", err),
	)
}
