package eventbridge_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/require"

	"github.com/designcise/hawkbit/internal"
	"github.com/designcise/hawkbit/pkg/eventbridge"
	"github.com/designcise/hawkbit/pkg/id"
)

func newPubSub(t *testing.T) *gochannel.GoChannel {
	t.Helper()

	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 32}, watermill.NopLogger{})
	t.Cleanup(func() { _ = ps.Close() })
	return ps
}

func receive(t *testing.T, messages <-chan *message.Message, n int) []eventbridge.Payload {
	t.Helper()

	out := make([]eventbridge.Payload, 0, n)
	for len(out) < n {
		select {
		case msg := <-messages:
			require.True(t, id.Valid(msg.UUID))
			p, err := eventbridge.Decode(msg)
			require.NoError(t, err)
			require.Equal(t, p.Phase, msg.Metadata.Get(eventbridge.MetadataPhase))
			msg.Ack()
			out = append(out, p)
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d of %d messages", len(out), n)
		}
	}
	return out
}

func newApp(b *eventbridge.Bridge) *internal.App {
	app := internal.New(internal.WithHandlers(internal.RoutesFunc(func(r internal.Router) {
		r.GET("/", func(_ *http.Request, w *internal.Response) (*internal.Response, error) {
			return w, nil
		})
		r.GET("/denied", func(*http.Request, *internal.Response) (*internal.Response, error) {
			return nil, internal.NewHTTPError(http.StatusForbidden, "denied")
		})
	})))
	b.Subscribe(app.Events())
	return app
}

func TestBridge_PublishesEveryPhase(t *testing.T) {
	t.Parallel()

	ps := newPubSub(t)
	messages, err := ps.Subscribe(context.Background(), eventbridge.DefaultTopic)
	require.NoError(t, err)

	b, err := eventbridge.New(ps)
	require.NoError(t, err)
	app := newApp(b)

	require.NoError(t, app.Run(httptest.NewRequest(http.MethodGet, "/", nil)))

	got := receive(t, messages, 5)
	phases := make([]string, 0, len(got))
	for _, p := range got {
		phases = append(phases, p.Phase)
		require.NotEmpty(t, p.LifecycleID)
		require.Equal(t, got[0].LifecycleID, p.LifecycleID)
	}
	require.ElementsMatch(t, []string{
		internal.PhaseRequestReceived,
		internal.PhaseResponseCreated,
		internal.PhaseResponseSent,
		internal.PhaseLifecycleComplete,
		internal.PhaseShutdown,
	}, phases)
}

func TestBridge_PhaseFilterAndTopic(t *testing.T) {
	t.Parallel()

	ps := newPubSub(t)
	messages, err := ps.Subscribe(context.Background(), "errors")
	require.NoError(t, err)

	b, err := eventbridge.New(ps,
		eventbridge.WithTopic("errors"),
		eventbridge.WithPhases(internal.PhaseLifecycleError),
	)
	require.NoError(t, err)
	app := newApp(b)

	res, err := app.Handle(httptest.NewRequest(http.MethodGet, "/denied", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, res.StatusCode)

	got := receive(t, messages, 1)
	require.Equal(t, internal.PhaseLifecycleError, got[0].Phase)
	require.Equal(t, http.StatusForbidden, got[0].Status)
	require.Equal(t, "denied", got[0].Error)
	require.Equal(t, "internal.HTTPError", got[0].ErrorType)
	require.Equal(t, "/denied", got[0].Path)

	select {
	case msg := <-messages:
		t.Fatalf("unexpected message for phase %s", msg.Metadata.Get(eventbridge.MetadataPhase))
	case <-time.After(50 * time.Millisecond):
	}
}

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error { return errors.New("broker down") }
func (failingPublisher) Close() error                              { return nil }

func TestBridge_PublishFailure(t *testing.T) {
	t.Parallel()

	t.Run("logged by default", func(t *testing.T) {
		t.Parallel()

		b, err := eventbridge.New(failingPublisher{})
		require.NoError(t, err)

		res, err := newApp(b).Handle(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.StatusCode)
	})

	t.Run("strict returns the error", func(t *testing.T) {
		t.Parallel()

		b, err := eventbridge.New(failingPublisher{}, eventbridge.WithStrict())
		require.NoError(t, err)

		err = b.Listen(internal.NewEvent(internal.PhaseRequestReceived, nil))
		require.ErrorContains(t, err, "broker down")
	})
}

func TestNew_RequiresPublisher(t *testing.T) {
	t.Parallel()

	_, err := eventbridge.New(nil)
	require.ErrorIs(t, err, eventbridge.ErrPublisherRequired)
}
