// Package eventbridge forwards lifecycle phases to a Watermill publisher,
// so other services can consume them from any Watermill transport
// (Go channels, Kafka, AMQP, NATS, ...).
package eventbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"

	"github.com/designcise/hawkbit/internal"
	"github.com/designcise/hawkbit/pkg/id"
	"github.com/designcise/hawkbit/pkg/logger"
)

// DefaultTopic is the topic events are published to.
const DefaultTopic = "hawkbit.lifecycle"

// Metadata keys set on every published message.
const (
	MetadataPhase       = "hawkbit_phase"
	MetadataLifecycleID = "hawkbit_lifecycle_id"
)

// ErrPublisherRequired is returned by New when no publisher is given.
var ErrPublisherRequired = errors.New("eventbridge: publisher is required")

// Payload is the JSON body of a published message.
type Payload struct {
	Time        time.Time `json:"time"`
	Phase       string    `json:"phase"`
	LifecycleID string    `json:"lifecycle_id,omitempty"`
	Method      string    `json:"method,omitempty"`
	Path        string    `json:"path,omitempty"`
	Error       string    `json:"error,omitempty"`
	ErrorType   string    `json:"error_type,omitempty"`
	Status      int       `json:"status,omitempty"`
}

// Bridge publishes lifecycle events.
type Bridge struct {
	publisher message.Publisher
	logger    *slog.Logger
	phases    map[string]struct{}
	topic     string
	strict    bool
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithTopic sets the topic messages are published to.
func WithTopic(topic string) Option {
	return func(b *Bridge) {
		if topic != "" {
			b.topic = topic
		}
	}
}

// WithPhases limits publishing to the given phases. By default every phase
// is published.
func WithPhases(phases ...string) Option {
	return func(b *Bridge) {
		for _, p := range phases {
			b.phases[p] = struct{}{}
		}
	}
}

// WithLogger sets the logger publish failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithStrict makes publish failures listener errors. Those errors then
// take the lifecycle's listener error paths; without it they are only
// logged.
func WithStrict() Option {
	return func(b *Bridge) {
		b.strict = true
	}
}

// New creates a bridge to pub.
func New(pub message.Publisher, opts ...Option) (*Bridge, error) {
	if pub == nil {
		return nil, ErrPublisherRequired
	}
	b := &Bridge{
		publisher: pub,
		logger:    logger.NewNope(),
		phases:    make(map[string]struct{}),
		topic:     DefaultTopic,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Subscribe registers the bridge for every phase on sink.
func (b *Bridge) Subscribe(sink internal.EventSink) {
	sink.AddListener(internal.PhaseAny, b.Listen)
}

// Listen publishes e unless its phase is filtered out.
func (b *Bridge) Listen(e *internal.Event) error {
	if len(b.phases) > 0 {
		if _, ok := b.phases[e.Name]; !ok {
			return nil
		}
	}

	msg, err := NewMessage(e)
	if err != nil {
		return b.fail(e, err)
	}
	if e.Request != nil {
		msg.SetContext(e.Request.Context())
	}
	if err := b.publisher.Publish(b.topic, msg); err != nil {
		return b.fail(e, fmt.Errorf("publish %s: %w", e.Name, err))
	}
	return nil
}

func (b *Bridge) fail(e *internal.Event, err error) error {
	ctx := context.Background()
	if e.Request != nil {
		ctx = e.Request.Context()
	}
	b.logger.WarnContext(ctx, "lifecycle event not published",
		slog.String("phase", e.Name),
		slog.String("topic", b.topic),
		slog.Any("error", err),
	)
	if b.strict {
		return err
	}
	return nil
}

// NewMessage converts e into a Watermill message with a ULID and a JSON payload.
func NewMessage(e *internal.Event) (*message.Message, error) {
	p := Payload{
		Time:  time.Now().UTC(),
		Phase: e.Name,
	}
	if l := e.Lifecycle(); l != nil {
		p.LifecycleID = l.ID()
	}
	if e.Request != nil {
		p.Method = e.Request.Method
		p.Path = e.Request.URL.Path
	}
	if e.Err != nil {
		p.Error = e.Err.Error()
		p.ErrorType = internal.ErrorType(e.Err)
		p.Status = internal.StatusFromError(e.Err)
	} else if e.Response != nil {
		p.Status = e.Response.StatusCode
	}

	data, err := sonic.ConfigStd.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.Name, err)
	}

	msg := message.NewMessage(id.NewULID(), data)
	msg.Metadata.Set(MetadataPhase, p.Phase)
	if p.LifecycleID != "" {
		msg.Metadata.Set(MetadataLifecycleID, p.LifecycleID)
	}
	return msg, nil
}

// Decode parses a message payload published by a Bridge.
func Decode(msg *message.Message) (Payload, error) {
	var p Payload
	if err := sonic.ConfigStd.Unmarshal(msg.Payload, &p); err != nil {
		return Payload{}, fmt.Errorf("decode lifecycle event: %w", err)
	}
	return p, nil
}
