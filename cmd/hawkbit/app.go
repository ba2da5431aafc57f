package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/designcise/hawkbit"
	"github.com/designcise/hawkbit/middlewares"
	"github.com/designcise/hawkbit/pkg/eventbridge"
	"github.com/designcise/hawkbit/pkg/health"
	"github.com/designcise/hawkbit/pkg/logger"
	"github.com/designcise/hawkbit/pkg/observability"
)

// demo bundles the application with the collaborators that outlive it.
type demo struct {
	app     *hawkbit.App
	log     *slog.Logger
	metrics *observability.Metrics
	bus     *gochannel.GoChannel
}

// newDemo loads configuration and assembles the application. Extra options
// are applied last.
func newDemo(flags *globalFlags, extra ...hawkbit.Option) (*demo, error) {
	cfg, err := hawkbit.LoadConfig(flags.config)
	if err != nil {
		return nil, err
	}

	// Logs go to stderr so CLI mode keeps stdout for the response body.
	logOpts, levelErr := cfg.LoggerOptions()
	logOpts.Output = os.Stderr
	log := logger.NewWithOptions(logOpts,
		hawkbit.LifecycleIDExtractor(),
		middlewares.RequestIDExtractor(),
	).With("component", "hawkbit")
	if levelErr != nil {
		log.Warn("invalid log level, using info", slog.Any("error", levelErr))
	}

	metrics, err := observability.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("create metrics: %w", err)
	}

	events := hawkbit.NewEmitter()
	metrics.Subscribe(events)

	d := &demo{log: log, metrics: metrics}
	if flags.events {
		d.bus = gochannel.NewGoChannel(gochannel.Config{}, watermill.NewSlogLogger(log))
		bridge, err := eventbridge.New(d.bus, eventbridge.WithLogger(log))
		if err != nil {
			return nil, err
		}
		bridge.Subscribe(events)
	}

	mw := []hawkbit.Middleware{
		middlewares.RequestID(),
		middlewares.Recover(),
		middlewares.Timeout(middlewares.DefaultTimeout),
		observability.Tracing(nil),
	}
	if len(flags.corsOrigins) > 0 {
		mw = append(mw, middlewares.CORS(middlewares.WithAllowOrigins(flags.corsOrigins...)))
	}

	opts := []hawkbit.Option{
		hawkbit.WithConfig(cfg),
		hawkbit.WithCustomLogger(log),
		hawkbit.WithEventSink(events),
		hawkbit.WithMiddleware(mw...),
		hawkbit.WithHandlers(
			pages{},
			health.New(health.Checks{"metrics": metrics.Check}, health.WithLogger(log)),
			hawkbit.RoutesFunc(func(r hawkbit.Router) {
				r.Mount("/metrics", metrics.Handler())
			}),
		),
	}
	d.app = hawkbit.New(append(opts, extra...)...)
	return d, nil
}

// watchEvents logs every lifecycle event published on the bus until ctx ends.
func (d *demo) watchEvents(ctx context.Context) error {
	if d.bus == nil {
		return nil
	}
	msgs, err := d.bus.Subscribe(ctx, eventbridge.DefaultTopic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", eventbridge.DefaultTopic, err)
	}
	go func() {
		for msg := range msgs {
			p, err := eventbridge.Decode(msg)
			if err != nil {
				d.log.WarnContext(ctx, "undecodable lifecycle event", slog.Any("error", err))
				msg.Nack()
				continue
			}
			d.log.DebugContext(ctx, "lifecycle event",
				slog.String("phase", p.Phase),
				slog.String("lifecycle_id", p.LifecycleID),
				slog.String("path", p.Path),
			)
			msg.Ack()
		}
	}()
	return nil
}

// close releases the bus and flushes buffered Sentry events.
func (d *demo) close(context.Context) error {
	var err error
	if d.bus != nil {
		err = d.bus.Close()
	}
	logger.Flush(2 * time.Second)
	return err
}

// pages is the demo route set.
type pages struct{}

func (pages) Routes(r hawkbit.Router) {
	r.GET("/", func(_ *http.Request, w *hawkbit.Response) (*hawkbit.Response, error) {
		_, err := w.WriteString("<h1>It works!</h1>")
		return w, err
	})
	r.GET("/hello/{name}", func(req *http.Request, w *hawkbit.Response) (*hawkbit.Response, error) {
		return w, w.WriteJSON(map[string]string{
			"hello":      hawkbit.Param[string](req, "name"),
			"request_id": middlewares.GetRequestID(req.Context()),
		})
	})
	r.GET("/fail", func(*http.Request, *hawkbit.Response) (*hawkbit.Response, error) {
		return nil, errors.New("intentional failure")
	})
	r.GET("/panic", func(*http.Request, *hawkbit.Response) (*hawkbit.Response, error) {
		panic("intentional panic")
	})
}
