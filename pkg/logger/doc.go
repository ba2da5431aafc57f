// Package logger provides structured logging with context extraction and Sentry integration.
//
// Loggers are plain *slog.Logger values. The package adds:
//   - Context extractors that inject request-scoped values (lifecycle IDs, request IDs) per log call
//   - WithExtractors, which adds extraction to any slog.Handler
//   - Fanout, which writes each record to several handlers
//   - JSON or text output at a configurable level
//   - Optional Sentry forwarding with fallback to stdout when unconfigured
//
// # Basic Usage
//
//	log := logger.New(hawkbit.LifecycleIDExtractor())
//	log.InfoContext(r.Context(), "request processed", slog.Int("status", 200))
//	// {"level":"INFO","msg":"request processed","status":200,"lifecycle_id":"..."}
//
// # Options
//
//	lvl, err := logger.ParseLevel(cfg.String("log.level", "info"))
//	if err != nil {
//		return err
//	}
//	log := logger.NewWithOptions(logger.Options{
//		Format: logger.FormatText,
//		Level:  lvl,
//		Sentry: logger.SentryConfig{DSN: os.Getenv("HAWKBIT_SENTRY_DSN")},
//	})
//	defer logger.Flush(2 * time.Second)
//
// Errors create Sentry issues; warnings are stored as Sentry logs unless
// MinLevel is slog.LevelError. With an empty DSN nothing is sent to Sentry.
//
// # Context Extractors
//
//	type ContextExtractor func(ctx context.Context) (slog.Attr, bool)
//
// Extractors run on every log call. Return false to skip the attribute.
//
// NewNope returns a logger that discards everything; it is the default
// when an application configures no logger.
package logger
