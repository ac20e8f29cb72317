// Package logger builds the slog.Logger used across visitorid.
//
// New takes functional options for level, format, output and static
// attributes, and can wrap the handler with ContextExtractor callbacks that
// pull request-scoped values (such as the current fingerprint) out of the
// context on every record. WithEnvironment picks sensible defaults per
// deployment environment.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.AppEnv, "visitorid"),
//		logger.WithLevelName(cfg.LogLevel),
//	)
//	log.InfoContext(ctx, "report sent", logger.Page(label), logger.StatusCode(200))
//
// Attribute helpers in attr.go keep key names consistent. Error and Event
// return an empty Attr for zero inputs so callers need no nil checks.
package logger
