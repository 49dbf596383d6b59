// Package logger builds configured log/slog loggers.
//
// It keeps logger construction in one place so every binary emits the same
// shape of logs: JSON for production aggregation, text for local development,
// with static service attributes attached to every record.
//
//	log := logger.New(
//		logger.WithFormat(logger.FormatJSON),
//		logger.WithLevel(slog.LevelInfo),
//		logger.WithAttr(slog.String("service", "membershipd")),
//	)
package logger
