package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// slowQueryThreshold marks statements worth a warning even when they
// succeed.
const slowQueryThreshold = 200 * time.Millisecond

// DBLogger routes gorm's logger.Interface through slog so SQL traces
// land in the same sinks as the rest of the player's logs.
type DBLogger struct {
	base  *slog.Logger
	level gormlogger.LogLevel
}

// NewDBLogger creates a database logger filtering at the given level.
func NewDBLogger(base *slog.Logger, level gormlogger.LogLevel) *DBLogger {
	return &DBLogger{base: base.With("module", "db"), level: level}
}

// LogMode returns a derived logger at a different level. Gorm calls
// this for per-session overrides; the receiver keeps its own level.
func (l *DBLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &DBLogger{base: l.base, level: level}
}

func (l *DBLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.base.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *DBLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.base.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *DBLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.base.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

// Trace reports one executed statement. Failures log at error except
// record-not-found, which the repositories treat as a normal lookup
// miss. Slow statements log at warn, everything else only at info.
func (l *DBLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		l.base.ErrorContext(ctx, "query failed",
			"error", err, "sql", sql, "rows", rows, "elapsed", elapsed)
	case elapsed >= slowQueryThreshold && l.level >= gormlogger.Warn:
		l.base.WarnContext(ctx, "slow query",
			"sql", sql, "rows", rows, "elapsed", elapsed)
	case l.level >= gormlogger.Info:
		l.base.InfoContext(ctx, "query",
			"sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
