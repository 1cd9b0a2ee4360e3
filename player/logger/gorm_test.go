package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

func newCaptureDBLogger(level gormlogger.LogLevel) (*DBLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	base := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewDBLogger(base, level), buf
}

func stmt(sql string) func() (string, int64) {
	return func() (string, int64) { return sql, 1 }
}

func TestDBLoggerTraceError(t *testing.T) {
	l, buf := newCaptureDBLogger(gormlogger.Error)

	l.Trace(context.Background(), time.Now(), stmt("INSERT INTO albums"), errors.New("disk full"))

	if !strings.Contains(buf.String(), "query failed") {
		t.Fatalf("expected failed query to be logged, got %q", buf.String())
	}
}

func TestDBLoggerTraceRecordNotFoundIsQuiet(t *testing.T) {
	l, buf := newCaptureDBLogger(gormlogger.Error)

	l.Trace(context.Background(), time.Now(), stmt("SELECT * FROM albums"), gormlogger.ErrRecordNotFound)

	if buf.Len() != 0 {
		t.Fatalf("expected no log for record-not-found, got %q", buf.String())
	}
}

func TestDBLoggerTraceSlowQuery(t *testing.T) {
	l, buf := newCaptureDBLogger(gormlogger.Warn)

	begin := time.Now().Add(-2 * slowQueryThreshold)
	l.Trace(context.Background(), begin, stmt("SELECT * FROM albums"), nil)

	if !strings.Contains(buf.String(), "slow query") {
		t.Fatalf("expected slow query warning, got %q", buf.String())
	}
}

func TestDBLoggerTraceFastQueryNeedsInfoLevel(t *testing.T) {
	l, buf := newCaptureDBLogger(gormlogger.Warn)
	l.Trace(context.Background(), time.Now(), stmt("SELECT 1"), nil)
	if buf.Len() != 0 {
		t.Fatalf("expected fast query to be quiet at warn level, got %q", buf.String())
	}

	l, buf = newCaptureDBLogger(gormlogger.Info)
	l.Trace(context.Background(), time.Now(), stmt("SELECT 1"), nil)
	if !strings.Contains(buf.String(), "query") {
		t.Fatalf("expected fast query logged at info level, got %q", buf.String())
	}
}

func TestDBLoggerTraceSilent(t *testing.T) {
	l, buf := newCaptureDBLogger(gormlogger.Silent)

	l.Trace(context.Background(), time.Now().Add(-time.Second), stmt("SELECT 1"), errors.New("boom"))

	if buf.Len() != 0 {
		t.Fatalf("expected silent logger to stay quiet, got %q", buf.String())
	}
}

func TestDBLoggerLogModeKeepsReceiverLevel(t *testing.T) {
	l, buf := newCaptureDBLogger(gormlogger.Warn)

	derived := l.LogMode(gormlogger.Info)
	derived.Trace(context.Background(), time.Now(), stmt("SELECT 1"), nil)
	if buf.Len() == 0 {
		t.Fatal("expected derived info logger to log fast queries")
	}

	buf.Reset()
	l.Trace(context.Background(), time.Now(), stmt("SELECT 1"), nil)
	if buf.Len() != 0 {
		t.Fatalf("expected original warn logger unchanged, got %q", buf.String())
	}
}
