// Package logger provides the structured, levelled logger for dukaan,
// built on log/slog.
//
// The extension over plain slog is WithCtx: it returns a logger with the
// current operation id already attached, so every log line emitted while
// one scan→add→reload chain is in flight carries the same op_id:
//
//	log := logger.WithCtx(ctx)
//	log.Info("item added", "bill_id", billID, "barcode", code)
//	// → time=... level=INFO msg="item added" op_id=a1b2c3d4 bill_id=BILL-7 barcode=890103...
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/dukaanlabs/dukaan/config"
	"github.com/dukaanlabs/dukaan/pkg/opid"
)

var L *slog.Logger

func init() {
	var handler slog.Handler

	switch config.AppEnv() {
	case "production", "prod":
		// Structured JSON for log aggregators.
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		// Human-readable for the shop counter / dev.
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// SetHandler swaps the underlying handler. Used when Mongo log shipping is
// configured and by tests that capture output.
func SetHandler(h slog.Handler) {
	L = slog.New(h)
	slog.SetDefault(L)
}

// WithCtx returns a *slog.Logger pre-tagged with the operation id found in
// ctx. If no operation id is present the base logger is returned unchanged.
func WithCtx(ctx context.Context) *slog.Logger {
	if id := opid.FromCtx(ctx); id != "" {
		return L.With("op_id", id)
	}
	return L
}

// WithBill returns a logger tagged with the active bill id.
func WithBill(ctx context.Context, billID string) *slog.Logger {
	return WithCtx(ctx).With("bill_id", billID)
}

// ── Short-hand helpers (base logger) ─────────────────────────────────────────

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
