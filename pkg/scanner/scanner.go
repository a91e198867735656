// Package scanner drives the barcode capture hardware.
//
// The engine is deliberately single-shot: one Start yields at most one
// decoded value, and the capture device is released before the value is
// handed to the caller. Holding the device across the handler invites the
// double-capture and stuck-device bugs that plagued earlier terminals, so
// the contract is release-first, emit-second, and the caller restarts the
// engine when it wants the next scan.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dukaanlabs/dukaan/pkg/event"
	"github.com/dukaanlabs/dukaan/pkg/logger"
	"github.com/dukaanlabs/dukaan/pkg/metrics"
)

// ErrNoDevice is returned by Start when no capture device is attached.
var ErrNoDevice = errors.New("scanner: no capture device available")

// Engine manages one capture device at a time.
type Engine struct {
	provider Provider
	decoder  Decoder

	mu     sync.Mutex
	active *capture
}

type capture struct {
	source Source
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// New builds an Engine over the given device provider. The decoder defaults
// to the retail SymbologyDecoder.
func New(provider Provider, opts ...EngineOption) *Engine {
	e := &Engine{provider: provider, decoder: SymbologyDecoder{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EngineOption tweaks an Engine.
type EngineOption func(*Engine)

// WithDecoder replaces the default decoder.
func WithDecoder(d Decoder) EngineOption {
	return func(e *Engine) { e.decoder = d }
}

// Start acquires a device and listens until one capture decodes. The decoded
// value and its symbology go to onDecode exactly once per Start, after the
// device has been released. onError fires at most once, for terminal
// failures only; invalid captures are skipped and listening continues.
//
// If a previous Start is still listening it is stopped first.
func (e *Engine) Start(ctx context.Context, onDecode func(code string, sym Symbology), onError func(error)) error {
	e.Stop()

	devices, err := e.provider.Devices()
	if err != nil {
		return fmt.Errorf("scanner: enumerate devices: %w", err)
	}
	if len(devices) == 0 {
		metrics.ScansTotal.WithLabelValues("no_device").Inc()
		return ErrNoDevice
	}

	dev := preferDevice(devices)
	source, err := dev.Open()
	if err != nil {
		return fmt.Errorf("scanner: open %s: %w", dev.Label(), err)
	}

	cctx, cancel := context.WithCancel(ctx)
	c := &capture{source: source, cancel: cancel, done: make(chan struct{})}

	e.mu.Lock()
	e.active = c
	e.mu.Unlock()
	metrics.ScannerActive.Set(1)
	logger.WithCtx(ctx).Debug("scanner started", "device", dev.Label())

	go e.listen(cctx, c, onDecode, onError)
	return nil
}

func (e *Engine) listen(ctx context.Context, c *capture, onDecode func(string, Symbology), onError func(error)) {
	for {
		raw, err := c.source.Read(ctx)
		if err != nil {
			e.release(c)
			// A cancelled context means Stop (or the caller) already asked
			// us to let go; only genuine device failures are reported.
			if ctx.Err() != nil {
				return
			}
			metrics.ScansTotal.WithLabelValues("failed").Inc()
			event.Fire(event.ScanFailed, err)
			if onError != nil {
				onError(err)
			}
			return
		}

		code, sym, decodeErr := e.decoder.Decode(raw)
		if decodeErr != nil {
			metrics.ScansTotal.WithLabelValues("rejected").Inc()
			logger.WithCtx(ctx).Debug("capture rejected", "raw", raw)
			continue
		}

		// Release strictly before emitting so the handler can restart the
		// engine (or open the device elsewhere) without racing us.
		e.release(c)
		metrics.ScansTotal.WithLabelValues("decoded").Inc()
		event.Fire(event.ScanDetected, code)
		if onDecode != nil {
			onDecode(code, sym)
		}
		return
	}
}

// Stop releases the device if a capture is in progress. Safe to call at any
// time, any number of times.
func (e *Engine) Stop() {
	e.mu.Lock()
	c := e.active
	e.mu.Unlock()
	if c == nil {
		return
	}
	e.release(c)
	<-c.done
}

// Active reports whether the engine currently holds a device.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active != nil
}

func (e *Engine) release(c *capture) {
	c.once.Do(func() {
		c.cancel()
		c.source.Close()
		e.mu.Lock()
		if e.active == c {
			e.active = nil
		}
		e.mu.Unlock()
		metrics.ScannerActive.Set(0)
		close(c.done)
	})
}
