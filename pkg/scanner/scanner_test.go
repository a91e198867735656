package scanner_test

import (
	"context"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukaanlabs/dukaan/pkg/scanner"
)

// fakeSource hands out scripted captures and records when it was closed.
type fakeSource struct {
	mu       sync.Mutex
	captures []string
	closed   bool
	done     chan struct{}
}

func newFakeSource(captures ...string) *fakeSource {
	return &fakeSource{captures: captures, done: make(chan struct{})}
}

func (s *fakeSource) Read(ctx context.Context) (string, error) {
	s.mu.Lock()
	if len(s.captures) > 0 {
		raw := s.captures[0]
		s.captures = s.captures[1:]
		s.mu.Unlock()
		return raw, nil
	}
	s.mu.Unlock()
	select {
	case <-s.done:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	return nil
}

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeDevice struct {
	id     string
	label  string
	source *fakeSource
	opens  atomic.Int32
}

func (d *fakeDevice) ID() string    { return d.id }
func (d *fakeDevice) Label() string { return d.label }
func (d *fakeDevice) Open() (scanner.Source, error) {
	d.opens.Add(1)
	return d.source, nil
}

type fakeProvider struct{ devices []scanner.Device }

func (p *fakeProvider) Devices() ([]scanner.Device, error) { return p.devices, nil }

func TestStart_SingleShot(t *testing.T) {
	src := newFakeSource("8901030865275", "8901030865275")
	engine := scanner.New(&fakeProvider{devices: []scanner.Device{
		&fakeDevice{id: "1", label: "counter", source: src},
	}})

	decoded := make(chan string, 4)
	err := engine.Start(context.Background(), func(code string, _ scanner.Symbology) {
		decoded <- code
	}, nil)
	require.NoError(t, err)

	select {
	case code := <-decoded:
		assert.Equal(t, "8901030865275", code)
	case <-time.After(time.Second):
		t.Fatal("no decode")
	}

	// One value per Start: the second scripted capture must never arrive.
	select {
	case extra := <-decoded:
		t.Fatalf("engine emitted a second value: %q", extra)
	case <-time.After(50 * time.Millisecond):
	}
	assert.False(t, engine.Active())
}

func TestStart_ReleasesDeviceBeforeEmit(t *testing.T) {
	src := newFakeSource("8901030865275")
	engine := scanner.New(&fakeProvider{devices: []scanner.Device{
		&fakeDevice{id: "1", label: "counter", source: src},
	}})

	releasedAtEmit := make(chan bool, 1)
	err := engine.Start(context.Background(), func(string, scanner.Symbology) {
		releasedAtEmit <- src.isClosed() && !engine.Active()
	}, nil)
	require.NoError(t, err)

	select {
	case ok := <-releasedAtEmit:
		assert.True(t, ok, "device must be released before the handler runs")
	case <-time.After(time.Second):
		t.Fatal("no decode")
	}
}

func TestStart_SkipsInvalidCaptures(t *testing.T) {
	// Bad checksum first, then a valid EAN-13.
	src := newFakeSource("8901030865278", "8901030865275")
	engine := scanner.New(&fakeProvider{devices: []scanner.Device{
		&fakeDevice{id: "1", label: "counter", source: src},
	}})

	decoded := make(chan string, 1)
	failures := make(chan error, 1)
	require.NoError(t, engine.Start(context.Background(), func(code string, _ scanner.Symbology) {
		decoded <- code
	}, func(err error) { failures <- err }))

	select {
	case code := <-decoded:
		assert.Equal(t, "8901030865275", code)
	case <-time.After(time.Second):
		t.Fatal("engine gave up instead of skipping the bad capture")
	}
	assert.Empty(t, failures)
}

func TestStart_NoDevice(t *testing.T) {
	engine := scanner.New(&fakeProvider{})
	err := engine.Start(context.Background(), nil, nil)
	assert.ErrorIs(t, err, scanner.ErrNoDevice)
}

func TestStart_PrefersBackLabeledDevice(t *testing.T) {
	front := &fakeDevice{id: "1", label: "front camera", source: newFakeSource()}
	back := &fakeDevice{id: "2", label: "Back Counter Scanner", source: newFakeSource("8901030865275")}
	engine := scanner.New(&fakeProvider{devices: []scanner.Device{front, back}})

	decoded := make(chan string, 1)
	require.NoError(t, engine.Start(context.Background(), func(code string, _ scanner.Symbology) {
		decoded <- code
	}, nil))

	select {
	case <-decoded:
	case <-time.After(time.Second):
		t.Fatal("no decode")
	}
	assert.Equal(t, int32(0), front.opens.Load())
	assert.Equal(t, int32(1), back.opens.Load())
	engine.Stop()
}

func TestStop_IdempotentAndReleases(t *testing.T) {
	src := newFakeSource() // never produces, engine just listens
	engine := scanner.New(&fakeProvider{devices: []scanner.Device{
		&fakeDevice{id: "1", label: "counter", source: src},
	}})

	failures := make(chan error, 1)
	require.NoError(t, engine.Start(context.Background(), nil, func(err error) { failures <- err }))
	require.True(t, engine.Active())

	engine.Stop()
	engine.Stop()
	engine.Stop()

	assert.True(t, src.isClosed())
	assert.False(t, engine.Active())
	select {
	case err := <-failures:
		t.Fatalf("Stop must not surface an error, got %v", err)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStart_StopsPriorCapture(t *testing.T) {
	first := newFakeSource()
	second := newFakeSource("8901030865275")
	devices := []scanner.Device{&fakeDevice{id: "1", label: "counter", source: first}}
	provider := &fakeProvider{devices: devices}
	engine := scanner.New(provider)

	require.NoError(t, engine.Start(context.Background(), nil, nil))
	require.True(t, engine.Active())

	provider.devices = []scanner.Device{&fakeDevice{id: "2", label: "counter", source: second}}
	decoded := make(chan string, 1)
	require.NoError(t, engine.Start(context.Background(), func(code string, _ scanner.Symbology) {
		decoded <- code
	}, nil))

	assert.True(t, first.isClosed(), "restart must release the prior device")
	select {
	case <-decoded:
	case <-time.After(time.Second):
		t.Fatal("no decode from second capture")
	}
}

func TestStart_DeviceFailureReportedOnce(t *testing.T) {
	src := newFakeSource()
	engine := scanner.New(&fakeProvider{devices: []scanner.Device{
		&fakeDevice{id: "1", label: "counter", source: src},
	}})

	failures := make(chan error, 2)
	require.NoError(t, engine.Start(context.Background(), nil, func(err error) { failures <- err }))

	src.Close() // device yanked mid-listen

	select {
	case err := <-failures:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(time.Second):
		t.Fatal("device failure never reported")
	}
	assert.False(t, engine.Active())
}

func TestWedgeProvider_ReadsLines(t *testing.T) {
	provider := &scanner.WedgeProvider{
		Reader: strings.NewReader("  \n8901030865275\n"),
		Name:   "usb wedge",
	}
	engine := scanner.New(provider)

	decoded := make(chan string, 1)
	syms := make(chan scanner.Symbology, 1)
	require.NoError(t, engine.Start(context.Background(), func(code string, sym scanner.Symbology) {
		decoded <- code
		syms <- sym
	}, nil))

	select {
	case code := <-decoded:
		assert.Equal(t, "8901030865275", code)
		assert.Equal(t, scanner.SymbologyEAN13, <-syms)
	case <-time.After(time.Second):
		t.Fatal("no decode from wedge")
	}
}
