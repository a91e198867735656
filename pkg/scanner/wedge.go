package scanner

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"
)

// WedgeProvider exposes a keyboard-wedge scanner as a Device. Wedge scanners
// type the decoded code followed by a newline, so any line-oriented reader
// (stdin, a serial port, a pipe) works.
//
// The provider owns a single pump over the reader. Sources opened from it
// are views onto that stream: closing one releases the device for the next
// Start without losing lines still in flight.
type WedgeProvider struct {
	Reader io.Reader
	Name   string // device label, e.g. "USB wedge (back counter)"

	once  sync.Once
	lines chan string
	eof   chan struct{}
}

func (p *WedgeProvider) Devices() ([]Device, error) {
	if p.Reader == nil {
		return nil, nil
	}
	p.once.Do(func() {
		p.lines = make(chan string)
		p.eof = make(chan struct{})
		go p.pump()
	})

	label := p.Name
	if label == "" {
		label = "keyboard wedge"
	}
	return []Device{&wedgeDevice{provider: p, label: label}}, nil
}

func (p *WedgeProvider) pump() {
	scan := bufio.NewScanner(p.Reader)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" {
			continue
		}
		p.lines <- line
	}
	close(p.eof)
}

type wedgeDevice struct {
	provider *WedgeProvider
	label    string
}

func (d *wedgeDevice) ID() string    { return "wedge:" + d.label }
func (d *wedgeDevice) Label() string { return d.label }

func (d *wedgeDevice) Open() (Source, error) {
	return &wedgeSource{provider: d.provider, closed: make(chan struct{})}, nil
}

type wedgeSource struct {
	provider  *WedgeProvider
	closed    chan struct{}
	closeOnce sync.Once
}

func (s *wedgeSource) Read(ctx context.Context) (string, error) {
	select {
	case line := <-s.provider.lines:
		return line, nil
	case <-s.provider.eof:
		return "", io.EOF
	case <-s.closed:
		return "", io.EOF
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *wedgeSource) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}
