package scanner

import (
	"context"
	"strings"
)

// Symbology identifies the barcode format a capture decoded as.
type Symbology string

const (
	SymbologyCode128 Symbology = "CODE_128"
	SymbologyCode39  Symbology = "CODE_39"
	SymbologyEAN13   Symbology = "EAN_13"
	SymbologyEAN8    Symbology = "EAN_8"
	SymbologyUPCA    Symbology = "UPC_A"
	SymbologyUPCE    Symbology = "UPC_E"
)

// Device is one attachable capture device (a USB wedge scanner, a serial
// scanner, a test fixture).
type Device interface {
	ID() string
	Label() string
	Open() (Source, error)
}

// Source is an opened device producing raw captures. Close releases the
// underlying device and unblocks any pending Read.
type Source interface {
	// Read blocks until the next raw capture, the context is cancelled, or
	// the source is closed.
	Read(ctx context.Context) (string, error)
	Close() error
}

// Provider enumerates the capture devices currently attached.
type Provider interface {
	Devices() ([]Device, error)
}

// Decoder validates a raw capture and resolves its symbology. A capture that
// matches no supported symbology returns an error and the engine keeps
// listening.
type Decoder interface {
	Decode(raw string) (string, Symbology, error)
}

// preferDevice picks the device whose label suggests a rear-facing or
// dedicated unit, falling back to the first one listed.
func preferDevice(devices []Device) Device {
	for _, d := range devices {
		label := strings.ToLower(d.Label())
		if strings.Contains(label, "back") || strings.Contains(label, "rear") {
			return d
		}
	}
	return devices[0]
}
