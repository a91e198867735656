// Package event provides a simple synchronous/async event dispatcher.
//
// The billing session and scan engine publish lifecycle events through it so
// UI surfaces can re-render without polling:
//
//	event.Listen(event.BillUpdated, func(payload interface{}) {
//	    render(payload.(billing.Snapshot))
//	})
package event

import "sync"

// Well-known POS event names.
const (
	BillUpdated   = "bill.updated"   // payload: billing.Snapshot
	BillCompleted = "bill.completed" // payload: *billing.Receipt
	BillCreated   = "bill.created"   // payload: bill id string
	ScanDetected  = "scan.detected"  // payload: decoded barcode string
	ScanFailed    = "scan.failed"    // payload: error
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
)

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

// Fire dispatches an event synchronously to all registered listeners.
func Fire(event string, payload interface{}) {
	mu.RLock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	mu.RUnlock()

	for _, h := range hs {
		h(payload)
	}
}

// FireAsync dispatches the event to all listeners concurrently and returns
// immediately.
func FireAsync(event string, payload interface{}) {
	mu.RLock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	mu.RUnlock()

	for _, h := range hs {
		go h(payload)
	}
}

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
