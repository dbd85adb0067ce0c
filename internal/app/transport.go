// Package app is the transport-agnostic coordination engine: connection
// registry, group fan-out, presence, room coordination with admission
// control, signaling relay and room reclamation.
package app

// Frame is a single encoded event ready for delivery.
type Frame []byte

// Transport is the send side of a live connection. It is owned by the
// registry once registered; the adapter that created it must Close() it
// when asked to.
type Transport interface {
	// TrySend enqueues a frame without blocking. It returns an error when
	// the connection is closed or its send buffer is full.
	TrySend(Frame) error
	Close()
}
