// Package kline implements the K-line link layer: the byte channel
// contract every transport adapter must satisfy, and the 5-baud wake-up
// sequence that brings an ECU into a listening state.
package kline

import (
	"errors"
	"time"
)

// ErrTimeout is returned by Channel operations that time out. It is a
// sentinel distinguished from other transport errors so callers can
// treat a timeout after the last expected frame of a transfer as benign.
var ErrTimeout = errors.New("kline: read or write timed out")

// Channel abstracts the serial device the K-line protocol runs over. It
// never carries protocol state; it only moves bytes and toggles the line.
type Channel interface {
	// WriteAll writes every byte of data or returns an error.
	WriteAll(data []byte) error
	// ReadExact blocks until exactly n bytes are read, or returns
	// ErrTimeout (wrapped) if no more bytes arrive before the channel's
	// configured deadline.
	ReadExact(n int) ([]byte, error)
	// SetBreakHigh and SetBreakLow drive the line's break state, used for
	// the bit-banged 5-baud wake-up.
	SetBreakHigh() error
	SetBreakLow() error
	// SetBaud changes the line speed between frames, e.g. after a
	// StartDiagnosticSession response negotiates a new rate.
	SetBaud(rate uint32) error
	// Sleep blocks for d, using real (monotonic) time.
	Sleep(d time.Duration)
}
