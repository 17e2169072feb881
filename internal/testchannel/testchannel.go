// Package testchannel provides an in-memory byte-channel fixture used to
// exercise the K-line initialiser, interface layer, and session client
// without real hardware, analogous to the teacher pack's loopback CAN bus.
package testchannel

import (
	"bytes"
	"time"

	"github.com/kjdev/kwp2000tool/pkg/kline"
)

// ErrTimeout is returned once the pre-seeded reply bytes are exhausted. It
// is kline.ErrTimeout, the same sentinel a real channel adapter returns,
// so client code under test sees exactly what it would against hardware.
var ErrTimeout = kline.ErrTimeout

// Channel is a pre-seeded byte pipe: writes are recorded, reads are served
// from a queue of bytes set up by the test. It implements kline.Channel.
type Channel struct {
	replies   []byte
	readPos   int
	Written   bytes.Buffer
	Baud      uint32
	BreakHigh bool
	Sleeps    []time.Duration

	// Echo, when true, makes every written byte also appended to the
	// reply queue before being consumed, modelling K-line's half-duplex
	// local loopback.
	Echo bool
}

// New returns a Channel that will serve replies, in order, to ReadExact.
func New(replies []byte) *Channel {
	return &Channel{replies: append([]byte(nil), replies...)}
}

func (c *Channel) WriteAll(data []byte) error {
	c.Written.Write(data)
	if c.Echo {
		c.replies = append(c.replies, data...)
	}
	return nil
}

func (c *Channel) ReadExact(n int) ([]byte, error) {
	if c.readPos+n > len(c.replies) {
		return nil, ErrTimeout
	}
	out := c.replies[c.readPos : c.readPos+n]
	c.readPos += n
	return out, nil
}

func (c *Channel) SetBreakHigh() error { c.BreakHigh = true; return nil }
func (c *Channel) SetBreakLow() error  { c.BreakHigh = false; return nil }

func (c *Channel) SetBaud(rate uint32) error {
	c.Baud = rate
	return nil
}

func (c *Channel) Sleep(d time.Duration) {
	c.Sleeps = append(c.Sleeps, d)
}

// QueueReply appends bytes the next ReadExact calls will serve.
func (c *Channel) QueueReply(b ...byte) {
	c.replies = append(c.replies, b...)
}
