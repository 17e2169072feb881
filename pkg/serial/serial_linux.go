// Package serial adapts a Linux TTY to kline.Channel using the raw termios2
// ioctls, the way port_linux.go in the driver it wraps does: custom baud
// rates via BOTHER/Termios2, break control via TIOCSBRK/TIOCCBRK, reads
// bounded by a read deadline translated to kline.ErrTimeout.
package serial

import (
	"fmt"
	"time"

	driver "github.com/daedaluz/goserial"
	"github.com/kjdev/kwp2000tool/pkg/kline"
)

// Channel is a kline.Channel backed by an open Linux serial port.
type Channel struct {
	port        *driver.Port
	readTimeout time.Duration
}

// Open opens name (e.g. "/dev/ttyUSB0") in raw mode with no parity, 8
// data bits, 1 stop bit, and readTimeout as the default per-read deadline.
func Open(name string, readTimeout time.Duration) (*Channel, error) {
	port, err := driver.Open(name, driver.NewOptions().SetReadTimeout(readTimeout))
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", name, err)
	}

	attrs, err := port.GetAttr2()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("serial: get attrs: %w", err)
	}
	attrs.MakeRaw()
	attrs.Cflag |= driver.CREAD | driver.CLOCAL
	if err := port.SetAttr2(driver.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, fmt.Errorf("serial: set attrs: %w", err)
	}

	return &Channel{port: port, readTimeout: readTimeout}, nil
}

// Close closes the underlying port.
func (c *Channel) Close() error {
	return c.port.Close()
}

// WriteAll writes every byte of data.
func (c *Channel) WriteAll(data []byte) error {
	for len(data) > 0 {
		n, err := c.port.Write(data)
		if err != nil {
			return fmt.Errorf("serial: write: %w", err)
		}
		data = data[n:]
	}
	return nil
}

// ReadExact reads exactly n bytes, honouring the channel's read timeout on
// each underlying read.
func (c *Channel) ReadExact(n int) ([]byte, error) {
	out := make([]byte, n)
	got := 0
	for got < n {
		m, err := c.port.ReadTimeout(out[got:], c.readTimeout)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kline.ErrTimeout, err)
		}
		if m == 0 {
			return nil, kline.ErrTimeout
		}
		got += m
	}
	return out, nil
}

// SetBreakHigh asserts the break condition (line held low).
func (c *Channel) SetBreakHigh() error {
	if err := c.port.SetBreak(); err != nil {
		return fmt.Errorf("serial: set break: %w", err)
	}
	return nil
}

// SetBreakLow releases the break condition.
func (c *Channel) SetBreakLow() error {
	if err := c.port.ClearBreak(); err != nil {
		return fmt.Errorf("serial: clear break: %w", err)
	}
	return nil
}

// SetBaud reconfigures the port's custom baud rate via BOTHER/Termios2,
// without touching any other termios field.
func (c *Channel) SetBaud(rate uint32) error {
	attrs, err := c.port.GetAttr2()
	if err != nil {
		return fmt.Errorf("serial: get attrs: %w", err)
	}
	attrs.SetCustomSpeed(rate)
	if err := c.port.SetAttr2(driver.TCSANOW, attrs); err != nil {
		return fmt.Errorf("serial: set baud %d: %w", rate, err)
	}
	return nil
}

// Sleep blocks the calling goroutine for d, satisfying kline.Channel's
// timing primitive for the initialisation handshake's bit delays.
func (c *Channel) Sleep(d time.Duration) {
	time.Sleep(d)
}

var _ kline.Channel = (*Channel)(nil)
