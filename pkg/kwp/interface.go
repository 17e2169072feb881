package kwp

import (
	"fmt"

	"github.com/kjdev/kwp2000tool/pkg/kline"
	log "github.com/sirupsen/logrus"
)

// Interface couples a K-line byte channel with the frame codec and
// supplies the send/receive primitives the session client drives: echo
// filtering and still-processing skipping are transparent here, so
// nothing above this layer ever sees a frame it cannot act on directly.
type Interface struct {
	channel  kline.Channel
	log      *log.Logger
	lastSent ServiceID
}

// NewInterface wraps channel. logger may be nil, in which case
// logrus.StandardLogger() is used, matching the rest of the module's
// nil-default convention.
func NewInterface(channel kline.Channel, logger *log.Logger) *Interface {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Interface{channel: channel, log: logger}
}

// Send encodes and writes m.
func (i *Interface) Send(m Message) error {
	frame := m.toFrame()
	raw, err := Encode(frame)
	if err != nil {
		return err
	}
	i.lastSent = ServiceID(frame.Service)
	i.log.WithFields(log.Fields{"service": frame.Service, "bytes": len(raw)}).Debug("send")
	return i.channel.WriteAll(raw)
}

// NextResponse reads one frame and classifies it, transparently skipping
// echoes of the tester's own transmissions and still-processing
// (response-pending) negative responses for the service currently
// outstanding. A still-processing response naming a different service is
// surfaced as ErrUnexpectedPending rather than skipped, since it cannot
// belong to the request this call is waiting on.
func (i *Interface) NextResponse() (Response, error) {
	for {
		frame, err := Decode(i.channel)
		if err != nil {
			return nil, err
		}

		resp, err := Parse(frame)
		if err != nil {
			return nil, err
		}

		switch r := resp.(type) {
		case EchoResponse:
			i.log.WithField("service", frame.Service).Debug("echo-skip")
			continue
		case StillProcessing:
			if r.Service != i.lastSent {
				return nil, fmt.Errorf("%w: pending for service 0x%02X, awaiting 0x%02X",
					ErrUnexpectedPending, byte(r.Service), byte(i.lastSent))
			}
			i.log.WithField("service", r.Service).Warn("pending-skip")
			continue
		default:
			i.log.WithField("service", frame.Service).Debug("deliver")
			return resp, nil
		}
	}
}
