package kwp

import (
	"errors"
	"fmt"

	"github.com/kjdev/kwp2000tool/internal/bcb"
	"github.com/kjdev/kwp2000tool/pkg/kline"
	log "github.com/sirupsen/logrus"
)

// SecurityState tracks whether the session currently holds security
// access, and at which level.
type SecurityState struct {
	Granted bool
	Level   byte
}

// Client drives an ECU through the §4.H state machine: mode switching,
// security access and its lockout bypass, timing negotiation, and the
// upload/download data-transfer engine. It owns one Interface exclusively;
// no locking is needed since every operation blocks on the wire.
type Client struct {
	iface    *Interface
	channel  kline.Channel
	mode     DiagnosticMode
	security SecurityState
	log      *log.Logger
}

// NewClient wraps channel with a fresh, unauthenticated session in
// ModeUnknown. logger may be nil, in which case logrus.StandardLogger()
// is used.
func NewClient(channel kline.Channel, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Client{
		iface:   NewInterface(channel, logger),
		channel: channel,
		mode:    ModeUnknown,
		log:     logger,
	}
}

// Mode reports the client's current session mode.
func (c *Client) Mode() DiagnosticMode { return c.mode }

// Secured reports whether security access is currently granted.
func (c *Client) Secured() bool { return c.security.Granted }

func (c *Client) requireState(op string, modes ...DiagnosticMode) error {
	for _, m := range modes {
		if c.mode == m {
			return nil
		}
	}
	return &ErrUnexpectedState{Operation: op, Mode: c.mode, Secured: c.security.Granted}
}

func (c *Client) requireSecured(op string) error {
	if !c.security.Granted {
		return &ErrUnexpectedState{Operation: op, Mode: c.mode, Secured: false}
	}
	return nil
}

// SwitchMode requests newMode, optionally with a new negotiated baud
// rate. On success the byte channel's baud rate is switched (if a new
// rate was reported) before any further I/O, and security state resets to
// None per §4.H.
func (c *Client) SwitchMode(newMode DiagnosticMode, baud *uint32) error {
	if err := c.iface.Send(StartDiagnosticSession{Mode: newMode, Baud: baud}); err != nil {
		return err
	}
	resp, err := c.iface.NextResponse()
	if err != nil {
		return err
	}

	started, ok := resp.(StartedDiagnosticMode)
	if !ok {
		return &UnexpectedResponseError{Got: resp}
	}

	if started.Baud != nil {
		if err := c.channel.SetBaud(*started.Baud); err != nil {
			return fmt.Errorf("kwp: switching baud rate: %w", err)
		}
	}

	c.security = SecurityState{}

	if started.Mode != newMode {
		c.mode = started.Mode
		return ErrUnexpectedMode
	}
	c.mode = newMode
	c.log.WithField("mode", fmt.Sprintf("0x%02X", byte(newMode))).Info("mode switched")
	return nil
}

// ProgrammingMode switches to Programming mode, optionally at a new baud
// rate.
func (c *Client) ProgrammingMode(baud *uint32) error {
	return c.SwitchMode(ModeProgramming, baud)
}

// DeveloperMode switches to Developer mode, optionally at a new baud
// rate.
func (c *Client) DeveloperMode(baud *uint32) error {
	return c.SwitchMode(ModeDeveloper, baud)
}

// DiagnosticsMode switches to Diagnostics mode.
func (c *Client) DiagnosticsMode() error {
	return c.SwitchMode(ModeDiagnostics, nil)
}

// GetSecurityAccess performs the seed/key challenge at level 1. If the
// ECU reports it is already unlocked, this succeeds immediately. A
// TooManyAttempts/RequestingTooFast lockout is not retried here; callers
// should invoke SecurityAccessLockoutBypass and retry.
func (c *Client) GetSecurityAccess() error {
	if err := c.iface.Send(RequestSecuritySeed{Level: 1}); err != nil {
		return err
	}
	resp, err := c.iface.NextResponse()
	if err != nil {
		return err
	}

	switch r := resp.(type) {
	case SecurityAccessGranted:
		c.security = SecurityState{Granted: true, Level: r.Level}
		c.log.Info("security access already granted")
		return nil
	case SecurityAccessSeed:
		if len(r.Seed) != 4 {
			return fmt.Errorf("%w: seed length %d, want 4", ErrIllegalArgument, len(r.Seed))
		}
		var seed [4]byte
		copy(seed[:], r.Seed)
		key := SecurityKeyFromSeed(seed)

		if err := c.iface.Send(SendSecurityKey{Level: r.Level, Key: key[:]}); err != nil {
			return err
		}
		resp2, err := c.iface.NextResponse()
		if err != nil {
			return err
		}
		switch r2 := resp2.(type) {
		case SecurityAccessGranted:
			c.security = SecurityState{Granted: true, Level: r2.Level}
			c.log.Info("security access granted")
			return nil
		case ErrorResponse:
			if r2.IsLockout() {
				c.log.Warn("security access locked out")
			}
			return r2.ECUError
		default:
			return &UnexpectedResponseError{Got: resp2}
		}
	case ErrorResponse:
		if r.IsLockout() {
			c.log.Warn("security access locked out")
		}
		return r.ECUError
	default:
		return &UnexpectedResponseError{Got: resp}
	}
}

// SecurityAccessLockoutBypass writes zero to the in-RAM lockout attempt
// counter via a dynamically defined local identifier, then retries
// GetSecurityAccess. This is ME7-specific (§4.H).
func (c *Client) SecurityAccessLockoutBypass() error {
	if err := c.ddWriteAddress(lockoutBypassID, lockoutCounterAddress, []byte{0, 0}); err != nil {
		return err
	}
	return c.GetSecurityAccess()
}

// ddWriteAddress aliases local identifier id to address for len(data)
// bytes and writes data to it: Clear -> Define -> Write.
func (c *Client) ddWriteAddress(id byte, address uint32, data []byte) error {
	if len(data) > 253 {
		return fmt.Errorf("%w: write data too long (%d bytes)", ErrIllegalArgument, len(data))
	}

	if err := c.iface.Send(ClearLocalIdentifier{ID: id}); err != nil {
		return err
	}
	if resp, err := c.iface.NextResponse(); err != nil {
		return err
	} else if _, ok := resp.(LocalIdentifierDefined); !ok {
		return &UnexpectedResponseError{Got: resp}
	}

	if err := c.iface.Send(DefineLocalIdentifierAddress{ID: id, Length: byte(len(data)), Address: address}); err != nil {
		return err
	}
	if resp, err := c.iface.NextResponse(); err != nil {
		return err
	} else if _, ok := resp.(LocalIdentifierDefined); !ok {
		return &UnexpectedResponseError{Got: resp}
	}

	if err := c.iface.Send(WriteLocalIdentifier{ID: id, Data: data}); err != nil {
		return err
	}
	resp, err := c.iface.NextResponse()
	if err != nil {
		return err
	}
	if _, ok := resp.(LocalIdentifierWritten); !ok {
		return &UnexpectedResponseError{Got: resp}
	}
	return nil
}

// UseFastestTiming negotiates the link's fastest P2/P3/P4 timing
// parameters: query the limits, then set them. Requires Programming or
// Developer mode.
func (c *Client) UseFastestTiming() error {
	if err := c.requireState("timing access", ModeProgramming, ModeDeveloper); err != nil {
		return err
	}

	if err := c.iface.Send(AccessTimingParameterMsg{Kind: TimingLimits}); err != nil {
		return err
	}
	resp, err := c.iface.NextResponse()
	if err != nil {
		return err
	}
	limits, ok := resp.(TimingParametersResp)
	if !ok {
		return &UnexpectedResponseError{Got: resp}
	}

	if err := c.iface.Send(AccessTimingParameterMsg{
		Kind:  TimingSetMode,
		P2Min: limits.P2Min, P2Max: limits.P2Max,
		P3Min: limits.P3Min, P3Max: limits.P3Max,
		P4Min: limits.P4Min,
	}); err != nil {
		return err
	}
	resp2, err := c.iface.NextResponse()
	if err != nil {
		return err
	}
	if _, ok := resp2.(TimingSet); !ok {
		return &UnexpectedResponseError{Got: resp2}
	}
	return nil
}

// Upload reads size bytes starting at address from the ECU, uncompressed.
// Requires security access.
func (c *Client) Upload(address uint32, size uint32) ([]byte, error) {
	if err := c.requireSecured("upload"); err != nil {
		return nil, err
	}

	if err := c.iface.Send(RequestDataTransfer{
		Type: TransferUpload, Address: address, Size: size,
		Compression: CompressionUncompressed, Encryption: EncryptionUnencrypted,
	}); err != nil {
		return nil, err
	}

	resp, err := c.iface.NextResponse()
	if err != nil {
		return nil, err
	}
	if _, ok := resp.(UploadConfirmation); !ok {
		return nil, &UnexpectedResponseError{Got: resp}
	}

	var out []byte
	for {
		if err := c.iface.Send(RequestData{}); err != nil {
			return nil, err
		}
		resp, err := c.iface.NextResponse()
		if err != nil {
			return nil, err
		}
		data, ok := resp.(DataTransferResp)
		if !ok {
			return nil, &UnexpectedResponseError{Got: resp}
		}
		if len(data.Data) == 0 {
			return out, nil
		}
		out = append(out, data.Data...)
	}
}

// Download writes data to address on the ECU using Bosch BCB compression
// and XOR encryption (§4.C). Requires Programming mode and security
// access.
func (c *Client) Download(address uint32, data []byte) error {
	if err := c.requireState("download", ModeProgramming); err != nil {
		return err
	}
	if err := c.requireSecured("download"); err != nil {
		return err
	}

	if err := c.iface.Send(RequestDataTransfer{
		Type: TransferDownload, Address: address, Size: uint32(len(data)),
		Compression: CompressionBosch, Encryption: EncryptionBosch,
	}); err != nil {
		return err
	}

	resp, err := c.iface.NextResponse()
	if err != nil {
		return err
	}
	conf, ok := resp.(DownloadConfirmation)
	if !ok {
		return &UnexpectedResponseError{Got: resp}
	}
	maxBlock := int(conf.MaxBlock)

	first := true
	sent := 0
	keyIndex := 0

	for sent < len(data) {
		consumed, block := bcb.EncryptAndCompress(maxBlock, data[sent:], &keyIndex, bcb.Key, first)
		first = false

		if err := c.iface.Send(SendData{Block: block}); err != nil {
			return err
		}
		sent += consumed

		// Await ReadyForMoreData (an empty TransferData response),
		// tolerating any number of RoutineNotComplete replies while the
		// ECU is still flashing the previous block, and a final
		// read-timeout once every byte has been sent as a benign
		// end-of-transfer signal.
		for ready := false; !ready; {
			resp, err := c.iface.NextResponse()
			if err != nil {
				if errors.Is(err, kline.ErrTimeout) && sent >= len(data) {
					return nil
				}
				return err
			}
			switch r := resp.(type) {
			case DataTransferResp:
				if len(r.Data) != 0 {
					return &UnexpectedResponseError{Got: resp}
				}
				ready = true
			case ErrorResponse:
				if r.Service == svcRequestDownload && r.Code == ErrRoutineNotComplete {
					continue
				}
				return r.ECUError
			default:
				return &UnexpectedResponseError{Got: resp}
			}
		}
	}

	return nil
}

// Disconnect ends the diagnostic session and stops communication. A failed
// or negative reply to StopDiagnosticSession is treated as benign (the ECU
// may already have dropped the session), though a failure to send it is
// returned; StopCommunication must succeed. On success, c.Mode() reports
// ModeDisconnected, following the Programming -> Stop -> Unknown -> Stop ->
// Disconnected transition.
func (c *Client) Disconnect() error {
	if err := c.iface.Send(StopDiagnosticSession{}); err != nil {
		return err
	}
	if _, err := c.iface.NextResponse(); err != nil {
		c.log.WithError(err).Debug("stop diagnostic session: benign error")
	}
	c.mode = ModeUnknown
	c.security = SecurityState{}

	if err := c.iface.Send(StopCommunication{}); err != nil {
		return err
	}
	resp, err := c.iface.NextResponse()
	if err != nil {
		return err
	}
	if _, ok := resp.(CommunicationStopped); !ok {
		return &UnexpectedResponseError{Got: resp}
	}
	c.mode = ModeDisconnected
	return nil
}
