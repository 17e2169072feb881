package kwp

import "fmt"

// Response is the sum type of every high-level response the client parses.
type Response interface {
	isResponse()
}

// StartedDiagnosticMode reports the mode the ECU actually switched to and,
// if a new baud rate was negotiated, the decoded rate.
type StartedDiagnosticMode struct {
	Mode DiagnosticMode
	Baud *uint32
}

// SessionStopped acknowledges StopDiagnosticSession.
type SessionStopped struct{}

// CommunicationStopped acknowledges StopCommunication.
type CommunicationStopped struct{}

// SecurityAccessSeed carries a fresh challenge seed at the given level.
type SecurityAccessSeed struct {
	Level byte
	Seed  []byte
}

// SecurityAccessGranted reports the ECU is already (or now) unlocked at
// the given level.
type SecurityAccessGranted struct {
	Level byte
}

// LocalIdentifierDefined acknowledges a dynamic-identifier definition or
// clear.
type LocalIdentifierDefined struct {
	ID byte
}

// LocalIdentifierWritten acknowledges a write to a local identifier.
type LocalIdentifierWritten struct {
	ID byte
}

// LocalIdentifierRead carries the data read from a local identifier.
type LocalIdentifierRead struct {
	ID   byte
	Data []byte
}

// UploadConfirmation reports the ECU's chosen max block size for an
// upload.
type UploadConfirmation struct {
	MaxBlock byte
}

// DownloadConfirmation reports the ECU's chosen max block size for a
// download.
type DownloadConfirmation struct {
	MaxBlock byte
}

// DataTransferResp carries one block of a TransferData exchange; empty
// Data signals end-of-stream on upload, or "ready for more" when received
// during a download.
type DataTransferResp struct {
	Data []byte
}

// TimingParametersResp carries the ECU's P2/P3/P4 timing limits or current
// values.
type TimingParametersResp struct {
	P2Min, P2Max, P3Min, P3Max, P4Min uint16
}

// TimingSet acknowledges AccessTimingParameter(Set).
type TimingSet struct{}

// TimingRestoredToDefault acknowledges AccessTimingParameter(Defaults).
type TimingRestoredToDefault struct{}

// StillProcessing is the "response pending" negative response (error code
// 0x78), surfaced distinctly because §4.G skips it and keeps waiting
// rather than returning it to the caller.
type StillProcessing struct {
	Service ServiceID
}

// EchoResponse is the tester's own transmission heard back on the
// half-duplex bus; §4.G filters these before returning a Response.
type EchoResponse struct {
	Frame Frame
}

// ErrorResponse wraps the ECU's negative response as a Response value so
// callers can pattern-match it like any other; it also implements error.
type ErrorResponse struct {
	*ECUError
}

// TesterPresentAck acknowledges a TesterPresent(Respond) request.
type TesterPresentAck struct{}

func (StartedDiagnosticMode) isResponse()   {}
func (SessionStopped) isResponse()          {}
func (CommunicationStopped) isResponse()    {}
func (SecurityAccessSeed) isResponse()      {}
func (SecurityAccessGranted) isResponse()   {}
func (LocalIdentifierDefined) isResponse()  {}
func (LocalIdentifierWritten) isResponse()  {}
func (LocalIdentifierRead) isResponse()     {}
func (UploadConfirmation) isResponse()      {}
func (DownloadConfirmation) isResponse()    {}
func (DataTransferResp) isResponse()        {}
func (TimingParametersResp) isResponse()    {}
func (TimingSet) isResponse()               {}
func (TimingRestoredToDefault) isResponse() {}
func (StillProcessing) isResponse()         {}
func (EchoResponse) isResponse()            {}
func (ErrorResponse) isResponse()           {}
func (TesterPresentAck) isResponse()        {}

// Parse classifies a decoded Frame into a high-level Response.
func Parse(f Frame) (Response, error) {
	if isRequestService(f.Service) {
		return EchoResponse{Frame: f}, nil
	}

	switch ServiceResponse(f.Service) {
	case respNegative:
		if len(f.Payload) < 2 {
			return nil, ErrNotEnoughData
		}
		svc := ServiceID(f.Payload[0])
		code := ServiceError(f.Payload[1])
		if code == ErrResponsePending {
			return StillProcessing{Service: svc}, nil
		}
		return ErrorResponse{&ECUError{Service: svc, Code: code}}, nil

	case respStartDiagnosticSession:
		if len(f.Payload) < 1 {
			return nil, ErrNotEnoughData
		}
		resp := StartedDiagnosticMode{Mode: DiagnosticMode(f.Payload[0])}
		if len(f.Payload) > 1 {
			rate := DecodeBaudByte(f.Payload[1])
			resp.Baud = &rate
		}
		return resp, nil

	case respStopDiagnosticSession:
		return SessionStopped{}, nil

	case respStopCommunication:
		return CommunicationStopped{}, nil

	case respSecurityAccess:
		if len(f.Payload) < 1 {
			return nil, ErrNotEnoughData
		}
		level := f.Payload[0]
		tail := f.Payload[1:]
		if len(f.Payload) == 2 || allZero(tail) {
			return SecurityAccessGranted{Level: level}, nil
		}
		return SecurityAccessSeed{Level: level, Seed: tail}, nil

	case respDynamicallyDefineLocalIdentifier:
		if len(f.Payload) < 1 {
			return nil, ErrNotEnoughData
		}
		return LocalIdentifierDefined{ID: f.Payload[0]}, nil

	case respWriteDataByLocalIdentifier:
		if len(f.Payload) < 1 {
			return nil, ErrNotEnoughData
		}
		return LocalIdentifierWritten{ID: f.Payload[0]}, nil

	case respReadDataByLocalIdentifier:
		if len(f.Payload) < 1 {
			return nil, ErrNotEnoughData
		}
		return LocalIdentifierRead{ID: f.Payload[0], Data: f.Payload[1:]}, nil

	case respRequestUpload:
		if len(f.Payload) < 1 {
			return nil, ErrNotEnoughData
		}
		return UploadConfirmation{MaxBlock: f.Payload[0]}, nil

	case respRequestDownload:
		if len(f.Payload) < 1 {
			return nil, ErrNotEnoughData
		}
		return DownloadConfirmation{MaxBlock: f.Payload[0]}, nil

	case respTransferData:
		return DataTransferResp{Data: f.Payload}, nil

	case respAccessTimingParameter:
		if len(f.Payload) < 1 {
			return nil, ErrNotEnoughData
		}
		switch TimingParameterMode(f.Payload[0]) {
		case TimingSetMode:
			return TimingSet{}, nil
		case TimingDefaults:
			return TimingRestoredToDefault{}, nil
		default:
			return parseTimingParameters(f.Payload[1:])
		}

	case respTesterPresent:
		return TesterPresentAck{}, nil

	default:
		return nil, fmt.Errorf("%w: response service 0x%02X", ErrInvalidService, f.Service)
	}
}

func parseTimingParameters(b []byte) (Response, error) {
	if len(b) < 10 {
		return nil, ErrNotEnoughData
	}
	be16 := func(i int) uint16 { return uint16(b[i])<<8 | uint16(b[i+1]) }
	return TimingParametersResp{
		P2Min: be16(0), P2Max: be16(2),
		P3Min: be16(4), P3Max: be16(6),
		P4Min: be16(8),
	}, nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
