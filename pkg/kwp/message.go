package kwp

// Message is the sum type of every high-level request the client issues.
// Each concrete type maps to exactly one (service id, payload) pair.
type Message interface {
	// toFrame projects the message onto its wire frame. Addressing mode
	// defaults to None; nothing in this client needs anything else.
	toFrame() Frame
}

// TransferType distinguishes an upload (ECU to tester) from a download
// (tester to ECU) in RequestDataTransfer.
type TransferType byte

const (
	TransferUpload   TransferType = 0x01
	TransferDownload TransferType = 0x02
)

func encodeAddress24(addr uint32) []byte {
	return []byte{byte(addr >> 16), byte(addr >> 8), byte(addr)}
}

// StartDiagnosticSession requests a mode switch, optionally along with a
// new negotiated baud rate (encoded via EncodeBaudByte).
type StartDiagnosticSession struct {
	Mode DiagnosticMode
	Baud *uint32
}

func (m StartDiagnosticSession) toFrame() Frame {
	payload := []byte{byte(m.Mode)}
	if m.Baud != nil {
		payload = append(payload, EncodeBaudByte(*m.Baud))
	}
	return Frame{Service: byte(svcStartDiagnosticSession), Payload: payload}
}

// StopDiagnosticSession ends the current diagnostic session.
type StopDiagnosticSession struct{}

func (StopDiagnosticSession) toFrame() Frame {
	return Frame{Service: byte(svcStopDiagnosticSession)}
}

// StopCommunication tears down link-layer communication entirely.
type StopCommunication struct{}

func (StopCommunication) toFrame() Frame {
	return Frame{Service: byte(svcStopCommunication)}
}

// RequestSecuritySeed asks the ECU for a challenge seed at the given
// security level (ME7 uses level 1 exclusively).
type RequestSecuritySeed struct {
	Level byte
}

func (m RequestSecuritySeed) toFrame() Frame {
	return Frame{Service: byte(svcSecurityAccess), Payload: []byte{m.Level}}
}

// SendSecurityKey answers a challenge with the derived key.
type SendSecurityKey struct {
	Level byte
	Key   []byte
}

func (m SendSecurityKey) toFrame() Frame {
	payload := append([]byte{m.Level + 1}, m.Key...)
	return Frame{Service: byte(svcSecurityAccess), Payload: payload}
}

// TesterPresentMsg keeps the current session alive. Respond requests a
// positive response; otherwise the ECU stays silent.
type TesterPresentMsg struct {
	Respond bool
}

func (m TesterPresentMsg) toFrame() Frame {
	sub := byte(0x02)
	if m.Respond {
		sub = 0x01
	}
	return Frame{Service: byte(svcTesterPresent), Payload: []byte{sub}}
}

// ReadMemoryByAddress reads length bytes starting at address directly,
// without a dynamic local identifier.
type ReadMemoryByAddress struct {
	Address uint32
	Length  byte
}

func (m ReadMemoryByAddress) toFrame() Frame {
	payload := append(encodeAddress24(m.Address), m.Length)
	return Frame{Service: byte(svcReadMemoryByAddress), Payload: payload}
}

// ClearLocalIdentifier clears a dynamically defined local identifier.
type ClearLocalIdentifier struct {
	ID byte
}

func (m ClearLocalIdentifier) toFrame() Frame {
	payload := []byte{byte(ClearDynamicallyDefinedLocalIdentifier), m.ID}
	return Frame{Service: byte(svcDynamicallyDefineLocalIdentifier), Payload: payload}
}

// DefineLocalIdentifierAddress aliases local identifier ID to length bytes
// at address, the mechanism behind the security-lockout bypass.
type DefineLocalIdentifierAddress struct {
	ID      byte
	Length  byte
	Address uint32
}

func (m DefineLocalIdentifierAddress) toFrame() Frame {
	payload := []byte{byte(DefineByMemoryAddress), m.ID, m.Length}
	payload = append(payload, encodeAddress24(m.Address)...)
	return Frame{Service: byte(svcDynamicallyDefineLocalIdentifier), Payload: payload}
}

// ReadLocalIdentifier reads a (possibly dynamically defined) local
// identifier at the given cadence.
type ReadLocalIdentifier struct {
	ID   byte
	Mode ReadMode
}

func (m ReadLocalIdentifier) toFrame() Frame {
	return Frame{Service: byte(svcReadDataByLocalIdentifier), Payload: []byte{m.ID, byte(m.Mode)}}
}

// WriteLocalIdentifier writes data to a (possibly dynamically defined)
// local identifier.
type WriteLocalIdentifier struct {
	ID   byte
	Data []byte
}

func (m WriteLocalIdentifier) toFrame() Frame {
	payload := append([]byte{m.ID}, m.Data...)
	return Frame{Service: byte(svcWriteDataByLocalIdentifier), Payload: payload}
}

// RequestDataTransfer initiates an upload or download of size bytes at
// address, declaring the compression/encryption the transfer will use.
type RequestDataTransfer struct {
	Type        TransferType
	Address     uint32
	Size        uint32
	Compression CompressionFormat
	Encryption  EncryptionFormat
}

func (m RequestDataTransfer) toFrame() Frame {
	service := svcRequestUpload
	if m.Type == TransferDownload {
		service = svcRequestDownload
	}
	payload := []byte{DataFormatByte(m.Compression, m.Encryption)}
	payload = append(payload, encodeAddress24(m.Address)...)
	payload = append(payload, byte(m.Size>>16), byte(m.Size>>8), byte(m.Size))
	return Frame{Service: byte(service), Payload: payload}
}

// RequestData asks for the next block of an in-progress upload.
type RequestData struct{}

func (RequestData) toFrame() Frame {
	// TransferData's request id, reused with an empty payload: the wire
	// encoding KWP2000 uses for "send me the next block".
	return Frame{Service: byte(svcTransferData)}
}

// SendData carries one compressed/encrypted block of an in-progress
// download.
type SendData struct {
	Block []byte
}

func (m SendData) toFrame() Frame {
	return Frame{Service: byte(svcTransferData), Payload: m.Block}
}

// AccessTimingParameterMsg queries or sets the link's P2/P3/P4 timings.
type AccessTimingParameterMsg struct {
	Kind                              TimingParameterMode
	P2Min, P2Max, P3Min, P3Max, P4Min uint16
}

func (m AccessTimingParameterMsg) toFrame() Frame {
	payload := []byte{byte(m.Kind)}
	if m.Kind == TimingSetMode {
		payload = append(payload,
			byte(m.P2Min>>8), byte(m.P2Min),
			byte(m.P2Max>>8), byte(m.P2Max),
			byte(m.P3Min>>8), byte(m.P3Min),
			byte(m.P3Max>>8), byte(m.P3Max),
			byte(m.P4Min>>8), byte(m.P4Min),
		)
	}
	return Frame{Service: byte(svcAccessTimingParameter), Payload: payload}
}
