package kwp

// ServiceID is a one-byte KWP2000 request identifier.
type ServiceID byte

// ServiceResponse is a one-byte KWP2000 response identifier, normally the
// paired request id plus 0x40.
type ServiceResponse byte

// Wire-level service identifiers. Unexported: callers use the typed
// Message/Response values in message.go/response.go; these constants only
// back their toFrame/parse implementations and frame validation below.
const (
	svcStartDiagnosticSession              ServiceID = 0x10
	svcStopDiagnosticSession               ServiceID = 0x20
	svcReadDataByLocalIdentifier           ServiceID = 0x21
	svcReadMemoryByAddress                 ServiceID = 0x23
	svcSecurityAccess                      ServiceID = 0x27
	svcDynamicallyDefineLocalIdentifier    ServiceID = 0x2C
	svcRequestDownload                     ServiceID = 0x34
	svcRequestUpload                       ServiceID = 0x35
	svcTransferData                        ServiceID = 0x36
	svcRequestTransferExit                 ServiceID = 0x37
	svcWriteDataByLocalIdentifier          ServiceID = 0x3B
	svcWriteMemoryByAddress                ServiceID = 0x3D
	svcTesterPresent                       ServiceID = 0x3E
	svcStartCommunication                  ServiceID = 0x81
	svcStopCommunication                   ServiceID = 0x82
	svcAccessTimingParameter               ServiceID = 0x83
)

const (
	respNegative                           ServiceResponse = 0x7F
	respStartDiagnosticSession             ServiceResponse = 0x50
	respStopDiagnosticSession              ServiceResponse = 0x60
	respReadDataByLocalIdentifier          ServiceResponse = 0x61
	respReadMemoryByAddress                ServiceResponse = 0x63
	respSecurityAccess                     ServiceResponse = 0x67
	respDynamicallyDefineLocalIdentifier   ServiceResponse = 0x6C
	respRequestDownload                    ServiceResponse = 0x74
	respRequestUpload                      ServiceResponse = 0x75
	respTransferData                       ServiceResponse = 0x76
	respRequestTransferExit                ServiceResponse = 0x77
	respWriteDataByLocalIdentifier         ServiceResponse = 0x7B
	respWriteMemoryByAddress               ServiceResponse = 0x7D
	respTesterPresent                      ServiceResponse = 0x7E
	respStartCommunication                 ServiceResponse = 0xC1
	respStopCommunication                  ServiceResponse = 0xC2
	respAccessTimingParameter              ServiceResponse = 0xC3
)

// ServiceError is a one-byte negative-response error code.
type ServiceError byte

const (
	ErrServiceNotSupported                   ServiceError = 0x11
	ErrGeneralReject                         ServiceError = 0x10
	ErrFunctionNotSupportedOrInvalidFormat    ServiceError = 0x12
	ErrBusyRepeatRequest                     ServiceError = 0x21
	ErrConditionsNotCorrect                  ServiceError = 0x22
	ErrRoutineNotComplete                    ServiceError = 0x23
	ErrRequestOutOfRange                     ServiceError = 0x31
	ErrSecurityAccessRequired                ServiceError = 0x33
	ErrInvalidKey                            ServiceError = 0x35
	ErrTooManyAttempts                       ServiceError = 0x36
	ErrRequestingTooFast                     ServiceError = 0x37
	ErrDownloadNotAccepted                   ServiceError = 0x40
	ErrImproperDownloadType                  ServiceError = 0x41
	ErrCannotDownloadToAddress               ServiceError = 0x42
	ErrBadDownloadSize                       ServiceError = 0x43
	ErrUploadNotAccepted                     ServiceError = 0x50
	ErrImproperUploadType                    ServiceError = 0x51
	ErrCannotUploadFromAddress               ServiceError = 0x52
	ErrBadUploadSize                         ServiceError = 0x53
	ErrTransferSuspended                     ServiceError = 0x71
	ErrTransferAborted                       ServiceError = 0x72
	ErrIllegalBlockTransferAddress           ServiceError = 0x74
	ErrIllegalBlockTransferSize              ServiceError = 0x75
	ErrIllegalBlockTransferType              ServiceError = 0x76
	ErrBlockTransferChecksumError            ServiceError = 0x77
	ErrResponsePending                       ServiceError = 0x78
	ErrIncorrectByteCountDuringBlockTransfer ServiceError = 0x79
	ErrServiceNotSupportedInActiveMode       ServiceError = 0x80
	ErrNoProgram                             ServiceError = 0x90
	ErrScalingNotSupported                   ServiceError = 0x91
)

// CompressionFormat is the top nibble of the TransferData data-format byte.
type CompressionFormat byte

const (
	CompressionUncompressed CompressionFormat = 0x00
	CompressionBosch        CompressionFormat = 0x10
	CompressionHitachi      CompressionFormat = 0x20
	CompressionMarelli      CompressionFormat = 0x30
	CompressionLucas        CompressionFormat = 0x40
)

// EncryptionFormat is the bottom nibble of the TransferData data-format byte.
type EncryptionFormat byte

const (
	EncryptionUnencrypted EncryptionFormat = 0x00
	EncryptionBosch       EncryptionFormat = 0x01
	EncryptionHitachi     EncryptionFormat = 0x02
	EncryptionMarelli     EncryptionFormat = 0x03
	EncryptionLucas       EncryptionFormat = 0x04
)

// DataFormatByte packs a compression and encryption format into the single
// byte RequestDataTransfer expects.
func DataFormatByte(c CompressionFormat, e EncryptionFormat) byte {
	return byte(c) | byte(e)
}

// ReadMode selects the cadence of a ReadLocalIdentifier request.
type ReadMode byte

const (
	ReadSingle ReadMode = 0x01
	ReadSlow   ReadMode = 0x02
	ReadMedium ReadMode = 0x03
	ReadFast   ReadMode = 0x04
	ReadStop   ReadMode = 0x05
)

// DynamicDefinitionMode selects the sub-function of
// DynamicallyDefineLocalIdentifier.
type DynamicDefinitionMode byte

const (
	DefineByLocalIdentifier               DynamicDefinitionMode = 0x01
	DefineByCommonIdentifier              DynamicDefinitionMode = 0x02
	DefineByMemoryAddress                 DynamicDefinitionMode = 0x03
	ClearDynamicallyDefinedLocalIdentifier DynamicDefinitionMode = 0x04
)

// TimingParameterMode selects the sub-function of AccessTimingParameter.
type TimingParameterMode byte

const (
	TimingLimits   TimingParameterMode = 0x00
	TimingDefaults TimingParameterMode = 0x01
	TimingRead     TimingParameterMode = 0x02
	TimingSetMode  TimingParameterMode = 0x03
)

// DiagnosticMode is a KWP2000 session mode. ModeUnknown and
// ModeDisconnected are synthetic client-side states with no wire
// encoding: ModeUnknown is the state before any StartDiagnosticSession,
// ModeDisconnected the state after StopCommunication succeeds.
type DiagnosticMode byte

const (
	ModeUnknown        DiagnosticMode = 0x00
	ModeOBD            DiagnosticMode = 0x81
	ModeEndOfLineVW    DiagnosticMode = 0x83
	ModeEndOfLineBosch DiagnosticMode = 0x84
	ModeProgramming    DiagnosticMode = 0x85
	ModeDeveloper      DiagnosticMode = 0x86
	ModeDiagnostics    DiagnosticMode = 0x89
	ModeDisconnected   DiagnosticMode = 0xFF
)

var knownServiceIDs = map[byte]bool{
	byte(svcStartDiagnosticSession): true, byte(svcStopDiagnosticSession): true,
	byte(svcReadDataByLocalIdentifier): true, byte(svcReadMemoryByAddress): true,
	byte(svcSecurityAccess): true, byte(svcDynamicallyDefineLocalIdentifier): true,
	byte(svcRequestDownload): true, byte(svcRequestUpload): true,
	byte(svcTransferData): true, byte(svcRequestTransferExit): true,
	byte(svcWriteDataByLocalIdentifier): true, byte(svcWriteMemoryByAddress): true,
	byte(svcTesterPresent): true, byte(svcStartCommunication): true,
	byte(svcStopCommunication): true, byte(svcAccessTimingParameter): true,
}

var knownServiceResponses = map[byte]bool{
	byte(respNegative): true, byte(respStartDiagnosticSession): true,
	byte(respStopDiagnosticSession): true, byte(respReadDataByLocalIdentifier): true,
	byte(respReadMemoryByAddress): true, byte(respSecurityAccess): true,
	byte(respDynamicallyDefineLocalIdentifier): true, byte(respRequestDownload): true,
	byte(respRequestUpload): true, byte(respTransferData): true,
	byte(respRequestTransferExit): true, byte(respWriteDataByLocalIdentifier): true,
	byte(respWriteMemoryByAddress): true, byte(respTesterPresent): true,
	byte(respStartCommunication): true, byte(respStopCommunication): true,
	byte(respAccessTimingParameter): true,
}

// isKnownService reports whether b is a recognised request or response id.
func isKnownService(b byte) bool {
	return knownServiceIDs[b] || knownServiceResponses[b]
}

// isRequestService reports whether b is a request id (as opposed to a
// response id); used by the interface layer to recognise half-duplex
// echoes of the tester's own transmissions.
func isRequestService(b byte) bool {
	return knownServiceIDs[b]
}
