package kwp

import (
	"errors"
	"fmt"
)

// Sentinel errors for transport and framing faults, checked with errors.Is,
// following the teacher's errors.go convention of package-level errors.New
// values for argument/timeout/framing conditions.
var (
	ErrTimeout           = errors.New("kwp: operation timed out")
	ErrInvalidChecksum   = errors.New("kwp: invalid frame checksum")
	ErrInvalidService    = errors.New("kwp: unknown service id")
	ErrNotEnoughData     = errors.New("kwp: truncated frame payload")
	ErrUnexpectedPending = errors.New("kwp: still-processing response for unexpected service")
	ErrUnexpectedMode    = errors.New("kwp: ECU reported a different mode than requested")
	ErrIllegalArgument   = errors.New("kwp: error in function arguments")
)

// ECUError is a typed negative response from the ECU: a service together
// with the error code it rejected the request with. Checked with errors.As
// when the caller needs the specific code, e.g. to detect a security
// lockout.
type ECUError struct {
	Service ServiceID
	Code    ServiceError
}

func (e *ECUError) Error() string {
	return fmt.Sprintf("kwp: ecu rejected service 0x%02X with code 0x%02X", byte(e.Service), byte(e.Code))
}

// IsLockout reports whether this negative response indicates the ECU's
// security-access attempt counter is currently locked out.
func (e *ECUError) IsLockout() bool {
	return e.Service == svcSecurityAccess && (e.Code == ErrTooManyAttempts || e.Code == ErrRequestingTooFast)
}

// UnexpectedResponseError is returned when a response was parsed
// successfully but is not one the calling operation is prepared to handle
// in its current state.
type UnexpectedResponseError struct {
	Got Response
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("kwp: unexpected response %#v", e.Got)
}

// ErrUnexpectedState is returned at the head of a session-client operation
// gated by §4.H's (mode, security) state machine when the client is not in
// a state that permits it.
type ErrUnexpectedState struct {
	Operation string
	Mode      DiagnosticMode
	Secured   bool
}

func (e *ErrUnexpectedState) Error() string {
	return fmt.Sprintf("kwp: %s not permitted in mode=0x%02X secured=%v", e.Operation, byte(e.Mode), e.Secured)
}
