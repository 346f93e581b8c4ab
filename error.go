package winprims

// ErrorCode classifies winprims failures.
//
// The codes mirror the errno classes the engine's portable core already
// distinguishes, so callers can keep their existing recovery logic.
type ErrorCode int32

// Error codes returned by winprims operations.
const (
	// ErrOK indicates no error - operation succeeded.
	ErrOK ErrorCode = 0
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument ErrorCode = 1
	// ErrSpawnFailed indicates the child process failed to spawn.
	ErrSpawnFailed ErrorCode = 2
	// ErrTimeout indicates the operation timed out.
	ErrTimeout ErrorCode = 3
	// ErrPermissionDenied indicates permission was denied for the operation.
	ErrPermissionDenied ErrorCode = 4
	// ErrNotFound indicates the process, program, or named object was not found.
	ErrNotFound ErrorCode = 5
	// ErrNotSupported indicates the operation is not supported on this platform.
	ErrNotSupported ErrorCode = 6
	// ErrSystem indicates a system-level error (GetLastError).
	ErrSystem ErrorCode = 8
	// ErrInternal indicates an internal error (bug in winprims).
	ErrInternal ErrorCode = 99
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrOK:
		return "OK"
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrSpawnFailed:
		return "SpawnFailed"
	case ErrTimeout:
		return "Timeout"
	case ErrPermissionDenied:
		return "PermissionDenied"
	case ErrNotFound:
		return "NotFound"
	case ErrNotSupported:
		return "NotSupported"
	case ErrSystem:
		return "System"
	case ErrInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error represents a winprims error with code and message.
//
// Use type assertion to access detailed error information:
//
//	err := sig.Kill(pid, winprims.SIGINT)
//	if err != nil {
//	    if wErr, ok := err.(*winprims.Error); ok {
//	        fmt.Printf("Error code: %d (%s)\n", wErr.Code, wErr.Code)
//	    }
//	}
type Error struct {
	// Code is the error classification.
	Code ErrorCode
	// Message is a detailed error message.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code.String()
}

func errorf(code ErrorCode, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

func wrapSys(code ErrorCode, msg string, err error) *Error {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &Error{Code: code, Message: msg}
}
