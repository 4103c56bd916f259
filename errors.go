package flowcore

import "github.com/ochrecore/flowcore/internal/rerr"

// Error is the runtime's structured error type, re-exported at the root so
// callers outside the module never need to import internal/rerr directly.
type Error = rerr.Error

// Code is the error taxonomy carried by Error.
type Code = rerr.Code

// Error codes, re-exported from internal/rerr.
const (
	CodeFailedAllocation      = rerr.CodeFailedAllocation
	CodeFailedDeallocation    = rerr.CodeFailedDeallocation
	CodeFailedInitializePort  = rerr.CodeFailedInitializePort
	CodeFailedInitializeKni   = rerr.CodeFailedInitializeKni
	CodeBadRxQueue            = rerr.CodeBadRxQueue
	CodeBadTxQueue            = rerr.CodeBadTxQueue
	CodeBadOffset             = rerr.CodeBadOffset
	CodeMetadataTooLarge      = rerr.CodeMetadataTooLarge
	CodeRingAllocationFailure = rerr.CodeRingAllocationFailure
	CodeInvalidRingSize       = rerr.CodeInvalidRingSize
	CodeRingDuplication       = rerr.CodeRingDuplication
	CodeConfigurationError    = rerr.CodeConfigurationError
	CodeConfigParseError      = rerr.CodeConfigParseError
	CodeNoSchedulerOnCore     = rerr.CodeNoSchedulerOnCore
	CodeBadDev                = rerr.CodeBadDev
	CodeBadVdev               = rerr.CodeBadVdev
	CodeHeaderMismatch        = rerr.CodeHeaderMismatch
	CodeCannotSend            = rerr.CodeCannotSend
)

// New, Wrap, and Is are re-exported so root-level callers build and
// inspect errors the same way internal packages do.
var (
	NewError   = rerr.New
	WrapError  = rerr.Wrap
	IsCode     = rerr.Is
	FormatErrs = rerr.FormatChain
)
