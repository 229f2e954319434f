package resp

import "errors"

// Error taxonomy for terminal parse failures. Every error Parse returns
// wraps one of these via %w, so callers can classify with errors.Is
// without string matching.
var (
	// ErrProtocol covers malformed framing: a missing CRLF, an
	// out-of-range nesting depth, or any other structural violation
	// that isn't one of the more specific errors below.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrMessageTooLarge is returned when a declared bulk length
	// exceeds MaxBulkLen.
	ErrMessageTooLarge = errors.New("resp: message too large")

	// ErrUnknownPrefix is returned when the first byte of an array
	// element is none of +-:$*. At top level such a byte starts an
	// inline command instead.
	ErrUnknownPrefix = errors.New("resp: unknown prefix")

	// ErrInvalidBulkLength is returned for a bulk length header that
	// isn't a valid base-10 integer, or is less than -1.
	ErrInvalidBulkLength = errors.New("resp: invalid bulk length")

	// ErrInvalidArrayLength is returned for an array length header
	// that isn't a valid base-10 integer, or is less than -1.
	ErrInvalidArrayLength = errors.New("resp: invalid array length")

	// ErrLimitExceeded is returned when an array's declared length
	// exceeds MaxArrayLen, or an inline line exceeds MaxInlineLen.
	ErrLimitExceeded = errors.New("resp: limit exceeded")
)
