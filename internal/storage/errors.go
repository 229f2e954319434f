package storage

import "errors"

// Error taxonomy exposed by the engine, mapped to RESP error replies by
// the command dispatcher.
var (
	// ErrWrongType is returned when a command assumes a type for a key
	// that is bound to the other type.
	ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

	// ErrNotAnInteger is returned when a key's string value can't be
	// parsed as a signed 64-bit integer for INCR/DECR-family commands.
	ErrNotAnInteger = errors.New("value is not an integer or out of range")

	// ErrIntegerOverflow is returned when an INCR/DECR-family operation
	// would overflow a signed 64-bit integer.
	ErrIntegerOverflow = errors.New("increment or decrement would overflow")

	// ErrIndexOutOfRange is returned by LSET when the index, after
	// negative-index normalization, falls outside the list.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrSyntax is returned for malformed command options (e.g. an
	// unrecognized SET flag).
	ErrSyntax = errors.New("syntax error")
)
