package resp

const (
	// MaxBulkLen is the largest bulk string length the codec accepts,
	// 512 MiB. A declared length above this fails with
	// ErrMessageTooLarge before any payload bytes are read.
	MaxBulkLen = 512 * 1024 * 1024

	// MaxArrayLen bounds the number of elements a single array frame
	// may declare.
	MaxArrayLen = 1024 * 1024

	// MaxNestingDepth bounds array-within-array recursion.
	MaxNestingDepth = 32

	// MaxInlineLen bounds the length of an inline command line.
	MaxInlineLen = 64 * 1024
)
