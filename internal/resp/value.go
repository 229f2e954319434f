package resp

// Kind identifies which of the five RESP frame types a Value holds.
type Kind int

const (
	SimpleString Kind = iota
	Error
	Integer
	Bulk
	Array
)

// Value is a parsed (or to-be-serialized) RESP frame. Only the fields
// relevant to Kind are meaningful:
//   - SimpleString, Error: Str
//   - Integer: Int
//   - Bulk: Bulk (nil means the null bulk string, $-1)
//   - Array: Items (nil means the null array, *-1; non-nil-but-empty is *0)
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Bulk  []byte
	Items []Value
}

// NewSimpleString builds a +OK\r\n-style value.
func NewSimpleString(s string) Value { return Value{Kind: SimpleString, Str: s} }

// NewError builds a -ERR ...\r\n-style value.
func NewError(s string) Value { return Value{Kind: Error, Str: s} }

// NewInteger builds a :123\r\n-style value.
func NewInteger(n int64) Value { return Value{Kind: Integer, Int: n} }

// NewBulk builds a $n\r\n...\r\n-style value. A nil b serializes as the
// null bulk string.
func NewBulk(b []byte) Value { return Value{Kind: Bulk, Bulk: b} }

// NewBulkString is a convenience wrapper over NewBulk for text payloads.
func NewBulkString(s string) Value { return Value{Kind: Bulk, Bulk: []byte(s)} }

// NullBulk is the null bulk string, $-1\r\n.
func NullBulk() Value { return Value{Kind: Bulk, Bulk: nil} }

// NewArray builds a *n\r\n...-style value from already-built items. A
// nil items serializes as the null array, *-1\r\n.
func NewArray(items []Value) Value { return Value{Kind: Array, Items: items} }

// NullArray is the null array, *-1\r\n.
func NullArray() Value { return Value{Kind: Array, Items: nil} }

// IsNullBulk reports whether v is the null bulk string.
func (v Value) IsNullBulk() bool { return v.Kind == Bulk && v.Bulk == nil }

// IsNullArray reports whether v is the null array.
func (v Value) IsNullArray() bool { return v.Kind == Array && v.Items == nil }
