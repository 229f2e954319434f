package resp

import "strconv"

// AppendTo appends v's canonical RESP encoding to buf and returns the
// grown slice, in the style of strconv.AppendInt and friends — callers
// serializing many values into one write buffer avoid an allocation per
// value this way.
func AppendTo(buf []byte, v Value) []byte {
	switch v.Kind {
	case SimpleString:
		buf = append(buf, '+')
		buf = append(buf, v.Str...)
		return append(buf, crlf...)

	case Error:
		buf = append(buf, '-')
		buf = append(buf, v.Str...)
		return append(buf, crlf...)

	case Integer:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, v.Int, 10)
		return append(buf, crlf...)

	case Bulk:
		if v.Bulk == nil {
			return append(buf, "$-1\r\n"...)
		}
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(v.Bulk)), 10)
		buf = append(buf, crlf...)
		buf = append(buf, v.Bulk...)
		return append(buf, crlf...)

	case Array:
		if v.Items == nil {
			return append(buf, "*-1\r\n"...)
		}
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(v.Items)), 10)
		buf = append(buf, crlf...)
		for _, item := range v.Items {
			buf = AppendTo(buf, item)
		}
		return buf

	default:
		return buf
	}
}

// Serialize returns v's canonical RESP encoding as a freshly allocated
// byte slice.
func Serialize(v Value) []byte {
	return AppendTo(nil, v)
}
