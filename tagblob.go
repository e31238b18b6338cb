package osm

import (
	"bytes"
	"fmt"
)

// appendHSTOREString writes v to buf as a double quoted hstore string,
// escaping '"' and '\' with a backslash.
func appendHSTOREString(buf *bytes.Buffer, v string) {
	buf.WriteByte('"')
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '"' || c == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('"')
}

// appendJSONString writes v to buf as a double quoted JSON string.
// Control bytes without a short escape are written as \u00XX with
// uppercase hex digits.
func appendJSONString(buf *bytes.Buffer, v string) {
	buf.WriteByte('"')
	for i := 0; i < len(v); i++ {
		c := v[i]
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if c < ' ' {
				fmt.Fprintf(buf, `\u%04X`, c)
			} else {
				buf.WriteByte(c)
			}
		}
	}
	buf.WriteByte('"')
}

// appendBlobTag appends one key/value pair to a tag blob in format, with a
// leading separator, or opening brace for JSON, when the pair is the
// first.
func appendBlobTag(buf *bytes.Buffer, format TagsFormat, k, v string) {
	if format == TagsHSTORE {
		if buf.Len() > 0 {
			buf.WriteByte(',')
		}
		appendHSTOREString(buf, k)
		buf.WriteByte('=')
		buf.WriteByte('>')
		appendHSTOREString(buf, v)
		return
	}
	if buf.Len() > 0 {
		buf.WriteByte(',')
	} else {
		buf.WriteByte('{')
	}
	appendJSONString(buf, k)
	buf.WriteByte(':')
	appendJSONString(buf, v)
}

// closeBlob finishes a non empty blob, closing the JSON object when the
// format calls for it, and returns the serialized text.
func closeBlob(buf *bytes.Buffer, format TagsFormat) string {
	if format == TagsJSON {
		buf.WriteByte('}')
	}
	return buf.String()
}
