package osm

import (
	"bytes"
	"database/sql"
	"strings"

	"github.com/go-spatial/osm/internal/log"
)

// A bindRef is one [attr] reference of a computed attribute expression.
// fieldIdx is the schema field the reference resolved to at registration
// time, or -1 when the reference reads the feature's raw tags instead.
type bindRef struct {
	attr     string
	fieldIdx int
}

// bindValue resolves one expression input. A reference bound to a schema
// field reads only that field; an unset field stays absent rather than
// falling back to the tags. Unbound references read the first tag with
// the referenced key.
func bindValue(f *Feature, tags []Tag, b bindRef) (string, bool) {
	if b.fieldIdx >= 0 {
		if !f.IsFieldSet(b.fieldIdx) {
			return "", false
		}
		return f.FieldAsString(b.fieldIdx), true
	}
	for i := range tags {
		if tags[i].Key == b.attr {
			return tags[i].Value, true
		}
	}
	return "", false
}

// computedAttribute is one registered computed attribute: the prepared
// expression, its references in placeholder order, and the schema field
// receiving the result.
type computedAttribute struct {
	name  string
	ftype FieldType
	index int
	sql   string
	stmt  *sql.Stmt
	binds []bindRef

	// hardcodedZOrder marks the stock z_order expression, which is
	// scored directly instead of through the engine.
	hardcodedZOrder bool
}

// parseComputedSQL rewrites expr into engine SQL: each [attr] reference
// becomes a ? placeholder recorded in refs. A backslash escapes the
// character after it; a trailing backslash and an unterminated bracket
// stay literal.
func parseComputedSQL(expr string) (rewritten string, refs []string) {
	var out bytes.Buffer
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '\\' && i+1 < len(expr):
			out.WriteByte(expr[i+1])
			i++
		case c == '[':
			end := strings.IndexByte(expr[i+1:], ']')
			if end < 0 {
				out.WriteByte(c)
				continue
			}
			refs = append(refs, expr[i+1:i+1+end])
			out.WriteByte('?')
			i += end + 1
		default:
			out.WriteByte(c)
		}
	}
	return out.String(), refs
}

// evaluate runs the expression against f and writes the result into the
// receiving field. A NULL result, a result with more than one column, or
// an engine error leaves the field unset; errors are logged at debug
// level.
func (c *computedAttribute) evaluate(f *Feature, tags []Tag) {
	if c.hardcodedZOrder {
		f.SetFieldInt(c.index, computeZOrder(f, tags, c.binds))
		return
	}
	args := make([]interface{}, len(c.binds))
	for i, b := range c.binds {
		if b.fieldIdx >= 0 {
			if !f.IsFieldSet(b.fieldIdx) {
				continue
			}
			switch f.schema.fields[b.fieldIdx].Type {
			case FTInteger:
				args[i] = f.FieldAsInt(b.fieldIdx)
			case FTInteger64:
				args[i] = f.FieldAsInt64(b.fieldIdx)
			case FTReal:
				args[i] = f.FieldAsFloat64(b.fieldIdx)
			default:
				args[i] = f.FieldAsString(b.fieldIdx)
			}
			continue
		}
		if v, ok := bindValue(f, tags, b); ok {
			args[i] = v
		}
	}

	rows, err := c.stmt.Query(args...)
	if err != nil {
		log.Debugf("computed attribute %v: %v", c.name, err)
		return
	}
	defer rows.Close()

	if cols, err := rows.Columns(); err != nil || len(cols) != 1 {
		return
	}
	if !rows.Next() {
		return
	}
	var v interface{}
	if err := rows.Scan(&v); err != nil {
		log.Debugf("computed attribute %v: %v", c.name, err)
		return
	}
	switch v := v.(type) {
	case int64:
		f.SetFieldInt64(c.index, v)
	case float64:
		f.SetFieldFloat64(c.index, v)
	case string:
		f.SetFieldString(c.index, v)
	case []uint8:
		f.SetFieldString(c.index, string(v))
	}
}
