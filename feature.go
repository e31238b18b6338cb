package osm

import (
	"strconv"
	"time"

	"github.com/go-spatial/geom"
)

// A Feature is one materialized record of a layer: a feature id, an
// optional geometry, and one value slot per schema field. A nil slot
// means the field is unset.
//
// Values are stored normalized to the declared field type: Integer fields
// hold int, Integer64 int64, Real float64, String string and DateTime
// time.Time. Setters and getters convert best effort and never fail; a
// numeric field fed a non numeric string ends up zero valued, the way C's
// atoi would leave it.
type Feature struct {
	fid    int64
	g      geom.Geometry
	schema *Schema
	values []interface{}
}

// NewFeature returns an empty feature shaped by schema.
func NewFeature(schema *Schema) *Feature {
	return &Feature{schema: schema, values: make([]interface{}, schema.NumFields())}
}

func (f *Feature) FID() int64 { return f.fid }

func (f *Feature) SetFID(fid int64) { f.fid = fid }

func (f *Feature) Geometry() geom.Geometry { return f.g }

func (f *Feature) SetGeometry(g geom.Geometry) { f.g = g }

// Schema returns the schema the feature was built against.
func (f *Feature) Schema() *Schema { return f.schema }

// IsFieldSet reports whether the field at idx holds a value.
func (f *Feature) IsFieldSet(idx int) bool {
	return idx >= 0 && idx < len(f.values) && f.values[idx] != nil
}

// FieldValue returns the stored value of the field at idx, or nil when
// unset.
func (f *Feature) FieldValue(idx int) interface{} {
	if idx < 0 || idx >= len(f.values) {
		return nil
	}
	return f.values[idx]
}

// SetFieldString stores v in the field at idx, converted to the declared
// field type. A DateTime field is only set when v parses as a timestamp.
func (f *Feature) SetFieldString(idx int, v string) {
	if idx < 0 || idx >= len(f.values) {
		return
	}
	switch f.schema.fields[idx].Type {
	case FTInteger:
		f.values[idx] = parseCInt(v)
	case FTInteger64:
		f.values[idx] = parseCInt64(v)
	case FTReal:
		fv, _ := strconv.ParseFloat(v, 64)
		f.values[idx] = fv
	case FTDateTime:
		if t, ok := parseTimestamp(v); ok {
			f.values[idx] = t
		}
	default:
		f.values[idx] = v
	}
}

func (f *Feature) SetFieldInt(idx int, v int) {
	f.SetFieldInt64(idx, int64(v))
}

func (f *Feature) SetFieldInt64(idx int, v int64) {
	if idx < 0 || idx >= len(f.values) {
		return
	}
	switch f.schema.fields[idx].Type {
	case FTInteger:
		f.values[idx] = int(v)
	case FTInteger64:
		f.values[idx] = v
	case FTReal:
		f.values[idx] = float64(v)
	case FTString:
		f.values[idx] = strconv.FormatInt(v, 10)
	}
}

func (f *Feature) SetFieldFloat64(idx int, v float64) {
	if idx < 0 || idx >= len(f.values) {
		return
	}
	switch f.schema.fields[idx].Type {
	case FTInteger:
		f.values[idx] = int(v)
	case FTInteger64:
		f.values[idx] = int64(v)
	case FTReal:
		f.values[idx] = v
	case FTString:
		f.values[idx] = strconv.FormatFloat(v, 'g', -1, 64)
	}
}

func (f *Feature) SetFieldTime(idx int, v time.Time) {
	if idx < 0 || idx >= len(f.values) {
		return
	}
	switch f.schema.fields[idx].Type {
	case FTDateTime:
		f.values[idx] = v
	case FTString:
		f.values[idx] = v.Format(time.RFC3339)
	}
}

// FieldAsString renders the field at idx as a string. Unset fields render
// as "".
func (f *Feature) FieldAsString(idx int) string {
	if !f.IsFieldSet(idx) {
		return ""
	}
	switch v := f.values[idx].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		return v.Format(time.RFC3339)
	}
	return ""
}

func (f *Feature) FieldAsInt(idx int) int {
	return int(f.FieldAsInt64(idx))
}

func (f *Feature) FieldAsInt64(idx int) int64 {
	if !f.IsFieldSet(idx) {
		return 0
	}
	switch v := f.values[idx].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		return parseCInt64(v)
	}
	return 0
}

func (f *Feature) FieldAsFloat64(idx int) float64 {
	if !f.IsFieldSet(idx) {
		return 0
	}
	switch v := f.values[idx].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	case string:
		fv, _ := strconv.ParseFloat(v, 64)
		return fv
	}
	return 0
}

// FieldAsTime returns the field at idx as a time, and whether the field
// held one.
func (f *Feature) FieldAsTime(idx int) (time.Time, bool) {
	if !f.IsFieldSet(idx) {
		return time.Time{}, false
	}
	if v, ok := f.values[idx].(time.Time); ok {
		return v, true
	}
	return time.Time{}, false
}

// timestampLayouts are the accepted textual timestamp forms, tried in
// order: XML date time with and without a zone, a space separated
// variant, and a bare date.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp parses an element timestamp and reports whether any of
// the accepted layouts matched.
func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseCInt reads a leading integer the way C's atoi does: optional
// whitespace and sign, then as many digits as follow. Anything else
// yields zero.
func parseCInt(s string) int {
	return int(parseCInt64(s))
}

func parseCInt64(s string) int64 {
	i := 0
	for i < len(s) && isCSpace(s[i]) {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0
	}
	n, _ := strconv.ParseInt(s[start:i], 10, 64)
	return n
}

func isCSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
