package osm

import "strings"

// FieldType enumerates the value types a field can hold.
type FieldType uint8

const (
	FTInteger FieldType = iota
	FTInteger64
	FTReal
	FTString
	FTDateTime
)

var fieldTypeNames = [...]string{"Integer", "Integer64", "Real", "String", "DateTime"}

func (t FieldType) String() string {
	if int(t) < len(fieldTypeNames) {
		return fieldTypeNames[t]
	}
	return "String"
}

// ParseFieldType maps a type name, case insensitively, to its FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(s) {
	case "integer":
		return FTInteger, nil
	case "integer64":
		return FTInteger64, nil
	case "real":
		return FTReal, nil
	case "string":
		return FTString, nil
	case "datetime":
		return FTDateTime, nil
	}
	return FTString, ErrUnknownFieldType{Type: s}
}

// FieldSubType refines how a field value should be interpreted.
type FieldSubType uint8

const (
	FSTNone FieldSubType = iota
	FSTBoolean
	FSTFloat32
)

func (t FieldSubType) String() string {
	switch t {
	case FSTBoolean:
		return "Boolean"
	case FSTFloat32:
		return "Float32"
	}
	return "None"
}

// Raw names with dedicated handling during materialization.
const (
	fieldOSMId     = "osm_id"
	fieldOSMWayId  = "osm_way_id"
	fieldOtherTags = "other_tags"
	fieldAllTags   = "all_tags"

	fieldVersion   = "osm_version"
	fieldTimestamp = "osm_timestamp"
	fieldUID       = "osm_uid"
	fieldUser      = "osm_user"
	fieldChangeset = "osm_changeset"
)

// A FieldDefn describes one attribute column of a layer.
//
// Name is the visible column name, laundered when the owning data source
// enables laundering. RawName is the tag key the field matches, kept
// verbatim.
type FieldDefn struct {
	Name    string
	RawName string
	Type    FieldType
	SubType FieldSubType
}

// A Schema is the ordered field catalog of a layer. Fields only ever
// append, so indices handed out stay valid for the life of the layer.
type Schema struct {
	fields []FieldDefn
	byRaw  map[string]int

	idIdx        int
	wayIDIdx     int
	otherTagsIdx int
	allTagsIdx   int
}

func newSchema() *Schema {
	return &Schema{
		byRaw:        map[string]int{},
		idIdx:        -1,
		wayIDIdx:     -1,
		otherTagsIdx: -1,
		allTagsIdx:   -1,
	}
}

func launderName(raw string) string {
	return strings.Replace(raw, ":", "_", -1)
}

func (s *Schema) addField(raw string, t FieldType, sub FieldSubType, launder bool) int {
	name := raw
	if launder && strings.IndexByte(raw, ':') >= 0 {
		name = launderName(raw)
	}
	s.fields = append(s.fields, FieldDefn{Name: name, RawName: raw, Type: t, SubType: sub})
	idx := len(s.fields) - 1
	s.byRaw[raw] = idx
	switch raw {
	case fieldOSMId:
		s.idIdx = idx
	case fieldOSMWayId:
		s.wayIDIdx = idx
	case fieldOtherTags:
		s.otherTagsIdx = idx
	case fieldAllTags:
		s.allTagsIdx = idx
	}
	return idx
}

// addComputedField appends the field receiving a computed attribute's
// result. Computed fields are never laundered and never tag matchable:
// the raw name map is left alone so tags cannot write into them.
func (s *Schema) addComputedField(name string, t FieldType) int {
	s.fields = append(s.fields, FieldDefn{Name: name, RawName: name, Type: t})
	return len(s.fields) - 1
}

// NumFields returns the number of fields in the schema.
func (s *Schema) NumFields() int { return len(s.fields) }

// Field returns the definition of the field at idx.
func (s *Schema) Field(idx int) FieldDefn { return s.fields[idx] }

// FindField returns the index of the field whose raw name matches the tag
// key, or -1. When the same raw name was added twice the later field
// wins.
func (s *Schema) FindField(raw string) int {
	if idx, ok := s.byRaw[raw]; ok {
		return idx
	}
	return -1
}

// FindFieldByName returns the index of the field with the visible name,
// compared case insensitively, or -1.
func (s *Schema) FindFieldByName(name string) int {
	for i := range s.fields {
		if strings.EqualFold(s.fields[i].Name, name) {
			return i
		}
	}
	return -1
}
