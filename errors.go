package osm

import (
	"errors"
	"fmt"
)

// ErrMissingLayerName is returned by Config.Validate when a layer entry
// has no name.
var ErrMissingLayerName = errors.New("config layer is missing a name")

type ErrDuplicateLayer struct {
	Layer string
}

func (e ErrDuplicateLayer) Error() string {
	return fmt.Sprintf("config declares layer (%v) more than once", e.Layer)
}

type ErrLayerNotFound struct {
	Layer string
}

func (e ErrLayerNotFound) Error() string {
	return fmt.Sprintf("layer (%v) not found", e.Layer)
}

type ErrFieldExists struct {
	Layer string
	Field string
}

func (e ErrFieldExists) Error() string {
	return fmt.Sprintf("layer (%v) already has a field named %v", e.Layer, e.Field)
}

// ErrSchemaFrozen is returned when fields or computed attributes are added
// to a layer after reading has started.
type ErrSchemaFrozen struct {
	Layer string
}

func (e ErrSchemaFrozen) Error() string {
	return fmt.Sprintf("layer (%v) schema can not change once reading has started", e.Layer)
}

// ErrComputedAttribute wraps an expression engine failure while
// registering a computed attribute.
type ErrComputedAttribute struct {
	Layer string
	Name  string
	Err   error
}

func (e ErrComputedAttribute) Error() string {
	return fmt.Sprintf("layer (%v) computed attribute %v: %v", e.Layer, e.Name, e.Err)
}

type ErrUnknownTagsFormat struct {
	Format string
}

func (e ErrUnknownTagsFormat) Error() string {
	return fmt.Sprintf("unknown tags format (%v); expected hstore or json", e.Format)
}

type ErrUnknownFieldType struct {
	Type string
}

func (e ErrUnknownFieldType) Error() string {
	return fmt.Sprintf("unknown field type (%v)", e.Type)
}
