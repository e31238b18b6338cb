// Package osm turns a stream of parsed OpenStreetMap elements into typed,
// filterable feature layers.
//
// A DataSource owns a set of layers fed by a single Parser. Each layer
// buffers materialized features in a bounded queue; pulling features from
// the layers drives the parser, either sequentially (one layer at a time,
// rewinding the stream between layers) or interleaved (a single pass over
// the stream for all layers, with the coordinator deciding which layer's
// turn it is).
package osm

import (
	"strings"

	"github.com/go-spatial/geom"

	_ "github.com/theckman/goconstraint/go1.8/gte"
)

// A Tag is one key/value attribute of an element. Tag order is preserved
// end to end; serialized tag blobs list tags in their original order.
type Tag struct {
	Key   string
	Value string
}

// Info carries the optional versioning metadata of an element.
//
// Timestamp holds the textual form when the source had one, otherwise
// Epoch holds seconds since the Unix epoch. Timestamp wins when both are
// set; both zero means the source carried no timestamp.
type Info struct {
	Version   int
	UID       int64
	User      string
	Changeset int64
	Timestamp string
	Epoch     int64
}

// An Element is one parsed record routed to a layer: the raw identifier,
// whether that identifier comes from the way id space, the ordered tags,
// and optional metadata.
type Element struct {
	ID      int64
	IsWayID bool
	Tags    []Tag
	Info    *Info
}

// ElementSink receives elements from a Parser. EmitElement routes el,
// with its already built geometry, to the named layer. Elements for
// unknown layer names are dropped.
type ElementSink interface {
	EmitElement(layer string, el *Element, g geom.Geometry)
}

// Parser produces chunks of elements from an underlying stream.
//
// ReadChunk parses a bounded amount of input, emitting completed elements
// into sink. layer names the layer on whose behalf the read happens;
// parsers may use it to prioritize and may ignore it. more reports
// whether further input remains. Rewind restarts the stream from the
// beginning.
type Parser interface {
	ReadChunk(sink ElementSink, layer string) (more bool, err error)
	Rewind() error
}

// ReadMode selects how pulls on several layers fed by one stream are
// coordinated.
type ReadMode uint8

const (
	// Sequential parses as much input as needed to satisfy each pull on a
	// layer. Moving to another layer afterwards replays the stream.
	Sequential ReadMode = iota

	// Interleaved makes a single pass over the stream for all layers. A
	// pull may yield no feature and hand the turn to another layer
	// instead; use DataSource.NextFeature to follow the turn.
	Interleaved
)

func (m ReadMode) String() string {
	if m == Interleaved {
		return "interleaved"
	}
	return "sequential"
}

// TagsFormat selects the serialization of the other_tags and all_tags
// blob fields.
type TagsFormat uint8

const (
	// TagsHSTORE serializes tags as PostgreSQL hstore literals,
	// "key"=>"value" pairs joined by commas.
	TagsHSTORE TagsFormat = iota

	// TagsJSON serializes tags as a JSON object.
	TagsJSON
)

func (f TagsFormat) String() string {
	if f == TagsJSON {
		return "json"
	}
	return "hstore"
}

// ParseTagsFormat maps a config value to a TagsFormat, case
// insensitively.
func ParseTagsFormat(s string) (TagsFormat, error) {
	switch strings.ToLower(s) {
	case "hstore":
		return TagsHSTORE, nil
	case "json":
		return TagsJSON, nil
	default:
		return TagsHSTORE, ErrUnknownTagsFormat{Format: s}
	}
}

const (
	// SwitchThreshold is the buffered feature count above which
	// interleaved reading hands the turn to the overfull layer so it
	// gets drained.
	SwitchThreshold = 10000

	// MaxThreshold caps a layer's buffer. Once buffered features reach
	// it, further features for the layer are dropped with a one time
	// warning.
	MaxThreshold = 100000
)
