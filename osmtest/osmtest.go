// Package osmtest provides a scripted in-memory Parser for exercising
// data sources in tests. A script is a list of chunks; each ReadChunk
// call plays the next chunk's emissions into the sink, so tests control
// exactly which elements arrive on which read.
package osmtest

import (
	"github.com/go-spatial/geom"

	"github.com/go-spatial/osm"
)

// Emit is one scripted emission: the layer it is addressed to, the
// element, and its geometry.
type Emit struct {
	Layer    string
	Element  *osm.Element
	Geometry geom.Geometry
}

// Chunk is the set of emissions one ReadChunk call produces.
type Chunk []Emit

// Parser replays a script of chunks. It counts reads and rewinds so
// tests can assert how much of the upstream was consumed, and can be
// made to fail at a chosen chunk.
type Parser struct {
	Chunks []Chunk

	// Err, when set, is returned by ReadChunk instead of playing the
	// chunk at index FailAt.
	Err    error
	FailAt int

	// Reads counts ReadChunk calls, including calls past the end of the
	// script. Rewinds counts Rewind calls. ReadLayers records the layer
	// hint of each read in order.
	Reads      int
	Rewinds    int
	ReadLayers []string

	pos int
}

// New returns a Parser scripted with the given chunks.
func New(chunks ...Chunk) *Parser {
	return &Parser{Chunks: chunks}
}

// ReadChunk plays the next chunk into sink. The layer hint is recorded
// and otherwise ignored; the script decides what gets emitted.
func (p *Parser) ReadChunk(sink osm.ElementSink, layer string) (bool, error) {
	p.Reads++
	p.ReadLayers = append(p.ReadLayers, layer)
	if p.Err != nil && p.pos == p.FailAt {
		return false, p.Err
	}
	if p.pos >= len(p.Chunks) {
		return false, nil
	}
	for _, e := range p.Chunks[p.pos] {
		sink.EmitElement(e.Layer, e.Element, e.Geometry)
	}
	p.pos++
	return p.pos < len(p.Chunks), nil
}

// Rewind restarts the script from the first chunk.
func (p *Parser) Rewind() error {
	p.Rewinds++
	p.pos = 0
	return nil
}

// El returns a node element with the given id and alternating key/value
// tag strings.
func El(id int64, kv ...string) *osm.Element {
	return buildEl(id, false, kv)
}

// WayEl returns a way element with the given id and alternating
// key/value tag strings. Its id lands in osm_way_id rather than osm_id.
func WayEl(id int64, kv ...string) *osm.Element {
	return buildEl(id, true, kv)
}

func buildEl(id int64, way bool, kv []string) *osm.Element {
	if len(kv)%2 != 0 {
		panic("osmtest: element tags need an even number of strings")
	}
	el := &osm.Element{ID: id, IsWayID: way}
	for i := 0; i < len(kv); i += 2 {
		el.Tags = append(el.Tags, osm.Tag{Key: kv[i], Value: kv[i+1]})
	}
	return el
}
