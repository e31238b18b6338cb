package osm

import (
	"database/sql"

	"github.com/go-spatial/geom"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pborman/uuid"

	"github.com/go-spatial/osm/internal/log"
)

// A DataSource owns the layers fed by one parsed element stream. It is
// the single thread of control: the parser, the schemas and all feature
// queues are only ever touched through its pull calls, so no locking
// happens anywhere.
type DataSource struct {
	// id tags the data source's log lines so concurrent sources can be
	// told apart.
	id string

	parser Parser
	mode   ReadMode
	format TagsFormat

	launderNames bool

	layers []*Layer
	byName map[string]int

	coord coordinator

	// seqIdx is the layer NextFeature drains next in sequential mode.
	seqIdx int

	// sealed flips on with the first pull; schemas are append only and
	// frozen from then on.
	sealed bool

	// stopped latches once the parser reports exhaustion or fails; err
	// keeps the failure.
	stopped bool
	err     error

	// db backs computed attribute expressions, opened on first use.
	db *sql.DB
}

// Open builds a data source reading parser through the layers cfg
// describes. Layer schemas, key sets and computed attributes are all
// registered here; once the first feature has been pulled they can not
// change any more.
func Open(parser Parser, cfg Config) (*DataSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ds := &DataSource{
		id:           uuid.New(),
		parser:       parser,
		format:       TagsHSTORE,
		launderNames: cfg.AttributeNameLaundering,
		byName:       map[string]int{},
		coord:        newCoordinator(),
	}
	if cfg.InterleavedReading {
		ds.mode = Interleaved
	}
	if cfg.TagsFormat != "" {
		// already validated
		ds.format, _ = ParseTagsFormat(cfg.TagsFormat)
	}

	for i, lc := range cfg.Layers {
		l := newLayer(ds, i, lc.Name)

		if lc.OSMId {
			l.schema.addField(fieldOSMId, FTString, FSTNone, ds.launderNames)
		}
		if lc.OSMWayId {
			l.schema.addField(fieldOSMWayId, FTString, FSTNone, ds.launderNames)
		}
		if lc.OSMVersion {
			l.schema.addField(fieldVersion, FTInteger, FSTNone, ds.launderNames)
			l.hasVersion = true
		}
		if lc.OSMTimestamp {
			l.schema.addField(fieldTimestamp, FTDateTime, FSTNone, ds.launderNames)
			l.hasTimestamp = true
		}
		if lc.OSMUid {
			l.schema.addField(fieldUID, FTString, FSTNone, ds.launderNames)
			l.hasUID = true
		}
		if lc.OSMUser {
			l.schema.addField(fieldUser, FTString, FSTNone, ds.launderNames)
			l.hasUser = true
		}
		if lc.OSMChangeset {
			l.schema.addField(fieldChangeset, FTInteger64, FSTNone, ds.launderNames)
			l.hasChangeset = true
		}
		for _, name := range lc.Attributes {
			l.schema.addField(name, FTString, FSTNone, ds.launderNames)
		}
		if lc.OtherTags {
			l.schema.addField(fieldOtherTags, FTString, FSTNone, ds.launderNames)
		}
		if lc.AllTags {
			l.schema.addField(fieldAllTags, FTString, FSTNone, ds.launderNames)
		}
		for _, k := range lc.Ignore {
			l.AddIgnoreKey(k)
		}
		for _, k := range lc.Insignificant {
			l.AddInsignificantKey(k)
		}

		ds.layers = append(ds.layers, l)
		ds.byName[lc.Name] = i

		for _, ca := range lc.ComputedAttributes {
			// types were validated with the config
			t, _ := ParseFieldType(ca.Type)
			if err := l.AddComputedAttribute(ca.Name, t, ca.SQL); err != nil {
				ds.Close()
				return nil, err
			}
		}
	}

	log.Debugf("data source %v: %v layers, %v reading, %v tags", ds.id, len(ds.layers), ds.mode, ds.format)

	return ds, nil
}

// Mode returns the reading mode the data source was opened with.
func (ds *DataSource) Mode() ReadMode { return ds.mode }

// NumLayers returns the number of layers.
func (ds *DataSource) NumLayers() int { return len(ds.layers) }

// Buffered returns the number of features buffered in layer i's queue.
func (ds *DataSource) Buffered(i int) int { return ds.layers[i].q.buffered() }

// Layers returns the layers in their configured order.
func (ds *DataSource) Layers() []*Layer {
	ls := make([]*Layer, len(ds.layers))
	copy(ls, ds.layers)
	return ls
}

// Layer returns the layer with the given name.
func (ds *DataSource) Layer(name string) (*Layer, bool) {
	i, ok := ds.byName[name]
	if !ok {
		return nil, false
	}
	return ds.layers[i], true
}

func (ds *DataSource) layerName(i int) string { return ds.layers[i].name }

// Err returns the first error the parser reported, if any. Reading ends
// early on a parse failure, so a nil feature from the pull calls should
// be followed by an Err check.
func (ds *DataSource) Err() error { return ds.err }

// EmitElement routes el, carrying its prebuilt geometry, into the named
// layer's queue. This is the sink side of the parser contract: a
// ReadChunk call emits any number of elements before returning.
func (ds *DataSource) EmitElement(layer string, el *Element, g geom.Geometry) {
	i, ok := ds.byName[layer]
	if !ok {
		if log.IsDebug {
			log.Debugf("data source %v: dropping element %v, no layer %v", ds.id, el.ID, layer)
		}
		return
	}
	l := ds.layers[i]
	if !l.interested {
		return
	}
	f := NewFeature(l.schema)
	f.SetGeometry(g)
	l.setFieldsFromTags(f, el)
	if !l.EvaluateAttributeFilter(f) {
		return
	}
	l.addFeature(f, true)
}

// seal freezes every layer's schema. Called on the first pull.
func (ds *DataSource) seal() { ds.sealed = true }

// parseNextChunk asks the parser for one more chunk on behalf of l and
// reports whether further input remains. A parse failure is kept on the
// data source and treated as exhaustion.
func (ds *DataSource) parseNextChunk(l *Layer) bool {
	if ds.stopped {
		return false
	}
	more, err := ds.parser.ReadChunk(ds, l.name)
	if err != nil {
		log.Errorf("data source %v: parse error: %v", ds.id, err)
		ds.err = err
		ds.stopped = true
		return false
	}
	if !more {
		ds.stopped = true
	}
	return more
}

// rewind restarts the stream from the beginning, dropping everything
// buffered in every layer.
func (ds *DataSource) rewind() {
	for _, l := range ds.layers {
		l.forceResetReading()
	}
	ds.coord.release()
	ds.seqIdx = 0
	ds.stopped = false
	if err := ds.parser.Rewind(); err != nil {
		log.Errorf("data source %v: rewind failed: %v", ds.id, err)
		ds.err = err
		ds.stopped = true
	}
}

// ResetReading rewinds the data source to the start of the stream for
// all layers, clearing any sticky parse error first.
func (ds *DataSource) ResetReading() error {
	ds.err = nil
	ds.rewind()
	return ds.err
}

// NextFeature returns the next feature of whichever layer the reading
// protocol serves next, along with that layer. It returns nil, nil once
// the stream is exhausted; check Err afterwards.
//
// In interleaved mode the turn follows the coordinator across layers. In
// sequential mode the layers are drained one after the other, rewinding
// the stream in between.
func (ds *DataSource) NextFeature() (*Layer, *Feature) {
	if len(ds.layers) == 0 {
		return nil, nil
	}

	if ds.mode == Interleaved {
		for {
			idx := ds.coord.current
			if idx < 0 {
				idx = 0
			}
			l := ds.layers[idx]
			if f := l.NextFeature(); f != nil {
				return l, f
			}
			if ds.coord.current < 0 {
				return nil, nil
			}
		}
	}

	for ds.seqIdx < len(ds.layers) {
		l := ds.layers[ds.seqIdx]
		if f := l.NextFeature(); f != nil {
			return l, f
		}
		next := ds.seqIdx + 1
		if next < len(ds.layers) {
			ds.rewind()
		}
		ds.seqIdx = next
	}
	return nil, nil
}

// computeDB opens the in memory engine evaluating computed attribute
// expressions, once, on first use.
func (ds *DataSource) computeDB() (*sql.DB, error) {
	if ds.db == nil {
		db, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			return nil, err
		}
		// expressions are bound and stepped one at a time, never
		// reentered
		db.SetMaxOpenConns(1)
		ds.db = db
	}
	return ds.db, nil
}

// Close releases the expression engine. The parser is the caller's to
// close.
func (ds *DataSource) Close() error {
	for _, l := range ds.layers {
		for _, c := range l.computed {
			if c.stmt != nil {
				c.stmt.Close()
			}
		}
	}
	if ds.db == nil {
		return nil
	}
	err := ds.db.Close()
	ds.db = nil
	return err
}
