package osm

import (
	"bytes"
	"strings"

	"github.com/go-spatial/geom"

	"github.com/go-spatial/osm/internal/log"
)

// A FeatureFilter reports whether a feature passes an attribute filter.
type FeatureFilter func(*Feature) bool

// A Layer is one logical feature class of a data source: a schema, a
// bounded queue of materialized features, and the filters and key sets
// that decide what reaches the queue.
type Layer struct {
	ds     *DataSource
	idx    int
	name   string
	schema *Schema

	q featureQueue

	interested    bool
	spatialFilter *geom.Extent
	filter        FeatureFilter

	// resetAllowed tracks whether a rewind may be honored; it flips on
	// with each pull and off after a forced reset.
	resetAllowed bool
	warnedFull   bool

	hasVersion   bool
	hasTimestamp bool
	hasUID       bool
	hasUser      bool
	hasChangeset bool

	ignoreKeys        map[string]struct{}
	insignificantKeys map[string]struct{}
	warnKeys          map[string]struct{}

	computed []*computedAttribute

	blobBuf bytes.Buffer
}

func newLayer(ds *DataSource, idx int, name string) *Layer {
	return &Layer{
		ds:                ds,
		idx:               idx,
		name:              name,
		schema:            newSchema(),
		q:                 newFeatureQueue(),
		interested:        true,
		ignoreKeys:        map[string]struct{}{},
		insignificantKeys: map[string]struct{}{},
		warnKeys:          map[string]struct{}{},
	}
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.name }

// Schema returns the layer's field catalog.
func (l *Layer) Schema() *Schema { return l.schema }

// Buffered returns the number of features waiting in the layer's queue.
func (l *Layer) Buffered() int { return l.q.buffered() }

// SetInterest marks whether the layer wants features at all. Elements
// routed to an uninterested layer are dropped before materialization.
func (l *Layer) SetInterest(interested bool) { l.interested = interested }

// Interested reports whether the layer wants features.
func (l *Layer) Interested() bool { return l.interested }

// AddField appends a field matching the raw tag key name and returns its
// index. The visible column name is laundered when the data source
// enables laundering.
func (l *Layer) AddField(name string, t FieldType, sub FieldSubType) (int, error) {
	if l.ds.sealed {
		return -1, ErrSchemaFrozen{Layer: l.name}
	}
	return l.schema.addField(name, t, sub, l.ds.launderNames), nil
}

// AddComputedAttribute registers a SQL expression whose single column
// result populates a new field named name. References written [attr]
// read the feature's fields when one matches the referenced name, and
// the feature's raw tags otherwise. The expression is prepared once at
// registration; failure to prepare leaves the schema unchanged.
func (l *Layer) AddComputedAttribute(name string, t FieldType, sqlExpr string) error {
	if l.ds.sealed {
		return ErrSchemaFrozen{Layer: l.name}
	}
	if l.schema.FindFieldByName(name) >= 0 {
		return ErrFieldExists{Layer: l.name, Field: name}
	}
	db, err := l.ds.computeDB()
	if err != nil {
		return ErrComputedAttribute{Layer: l.name, Name: name, Err: err}
	}

	rewritten, refs := parseComputedSQL(sqlExpr)
	binds := make([]bindRef, len(refs))
	for i, attr := range refs {
		binds[i] = bindRef{attr: attr, fieldIdx: l.schema.FindFieldByName(attr)}
	}

	stmt, err := db.Prepare(rewritten)
	if err != nil {
		return ErrComputedAttribute{Layer: l.name, Name: name, Err: err}
	}
	log.Debugf("layer %v: computed attribute %v prepared as %q", l.name, name, rewritten)

	idx := l.schema.addComputedField(name, t)
	l.computed = append(l.computed, &computedAttribute{
		name:            name,
		ftype:           t,
		index:           idx,
		sql:             sqlExpr,
		stmt:            stmt,
		binds:           binds,
		hardcodedZOrder: t == FTInteger && sqlExpr == ZOrderSQL,
	})
	return nil
}

// AddIgnoreKey excludes a tag key from blob serialization. A key ending
// in ':' excludes every key of that namespace.
func (l *Layer) AddIgnoreKey(key string) {
	l.ignoreKeys[key] = struct{}{}
}

// AddInsignificantKey marks a tag key as carrying no significance of its
// own. Parsers consult the set when deciding whether an element carries
// anything worth emitting.
func (l *Layer) AddInsignificantKey(key string) {
	l.insignificantKeys[key] = struct{}{}
}

// IsInsignificantKey reports whether key is in the insignificant set.
func (l *Layer) IsInsignificantKey(key string) bool {
	_, ok := l.insignificantKeys[key]
	return ok
}

// AddWarnKey marks a tag key as expected, suppressing the one time debug
// log emitted when an unlisted key first shows up during blob handling.
func (l *Layer) AddWarnKey(key string) {
	l.warnKeys[key] = struct{}{}
}

// inBlob reports whether a tag key belongs in the serialized blob. A
// namespaced key is also tested by its prefix up to and including the
// first ':'.
func (l *Layer) inBlob(key string) bool {
	if _, ok := l.ignoreKeys[key]; ok {
		return false
	}
	if i := strings.IndexByte(key, ':'); i >= 0 {
		_, ok := l.ignoreKeys[key[:i+1]]
		return !ok
	}
	return true
}

func (l *Layer) noteKey(key string) {
	if _, ok := l.warnKeys[key]; ok {
		return
	}
	l.warnKeys[key] = struct{}{}
	log.Debugf("layer %v: unlisted key %v", l.name, key)
}

// SetAttributeFilter installs filter for subsequently materialized
// features; nil clears it. Features already buffered are not refiltered:
// when the layer is midway through its buffer a warning is logged, and
// otherwise, in sequential mode, the data source rewinds so the filter
// applies from the start of the stream.
func (l *Layer) SetAttributeFilter(filter FeatureFilter) {
	if filter == nil && l.filter == nil {
		return
	}
	l.filter = filter
	if l.q.next == 0 {
		if l.ds.mode != Interleaved {
			l.ds.rewind()
		}
		return
	}
	log.Warnf("layer %v: the new attribute filter does not apply to already buffered features; set filters on all layers before reading any", l.name)
}

// EvaluateAttributeFilter reports whether f passes the layer's attribute
// filter. A layer with no filter passes everything.
func (l *Layer) EvaluateAttributeFilter(f *Feature) bool {
	return l.filter == nil || l.filter(f)
}

// SetSpatialFilter keeps only features whose geometry extent overlaps
// ext; nil clears it. Like the attribute filter it applies to features
// materialized after the call.
func (l *Layer) SetSpatialFilter(ext *geom.Extent) {
	l.spatialFilter = ext
}

// NextFeature returns the next feature of the layer, or nil.
//
// In sequential mode nil means the stream is exhausted, or failed; check
// DataSource.Err. In interleaved mode nil also means the turn has moved
// to another layer; use DataSource.NextFeature to follow the turn
// automatically.
func (l *Layer) NextFeature() *Feature {
	l.resetAllowed = true
	l.ds.seal()

	if l.q.buffered() == 0 {
		if l.ds.mode == Interleaved {
			if !l.fillInterleaved() {
				return nil
			}
		} else if !l.fillSequential() {
			return nil
		}
	}
	return l.q.dequeue()
}

// fillInterleaved tries to buffer features for one interleaved pull and
// reports whether any are ready. The coordinator may move the turn to
// another layer instead of letting this one consume upstream data.
func (l *Layer) fillInterleaved() bool {
	owned := l.ds.coord.current < 0 || l.ds.coord.current == l.idx
	parse, switchTo := l.ds.coord.claim(l.idx, l.ds)
	if !parse {
		if owned && switchTo >= 0 {
			log.Debugf("switching to layer %v, too many features buffered in %v",
				l.ds.layerName(switchTo), l.name)
		}
		return false
	}

	l.ds.parseNextChunk(l)

	if l.q.buffered() == 0 {
		if j := l.ds.coord.resolve(l.idx, l.ds); j >= 0 {
			log.Debugf("switching to layer %v, no more features in %v",
				l.ds.layerName(j), l.name)
		}
		return false
	}
	return true
}

// fillSequential parses upstream data until the layer has something
// buffered or the stream runs out.
func (l *Layer) fillSequential() bool {
	for {
		more := l.ds.parseNextChunk(l)
		if l.q.buffered() > 0 {
			return true
		}
		if !more {
			return false
		}
	}
}

// ResetReading rewinds the whole data source to the start of the stream.
// It is a no op in interleaved mode, and between a rewind and the next
// pull.
func (l *Layer) ResetReading() {
	if !l.resetAllowed || l.ds.mode == Interleaved {
		return
	}
	l.ds.rewind()
}

// forceResetReading drops the layer's buffered features and blocks
// further resets until the next pull.
func (l *Layer) forceResetReading() {
	l.q.reset()
	l.resetAllowed = false
}

// addFeature offers a materialized feature to the layer. filteredOut
// reports that interest or a filter dropped it; ok reports whether the
// feature was taken care of, false meaning the queue refused it at
// capacity.
func (l *Layer) addFeature(f *Feature, preEvaluated bool) (filteredOut, ok bool) {
	if !l.interested {
		return true, true
	}
	if l.spatialFilter != nil {
		ext := geomExtent(f.Geometry())
		if ext == nil || !extentsOverlap(ext, l.spatialFilter) {
			return true, true
		}
	}
	if !preEvaluated && !l.EvaluateAttributeFilter(f) {
		return true, true
	}
	if !l.q.enqueue(f) {
		if !l.warnedFull {
			log.Warnf("layer %v: too many features buffered, dropping; enable interleaved_reading so layers drain in step", l.name)
		}
		l.warnedFull = true
		return false, false
	}
	return false, true
}
