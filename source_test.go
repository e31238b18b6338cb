package osm_test

import (
	"errors"
	"testing"

	"github.com/go-spatial/geom"
	"github.com/go-test/deep"

	"github.com/go-spatial/osm"
	"github.com/go-spatial/osm/osmtest"
)

type pull struct {
	Layer string
	FID   int64
}

func drain(ds *osm.DataSource) ([]pull, map[string]*osm.Feature) {
	var got []pull
	last := map[string]*osm.Feature{}
	for {
		l, f := ds.NextFeature()
		if f == nil {
			return got, last
		}
		got = append(got, pull{l.Name(), f.FID()})
		last[l.Name()] = f
	}
}

func twoLayerConfig(interleaved bool) osm.Config {
	return osm.Config{
		AttributeNameLaundering: true,
		InterleavedReading:      interleaved,
		Layers: []osm.LayerConfig{
			{Name: "points", OSMId: true, Attributes: []string{"name"}, OtherTags: true},
			{Name: "lines", OSMId: true, Attributes: []string{"name"}, OtherTags: true},
		},
	}
}

func TestOpenValidates(t *testing.T) {
	cfg := twoLayerConfig(false)
	cfg.Layers[1].Name = "points"
	_, err := osm.Open(osmtest.New(), cfg)
	if _, ok := err.(osm.ErrDuplicateLayer); !ok {
		t.Fatalf("expected ErrDuplicateLayer, got %v", err)
	}
}

func TestOpenLayerLookup(t *testing.T) {
	ds, err := osm.Open(osmtest.New(), twoLayerConfig(false))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ds.Close()

	if ds.NumLayers() != 2 {
		t.Errorf("expected 2 layers, got %v", ds.NumLayers())
	}
	if ls := ds.Layers(); len(ls) != 2 || ls[0].Name() != "points" || ls[1].Name() != "lines" {
		t.Errorf("layers out of order: %v, %v", ls[0].Name(), ls[1].Name())
	}
	if l, ok := ds.Layer("lines"); !ok || l.Name() != "lines" {
		t.Errorf("lookup by name failed")
	}
	if _, ok := ds.Layer("nope"); ok {
		t.Errorf("expected no layer named nope")
	}
	if ds.Mode() != osm.Sequential {
		t.Errorf("expected sequential mode, got %v", ds.Mode())
	}
}

func TestSequentialReading(t *testing.T) {
	p := osmtest.New(
		osmtest.Chunk{
			{Layer: "points", Element: osmtest.El(1, "name", "a")},
			{Layer: "lines", Element: osmtest.El(2, "name", "b", "foo", "bar")},
		},
		osmtest.Chunk{
			{Layer: "points", Element: osmtest.El(3, "name", "c")},
		},
	)
	ds, err := osm.Open(p, twoLayerConfig(false))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ds.Close()

	got, last := drain(ds)

	// the lines layer replays the stream after points is done
	want := []pull{{"points", 1}, {"points", 3}, {"lines", 2}}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("pull order: %v", diff)
	}
	if p.Rewinds != 1 {
		t.Errorf("expected 1 rewind between layers, got %v", p.Rewinds)
	}
	if p.Reads != 4 {
		t.Errorf("expected 4 reads, got %v", p.Reads)
	}
	if p.ReadLayers[0] != "points" || p.ReadLayers[2] != "lines" {
		t.Errorf("reads should carry the pulling layer, got %v", p.ReadLayers)
	}

	lines, _ := ds.Layer("lines")
	f := last["lines"]
	if got := f.FieldAsString(lines.Schema().FindFieldByName("name")); got != "b" {
		t.Errorf("name, expected b got %q", got)
	}
	if got := f.FieldAsString(lines.Schema().FindFieldByName("other_tags")); got != `"foo"=>"bar"` {
		t.Errorf("other_tags, expected %q got %q", `"foo"=>"bar"`, got)
	}

	// exhaustion is terminal
	if l, f := ds.NextFeature(); l != nil || f != nil {
		t.Errorf("expected nil, nil after exhaustion")
	}
	if p.Reads != 4 {
		t.Errorf("terminal pulls should not read, got %v reads", p.Reads)
	}
	if ds.Err() != nil {
		t.Errorf("unexpected error %v", ds.Err())
	}
}

func TestInterleavedReading(t *testing.T) {
	p := osmtest.New(
		osmtest.Chunk{
			{Layer: "points", Element: osmtest.El(1)},
			{Layer: "lines", Element: osmtest.El(2)},
		},
		osmtest.Chunk{
			{Layer: "lines", Element: osmtest.El(3)},
		},
		osmtest.Chunk{
			{Layer: "points", Element: osmtest.El(4)},
		},
	)
	ds, err := osm.Open(p, twoLayerConfig(true))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ds.Close()

	if ds.Mode() != osm.Interleaved {
		t.Fatalf("expected interleaved mode, got %v", ds.Mode())
	}

	got, _ := drain(ds)

	// one pass, features surface in stream order
	want := []pull{{"points", 1}, {"lines", 2}, {"lines", 3}, {"points", 4}}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("pull order: %v", diff)
	}
	if p.Rewinds != 0 {
		t.Errorf("interleaved reading should never rewind, got %v", p.Rewinds)
	}
	if p.Reads != 3 {
		t.Errorf("expected 3 reads, got %v", p.Reads)
	}

	if l, f := ds.NextFeature(); l != nil || f != nil {
		t.Errorf("expected nil, nil after exhaustion")
	}
	if p.Reads != 3 {
		t.Errorf("terminal pulls should not read, got %v reads", p.Reads)
	}
}

func TestInterleavedSwitchWithoutReading(t *testing.T) {
	// chunk 0 overfills lines while points gets a single feature; the
	// next points pull must hand the turn to lines without touching the
	// parser
	chunk0 := osmtest.Chunk{{Layer: "points", Element: osmtest.El(1)}}
	for i := 0; i < osm.SwitchThreshold+1; i++ {
		chunk0 = append(chunk0, osmtest.Emit{Layer: "lines", Element: osmtest.El(int64(1000 + i))})
	}
	p := osmtest.New(chunk0, osmtest.Chunk{{Layer: "points", Element: osmtest.El(2)}})

	ds, err := osm.Open(p, twoLayerConfig(true))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ds.Close()

	l, f := ds.NextFeature()
	if l == nil || l.Name() != "points" || f.FID() != 1 {
		t.Fatalf("expected points feature 1 first")
	}
	if p.Reads != 1 {
		t.Fatalf("expected 1 read, got %v", p.Reads)
	}

	l, f = ds.NextFeature()
	if l == nil || l.Name() != "lines" {
		t.Fatalf("expected the turn to move to lines")
	}
	if p.Reads != 1 {
		t.Errorf("the turn should move without reading, got %v reads", p.Reads)
	}

	linesSeen := 1
	for {
		l, f = ds.NextFeature()
		if l == nil || l.Name() != "lines" {
			break
		}
		linesSeen++
	}
	if linesSeen != osm.SwitchThreshold+1 {
		t.Errorf("expected %v lines features, got %v", osm.SwitchThreshold+1, linesSeen)
	}

	// draining lines hands the turn back
	if l == nil || l.Name() != "points" || f.FID() != 2 {
		t.Fatalf("expected points feature 2 after lines drained")
	}
	if p.Reads != 2 {
		t.Errorf("expected 2 reads, got %v", p.Reads)
	}

	if l, f := ds.NextFeature(); l != nil || f != nil {
		t.Errorf("expected nil, nil after exhaustion")
	}
	if p.Reads != 2 {
		t.Errorf("terminal pulls should not read, got %v reads", p.Reads)
	}
}

func TestParseErrorSticks(t *testing.T) {
	boom := errors.New("boom")
	p := osmtest.New(
		osmtest.Chunk{{Layer: "points", Element: osmtest.El(1)}},
		osmtest.Chunk{{Layer: "points", Element: osmtest.El(99)}},
	)
	p.Err = boom
	p.FailAt = 1

	cfg := osm.Config{
		AttributeNameLaundering: true,
		Layers:                  []osm.LayerConfig{{Name: "points", OSMId: true, OtherTags: true}},
	}
	ds, err := osm.Open(p, cfg)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ds.Close()

	l, f := ds.NextFeature()
	if l == nil || f.FID() != 1 {
		t.Fatalf("expected feature 1 before the failure")
	}

	if l, f := ds.NextFeature(); l != nil || f != nil {
		t.Fatalf("expected nil after the failure")
	}
	if ds.Err() != boom {
		t.Fatalf("expected the parse error, got %v", ds.Err())
	}

	reads := p.Reads
	if l, f := ds.NextFeature(); l != nil || f != nil {
		t.Errorf("failed streams stay stopped")
	}
	if p.Reads != reads {
		t.Errorf("failed streams should not read, got %v reads", p.Reads)
	}

	// a reset clears the error and replays from the top
	if err := ds.ResetReading(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if ds.Err() != nil {
		t.Fatalf("expected the error cleared, got %v", ds.Err())
	}
	l, f = ds.NextFeature()
	if l == nil || f == nil || f.FID() != 1 {
		t.Fatalf("expected the stream to replay")
	}
	if p.Rewinds != 1 {
		t.Errorf("expected 1 rewind, got %v", p.Rewinds)
	}
}

func TestLayerInterest(t *testing.T) {
	p := osmtest.New(osmtest.Chunk{
		{Layer: "points", Element: osmtest.El(1)},
		{Layer: "lines", Element: osmtest.El(2)},
		{Layer: "attic", Element: osmtest.El(3)},
	})
	ds, err := osm.Open(p, twoLayerConfig(false))
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ds.Close()

	lines, _ := ds.Layer("lines")
	lines.SetInterest(false)

	got, _ := drain(ds)

	// elements for uninterested or unknown layers vanish
	want := []pull{{"points", 1}}
	if diff := deep.Equal(got, want); diff != nil {
		t.Fatalf("pull order: %v", diff)
	}
	if lines.Buffered() != 0 {
		t.Errorf("uninterested layers should buffer nothing, got %v", lines.Buffered())
	}
}

func TestSpatialFilterReading(t *testing.T) {
	p := osmtest.New(osmtest.Chunk{
		{Layer: "points", Element: osmtest.El(1), Geometry: geom.Point{5, 5}},
		{Layer: "points", Element: osmtest.El(2), Geometry: geom.Point{50, 50}},
		{Layer: "points", Element: osmtest.El(3)},
	})
	cfg := osm.Config{
		AttributeNameLaundering: true,
		Layers:                  []osm.LayerConfig{{Name: "points", OSMId: true, OtherTags: true}},
	}
	ds, err := osm.Open(p, cfg)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ds.Close()

	points, _ := ds.Layer("points")
	points.SetSpatialFilter(&geom.Extent{0, 0, 10, 10})

	l, f := ds.NextFeature()
	if l == nil || f.FID() != 1 {
		t.Fatalf("expected feature 1")
	}
	if _, ok := f.Geometry().(geom.Point); !ok {
		t.Errorf("expected a point geometry, got %T", f.Geometry())
	}

	// 2 is out of the extent and 3 has no geometry at all
	if l, f := ds.NextFeature(); l != nil || f != nil {
		t.Errorf("expected the filter to drop everything else")
	}
}

func TestLayerPullAndReset(t *testing.T) {
	p := osmtest.New(
		osmtest.Chunk{{Layer: "points", Element: osmtest.El(1)}},
		osmtest.Chunk{{Layer: "points", Element: osmtest.El(2)}},
	)
	cfg := osm.Config{
		AttributeNameLaundering: true,
		Layers:                  []osm.LayerConfig{{Name: "points", OSMId: true, OtherTags: true}},
	}
	ds, err := osm.Open(p, cfg)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ds.Close()

	points, _ := ds.Layer("points")
	if f := points.NextFeature(); f == nil || f.FID() != 1 {
		t.Fatalf("expected feature 1")
	}
	if f := points.NextFeature(); f == nil || f.FID() != 2 {
		t.Fatalf("expected feature 2")
	}
	if f := points.NextFeature(); f != nil {
		t.Fatalf("expected exhaustion, got %v", f.FID())
	}
	if ds.Err() != nil {
		t.Fatalf("unexpected error %v", ds.Err())
	}

	points.ResetReading()
	if p.Rewinds != 1 {
		t.Fatalf("expected 1 rewind, got %v", p.Rewinds)
	}
	if f := points.NextFeature(); f == nil || f.FID() != 1 {
		t.Fatalf("expected the stream to replay")
	}
}

func TestNextFeatureNoLayers(t *testing.T) {
	ds, err := osm.Open(osmtest.New(), osm.Config{AttributeNameLaundering: true})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ds.Close()

	if l, f := ds.NextFeature(); l != nil || f != nil {
		t.Errorf("expected nil, nil with no layers")
	}
}
