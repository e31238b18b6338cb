package register_test

import (
	"testing"

	"github.com/go-spatial/osm"
	"github.com/go-spatial/osm/cmd/internal/register"
	"github.com/go-spatial/osm/osmtest"
)

func testConfig() osm.Config {
	return osm.Config{
		AttributeNameLaundering: true,
		Layers: []osm.LayerConfig{
			{Name: "points", OSMId: true, OtherTags: true},
			{Name: "lines", OSMId: true, OtherTags: true},
			{Name: "multipolygons", OSMId: true, OtherTags: true},
		},
	}
}

func TestSourceSelectsLayers(t *testing.T) {
	ds, err := register.Source(osmtest.New(), testConfig(), []string{"lines", "points"})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ds.Close()

	for _, l := range ds.Layers() {
		want := l.Name() == "lines" || l.Name() == "points"
		if l.Interested() != want {
			t.Errorf("layer %v, expected interest %v", l.Name(), want)
		}
	}
}

func TestSourceAllLayers(t *testing.T) {
	ds, err := register.Source(osmtest.New(), testConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	defer ds.Close()

	for _, l := range ds.Layers() {
		if !l.Interested() {
			t.Errorf("layer %v should be interested", l.Name())
		}
	}
}

func TestSourceUnknownLayer(t *testing.T) {
	_, err := register.Source(osmtest.New(), testConfig(), []string{"points", "nope"})
	if _, ok := err.(osm.ErrLayerNotFound); !ok {
		t.Fatalf("expected ErrLayerNotFound, got %v", err)
	}
}

func TestSourceBadConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Layers[0].Name = ""
	_, err := register.Source(osmtest.New(), cfg, nil)
	if err != osm.ErrMissingLayerName {
		t.Fatalf("expected ErrMissingLayerName, got %v", err)
	}
}
