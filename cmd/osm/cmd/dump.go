package cmd

import (
	"os"

	"github.com/go-spatial/cobra"
	"github.com/go-spatial/geom/encoding/geojson"
	jsoniter "github.com/json-iterator/go"

	"github.com/go-spatial/osm"
	"github.com/go-spatial/osm/cmd/internal/register"
	"github.com/go-spatial/osm/internal/log"
	"github.com/go-spatial/osm/jsonl"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	dumpLayers      []string
	dumpInterleaved bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump <elements.jsonl>",
	Short: "Materialize an element stream and write features as NDJSON",
	Long: `dump feeds the element stream through the configured layers and writes
one JSON feature per line to stdout: layer name, feature id, the set
fields and the geometry as GeoJSON. Input files ending in .gz or .zst
are decompressed on the fly.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if dumpInterleaved {
			cfg.InterleavedReading = true
		}

		p, err := jsonl.Open(args[0])
		if err != nil {
			return err
		}
		defer p.Close()

		ds, err := register.Source(p, cfg, dumpLayers)
		if err != nil {
			return err
		}
		defer ds.Close()

		enc := json.NewEncoder(os.Stdout)
		n := 0
		for {
			l, f := ds.NextFeature()
			if f == nil {
				break
			}
			if err := enc.Encode(dumpFeatureFrom(l, f)); err != nil {
				return err
			}
			n++
		}
		if err := ds.Err(); err != nil {
			return err
		}
		log.Infof("dumped %v features", n)
		return nil
	},
}

func init() {
	dumpCmd.Flags().StringSliceVar(&dumpLayers, "layers", nil, "layers to dump. all configured layers when not set")
	dumpCmd.Flags().BoolVar(&dumpInterleaved, "interleaved", false, "single pass over the stream for all layers")
}

type dumpFeature struct {
	Layer      string                 `json:"layer"`
	FID        int64                  `json:"fid"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   *geojson.Geometry      `json:"geometry,omitempty"`
}

func dumpFeatureFrom(l *osm.Layer, f *osm.Feature) dumpFeature {
	df := dumpFeature{
		Layer:      l.Name(),
		FID:        f.FID(),
		Properties: map[string]interface{}{},
	}
	s := f.Schema()
	for i := 0; i < s.NumFields(); i++ {
		if !f.IsFieldSet(i) {
			continue
		}
		df.Properties[s.Field(i).Name] = f.FieldValue(i)
	}
	if g := f.Geometry(); g != nil {
		df.Geometry = &geojson.Geometry{Geometry: g}
	}
	return df
}
