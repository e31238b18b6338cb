package jsonl

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"
	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/zstd"

	"github.com/go-spatial/osm"
)

// Writer writes elements as line delimited JSON, one element per line,
// in the format Parser reads back.
type Writer struct {
	enc *jsoniter.Encoder
	zw  io.WriteCloser
	f   *os.File
}

// NewWriter writes elements to w. The caller owns w; Close on the
// returned Writer only flushes compression opened by Create.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Create creates a line delimited JSON element file. Compression is
// picked by extension (.gz, .zst).
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	var w io.Writer = f
	var zw io.WriteCloser
	switch {
	case strings.HasSuffix(path, ".gz"):
		gz := gzip.NewWriter(f)
		zw, w = gz, gz
	case strings.HasSuffix(path, ".zst"):
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		zw, w = enc, enc
	}
	return &Writer{enc: json.NewEncoder(w), zw: zw, f: f}, nil
}

// WriteElement writes one element addressed to layer.
func (w *Writer) WriteElement(layer string, el *osm.Element, g geom.Geometry) error {
	rec := record{Layer: layer, ID: el.ID, IsWayID: el.IsWayID}
	for _, t := range el.Tags {
		rec.Tags = append(rec.Tags, [2]string{t.Key, t.Value})
	}
	if el.Info != nil {
		rec.Info = &recordInfo{
			Version:   el.Info.Version,
			UID:       el.Info.UID,
			User:      el.Info.User,
			Changeset: el.Info.Changeset,
			Timestamp: el.Info.Timestamp,
			Epoch:     el.Info.Epoch,
		}
	}
	if g != nil {
		rec.Geometry = &geojson.Geometry{Geometry: g}
	}
	return w.enc.Encode(rec)
}

// Close flushes compression and closes the file when the Writer was
// opened with Create.
func (w *Writer) Close() error {
	var err error
	if w.zw != nil {
		err = w.zw.Close()
		w.zw = nil
	}
	if w.f != nil {
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
		w.f = nil
	}
	return err
}
