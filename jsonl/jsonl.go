// Package jsonl reads and writes element streams as line delimited JSON.
//
// Each line is one element addressed to a layer by name, with its tags in
// order, optional versioning metadata and a GeoJSON geometry. Files ending
// in .gz or .zst are transparently decompressed. The format exists as a
// fixture and interchange representation; it is not an OSM wire format.
package jsonl

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"
	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/zstd"

	"github.com/go-spatial/osm"
	"github.com/go-spatial/osm/internal/log"
)

// json is a drop-in replacement for encoding/json with better performance.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultChunkSize is the number of elements one ReadChunk call
	// emits unless ChunkSize overrides it.
	DefaultChunkSize = 1024

	// maxLineBytes caps a single line. Relation geometries get big.
	maxLineBytes = 16 << 20
)

// record is the wire form of one line.
type record struct {
	Layer    string            `json:"layer"`
	ID       int64             `json:"id"`
	IsWayID  bool              `json:"is_way_id,omitempty"`
	Tags     [][2]string       `json:"tags,omitempty"`
	Info     *recordInfo       `json:"info,omitempty"`
	Geometry *geojson.Geometry `json:"geometry,omitempty"`
}

type recordInfo struct {
	Version   int    `json:"version,omitempty"`
	UID       int64  `json:"uid,omitempty"`
	User      string `json:"user,omitempty"`
	Changeset int64  `json:"changeset,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Epoch     int64  `json:"epoch,omitempty"`
}

func (r *record) element() (*osm.Element, geom.Geometry) {
	el := &osm.Element{ID: r.ID, IsWayID: r.IsWayID}
	for _, kv := range r.Tags {
		el.Tags = append(el.Tags, osm.Tag{Key: kv[0], Value: kv[1]})
	}
	if r.Info != nil {
		el.Info = &osm.Info{
			Version:   r.Info.Version,
			UID:       r.Info.UID,
			User:      r.Info.User,
			Changeset: r.Info.Changeset,
			Timestamp: r.Info.Timestamp,
			Epoch:     r.Info.Epoch,
		}
	}
	var g geom.Geometry
	if r.Geometry != nil {
		g = r.Geometry.Geometry
	}
	return el, g
}

// Option adjusts a Parser.
type Option func(*Parser)

// ChunkSize sets how many elements one ReadChunk call emits.
func ChunkSize(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.chunk = n
		}
	}
}

// Parser streams elements from a line delimited JSON file. It implements
// osm.Parser; Rewind reopens the file.
type Parser struct {
	path  string
	chunk int

	f    *os.File
	zr   io.ReadCloser
	sc   *bufio.Scanner
	next []byte
	line int
	err  error
}

// Open opens a line delimited JSON element file. Compression is picked
// by extension (.gz, .zst).
func Open(path string, opts ...Option) (*Parser, error) {
	p := &Parser{path: path, chunk: DefaultChunkSize}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.open(); err != nil {
		return nil, err
	}
	log.Debugf("jsonl: opened %v (chunk size %v)", path, p.chunk)
	return p, nil
}

func (p *Parser) open() error {
	f, err := os.Open(p.path)
	if err != nil {
		return err
	}
	var r io.Reader = f
	var zr io.ReadCloser
	switch {
	case strings.HasSuffix(p.path, ".gz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return err
		}
		zr, r = gz, gz
	case strings.HasSuffix(p.path, ".zst"):
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return err
		}
		zr = dec.IOReadCloser()
		r = zr
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	p.f, p.zr, p.sc = f, zr, sc
	p.line, p.next, p.err = 0, nil, nil
	return p.advance()
}

// advance scans forward to the next non blank line, so more reporting
// never needs a speculative extra read.
func (p *Parser) advance() error {
	for p.sc.Scan() {
		p.line++
		line := bytes.TrimSpace(p.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		// the scanner reuses its buffer between lines
		p.next = append(p.next[:0], line...)
		return nil
	}
	p.next = nil
	return p.sc.Err()
}

// ReadChunk emits up to the chunk size of elements into sink. The layer
// hint is ignored; lines are emitted in file order.
func (p *Parser) ReadChunk(sink osm.ElementSink, layer string) (bool, error) {
	if p.err != nil {
		return false, p.err
	}
	for n := 0; n < p.chunk && p.next != nil; n++ {
		var rec record
		if err := json.Unmarshal(p.next, &rec); err != nil {
			p.err = fmt.Errorf("jsonl %v: line %v: %v", p.path, p.line, err)
			return false, p.err
		}
		el, g := rec.element()
		sink.EmitElement(rec.Layer, el, g)
		if err := p.advance(); err != nil {
			p.err = fmt.Errorf("jsonl %v: %v", p.path, err)
			return false, p.err
		}
	}
	return p.next != nil, nil
}

// Rewind reopens the file and restarts from the first line.
func (p *Parser) Rewind() error {
	p.Close()
	return p.open()
}

// Close releases the underlying file. The parser stays reusable through
// Rewind.
func (p *Parser) Close() error {
	var err error
	if p.zr != nil {
		err = p.zr.Close()
		p.zr = nil
	}
	if p.f != nil {
		if cerr := p.f.Close(); err == nil {
			err = cerr
		}
		p.f = nil
	}
	p.sc, p.next = nil, nil
	return err
}
