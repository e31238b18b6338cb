// Package register wires configuration into runtime objects for the
// command line tools.
package register

import (
	"github.com/go-spatial/osm"
)

// Source opens a data source over parser from cfg. only, when non empty,
// restricts interest to the named layers; the other layers stay
// allocated but drop their elements.
func Source(parser osm.Parser, cfg osm.Config, only []string) (*osm.DataSource, error) {
	ds, err := osm.Open(parser, cfg)
	if err != nil {
		return nil, err
	}
	if len(only) == 0 {
		return ds, nil
	}
	wanted := make(map[string]struct{}, len(only))
	for _, name := range only {
		if _, ok := ds.Layer(name); !ok {
			ds.Close()
			return nil, osm.ErrLayerNotFound{Layer: name}
		}
		wanted[name] = struct{}{}
	}
	for _, l := range ds.Layers() {
		_, ok := wanted[l.Name()]
		l.SetInterest(ok)
	}
	return ds, nil
}
