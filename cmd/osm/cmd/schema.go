package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/go-spatial/cobra"

	"github.com/go-spatial/osm"
	"github.com/go-spatial/osm/cmd/internal/register"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configured layers and their fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ds, err := register.Source(nopParser{}, cfg, nil)
		if err != nil {
			return err
		}
		defer ds.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, l := range ds.Layers() {
			fmt.Fprintf(w, "layer %v\n", l.Name())
			s := l.Schema()
			for i := 0; i < s.NumFields(); i++ {
				fd := s.Field(i)
				if fd.SubType != osm.FSTNone {
					fmt.Fprintf(w, "\t%v\t%v (%v)\n", fd.Name, fd.Type, fd.SubType)
					continue
				}
				fmt.Fprintf(w, "\t%v\t%v\n", fd.Name, fd.Type)
			}
		}
		return w.Flush()
	},
}

// nopParser satisfies osm.Parser for commands that never pull features.
type nopParser struct{}

func (nopParser) ReadChunk(sink osm.ElementSink, layer string) (bool, error) { return false, nil }

func (nopParser) Rewind() error { return nil }
