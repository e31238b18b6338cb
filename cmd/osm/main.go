package main

import (
	"github.com/go-spatial/osm/cmd/osm/cmd"
)

// Version is set at build time via ldflags.
var Version = "version not set"

func main() {
	cmd.Execute(Version)
}
