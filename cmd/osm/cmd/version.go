package cmd

import (
	"fmt"

	"github.com/go-spatial/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of osm",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}
