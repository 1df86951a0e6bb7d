package main

import (
	"os"

	"github.com/spf13/cobra"
)

// RootCmd copies boundary and amenity datasets into PostgreSQL so the API
// can serve them with data.source=postgres.
var RootCmd = &cobra.Command{
	Use:   "civicmap-import",
	Short: "Import CivicMap datasets into PostgreSQL",
	Long: "Reads the city boundary and every amenity GeoJSON file from a data " +
		"directory (or an HTTP mirror) and replaces their rows in PostgreSQL.",
	SilenceUsage: true,
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
