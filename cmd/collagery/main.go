package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var configFiles []string

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "collagery",
	Short:   "Backend for a photo-collage publishing site",
	Long: `Collagery is a stateless HTTP backend for publishing photo collages.
All durable state lives in a remote media CDN; there is no database.`,
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&configFiles, "config", nil,
		"config file path, repeatable (default: ./config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
