package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <slug>",
	Short: "Download a collage as a zip archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default: server-suggested name)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	client := newClient(cfg)
	data, name, err := client.export(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = name
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	fmt.Printf("wrote %s (%d bytes)\n", out, len(data))
	return nil
}
