package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hideCmd = &cobra.Command{
	Use:   "hide <slug>",
	Short: "Hide a collage from public listings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setVisibility(cmd, args[0], false)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Make a collage publicly visible",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setVisibility(cmd, args[0], true)
	},
}

func setVisibility(cmd *cobra.Command, slug string, visible bool) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	client := newClient(cfg)
	if err := client.setVisibility(cmd.Context(), slug, visible); err != nil {
		return err
	}

	state := "hidden"
	if visible {
		state = "visible"
	}
	fmt.Printf("%s is now %s\n", slug, state)
	return nil
}
