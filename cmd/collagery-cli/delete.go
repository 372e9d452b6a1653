package main

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete a collage and all its stored media",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	slug := args[0]

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if !deleteYes {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("Delete %q and all its media", slug),
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) {
				fmt.Println("aborted")
				return nil
			}
			return fmt.Errorf("read confirmation: %w", err)
		}
	}

	client := newClient(cfg)
	if err := client.delete(cmd.Context(), slug); err != nil {
		return err
	}

	fmt.Printf("deleted %s\n", slug)
	return nil
}
