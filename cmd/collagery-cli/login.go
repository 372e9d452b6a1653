package main

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and store the admin token",
	Long: `Prompt for the admin password, exchange it for a token, and store the
token in the config file for later commands.`,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	prompt := promptui.Prompt{
		Label: "Admin password",
		Mask:  '*',
		Validate: func(s string) error {
			if s == "" {
				return errors.New("password must not be empty")
			}
			return nil
		},
	}
	password, err := prompt.Run()
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	client := newClient(cfg)
	token, err := client.login(cmd.Context(), password)
	if err != nil {
		return err
	}

	cfg.Token = token
	if err := cfg.save(configPath()); err != nil {
		return err
	}

	fmt.Printf("Logged in to %s, token saved to %s\n", cfg.Server, configPath())
	return nil
}
