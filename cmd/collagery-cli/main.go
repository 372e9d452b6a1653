package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile    string
	serverFlag string
	tokenFlag  string
)

var rootCmd = &cobra.Command{
	Use:     "collagery-cli",
	Version: version,
	Short:   "Admin client for the collagery server",
	Long: `Collagery CLI - admin client for the collagery server

Authenticate once with 'login'; the issued token is stored in the config
file and reused until it expires. All other commands talk to the server's
HTTP API with that token.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.collagery/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", "", "server URL (default: http://localhost:8080, env: COLLAGERY_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "", "admin token (env: COLLAGERY_TOKEN)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
