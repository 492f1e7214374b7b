// Package cmd implements baspctl's command tree: an operator CLI over a
// running baspd instance's admin socket, in the style of the pack's
// strandctl.
package cmd

import (
	"fmt"
	"os"

	"github.com/meshwire/basp/adminsock"
	"github.com/meshwire/basp/cmd/baspctl/pkg/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	socketFlag string
	cfg        *config.Config
)

// RootCmd is the base command for baspctl.
var RootCmd = &cobra.Command{
	Use:           "baspctl",
	Short:         "Inspect and drive a running baspd instance",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		}

		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		if socketFlag != "" {
			cfg.AdminSocket = socketFlag
		}

		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.basp/baspctl.yaml)")
	RootCmd.PersistentFlags().StringVar(&socketFlag, "socket", "", "admin socket path (overrides config)")
}

// Execute runs the command tree, printing any error to stderr.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dialAdmin() (*adminsock.Client, error) {
	return adminsock.Dial(cfg.AdminSocket)
}
