package cmd

import (
	"fmt"

	"github.com/meshwire/basp/wire"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the protocol version this build speaks",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("baspctl, protocol version %d\n", wire.ProtocolVersion)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
