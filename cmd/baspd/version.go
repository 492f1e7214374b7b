package main

import (
	"fmt"

	"github.com/meshwire/basp/wire"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the protocol version this build speaks",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("baspd, protocol version %d\n", wire.ProtocolVersion)
			return nil
		},
	}
}
