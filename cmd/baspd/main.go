// Command baspd is a reference BASP node: it dials and accepts peer
// connections over tcptransport, drives them through the engine's
// receive state machine, and exposes a read-only admin socket for
// baspctl.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "baspd",
		Short:         "Binary Actor System Protocol daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
