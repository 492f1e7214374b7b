package cmd

import (
	"fmt"

	"github.com/meshwire/basp/adminsock"
	"github.com/spf13/cobra"
)

var publishedCmd = &cobra.Command{
	Use:   "published",
	Short: "Show the published-actor registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dialAdmin()
		if err != nil {
			return err
		}
		defer c.Close()

		resp, err := c.Query(adminsock.ActionPublished, nil)
		if err != nil {
			return err
		}

		var entries []adminsock.PublishedEntry
		if err := remarshal(resp.Data, &entries); err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("(none)")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("port=%-6d node=%-20s actor=%-10d signatures=%v\n", e.Port, e.Node, e.Actor, e.Signatures)
		}

		return nil
	},
}

func init() {
	RootCmd.AddCommand(publishedCmd)
}
