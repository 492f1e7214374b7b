package cmd

import (
	"fmt"
	"time"

	"github.com/meshwire/basp/adminsock"
	"github.com/spf13/cobra"
)

var heartbeatsCmd = &cobra.Command{
	Use:   "heartbeats",
	Short: "Show last-seen times for direct peers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dialAdmin()
		if err != nil {
			return err
		}
		defer c.Close()

		resp, err := c.Query(adminsock.ActionHeartbeats, nil)
		if err != nil {
			return err
		}

		var entries []adminsock.HeartbeatEntry
		if err := remarshal(resp.Data, &entries); err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("(none)")
			return nil
		}

		for _, e := range entries {
			fmt.Printf("node=%-20s last_seen=%s (%s ago)\n", e.Node, e.LastSeen.Format(time.RFC3339), time.Since(e.LastSeen).Round(time.Second))
		}

		return nil
	},
}

func init() {
	RootCmd.AddCommand(heartbeatsCmd)
}
