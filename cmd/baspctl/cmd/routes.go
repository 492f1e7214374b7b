package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/meshwire/basp/adminsock"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Show the direct and indirect routing table",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dialAdmin()
		if err != nil {
			return err
		}
		defer c.Close()

		resp, err := c.Query(adminsock.ActionRoutes, nil)
		if err != nil {
			return err
		}

		var snapshot adminsock.RoutesSnapshot
		if err := remarshal(resp.Data, &snapshot); err != nil {
			return err
		}

		fmt.Println("DIRECT")
		for _, e := range snapshot.Direct {
			fmt.Printf("  %-20s handle=%d\n", e.Node, e.Handle)
		}
		if len(snapshot.Direct) == 0 {
			fmt.Println("  (none)")
		}

		fmt.Println("INDIRECT")
		for _, e := range snapshot.Indirect {
			fmt.Printf("  %-20s via=%v\n", e.Node, e.Hops)
		}
		if len(snapshot.Indirect) == 0 {
			fmt.Println("  (none)")
		}

		return nil
	},
}

func init() {
	RootCmd.AddCommand(routesCmd)
}

// remarshal round-trips v through JSON to convert an already-decoded
// interface{} (adminsock.Response.Data) into a concrete struct, since
// the client decodes responses generically.
func remarshal(in interface{}, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
