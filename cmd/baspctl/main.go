// Command baspctl is the operator CLI for a running baspd instance: it
// queries the admin socket for the routing table and published-actor
// registry, either as a one-shot command or an interactive dashboard.
package main

import "github.com/meshwire/basp/cmd/baspctl/cmd"

func main() {
	cmd.Execute()
}
