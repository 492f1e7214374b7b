package cmd

import (
	"github.com/meshwire/basp/cmd/baspctl/pkg/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Launch the interactive TUI dashboard",
	Long: `Launch an interactive terminal dashboard showing the live routing
table, published-actor registry and heartbeat last-seen times of a baspd
instance.

Key bindings:
  Tab / Shift+Tab  Navigate between tabs
  1 / 2 / 3        Jump directly to Routes / Published / Heartbeats
  r                Force an immediate refresh
  q / Ctrl+C       Quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := tea.NewProgram(tui.New(cfg.AdminSocket), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	RootCmd.AddCommand(dashboardCmd)
}
