// Package tui provides baspctl's interactive terminal dashboard. It is
// built on the bubbletea/lipgloss stack and renders three tabs: Routes,
// Published and Heartbeats, refreshed every 2 seconds from a baspd admin
// socket.
package tui

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/meshwire/basp/adminsock"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	headerCellStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			PaddingRight(1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			PaddingRight(1)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true).
			PaddingLeft(1)
)

type tab int

const (
	tabRoutes tab = iota
	tabPublished
	tabHeartbeats
	tabCount
)

const refreshInterval = 2 * time.Second

type tickMsg time.Time

type dataMsg struct {
	routes     adminsock.RoutesSnapshot
	published  []adminsock.PublishedEntry
	heartbeats []adminsock.HeartbeatEntry
}

type errMsg error

// Model is the top-level bubbletea model for the dashboard.
type Model struct {
	socketPath string
	tabs       []string
	activeTab  tab

	routes     adminsock.RoutesSnapshot
	published  []adminsock.PublishedEntry
	heartbeats []adminsock.HeartbeatEntry

	width, height int
	err           error
	loading       bool
	lastFetch     time.Time
}

// New returns a Model that talks to the baspd admin socket at socketPath.
func New(socketPath string) Model {
	return Model{
		socketPath: socketPath,
		tabs:       []string{"Routes", "Published", "Heartbeats"},
		loading:    true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(tick(), fetchData(m.socketPath))
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchData(socketPath string) tea.Cmd {
	return func() tea.Msg {
		c, err := adminsock.Dial(socketPath)
		if err != nil {
			return errMsg(err)
		}
		defer c.Close()

		routesResp, err := c.Query(adminsock.ActionRoutes, nil)
		if err != nil {
			return errMsg(err)
		}

		var routes adminsock.RoutesSnapshot
		if err := json.Unmarshal(mustMarshal(routesResp.Data), &routes); err != nil {
			return errMsg(err)
		}

		publishedResp, err := c.Query(adminsock.ActionPublished, nil)
		if err != nil {
			return errMsg(err)
		}

		var published []adminsock.PublishedEntry
		if err := json.Unmarshal(mustMarshal(publishedResp.Data), &published); err != nil {
			return errMsg(err)
		}

		heartbeatsResp, err := c.Query(adminsock.ActionHeartbeats, nil)
		if err != nil {
			return errMsg(err)
		}

		var heartbeats []adminsock.HeartbeatEntry
		if err := json.Unmarshal(mustMarshal(heartbeatsResp.Data), &heartbeats); err != nil {
			return errMsg(err)
		}

		return dataMsg{routes: routes, published: published, heartbeats: heartbeats}
	}
}

func mustMarshal(v interface{}) []byte {
	data, _ := json.Marshal(v)
	return data
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "right", "l":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "left", "h":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1":
			m.activeTab = tabRoutes
		case "2":
			m.activeTab = tabPublished
		case "3":
			m.activeTab = tabHeartbeats
		case "r":
			m.loading = true
			m.err = nil
			return m, fetchData(m.socketPath)
		}
		return m, nil

	case tickMsg:
		m.loading = true
		m.err = nil
		return m, tea.Batch(tick(), fetchData(m.socketPath))

	case dataMsg:
		m.loading = false
		m.err = nil
		m.routes = msg.routes
		m.published = msg.published
		m.heartbeats = msg.heartbeats
		m.lastFetch = time.Now()
		return m, nil

	case errMsg:
		m.loading = false
		m.err = msg
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading…"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("  BASP Dashboard  "))
	sb.WriteString("\n")

	var tabParts []string
	for i, name := range m.tabs {
		label := fmt.Sprintf(" %d: %s ", i+1, name)
		if tab(i) == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
	}
	sb.WriteString(strings.Join(tabParts, ""))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("─", m.width))
	sb.WriteString("\n")

	sb.WriteString(m.renderActiveTab())
	sb.WriteString("\n")

	sb.WriteString(strings.Repeat("─", m.width))
	sb.WriteString("\n")
	sb.WriteString(m.renderStatus())

	return sb.String()
}

func (m Model) renderActiveTab() string {
	switch m.activeTab {
	case tabRoutes:
		return renderRoutes(m.routes)
	case tabPublished:
		return renderPublished(m.published)
	case tabHeartbeats:
		return renderHeartbeats(m.heartbeats)
	default:
		return ""
	}
}

func renderRoutes(s adminsock.RoutesSnapshot) string {
	var sb strings.Builder

	sb.WriteString(headerCellStyle.Render("DIRECT"))
	sb.WriteString("\n")
	if len(s.Direct) == 0 {
		sb.WriteString(dimStyle.Render("  no direct routes"))
		sb.WriteString("\n")
	}
	for _, e := range s.Direct {
		sb.WriteString(rowStyle.Render(fmt.Sprintf("  %-20s handle=%d", e.Node, e.Handle)))
		sb.WriteString("\n")
	}

	sb.WriteString(headerCellStyle.Render("INDIRECT"))
	sb.WriteString("\n")
	if len(s.Indirect) == 0 {
		sb.WriteString(dimStyle.Render("  no indirect routes"))
		sb.WriteString("\n")
	}
	for _, e := range s.Indirect {
		sb.WriteString(rowStyle.Render(fmt.Sprintf("  %-20s via=%v", e.Node, e.Hops)))
		sb.WriteString("\n")
	}

	return sb.String()
}

func renderPublished(entries []adminsock.PublishedEntry) string {
	if len(entries) == 0 {
		return dimStyle.Render("  no published actors")
	}

	var sb strings.Builder
	sb.WriteString(headerCellStyle.Render(fmt.Sprintf("%-6s %-20s %-10s %s", "PORT", "NODE", "ACTOR", "SIGNATURES")))
	sb.WriteString("\n")

	for _, e := range entries {
		sb.WriteString(rowStyle.Render(fmt.Sprintf("%-6d %-20s %-10d %v", e.Port, e.Node, e.Actor, e.Signatures)))
		sb.WriteString("\n")
	}

	return sb.String()
}

func renderHeartbeats(entries []adminsock.HeartbeatEntry) string {
	if len(entries) == 0 {
		return dimStyle.Render("  no heartbeats seen yet")
	}

	var sb strings.Builder
	sb.WriteString(headerCellStyle.Render(fmt.Sprintf("%-20s %s", "NODE", "LAST SEEN")))
	sb.WriteString("\n")

	for _, e := range entries {
		ago := time.Since(e.LastSeen).Round(time.Second)
		sb.WriteString(rowStyle.Render(fmt.Sprintf("%-20s %s ago", e.Node, ago)))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (m Model) renderStatus() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	parts := []string{fmt.Sprintf("socket: %s", m.socketPath)}
	if !m.lastFetch.IsZero() {
		parts = append(parts, fmt.Sprintf("last refresh: %s", m.lastFetch.Format("15:04:05")))
	}
	if m.loading {
		parts = append(parts, "refreshing…")
	}

	return statusBarStyle.Render(strings.Join(parts, " | "))
}
