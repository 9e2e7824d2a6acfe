package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/componentry/component"
	"github.com/wippyai/componentry/loader"
	"github.com/wippyai/componentry/wasm"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	loadedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectorModel struct {
	err      error
	loader   *loader.Loader
	opener   *wasm.Opener
	comps    []*component.Component
	viewport viewport.Model
	dir      string
	host     string
	disable  string
	selected int
	state    modelState
}

type modelState int

const (
	stateList modelState = iota
	stateDetail
)

func newInspectorModel(dir, host, disable string) *inspectorModel {
	return &inspectorModel{
		dir:      dir,
		host:     host,
		disable:  disable,
		viewport: viewport.New(80, 20),
		state:    stateList,
	}
}

type loadedMsg struct {
	err    error
	loader *loader.Loader
	opener *wasm.Opener
	comps  []*component.Component
}

func (m *inspectorModel) Init() tea.Cmd {
	return m.loadComponents
}

func (m *inspectorModel) loadComponents() tea.Msg {
	ctx := context.Background()

	l, opener, err := buildLoader(ctx, m.dir, m.host, m.disable)
	if err != nil {
		return loadedMsg{err: err}
	}
	if err := l.Load(ctx); err != nil {
		opener.Close(ctx)
		return loadedMsg{err: err}
	}

	return loadedMsg{loader: l, opener: opener, comps: l.Components()}
}

func (m *inspectorModel) teardown() {
	ctx := context.Background()
	if m.loader != nil {
		m.loader.Close(ctx)
		m.loader = nil
	}
	if m.opener != nil {
		m.opener.Close(ctx)
		m.opener = nil
	}
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.teardown()
			return m, tea.Quit

		case "up", "k":
			if m.state == stateList && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateList && m.selected < len(m.comps)-1 {
				m.selected++
			}

		case "enter":
			if m.state == stateList && m.selected < len(m.comps) {
				m.viewport.SetContent(detailContent(m.comps[m.selected]))
				m.viewport.GotoTop()
				m.state = stateDetail
			}

		case "esc":
			if m.state == stateDetail {
				m.state = stateList
			}

		case "r":
			if m.state == stateList {
				m.teardown()
				m.comps = nil
				m.selected = 0
				m.err = nil
				return m, m.loadComponents
			}
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6
		if m.viewport.Height < 1 {
			m.viewport.Height = 1
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.loader = msg.loader
		m.opener = msg.opener
		m.comps = msg.comps
	}

	if m.state == stateDetail {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *inspectorModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.comps) == 0 {
		return "Loading components..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Component Inspector"))
	b.WriteString(" ")
	b.WriteString(m.dir)
	b.WriteString("\n\n")

	switch m.state {
	case stateList:
		nameW := 0
		for _, c := range m.comps {
			if len(c.Name()) > nameW {
				nameW = len(c.Name())
			}
		}
		for i, c := range m.comps {
			line := fmt.Sprintf("%-*s  %-10s  %s", nameW, c.Name(), versionOf(c), c.StatusString())
			switch {
			case i == m.selected:
				line = selectedStyle.Render("> " + line)
			case c.IsLoaded():
				line = "  " + loadedStyle.Render(line)
			case c.Status() != component.Unloaded:
				line = "  " + failedStyle.Render(line)
			default:
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter details • r reload • q quit"))

	case stateDetail:
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}

	return b.String()
}

func detailContent(c *component.Component) string {
	var b strings.Builder
	add := func(label, value string) {
		if value != "" {
			b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", label)))
			b.WriteString(value)
			b.WriteString("\n")
		}
	}

	add("Name", c.Name())
	add("Version", c.VersionString())
	add("Vendor", c.Vendor())
	add("Category", c.Category())
	add("URL", c.URL())
	add("Copyright", c.Copyright())
	add("Location", c.Location())

	status := c.StatusString()
	if c.IsLoaded() {
		status = loadedStyle.Render(status)
	} else if c.Status() != component.Unloaded {
		status = failedStyle.Render(status)
	}
	add("Status", status)

	if missing := c.MissingDependencies(); len(missing) > 0 {
		add("Missing", failedStyle.Render(strings.Join(missing, ", ")))
	}

	if deps := c.DependencySummary(); deps != "" {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Dependencies"))
		b.WriteString("\n")
		for _, line := range strings.Split(deps, "\n") {
			b.WriteString("  " + line + "\n")
		}
	}

	if desc := c.Description(); desc != "" {
		b.WriteString("\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}

	if lic := c.License(); lic != "" {
		b.WriteString("\n")
		b.WriteString(lic)
		b.WriteString("\n")
	}

	return b.String()
}

func runInteractive(dir, host, disable string) error {
	p := tea.NewProgram(newInspectorModel(dir, host, disable), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
