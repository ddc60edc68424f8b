package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/log"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/query"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/realtime"
)

// ConsoleCommand creates the console command
func ConsoleCommand() *cli.Command {
	return &cli.Command{
		Name:  "console",
		Usage: "Interactive search box",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "ephemeral",
				Usage: "Keep recent searches in memory only",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runConsole(ctx, c.String("config"), c.Bool("ephemeral"))
		},
	}
}

func runConsole(ctx context.Context, configPath string, ephemeral bool) error {
	rt, err := loadRuntime(ctx, configPath, runtimeOptions{ephemeral: ephemeral})
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warnf("closing runtime: %v", err)
		}
	}()

	// Log lines would tear the alternate screen.
	logFile, err := tea.LogToFile(filepath.Join(rt.cfg.StorageDir, "console.log"), "possearch")
	if err == nil {
		log.SetOutput(logFile)
		defer func() {
			log.SetOutput(os.Stderr)
			_ = logFile.Close()
		}()
	}

	hub := realtime.NewHub(64)
	defer hub.Close()

	facade := query.New(rt.index, rt.recent, hub,
		query.WithDelay(rt.cfg.Debounce.Duration),
		query.WithLimit(rt.cfg.ResultLimit),
	)
	defer facade.Close()

	p := tea.NewProgram(newConsoleModel(facade), tea.WithAltScreen(), tea.WithContext(ctx))

	id, events := hub.Register()
	defer hub.Unregister(id)
	go func() {
		for ev := range events {
			p.Send(eventMsg{event: ev})
		}
	}()

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running console: %w", err)
	}
	if m, ok := final.(consoleModel); ok && m.navigated != "" {
		fmt.Printf("Last navigation: %s\n", m.navigated)
	}
	return nil
}

// eventMsg carries a facade event into the Bubble Tea loop.
type eventMsg struct {
	event realtime.Event
}

// consoleModel renders the facade state. cursor is -1 until a result is
// highlighted; Enter submits the query text in that case.
type consoleModel struct {
	facade *query.Facade
	input  textinput.Model

	results   []core.Item
	recent    []string
	open      bool
	cursor    int
	recentPos int
	navigated string
}

func newConsoleModel(facade *query.Facade) consoleModel {
	input := textinput.New()
	input.Placeholder = "Search products, pages, settings..."
	input.Prompt = "> "
	input.CharLimit = 200
	input.Focus()

	return consoleModel{
		facade:    facade,
		input:     input,
		results:   facade.Results(),
		recent:    facade.RecentSearches(),
		open:      facade.IsOpen(),
		cursor:    -1,
		recentPos: -1,
	}
}

func (m consoleModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m.applyEvent(msg.event), nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.open && m.cursor >= 0 && m.cursor < len(m.results) {
				m.facade.OnSelectResult(m.results[m.cursor])
			} else {
				m.facade.OnSubmit(m.input.Value())
			}
			m.syncInput()
			return m, nil

		case "up":
			if m.cursor >= 0 {
				m.cursor--
			}
			return m, nil

		case "down":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
			return m, nil

		case "tab":
			if len(m.recent) == 0 {
				return m, nil
			}
			m.recentPos = (m.recentPos + 1) % len(m.recent)
			m.facade.OnSelectRecent(m.recent[m.recentPos])
			m.syncInput()
			return m, nil

		case "ctrl+l":
			m.facade.OnClearRecent()
			m.recentPos = -1
			return m, nil
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != before {
		m.recentPos = -1
		m.facade.OnInputChange(value)
	}
	return m, cmd
}

// syncInput mirrors the facade's query after actions that replace it.
func (m *consoleModel) syncInput() {
	m.input.SetValue(m.facade.Query())
	m.input.CursorEnd()
}

func (m consoleModel) applyEvent(ev realtime.Event) consoleModel {
	switch ev.Type {
	case realtime.TypeResultsChanged:
		m.results = ev.Results
		m.cursor = -1
	case realtime.TypeRecentChanged:
		m.recent = ev.Recent
		if m.recentPos >= len(m.recent) {
			m.recentPos = -1
		}
	case realtime.TypeDropdownChanged:
		m.open = ev.Open
	case realtime.TypeNavigate:
		m.navigated = ev.Target
	}
	return m
}

func (m consoleModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("POS search"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.open {
		if len(m.results) == 0 {
			b.WriteString(noDataStyle.UnsetMargins().Render("No results"))
			b.WriteString("\n")
		}
		for i, item := range m.results {
			b.WriteString(formatItem(0, item, i == m.cursor))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(headerStyle.Render("Recent"))
	b.WriteString("\n")
	if len(m.recent) == 0 {
		b.WriteString(metaStyle.Render("  none"))
		b.WriteString("\n")
	}
	for i, q := range m.recent {
		if i == m.recentPos {
			b.WriteString(selectedStyle.Render("> " + q))
		} else {
			b.WriteString("  " + q)
		}
		b.WriteString("\n")
	}

	if m.navigated != "" {
		b.WriteString("\n")
		b.WriteString(summaryStyle.Render("Opened ") + targetStyle.Render(m.navigated))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(metaStyle.Render("enter: submit/open  up/down: move  tab: recent  ctrl+l: clear recent  esc: quit"))
	return b.String()
}
