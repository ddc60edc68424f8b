package cmd

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/index"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/query"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/realtime"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/recent"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/storage"
)

var consoleItems = []core.Item{
	{ID: "receipt", Title: "Receipt Settings", Type: core.TypeSetting, Target: "/settings/receipt"},
	{ID: "espresso", Title: "Espresso Beans", Subtitle: "Coffee - $24.99", Type: core.TypeProduct, Target: "/products/espresso"},
}

func newTestConsole(t *testing.T) (consoleModel, *query.Facade) {
	t.Helper()
	store := recent.Open(storage.NewMemoryKV(), recent.DefaultKey)
	// A long delay keeps the debounce from firing during the test.
	facade := query.New(index.Build([][]core.Item{consoleItems}), store, nil, query.WithDelay(time.Hour))
	t.Cleanup(facade.Close)
	return newConsoleModel(facade), facade
}

func press(t *testing.T, m consoleModel, msg tea.KeyMsg) consoleModel {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(consoleModel)
	require.True(t, ok)
	return out
}

func typeText(t *testing.T, m consoleModel, text string) consoleModel {
	t.Helper()
	for _, r := range text {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestConsoleTypingFeedsFacade(t *testing.T) {
	m, facade := newTestConsole(t)

	m = typeText(t, m, "rec")

	assert.Equal(t, "rec", m.input.Value())
	assert.Equal(t, "rec", facade.Query())
	assert.Equal(t, query.StateTyping, facade.State())
	assert.True(t, facade.IsOpen())
}

func TestConsoleEnterSubmitsWithoutHighlight(t *testing.T) {
	m, facade := newTestConsole(t)

	m = typeText(t, m, "coffee")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"coffee"}, facade.RecentSearches())
	assert.Equal(t, "coffee", m.input.Value())
}

func TestConsoleEnterSelectsHighlightedResult(t *testing.T) {
	m, facade := newTestConsole(t)

	m = typeText(t, m, "es")
	m = m.applyEvent(realtime.Event{Type: realtime.TypeDropdownChanged, Open: true})
	m = m.applyEvent(realtime.Event{Type: realtime.TypeResultsChanged, Results: consoleItems})
	assert.Equal(t, -1, m.cursor)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"Espresso Beans"}, facade.RecentSearches())
	assert.Equal(t, "", facade.Query())
	assert.Equal(t, query.StateIdle, facade.State())
	assert.Equal(t, "", m.input.Value())

	m = m.applyEvent(realtime.Event{Type: realtime.TypeNavigate, Target: "/products/espresso"})
	assert.Contains(t, m.View(), "/products/espresso")
}

func TestConsoleTabCyclesRecentSearches(t *testing.T) {
	m, facade := newTestConsole(t)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, -1, m.recentPos)

	m = m.applyEvent(realtime.Event{Type: realtime.TypeRecentChanged, Recent: []string{"receipt", "espresso"}})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "receipt", facade.Query())
	assert.Equal(t, query.StateSettled, facade.State())
	assert.Equal(t, "receipt", m.input.Value())
	require.Len(t, facade.Results(), 1)
	assert.Equal(t, "receipt", facade.Results()[0].ID)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "espresso", facade.Query())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "receipt", m.input.Value())
}

func TestConsoleClearRecent(t *testing.T) {
	m, facade := newTestConsole(t)

	m = typeText(t, m, "tax")
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, []string{"tax"}, facade.RecentSearches())

	press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Empty(t, facade.RecentSearches())
}

func TestConsoleQuitKeys(t *testing.T) {
	m, _ := newTestConsole(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestConsoleViewShowsRecentAndResults(t *testing.T) {
	m, _ := newTestConsole(t)

	assert.Contains(t, m.View(), "none")

	m = m.applyEvent(realtime.Event{Type: realtime.TypeRecentChanged, Recent: []string{"receipt"}})
	m = m.applyEvent(realtime.Event{Type: realtime.TypeDropdownChanged, Open: true})
	view := m.View()
	assert.Contains(t, view, "receipt")
	assert.Contains(t, view, "No results")

	m = m.applyEvent(realtime.Event{Type: realtime.TypeResultsChanged, Results: consoleItems})
	assert.Contains(t, m.View(), "Espresso Beans")
}
