package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/core"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	itemTitleStyle = lipgloss.NewStyle().
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("32"))

	targetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	typeColors = map[core.ItemType]lipgloss.Color{
		core.TypeProduct:  lipgloss.Color("42"),
		core.TypeCustomer: lipgloss.Color("39"),
		core.TypePage:     lipgloss.Color("213"),
		core.TypeSetting:  lipgloss.Color("180"),
		core.TypeSale:     lipgloss.Color("220"),
		core.TypeEmployee: lipgloss.Color("141"),
		core.TypeCategory: lipgloss.Color("109"),
		core.TypeBrand:    lipgloss.Color("174"),
	}
)

// typeLabel renders the item type as a short colored badge.
func typeLabel(t core.ItemType) string {
	style := lipgloss.NewStyle().Bold(true).Width(10)
	if color, ok := typeColors[t]; ok {
		style = style.Foreground(color)
	}
	return style.Render(cases.Title(language.English).String(string(t)))
}

// formatItem renders one result line plus its subtitle and target.
func formatItem(n int, item core.Item, selected bool) string {
	var b strings.Builder

	title := itemTitleStyle.Render(item.Title)
	marker := "  "
	if selected {
		title = selectedStyle.Render(item.Title)
		marker = selectedStyle.Render("> ")
	}

	if n > 0 {
		fmt.Fprintf(&b, "%s%2d. %s %s", marker, n, typeLabel(item.Type), title)
	} else {
		fmt.Fprintf(&b, "%s%s %s", marker, typeLabel(item.Type), title)
	}

	if item.HasSubtitle() {
		b.WriteString("  " + metaStyle.Render(item.Subtitle))
	}
	if item.HasTarget() {
		b.WriteString("  " + targetStyle.Render(item.Target))
	}
	return b.String()
}

// formatByType summarizes per-type counts in the fixed type order.
func formatByType(counts map[core.ItemType]int) string {
	var parts []string
	for _, t := range core.ItemTypes() {
		if counts[t] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s", formatNumber(counts[t]), pluralize(string(t), counts[t])))
	}
	if len(parts) == 0 {
		return "no items"
	}
	return strings.Join(parts, ", ")
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// formatNumber formats a number with K/M suffixes for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	} else {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
}

// formatTime formats a time relative to now or as an absolute date
func formatTime(t time.Time) string {
	now := time.Now()
	diff := now.Sub(t)

	if diff < 24*time.Hour {
		if diff < time.Hour {
			minutes := int(diff.Minutes())
			if minutes < 1 {
				return "just now"
			}
			return fmt.Sprintf("%d minutes ago", minutes)
		}
		hours := int(diff.Hours())
		return fmt.Sprintf("%d hours ago", hours)
	}

	if diff < 7*24*time.Hour {
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%d days ago", days)
	}

	if t.Year() == now.Year() {
		return t.Format("Jan 2, 15:04")
	}
	return t.Format("Jan 2, 2006")
}
