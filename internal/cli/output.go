package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/asteroid-belt/idapm/internal/catalog"
	"github.com/asteroid-belt/idapm/internal/models"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// statusStyle colours a plugin status.
func statusStyle(s models.Status) lipgloss.Style {
	switch s {
	case models.StatusInstalled:
		return successStyle
	case models.StatusFailed:
		return errorStyle
	default:
		return dimStyle
	}
}

// newTable returns a borderless table with a bold header row.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// versionRange formats the IDA versions a plugin supports.
func versionRange(p *models.Plugin) string {
	min, max := deref(p.IDAVersionMin), deref(p.IDAVersionMax)
	switch {
	case min == "" && max == "":
		return "any"
	case max == "":
		return ">= " + min
	case min == "":
		return "<= " + max
	case min == max:
		return min
	default:
		return min + " - " + max
	}
}

// printResult reports a mutating operation.
func printResult(w io.Writer, verb string, res *catalog.Result) {
	if res == nil {
		return
	}
	line := fmt.Sprintf("%s %s", successStyle.Render(verb), idStyle.Render(res.PluginID))
	if res.Version != "" {
		line += " " + res.Version
	}
	if res.Path != "" {
		line += dimStyle.Render(" -> " + res.Path)
	}
	_, _ = fmt.Fprintln(w, line)
}

// formatTimeSince formats a duration since a time in a human-readable way.
func formatTimeSince(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// renderMarkdown renders markdown for the terminal, falling back to the
// raw text when rendering fails.
func renderMarkdown(content string) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}
