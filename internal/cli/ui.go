package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/contentaudit/pkg/content"
	"github.com/matzehuels/contentaudit/pkg/report"
)

// Palette, by role. Values are ANSI 256 codes.
var (
	colorAccent = lipgloss.Color("36")  // titles, numbers, the cursor
	colorOK     = lipgloss.Color("35")  // success, published
	colorWarn   = lipgloss.Color("220") // warnings, drafts
	colorErr    = lipgloss.Color("167") // errors
	colorLink   = lipgloss.Color("75")  // commands, changed records
	colorText   = lipgloss.Color("255") // values
	colorMuted  = lipgloss.Color("245") // labels, archived records
	colorFaint  = lipgloss.Color("240") // help text, borders
)

// Styles shared by the commands and the browser.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleNumber    = lipgloss.NewStyle().Foreground(colorAccent)
	StyleSuccess   = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleLabel       = lipgloss.NewStyle().Foreground(colorMuted).Width(12)

	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	styleTableCell   = lipgloss.NewStyle().Padding(0, 1)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorFaint)
)

// statusStyles colors the publication status column.
var statusStyles = map[string]lipgloss.Style{
	content.StatusPublished: lipgloss.NewStyle().Foreground(colorOK),
	content.StatusChanged:   lipgloss.NewStyle().Foreground(colorLink),
	content.StatusDraft:     lipgloss.NewStyle().Foreground(colorWarn),
	content.StatusArchived:  lipgloss.NewStyle().Foreground(colorMuted),
}

const (
	iconSuccess  = "✓"
	iconError    = "✗"
	iconWarning  = "!"
	iconInfo     = "›"
	iconArrow    = "→"
	iconSelected = "●"
	iconEmpty    = "○"
	noValue      = "—"
)

// statusIcons pairs each status line icon with its color.
var statusIcons = map[string]lipgloss.Style{
	iconSuccess: lipgloss.NewStyle().Foreground(colorOK),
	iconError:   lipgloss.NewStyle().Foreground(colorErr),
	iconWarning: lipgloss.NewStyle().Foreground(colorWarn),
	iconInfo:    lipgloss.NewStyle().Foreground(colorMuted),
}

// output is where the print helpers write. The root command points it at
// cmd.OutOrStdout() so tests can capture it.
var output io.Writer = os.Stdout

// printStatus writes one line: a colored icon, then the message.
func printStatus(icon, msg string) {
	fmt.Fprintln(output, statusIcons[icon].Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) { printStatus(iconSuccess, fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { printStatus(iconError, fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { printStatus(iconInfo, fmt.Sprintf(format, args...)) }
func printWarning(format string, args ...any) {
	printStatus(iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, muted line under a status line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(output, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a file that was written.
func printFile(path string) {
	fmt.Fprintln(output, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(output, styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(output, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(output) }

// =============================================================================
// Report Display
// =============================================================================

// printReportStats prints the summary line under a report table.
func printReportStats(st report.State) {
	parts := []string{fmt.Sprintf("%d unused %s", len(st.Items()), kindNoun(st.Kind))}
	if st.Scanned > 0 {
		parts = append(parts, fmt.Sprintf("%d entries scanned", st.Scanned))
	}
	if n := len(st.Failures); n > 0 {
		parts = append(parts, fmt.Sprintf("%d probes failed", n))
	}
	if !st.FinishedAt.IsZero() && !st.StartedAt.IsZero() {
		parts = append(parts, st.FinishedAt.Sub(st.StartedAt).Round(time.Millisecond).String())
	}
	fmt.Fprintln(output, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

// kindNoun is the plural noun a report kind lists.
func kindNoun(k report.Kind) string {
	switch k {
	case report.KindMedia:
		return "assets"
	case report.KindTypes:
		return "content types"
	default:
		return "entries"
	}
}

// itemsTable renders items as a bordered table. When isSelected is non-nil a
// selection column is shown, and the row at cursor (if any) is highlighted.
func itemsTable(kind report.Kind, items []report.Item, isSelected func(string) bool, cursor int, now time.Time) string {
	var headers []string
	if isSelected != nil {
		headers = append(headers, "")
	}
	switch kind {
	case report.KindMedia:
		headers = append(headers, "Title", "File", "Status", "Updated", "ID")
	case report.KindTypes:
		headers = append(headers, "Name", "Updated", "ID")
	default:
		headers = append(headers, "Name", "Content type", "Status", "Updated", "ID")
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		var row []string
		if isSelected != nil {
			mark := iconEmpty
			if isSelected(it.ID) {
				mark = iconSelected
			}
			row = append(row, mark)
		}
		name := orDash(it.Name)
		updated := formatUpdated(it.UpdatedAt, now)
		switch kind {
		case report.KindMedia:
			row = append(row, name, orDash(it.FileName), orDash(it.Status), updated, it.ID)
		case report.KindTypes:
			row = append(row, name, updated, it.ID)
		default:
			row = append(row, name, orDash(it.ContentType), orDash(it.Status), updated, it.ID)
		}
		rows = append(rows, row)
	}

	statusCol := -1
	for i, h := range headers {
		if h == "Status" {
			statusCol = i
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			style := styleTableCell
			if col == statusCol && row >= 0 && row < len(rows) {
				if s, ok := statusStyles[rows[row][col]]; ok {
					style = s.Padding(0, 1)
				}
			}
			if row == cursor {
				style = style.Bold(true).Foreground(colorAccent)
			}
			return style
		})
	return t.String()
}

func orDash(s string) string {
	if s == "" {
		return noValue
	}
	return s
}

// formatUpdated renders an update timestamp relative to now: future times as
// "in 3 hours", today and yesterday with a clock time, anything older as a date.
func formatUpdated(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return noValue
	}
	local := t.In(now.Location())
	if local.After(now) {
		return "in " + formatDuration(local.Sub(now))
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	switch {
	case !local.Before(today):
		return "Today at " + local.Format("3:04 PM")
	case !local.Before(today.AddDate(0, 0, -1)):
		return "Yesterday at " + local.Format("3:04 PM")
	default:
		return local.Format("02 Jan 2006")
	}
}

// formatDuration renders d in its largest whole unit.
func formatDuration(d time.Duration) string {
	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}
	switch {
	case d < time.Minute:
		return "less than a minute"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}
