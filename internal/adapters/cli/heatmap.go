// Package cli renders activity reports for terminals.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/comitanigiacomo/goalmate-engine/internal/core/analytics"
	"github.com/comitanigiacomo/goalmate-engine/internal/core/domain"
)

// levelGlyphs has one glyph per heatmap level so the grid stays readable
// without colour.
var levelGlyphs = [domain.MaxHeatmapLevel + 1]string{"·", "░", "▒", "▓", "█"}

var levelColors = [domain.MaxHeatmapLevel + 1]lipgloss.Color{
	lipgloss.Color("#3a3a3a"),
	lipgloss.Color("#0e4429"),
	lipgloss.Color("#006d32"),
	lipgloss.Color("#26a641"),
	lipgloss.Color("#39d353"),
}

const cellWidth = 2

type styles struct {
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	muted  lipgloss.Style
	levels [domain.MaxHeatmapLevel + 1]lipgloss.Style
}

func plainStyles() styles {
	plain := lipgloss.NewStyle()
	s := styles{header: plain, label: plain.Width(16), value: plain, muted: plain}
	for i := range s.levels {
		s.levels[i] = plain
	}
	return s
}

func colorStyles(r *lipgloss.Renderer) styles {
	s := styles{
		header: r.NewStyle().Foreground(lipgloss.Color("#64b5f6")).Bold(true),
		label:  r.NewStyle().Width(16),
		value:  r.NewStyle().Bold(true),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
	for i, c := range levelColors {
		s.levels[i] = r.NewStyle().Foreground(c)
	}
	return s
}

// Renderer writes activity reports as a week-by-week grid.
type Renderer struct {
	out    io.Writer
	styles styles
}

// NewRenderer colours output only when out is a terminal and noColor is
// false.
func NewRenderer(out io.Writer, noColor bool) *Renderer {
	if noColor || !isTerminal(out) {
		return &Renderer{out: out, styles: plainStyles()}
	}
	return &Renderer{out: out, styles: colorStyles(lipgloss.NewRenderer(out))}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Report prints the summary lines followed by the heatmap grid.
func (r *Renderer) Report(title string, report domain.AnalyticsReport) error {
	s := r.styles
	var b strings.Builder

	b.WriteString(s.header.Render(title))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Current streak", plural(report.CurrentStreak, "day")},
		{"Longest streak", plural(report.LongestStreak, "day")},
		{"Completed", fmt.Sprintf("%d in the last %d days", report.TotalTasks, len(report.HeatmapData))},
		{"Today", fmt.Sprintf("%d / %d", report.TodayCount, report.DailyGoal)},
	}
	for _, row := range rows {
		b.WriteString(s.label.Render(row[0]))
		b.WriteString(s.value.Render(row[1]))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	grid, err := r.grid(report.HeatmapData)
	if err != nil {
		return err
	}
	b.WriteString(grid)

	b.WriteString("\n")
	b.WriteString(s.muted.Render("Less "))
	for i, glyph := range levelGlyphs {
		b.WriteString(s.levels[i].Render(glyph))
		b.WriteString(" ")
	}
	b.WriteString(s.muted.Render("More"))
	b.WriteString("\n")

	_, err = io.WriteString(r.out, b.String())
	return err
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// weekColumns lays days out in Sunday-first columns. Cells before the
// first day are nil.
func weekColumns(days []domain.HeatmapDay) ([][7]*domain.HeatmapDay, error) {
	if len(days) == 0 {
		return nil, nil
	}

	first, err := analytics.ParseDay(days[0].Date)
	if err != nil {
		return nil, fmt.Errorf("cli: heatmap date %q: %w", days[0].Date, err)
	}

	offset := int(first.Weekday())
	cols := make([][7]*domain.HeatmapDay, (offset+len(days)+6)/7)
	for i := range days {
		slot := offset + i
		cols[slot/7][slot%7] = &days[i]
	}
	return cols, nil
}

func (r *Renderer) grid(days []domain.HeatmapDay) (string, error) {
	cols, err := weekColumns(days)
	if err != nil || len(cols) == 0 {
		return "", err
	}

	s := r.styles
	var b strings.Builder

	b.WriteString("    ")
	b.WriteString(s.muted.Render(monthLabels(cols)))
	b.WriteString("\n")

	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		b.WriteString(s.muted.Render(wd.String()[:3]))
		b.WriteString(" ")
		for _, col := range cols {
			day := col[wd]
			if day == nil {
				b.WriteString(strings.Repeat(" ", cellWidth))
				continue
			}
			level := min(max(day.Level, 0), domain.MaxHeatmapLevel)
			b.WriteString(s.levels[level].Render(levelGlyphs[level]))
			b.WriteString(" ")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// monthLabels places a month abbreviation above the first column that
// contains the first day of that month.
func monthLabels(cols [][7]*domain.HeatmapDay) string {
	line := []rune(strings.Repeat(" ", len(cols)*cellWidth+3))
	for i, col := range cols {
		for _, day := range col {
			if day == nil {
				continue
			}
			d, err := analytics.ParseDay(day.Date)
			if err != nil || d.Day != 1 {
				continue
			}
			copy(line[i*cellWidth:], []rune(d.Month.String()[:3]))
		}
	}
	return strings.TrimRight(string(line), " ")
}
