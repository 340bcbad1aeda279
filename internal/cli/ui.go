package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pollcard/pkg/pipeline"
	"github.com/matzehuels/pollcard/pkg/render/card"
	"github.com/matzehuels/pollcard/pkg/survey"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings, the card accent
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorDim)
	styleBar         = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

func printNewline() {
	fmt.Println()
}

// =============================================================================
// Render Output
// =============================================================================

// printRenderStats prints size, timing and cache status on one line.
func printRenderStats(res *pipeline.Result) {
	status, statusStyle := iconFresh, styleComputed
	if res.CacheHit {
		status, statusStyle = iconCached, styleCached
	}
	fmt.Println("  " + joinDim(
		formatBytes(res.Stats.Bytes),
		res.Stats.TotalTime.Round(time.Millisecond).String(),
		statusStyle.Render(status),
	))
}

// printResultsTable prints the tally of a question with a text bar per
// option.
func printResultsTable(q survey.Question, res survey.Results, texts [5]string) {
	fmt.Println(StyleTitle.Render(q.Text))
	fmt.Println(StyleDim.Render(fmt.Sprintf("%s · %d votes · overall %d%%", q.Date(), res.Votes, res.Overall)))

	rows := make([][]string, len(survey.Choices))
	for i, c := range survey.Choices {
		rows[i] = []string{
			string(c),
			texts[i],
			strconv.Itoa(res.Counts[i]),
			fmt.Sprintf("%3.0f%%", res.Shares[i]),
			styleBar.Render(textBar(res.Shares[i], 20)),
		}
	}
	fmt.Println(newTable("Choice", "Answer", "Votes", "Share", "").Rows(rows...).Render())
}

// printLabelsTable prints the label buckets and marks the one pct falls in.
// A negative pct marks nothing.
func printLabelsTable(labels []card.PercentLabel, pct int) {
	active := ""
	if pct >= 0 {
		active = card.QualitativeLabel(pct, labels)
	}
	rows := make([][]string, len(labels))
	from := 0
	for i, l := range labels {
		mark := ""
		if l.Text == active {
			mark = "▸"
		}
		rows[i] = []string{mark, fmt.Sprintf("%d–%d%%", from, l.UpTo), l.Text}
		from = l.UpTo + 1
	}
	fmt.Println(newTable("", "Range", "Label").Rows(rows...).Render())
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// =============================================================================
// Utilities
// =============================================================================

// textBar draws pct as a bar of at most width block characters.
func textBar(pct float64, width int) string {
	n := int(pct/100*float64(width) + 0.5)
	n = max(0, min(n, width))
	bar := make([]rune, n)
	for i := range bar {
		bar[i] = '█'
	}
	return string(bar)
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}

func joinDim(parts ...string) string {
	var line string
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	return line
}
