package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pollcard/pkg/render/card"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// OptionPickerModel - Interactive selection of the highlighted option
// =============================================================================

// OptionPickerModel lets the user choose which option a card highlights.
// Row 0 is "no option"; rows 1..n are the request options, so the cursor
// equals the 1-based selection.
type OptionPickerModel struct {
	Options []card.Option
	Cursor  int
	// Picked is set when the user confirmed a row.
	Picked bool
}

// NewOptionPickerModel starts with the cursor on the request's current
// selection.
func NewOptionPickerModel(req card.Request) OptionPickerModel {
	cursor := req.Selected
	if cursor < 0 || cursor > len(req.Options) {
		cursor = 0
	}
	return OptionPickerModel{Options: req.Options, Cursor: cursor}
}

func (m OptionPickerModel) Init() tea.Cmd {
	return nil
}

func (m OptionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Options) {
				m.Cursor++
			}
		case "enter":
			m.Picked = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m OptionPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Highlight Option"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i := 0; i <= len(m.Options); i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		var line string
		if i == 0 {
			line = cursor + "No option"
		} else {
			o := m.Options[i-1]
			line = fmt.Sprintf("%s%d. %-40s %s", cursor, i, o.Label, listDimStyle.Render(fmt.Sprintf("%3.0f%%", o.Percentage)))
		}
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// pickOption runs the picker and returns the 1-based selection (0 for
// none). ok is false when the user quit without choosing.
func pickOption(req card.Request) (selected int, ok bool, err error) {
	final, err := tea.NewProgram(NewOptionPickerModel(req)).Run()
	if err != nil {
		return 0, false, err
	}
	m := final.(OptionPickerModel)
	return m.Cursor, m.Picked, nil
}
