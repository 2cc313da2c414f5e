package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// DatasetListModel - Interactive dataset selection
// =============================================================================

// DatasetListModel is the bubbletea model for picking a dataset. Typing
// narrows the list to names containing the filter text.
type DatasetListModel struct {
	Datasets []string
	Filter   string
	Cursor   int
	Offset   int
	Height   int

	// Selected is set when the user confirms a dataset.
	Selected string
}

// NewDatasetListModel creates a new dataset list model.
func NewDatasetListModel(datasets []string) DatasetListModel {
	return DatasetListModel{Datasets: datasets, Height: 15}
}

// Visible returns the datasets matching the filter.
func (m DatasetListModel) Visible() []string {
	if m.Filter == "" {
		return m.Datasets
	}
	needle := strings.ToLower(m.Filter)
	var out []string
	for _, d := range m.Datasets {
		if strings.Contains(strings.ToLower(d), needle) {
			out = append(out, d)
		}
	}
	return out
}

func (m DatasetListModel) Init() tea.Cmd {
	return nil
}

func (m DatasetListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp, tea.KeyCtrlP:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown, tea.KeyCtrlN:
			if m.Cursor < len(m.Visible())-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			visible := m.Visible()
			if len(visible) == 0 {
				return m, nil
			}
			m.Selected = visible[m.Cursor]
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				r := []rune(m.Filter)
				m.Filter = string(r[:len(r)-1])
				m.Cursor, m.Offset = 0, 0
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.Cursor, m.Offset = 0, 0
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m DatasetListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Dataset"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  esc quit  type to filter"))
	b.WriteString("\n")
	if m.Filter != "" {
		b.WriteString(StyleDim.Render("filter: ") + StyleValue.Render(m.Filter))
	}
	b.WriteString("\n\n")

	visible := m.Visible()
	if len(visible) == 0 {
		b.WriteString(StyleWarning.Render("  no matching datasets"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(visible))
	for i := m.Offset; i < end; i++ {
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + visible[i]))
		} else {
			b.WriteString(listNormalStyle.Render("  " + visible[i]))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(visible))))
	return b.String()
}

// pickDataset runs the picker and returns the chosen dataset. Quitting
// without a choice returns context.Canceled.
func pickDataset(ctx context.Context, datasets []string) (string, error) {
	p := tea.NewProgram(NewDatasetListModel(datasets), tea.WithContext(ctx), tea.WithOutput(statusOut))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m, ok := final.(DatasetListModel)
	if !ok || m.Selected == "" {
		return "", context.Canceled
	}
	return m.Selected, nil
}
