package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/retroshelf/internal/catalog"
	"github.com/cristianoliveira/retroshelf/internal/errors"
	"github.com/cristianoliveira/retroshelf/internal/prefs"
)

const (
	gridColumnWidth = 26
	tableTitleWidth = 36
	tableSubWidth   = 18
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle = lipgloss.NewStyle().Background(lipgloss.Color("4")).Foreground(lipgloss.Color("0"))
	focusStyle    = lipgloss.NewStyle().Underline(true)
	favoriteMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render("★")

	messageStyles = map[errors.MessageType]lipgloss.Style{
		errors.MessageTypeError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		errors.MessageTypeWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		errors.MessageTypeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		errors.MessageTypeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}
)

// View renders the browser. Every state renders something: loading,
// placeholder rows, an empty list, not found or an error line.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderBody())
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	state := m.coord.State()
	parts := []string{titleStyle.Render(m.opts.Title)}
	parts = append(parts, dimStyle.Render(fmt.Sprintf("sort %s · %d per page · %s view", state.Sort, state.PerPage, m.coord.View())))
	if state.SearchQuery != "" {
		parts = append(parts, fmt.Sprintf("search %q", state.SearchQuery))
	}

	var filters []string
	for i, spec := range m.coord.Definition().Filters {
		label := spec.Name
		if v := state.Filter(spec.Name); !v.IsZero() {
			label += "=" + v.Encode(spec.Kind)
		}
		if i == m.filterFocus%len(m.coord.Definition().Filters) {
			label = focusStyle.Render(label)
		}
		filters = append(filters, label)
	}
	header := strings.Join(parts, "  ")
	if len(filters) > 0 {
		header += "\n" + dimStyle.Render("filters: ") + strings.Join(filters, " ")
	}
	if m.mode != inputNone {
		header += "\n" + m.input.View()
	}
	return header
}

func (m *Model) renderBody() string {
	items := m.items()
	switch {
	case m.notFound:
		return dimStyle.Render(errors.MsgNotFound)
	case m.result.Err != nil && len(items) == 0:
		return dimStyle.Render("Could not load this list. Press r to retry.")
	case len(items) == 0 && (m.loading() || m.result.IsLoading):
		return m.spinner.View() + " Loading..."
	case len(items) == 0:
		return dimStyle.Render("No results.")
	}

	rows := renderItems(items, m.coord.View(), m.cursor, m.width)
	if m.result.IsPlaceholder || m.loading() {
		rows += "\n" + m.spinner.View() + dimStyle.Render(" updating...")
	}
	return rows
}

// RenderItems renders rows in mode without a selection, for non-interactive
// output.
func RenderItems(items []catalog.Summary, mode prefs.ViewMode, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	return renderItems(items, mode, -1, width)
}

func renderItems(items []catalog.Summary, mode prefs.ViewMode, cursor, width int) string {
	switch mode {
	case prefs.ViewModeGrid:
		return renderGrid(items, cursor, width)
	case prefs.ViewModeTable:
		return renderTable(items, cursor)
	case prefs.ViewModeCompact:
		lines := make([]string, len(items))
		for i, it := range items {
			lines[i] = highlight(mark(it)+it.Title, i == cursor)
		}
		return strings.Join(lines, "\n")
	default:
		lines := make([]string, len(items))
		for i, it := range items {
			line := mark(it) + it.Title
			if it.Subtitle != "" {
				line += dimStyle.Render(" · " + it.Subtitle)
			}
			if it.Detail != "" {
				line += "\n   " + dimStyle.Render(it.Detail)
			}
			lines[i] = highlight(line, i == cursor)
		}
		return strings.Join(lines, "\n")
	}
}

func renderGrid(items []catalog.Summary, cursor, width int) string {
	columns := max(1, width/gridColumnWidth)
	cell := lipgloss.NewStyle().Width(gridColumnWidth - 2).MarginRight(2)
	var rows []string
	for start := 0; start < len(items); start += columns {
		end := min(start+columns, len(items))
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			it := items[i]
			text := truncate(mark(it)+it.Title, gridColumnWidth-2) + "\n" + dimStyle.Render(truncate(it.Subtitle, gridColumnWidth-2))
			cells = append(cells, cell.Render(highlight(text, i == cursor)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func renderTable(items []catalog.Summary, cursor int) string {
	lines := []string{titleStyle.Render(fmt.Sprintf("%-*s  %-*s  %s", tableTitleWidth, "TITLE", tableSubWidth, "INFO", "DETAIL"))}
	for i, it := range items {
		line := fmt.Sprintf("%-*s  %-*s  %s",
			tableTitleWidth, truncate(it.Title, tableTitleWidth),
			tableSubWidth, truncate(it.Subtitle, tableSubWidth),
			it.Detail)
		lines = append(lines, highlight(line, i == cursor))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	var lines []string
	page := m.result.Data
	if page.Total > 0 || page.TotalPages > 0 {
		lines = append(lines, fmt.Sprintf("page %s · %d results", m.pager.View(), page.Total))
	}
	if msg, ok := m.opts.Messages.Last(); ok && msg.Text != "" {
		lines = append(lines, messageStyles[msg.Type].Render(msg.Text))
	}
	if m.opts.URL != nil {
		lines = append(lines, dimStyle.Render(m.opts.URL()))
	}
	lines = append(lines, dimStyle.Render("n/p page · s sort · / search · f/e/x filter · c clear · v view · +/- size · q quit"))
	return strings.Join(lines, "\n")
}

func highlight(s string, selected bool) string {
	if selected {
		return selectedStyle.Render(s)
	}
	return s
}

func mark(it catalog.Summary) string {
	if it.Favorite {
		return favoriteMark + " "
	}
	return ""
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
