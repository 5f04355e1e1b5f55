package browser

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/retroshelf/internal/listing"
)

// handleKeyMsg processes keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != inputNone {
		return m.handleInputKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()
	case "n", "right", "l", "pgdown":
		return m, m.apply(m.coord.SetPage(m.ctx, m.coord.State().Page+1))
	case "p", "left", "h", "pgup":
		page := m.coord.State().Page
		if page <= 1 {
			return m, nil
		}
		return m, m.apply(m.coord.SetPage(m.ctx, page-1))
	case "g":
		return m, m.apply(m.coord.SetPage(m.ctx, 1))
	case "G":
		if last := m.result.Data.TotalPages; last > 0 {
			return m, m.apply(m.coord.SetPage(m.ctx, last))
		}
		return m, nil
	case "j", "down":
		if m.cursor < len(m.items())-1 {
			m.cursor++
		}
		return m, nil
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "s":
		return m, m.apply(m.coord.SetSort(m.ctx, m.nextSort()))
	case "v":
		if err := m.coord.SetViewMode(m.coord.View().Next()); err != nil {
			m.opts.Messages.Error(err.Error())
		}
		return m, nil
	case "+", "=":
		return m, m.changePerPage(1)
	case "-", "_":
		return m, m.changePerPage(-1)
	case "c":
		return m, m.apply(m.coord.ClearFilters(m.ctx))
	case "/":
		return m, m.startInput(inputSearch, searchPrompt, m.coord.State().SearchQuery)
	case "f", "tab":
		if n := len(m.coord.Definition().Filters); n > 0 {
			m.filterFocus = (m.filterFocus + 1) % n
		}
		return m, nil
	case "e", "enter":
		return m, m.editFilter()
	case "x":
		spec, ok := m.focusedFilter()
		if !ok {
			return m, nil
		}
		return m, m.apply(m.coord.SetFilter(m.ctx, spec.Name, listing.FilterValue{}))
	case "r":
		return m, m.apply(nil)
	}
	return m, nil
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyEsc:
		m.stopInput()
		return m, nil
	case tea.KeyEnter:
		mode, value := m.mode, m.input.Value()
		m.stopInput()
		if mode == inputSearch {
			return m, m.apply(m.coord.SetSearchQuery(m.ctx, value))
		}
		spec, ok := m.focusedFilter()
		if !ok {
			return m, nil
		}
		return m, m.apply(m.coord.SetFilter(m.ctx, spec.Name, listing.ParseFilterValue(spec.Kind, value)))
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// apply reports a coordinator error or reloads for the new state.
func (m *Model) apply(err error) tea.Cmd {
	if err != nil {
		m.opts.Messages.Error(err.Error())
		return nil
	}
	m.cursor = 0
	return m.load()
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if err := m.coord.Flush(m.ctx); err != nil {
		m.opts.Logger.Warn("flush pending url writes", "error", err)
	}
	return m, tea.Quit
}

func (m *Model) startInput(mode inputMode, prompt, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.mode = inputNone
	m.input.Blur()
	m.input.Reset()
}

// editFilter opens the input for a list filter or toggles a bool filter
// through unset, true and false.
func (m *Model) editFilter() tea.Cmd {
	spec, ok := m.focusedFilter()
	if !ok {
		return nil
	}
	current := m.coord.State().Filter(spec.Name)
	if spec.Kind != listing.KindBool {
		return m.startInput(inputFilter, fmt.Sprintf("%s: ", spec.Name), current.Encode(spec.Kind))
	}
	next := listing.Bool(true)
	switch {
	case current.Bool == nil:
	case *current.Bool:
		next = listing.Bool(false)
	default:
		next = listing.FilterValue{}
	}
	return m.apply(m.coord.SetFilter(m.ctx, spec.Name, next))
}

func (m *Model) focusedFilter() (listing.FilterSpec, bool) {
	filters := m.coord.Definition().Filters
	if len(filters) == 0 {
		return listing.FilterSpec{}, false
	}
	return filters[m.filterFocus%len(filters)], true
}

func (m *Model) nextSort() string {
	def := m.coord.Definition()
	if len(def.SortOptions) == 0 {
		return def.DefaultSort
	}
	i := slices.Index(def.SortOptions, m.coord.State().Sort)
	return def.SortOptions[(i+1)%len(def.SortOptions)]
}

func (m *Model) changePerPage(dir int) tea.Cmd {
	current := m.coord.State().PerPage
	next := stepPerPage(current, dir)
	if next == current {
		return nil
	}
	return m.apply(m.coord.SetPerPage(m.ctx, next))
}

// stepPerPage moves to the next page size in dir, staying put at either end.
func stepPerPage(current, dir int) int {
	if dir > 0 {
		for _, n := range perPageSteps {
			if n > current {
				return n
			}
		}
		return current
	}
	for i := len(perPageSteps) - 1; i >= 0; i-- {
		if perPageSteps[i] < current {
			return perPageSteps[i]
		}
	}
	return current
}
