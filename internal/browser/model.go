// Package browser is the interactive list view: a bubbletea model over one
// coordinator and its loader.
package browser

import (
	"context"
	stderrors "errors"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/retroshelf/internal/catalog"
	"github.com/cristianoliveira/retroshelf/internal/errors"
	"github.com/cristianoliveira/retroshelf/internal/listing"
	"github.com/cristianoliveira/retroshelf/internal/logging"
	"github.com/cristianoliveira/retroshelf/internal/query"
)

const (
	defaultWidth = 80
	messageLimit = 20
	searchPrompt = "search: "
)

// perPageSteps are the page sizes +/- move between.
var perPageSteps = []int{10, 20, 24, 50, 100}

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputFilter
)

// loadedMsg carries a finished load. key identifies the state it was
// issued for so stale responses can be dropped.
type loadedMsg struct {
	key    string
	result query.Result[catalog.Page[catalog.Summary]]
}

// Options configures a Model.
type Options struct {
	Title    string
	Messages *errors.MessageHandler
	Logout   func()
	URL      func() string
	Logger   logging.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithTitle sets the header title.
func WithTitle(title string) Option {
	return func(o *Options) { o.Title = title }
}

// WithMessages routes status messages to h.
func WithMessages(h *errors.MessageHandler) Option {
	return func(o *Options) {
		if h != nil {
			o.Messages = h
		}
	}
}

// WithLogout sets what runs when a request fails with an authorization error.
func WithLogout(fn func()) Option {
	return func(o *Options) { o.Logout = fn }
}

// WithURL sets the source of the effective URL shown in the footer.
func WithURL(fn func() string) Option {
	return func(o *Options) { o.URL = fn }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// Model is the bubbletea model of the list browser.
type Model struct {
	ctx    context.Context
	loader *catalog.Loader[catalog.Summary]
	coord  *listing.Coordinator
	opts   Options

	input   textinput.Model
	mode    inputMode
	spinner spinner.Model
	pager   paginator.Model

	result      query.Result[catalog.Page[catalog.Summary]]
	inflight    string
	notFound    bool
	cursor      int
	filterFocus int
	width       int
	quitting    bool
}

// New creates a browser over loader. ctx bounds every request it issues.
func New(ctx context.Context, loader *catalog.Loader[catalog.Summary], opts ...Option) *Model {
	o := Options{Messages: errors.NewMessageHandler(messageLimit), Logger: logging.Noop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Title == "" {
		o.Title = loader.Coordinator().Definition().Namespace
	}

	input := textinput.New()
	input.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	pager := paginator.New()
	pager.Type = paginator.Arabic

	return &Model{
		ctx:     ctx,
		loader:  loader,
		coord:   loader.Coordinator(),
		opts:    o,
		input:   input,
		spinner: sp,
		pager:   pager,
		width:   defaultWidth,
	}
}

// Init starts the spinner and the first load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case loadedMsg:
		return m, m.handleLoaded(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}
	return m, nil
}

// State exposes the coordinator state for the footer and tests.
func (m *Model) State() listing.ListQueryState {
	return m.coord.State()
}

// Messages returns the status message handler.
func (m *Model) Messages() *errors.MessageHandler {
	return m.opts.Messages
}

// load shows whatever the cache has for the current state, usually the
// previous page as a placeholder, and returns a command that resolves it.
func (m *Model) load() tea.Cmd {
	params := m.coord.FetchParams(m.loader.Locale())
	key := params.Key().String()
	m.result = m.loader.Peek()
	m.notFound = false
	m.inflight = key
	ctx, loader := m.ctx, m.loader
	return func() tea.Msg {
		return loadedMsg{key: key, result: loader.LoadParams(ctx, params)}
	}
}

func (m *Model) handleLoaded(msg loadedMsg) tea.Cmd {
	if msg.key != m.inflight {
		// superseded by a later state change
		return nil
	}
	m.inflight = ""
	m.result = msg.result
	if msg.result.Err != nil {
		outcome := errors.Dispatch(msg.result.Err, m.opts.Messages, m.opts.Logout)
		m.notFound = outcome == errors.OutcomeNotFound
		m.opts.Logger.Debug("browser load failed", "namespace", m.coord.Definition().Namespace, "error", msg.result.Err)
		return nil
	}
	m.syncPager()
	if m.cursor >= len(m.items()) {
		m.cursor = max(0, len(m.items())-1)
	}
	return nil
}

func (m *Model) syncPager() {
	page := m.result.Data
	m.pager.PerPage = max(1, page.PerPage)
	m.pager.TotalPages = max(1, page.TotalPages)
	m.pager.Page = max(0, page.Page-1)
}

func (m *Model) items() []catalog.Summary {
	return m.result.Data.Items
}

// loading reports whether a request for the current state is in flight.
func (m *Model) loading() bool {
	return m.inflight != ""
}

// Run shows the browser until the user quits or ctx is cancelled.
func Run(ctx context.Context, m *Model) error {
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
