// Package tui is the Bubble Tea front end over the list controller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"svcboard/internal/catalog"
	"svcboard/internal/controller"
	"svcboard/internal/debounce"
	"svcboard/internal/filter"
	"svcboard/internal/model"
	"svcboard/internal/rowstate"
	"svcboard/internal/window"
)

// Controller defines the subset of controller.Controller behaviour the TUI needs.
type Controller interface {
	View() controller.View
	Refresh(context.Context) error
	Do(context.Context, string, model.Action) error
	StartAll(context.Context) (controller.BulkResult, error)
	StopAll(context.Context) (controller.BulkResult, error)
	RunGroup(context.Context, string) (model.Action, controller.BulkResult, error)
	SetQuery(filter.Query)
	SetGroupBy(catalog.GroupBy)
	ToggleGroup(string) bool
	ToggleExcluded(string) (bool, error)
	DismissRow(string) bool
	DismissBanner() bool
}

// Options configures the model.
type Options struct {
	Controller Controller
	// Events, usually Bridge output, triggers repaints on controller changes.
	Events           *Bridge
	SearchDebounce   time.Duration
	RefreshInterval  time.Duration
	VirtualThreshold int
	Overscan         int
	// Backend and Privilege are shown in the header.
	Backend   string
	Privilege string
	Logger    zerolog.Logger
}

type lineKind int

const (
	lineGroup lineKind = iota
	lineItem
)

// line is one rendered row: a group header or a service.
type line struct {
	kind  lineKind
	group int
	item  model.Item
	key   string
}

// Model represents the Bubble Tea state.
type Model struct {
	ctrl    Controller
	events  <-chan controller.Event
	log     zerolog.Logger
	keys    keyMap
	help    help.Model
	search  textinput.Model
	spinner spinner.Model

	debouncer *debounce.Debouncer[string]
	searchCh  chan string

	refreshEvery time.Duration
	threshold    int
	overscan     int
	backend      string
	privilege    string

	view      controller.View
	lines     []line
	selectors []string
	cursor    int
	cursorKey string
	offset    int

	statusMsg string
	width     int
	height    int

	renderItem func(model.Item, controller.RowView) string
}

// New constructs a TUI model with default styles.
func New(opts Options) *Model {
	ti := textinput.New()
	ti.Placeholder = "search name, id or type"
	ti.Prompt = "/ "
	ti.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorBusy)

	threshold := opts.VirtualThreshold
	if threshold <= 0 {
		threshold = window.DefaultThreshold
	}
	overscan := opts.Overscan
	if overscan < 0 {
		overscan = window.DefaultOverscan
	}

	m := &Model{
		ctrl:         opts.Controller,
		log:          opts.Logger,
		keys:         defaultKeys(),
		help:         help.New(),
		search:       ti,
		spinner:      sp,
		searchCh:     make(chan string, 1),
		refreshEvery: opts.RefreshInterval,
		threshold:    threshold,
		overscan:     overscan,
		backend:      opts.Backend,
		privilege:    opts.Privilege,
		statusMsg:    "Loading services…",
	}
	if opts.Events != nil {
		m.events = opts.Events.ch
	}
	m.renderItem = m.defaultItemLine
	m.debouncer = debounce.New(opts.SearchDebounce, m.deliverSearch)
	m.sync()
	return m
}

// Run spins up the Bubble Tea program with sensible defaults.
func Run(opts Options) error {
	m := New(opts)
	defer m.debouncer.Stop()
	prog := tea.NewProgram(m, tea.WithAltScreen())
	_, err := prog.Run()
	return err
}

// deliverSearch keeps only the newest settled value in the channel.
func (m *Model) deliverSearch(text string) {
	for {
		select {
		case m.searchCh <- text:
			return
		default:
		}
		select {
		case <-m.searchCh:
		default:
		}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForEvent(m.events),
		waitForSearch(m.searchCh),
		refreshTick(m.refreshEvery),
	)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = max(msg.Width-4, 10)
		m.help.Width = msg.Width

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case eventMsg:
		cmds = append(cmds, waitForEvent(m.events))

	case searchSettledMsg:
		q := m.view.Query
		q.Search = msg.text
		m.ctrl.SetQuery(q)
		cmds = append(cmds, waitForSearch(m.searchCh))

	case refreshTickMsg:
		cmds = append(cmds, refreshCmd(m.ctrl), refreshTick(m.refreshEvery))

	case refreshDoneMsg:
		if msg.err == nil {
			m.statusMsg = fmt.Sprintf("Refreshed at %s", time.Now().Format(time.Kitchen))
		}

	case actionDoneMsg:
		m.statusMsg = describeAction(msg)

	case bulkDoneMsg:
		m.statusMsg = describeBulk(msg)

	case tea.KeyMsg:
		if cmd, quit := m.handleKey(msg); quit {
			return m, tea.Quit
		} else if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	m.sync()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.search.Focused() {
		if msg.String() == "ctrl+c" {
			return nil, true
		}
		if key.Matches(msg, m.keys.Blur) {
			m.search.Blur()
			return nil, false
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if v := m.search.Value(); v != before {
			m.debouncer.Push(v)
		}
		return cmd, false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return nil, true
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-max(m.bodyHeight()-1, 1))
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(max(m.bodyHeight()-1, 1))
	case key.Matches(msg, m.keys.Home):
		m.moveCursor(-len(m.lines))
	case key.Matches(msg, m.keys.End):
		m.moveCursor(len(m.lines))
	case key.Matches(msg, m.keys.Search):
		return m.search.Focus(), false
	case key.Matches(msg, m.keys.Selector):
		m.cycleSelector(1)
	case key.Matches(msg, m.keys.selectorBack):
		m.cycleSelector(-1)
	case key.Matches(msg, m.keys.GroupBy):
		if m.view.GroupBy == catalog.ByType {
			m.ctrl.SetGroupBy(catalog.ByCategory)
		} else {
			m.ctrl.SetGroupBy(catalog.ByType)
		}
	case key.Matches(msg, m.keys.Refresh):
		m.statusMsg = "Refreshing…"
		return refreshCmd(m.ctrl), false
	case key.Matches(msg, m.keys.Banner):
		m.ctrl.DismissBanner()
	case key.Matches(msg, m.keys.StartAll):
		return m.bulk(model.ActionStart), false
	case key.Matches(msg, m.keys.StopAll):
		return m.bulk(model.ActionStop), false
	case key.Matches(msg, m.keys.Toggle):
		if ln, ok := m.current(); ok && ln.kind == lineGroup {
			m.ctrl.ToggleGroup(ln.key)
		}
	case key.Matches(msg, m.keys.GroupAction):
		if ln, ok := m.current(); ok && ln.kind == lineGroup {
			if m.view.Processing {
				m.statusMsg = "A bulk operation is already running"
				return nil, false
			}
			g := m.view.Groups[ln.group]
			m.statusMsg = fmt.Sprintf("Running group action on %s…", g.Name)
			return groupCmd(m.ctrl, g.Key, g.Name), false
		}
	case key.Matches(msg, m.keys.Start):
		return m.rowAction(model.ActionStart), false
	case key.Matches(msg, m.keys.Stop):
		return m.rowAction(model.ActionStop), false
	case key.Matches(msg, m.keys.Restart):
		return m.rowAction(model.ActionRestart), false
	case key.Matches(msg, m.keys.Exclude):
		if ln, ok := m.current(); ok && ln.kind == lineItem {
			if _, err := m.ctrl.ToggleExcluded(ln.item.ID); err != nil {
				m.statusMsg = err.Error()
			}
		}
	case key.Matches(msg, m.keys.Dismiss):
		if ln, ok := m.current(); ok && ln.kind == lineItem {
			m.ctrl.DismissRow(ln.item.ID)
		}
	}
	return nil, false
}

// rowAction dispatches action for the row under the cursor. Busy rows and
// group headers ignore the key.
func (m *Model) rowAction(action model.Action) tea.Cmd {
	ln, ok := m.current()
	if !ok || ln.kind != lineItem {
		return nil
	}
	if m.view.Row(ln.item.ID).Busy() {
		return nil
	}
	m.statusMsg = fmt.Sprintf("%s %s…", actionVerb(action), ln.item.Label())
	return actionCmd(m.ctrl, ln.item.ID, action)
}

func (m *Model) bulk(action model.Action) tea.Cmd {
	if m.view.Processing {
		m.statusMsg = "A bulk operation is already running"
		return nil
	}
	m.statusMsg = fmt.Sprintf("%s all matching services…", actionVerb(action))
	return bulkCmd(m.ctrl, action)
}

func (m *Model) cycleSelector(step int) {
	if len(m.selectors) == 0 {
		return
	}
	idx := 0
	for i, s := range m.selectors {
		if s == m.view.Query.Selector {
			idx = i
			break
		}
	}
	idx = (idx + step + len(m.selectors)) % len(m.selectors)
	q := m.view.Query
	q.Selector = m.selectors[idx]
	m.ctrl.SetQuery(q)
}

// sync rebuilds the flattened lines from the controller view and keeps the
// cursor on the same row when it still exists.
func (m *Model) sync() {
	m.view = m.ctrl.View()
	m.lines = flatten(m.view)
	m.selectors = selectorsFor(m.view)

	if m.cursorKey != "" {
		for i, ln := range m.lines {
			if lineKey(ln) == m.cursorKey {
				m.cursor = i
				break
			}
		}
	}
	m.clampCursor()
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.lines) {
		m.cursor = len(m.lines) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if len(m.lines) > 0 {
		m.cursorKey = lineKey(m.lines[m.cursor])
	} else {
		m.cursorKey = ""
	}
	body := m.bodyHeight()
	m.offset = window.EnsureVisible(m.offset, m.cursor, 1, body)
	m.offset = window.ClampOffset(m.offset, len(m.lines), 1, body)
}

func (m *Model) current() (line, bool) {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return line{}, false
	}
	return m.lines[m.cursor], true
}

// window returns the range of lines to render for the current viewport.
func (m *Model) window() window.Result {
	return window.Compute(window.Params{
		Count:           len(m.lines),
		ItemHeight:      1,
		ContainerHeight: m.bodyHeight(),
		ScrollOffset:    m.offset,
		Overscan:        m.overscan,
		Threshold:       m.threshold,
	})
}

func flatten(v controller.View) []line {
	var out []line
	for gi, g := range v.Groups {
		out = append(out, line{kind: lineGroup, group: gi, key: g.Key})
		if !g.Expanded {
			continue
		}
		for _, it := range g.Items {
			out = append(out, line{kind: lineItem, group: gi, item: it, key: g.Key})
		}
	}
	return out
}

func lineKey(ln line) string {
	if ln.kind == lineGroup {
		return "g:" + ln.key
	}
	return "i:" + ln.item.ID
}

// selectorsFor lists "all", the categories and then the types that have at
// least one item matching the current search.
func selectorsFor(v controller.View) []string {
	out := []string{filter.All}
	for _, c := range model.AllCategories {
		if v.Counts[string(c)] > 0 {
			out = append(out, string(c))
		}
	}
	for _, t := range model.AllTypes {
		if v.Counts[string(t)] > 0 {
			out = append(out, string(t))
		}
	}
	if sel := v.Query.Selector; sel != "" && !slices.Contains(out, sel) {
		out = append(out, sel)
	}
	return out
}

func actionVerb(a model.Action) string {
	switch a {
	case model.ActionStart:
		return "Starting"
	case model.ActionStop:
		return "Stopping"
	default:
		return "Restarting"
	}
}

func describeAction(msg actionDoneMsg) string {
	switch {
	case msg.err == nil:
		return fmt.Sprintf("%s %s: done", msg.action, msg.id)
	case errors.Is(msg.err, rowstate.ErrBusy):
		return fmt.Sprintf("%s is busy", msg.id)
	default:
		return fmt.Sprintf("%s %s failed", msg.action, msg.id)
	}
}

func describeBulk(msg bulkDoneMsg) string {
	if errors.Is(msg.err, controller.ErrBusy) {
		return "A bulk operation is already running"
	}
	if msg.err != nil {
		return fmt.Sprintf("%s: %v", msg.label, msg.err)
	}
	r := msg.result
	return fmt.Sprintf("%s: %d ok, %d failed, %d skipped", msg.label, r.Succeeded, r.Failed, r.Skipped)
}
