package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"svcboard/internal/controller"
	"svcboard/internal/model"
)

type refreshTickMsg struct{}

type refreshDoneMsg struct{ err error }

type actionDoneMsg struct {
	id     string
	action model.Action
	err    error
}

type bulkDoneMsg struct {
	label  string
	result controller.BulkResult
	err    error
}

type searchSettledMsg struct{ text string }

type eventMsg struct{ ev controller.Event }

// Bridge forwards controller events to the program. Send never blocks: the
// view is rebuilt from the controller on every message, so a dropped event
// only skips a redundant repaint.
type Bridge struct {
	ch chan controller.Event
}

// NewBridge returns a bridge buffering up to size events.
func NewBridge(size int) *Bridge {
	if size <= 0 {
		size = 64
	}
	return &Bridge{ch: make(chan controller.Event, size)}
}

// Send is suitable as controller.Options.OnEvent.
func (b *Bridge) Send(ev controller.Event) {
	select {
	case b.ch <- ev:
	default:
	}
}

func waitForEvent(ch <-chan controller.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg{ev: ev}
	}
}

func waitForSearch(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		text, ok := <-ch
		if !ok {
			return nil
		}
		return searchSettledMsg{text: text}
	}
}

func refreshTick(every time.Duration) tea.Cmd {
	if every <= 0 {
		return nil
	}
	return tea.Tick(every, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

func refreshCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: ctrl.Refresh(context.Background())}
	}
}

func actionCmd(ctrl Controller, id string, action model.Action) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.Do(context.Background(), id, action)
		return actionDoneMsg{id: id, action: action, err: err}
	}
}

func bulkCmd(ctrl Controller, action model.Action) tea.Cmd {
	return func() tea.Msg {
		var (
			res controller.BulkResult
			err error
		)
		if action == model.ActionStart {
			res, err = ctrl.StartAll(context.Background())
		} else {
			res, err = ctrl.StopAll(context.Background())
		}
		return bulkDoneMsg{label: string(action) + " all", result: res, err: err}
	}
}

func groupCmd(ctrl Controller, key, name string) tea.Cmd {
	return func() tea.Msg {
		action, res, err := ctrl.RunGroup(context.Background(), key)
		return bulkDoneMsg{label: string(action) + " " + name, result: res, err: err}
	}
}
