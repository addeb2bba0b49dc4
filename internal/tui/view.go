package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"svcboard/internal/controller"
	"svcboard/internal/model"
	"svcboard/internal/svcerr"
)

const defaultHeight = 24

var (
	colorRunning = lipgloss.Color("42")
	colorStopped = lipgloss.Color("244")
	colorBusy    = lipgloss.Color("214")
	colorError   = lipgloss.Color("203")

	titleStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(colorStopped)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	bannerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("124")).Padding(0, 1)
	cursorStyle   = lipgloss.NewStyle().Reverse(true)
	selectorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
)

// chromeHeight counts the fixed lines around the list body.
func (m *Model) chromeHeight() int {
	h := 5 // header, search, selectors, status, help
	if m.view.Banner != nil {
		h++
	}
	return h
}

func (m *Model) bodyHeight() int {
	height := m.height
	if height <= 0 {
		height = defaultHeight
	}
	return max(height-m.chromeHeight(), 1)
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerLine())
	b.WriteByte('\n')
	if m.view.Banner != nil {
		b.WriteString(bannerStyle.Render(bannerText(m.view.Banner)))
		b.WriteByte('\n')
	}
	b.WriteString(m.search.View())
	b.WriteByte('\n')
	b.WriteString(m.selectorLine())
	b.WriteByte('\n')

	body := m.bodyHeight()
	switch {
	case !m.view.Loaded && m.view.Banner == nil:
		b.WriteString(dimStyle.Render("Loading services…"))
		b.WriteByte('\n')
		body--
	case len(m.lines) == 0:
		b.WriteString(dimStyle.Render(emptyText(m.view)))
		b.WriteByte('\n')
		body--
	default:
		res := m.window()
		shown := 0
		for _, slot := range res.Slots() {
			if slot.Top < m.offset || slot.Top >= m.offset+body {
				continue
			}
			b.WriteString(m.renderLine(slot.Index))
			b.WriteByte('\n')
			shown++
		}
		body -= shown
	}
	for ; body > 0; body-- {
		b.WriteByte('\n')
	}

	b.WriteString(dimStyle.Render(m.statusMsg))
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) headerLine() string {
	parts := []string{titleStyle.Render("svcboard")}
	if m.backend != "" {
		parts = append(parts, "backend="+m.backend)
	}
	if m.privilege != "" {
		parts = append(parts, m.privilege)
	}
	parts = append(parts, fmt.Sprintf("%d/%d services", len(m.view.Items), m.view.Total))
	if m.view.Processing {
		parts = append(parts, m.spinner.View()+" bulk operation running")
	}
	if !m.view.RefreshedAt.IsZero() {
		parts = append(parts, "updated "+m.view.RefreshedAt.Format(time.Kitchen))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) selectorLine() string {
	var parts []string
	for _, s := range m.selectors {
		label := fmt.Sprintf("%s (%d)", selectorLabel(s), m.view.Counts[s])
		if s == m.view.Query.Selector {
			label = selectorStyle.Render("[" + label + "]")
		} else {
			label = dimStyle.Render(label)
		}
		parts = append(parts, label)
	}
	out := strings.Join(parts, " ")
	if m.width > 0 && lipgloss.Width(out) > m.width {
		out = lipgloss.NewStyle().MaxWidth(m.width).Render(out)
	}
	return out
}

// renderLine draws one row. A panic while rendering is contained to the row.
func (m *Model) renderLine(idx int) (out string) {
	ln := m.lines[idx]
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Str("id", ln.item.ID).Interface("panic", r).Msg("row render failed")
			out = errorStyle.Render(fmt.Sprintf("  ! %s could not be displayed", lineKey(ln)))
		}
	}()

	var s string
	if ln.kind == lineGroup {
		s = m.groupLine(ln)
	} else {
		s = m.renderItem(ln.item, m.view.Row(ln.item.ID))
	}
	if idx == m.cursor {
		s = cursorStyle.Render(s)
	}
	return s
}

func (m *Model) groupLine(ln line) string {
	g := m.view.Groups[ln.group]
	arrow := "▸"
	if g.Expanded {
		arrow = "▾"
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(g.Color))
	return fmt.Sprintf("%s %s %s  %s",
		arrow,
		style.Render(g.Icon+" "+g.Name),
		dimStyle.Render(fmt.Sprintf("%d services", len(g.Items))),
		fmt.Sprintf("%s %s",
			lipgloss.NewStyle().Foreground(colorRunning).Render(fmt.Sprintf("%d running", g.Summary.Running)),
			dimStyle.Render(fmt.Sprintf("%d stopped", g.Summary.Stopped)),
		),
	)
}

func (m *Model) defaultItemLine(it model.Item, row controller.RowView) string {
	info := it.Type.Info()
	status := statusText(it.Status)
	if row.Busy() {
		status = m.spinner.View() + " " + status
	}

	var b strings.Builder
	fmt.Fprintf(&b, "    %s %-32s %s  %s",
		lipgloss.NewStyle().Foreground(lipgloss.Color(info.Color)).Render(info.Icon),
		it.Label(),
		status,
		dimStyle.Render(string(it.Policy)),
	)
	if it.DisplayName != "" && it.DisplayName != it.ID {
		b.WriteString(dimStyle.Render("  " + it.ID))
	}
	if row.Excluded {
		b.WriteString(dimStyle.Render("  [excluded]"))
	}
	if row.Error != nil {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render("✗ " + row.Error.Message + " (d to dismiss)"))
	}
	return b.String()
}

func statusText(s model.Status) string {
	style := dimStyle
	switch {
	case s == model.StatusRunning:
		style = lipgloss.NewStyle().Foreground(colorRunning)
	case s.Transitional():
		style = lipgloss.NewStyle().Foreground(colorBusy)
	}
	return style.Render(string(s))
}

func bannerText(e *svcerr.Error) string {
	text := "✗ " + e.Error()
	if g := e.Guidance(); g != "" {
		text += " " + g
	}
	return text + " (D to dismiss)"
}

func emptyText(v controller.View) string {
	if v.Total == 0 {
		return "No database services found."
	}
	return "No services match the current search and filter."
}

func selectorLabel(s string) string {
	t := model.ServiceType(s)
	if t.Known() {
		return t.Info().Name
	}
	c := model.Category(s)
	if c.Info().Category == c {
		return c.Info().Name
	}
	return s
}
