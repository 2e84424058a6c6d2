package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/route"
	"github.com/Makepad-fr/todogroups/internal/ui"
)

type groupItem struct{ g *model.Group }

func (i groupItem) Title() string       { return i.g.Title }
func (i groupItem) Description() string { return i.g.Description }
func (i groupItem) FilterValue() string { return i.g.Title }

type todoItem struct{ t *model.Todo }

func (i todoItem) Title() string       { return i.t.Title }
func (i todoItem) Description() string { return i.t.Description }
func (i todoItem) FilterValue() string { return i.t.Title }

// itemDelegate renders one line per item.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	t := ui.Current()
	var line string
	switch it := item.(type) {
	case groupItem:
		line = ui.GroupLine(it.g)
	case todoItem:
		line = ui.TodoLine(it.t)
		if it.t.Description != "" {
			line += "  " + t.Muted.Render(it.t.Description)
		}
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

func (m Model) View() string {
	t := ui.Current()
	var b strings.Builder

	switch m.screen.kind {
	case route.Groups, route.Todos:
		b.WriteString(m.header())
		b.WriteString("\n")
		b.WriteString(m.list.View())
	case route.EditGroup, route.EditTodo:
		b.WriteString(t.Title.Render(m.form.title))
	default:
		b.WriteString(t.Error.Render("PAGE NOT FOUND"))
		b.WriteString("\n")
		b.WriteString(t.Help.Render("press h to go back to the groups"))
	}

	switch m.mode {
	case editing:
		b.WriteString("\n")
		b.WriteString(m.formView())
	case confirming:
		b.WriteString("\n")
		b.WriteString(t.Pending.Render(m.prompt + " (y/n)"))
	case pickingUser:
		b.WriteString("\n")
		b.WriteString(m.pickerView())
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(t.Muted.Render(m.status))
	}
	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(t.Error.Render(t.SymCross + " " + m.err))
	}
	return ui.Panel(b.String())
}

func (m Model) header() string {
	t := ui.Current()
	if m.screen.kind != route.Todos {
		return t.Muted.Render(fmt.Sprintf("%d groups", len(m.screen.col.Groups)))
	}
	g := m.screen.group
	done, pending := g.Stats()
	line := fmt.Sprintf("%s %d  %s %d  %s %d   %s",
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), len(g.Todos),
		ui.ProgressBar(done, len(g.Todos), 20),
	)
	if g.Description != "" {
		line = t.Muted.Render(g.Description) + "\n" + line
	}
	return line + "\n" + t.Muted.Render("filter: "+ui.FilterLabel(m.filter))
}

func (m Model) formView() string {
	t := ui.Current()
	lines := []string{t.Accent.Render(m.form.title)}
	if m.form.err != "" {
		lines[0] += "  " + t.Error.Render(m.form.err)
	}
	for _, in := range m.form.inputs {
		lines = append(lines, in.View())
	}
	lines = append(lines, t.Help.Render("tab next field, enter save, esc cancel"))
	box := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
	return box.Render(strings.Join(lines, "\n"))
}

func (m Model) pickerView() string {
	t := ui.Current()
	lines := []string{t.Accent.Render("Import todos from")}
	for i, u := range m.users {
		prefix := "  "
		if i == m.userIdx {
			prefix = t.Selected.Render("> ")
		}
		lines = append(lines, fmt.Sprintf("%s%d. %s", prefix, u.ID, u.Name))
	}
	if len(m.users) == 0 {
		lines = append(lines, t.Muted.Render("no users"))
	}
	lines = append(lines, t.Help.Render("enter import, esc cancel"))
	return strings.Join(lines, "\n")
}
