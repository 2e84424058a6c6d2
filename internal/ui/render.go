package ui

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/todogroups/internal/command"
	"github.com/Makepad-fr/todogroups/internal/model"
)

// TextRenderer draws each route view as a framed block of text.
type TextRenderer struct {
	// Filter hides todos in the todo list view. The zero value shows all.
	Filter command.Filter
	// Program is the command name shown in hints.
	Program string
}

func (r TextRenderer) program() string {
	if r.Program == "" {
		return "todogroups"
	}
	return r.Program
}

func (r TextRenderer) Groups(c *model.Collection) string {
	t := Current()
	lines := []string{fmt.Sprintf("%s   %s %d", t.Title.Render("Todo groups"), t.Accent.Render("Total"), len(c.Groups))}
	if len(c.Groups) == 0 {
		lines = append(lines, "", t.Muted.Render("No groups yet. Add one with: "+r.program()+" add-group <title> -desc <description>"))
		return Panel(lines...)
	}
	for _, g := range c.Groups {
		lines = append(lines, "", GroupLine(g))
		if g.Description != "" {
			lines = append(lines, "    "+t.Muted.Render(g.Description))
		}
	}
	return Panel(lines...)
}

func (r TextRenderer) Todos(g *model.Group) string {
	t := Current()
	done, pending := g.Stats()
	header := fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render(fmt.Sprintf("#%d %s", g.ID, g.Title)),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), len(g.Todos),
	)
	lines := []string{header}
	if g.Description != "" {
		lines = append(lines, t.Muted.Render(g.Description))
	}
	lines = append(lines, ProgressBar(done, len(g.Todos), 28))
	if r.Filter != "" && r.Filter != command.FilterAll {
		lines = append(lines, t.Muted.Render("filter: "+FilterLabel(r.Filter)))
	}
	shown := r.Filter.Apply(g.Todos)
	if len(shown) == 0 {
		lines = append(lines, "", t.Muted.Render("Nothing to show."))
	}
	for _, td := range shown {
		lines = append(lines, "", TodoLine(td))
		lines = append(lines, "    "+t.Muted.Render(todoDetail(td)))
	}
	return Panel(lines...)
}

func (r TextRenderer) EditGroup(g *model.Group) string {
	t := Current()
	return Panel(
		t.Title.Render(fmt.Sprintf("Edit group #%d", g.ID)),
		"",
		t.Accent.Render("Title:       ")+g.Title,
		t.Accent.Render("Description: ")+g.Description,
		"",
		t.Help.Render(fmt.Sprintf("%s edit-group %d -title <title> -desc <description>", r.program(), g.ID)),
	)
}

func (r TextRenderer) EditTodo(g *model.Group, td *model.Todo) string {
	t := Current()
	return Panel(
		t.Title.Render(fmt.Sprintf("Edit todo #%d in %s", td.ID, g.Title)),
		"",
		t.Accent.Render("Title:       ")+td.Title,
		t.Accent.Render("Description: ")+td.Description,
		t.Accent.Render("Status:      ")+Status(td),
		"",
		t.Help.Render(fmt.Sprintf("%s edit %d %d -title <title> -desc <description> [-done true|false]", r.program(), g.ID, td.ID)),
	)
}

func (r TextRenderer) NotFound() string {
	t := Current()
	return Panel(t.Error.Render("PAGE NOT FOUND"), t.Muted.Render("Back to the groups: "+r.program()+" groups"))
}

// GroupLine is a one-line summary: id, title and progress.
func GroupLine(g *model.Group) string {
	t := Current()
	done, _ := g.Stats()
	return fmt.Sprintf("%s %s  %s",
		t.Accent.Render(fmt.Sprintf("#%-3d", g.ID)),
		t.Title.Render(g.Title),
		t.Muted.Render(ProgressBar(done, len(g.Todos), 12)),
	)
}

// TodoLine renders the checkbox, id and title.
func TodoLine(td *model.Todo) string {
	t := Current()
	box, title := t.Muted.Render(t.BoxUnchecked), td.Title
	if td.Done {
		box, title = t.Success.Render(t.BoxChecked), t.Done.Render(td.Title)
	}
	return fmt.Sprintf("%s %s %s", box, t.Accent.Render(fmt.Sprintf("%3d.", td.ID)), title)
}

// Status labels a todo's state.
func Status(td *model.Todo) string {
	if td.Done {
		return "Done"
	}
	return "In progress"
}

func todoDetail(td *model.Todo) string {
	parts := []string{Status(td)}
	if d := strings.TrimSpace(td.Description); d != "" {
		parts = append(parts, d)
	}
	return strings.Join(parts, " · ")
}

// FilterLabel names a filter for people.
func FilterLabel(f command.Filter) string {
	switch f {
	case command.FilterDone:
		return "done"
	case command.FilterPending:
		return "in progress"
	}
	return "all"
}
