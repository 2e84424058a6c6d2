// Package route maps a location hash such as "#/todos/3/7/edit" to a view.
package route

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/query"
)

// Kind names the view a hash selects.
type Kind int

const (
	NotFound Kind = iota
	Groups
	Todos
	EditGroup
	EditTodo
)

func (k Kind) String() string {
	switch k {
	case Groups:
		return "groups"
	case Todos:
		return "todos"
	case EditGroup:
		return "edit-group"
	case EditTodo:
		return "edit-todo"
	}
	return "not-found"
}

// Route is a parsed hash. GroupID and TodoID keep the raw path segments;
// the query layer coerces them.
type Route struct {
	Kind    Kind
	GroupID string
	TodoID  string
}

var (
	editGroupRe = regexp.MustCompile(`^#/todos/([^/]+)/edit$`)
	editTodoRe  = regexp.MustCompile(`^#/todos/([^/]+)/([^/]+)/edit$`)
	todosRe     = regexp.MustCompile(`^#/todos/([^/]+)(?:/.*)?$`)
)

// Parse classifies hash. Patterns are tried in order and the first match wins.
func Parse(hash string) Route {
	hash = strings.TrimSpace(hash)
	switch hash {
	case "", "#", "#/":
		return Route{Kind: Groups}
	}
	if m := editGroupRe.FindStringSubmatch(hash); m != nil {
		return Route{Kind: EditGroup, GroupID: m[1]}
	}
	if m := editTodoRe.FindStringSubmatch(hash); m != nil {
		return Route{Kind: EditTodo, GroupID: m[1], TodoID: m[2]}
	}
	if m := todosRe.FindStringSubmatch(hash); m != nil {
		return Route{Kind: Todos, GroupID: m[1]}
	}
	return Route{Kind: NotFound}
}

func GroupsHash() string { return "" }

func TodosHash(g model.ID) string { return fmt.Sprintf("#/todos/%d", g) }

func EditGroupHash(g model.ID) string { return fmt.Sprintf("#/todos/%d/edit", g) }

func EditTodoHash(g, t model.ID) string { return fmt.Sprintf("#/todos/%d/%d/edit", g, t) }

// Renderer builds a view of type U. The dispatcher never looks inside U.
type Renderer[U any] interface {
	Groups(c *model.Collection) U
	Todos(g *model.Group) U
	EditGroup(g *model.Group) U
	EditTodo(g *model.Group, t *model.Todo) U
	NotFound() U
}

// Dispatcher resolves hashes to views. It only reads.
type Dispatcher[U any] struct {
	query    *query.Query
	renderer Renderer[U]
}

func NewDispatcher[U any](q *query.Query, r Renderer[U]) *Dispatcher[U] {
	return &Dispatcher[U]{query: q, renderer: r}
}

// Resolve renders the view for hash.
func (d *Dispatcher[U]) Resolve(ctx context.Context, hash string) U {
	r := Parse(hash)
	switch r.Kind {
	case Groups:
		return d.renderer.Groups(d.query.Collection(ctx))
	case EditGroup:
		if g, ok := d.group(ctx, r.GroupID); ok {
			return d.renderer.EditGroup(g)
		}
	case EditTodo:
		if g, ok := d.group(ctx, r.GroupID); ok {
			if t, ok := query.TodoIn(g, r.TodoID).Get(); ok {
				return d.renderer.EditTodo(g, t)
			}
		}
	case Todos:
		if g, ok := d.group(ctx, r.GroupID); ok {
			return d.renderer.Todos(g)
		}
	}
	return d.renderer.NotFound()
}

func (d *Dispatcher[U]) group(ctx context.Context, raw string) (*model.Group, bool) {
	id, ok := query.Coerce(raw).Get()
	if !ok {
		return nil, false
	}
	return d.query.FindTodoGroupByID(ctx, id).Get()
}
