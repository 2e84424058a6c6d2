// Package query looks up groups and todos in the store's collection.
// Absence is a normal outcome and comes back as an empty option.
package query

import (
	"context"
	"reflect"
	"strconv"
	"strings"

	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/option"
	"github.com/Makepad-fr/todogroups/internal/store"
)

// Key is anything an id can arrive as: a typed id, a plain int, or the
// decimal string from a hash or a CLI argument.
type Key interface {
	~int | ~int64 | ~string
}

// Coerce turns k into an ID. Unparsable strings are absent.
func Coerce[K Key](k K) option.Option[model.ID] {
	rv := reflect.ValueOf(k)
	if rv.Kind() == reflect.String {
		n, err := strconv.Atoi(strings.TrimSpace(rv.String()))
		return option.FromPair(model.ID(n), err == nil)
	}
	return option.Some(model.ID(rv.Int()))
}

// GroupIn scans c for a group whose id equals id.
func GroupIn[K Key](c *model.Collection, id K) option.Option[*model.Group] {
	return option.Then(Coerce(id), func(want model.ID) option.Option[*model.Group] {
		if c == nil {
			return option.None[*model.Group]()
		}
		for _, g := range c.Groups {
			if g.ID == want {
				return option.Some(g)
			}
		}
		return option.None[*model.Group]()
	})
}

// TodoIn scans one group's todos.
func TodoIn[K Key](g *model.Group, id K) option.Option[*model.Todo] {
	return option.Then(Coerce(id), func(want model.ID) option.Option[*model.Todo] {
		if g == nil {
			return option.None[*model.Todo]()
		}
		for _, t := range g.Todos {
			if t.ID == want {
				return option.Some(t)
			}
		}
		return option.None[*model.Todo]()
	})
}

// TodoAnywhere scans every group in order and returns the first todo with id.
// Todo ids repeat across groups, so the earliest group wins.
func TodoAnywhere[K Key](c *model.Collection, id K) option.Option[*model.Todo] {
	if c == nil {
		return option.None[*model.Todo]()
	}
	for _, g := range c.Groups {
		if t := TodoIn(g, id); t.Present() {
			return t
		}
	}
	return option.None[*model.Todo]()
}

// Query reads through a Store.
type Query struct {
	store *store.Store
}

func New(s *store.Store) *Query { return &Query{store: s} }

// Collection returns the store's current collection.
func (q *Query) Collection(ctx context.Context) *model.Collection {
	return q.store.Load(ctx)
}

// FindGroup looks id up in the loaded collection.
func (q *Query) FindGroup(ctx context.Context, id model.ID) option.Option[*model.Group] {
	return GroupIn(q.store.Load(ctx), id)
}

// FindTodo restricts the search to groupID when present, otherwise scans all groups.
func (q *Query) FindTodo(ctx context.Context, groupID option.Option[model.ID], todoID model.ID) option.Option[*model.Todo] {
	c := q.store.Load(ctx)
	if gid, ok := groupID.Get(); ok {
		return option.Then(GroupIn(c, gid), func(g *model.Group) option.Option[*model.Todo] {
			return TodoIn(g, todoID)
		})
	}
	return TodoAnywhere(c, todoID)
}

// FindTodoGroupByID always reads a freshly loaded collection; the router has no other context.
func (q *Query) FindTodoGroupByID(ctx context.Context, id model.ID) option.Option[*model.Group] {
	return GroupIn(q.store.Load(ctx), id)
}

// Data bundles a collection with the group and todo resolved from it.
type Data struct {
	Collection *model.Collection
	Group      option.Option[*model.Group]
	Todo       option.Option[*model.Todo]
}

// GetData resolves a group and, when todoID is present, a todo inside it.
func (q *Query) GetData(ctx context.Context, groupID model.ID, todoID option.Option[model.ID]) Data {
	c := q.store.Load(ctx)
	d := Data{Collection: c, Group: GroupIn(c, groupID)}
	if tid, ok := todoID.Get(); ok {
		d.Todo = option.Then(d.Group, func(g *model.Group) option.Option[*model.Todo] {
			return TodoIn(g, tid)
		})
	}
	return d
}
