package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a group, or a todo within its group.
// Todo ids are only unique inside one group.
type ID int

// ParseID coerces the decimal string form used by hashes and CLI args.
func ParseID(s string) (ID, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", s, err)
	}
	return ID(n), nil
}

func (id ID) String() string { return strconv.Itoa(int(id)) }

// Todo is the domain model for a todo entry.
type Todo struct {
	ID          ID     `json:"id"`
	GroupID     ID     `json:"groupId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// Group owns its todos exclusively.
type Group struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Todos       []*Todo `json:"todos"`
}

// MarshalJSON writes nil Todos as an empty array.
func (g *Group) MarshalJSON() ([]byte, error) {
	type plain Group
	out := plain(*g)
	if out.Todos == nil {
		out.Todos = []*Todo{}
	}
	return json.Marshal(out)
}

// Stats counts done and pending todos.
func (g *Group) Stats() (done, pending int) {
	for _, t := range g.Todos {
		if t.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

// Collection is the whole persisted document: an ordered list of groups.
// It serializes as a bare JSON array.
type Collection struct {
	Groups []*Group
}

func (c *Collection) MarshalJSON() ([]byte, error) {
	groups := c.Groups
	if groups == nil {
		groups = []*Group{}
	}
	return json.Marshal(groups)
}

func (c *Collection) UnmarshalJSON(b []byte) error {
	var groups []*Group
	if err := json.Unmarshal(b, &groups); err != nil {
		return err
	}
	for _, g := range groups {
		if g != nil && g.Todos == nil {
			g.Todos = []*Todo{}
		}
	}
	c.Groups = groups
	return nil
}

// Clone returns a deep copy.
func (c *Collection) Clone() *Collection {
	out := &Collection{Groups: make([]*Group, 0, len(c.Groups))}
	for _, g := range c.Groups {
		cg := *g
		cg.Todos = make([]*Todo, 0, len(g.Todos))
		for _, t := range g.Todos {
			ct := *t
			cg.Todos = append(cg.Todos, &ct)
		}
		out.Groups = append(out.Groups, &cg)
	}
	return out
}

// Seed returns the default document used when nothing valid is persisted.
func Seed() *Collection {
	const lorem = "Lorem ipsum dolor sit amet, consectetur adipisicing elit. Accusantium, alias."
	return &Collection{Groups: []*Group{{
		ID:          1,
		Title:       "Todolist 1",
		Description: lorem,
		Todos: []*Todo{
			{ID: 1, GroupID: 1, Title: "Todo 1 content 1", Description: lorem},
			{ID: 2, GroupID: 1, Title: "Todo 1 content 2", Done: true},
		},
	}}}
}
