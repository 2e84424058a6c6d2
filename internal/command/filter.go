package command

import (
	"fmt"
	"strings"

	"github.com/Makepad-fr/todogroups/internal/model"
)

// Filter selects todos by done state. The values match the select box
// of the web app: "all", "true" (done) and "false" (in progress).
type Filter string

const (
	FilterAll     Filter = "all"
	FilterDone    Filter = "true"
	FilterPending Filter = "false"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterDone, "done":
		return FilterDone, nil
	case FilterPending, "pending":
		return FilterPending, nil
	}
	return "", fmt.Errorf("%w: filter %q (want all, true or false)", ErrInvalidInput, s)
}

// Next cycles all -> true -> false -> all.
func (f Filter) Next() Filter {
	switch f {
	case FilterDone:
		return FilterPending
	case FilterPending:
		return FilterAll
	}
	return FilterDone
}

// Match reports whether t passes. The zero Filter passes everything.
func (f Filter) Match(t *model.Todo) bool {
	switch f {
	case FilterDone:
		return t.Done
	case FilterPending:
		return !t.Done
	}
	return true
}

// Apply keeps the todos that match, in order. The result is never nil.
func (f Filter) Apply(todos []*model.Todo) []*model.Todo {
	out := make([]*model.Todo, 0, len(todos))
	for _, t := range todos {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
