package model

import "fmt"

// IDPolicy decides how new ids are assigned.
type IDPolicy string

const (
	// IDNext assigns max(existing)+1, which stays unique after deletions.
	IDNext IDPolicy = "next"
	// IDLength assigns len+1, the legacy behavior. It can repeat an id once
	// something has been removed.
	IDLength IDPolicy = "length"
)

// ParseIDPolicy accepts "", "next" or "length".
func ParseIDPolicy(s string) (IDPolicy, error) {
	switch IDPolicy(s) {
	case "", IDNext:
		return IDNext, nil
	case IDLength:
		return IDLength, nil
	}
	return "", fmt.Errorf("unknown id policy %q (want next or length)", s)
}

// NextGroupID returns the id for a group appended to c.
func (p IDPolicy) NextGroupID(c *Collection) ID {
	if p == IDLength {
		return ID(len(c.Groups) + 1)
	}
	var max ID
	for _, g := range c.Groups {
		if g.ID > max {
			max = g.ID
		}
	}
	return max + 1
}

// NextTodoID returns the id for a todo appended to g.
func (p IDPolicy) NextTodoID(g *Group) ID {
	if p == IDLength {
		return ID(len(g.Todos) + 1)
	}
	var max ID
	for _, t := range g.Todos {
		if t.ID > max {
			max = t.ID
		}
	}
	return max + 1
}
