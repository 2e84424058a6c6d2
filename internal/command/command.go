// Package command routes user actions to the handlers that mutate the store.
//
// Every action is a typed struct naming itself. Handlers are registered
// once on a Bus and looked up by that name when the action is dispatched.
package command

import (
	"errors"

	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/option"
	"github.com/Makepad-fr/todogroups/internal/remote"
)

// Name identifies a command.
type Name string

const (
	NameToggleTodo        Name = "toggle-todo"
	NameRemoveTodo        Name = "remove-todo"
	NameRemoveGroup       Name = "remove-group"
	NameRemoveAllGroups   Name = "remove-all-groups"
	NameRemoveAllTodos    Name = "remove-all-todos"
	NameShowImportForm    Name = "show-import-form"
	NameImportTodos       Name = "import-todos"
	NameAttachTodos       Name = "attach-todos"
	NameShowEditGroupForm Name = "show-edit-group-form"
	NameShowEditTodoForm  Name = "show-edit-todo-form"
	NameFilterTodos       Name = "filter-todos"
	NameAddGroup          Name = "add-group"
	NameAddTodo           Name = "add-todo"
	NameEditGroup         Name = "edit-group"
	NameEditTodo          Name = "edit-todo"
	NameToggleTheme       Name = "toggle-theme"
)

// Names lists every command in registration order.
var Names = []Name{
	NameToggleTodo, NameRemoveTodo, NameRemoveGroup, NameRemoveAllGroups,
	NameRemoveAllTodos, NameShowImportForm, NameImportTodos, NameAttachTodos,
	NameShowEditGroupForm, NameShowEditTodoForm, NameFilterTodos, NameAddGroup,
	NameAddTodo, NameEditGroup, NameEditTodo, NameToggleTheme,
}

var (
	ErrUnknownCommand    = errors.New("unknown command")
	ErrInvalidInput      = errors.New("invalid input")
	ErrRemoteUnavailable = errors.New("remote service unavailable")
)

// Command is a structured payload that knows its own name.
type Command interface {
	Name() Name
}

type ToggleTodo struct{ GroupID, TodoID model.ID }

type RemoveTodo struct{ GroupID, TodoID model.ID }

type RemoveGroup struct{ GroupID model.ID }

type RemoveAllGroups struct{}

type RemoveAllTodos struct{ GroupID model.ID }

// ShowImportForm fetches the users a group can import from.
type ShowImportForm struct{ GroupID model.ID }

// ImportTodos fetches a user's todos and attaches them to a group.
// Filter only narrows Result.Todos, the attached set is unfiltered.
type ImportTodos struct {
	GroupID model.ID
	UserID  model.ID
	Filter  Filter
}

// AttachTodos appends already fetched todos to a group.
type AttachTodos struct {
	GroupID model.ID
	Todos   []model.Todo
	Filter  Filter
}

type ShowEditGroupForm struct{ GroupID model.ID }

type ShowEditTodoForm struct{ GroupID, TodoID model.ID }

type FilterTodos struct {
	GroupID model.ID
	Filter  Filter
}

type AddGroup struct{ Title, Description string }

// AddTodo appends a todo. Result.Todos holds it only if Filter shows it.
type AddTodo struct {
	GroupID            model.ID
	Title, Description string
	Filter             Filter
}

type EditGroup struct {
	GroupID            model.ID
	Title, Description string
}

// EditTodo rewrites a todo. An absent Done keeps the current state.
type EditTodo struct {
	GroupID, TodoID    model.ID
	Title, Description string
	Done               option.Option[bool]
}

type ToggleTheme struct{}

func (ToggleTodo) Name() Name        { return NameToggleTodo }
func (RemoveTodo) Name() Name        { return NameRemoveTodo }
func (RemoveGroup) Name() Name       { return NameRemoveGroup }
func (RemoveAllGroups) Name() Name   { return NameRemoveAllGroups }
func (RemoveAllTodos) Name() Name    { return NameRemoveAllTodos }
func (ShowImportForm) Name() Name    { return NameShowImportForm }
func (ImportTodos) Name() Name       { return NameImportTodos }
func (AttachTodos) Name() Name       { return NameAttachTodos }
func (ShowEditGroupForm) Name() Name { return NameShowEditGroupForm }
func (ShowEditTodoForm) Name() Name  { return NameShowEditTodoForm }
func (FilterTodos) Name() Name       { return NameFilterTodos }
func (AddGroup) Name() Name          { return NameAddGroup }
func (AddTodo) Name() Name           { return NameAddTodo }
func (EditGroup) Name() Name         { return NameEditGroup }
func (EditTodo) Name() Name          { return NameEditTodo }
func (ToggleTheme) Name() Name       { return NameToggleTheme }

// Result is what a handler hands back to the render layer.
// Missing reports that the target group or todo did not exist; nothing changed.
type Result struct {
	Navigate option.Option[string]
	Missing  bool

	Group *model.Group
	Todo  *model.Todo
	Todos []*model.Todo
	Users []remote.User
	Theme string
}
