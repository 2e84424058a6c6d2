package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/todogroups/internal/logging"
	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/option"
	"github.com/Makepad-fr/todogroups/internal/query"
	"github.com/Makepad-fr/todogroups/internal/remote"
	"github.com/Makepad-fr/todogroups/internal/route"
	"github.com/Makepad-fr/todogroups/internal/store"
)

// Importer is the part of remote.Client the handlers use.
type Importer interface {
	FetchUsers(ctx context.Context) option.Option[[]remote.User]
	FetchTodosForUser(ctx context.Context, userID model.ID) []model.Todo
}

// Themes flips and persists the color theme.
type Themes interface {
	Toggle(ctx context.Context) (string, error)
}

// Deps are the collaborators of the built-in handlers.
type Deps struct {
	Store  *store.Store
	Remote Importer
	Themes Themes
	IDs    model.IDPolicy
	Logger *log.Logger
}

// Service implements every built-in command against one store.
type Service struct {
	store  *store.Store
	query  *query.Query
	remote Importer
	themes Themes
	ids    model.IDPolicy
	log    *log.Logger
}

func NewService(d Deps) *Service {
	s := &Service{
		store:  d.Store,
		query:  query.New(d.Store),
		remote: d.Remote,
		themes: d.Themes,
		ids:    d.IDs,
		log:    d.Logger,
	}
	if s.ids == "" {
		s.ids = model.IDNext
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	return s
}

// Register binds every handler on b.
func (s *Service) Register(b *Bus) error {
	handlers := map[Name]Handler{
		NameToggleTodo:        Handle(s.toggleTodo),
		NameRemoveTodo:        Handle(s.removeTodo),
		NameRemoveGroup:       Handle(s.removeGroup),
		NameRemoveAllGroups:   Handle(s.removeAllGroups),
		NameRemoveAllTodos:    Handle(s.removeAllTodos),
		NameShowImportForm:    Handle(s.showImportForm),
		NameImportTodos:       Handle(s.importTodos),
		NameAttachTodos:       Handle(s.attachTodos),
		NameShowEditGroupForm: Handle(s.showEditGroupForm),
		NameShowEditTodoForm:  Handle(s.showEditTodoForm),
		NameFilterTodos:       Handle(s.filterTodos),
		NameAddGroup:          Handle(s.addGroup),
		NameAddTodo:           Handle(s.addTodo),
		NameEditGroup:         Handle(s.editGroup),
		NameEditTodo:          Handle(s.editTodo),
		NameToggleTheme:       Handle(s.toggleTheme),
	}
	for _, name := range Names {
		if err := b.Register(name, handlers[name]); err != nil {
			return err
		}
	}
	return nil
}

var missing = Result{Missing: true}

func (s *Service) toggleTodo(ctx context.Context, c ToggleTodo) (Result, error) {
	t, ok := s.query.FindTodo(ctx, option.Some(c.GroupID), c.TodoID).Get()
	if !ok {
		return missing, nil
	}
	t.Done = !t.Done
	return Result{Todo: t}, s.store.Save(ctx, nil)
}

func (s *Service) removeTodo(ctx context.Context, c RemoveTodo) (Result, error) {
	g, ok := s.query.FindGroup(ctx, c.GroupID).Get()
	if !ok {
		return missing, nil
	}
	kept := make([]*model.Todo, 0, len(g.Todos))
	for _, t := range g.Todos {
		if t.ID != c.TodoID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(g.Todos) {
		return missing, nil
	}
	g.Todos = kept
	return Result{Group: g}, s.store.Save(ctx, nil)
}

func (s *Service) removeGroup(ctx context.Context, c RemoveGroup) (Result, error) {
	col := s.query.Collection(ctx)
	if !query.GroupIn(col, c.GroupID).Present() {
		return missing, nil
	}
	kept := &model.Collection{Groups: make([]*model.Group, 0, len(col.Groups))}
	for _, g := range col.Groups {
		if g.ID != c.GroupID {
			kept.Groups = append(kept.Groups, g)
		}
	}
	return Result{Navigate: option.Some(route.GroupsHash())}, s.store.Save(ctx, kept)
}

func (s *Service) removeAllGroups(ctx context.Context, _ RemoveAllGroups) (Result, error) {
	return Result{}, s.store.Save(ctx, &model.Collection{Groups: []*model.Group{}})
}

func (s *Service) removeAllTodos(ctx context.Context, c RemoveAllTodos) (Result, error) {
	g, ok := s.query.FindGroup(ctx, c.GroupID).Get()
	if !ok {
		return missing, nil
	}
	g.Todos = []*model.Todo{}
	return Result{Group: g}, s.store.Save(ctx, nil)
}

func (s *Service) showImportForm(ctx context.Context, c ShowImportForm) (Result, error) {
	g, ok := s.query.FindGroup(ctx, c.GroupID).Get()
	if !ok {
		return missing, nil
	}
	if s.remote == nil {
		return Result{}, ErrRemoteUnavailable
	}
	users, ok := s.remote.FetchUsers(ctx).Get()
	if !ok {
		return Result{}, ErrRemoteUnavailable
	}
	return Result{Group: g, Users: users}, nil
}

func (s *Service) importTodos(ctx context.Context, c ImportTodos) (Result, error) {
	if !s.query.FindGroup(ctx, c.GroupID).Present() {
		return missing, nil
	}
	if s.remote == nil {
		return Result{}, ErrRemoteUnavailable
	}
	todos := s.remote.FetchTodosForUser(ctx, c.UserID)
	s.log.Info("imported todos", "user", c.UserID, "group", c.GroupID, "count", len(todos))
	return s.attachTodos(ctx, AttachTodos{GroupID: c.GroupID, Todos: todos, Filter: c.Filter})
}

// attachTodos renumbers the incoming todos so they cannot collide with
// the group's existing ids.
func (s *Service) attachTodos(ctx context.Context, c AttachTodos) (Result, error) {
	g, ok := s.query.FindGroup(ctx, c.GroupID).Get()
	if !ok {
		return missing, nil
	}
	added := make([]*model.Todo, 0, len(c.Todos))
	for _, in := range c.Todos {
		t := in
		t.GroupID = g.ID
		t.ID = s.ids.NextTodoID(g)
		g.Todos = append(g.Todos, &t)
		added = append(added, &t)
	}
	return Result{Group: g, Todos: c.Filter.Apply(added)}, s.store.Save(ctx, nil)
}

// The show-form handlers always navigate; the router renders not-found for
// an absent target and Missing tells callers the same.
func (s *Service) showEditGroupForm(ctx context.Context, c ShowEditGroupForm) (Result, error) {
	return Result{
		Navigate: option.Some(route.EditGroupHash(c.GroupID)),
		Missing:  !s.query.FindGroup(ctx, c.GroupID).Present(),
	}, nil
}

func (s *Service) showEditTodoForm(ctx context.Context, c ShowEditTodoForm) (Result, error) {
	return Result{
		Navigate: option.Some(route.EditTodoHash(c.GroupID, c.TodoID)),
		Missing:  !s.query.FindTodo(ctx, option.Some(c.GroupID), c.TodoID).Present(),
	}, nil
}

func (s *Service) filterTodos(ctx context.Context, c FilterTodos) (Result, error) {
	g, ok := s.query.FindGroup(ctx, c.GroupID).Get()
	if !ok {
		return missing, nil
	}
	return Result{Group: g, Todos: c.Filter.Apply(g.Todos)}, nil
}

func (s *Service) addGroup(ctx context.Context, c AddGroup) (Result, error) {
	title, desc, err := validate(c.Title, c.Description)
	if err != nil {
		return Result{}, err
	}
	col := s.query.Collection(ctx)
	g := &model.Group{
		ID:          s.ids.NextGroupID(col),
		Title:       title,
		Description: desc,
		Todos:       []*model.Todo{},
	}
	col.Groups = append(col.Groups, g)
	return Result{Group: g}, s.store.Save(ctx, nil)
}

func (s *Service) addTodo(ctx context.Context, c AddTodo) (Result, error) {
	title, desc, err := validate(c.Title, c.Description)
	if err != nil {
		return Result{}, err
	}
	g, ok := s.query.FindGroup(ctx, c.GroupID).Get()
	if !ok {
		return missing, nil
	}
	t := &model.Todo{
		ID:          s.ids.NextTodoID(g),
		GroupID:     g.ID,
		Title:       title,
		Description: desc,
	}
	g.Todos = append(g.Todos, t)
	return Result{Group: g, Todo: t, Todos: c.Filter.Apply([]*model.Todo{t})}, s.store.Save(ctx, nil)
}

func (s *Service) editGroup(ctx context.Context, c EditGroup) (Result, error) {
	title, desc, err := validate(c.Title, c.Description)
	if err != nil {
		return Result{}, err
	}
	g, ok := s.query.FindTodoGroupByID(ctx, c.GroupID).Get()
	if !ok {
		return missing, nil
	}
	g.Title, g.Description = title, desc
	res := Result{Group: g, Navigate: option.Some(route.TodosHash(g.ID))}
	return res, s.store.Save(ctx, nil)
}

func (s *Service) editTodo(ctx context.Context, c EditTodo) (Result, error) {
	title, desc, err := validate(c.Title, c.Description)
	if err != nil {
		return Result{}, err
	}
	d := s.query.GetData(ctx, c.GroupID, option.Some(c.TodoID))
	t, ok := d.Todo.Get()
	if !ok {
		return missing, nil
	}
	t.Title, t.Description = title, desc
	c.Done.Do(func(done bool) { t.Done = done })
	res := Result{Todo: t, Navigate: option.Some(route.TodosHash(c.GroupID))}
	return res, s.store.Save(ctx, nil)
}

func (s *Service) toggleTheme(ctx context.Context, _ ToggleTheme) (Result, error) {
	if s.themes == nil {
		return Result{}, fmt.Errorf("toggle theme: no theme store")
	}
	theme, err := s.themes.Toggle(ctx)
	return Result{Theme: theme}, err
}

func validate(title, desc string) (string, string, error) {
	title, desc = strings.TrimSpace(title), strings.TrimSpace(desc)
	switch {
	case title == "":
		return "", "", fmt.Errorf("%w: title is required", ErrInvalidInput)
	case desc == "":
		return "", "", fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	return title, desc, nil
}
