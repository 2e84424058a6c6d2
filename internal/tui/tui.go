// Package tui is the interactive terminal front end. It keeps the current
// hash, renders the view the router picks for it, and sends every change
// through the command bus from Update, so the store has a single writer.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/todogroups/internal/command"
	"github.com/Makepad-fr/todogroups/internal/logging"
	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/option"
	"github.com/Makepad-fr/todogroups/internal/query"
	"github.com/Makepad-fr/todogroups/internal/remote"
	"github.com/Makepad-fr/todogroups/internal/route"
	"github.com/Makepad-fr/todogroups/internal/ui"
)

const remoteFailure = "Something went wrong. Try again later."

// Deps wires the model to the rest of the app.
type Deps struct {
	Bus    *command.Bus
	Query  *query.Query
	Remote command.Importer
	Logger *log.Logger
	// Hash is the starting location; empty opens the group list.
	Hash string
}

type mode int

const (
	browsing mode = iota
	editing
	confirming
	pickingUser
)

// screen is what the router resolved the current hash to.
type screen struct {
	kind  route.Kind
	col   *model.Collection
	group *model.Group
	todo  *model.Todo
}

type screens struct{}

func (screens) Groups(c *model.Collection) screen { return screen{kind: route.Groups, col: c} }
func (screens) Todos(g *model.Group) screen       { return screen{kind: route.Todos, group: g} }
func (screens) EditGroup(g *model.Group) screen   { return screen{kind: route.EditGroup, group: g} }
func (screens) EditTodo(g *model.Group, t *model.Todo) screen {
	return screen{kind: route.EditTodo, group: g, todo: t}
}
func (screens) NotFound() screen { return screen{kind: route.NotFound} }

// form is an inline set of text inputs.
type form struct {
	title  string
	inputs []textinput.Model
	focus  int
	err    string
	submit func(values []string) command.Command
	cancel string // hash to return to on esc
}

type usersMsg struct {
	groupID model.ID
	users   option.Option[[]remote.User]
}

type fetchedMsg struct {
	groupID model.ID
	userID  model.ID
	todos   []model.Todo
}

// Model is the bubbletea model.
type Model struct {
	ctx        context.Context
	bus        *command.Bus
	remote     command.Importer
	log        *log.Logger
	dispatcher *route.Dispatcher[screen]

	hash   string
	screen screen
	filter command.Filter
	list   list.Model

	mode    mode
	form    form
	confirm command.Command
	prompt  string

	users    []remote.User
	userIdx  int
	importTo model.ID
	loading  bool

	status string
	err    string
	width  int
	height int
}

var (
	addKey    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editKey   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	delKey    = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove"))
	delAllKey = key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "remove all"))
	groupKey  = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove group"))
	filterKey = key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter"))
	importKey = key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import"))
	themeKey  = key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme"))
	homeKey   = key.NewBinding(key.WithKeys("backspace", "h", "esc"), key.WithHelp("h", "home"))
)

// New builds the model and resolves the starting hash.
func New(ctx context.Context, d Deps) Model {
	l := list.New(nil, itemDelegate{}, 80, 20)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.NextPage.SetKeys("right", "pgdown")
	l.KeyMap.PrevPage.SetKeys("left", "pgup")
	extra := func() []key.Binding {
		return []key.Binding{addKey, editKey, delKey, delAllKey, groupKey, filterKey, importKey, themeKey, homeKey}
	}
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	logger := d.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	m := Model{
		ctx:        ctx,
		bus:        d.Bus,
		remote:     d.Remote,
		log:        logger,
		dispatcher: route.NewDispatcher[screen](d.Query, screens{}),
		filter:     command.FilterAll,
		list:       l,
		width:      80,
		height:     24,
	}
	m.navigate(d.Hash)
	return m
}

// Run starts the program on the alternate screen.
func Run(ctx context.Context, d Deps) error {
	p := tea.NewProgram(New(ctx, d), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Hash reports the current location.
func (m Model) Hash() string { return m.hash }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil
	case usersMsg:
		return m.gotUsers(msg), nil
	case fetchedMsg:
		return m.gotTodos(msg), nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case editing:
			return m.updateForm(msg)
		case confirming:
			return m.updateConfirm(msg), nil
		case pickingUser:
			return m.updatePicker(msg)
		}
		return m.updateBrowse(msg)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = ""
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", " ":
		switch m.screen.kind {
		case route.Groups:
			if g, ok := m.selectedGroup(); ok {
				m.navigate(route.TodosHash(g.ID))
			}
		case route.Todos:
			if t, ok := m.selectedTodo(); ok {
				m.dispatch(command.ToggleTodo{GroupID: m.screen.group.ID, TodoID: t.ID})
			}
		}
		return m, nil
	case "a":
		switch m.screen.kind {
		case route.Groups:
			m.openForm("Add group", m.hash, nil, func(v []string) command.Command {
				return command.AddGroup{Title: v[0], Description: v[1]}
			})
		case route.Todos:
			gid, filter := m.screen.group.ID, m.filter
			m.openForm("Add todo", m.hash, nil, func(v []string) command.Command {
				return command.AddTodo{GroupID: gid, Title: v[0], Description: v[1], Filter: filter}
			})
		}
		return m, nil
	case "e":
		switch m.screen.kind {
		case route.Groups:
			if g, ok := m.selectedGroup(); ok {
				m.dispatch(command.ShowEditGroupForm{GroupID: g.ID})
			}
		case route.Todos:
			if t, ok := m.selectedTodo(); ok {
				m.dispatch(command.ShowEditTodoForm{GroupID: m.screen.group.ID, TodoID: t.ID})
			}
		}
		return m, nil
	case "d":
		switch m.screen.kind {
		case route.Groups:
			if g, ok := m.selectedGroup(); ok {
				m.ask(fmt.Sprintf("Remove group %q?", g.Title), command.RemoveGroup{GroupID: g.ID})
			}
		case route.Todos:
			if t, ok := m.selectedTodo(); ok {
				m.ask(fmt.Sprintf("Remove todo %q?", t.Title), command.RemoveTodo{GroupID: m.screen.group.ID, TodoID: t.ID})
			}
		}
		return m, nil
	case "D":
		switch m.screen.kind {
		case route.Groups:
			m.ask("Remove all groups?", command.RemoveAllGroups{})
		case route.Todos:
			m.ask("Remove all todos in this group?", command.RemoveAllTodos{GroupID: m.screen.group.ID})
		}
		return m, nil
	case "x":
		if m.screen.kind == route.Todos {
			g := m.screen.group
			m.ask(fmt.Sprintf("Remove group %q?", g.Title), command.RemoveGroup{GroupID: g.ID})
		}
		return m, nil
	case "f":
		if m.screen.kind == route.Todos {
			m.filter = m.filter.Next()
			m.refresh()
			m.status = "filter: " + ui.FilterLabel(m.filter)
		}
		return m, nil
	case "i":
		if m.screen.kind == route.Todos && m.remote != nil && !m.loading {
			m.loading = true
			m.status = "loading users..."
			return m, fetchUsers(m.ctx, m.remote, m.screen.group.ID)
		}
		return m, nil
	case "t":
		if res, ok := m.dispatch(command.ToggleTheme{}); ok {
			m.status = "theme: " + res.Theme
		}
		return m, nil
	case "backspace", "h", "esc":
		switch m.screen.kind {
		case route.EditTodo:
			m.navigate(route.TodosHash(m.screen.group.ID))
		case route.Groups:
		default:
			m.navigate(route.GroupsHash())
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := &m.form
	switch msg.String() {
	case "esc":
		m.mode = browsing
		m.navigate(f.cancel)
		return m, nil
	case "tab", "down":
		m.focusInput((f.focus + 1) % len(f.inputs))
		return m, nil
	case "shift+tab", "up":
		m.focusInput((f.focus + len(f.inputs) - 1) % len(f.inputs))
		return m, nil
	case "enter":
		if f.focus < len(f.inputs)-1 {
			m.focusInput(f.focus + 1)
			return m, nil
		}
		values := make([]string, len(f.inputs))
		for i, in := range f.inputs {
			values[i] = in.Value()
		}
		res, err := m.bus.Dispatch(m.ctx, f.submit(values))
		if errors.Is(err, command.ErrInvalidInput) {
			f.err = "Title and description are required"
			return m, nil
		}
		m.mode = browsing
		m.after(res, err)
		return m, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) Model {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.mode = browsing
		m.dispatch(m.confirm)
	case "n", "esc", "q":
		m.mode = browsing
	}
	return m
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.userIdx > 0 {
			m.userIdx--
		}
	case "down", "j":
		if m.userIdx < len(m.users)-1 {
			m.userIdx++
		}
	case "esc", "q":
		m.mode = browsing
	case "enter":
		if len(m.users) == 0 {
			m.mode = browsing
			return m, nil
		}
		u := m.users[m.userIdx]
		m.mode = browsing
		m.loading = true
		m.status = "importing todos of " + u.Name + "..."
		return m, fetchTodos(m.ctx, m.remote, m.importTo, u.ID)
	}
	return m, nil
}

func (m Model) gotUsers(msg usersMsg) Model {
	m.loading = false
	m.status = ""
	users, ok := msg.users.Get()
	if !ok {
		m.err = remoteFailure
		return m
	}
	m.users, m.userIdx, m.importTo = users, 0, msg.groupID
	m.mode = pickingUser
	return m
}

// gotTodos attaches fetched todos. It runs inside Update, never in the fetch.
func (m Model) gotTodos(msg fetchedMsg) Model {
	m.loading = false
	m.status = ""
	res, ok := m.dispatch(command.AttachTodos{GroupID: msg.groupID, Todos: msg.todos, Filter: m.filter})
	if ok && !res.Missing {
		m.status = fmt.Sprintf("imported %d todos from user %d", len(msg.todos), msg.userID)
	}
	return m
}

func fetchUsers(ctx context.Context, r command.Importer, groupID model.ID) tea.Cmd {
	return func() tea.Msg {
		return usersMsg{groupID: groupID, users: r.FetchUsers(ctx)}
	}
}

func fetchTodos(ctx context.Context, r command.Importer, groupID, userID model.ID) tea.Cmd {
	return func() tea.Msg {
		return fetchedMsg{groupID: groupID, userID: userID, todos: r.FetchTodosForUser(ctx, userID)}
	}
}

// dispatch runs cmd and applies its result. ok is false on error.
func (m *Model) dispatch(cmd command.Command) (command.Result, bool) {
	res, err := m.bus.Dispatch(m.ctx, cmd)
	m.after(res, err)
	return res, err == nil
}

func (m *Model) after(res command.Result, err error) {
	if err != nil {
		if errors.Is(err, command.ErrRemoteUnavailable) {
			m.err = remoteFailure
		} else {
			m.err = err.Error()
		}
		m.refresh()
		return
	}
	if res.Missing {
		m.err = "no longer exists"
	}
	if hash, ok := res.Navigate.Get(); ok {
		m.navigate(hash)
		return
	}
	m.refresh()
}

func (m *Model) navigate(hash string) {
	if m.hash != hash {
		m.list.Select(0)
	}
	m.hash = hash
	m.refresh()
}

// refresh resolves the hash again and rebuilds the list.
func (m *Model) refresh() {
	m.screen = m.dispatcher.Resolve(m.ctx, m.hash)
	var items []list.Item
	switch m.screen.kind {
	case route.Groups:
		m.list.Title = "Todo groups"
		for _, g := range m.screen.col.Groups {
			items = append(items, groupItem{g})
		}
	case route.Todos:
		g := m.screen.group
		m.list.Title = fmt.Sprintf("#%d %s", g.ID, g.Title)
		for _, t := range m.filter.Apply(g.Todos) {
			items = append(items, todoItem{t})
		}
	case route.EditGroup:
		g := m.screen.group
		m.openForm(fmt.Sprintf("Edit group #%d", g.ID), route.TodosHash(g.ID), []string{g.Title, g.Description},
			func(v []string) command.Command {
				return command.EditGroup{GroupID: g.ID, Title: v[0], Description: v[1]}
			})
	case route.EditTodo:
		g, t := m.screen.group, m.screen.todo
		m.openForm(fmt.Sprintf("Edit todo #%d", t.ID), route.TodosHash(g.ID), []string{t.Title, t.Description},
			func(v []string) command.Command {
				return command.EditTodo{GroupID: g.ID, TodoID: t.ID, Title: v[0], Description: v[1]}
			})
	default:
		m.list.Title = "PAGE NOT FOUND"
	}
	idx := m.list.Index()
	m.list.SetItems(items)
	if idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
}

func (m *Model) openForm(title, cancel string, values []string, submit func([]string) command.Command) {
	inputs := make([]textinput.Model, 2)
	for i, placeholder := range []string{"Title", "Description"} {
		ti := textinput.New()
		ti.Prompt = placeholder + ": "
		ti.Placeholder = placeholder + "..."
		ti.CharLimit = 200
		if i < len(values) {
			ti.SetValue(values[i])
			ti.CursorEnd()
		}
		inputs[i] = ti
	}
	m.form = form{title: title, inputs: inputs, submit: submit, cancel: cancel}
	m.mode = editing
	m.focusInput(0)
}

func (m *Model) focusInput(i int) {
	for j := range m.form.inputs {
		if j == i {
			m.form.inputs[j].Focus()
		} else {
			m.form.inputs[j].Blur()
		}
	}
	m.form.focus = i
}

func (m *Model) ask(prompt string, cmd command.Command) {
	m.prompt, m.confirm = prompt, cmd
	m.mode = confirming
}

func (m Model) selectedGroup() (*model.Group, bool) {
	it, ok := m.list.SelectedItem().(groupItem)
	return it.g, ok
}

func (m Model) selectedTodo() (*model.Todo, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	return it.t, ok
}
