package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Makepad-fr/todogroups/internal/app"
	"github.com/Makepad-fr/todogroups/internal/command"
	"github.com/Makepad-fr/todogroups/internal/config"
	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/option"
	"github.com/Makepad-fr/todogroups/internal/route"
	"github.com/Makepad-fr/todogroups/internal/tui"
	"github.com/Makepad-fr/todogroups/internal/ui"
)

const program = "todogroups"

// Options tune output behavior.
type Options struct {
	Stdout, Stderr io.Writer
}

// usageError marks bad arguments; Run maps it to exit code 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usage(format string, a ...any) error { return usageError{fmt.Sprintf(format, a...)} }

// session is one parsed invocation.
type session struct {
	ctx    context.Context
	app    *app.App
	group  bool // ls: split pending and done
	render ui.TextRenderer
}

// Run parses root flags, dispatches the subcommand and returns an exit code
// (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	restore := ui.SetOutput(opt.Stdout, opt.Stderr)
	defer restore()

	fs := flag.NewFlagSet(program, flag.ContinueOnError)
	fs.SetOutput(opt.Stderr)
	groupPending := fs.Bool("group", false, "ls: group output by pending/done")
	forceColor := fs.Bool("color", false, "force colored output")
	noColor := fs.Bool("no-color", false, "disable colored output")
	fs.Usage = func() { PrintHelp(opt.Stderr); fs.PrintDefaults() }

	cfg, rest, err := config.Load(fs, args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		ui.Fail(err.Error())
		return 2
	}
	ui.SetColorForcing(*forceColor, *noColor)

	if len(rest) == 0 {
		PrintHelp(opt.Stderr)
		return 2
	}
	cmd, a := rest[0], rest[1:]
	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Stdout)
		return 0
	}

	logOut := opt.Stderr
	if cmd == "tui" {
		logOut = nil // the screen belongs to the TUI; only -log-file receives logs
	}
	application, err := app.New(ctx, cfg, logOut)
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	defer application.Close()
	application.Themes.Apply(ctx)

	s := &session{ctx: ctx, app: application, group: *groupPending, render: ui.TextRenderer{Program: program}}
	err = s.run(cmd, a)
	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		ui.Fail(ue.msg)
		return 2
	case errors.Is(err, command.ErrInvalidInput):
		ui.Fail(err.Error())
		return 2
	case errors.Is(err, command.ErrRemoteUnavailable):
		ui.Fail("Something went wrong. Try again later.")
		return 1
	}
	ui.Fail(err.Error())
	return 1
}

func (s *session) run(cmd string, a []string) error {
	switch cmd {
	case "groups":
		return s.doRoute(route.GroupsHash())
	case "ls":
		return s.doList(a)
	case "add-group":
		return s.doAddGroup(a)
	case "add":
		return s.doAddTodo(a)
	case "done":
		return s.doToggle(a)
	case "rm":
		return s.doRemoveTodo(a)
	case "rm-group":
		return s.doRemoveGroup(a)
	case "clear":
		return s.doClear(a)
	case "clear-all":
		return s.doClearAll(a)
	case "edit-group":
		return s.doEditGroup(a)
	case "edit":
		return s.doEditTodo(a)
	case "filter":
		return s.doFilter(a)
	case "import":
		return s.doImport(a)
	case "users":
		return s.doUsers(a)
	case "route":
		if len(a) != 1 {
			return usage("usage: %s route <hash>", program)
		}
		return s.doRoute(a[0])
	case "theme":
		return s.doTheme(a)
	case "stats":
		return s.doStats()
	case "tui":
		return tui.Run(s.ctx, tui.Deps{
			Bus:    s.app.Bus,
			Query:  s.app.Query,
			Remote: s.app.Remote,
			Logger: s.app.Log,
			Hash:   strings.Join(a, ""),
		})
	}
	return usage("unknown subcommand: %s (run `%s help`)", cmd, program)
}

func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `%[1]s - todo groups in your terminal

Usage:
  %[1]s [flags] <subcommand> [args]

Subcommands:
  groups                                   List groups
  ls <group> [-filter all|true|false]      List the todos of a group
  add-group <title...> -desc <text>        Add a group
  add <group> <title...> -desc <text>      Add a todo to a group
  done <group> <todo>                      Toggle a todo
  rm <group> <todo>                        Remove a todo
  rm-group <group>                         Remove a group
  clear <group>                            Remove every todo of a group
  clear-all                                Remove every group
  edit-group <group> [-title T] [-desc D]  Show or edit a group
  edit <group> <todo> [-title T] [-desc D] [-done true|false]
                                           Show or edit a todo
  filter <group> all|true|false            Show done (true) or pending (false) todos
  import <group> [user]                    Import a placeholder user's todos
  users <group>                            List users to import from
  route <hash>                             Render the view for a hash, e.g. '#/todos/1'
  theme [toggle|light|dark|mono]           Show or change the theme
  stats                                    Show totals and session counters
  tui [hash]                               Start the interactive UI
  help                                     Show this help

Examples:
  %[1]s add-group Groceries -desc "for the weekend"
  %[1]s add 1 Buy milk -desc "2 liters"
  %[1]s done 1 3
  %[1]s -driver sqlite -db todos.db tui
`, program)
}

// -------------- subcommand impls ----------------

func (s *session) doList(a []string) error {
	fs := newFlagSet("ls")
	filter := fs.String("filter", "all", "all, true or false")
	pos, err := parseInterspersed(fs, a)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return usage("usage: %s ls <group> [-filter all|true|false]", program)
	}
	gid, err := parseID("ls", pos[0])
	if err != nil {
		return err
	}
	f, err := command.ParseFilter(*filter)
	if err != nil {
		return err
	}
	if !s.group {
		s.render.Filter = f
		return s.doRoute(route.TodosHash(gid))
	}
	g, ok := s.app.Query.FindGroup(s.ctx, gid).Get()
	if !ok {
		return fmt.Errorf("group %d not found", gid)
	}
	ui.Println(ui.Panel(groupLines(f.Apply(g.Todos))...))
	return nil
}

func (s *session) doAddGroup(a []string) error {
	fs := newFlagSet("add-group")
	desc := fs.String("desc", "", "group description")
	pos, err := parseInterspersed(fs, a)
	if err != nil {
		return err
	}
	if len(pos) == 0 {
		return usage("usage: %s add-group <title...> -desc <description>", program)
	}
	res, err := s.app.Bus.Dispatch(s.ctx, command.AddGroup{Title: strings.Join(pos, " "), Description: *desc})
	if err != nil {
		return err
	}
	ui.OK(fmt.Sprintf("added group #%d", res.Group.ID))
	return nil
}

func (s *session) doAddTodo(a []string) error {
	fs := newFlagSet("add")
	desc := fs.String("desc", "", "todo description")
	pos, err := parseInterspersed(fs, a)
	if err != nil {
		return err
	}
	if len(pos) < 2 {
		return usage("usage: %s add <group> <title...> -desc <description>", program)
	}
	gid, err := parseID("add", pos[0])
	if err != nil {
		return err
	}
	res, err := s.app.Bus.Dispatch(s.ctx, command.AddTodo{GroupID: gid, Title: strings.Join(pos[1:], " "), Description: *desc})
	if err != nil {
		return err
	}
	if res.Missing {
		return fmt.Errorf("group %d not found", gid)
	}
	ui.OK(fmt.Sprintf("added todo #%d to group #%d", res.Todo.ID, gid))
	return nil
}

func (s *session) doToggle(a []string) error {
	gid, tid, err := groupAndTodo("done", a)
	if err != nil {
		return err
	}
	res, err := s.app.Bus.Dispatch(s.ctx, command.ToggleTodo{GroupID: gid, TodoID: tid})
	if err != nil {
		return err
	}
	if res.Missing {
		return notFoundHint(fmt.Errorf("todo %d not found in group %d", tid, gid), gid)
	}
	ui.OK(fmt.Sprintf("%s: %s", res.Todo.Title, ui.Status(res.Todo)))
	return nil
}

func (s *session) doRemoveTodo(a []string) error {
	gid, tid, err := groupAndTodo("rm", a)
	if err != nil {
		return err
	}
	res, err := s.app.Bus.Dispatch(s.ctx, command.RemoveTodo{GroupID: gid, TodoID: tid})
	if err != nil {
		return err
	}
	if res.Missing {
		return notFoundHint(fmt.Errorf("todo %d not found in group %d", tid, gid), gid)
	}
	ui.OK("removed")
	return nil
}

func (s *session) doRemoveGroup(a []string) error {
	gid, err := oneGroup("rm-group", a)
	if err != nil {
		return err
	}
	res, err := s.app.Bus.Dispatch(s.ctx, command.RemoveGroup{GroupID: gid})
	if err != nil {
		return err
	}
	if res.Missing {
		return fmt.Errorf("group %d not found", gid)
	}
	ui.OK(fmt.Sprintf("removed group #%d", gid))
	return nil
}

func (s *session) doClear(a []string) error {
	gid, err := oneGroup("clear", a)
	if err != nil {
		return err
	}
	res, err := s.app.Bus.Dispatch(s.ctx, command.RemoveAllTodos{GroupID: gid})
	if err != nil {
		return err
	}
	if res.Missing {
		return fmt.Errorf("group %d not found", gid)
	}
	ui.OK(fmt.Sprintf("cleared group #%d", gid))
	return nil
}

func (s *session) doClearAll(a []string) error {
	if len(a) != 0 {
		return usage("usage: %s clear-all", program)
	}
	if _, err := s.app.Bus.Dispatch(s.ctx, command.RemoveAllGroups{}); err != nil {
		return err
	}
	ui.OK("removed every group")
	return nil
}

func (s *session) doEditGroup(a []string) error {
	fs := newFlagSet("edit-group")
	title := fs.String("title", "", "new title")
	desc := fs.String("desc", "", "new description")
	pos, err := parseInterspersed(fs, a)
	if err != nil {
		return err
	}
	gid, err := oneGroup("edit-group", pos)
	if err != nil {
		return err
	}
	if !flagsSet(fs) {
		return s.navigate(command.ShowEditGroupForm{GroupID: gid})
	}
	g, ok := s.app.Query.FindGroup(s.ctx, gid).Get()
	if !ok {
		return fmt.Errorf("group %d not found", gid)
	}
	return s.navigate(command.EditGroup{
		GroupID:     gid,
		Title:       orDefault(fs, "title", *title, g.Title),
		Description: orDefault(fs, "desc", *desc, g.Description),
	})
}

func (s *session) doEditTodo(a []string) error {
	fs := newFlagSet("edit")
	title := fs.String("title", "", "new title")
	desc := fs.String("desc", "", "new description")
	done := fs.String("done", "", "true or false")
	pos, err := parseInterspersed(fs, a)
	if err != nil {
		return err
	}
	gid, tid, err := groupAndTodo("edit", pos)
	if err != nil {
		return err
	}
	if !flagsSet(fs) {
		return s.navigate(command.ShowEditTodoForm{GroupID: gid, TodoID: tid})
	}
	t, ok := s.app.Query.FindTodo(s.ctx, option.Some(gid), tid).Get()
	if !ok {
		return notFoundHint(fmt.Errorf("todo %d not found in group %d", tid, gid), gid)
	}
	cmd := command.EditTodo{
		GroupID:     gid,
		TodoID:      tid,
		Title:       orDefault(fs, "title", *title, t.Title),
		Description: orDefault(fs, "desc", *desc, t.Description),
	}
	if isSet(fs, "done") {
		b, err := strconv.ParseBool(*done)
		if err != nil {
			return usage("edit: -done wants true or false, got %q", *done)
		}
		cmd.Done = option.Some(b)
	}
	return s.navigate(cmd)
}

// navigate dispatches cmd and renders wherever it leads.
func (s *session) navigate(cmd command.Command) error {
	res, err := s.app.Bus.Dispatch(s.ctx, cmd)
	if err != nil {
		return err
	}
	if res.Missing {
		if hash, ok := res.Navigate.Get(); ok {
			if err := s.doRoute(hash); err != nil {
				return err
			}
		}
		return errors.New("not found")
	}
	if res.Group != nil || res.Todo != nil {
		ui.OK("saved")
	}
	return s.doRoute(res.Navigate.OrElse(route.GroupsHash()))
}

func (s *session) doFilter(a []string) error {
	if len(a) != 2 {
		return usage("usage: %s filter <group> all|true|false", program)
	}
	gid, err := parseID("filter", a[0])
	if err != nil {
		return err
	}
	f, err := command.ParseFilter(a[1])
	if err != nil {
		return err
	}
	res, err := s.app.Bus.Dispatch(s.ctx, command.FilterTodos{GroupID: gid, Filter: f})
	if err != nil {
		return err
	}
	if res.Missing {
		return fmt.Errorf("group %d not found", gid)
	}
	s.render.Filter = f
	ui.Println(s.render.Todos(res.Group))
	return nil
}

func (s *session) doImport(a []string) error {
	if len(a) < 1 || len(a) > 2 {
		return usage("usage: %s import <group> [user]", program)
	}
	gid, err := parseID("import", a[0])
	if err != nil {
		return err
	}
	user := model.ID(s.app.Config.Remote.DefaultUser)
	if len(a) == 2 {
		if user, err = parseID("import", a[1]); err != nil {
			return err
		}
	}
	res, err := s.app.Bus.Dispatch(s.ctx, command.ImportTodos{GroupID: gid, UserID: user})
	if err != nil {
		return err
	}
	if res.Missing {
		return fmt.Errorf("group %d not found", gid)
	}
	if len(res.Todos) == 0 {
		return command.ErrRemoteUnavailable
	}
	ui.OK(fmt.Sprintf("imported %d todos from user %d into group #%d", len(res.Todos), user, gid))
	return nil
}

func (s *session) doUsers(a []string) error {
	gid, err := oneGroup("users", a)
	if err != nil {
		return err
	}
	res, err := s.app.Bus.Dispatch(s.ctx, command.ShowImportForm{GroupID: gid})
	if err != nil {
		return err
	}
	if res.Missing {
		return fmt.Errorf("group %d not found", gid)
	}
	t := ui.Current()
	lines := []string{t.Title.Render(fmt.Sprintf("Import into #%d %s", gid, res.Group.Title)), ""}
	for _, u := range res.Users {
		lines = append(lines, fmt.Sprintf("%s %s", t.Accent.Render(fmt.Sprintf("%3d.", u.ID)), u.Name))
	}
	lines = append(lines, "", t.Muted.Render(fmt.Sprintf("Import with: %s import %d <user>", program, gid)))
	ui.Println(ui.Panel(lines...))
	return nil
}

func (s *session) doRoute(hash string) error {
	d := route.NewDispatcher[string](s.app.Query, s.render)
	ui.Println(d.Resolve(s.ctx, hash))
	return nil
}

func (s *session) doTheme(a []string) error {
	switch {
	case len(a) == 0:
		ui.Println(s.app.Themes.Name(s.ctx))
		return nil
	case len(a) > 1:
		return usage("usage: %s theme [toggle|light|dark|mono]", program)
	case a[0] == "toggle":
		res, err := s.app.Bus.Dispatch(s.ctx, command.ToggleTheme{})
		if err != nil {
			return err
		}
		ui.OK("theme: " + res.Theme)
		return nil
	}
	if _, ok := ui.Lookup(a[0]); !ok {
		return usage("theme: unknown theme %q", a[0])
	}
	if err := s.app.Themes.Set(s.ctx, a[0]); err != nil {
		return err
	}
	ui.OK("theme: " + ui.Current().Name)
	return nil
}

func (s *session) doStats() error {
	t := ui.Current()
	c := s.app.Store.Load(s.ctx)
	var done, total int
	lines := []string{t.Title.Render("Stats"), ""}
	for _, g := range c.Groups {
		d, _ := g.Stats()
		done += d
		total += len(g.Todos)
		lines = append(lines, ui.GroupLine(g))
	}
	lines = append(lines, "",
		fmt.Sprintf("%s %d  %s %d  %s %d",
			t.Success.Render(t.SymDone), done,
			t.Pending.Render(t.SymPending), total-done,
			t.Accent.Render("Total"), total),
		ui.ProgressBar(done, total, 28),
	)
	samples, err := s.app.Metrics.Lines()
	if err != nil {
		return err
	}
	if len(samples) > 0 {
		lines = append(lines, "", t.Muted.Render("session counters"))
		for _, l := range samples {
			lines = append(lines, t.Muted.Render(l))
		}
	}
	ui.Println(ui.Panel(lines...))
	return nil
}

// -------------- argument helpers --------------

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseInterspersed lets flags appear before, between or after positionals.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, usage("%s: %v", fs.Name(), err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return pos, nil
		}
		pos = append(pos, args[0])
		args = args[1:]
	}
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func flagsSet(fs *flag.FlagSet) bool {
	n := 0
	fs.Visit(func(*flag.Flag) { n++ })
	return n > 0
}

func orDefault(fs *flag.FlagSet, name, value, current string) string {
	if isSet(fs, name) {
		return value
	}
	return current
}

func parseID(cmd, s string) (model.ID, error) {
	id, err := model.ParseID(s)
	if err != nil {
		return 0, usage("%s: not a number: %s", cmd, s)
	}
	return id, nil
}

func oneGroup(cmd string, a []string) (model.ID, error) {
	if len(a) != 1 {
		return 0, usage("usage: %s %s <group>", program, cmd)
	}
	return parseID(cmd, a[0])
}

func groupAndTodo(cmd string, a []string) (model.ID, model.ID, error) {
	if len(a) != 2 {
		return 0, 0, usage("usage: %s %s <group> <todo>", program, cmd)
	}
	gid, err := parseID(cmd, a[0])
	if err != nil {
		return 0, 0, err
	}
	tid, err := parseID(cmd, a[1])
	if err != nil {
		return 0, 0, err
	}
	return gid, tid, nil
}

func notFoundHint(err error, gid model.ID) error {
	return fmt.Errorf("%w (run `%s ls %d` to see valid ids)", err, program, gid)
}

// -------------- rendering helpers --------------

func groupLines(todos []*model.Todo) []string {
	t := ui.Current()
	var pend, done []*model.Todo
	for _, td := range todos {
		if td.Done {
			done = append(done, td)
		} else {
			pend = append(pend, td)
		}
	}
	section := func(title string, items []*model.Todo) []string {
		lines := []string{t.Accent.Render(title)}
		if len(items) == 0 {
			return append(lines, t.Muted.Render("(none)"))
		}
		for _, td := range items {
			lines = append(lines, ui.TodoLine(td))
		}
		return lines
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
