package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/todogroups/internal/ui"
)

type env struct {
	dir string
}

// newEnv isolates config lookup and points the file driver at a temp dir.
func newEnv(t *testing.T) env {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	chdir(t, t.TempDir())
	prev := ui.Current().Name
	t.Cleanup(func() { ui.SetTheme(prev) })
	return env{dir: t.TempDir()}
}

func (e env) run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{"-no-color", "-theme", ui.Mono, "-dir", e.dir}, args...)
	code := Run(context.Background(), full, Options{Stdout: &out, Stderr: &errOut})
	return code, out.String(), errOut.String()
}

func (e env) document(t *testing.T) []map[string]any {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(e.dir, "todos.json"))
	require.NoError(t, err)
	var groups []map[string]any
	require.NoError(t, json.Unmarshal(b, &groups))
	return groups
}

func TestNoArgsPrintsHelp(t *testing.T) {
	e := newEnv(t)
	code, _, stderr := e.run(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Subcommands:")

	code, stdout, _ := e.run(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "add-group")
}

func TestUnknownSubcommand(t *testing.T) {
	e := newEnv(t)
	code, _, stderr := e.run(t, "frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown subcommand: frobnicate")
}

func TestGroupsShowsSeed(t *testing.T) {
	e := newEnv(t)
	code, stdout, _ := e.run(t, "groups")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Todolist 1")
	assert.NoFileExists(t, filepath.Join(e.dir, "todos.json"), "reading alone does not persist the seed")
}

func TestAddGroupAndTodo(t *testing.T) {
	e := newEnv(t)
	code, stdout, _ := e.run(t, "add-group", "Week", "end", "-desc", "chores")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "added group #2")

	code, stdout, _ = e.run(t, "add", "2", "-desc", "2 liters", "Buy", "milk")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "added todo #1 to group #2")

	groups := e.document(t)
	require.Len(t, groups, 2)
	assert.Equal(t, "Week end", groups[1]["title"])
	todos := groups[1]["todos"].([]any)
	require.Len(t, todos, 1)
	assert.Equal(t, "Buy milk", todos[0].(map[string]any)["title"])
}

func TestAddRequiresDescription(t *testing.T) {
	e := newEnv(t)
	code, _, stderr := e.run(t, "add-group", "Week")
	assert.Equal(t, 2, code)
	assert.NotEmpty(t, stderr)
	assert.NoFileExists(t, filepath.Join(e.dir, "todos.json"))
}

func TestToggleRemoveAndMissing(t *testing.T) {
	e := newEnv(t)
	code, stdout, _ := e.run(t, "done", "1", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Todo 1 content 1: Done")

	code, _, stderr := e.run(t, "done", "1", "9")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "todo 9 not found in group 1")

	code, _, _ = e.run(t, "rm", "1", "2")
	require.Equal(t, 0, code)
	todos := e.document(t)[0]["todos"].([]any)
	assert.Len(t, todos, 1)

	code, _, stderr = e.run(t, "done", "1", "x")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "not a number")
}

func TestClearAndRemoveGroups(t *testing.T) {
	e := newEnv(t)
	require.Equal(t, 0, first(e.run(t, "clear", "1")))
	assert.Empty(t, e.document(t)[0]["todos"])

	require.Equal(t, 0, first(e.run(t, "rm-group", "1")))
	assert.Empty(t, e.document(t))

	code, _, _ := e.run(t, "rm-group", "1")
	assert.Equal(t, 1, code)

	require.Equal(t, 0, first(e.run(t, "add-group", "A", "-desc", "a")))
	require.Equal(t, 0, first(e.run(t, "clear-all")))
	assert.Empty(t, e.document(t))
}

func TestEditGroupShowsFormThenSaves(t *testing.T) {
	e := newEnv(t)
	code, stdout, _ := e.run(t, "edit-group", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Edit group #1")

	code, stdout, _ = e.run(t, "edit-group", "1", "-title", "Renamed")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "saved")
	g := e.document(t)[0]
	assert.Equal(t, "Renamed", g["title"])
	assert.Contains(t, g["description"], "Lorem ipsum", "unset flags keep the current value")
}

func TestEditFormForMissingTargetFails(t *testing.T) {
	e := newEnv(t)
	code, stdout, _ := e.run(t, "edit-group", "99")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "PAGE NOT FOUND")

	code, stdout, _ = e.run(t, "edit", "1", "9")
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "PAGE NOT FOUND")
}

func TestEditTodoDoneFlag(t *testing.T) {
	e := newEnv(t)
	code, _, _ := e.run(t, "edit", "1", "2", "-done", "false", "-desc", "later")
	require.Equal(t, 0, code)
	td := e.document(t)[0]["todos"].([]any)[1].(map[string]any)
	assert.Equal(t, false, td["done"])
	assert.Equal(t, "later", td["description"])
	assert.Equal(t, "Todo 1 content 2", td["title"])

	code, _, _ = e.run(t, "edit", "1", "2", "-done", "maybe")
	assert.Equal(t, 2, code)
}

func TestFilterAndList(t *testing.T) {
	e := newEnv(t)
	code, stdout, _ := e.run(t, "filter", "1", "true")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Todo 1 content 2")
	assert.NotContains(t, stdout, "Todo 1 content 1")

	assert.Contains(t, stdout, "1/2", "the header counts the whole group")

	code, stdout, _ = e.run(t, "ls", "1", "-filter", "false")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Todo 1 content 1")
	assert.NotContains(t, stdout, "Todo 1 content 2")

	code, stdout, _ = e.run(t, "-group", "ls", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Pending")
	assert.Contains(t, stdout, "Done")

	code, _, _ = e.run(t, "filter", "1", "sometimes")
	assert.Equal(t, 2, code)
}

func TestRoute(t *testing.T) {
	e := newEnv(t)
	_, stdout, _ := e.run(t, "route", "#/todos/1/2/edit")
	assert.Contains(t, stdout, "Edit todo #2 in Todolist 1")

	_, stdout, _ = e.run(t, "route", "#/todos/7")
	assert.Contains(t, stdout, "PAGE NOT FOUND")
}

func placeholderAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{{"id": 1, "name": "Leanne Graham"}})
	})
	mux.HandleFunc("/users/1/todos", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"userId": 1, "id": 1, "title": "delectus aut autem", "completed": false},
			{"userId": 1, "id": 2, "title": "quis ut nam", "completed": true},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestImportAndUsers(t *testing.T) {
	e := newEnv(t)
	srv := placeholderAPI(t)

	code, stdout, _ := e.run(t, "-base-url", srv.URL, "users", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Leanne Graham")

	code, stdout, _ = e.run(t, "-base-url", srv.URL, "import", "1")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "imported 2 todos from user 1 into group #1")
	todos := e.document(t)[0]["todos"].([]any)
	require.Len(t, todos, 4)
	assert.EqualValues(t, 3, todos[2].(map[string]any)["id"])
	assert.EqualValues(t, 4, todos[3].(map[string]any)["id"])
}

func TestImportRemoteDown(t *testing.T) {
	e := newEnv(t)
	srv := placeholderAPI(t)
	srv.Close()

	code, _, stderr := e.run(t, "-base-url", srv.URL, "-timeout", "1s", "import", "1")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Something went wrong. Try again later.")
}

func TestThemeCommands(t *testing.T) {
	e := newEnv(t)
	_, stdout, _ := e.run(t, "theme")
	assert.Contains(t, stdout, ui.Mono)

	code, stdout, _ := e.run(t, "theme", "light")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "theme: light")

	code, stdout, _ = e.run(t, "theme", "toggle")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "theme: dark")

	code, _, _ = e.run(t, "theme", "sepia")
	assert.Equal(t, 2, code)
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	code, stdout, _ := e.run(t, "stats")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Todolist 1")
	assert.Contains(t, stdout, "1/2")
}

func first(code int, _, _ string) int { return code }

// chdir switches the working directory for the duration of the test and
// restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
