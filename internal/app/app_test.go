package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/todogroups/internal/command"
	"github.com/Makepad-fr/todogroups/internal/config"
	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/storage"
	"github.com/Makepad-fr/todogroups/internal/storage/filestore"
	"github.com/Makepad-fr/todogroups/internal/storage/sqlitestore"
)

func testConfig(driver string) *config.Config {
	return &config.Config{
		IDs:     string(model.IDNext),
		Storage: config.Storage{Driver: driver, Key: "todos"},
		Remote:  config.Remote{BaseURL: "http://127.0.0.1:0", Timeout: "1s"},
		Log:     config.Log{Level: "debug"},
	}
}

func TestNewWiresEveryCommand(t *testing.T) {
	var logs bytes.Buffer
	a, err := New(context.Background(), testConfig(storage.DriverMemory), &logs)
	require.NoError(t, err)
	defer a.Close()

	for _, name := range command.Names {
		assert.True(t, a.Bus.Registered(name), name)
	}
	assert.Equal(t, "http://127.0.0.1:0", a.Remote.BaseURL())
	assert.Contains(t, logs.String(), "storage opened")
}

func TestSessionPersistsThroughFileBackend(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(storage.DriverFile)
	cfg.Storage.Dir = t.TempDir()

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	_, err = a.Bus.Dispatch(ctx, command.AddGroup{Title: "Work", Description: "office"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer b.Close()
	groups := b.Store.Load(ctx).Groups
	require.Len(t, groups, 2)
	assert.Equal(t, "Work", groups[1].Title)
	assert.FileExists(t, filepath.Join(cfg.Storage.Dir, "todos.json"))
}

func TestOpenBackendDrivers(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	b, err := OpenBackend(ctx, config.Storage{Driver: storage.DriverFile, Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &filestore.Store{}, b)

	b, err = OpenBackend(ctx, config.Storage{Driver: storage.DriverSQLite, Path: filepath.Join(dir, "t.db")})
	require.NoError(t, err)
	assert.IsType(t, &sqlitestore.Store{}, b)
	require.NoError(t, b.Close())

	_, err = OpenBackend(ctx, config.Storage{Driver: "floppy"})
	assert.Error(t, err)
}

func TestNewRejectsBadLogLevel(t *testing.T) {
	cfg := testConfig(storage.DriverMemory)
	cfg.Log.Level = "loud"
	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}
