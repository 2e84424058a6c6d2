package store

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/todogroups/internal/metrics"
	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/storage"
)

// flakyBackend fails the first getFailures reads.
type flakyBackend struct {
	storage.Backend
	getFailures int
}

func (f *flakyBackend) Get(ctx context.Context, key string) (string, error) {
	if f.getFailures > 0 {
		f.getFailures--
		return "", errors.New("connection reset")
	}
	return f.Backend.Get(ctx, key)
}

type failingBackend struct {
	storage.Backend
	getErr, setErr error
}

func (f failingBackend) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.Backend.Get(ctx, key)
}

func (f failingBackend) Set(ctx context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Backend.Set(ctx, key, value)
}

func sample() *model.Collection {
	return &model.Collection{Groups: []*model.Group{
		{ID: 1, Title: "Home", Description: "chores", Todos: []*model.Todo{
			{ID: 1, GroupID: 1, Title: "dishes", Description: "now", Done: true},
		}},
		{ID: 2, Title: "Work", Description: "tasks", Todos: []*model.Todo{}},
	}}
}

func TestLoadWithoutDocumentReturnsSeed(t *testing.T) {
	s := New(storage.NewMemory())
	c := s.Load(context.Background())

	require.Len(t, c.Groups, 1)
	assert.Equal(t, model.ID(1), c.Groups[0].ID)
	require.Len(t, c.Groups[0].Todos, 2)
	assert.Equal(t, model.ID(1), c.Groups[0].Todos[0].ID)
	assert.Equal(t, model.ID(2), c.Groups[0].Todos[1].ID)
}

func TestLoadIsIdentityStable(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory())
	assert.Same(t, s.Load(ctx), s.Load(ctx))
}

func TestSaveThenLoadInSameSession(t *testing.T) {
	ctx := context.Background()
	s := New(storage.NewMemory())
	c := sample()
	require.NoError(t, s.Save(ctx, c))
	assert.Equal(t, c, s.Load(ctx))
}

func TestSavedDocumentSurvivesNewSession(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, New(backend).Save(ctx, sample()))

	got := New(backend).Load(ctx)
	assert.Equal(t, sample(), got)
}

func TestSaveNilPersistsMutatedReferences(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	s := New(backend)
	c := s.Load(ctx)
	c.Groups[0].Todos[0].Done = true

	require.NoError(t, s.Save(ctx, nil))

	reloaded := New(backend).Load(ctx)
	assert.True(t, reloaded.Groups[0].Todos[0].Done)
}

func TestCorruptDocumentIsDiscarded(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, DefaultKey, "not json"))

	var logs bytes.Buffer
	rec := metrics.New()
	s := New(backend, WithLogger(log.New(&logs)), WithMetrics(rec))
	c := s.Load(ctx)

	assert.Equal(t, model.Seed(), c)
	_, err := backend.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound, "corrupt value must be removed")
	assert.Equal(t, 1, s.Reseeds())
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Reseeds))
	assert.Contains(t, logs.String(), "discarding corrupt persisted groups")
}

func TestShapeMismatchIsTreatedAsCorrupt(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, DefaultKey, `{"groups": []}`))

	s := New(backend)
	assert.Equal(t, model.Seed(), s.Load(ctx))
	assert.Equal(t, 1, s.Reseeds())
}

func TestBackendReadErrorFallsBackWithoutRemoving(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, mem.Set(ctx, DefaultKey, "[]"))
	s := New(failingBackend{Backend: mem, getErr: errors.New("io")})

	assert.Equal(t, model.Seed(), s.Load(ctx))
	assert.Equal(t, 0, s.Reseeds())
	v, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestSaveErrorStillReplacesCache(t *testing.T) {
	ctx := context.Background()
	rec := metrics.New()
	s := New(failingBackend{Backend: storage.NewMemory(), setErr: errors.New("disk full")}, WithMetrics(rec))
	c := sample()

	err := s.Save(ctx, c)
	require.Error(t, err)
	assert.Same(t, c, s.Load(ctx))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Saves.WithLabelValues(metrics.ResultError)))
}

func TestCustomKeyAndSeed(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	s := New(backend, WithKey("alt"), WithSeed(func() *model.Collection { return &model.Collection{} }))
	assert.Empty(t, s.Load(ctx).Groups)

	require.NoError(t, s.Save(ctx, nil))
	v, err := backend.Get(ctx, "alt")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestDecodeReportsPaths(t *testing.T) {
	_, err := Decode(`[{"id": "one", "title": "x", "todos": []}]`)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "0/id", ve.Path)
}

func TestReadErrorNeverOverwritesDocument(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, New(mem).Save(ctx, sample()))
	before, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)

	s := New(&flakyBackend{Backend: mem, getFailures: 1})
	c := s.Load(ctx)
	assert.Equal(t, model.Seed(), c)
	kept := &model.Collection{Groups: append(c.Groups, &model.Group{ID: 9, Title: "new", Description: "d"})}

	err = s.Save(ctx, kept)
	require.ErrorIs(t, err, ErrUnavailable)
	after, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	// The next Load reaches the backend and recovers the real document.
	assert.Equal(t, sample(), s.Load(ctx))
	require.NoError(t, s.Save(ctx, nil))
	assert.Same(t, s.Load(ctx), s.Load(ctx))
}

func TestSaveNilRetriesReadBeforeWriting(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, New(mem).Save(ctx, sample()))

	s := New(&flakyBackend{Backend: mem, getFailures: 1})
	s.Load(ctx).Groups[0].Title = "edited seed"
	require.NoError(t, s.Save(ctx, nil))

	assert.Equal(t, sample(), New(mem).Load(ctx))
}

func TestPersistentReadErrorKeepsRefusing(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	rec := metrics.New()
	s := New(failingBackend{Backend: mem, getErr: errors.New("permission denied")}, WithMetrics(rec))

	assert.ErrorIs(t, s.Save(ctx, nil), ErrUnavailable)
	_, err := mem.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.Saves.WithLabelValues(metrics.ResultError)))
}

func TestGroupWithoutTodosSurvivesNewSession(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, New(backend).Save(ctx, &model.Collection{Groups: []*model.Group{{ID: 1, Title: "Work"}}}))

	s := New(backend)
	c := s.Load(ctx)
	assert.Equal(t, 0, s.Reseeds())
	require.Len(t, c.Groups, 1)
	assert.Equal(t, "Work", c.Groups[0].Title)
	assert.NotNil(t, c.Groups[0].Todos)
}

func TestDocumentWithoutTodosKeyIsAccepted(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, DefaultKey, `[{"id":4,"title":"x","description":"y"}]`))

	s := New(backend)
	c := s.Load(ctx)
	assert.Equal(t, 0, s.Reseeds())
	require.Len(t, c.Groups, 1)
	assert.Equal(t, []*model.Todo{}, c.Groups[0].Todos)
}
