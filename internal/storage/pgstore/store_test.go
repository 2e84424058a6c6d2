package pgstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Makepad-fr/todogroups/internal/storage"
)

// stubDriver answers the handful of statements the store issues, backed by a map.
type stubDriver struct {
	mu     sync.Mutex
	rows   map[string]string
	ddl    []string
	failOn string
}

var stubSeq atomic.Int64

func newStubDB(t *testing.T) (*sql.DB, *stubDriver) {
	t.Helper()
	d := &stubDriver{rows: make(map[string]string)}
	name := fmt.Sprintf("pgstub-%d", stubSeq.Add(1))
	sql.Register(name, d)
	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("open stub: %v", err)
	}
	return db, d
}

func (d *stubDriver) Open(string) (driver.Conn, error) { return &stubConn{d: d}, nil }

type stubConn struct{ d *stubDriver }

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return &stubStmt{d: c.d, query: query}, nil
}
func (c *stubConn) Close() error              { return nil }
func (c *stubConn) Begin() (driver.Tx, error) { return nil, errors.New("tx unsupported") }

type stubStmt struct {
	d     *stubDriver
	query string
}

func (s *stubStmt) Close() error  { return nil }
func (s *stubStmt) NumInput() int { return -1 }

func (s *stubStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if s.d.failOn != "" && strings.Contains(s.query, s.d.failOn) {
		return nil, errors.New("stub failure")
	}
	switch {
	case strings.Contains(s.query, "CREATE TABLE"):
		s.d.ddl = append(s.d.ddl, s.query)
	case strings.HasPrefix(s.query, "INSERT INTO storage"):
		s.d.rows[args[0].(string)] = args[1].(string)
	case strings.HasPrefix(s.query, "DELETE FROM storage"):
		delete(s.d.rows, args[0].(string))
	default:
		return nil, fmt.Errorf("unexpected exec %q", s.query)
	}
	return driver.RowsAffected(1), nil
}

func (s *stubStmt) Query(args []driver.Value) (driver.Rows, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if !strings.HasPrefix(s.query, "SELECT value FROM storage") {
		return nil, fmt.Errorf("unexpected query %q", s.query)
	}
	var vals []string
	if v, ok := s.d.rows[args[0].(string)]; ok {
		vals = append(vals, v)
	}
	return &stubRows{vals: vals}, nil
}

type stubRows struct {
	vals []string
	i    int
}

func (r *stubRows) Columns() []string { return []string{"value"} }
func (r *stubRows) Close() error      { return nil }
func (r *stubRows) Next(dest []driver.Value) error {
	if r.i >= len(r.vals) {
		return io.EOF
	}
	dest[0] = r.vals[r.i]
	r.i++
	return nil
}

func TestNewEnsuresTableAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	db, stub := newStubDB(t)
	var gotDSN string
	restore := OverrideSQLOpen(func(_, dsn string) (*sql.DB, error) {
		gotDSN = dsn
		return db, nil
	})
	defer restore()

	s, err := New(ctx, "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if gotDSN != DefaultDSN {
		t.Errorf("dsn: got %q, want default", gotDSN)
	}
	if len(stub.ddl) != 1 {
		t.Fatalf("expected storage DDL, got %v", stub.ddl)
	}

	if _, err := s.Get(ctx, "todos"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get missing: got %v", err)
	}
	if err := s.Set(ctx, "todos", "[]"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, err := s.Get(ctx, "todos"); err != nil || v != "[]" {
		t.Fatalf("Get: got %q, %v", v, err)
	}
	if err := s.Remove(ctx, "todos"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := stub.rows["todos"]; ok {
		t.Errorf("row still present after Remove")
	}
}

func TestNewFailsWhenDDLFails(t *testing.T) {
	db, stub := newStubDB(t)
	stub.failOn = "CREATE TABLE"
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	if _, err := New(context.Background(), "postgres://x"); err == nil {
		t.Fatalf("expected error from failing DDL")
	}
}

func TestNewWrapsOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("boom") })
	defer restore()

	_, err := New(context.Background(), "postgres://x")
	if err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("got %v, want wrapped open error", err)
	}
}
