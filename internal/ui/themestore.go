package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/todogroups/internal/storage"
)

// ThemeKey is the storage key holding the chosen theme.
const ThemeKey = "theme"

// ThemeStore remembers the theme between sessions.
type ThemeStore struct {
	backend    storage.Backend
	override   string
	systemDark func() bool
}

// NewThemeStore reads and writes the theme in b. A non-empty override wins
// over the stored value until the first Toggle or Set.
func NewThemeStore(b storage.Backend, override string) *ThemeStore {
	return &ThemeStore{backend: b, override: override, systemDark: lipgloss.HasDarkBackground}
}

// Name resolves the theme: override, then stored value, then the terminal background.
func (s *ThemeStore) Name(ctx context.Context) string {
	if t, ok := Lookup(s.override); ok {
		return t.Name
	}
	if v, err := s.backend.Get(ctx, ThemeKey); err == nil {
		if t, ok := Lookup(v); ok {
			return t.Name
		}
	}
	if s.systemDark() {
		return Dark
	}
	return Light
}

// Apply makes the resolved theme current.
func (s *ThemeStore) Apply(ctx context.Context) Theme {
	return SetTheme(s.Name(ctx))
}

// Set persists name and makes it current.
func (s *ThemeStore) Set(ctx context.Context, name string) error {
	t, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	s.override = ""
	SetTheme(t.Name)
	if err := s.backend.Set(ctx, ThemeKey, t.Name); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	return nil
}

// Toggle flips dark to light and anything else to dark.
func (s *ThemeStore) Toggle(ctx context.Context) (string, error) {
	next := Dark
	if s.Name(ctx) == Dark {
		next = Light
	}
	return next, s.Set(ctx, next)
}

// Stored reports the persisted theme, if any.
func (s *ThemeStore) Stored(ctx context.Context) (string, bool, error) {
	v, err := s.backend.Get(ctx, ThemeKey)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}
