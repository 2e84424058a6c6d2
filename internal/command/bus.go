package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/todogroups/internal/logging"
	"github.com/Makepad-fr/todogroups/internal/metrics"
)

// Handler runs one command.
type Handler func(ctx context.Context, cmd Command) (Result, error)

// Handle adapts a typed handler. A payload of the wrong type is rejected
// with ErrInvalidInput.
func Handle[C Command](fn func(ctx context.Context, cmd C) (Result, error)) Handler {
	return func(ctx context.Context, cmd Command) (Result, error) {
		c, ok := cmd.(C)
		if !ok {
			return Result{}, fmt.Errorf("%w: %s got %T", ErrInvalidInput, cmd.Name(), cmd)
		}
		return fn(ctx, c)
	}
}

// Bus maps names to handlers. Register during setup and dispatch afterwards;
// the map itself is not locked.
type Bus struct {
	handlers map[Name]Handler
	log      *log.Logger
	metrics  *metrics.Recorder
}

func NewBus(logger *log.Logger, m *metrics.Recorder) *Bus {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Bus{handlers: map[Name]Handler{}, log: logger, metrics: m}
}

// Register binds h to name. A name can be bound once.
func (b *Bus) Register(name Name, h Handler) error {
	if h == nil {
		return fmt.Errorf("register %s: nil handler", name)
	}
	if _, dup := b.handlers[name]; dup {
		return fmt.Errorf("register %s: already registered", name)
	}
	b.handlers[name] = h
	return nil
}

// Registered reports whether name has a handler.
func (b *Bus) Registered(name Name) bool {
	_, ok := b.handlers[name]
	return ok
}

// Dispatch runs the handler registered for cmd.Name().
func (b *Bus) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	if cmd == nil {
		return Result{}, fmt.Errorf("%w: nil command", ErrUnknownCommand)
	}
	name := cmd.Name()
	h, ok := b.handlers[name]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		b.metrics.Command(string(name), err)
		return Result{}, err
	}
	res, err := h(ctx, cmd)
	b.metrics.Command(string(name), err)
	switch {
	case errors.Is(err, ErrInvalidInput):
		b.log.Debug("command rejected", "command", name, "err", err)
		return res, err
	case err != nil:
		b.log.Error("command failed", "command", name, "err", err)
		return res, err
	}
	if res.Missing {
		b.log.Debug("command target missing", "command", name)
	}
	return res, nil
}
