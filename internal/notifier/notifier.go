// Package notifier surfaces action outcomes to the user: on the console,
// through the desktop tray app, or both.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// Notifier delivers one message. Callers treat delivery failures as
// non-fatal.
type Notifier interface {
	Notify(ctx context.Context, level Level, text string) error
}

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(context.Context, Level, string) error { return nil }

var (
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// Console writes messages to w, one per line.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(_ context.Context, level Level, text string) error {
	prefix := infoStyle.Render("✓")
	if level == LevelError {
		prefix = errorStyle.Render("✗")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.w, "%s %s\n", prefix, text)
	return err
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, level Level, text string) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, level, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Filter forwards only messages at Level to Next.
type Filter struct {
	Level Level
	Next  Notifier
}

func (f Filter) Notify(ctx context.Context, level Level, text string) error {
	if level != f.Level || f.Next == nil {
		return nil
	}
	return f.Next.Notify(ctx, level, text)
}
