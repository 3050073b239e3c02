// Package notify is the toast channel of the dashboard: order actions report
// their outcome here and never wait for anyone to read it.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Navigator moves the user to another screen after an action.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// Log writes every notification to a slog logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(ctx context.Context, n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if n.Variant == VariantDestructive {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "notification", "title", n.Title, "description", n.Description, "variant", string(n.Variant))
}

// Collector buffers notifications and the last navigation so a request
// handler can return them with its response.
type Collector struct {
	mu            sync.Mutex
	notifications []Notification
	redirect      string
}

func (c *Collector) Notify(_ context.Context, n Notification) {
	if n.Variant == "" {
		n.Variant = VariantDefault
	}
	c.mu.Lock()
	c.notifications = append(c.notifications, n)
	c.mu.Unlock()
}

func (c *Collector) Navigate(_ context.Context, path string) {
	c.mu.Lock()
	c.redirect = path
	c.mu.Unlock()
}

// Notifications returns a copy of what was collected so far.
func (c *Collector) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.notifications))
	copy(out, c.notifications)
	return out
}

func (c *Collector) Redirect() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.redirect
}

// Multi fans a notification out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(ctx, n)
		}
	}
}

// Discard drops every notification and navigation.
type Discard struct{}

func (Discard) Notify(context.Context, Notification) {}
func (Discard) Navigate(context.Context, string)     {}
