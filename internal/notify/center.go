// Package notify keeps the newest-first notification list behind the bell.
package notify

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/twodo/internal/model"
)

const DefaultLimit = 100

type Center struct {
	mu    sync.RWMutex
	items []model.Notification
	limit int
	now   func() time.Time
	newID func() string
}

type Option func(*Center)

func WithClock(now func() time.Time) Option {
	return func(c *Center) { c.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(c *Center) { c.newID = fn }
}

// WithLimit caps how many notifications are kept; the oldest go first.
func WithLimit(n int) Option {
	return func(c *Center) { c.limit = n }
}

func New(opts ...Option) *Center {
	c := &Center{
		limit: DefaultLimit,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Push adds an unread notification at the top. data may be nil.
func (c *Center) Push(message string, data any) model.Notification {
	n := model.Notification{
		ID:        c.newID(),
		Message:   message,
		Timestamp: c.now(),
	}
	if data != nil {
		if raw, err := json.Marshal(data); err == nil {
			n.Data = raw
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]model.Notification{n}, c.items...)
	c.trimLocked()
	return n
}

// Replace installs a list fetched from the server, newest first.
func (c *Center) Replace(list []model.Notification) {
	items := append([]model.Notification(nil), list...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = items
	c.trimLocked()
}

// MarkRead reports whether id was found.
func (c *Center) MarkRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].IsRead = true
			return true
		}
	}
	return false
}

func (c *Center) MarkAllRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		c.items[i].IsRead = true
	}
}

func (c *Center) Clear() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
}

func (c *Center) List() []model.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Notification{}, c.items...)
}

func (c *Center) Unread() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, item := range c.items {
		if !item.IsRead {
			n++
		}
	}
	return n
}

func (c *Center) trimLocked() {
	if c.limit > 0 && len(c.items) > c.limit {
		c.items = c.items[:c.limit]
	}
}
