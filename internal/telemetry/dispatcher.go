// Package telemetry reports priority corrections to the server. Delivery is
// best effort: a full buffer drops the event and a failed request is logged.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/twodo/internal/client"
	"github.com/sandeepkv93/twodo/internal/normalize"
)

const defaultTimeout = 10 * time.Second

// Sender is the part of the API client the dispatcher needs.
type Sender interface {
	PriorityFeedback(ctx context.Context, taskID string, req client.PriorityFeedbackRequest) error
}

type Stats struct {
	Sent    uint64
	Failed  uint64
	Dropped uint64
}

type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.RWMutex
	ch      chan normalize.PriorityChange
	done    chan struct{}
	started bool
	stopped bool

	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

type Option func(*Dispatcher)

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithTimeout bounds each feedback request.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = t }
}

func NewDispatcher(sender Sender, bufferSize int, opts ...Option) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	d := &Dispatcher{
		sender:  sender,
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		ch:      make(chan normalize.PriorityChange, bufferSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true
	go d.loop()
}

// Stop delivers what is already buffered and waits for the worker.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.ch)
	started := d.started
	d.mu.Unlock()
	if started {
		<-d.done
	}
}

// EmitPriorityChange queues c without blocking.
func (d *Dispatcher) EmitPriorityChange(c normalize.PriorityChange) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.dropped.Add(1)
		return
	}
	select {
	case d.ch <- c:
	default:
		d.dropped.Add(1)
		d.logger.Warn("priority feedback dropped", "task_id", c.TaskID)
	}
}

func (d *Dispatcher) Stats() Stats {
	return Stats{
		Sent:    d.sent.Load(),
		Failed:  d.failed.Load(),
		Dropped: d.dropped.Load(),
	}
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for c := range d.ch {
		d.send(c)
	}
}

func (d *Dispatcher) send(c normalize.PriorityChange) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	err := d.sender.PriorityFeedback(ctx, c.TaskID, client.PriorityFeedbackRequest{
		NewPriority:      c.New,
		OriginalPriority: c.Old,
		UserInput:        c.Title,
	})
	if err != nil {
		d.failed.Add(1)
		d.logger.Warn("priority feedback failed", "task_id", c.TaskID, "error", err)
		return
	}
	d.sent.Add(1)
}
