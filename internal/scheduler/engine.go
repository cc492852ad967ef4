package scheduler

import (
	"container/heap"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/twodo/internal/model"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

type ReminderEvent struct {
	ID        string
	TaskID    string
	Title     string
	TriggerAt time.Time
}

// Message is the notification text for ev.
func (ev ReminderEvent) Message() string {
	return "Reminder: " + ev.Title
}

type queueItem struct {
	event ReminderEvent
	gen   uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].event.TriggerAt.Before(pq[j].event.TriggerAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Engine fires reminder events at their trigger time. Each task has at most
// one live reminder: scheduling a task again supersedes its earlier event,
// which is discarded when it reaches the head of the queue.
type Engine struct {
	mu      sync.Mutex
	queue   priorityQueue
	live    map[string]uint64
	gen     uint64
	out     chan ReminderEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped atomic.Uint64
	now     func() time.Time
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:  make(priorityQueue, 0),
		live:   make(map[string]uint64),
		out:    make(chan ReminderEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		now:    time.Now,
	}
}

func (e *Engine) C() <-chan ReminderEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Schedule queues ev. An event with a TaskID replaces any earlier event for
// the same task.
func (e *Engine) Schedule(ev ReminderEvent) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	e.gen++
	if ev.TaskID != "" {
		e.live[ev.TaskID] = e.gen
	}
	heap.Push(&e.queue, queueItem{event: ev, gen: e.gen})
	e.signalWakeup()
	return nil
}

// ScheduleTask queues the task's reminder if it is still ahead. Otherwise any
// queued reminder for the task is cancelled. It reports whether a reminder is
// now pending.
func (e *Engine) ScheduleTask(task model.Task, loc *time.Location) (bool, error) {
	r, ok := model.ReminderFor(task, loc)
	if !ok || !r.TriggerTime.After(e.now()) {
		e.Cancel(task.ID)
		return false, nil
	}
	if err := r.Validate(); err != nil {
		return false, err
	}
	err := e.Schedule(ReminderEvent{
		ID:        fmt.Sprintf("%s@%d", r.TaskID, r.TriggerTime.UnixNano()),
		TaskID:    r.TaskID,
		Title:     r.Title,
		TriggerAt: r.TriggerTime.UTC(),
	})
	return err == nil, err
}

// SyncTasks cancels every pending reminder and schedules the given tasks'.
func (e *Engine) SyncTasks(tasks []model.Task, loc *time.Location) int {
	e.mu.Lock()
	e.live = make(map[string]uint64)
	e.mu.Unlock()

	pending := 0
	for _, task := range tasks {
		if ok, _ := e.ScheduleTask(task, loc); ok {
			pending++
		}
	}
	return pending
}

func (e *Engine) Cancel(taskID string) {
	e.mu.Lock()
	delete(e.live, taskID)
	e.mu.Unlock()
}

// Pending counts tasks with a live reminder.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.live)
}

func (e *Engine) Dropped() uint64 {
	return e.dropped.Load()
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := next.TriggerAt.Sub(e.now())
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(e.now().UTC())
			for _, ev := range due {
				select {
				case e.out <- ev:
				default:
					e.dropped.Add(1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (ReminderEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.discardSupersededLocked()
	if len(e.queue) == 0 {
		return ReminderEvent{}, false
	}
	return e.queue[0].event, true
}

func (e *Engine) popDue(now time.Time) []ReminderEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]ReminderEvent, 0)
	for {
		e.discardSupersededLocked()
		if len(e.queue) == 0 {
			break
		}
		next := e.queue[0].event
		if next.TriggerAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		if item.event.TaskID != "" {
			delete(e.live, item.event.TaskID)
		}
		out = append(out, item.event)
	}
	return out
}

func (e *Engine) discardSupersededLocked() {
	for len(e.queue) > 0 {
		head := e.queue[0]
		if head.event.TaskID == "" || e.live[head.event.TaskID] == head.gen {
			return
		}
		heap.Pop(&e.queue)
	}
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
