// Package store holds the in-memory task collection. Every task enters through
// the normalizer, and every mutation is written back to the blob repository.
package store

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/normalize"
	"github.com/sandeepkv93/twodo/internal/storage"
)

const (
	TodosKey      = "todos"
	CategoriesKey = "customCategories"
)

type Store struct {
	mu         sync.RWMutex
	tasks      []model.Task
	selectedID string
	categories []model.Category

	normalizer *normalize.Normalizer
	repo       storage.Repository
	logger     *slog.Logger
	newID      func() string
	preset     model.CategoryPreset

	lastPersistErr error
}

type Option func(*Store)

// WithRepository enables persistence. Without one the store is memory only.
func WithRepository(repo storage.Repository) Option {
	return func(s *Store) { s.repo = repo }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithCategoryPreset(p model.CategoryPreset) Option {
	return func(s *Store) { s.preset = p }
}

func New(n *normalize.Normalizer, opts ...Option) *Store {
	if n == nil {
		n = normalize.New()
	}
	s := &Store{
		normalizer: n,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:      func() string { return uuid.NewString() },
		preset:     model.PresetColors,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.categories = model.DefaultCategories(s.preset)
	return s
}

func (s *Store) Normalizer() *normalize.Normalizer {
	return s.normalizer
}

func (s *Store) now() time.Time {
	return s.normalizer.Now()
}

// Create normalizes raw and appends it. The id is kept when the record
// carries an unused one; timestamps are always set to now.
func (s *Store) Create(raw normalize.Raw) (model.Task, error) {
	task, err := s.normalizer.Normalize(raw)
	if err != nil {
		return model.Task{}, err
	}
	now := s.now()
	task.CreatedAt = now
	task.UpdatedAt = now

	s.mu.Lock()
	defer s.mu.Unlock()
	if task.ID == "" || s.indexOf(task.ID) >= 0 {
		task.ID = s.newID()
	}
	s.tasks = append(s.tasks, task)
	s.persistTasksLocked()
	s.logger.Debug("task created", "task_id", task.ID)
	return task.Clone(), nil
}

// CreateTitle is Create for a bare title.
func (s *Store) CreateTitle(title string) (model.Task, error) {
	return s.Create(normalize.Raw{Title: title})
}

// Update merges patch into the task with id. The priority event, if any, is
// emitted after the commit and outside the lock.
func (s *Store) Update(id string, patch normalize.Patch) (model.Task, error) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, &model.NotFoundError{ID: id}
	}
	updated, change, err := s.normalizer.Merge(s.tasks[i], patch)
	if err != nil {
		s.mu.Unlock()
		return model.Task{}, err
	}
	committed := s.commitLocked(i, updated).Clone()
	s.mu.Unlock()

	if change != nil {
		s.normalizer.Emit(*change)
	}
	return committed, nil
}

// PrepareUpdate runs the merge and its guards without committing, so a remote
// caller can validate before sending. The returned change has not been
// emitted.
func (s *Store) PrepareUpdate(id string, patch normalize.Patch) (model.Task, *normalize.PriorityChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, nil, &model.NotFoundError{ID: id}
	}
	return s.normalizer.Merge(s.tasks[i], patch)
}

// Delete removes every known id and ignores the rest. It returns how many
// tasks were removed.
func (s *Store) Delete(ids ...string) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	removed := 0
	for _, task := range s.tasks {
		if drop[task.ID] {
			removed++
			continue
		}
		kept = append(kept, task)
	}
	s.tasks = kept
	if drop[s.selectedID] {
		s.selectedID = ""
	}
	if removed > 0 {
		s.persistTasksLocked()
	}
	return removed
}

func (s *Store) ToggleComplete(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, &model.NotFoundError{ID: id}
	}
	status := model.StatusCompleted
	if s.tasks[i].Completed() {
		status = model.StatusTodo
	}
	updated, err := s.normalizer.ApplyUpdate(s.tasks[i], normalize.Patch{Status: &status})
	if err != nil {
		return model.Task{}, err
	}
	return s.commitLocked(i, updated).Clone(), nil
}

func (s *Store) ToggleImportant(id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, &model.NotFoundError{ID: id}
	}
	important := !s.tasks[i].Metadata.IsImportant
	updated, err := s.normalizer.ApplyUpdate(s.tasks[i], normalize.Patch{
		Metadata: &normalize.MetadataPatch{IsImportant: &important},
	})
	if err != nil {
		return model.Task{}, err
	}
	return s.commitLocked(i, updated).Clone(), nil
}

// Put installs a task confirmed by the server, replacing any task with the
// same id.
func (s *Store) Put(task model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(task.ID); i >= 0 {
		s.tasks[i] = task.Clone()
	} else {
		s.tasks = append(s.tasks, task.Clone())
	}
	s.persistTasksLocked()
}

// Replace swaps the whole collection, e.g. after a full pull from the server.
// The selection survives only if its task is still present.
func (s *Store) Replace(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		s.tasks = append(s.tasks, task.Clone())
	}
	if s.indexOf(s.selectedID) < 0 {
		s.selectedID = ""
	}
	s.persistTasksLocked()
}

func (s *Store) Get(id string) (model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, &model.NotFoundError{ID: id}
	}
	return s.tasks[i].Clone(), nil
}

func (s *Store) All() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task.Clone())
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return &model.NotFoundError{ID: id}
	}
	s.selectedID = id
	return nil
}

func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selectedID = ""
	s.mu.Unlock()
}

// Selected always reflects the latest committed version of the selected task.
func (s *Store) Selected() (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(s.selectedID)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

func (s *Store) commitLocked(i int, updated model.Task) model.Task {
	updated.UpdatedAt = s.now()
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		updated.UpdatedAt = updated.CreatedAt
	}
	s.tasks[i] = updated
	s.persistTasksLocked()
	return updated
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Sync writes the current state. Mutations already persist; this is for
// callers that want the error.
func (s *Store) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.saveLocked(ctx, TodosKey, s.tasks); err != nil {
		return err
	}
	return s.saveLocked(ctx, CategoriesKey, s.customCategoriesLocked())
}
