package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/normalize"
	"github.com/sandeepkv93/twodo/internal/storage"
)

const persistTimeout = 5 * time.Second

type LoadResult struct {
	Loaded  int
	Skipped int
}

// Load replaces the in-memory state with what the repository holds. Every
// record goes through the normalizer; records that fail are skipped. A
// missing or unreadable blob leaves the store empty. Neither case is returned
// as an error; see LastPersistenceError.
func (s *Store) Load(ctx context.Context) LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = nil
	s.selectedID = ""
	s.categories = model.DefaultCategories(s.preset)
	if s.repo == nil {
		return LoadResult{}
	}

	var res LoadResult
	if items, ok := s.readLocked(ctx, TodosKey, func(data []byte) (any, error) {
		return normalize.DecodeRawList(data)
	}); ok {
		seen := make(map[string]bool)
		for i, item := range items.([]json.RawMessage) {
			task, err := s.normalizer.NormalizeJSON(item)
			if err != nil {
				res.Skipped++
				s.logger.Warn("skipping stored task", "index", i, "error", err)
				continue
			}
			if task.ID == "" || seen[task.ID] {
				task.ID = s.newID()
			}
			seen[task.ID] = true
			s.tasks = append(s.tasks, task)
			res.Loaded++
		}
	}

	if custom, ok := s.readLocked(ctx, CategoriesKey, func(data []byte) (any, error) {
		var out []model.Category
		err := json.Unmarshal(data, &out)
		return out, err
	}); ok {
		for _, c := range custom.([]model.Category) {
			c.Builtin = false
			if c.Validate() != nil || s.categoryIndexLocked(c.Key) >= 0 {
				s.logger.Warn("skipping stored category", "key", c.Key)
				continue
			}
			s.categories = append(s.categories, c)
		}
	}

	s.logger.Info("tasks loaded", "loaded", res.Loaded, "skipped", res.Skipped)
	return res
}

func (s *Store) readLocked(ctx context.Context, key string, decode func([]byte) (any, error)) (any, bool) {
	blob, err := s.repo.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.recordPersistErr(&model.PersistenceError{Op: "load", Key: key, Err: err})
		return nil, false
	}
	out, err := decode(blob.Value)
	if err != nil {
		s.recordPersistErr(&model.PersistenceError{Op: "decode", Key: key, Err: err})
		return nil, false
	}
	return out, true
}

// LastPersistenceError reports the most recent load or save failure. It is
// cleared by the next successful save.
func (s *Store) LastPersistenceError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPersistErr
}

func (s *Store) persistTasksLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	_ = s.saveLocked(ctx, TodosKey, s.tasks)
}

func (s *Store) persistCategoriesLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	_ = s.saveLocked(ctx, CategoriesKey, s.customCategoriesLocked())
}

func (s *Store) saveLocked(ctx context.Context, key string, v any) error {
	if s.repo == nil {
		return nil
	}
	if tasks, ok := v.([]model.Task); ok && tasks == nil {
		v = []model.Task{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		perr := &model.PersistenceError{Op: "encode", Key: key, Err: err}
		s.recordPersistErr(perr)
		return perr
	}
	if err := s.repo.Put(ctx, storage.Blob{Key: key, Value: data, UpdatedAt: s.now()}); err != nil {
		perr := &model.PersistenceError{Op: "save", Key: key, Err: err}
		s.recordPersistErr(perr)
		return perr
	}
	s.lastPersistErr = nil
	return nil
}

func (s *Store) recordPersistErr(err error) {
	s.lastPersistErr = err
	s.logger.Error("persistence failure", "error", err)
}
