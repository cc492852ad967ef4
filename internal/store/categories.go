package store

import (
	"strings"

	"github.com/sandeepkv93/twodo/internal/model"
)

func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

func (s *Store) Category(key string) (model.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.categoryIndexLocked(key)
	if i < 0 {
		return model.Category{}, false
	}
	return s.categories[i], true
}

// SuggestCategories lists existing categories whose label is close to label.
func (s *Store) SuggestCategories(label string) []Suggestion {
	s.mu.RLock()
	candidates := make(map[string]string, len(s.categories))
	for _, c := range s.categories {
		candidates[c.Key] = c.Label
	}
	s.mu.RUnlock()
	return SimilarLabels(strings.TrimSpace(label), candidates)
}

// AddCategory creates a user-defined category with the next palette color.
func (s *Store) AddCategory(label string) (model.Category, error) {
	label = strings.TrimSpace(label)
	key := model.CategoryKey(label)
	if key == "" {
		return model.Category{}, model.NewValidationError("category", "category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categoryIndexLocked(key) >= 0 {
		return model.Category{}, model.NewValidationError("category", "category "+key+" already exists")
	}
	c := model.Category{Key: key, Label: label, Color: model.PaletteColor(len(s.customCategoriesLocked()))}
	s.categories = append(s.categories, c)
	s.persistCategoriesLocked()
	return c, nil
}

// RenameCategory changes a custom category's label and key, and rewrites every
// task that referenced the old key in the same critical section.
func (s *Store) RenameCategory(key, newLabel string) (model.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, newLabel, newKey, err := s.checkRenameLocked(key, newLabel)
	if err != nil {
		return model.Category{}, err
	}

	s.categories[i].Key = newKey
	s.categories[i].Label = newLabel
	if newKey != key {
		s.remapCategoryLocked(key, &newKey)
	}
	s.persistCategoriesLocked()
	return s.categories[i], nil
}

// PlanRenameCategory validates a rename without applying it. It returns the
// new key and copies of the affected tasks with the key already rewritten.
func (s *Store) PlanRenameCategory(key, newLabel string) (string, []model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, _, newKey, err := s.checkRenameLocked(key, newLabel)
	if err != nil {
		return "", nil, err
	}
	if newKey == key {
		return newKey, nil, nil
	}
	return newKey, s.remappedLocked(key, &newKey), nil
}

// DeleteCategory removes a custom category and strips it from every task.
func (s *Store) DeleteCategory(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, err := s.customCategoryLocked(key)
	if err != nil {
		return err
	}
	s.categories = append(s.categories[:i], s.categories[i+1:]...)
	s.remapCategoryLocked(key, nil)
	s.persistCategoriesLocked()
	return nil
}

// PlanDeleteCategory validates a delete without applying it and returns
// copies of the affected tasks with the key removed.
func (s *Store) PlanDeleteCategory(key string) ([]model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.customCategoryLocked(key); err != nil {
		return nil, err
	}
	return s.remappedLocked(key, nil), nil
}

func (s *Store) checkRenameLocked(key, newLabel string) (int, string, string, error) {
	newLabel = strings.TrimSpace(newLabel)
	newKey := model.CategoryKey(newLabel)
	if newKey == "" {
		return -1, "", "", model.NewValidationError("category", "category name is required")
	}
	i, err := s.customCategoryLocked(key)
	if err != nil {
		return -1, "", "", err
	}
	if newKey != key && s.categoryIndexLocked(newKey) >= 0 {
		return -1, "", "", model.NewValidationError("category", "category "+newKey+" already exists")
	}
	return i, newLabel, newKey, nil
}

// remapCategoryLocked replaces from with to on every task, or removes it when
// to is nil.
func (s *Store) remapCategoryLocked(from string, to *string) {
	now := s.now()
	changed := false
	for i := range s.tasks {
		if remapTaskCategory(&s.tasks[i], from, to) {
			s.tasks[i].UpdatedAt = now
			changed = true
		}
	}
	if changed {
		s.persistTasksLocked()
	}
}

func (s *Store) remappedLocked(from string, to *string) []model.Task {
	now := s.now()
	var out []model.Task
	for _, task := range s.tasks {
		c := task.Clone()
		if remapTaskCategory(&c, from, to) {
			c.UpdatedAt = now
			out = append(out, c)
		}
	}
	return out
}

// remapTaskCategory rewrites from to to in both category fields, dropping
// duplicates. It reports whether task referenced from.
func remapTaskCategory(task *model.Task, from string, to *string) bool {
	touched := false
	if task.Metadata.Category != nil && *task.Metadata.Category == from {
		task.Metadata.Category = nil
		if to != nil {
			task.Metadata.Category = model.StringPtr(*to)
		}
		touched = true
	}
	if len(task.Metadata.Categories) == 0 {
		return touched
	}
	next := make([]string, 0, len(task.Metadata.Categories))
	seen := make(map[string]bool, len(task.Metadata.Categories))
	for _, c := range task.Metadata.Categories {
		if c == from {
			touched = true
			if to == nil {
				continue
			}
			c = *to
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		next = append(next, c)
	}
	task.Metadata.Categories = next
	return touched
}

func (s *Store) customCategoryLocked(key string) (int, error) {
	i := s.categoryIndexLocked(key)
	if i < 0 {
		return -1, model.NewValidationError("category", "unknown category "+key)
	}
	if s.categories[i].Builtin {
		return -1, model.NewValidationError("category", "default category "+key+" cannot be changed")
	}
	return i, nil
}

func (s *Store) categoryIndexLocked(key string) int {
	for i := range s.categories {
		if s.categories[i].Key == key {
			return i
		}
	}
	return -1
}

func (s *Store) customCategoriesLocked() []model.Category {
	out := make([]model.Category, 0)
	for _, c := range s.categories {
		if !c.Builtin {
			out = append(out, c)
		}
	}
	return out
}
