package store

import (
	"strings"
	"time"

	"github.com/sandeepkv93/twodo/internal/model"
)

type Filter string

const (
	FilterToday     Filter = "Today"
	FilterImportant Filter = "Important"
	FilterPlanned   Filter = "Planned"
	FilterCompleted Filter = "Completed"
	FilterAll       Filter = "All"
	FilterActive    Filter = "Active"
	FilterCategory  Filter = "Category"
)

// Filters lists the named filters in sidebar order.
var Filters = []Filter{FilterToday, FilterImportant, FilterPlanned, FilterCompleted, FilterAll, FilterActive}

// ParseFilter matches a named filter case-insensitively. Any other name is
// taken as a category key.
func ParseFilter(name string) Query {
	name = strings.TrimSpace(name)
	for _, f := range Filters {
		if strings.EqualFold(name, string(f)) {
			return Query{Filter: f}
		}
	}
	return Query{Filter: FilterCategory, Category: name}
}

// Query selects tasks matching the filter AND the search text.
type Query struct {
	Filter   Filter
	Category string
	Search   string
}

func (q Query) Label() string {
	if q.Filter == FilterCategory {
		return q.Category
	}
	if q.Filter == "" {
		return string(FilterAll)
	}
	return string(q.Filter)
}

func (q Query) Match(task model.Task) bool {
	if !matchesFilter(q, task) {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(task.Title), needle) ||
		strings.Contains(strings.ToLower(task.Description), needle)
}

func matchesFilter(q Query, task model.Task) bool {
	switch q.Filter {
	case FilterToday:
		return task.Metadata.IsToday
	case FilterImportant:
		return task.Metadata.IsImportant
	case FilterPlanned:
		return task.Temporal.DueDate != nil
	case FilterCompleted:
		return task.Completed()
	case FilterActive:
		return !task.Completed()
	case FilterCategory:
		return task.HasCategory(q.Category)
	default:
		return true
	}
}

// Query returns matching tasks in store order.
func (s *Store) Query(q Query) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, 0)
	for _, task := range s.tasks {
		if q.Match(task) {
			out = append(out, task.Clone())
		}
	}
	return out
}

// Buckets groups the tasks matching q by due date relative to now.
func (s *Store) Buckets(q Query, now time.Time) model.Buckets {
	return model.BucketTasks(s.Query(q), now)
}

// Counts returns the badge count of every named filter and every category.
// Search text is ignored.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]int, len(Filters)+len(s.categories))
	for _, f := range Filters {
		out[string(f)] = 0
	}
	for _, c := range s.categories {
		out[c.Key] = 0
	}
	for _, task := range s.tasks {
		for _, f := range Filters {
			if matchesFilter(Query{Filter: f}, task) {
				out[string(f)]++
			}
		}
		for _, c := range s.categories {
			if task.HasCategory(c.Key) {
				out[c.Key]++
			}
		}
	}
	return out
}
