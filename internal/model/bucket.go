package model

import "time"

type BucketKey string

const (
	BucketOverdue      BucketKey = "overdue"
	BucketDueToday     BucketKey = "dueToday"
	BucketDueTomorrow  BucketKey = "dueTomorrow"
	BucketDueThisWeek  BucketKey = "dueThisWeek"
	BucketDueThisMonth BucketKey = "dueThisMonth"
	BucketFuture       BucketKey = "future"
	BucketUnscheduled  BucketKey = "unscheduled"
)

// BucketOrder is the display order of the groups.
var BucketOrder = []BucketKey{
	BucketOverdue,
	BucketDueToday,
	BucketDueTomorrow,
	BucketDueThisWeek,
	BucketDueThisMonth,
	BucketFuture,
	BucketUnscheduled,
}

var bucketLabels = map[BucketKey]string{
	BucketOverdue:      "Overdue",
	BucketDueToday:     "Due Today",
	BucketDueTomorrow:  "Due Tomorrow",
	BucketDueThisWeek:  "Due This Week",
	BucketDueThisMonth: "Due This Month",
	BucketFuture:       "Future",
	BucketUnscheduled:  "Unscheduled",
}

func (k BucketKey) Label() string {
	return bucketLabels[k]
}

// Buckets partitions tasks by due date. Each bucket keeps the order of the
// input; nothing is sorted.
type Buckets struct {
	Overdue      []Task
	DueToday     []Task
	DueTomorrow  []Task
	DueThisWeek  []Task
	DueThisMonth []Task
	Future       []Task
	Unscheduled  []Task
}

type BucketGroup struct {
	Key   BucketKey
	Label string
	Tasks []Task
}

func (b Buckets) Get(key BucketKey) []Task {
	switch key {
	case BucketOverdue:
		return b.Overdue
	case BucketDueToday:
		return b.DueToday
	case BucketDueTomorrow:
		return b.DueTomorrow
	case BucketDueThisWeek:
		return b.DueThisWeek
	case BucketDueThisMonth:
		return b.DueThisMonth
	case BucketFuture:
		return b.Future
	default:
		return b.Unscheduled
	}
}

// Groups returns the non-empty buckets in display order.
func (b Buckets) Groups() []BucketGroup {
	out := make([]BucketGroup, 0, len(BucketOrder))
	for _, key := range BucketOrder {
		tasks := b.Get(key)
		if len(tasks) == 0 {
			continue
		}
		out = append(out, BucketGroup{Key: key, Label: key.Label(), Tasks: tasks})
	}
	return out
}

func (b Buckets) Len() int {
	n := 0
	for _, key := range BucketOrder {
		n += len(b.Get(key))
	}
	return n
}

// BucketTasks groups tasks relative to now. Dates are compared at day
// granularity in now's location.
func BucketTasks(tasks []Task, now time.Time) Buckets {
	var b Buckets
	for _, task := range tasks {
		switch BucketFor(task, now) {
		case BucketOverdue:
			b.Overdue = append(b.Overdue, task)
		case BucketDueToday:
			b.DueToday = append(b.DueToday, task)
		case BucketDueTomorrow:
			b.DueTomorrow = append(b.DueTomorrow, task)
		case BucketDueThisWeek:
			b.DueThisWeek = append(b.DueThisWeek, task)
		case BucketDueThisMonth:
			b.DueThisMonth = append(b.DueThisMonth, task)
		case BucketFuture:
			b.Future = append(b.Future, task)
		default:
			b.Unscheduled = append(b.Unscheduled, task)
		}
	}
	return b
}

// BucketFor classifies a single task. Missing and unparseable due dates are
// unscheduled.
func BucketFor(task Task, now time.Time) BucketKey {
	loc := now.Location()
	due, ok := task.DueTime(loc)
	if !ok {
		return BucketUnscheduled
	}
	day := StartOfDay(due.In(loc))
	today := StartOfDay(now)
	y, m, _ := today.Date()
	monthEnd := time.Date(y, m+1, 0, 0, 0, 0, 0, loc)

	switch {
	case day.Before(today):
		return BucketOverdue
	case day.Equal(today):
		return BucketDueToday
	case day.Equal(today.AddDate(0, 0, 1)):
		return BucketDueTomorrow
	case !day.After(today.AddDate(0, 0, 7)):
		return BucketDueThisWeek
	case !day.After(monthEnd):
		return BucketDueThisMonth
	default:
		return BucketFuture
	}
}
