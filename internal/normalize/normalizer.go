// Package normalize turns every task shape this client has ever stored or
// received into model.Task, and merges partial updates into existing tasks.
//
// Field precedence on Normalize, first usable value wins:
//
//	title        title, text                        else "title is required"
//	status       status (TODO|PENDING|COMPLETED|DONE), completed  else TODO
//	priority     priority.level or bare priority string  else Medium
//	             an unrecognized level becomes Unspecified
//	isImportant  metadata.isImportant, isImportant   else derived from High/Critical
//	isToday      metadata.isToday, isToday           else false
//	category     metadata.category, category          else null
//	categories   metadata.categories, categories      else []
//	dates        temporal.<key>, <snake_key>, <camelKey>  else null
//	created_at   created_at, createdAt                else now
//	updated_at   updated_at, updatedAt                else created_at
//
// Null and blank strings count as absent throughout.
package normalize

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sandeepkv93/twodo/internal/model"
)

// Filter names older clients wrote into the category field by accident.
var legacyFilterCategories = map[string]bool{
	"all": true, "today": true, "important": true, "planned": true, "completed": true, "tasks": true,
}

type Normalizer struct {
	now     func() time.Time
	loc     *time.Location
	emitter Emitter
	logger  *slog.Logger
}

type Option func(*Normalizer)

func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// WithLocation sets the zone for timestamps that carry none.
func WithLocation(loc *time.Location) Option {
	return func(n *Normalizer) { n.loc = loc }
}

func WithEmitter(e Emitter) Option {
	return func(n *Normalizer) { n.emitter = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) { n.logger = l }
}

func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		now:     time.Now,
		loc:     time.Local,
		emitter: discardEmitter{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Normalizer) Now() time.Time {
	return n.now().In(n.loc)
}

func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Normalize builds a canonical task. It does not apply the past-date guards:
// stored tasks are allowed to be overdue.
func (n *Normalizer) Normalize(raw Raw) (model.Task, error) {
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = strings.TrimSpace(raw.Text)
	}
	if title == "" {
		return model.Task{}, model.NewValidationError("title", "title is required")
	}

	var temporal RawTemporal
	if raw.Temporal != nil {
		temporal = *raw.Temporal
	}
	var meta RawMetadata
	if raw.Metadata != nil {
		meta = *raw.Metadata
	}

	level := model.PriorityMedium
	if raw.Priority.Set && strings.TrimSpace(raw.Priority.Level) != "" {
		parsed, ok := model.ParsePriorityLevel(raw.Priority.Level)
		if !ok {
			parsed = model.PriorityUnspecified
		}
		level = parsed
	}

	important, explicit := firstBool(meta.IsImportant, raw.IsImportant)
	if !explicit {
		important = level.Elevated()
	}
	isToday, _ := firstBool(meta.IsToday, raw.IsToday)

	category := firstString(meta.Category)
	if category == nil {
		category = firstString(raw.Category)
		if category != nil && legacyFilterCategories[strings.ToLower(*category)] {
			category = nil
		}
	}
	categories := meta.Categories
	if categories == nil {
		categories = raw.Categories
	}

	now := n.Now()
	createdAt := n.parseInstant(now, raw.CreatedAt, raw.CreatedAtCamel)
	updatedAt := n.parseInstant(createdAt, raw.UpdatedAt, raw.UpdatedAtCamel)
	if updatedAt.Before(createdAt) {
		updatedAt = createdAt
	}

	deps := make([]string, 0, len(raw.Dependencies))
	for _, d := range raw.Dependencies {
		if s := strings.TrimSpace(string(d)); s != "" {
			deps = append(deps, s)
		}
	}

	task := model.Task{
		ID:          strings.TrimSpace(string(raw.ID)),
		Title:       title,
		Description: raw.Description,
		Priority:    model.Priority{Level: level, Reasoning: raw.Priority.Reasoning},
		Temporal: model.Temporal{
			DueDate:    firstString(temporal.DueDate, raw.DueDate, raw.DueDateCamel),
			StartDate:  firstString(temporal.StartDate, raw.StartDate, raw.StartDateCamel),
			Reminder:   firstString(temporal.Reminder, raw.Reminder),
			Recurrence: n.normalizeRecurrence(firstString(temporal.Recurrence, raw.Recurrence)),
		},
		Status:       resolveStatus(raw),
		Tags:         nonNil(raw.Tags),
		Dependencies: deps,
		Metadata: model.Metadata{
			IsImportant: important,
			IsToday:     isToday,
			Category:    category,
			Categories:  nonNil(categories),
		},
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	return task, nil
}

// NormalizeJSON decodes and normalizes one record.
func (n *Normalizer) NormalizeJSON(data []byte) (model.Task, error) {
	raw, err := DecodeRaw(data)
	if err != nil {
		return model.Task{}, model.NewValidationError("", "malformed task: "+err.Error())
	}
	return n.Normalize(raw)
}

// ApplyUpdate merges patch into task. Nested records are merged key by key.
// On any error the input task is returned unchanged alongside the error.
func (n *Normalizer) ApplyUpdate(task model.Task, patch Patch) (model.Task, error) {
	out, change, err := n.Merge(task, patch)
	if err != nil {
		return task, err
	}
	if change != nil {
		n.Emit(*change)
	}
	return out, nil
}

// Merge is ApplyUpdate without the event. The priority change, if any, is
// returned so a caller that commits later can Emit it then.
func (n *Normalizer) Merge(task model.Task, patch Patch) (model.Task, *PriorityChange, error) {
	out := task.Clone()
	now := n.Now()

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return task, nil, model.NewValidationError("title", "title is required")
		}
		out.Title = title
	}
	if patch.Description != nil {
		out.Description = *patch.Description
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return task, nil, model.NewValidationError("status", "invalid status "+string(*patch.Status))
		}
		out.Status = *patch.Status
	}
	if patch.Tags != nil {
		out.Tags = nonNil(*patch.Tags)
	}
	if patch.Dependencies != nil {
		out.Dependencies = nonNil(*patch.Dependencies)
	}

	if p := patch.Priority; p != nil {
		if p.Level != nil {
			if !p.Level.IsValid() {
				return task, nil, model.NewValidationError("priority", "invalid priority level "+string(*p.Level))
			}
			out.Priority.Level = *p.Level
		}
		if p.Reasoning != nil {
			out.Priority.Reasoning = *p.Reasoning
		}
	}

	if m := patch.Metadata; m != nil {
		if m.IsImportant != nil {
			out.Metadata.IsImportant = *m.IsImportant
		}
		if m.IsToday != nil {
			out.Metadata.IsToday = *m.IsToday
		}
		if m.Category.Set {
			out.Metadata.Category = firstString(m.Category)
		}
		if m.Categories != nil {
			out.Metadata.Categories = nonNil(*m.Categories)
		}
	}

	if tp := patch.Temporal; tp != nil {
		if err := n.mergeTemporal(&out.Temporal, *tp, now); err != nil {
			return task, nil, err
		}
	}

	newLevel, changed := patch.levelChange()
	if changed && newLevel.Elevated() && !patch.explicitImportance() {
		out.Metadata.IsImportant = true
	}

	if changed && newLevel != task.Priority.Level {
		return out, &PriorityChange{
			TaskID: out.ID,
			Title:  out.Title,
			Old:    task.Priority.Level,
			New:    newLevel,
			At:     now,
		}, nil
	}
	return out, nil, nil
}

func (n *Normalizer) mergeTemporal(t *model.Temporal, p TemporalPatch, now time.Time) error {
	if p.DueDate.Set {
		due := firstString(p.DueDate)
		if due != nil {
			if err := n.checkNotPast("due_date", "due date", *due, now); err != nil {
				return err
			}
		}
		t.DueDate = due
	}
	if p.StartDate.Set {
		start := firstString(p.StartDate)
		if start != nil {
			if _, _, err := model.ParseTimestamp(*start, n.loc); err != nil {
				return model.NewValidationError("start_date", "invalid start date")
			}
		}
		t.StartDate = start
	}
	if p.Reminder.Set {
		reminder := firstString(p.Reminder)
		if reminder != nil {
			if err := n.checkNotPast("reminder", "reminder", *reminder, now); err != nil {
				return err
			}
			if err := n.checkReminderBeforeDue(*reminder, t.DueDate); err != nil {
				return err
			}
		}
		t.Reminder = reminder
	}
	if p.Recurrence.Set {
		rec := firstString(p.Recurrence)
		if rec != nil && !isNoRepeat(*rec) {
			canonical, ok := model.CanonicalRecurrence(*rec)
			if !ok {
				return model.NewValidationError("recurrence", "invalid recurrence")
			}
			rec = &canonical
		} else {
			rec = nil
		}
		t.Recurrence = rec
	}
	return nil
}

// Date-only values are compared against the start of today, instants against
// now itself.
func (n *Normalizer) checkNotPast(field, label, value string, now time.Time) error {
	ts, dateOnly, err := model.ParseTimestamp(value, n.loc)
	if err != nil {
		return model.NewValidationError(field, "invalid "+label)
	}
	limit := now
	if dateOnly {
		limit = model.StartOfDay(now)
	}
	if ts.Before(limit) {
		return model.NewValidationError(field, label+" in the past")
	}
	return nil
}

func (n *Normalizer) checkReminderBeforeDue(reminder string, due *string) error {
	if due == nil {
		return nil
	}
	dueAt, dateOnly, err := model.ParseTimestamp(*due, n.loc)
	if err != nil {
		return nil
	}
	at, _, err := model.ParseTimestamp(reminder, n.loc)
	if err != nil {
		return model.NewValidationError("reminder", "invalid reminder")
	}
	limit := dueAt
	if dateOnly {
		limit = dueAt.AddDate(0, 0, 1)
		if !at.Before(limit) {
			return model.NewValidationError("reminder", "reminder after due date")
		}
		return nil
	}
	if at.After(limit) {
		return model.NewValidationError("reminder", "reminder after due date")
	}
	return nil
}

// Stored values that do not decode are kept verbatim so nothing is lost on
// load; updates reject them instead.
func (n *Normalizer) normalizeRecurrence(v *string) *string {
	if v == nil || isNoRepeat(*v) {
		return nil
	}
	if canonical, ok := model.CanonicalRecurrence(*v); ok {
		return &canonical
	}
	n.logger.Warn("keeping unrecognized recurrence", "value", *v)
	return v
}

// Emit hands c to the emitter. A panicking emitter is logged and ignored.
func (n *Normalizer) Emit(c PriorityChange) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("priority change emitter panicked", "task_id", c.TaskID, "panic", r)
		}
	}()
	n.emitter.EmitPriorityChange(c)
}

func (n *Normalizer) parseInstant(fallback time.Time, values ...string) time.Time {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		if ts, _, err := model.ParseTimestamp(v, n.loc); err == nil {
			return ts
		}
	}
	return fallback
}

func resolveStatus(raw Raw) model.Status {
	switch strings.ToUpper(strings.TrimSpace(raw.Status)) {
	case "TODO", "PENDING":
		return model.StatusTodo
	case "COMPLETED", "DONE":
		return model.StatusCompleted
	}
	if done, ok := firstBool(raw.Completed); ok && done {
		return model.StatusCompleted
	}
	return model.StatusTodo
}

func isNoRepeat(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none", "never", "no repeat":
		return true
	default:
		return false
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
