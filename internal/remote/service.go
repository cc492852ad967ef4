// Package remote applies task mutations through the server. The local store
// is touched only after the server acknowledges; a failed request leaves it
// as it was.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/sandeepkv93/twodo/internal/client"
	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/normalize"
	"github.com/sandeepkv93/twodo/internal/notify"
	"github.com/sandeepkv93/twodo/internal/store"
)

// ErrStale reports a response that arrived after a newer request for the
// same task was issued. The response is dropped.
var ErrStale = errors.New("remote: response superseded by a newer request")

const parseKey = "parse"

type Service struct {
	client *client.Client
	store  *store.Store
	seq    *client.Sequencer
	center *notify.Center
	logger *slog.Logger

	mu sync.Mutex
	// sent with every parse so the parser can resolve "it" to the last task
	lastTaskID string
	lastAction string
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithSequencer(seq *client.Sequencer) Option {
	return func(s *Service) { s.seq = seq }
}

// WithNotifications sets the center fed by the notification calls.
func WithNotifications(c *notify.Center) Option {
	return func(s *Service) { s.center = c }
}

func New(c *client.Client, st *store.Store, opts ...Option) *Service {
	s := &Service{
		client: c,
		store:  st,
		seq:    client.NewSequencer(),
		center: notify.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) normalizer() *normalize.Normalizer {
	return s.store.Normalizer()
}

// Pull replaces the store with the server's task list. Records that fail
// normalization are skipped and counted.
func (s *Service) Pull(ctx context.Context) (store.LoadResult, error) {
	items, err := s.client.ListTasks(ctx)
	if err != nil {
		return store.LoadResult{}, err
	}
	var res store.LoadResult
	tasks := make([]model.Task, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		task, err := s.normalizer().NormalizeJSON(item)
		if err != nil || task.ID == "" || seen[task.ID] {
			res.Skipped++
			s.logger.Warn("skipping server task", "index", i, "error", err)
			continue
		}
		seen[task.ID] = true
		tasks = append(tasks, task)
	}
	res.Loaded = len(tasks)
	s.store.Replace(tasks)
	s.logger.Info("tasks pulled", "loaded", res.Loaded, "skipped", res.Skipped)
	return res, nil
}

// Create validates raw locally, posts it, and stores the server's version.
func (s *Service) Create(ctx context.Context, raw normalize.Raw) (model.Task, error) {
	task, err := s.normalizer().Normalize(raw)
	if err != nil {
		return model.Task{}, err
	}
	task.ID = ""
	resp, err := s.client.CreateTask(ctx, task)
	if err != nil {
		return model.Task{}, err
	}
	return s.commit("create", resp)
}

// Update runs the merge guards locally before sending, so an invalid patch
// never reaches the network.
func (s *Service) Update(ctx context.Context, id string, patch normalize.Patch) (model.Task, error) {
	prepared, change, err := s.store.PrepareUpdate(id, patch)
	if err != nil {
		return model.Task{}, err
	}
	token := s.seq.Next(id)
	resp, err := s.client.UpdateTask(ctx, prepared)
	if err != nil {
		return model.Task{}, err
	}
	if !s.seq.Current(id, token) {
		s.logger.Info("dropping stale update response", "task_id", id, "token", token)
		return model.Task{}, ErrStale
	}
	task, err := s.commit("update", resp)
	if err != nil {
		return model.Task{}, err
	}
	if change != nil {
		s.normalizer().Emit(*change)
	}
	return task, nil
}

func (s *Service) Delete(ctx context.Context, ids ...string) (int, error) {
	removed := 0
	for _, id := range ids {
		if _, err := s.store.Get(id); err != nil {
			continue
		}
		s.seq.Next(id)
		if err := s.client.DeleteTask(ctx, id); err != nil {
			return removed, err
		}
		removed += s.store.Delete(id)
	}
	return removed, nil
}

func (s *Service) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	task, err := s.store.Get(id)
	if err != nil {
		return model.Task{}, err
	}
	status := model.StatusCompleted
	if task.Completed() {
		status = model.StatusTodo
	}
	return s.Update(ctx, id, normalize.Patch{Status: &status})
}

func (s *Service) ToggleImportant(ctx context.Context, id string) (model.Task, error) {
	task, err := s.store.Get(id)
	if err != nil {
		return model.Task{}, err
	}
	important := !task.Metadata.IsImportant
	return s.Update(ctx, id, normalize.Patch{Metadata: &normalize.MetadataPatch{IsImportant: &important}})
}

// ParseResult is what the parse endpoint made of free text.
type ParseResult struct {
	Task                 model.Task
	Feedback             client.Feedback
	Analysis             client.Analysis
	RequiresConfirmation bool
}

// Parse asks the server to interpret input. The task is normalized but not
// stored; callers pass it to Create or Update once confirmed. A response
// overtaken by a newer Parse call returns ErrStale.
func (s *Service) Parse(ctx context.Context, input string, session map[string]any) (ParseResult, error) {
	out, raw, err := s.parse(ctx, input, session)
	if err != nil {
		return out, err
	}
	task, err := s.normalizer().NormalizeJSON(raw)
	if err != nil {
		return out, err
	}
	out.Task = task
	return out, nil
}

func (s *Service) parse(ctx context.Context, input string, session map[string]any) (ParseResult, json.RawMessage, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return ParseResult{}, nil, model.NewValidationError("userInput", "input is required")
	}
	token := s.seq.Next(parseKey)
	resp, err := s.client.ParseTask(ctx, client.ParseRequest{UserInput: input, SessionContext: session})
	if err != nil {
		return ParseResult{}, nil, err
	}
	if !s.seq.Current(parseKey, token) {
		return ParseResult{}, nil, ErrStale
	}
	out := ParseResult{
		Feedback:             resp.Feedback,
		Analysis:             resp.Analysis,
		RequiresConfirmation: resp.RequiresConfirmation,
	}
	if !resp.HasTask() {
		return out, nil, model.NewValidationError("task", "parser returned no task")
	}
	return out, resp.Task, nil
}

// Session returns the conversation context sent with parse requests.
func (s *Service) Session() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := map[string]any{}
	if s.lastTaskID != "" {
		session["lastTaskId"] = s.lastTaskID
		session["lastAction"] = s.lastAction
	}
	return session
}

func (s *Service) remember(id, action string) {
	s.mu.Lock()
	s.lastTaskID, s.lastAction = id, action
	s.mu.Unlock()
}

// QuickAdd parses input on the server and creates the task it describes.
// The parse result is returned even when creation fails.
func (s *Service) QuickAdd(ctx context.Context, input string) (model.Task, ParseResult, error) {
	res, err := s.Parse(ctx, input, s.Session())
	if err != nil {
		return model.Task{}, res, err
	}
	data, err := json.Marshal(res.Task)
	if err != nil {
		return model.Task{}, res, err
	}
	raw, err := normalize.DecodeRaw(data)
	if err != nil {
		return model.Task{}, res, err
	}
	task, err := s.Create(ctx, raw)
	if err != nil {
		return model.Task{}, res, err
	}
	s.remember(task.ID, "create")
	return task, res, nil
}

// ParseInto parses input and applies what the parser filled in to the
// existing task id. Fields the parser left out keep their values.
func (s *Service) ParseInto(ctx context.Context, id, input string) (model.Task, ParseResult, error) {
	if _, err := s.store.Get(id); err != nil {
		return model.Task{}, ParseResult{}, err
	}
	res, raw, err := s.parse(ctx, input, s.Session())
	if err != nil {
		return model.Task{}, res, err
	}
	patch, err := ParsePatch(raw)
	if err != nil {
		return model.Task{}, res, err
	}
	task, err := s.Update(ctx, id, patch)
	if err != nil {
		return model.Task{}, res, err
	}
	res.Task = task
	s.remember(id, "update")
	return task, res, nil
}

// ParsePatch turns a parsed task into an update patch for an existing task.
// Only fields the parser actually filled are carried over.
func ParsePatch(parsed json.RawMessage) (normalize.Patch, error) {
	raw, err := normalize.DecodeRaw(parsed)
	if err != nil {
		return normalize.Patch{}, model.NewValidationError("task", "malformed task: "+err.Error())
	}
	var patch normalize.Patch
	if title := strings.TrimSpace(firstNonEmpty(raw.Title, raw.Text)); title != "" {
		patch.Title = &title
	}
	if raw.Description != "" {
		patch.Description = &raw.Description
	}
	if raw.Priority.Set {
		if level, ok := model.ParsePriorityLevel(raw.Priority.Level); ok {
			patch.Priority = &normalize.PriorityPatch{Level: &level}
		}
	}
	if raw.Temporal != nil {
		patch.Temporal = &normalize.TemporalPatch{
			DueDate:    raw.Temporal.DueDate,
			StartDate:  raw.Temporal.StartDate,
			Reminder:   raw.Temporal.Reminder,
			Recurrence: raw.Temporal.Recurrence,
		}
	}
	if raw.Tags != nil {
		tags := raw.Tags
		patch.Tags = &tags
	}
	return patch, nil
}

func (s *Service) commit(op string, resp json.RawMessage) (model.Task, error) {
	task, err := s.normalizer().NormalizeJSON(resp)
	if err != nil {
		return model.Task{}, &model.NetworkError{Op: op + " task", Err: err}
	}
	if task.ID == "" {
		return model.Task{}, &model.NetworkError{Op: op + " task", Err: errors.New("server returned a task without id")}
	}
	s.store.Put(task)
	return task, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
