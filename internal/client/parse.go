package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/sandeepkv93/twodo/internal/model"
)

type ParseRequest struct {
	UserInput      string         `json:"userInput"`
	SessionContext map[string]any `json:"sessionContext"`
}

type Feedback struct {
	Display string `json:"display"`
	Voice   string `json:"voice"`
}

type Analysis struct {
	Completeness float64  `json:"completeness"`
	MissingInfo  []string `json:"missing_info"`
	Suggestions  []string `json:"suggestions"`
}

// ParseResponse is the parse endpoint's reply. Task is a partial record meant
// for the normalizer.
type ParseResponse struct {
	Success              bool            `json:"success"`
	Task                 json.RawMessage `json:"task"`
	Feedback             Feedback        `json:"feedback"`
	Analysis             Analysis        `json:"analysis"`
	RequiresConfirmation bool            `json:"requiresConfirmation"`
	LLMResponse          string          `json:"llm_response,omitempty"`
}

// HasTask reports whether the reply carries a task record.
func (r ParseResponse) HasTask() bool {
	return len(r.Task) > 0 && string(r.Task) != "null"
}

// ParseTask sends free text to POST /parse-task.
func (c *Client) ParseTask(ctx context.Context, req ParseRequest) (ParseResponse, error) {
	const op = "parse task"
	if req.SessionContext == nil {
		req.SessionContext = map[string]any{}
	}
	data, err := c.do(ctx, op, http.MethodPost, "/parse-task", req)
	if err != nil {
		return ParseResponse{}, err
	}
	var out ParseResponse
	if err := decode(op, data, &out); err != nil {
		return ParseResponse{}, err
	}
	if !out.Success {
		msg := out.Feedback.Display
		if msg == "" {
			msg = "parser did not accept the input"
		}
		return out, &model.NetworkError{Op: op, Err: errors.New(msg)}
	}
	return out, nil
}

type PriorityFeedbackRequest struct {
	NewPriority      model.PriorityLevel `json:"newPriority"`
	OriginalPriority model.PriorityLevel `json:"originalPriority"`
	UserInput        string              `json:"userInput"`
}

// PriorityFeedback posts a priority correction. Callers treat failures as
// non-fatal.
func (c *Client) PriorityFeedback(ctx context.Context, taskID string, req PriorityFeedbackRequest) error {
	_, err := c.do(ctx, "priority feedback", http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/priority-feedback", req)
	return err
}
