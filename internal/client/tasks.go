package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/sandeepkv93/twodo/internal/model"
)

// temporalKeys are sent at the top level of update bodies and read back from
// there.
var temporalKeys = []string{"due_date", "start_date", "recurrence", "reminder"}

// ListTasks returns every record from GET /tasks, undecoded.
func (c *Client) ListTasks(ctx context.Context) ([]json.RawMessage, error) {
	const op = "list tasks"
	data, err := c.do(ctx, op, http.MethodGet, "/tasks", nil)
	if err != nil {
		return nil, err
	}
	var out []json.RawMessage
	if err := decode(op, data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateTask posts a task and returns the server's record.
func (c *Client) CreateTask(ctx context.Context, task model.Task) (json.RawMessage, error) {
	const op = "create task"
	data, err := c.do(ctx, op, http.MethodPost, "/tasks", task)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// UpdateTask sends a full task with its temporal fields flattened to the top
// level and rebuilds the nested temporal object from the response.
func (c *Client) UpdateTask(ctx context.Context, task model.Task) (json.RawMessage, error) {
	const op = "update task"
	body, err := FlattenTemporal(task)
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, op, http.MethodPut, "/tasks/"+url.PathEscape(task.ID), body)
	if err != nil {
		return nil, err
	}
	out, err := NestTemporal(data)
	if err != nil {
		return nil, &model.NetworkError{Op: op, Err: err}
	}
	return out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	_, err := c.do(ctx, "delete task", http.MethodDelete, "/tasks/"+url.PathEscape(id), nil)
	return err
}

// FlattenTemporal renders task in the update wire shape: temporal fields at
// the top level and no nested temporal object.
func FlattenTemporal(task model.Task) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	var temporal map[string]json.RawMessage
	if raw, ok := body["temporal"]; ok {
		if err := json.Unmarshal(raw, &temporal); err != nil {
			return nil, err
		}
	}
	delete(body, "temporal")
	for _, key := range temporalKeys {
		if v, ok := temporal[key]; ok {
			body[key] = v
		} else {
			body[key] = json.RawMessage("null")
		}
	}
	return body, nil
}

// NestTemporal rebuilds the temporal object from flattened response fields.
// A response that carries none of them is returned as is.
func NestTemporal(data []byte) (json.RawMessage, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, err
	}
	flat := false
	for _, key := range temporalKeys {
		if _, ok := body[key]; ok {
			flat = true
			break
		}
	}
	if !flat {
		return json.RawMessage(data), nil
	}

	temporal := make(map[string]json.RawMessage, len(temporalKeys))
	for _, key := range temporalKeys {
		if v, ok := body[key]; ok {
			temporal[key] = v
		} else {
			temporal[key] = json.RawMessage("null")
		}
		delete(body, key)
	}
	nested, err := json.Marshal(temporal)
	if err != nil {
		return nil, err
	}
	body["temporal"] = nested
	return json.Marshal(body)
}
