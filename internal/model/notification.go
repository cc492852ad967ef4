package model

import (
	"encoding/json"
	"time"
)

// Notification is produced outside the task model, by the reminder engine or
// the remote notifications endpoint. Data is passed through untouched.
type Notification struct {
	ID        string          `json:"id"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	IsRead    bool            `json:"isRead"`
	Data      json.RawMessage `json:"data,omitempty"`
}
