package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString decodes a JSON string or number. Older clients used numeric ids.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("normalize: id must be a string or number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// Optional records whether a JSON key was present and whether it was null.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Present reports a non-null value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// RawPriority is either a bare level name or a {level, reasoning} object.
type RawPriority struct {
	Set       bool
	Level     string
	Reasoning string
}

func (p *RawPriority) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	p.Set = true
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &p.Level)
	}
	var obj struct {
		Level     *string `json:"level"`
		Reasoning *string `json:"reasoning"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("normalize: priority must be a string or object: %w", err)
	}
	if obj.Level != nil {
		p.Level = *obj.Level
	}
	if obj.Reasoning != nil {
		p.Reasoning = *obj.Reasoning
	}
	return nil
}

type RawTemporal struct {
	DueDate    Optional[string] `json:"due_date"`
	StartDate  Optional[string] `json:"start_date"`
	Reminder   Optional[string] `json:"reminder"`
	Recurrence Optional[string] `json:"recurrence"`
}

type RawMetadata struct {
	IsImportant Optional[bool]   `json:"isImportant"`
	IsToday     Optional[bool]   `json:"isToday"`
	Category    Optional[string] `json:"category"`
	Categories  []string         `json:"categories"`
}

// Raw is the union of every task shape seen in storage or on the wire: the
// legacy flat record, the half-migrated one and the nested canonical one.
type Raw struct {
	ID           FlexString   `json:"id"`
	Title        string       `json:"title"`
	Text         string       `json:"text"`
	Description  string       `json:"description"`
	Status       string       `json:"status"`
	Priority     RawPriority  `json:"priority"`
	Temporal     *RawTemporal `json:"temporal"`
	Metadata     *RawMetadata `json:"metadata"`
	Tags         []string     `json:"tags"`
	Dependencies []FlexString `json:"dependencies"`

	Completed   Optional[bool]   `json:"completed"`
	IsImportant Optional[bool]   `json:"isImportant"`
	IsToday     Optional[bool]   `json:"isToday"`
	Category    Optional[string] `json:"category"`
	Categories  []string         `json:"categories"`

	DueDate        Optional[string] `json:"due_date"`
	DueDateCamel   Optional[string] `json:"dueDate"`
	StartDate      Optional[string] `json:"start_date"`
	StartDateCamel Optional[string] `json:"startDate"`
	Reminder       Optional[string] `json:"reminder"`
	Recurrence     Optional[string] `json:"recurrence"`

	CreatedAt      string `json:"created_at"`
	CreatedAtCamel string `json:"createdAt"`
	UpdatedAt      string `json:"updated_at"`
	UpdatedAtCamel string `json:"updatedAt"`
}

// DecodeRaw parses a single record.
func DecodeRaw(data []byte) (Raw, error) {
	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return Raw{}, err
	}
	return raw, nil
}

// DecodeRawList splits a stored array into per-record payloads so one bad
// record does not poison the rest.
func DecodeRawList(data []byte) ([]json.RawMessage, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func firstString(values ...Optional[string]) *string {
	for _, v := range values {
		if !v.Present() {
			continue
		}
		s := strings.TrimSpace(v.Value)
		if s == "" {
			continue
		}
		return &s
	}
	return nil
}

func firstBool(values ...Optional[bool]) (bool, bool) {
	for _, v := range values {
		if v.Present() {
			return v.Value, true
		}
	}
	return false, false
}
