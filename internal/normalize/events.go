package normalize

import (
	"time"

	"github.com/sandeepkv93/twodo/internal/model"
)

// PriorityChange is emitted after an update changes a task's priority level.
type PriorityChange struct {
	TaskID string
	Title  string
	Old    model.PriorityLevel
	New    model.PriorityLevel
	At     time.Time
}

// Emitter receives priority changes. Implementations must not block.
type Emitter interface {
	EmitPriorityChange(PriorityChange)
}

type EmitterFunc func(PriorityChange)

func (f EmitterFunc) EmitPriorityChange(c PriorityChange) {
	f(c)
}

type discardEmitter struct{}

func (discardEmitter) EmitPriorityChange(PriorityChange) {}
