package normalize

import "github.com/sandeepkv93/twodo/internal/model"

// Patch is a partial update. A nil pointer or unset Optional means "leave
// unchanged"; Optional fields can also be set to null to clear a value.
type Patch struct {
	Title        *string        `json:"title,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Status       *model.Status  `json:"status,omitempty"`
	Tags         *[]string      `json:"tags,omitempty"`
	Dependencies *[]string      `json:"dependencies,omitempty"`
	Priority     *PriorityPatch `json:"priority,omitempty"`
	Temporal     *TemporalPatch `json:"temporal,omitempty"`
	Metadata     *MetadataPatch `json:"metadata,omitempty"`
}

type PriorityPatch struct {
	Level     *model.PriorityLevel `json:"level,omitempty"`
	Reasoning *string              `json:"reasoning,omitempty"`
}

type TemporalPatch struct {
	DueDate    Optional[string] `json:"due_date"`
	StartDate  Optional[string] `json:"start_date"`
	Reminder   Optional[string] `json:"reminder"`
	Recurrence Optional[string] `json:"recurrence"`
}

type MetadataPatch struct {
	IsImportant *bool            `json:"isImportant,omitempty"`
	IsToday     *bool            `json:"isToday,omitempty"`
	Category    Optional[string] `json:"category"`
	Categories  *[]string        `json:"categories,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Status == nil &&
		p.Tags == nil &&
		p.Dependencies == nil &&
		(p.Priority == nil || (p.Priority.Level == nil && p.Priority.Reasoning == nil)) &&
		(p.Temporal == nil || *p.Temporal == (TemporalPatch{})) &&
		(p.Metadata == nil || (p.Metadata.IsImportant == nil && p.Metadata.IsToday == nil &&
			!p.Metadata.Category.Set && p.Metadata.Categories == nil))
}

func (p Patch) explicitImportance() bool {
	return p.Metadata != nil && p.Metadata.IsImportant != nil
}

func (p Patch) levelChange() (model.PriorityLevel, bool) {
	if p.Priority == nil || p.Priority.Level == nil {
		return "", false
	}
	return *p.Priority.Level, true
}

// SetDueDate builds a patch for one temporal field; an empty value clears it.
func SetDueDate(v string) Patch {
	return Patch{Temporal: &TemporalPatch{DueDate: optionalString(v)}}
}

func SetReminder(v string) Patch {
	return Patch{Temporal: &TemporalPatch{Reminder: optionalString(v)}}
}

func SetRecurrence(v string) Patch {
	return Patch{Temporal: &TemporalPatch{Recurrence: optionalString(v)}}
}

func SetPriority(level model.PriorityLevel) Patch {
	return Patch{Priority: &PriorityPatch{Level: &level}}
}

func optionalString(v string) Optional[string] {
	if v == "" {
		return Null[string]()
	}
	return Some(v)
}
