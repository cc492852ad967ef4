package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidCategory = errors.New("model: invalid category")

type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"`
	// Builtin categories ship with a preset and cannot be renamed or deleted.
	Builtin bool `json:"-"`
}

type CategoryPreset string

const (
	PresetColors CategoryPreset = "colors"
	PresetAreas  CategoryPreset = "areas"
)

func (p CategoryPreset) IsValid() bool {
	return p == PresetColors || p == PresetAreas
}

// CategoryPalette is rotated through when a custom category needs a color.
var CategoryPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEEAD",
	"#D4A5A5", "#9B59B6", "#3498DB", "#E67E22", "#2ECC71",
}

func DefaultCategories(preset CategoryPreset) []Category {
	if preset == PresetAreas {
		return []Category{
			{Key: "work", Label: "Work", Color: "#4834d4", Builtin: true},
			{Key: "personal", Label: "Personal", Color: "#6ab04c", Builtin: true},
			{Key: "shopping", Label: "Shopping", Color: "#eb4d4b", Builtin: true},
		}
	}
	return []Category{
		{Key: "blue", Label: "Blue category", Color: "#0078d4", Builtin: true},
		{Key: "green", Label: "Green category", Color: "#107c10", Builtin: true},
		{Key: "orange", Label: "Orange category", Color: "#ff8c00", Builtin: true},
		{Key: "purple", Label: "Purple category", Color: "#5c2d91", Builtin: true},
		{Key: "red", Label: "Red category", Color: "#d83b01", Builtin: true},
		{Key: "yellow", Label: "Yellow category", Color: "#ffd700", Builtin: true},
	}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// CategoryKey derives the key of a user-defined category from its label.
func CategoryKey(label string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), "-")
}

func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return CategoryPalette[i%len(CategoryPalette)]
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidCategory)
	}
	if strings.TrimSpace(c.Label) == "" {
		return fmt.Errorf("%w: label is required", ErrInvalidCategory)
	}
	if !strings.HasPrefix(c.Color, "#") {
		return fmt.Errorf("%w: color %q is not hex", ErrInvalidCategory, c.Color)
	}
	return nil
}
