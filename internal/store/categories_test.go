package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/normalize"
)

func TestAddCategoryRotatesPalette(t *testing.T) {
	s, _ := newTestStore(t)
	first, err := s.AddCategory("Side Projects")
	require.NoError(t, err)
	assert.Equal(t, model.Category{Key: "side-projects", Label: "Side Projects", Color: model.CategoryPalette[0]}, first)

	second, err := s.AddCategory("Errands")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryPalette[1], second.Color)

	_, err = s.AddCategory("side   projects")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = s.AddCategory("   ")
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Len(t, s.Categories(), len(model.DefaultCategories(model.PresetColors))+2)
}

func TestRenameCategoryRemapsTasks(t *testing.T) {
	s, clock := newTestStore(t)
	_, err := s.AddCategory("Home")
	require.NoError(t, err)
	task, err := s.Create(normalize.Raw{
		Title:    "Fix sink",
		Metadata: &normalize.RawMetadata{Category: normalize.Some("home"), Categories: []string{"home", "blue"}},
	})
	require.NoError(t, err)
	untouched, _ := s.CreateTitle("Unrelated")

	clock.Advance(1)
	renamed, err := s.RenameCategory("home", "House Stuff")
	require.NoError(t, err)
	assert.Equal(t, "house-stuff", renamed.Key)

	got, _ := s.Get(task.ID)
	assert.Equal(t, "house-stuff", *got.Metadata.Category)
	assert.Equal(t, []string{"house-stuff", "blue"}, got.Metadata.Categories)
	assert.Equal(t, clock.now, got.UpdatedAt)

	other, _ := s.Get(untouched.ID)
	assert.Equal(t, untouched.UpdatedAt, other.UpdatedAt)

	_, ok := s.Category("home")
	assert.False(t, ok)
}

func TestDeleteCategoryStripsTasks(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.AddCategory("Garden")
	require.NoError(t, err)
	task, err := s.Create(normalize.Raw{
		Title:    "Plant tulips",
		Metadata: &normalize.RawMetadata{Category: normalize.Some("garden"), Categories: []string{"garden", "green"}},
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCategory("garden"))
	got, _ := s.Get(task.ID)
	assert.Nil(t, got.Metadata.Category)
	assert.Equal(t, []string{"green"}, got.Metadata.Categories)
}

func TestPlanCategoryChangesLeaveStoreAlone(t *testing.T) {
	s, clock := newTestStore(t)
	_, err := s.AddCategory("Home")
	require.NoError(t, err)
	task, err := s.Create(normalize.Raw{
		Title:    "Fix sink",
		Metadata: &normalize.RawMetadata{Categories: []string{"home", "house-stuff"}},
	})
	require.NoError(t, err)
	_, _ = s.CreateTitle("Unrelated")

	clock.Advance(1)
	newKey, planned, err := s.PlanRenameCategory("home", "House Stuff")
	require.NoError(t, err)
	assert.Equal(t, "house-stuff", newKey)
	require.Len(t, planned, 1)
	assert.Equal(t, task.ID, planned[0].ID)
	assert.Equal(t, []string{"house-stuff"}, planned[0].Metadata.Categories)
	assert.Equal(t, clock.now, planned[0].UpdatedAt)

	deleted, err := s.PlanDeleteCategory("home")
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, []string{"house-stuff"}, deleted[0].Metadata.Categories)

	got, _ := s.Get(task.ID)
	assert.Equal(t, []string{"home", "house-stuff"}, got.Metadata.Categories)
	assert.Equal(t, task.UpdatedAt, got.UpdatedAt)
	_, ok := s.Category("home")
	assert.True(t, ok)

	_, _, err = s.PlanRenameCategory("blue", "Azure")
	assert.ErrorIs(t, err, model.ErrValidation)
	_, err = s.PlanDeleteCategory("nope")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestDefaultCategoriesAreImmutable(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.RenameCategory("blue", "Azure")
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.ErrorIs(t, s.DeleteCategory("blue"), model.ErrValidation)
	assert.ErrorIs(t, s.DeleteCategory("nope"), model.ErrValidation)
}

func TestAreasPreset(t *testing.T) {
	s, _ := newTestStore(t, WithCategoryPreset(model.PresetAreas))
	cats := s.Categories()
	require.Len(t, cats, 3)
	assert.Equal(t, "work", cats[0].Key)
}

func TestSuggestCategories(t *testing.T) {
	s, _ := newTestStore(t, WithCategoryPreset(model.PresetAreas))
	got := s.SuggestCategories("Persnal")
	require.NotEmpty(t, got)
	assert.Equal(t, "personal", got[0].Key)
	assert.Empty(t, s.SuggestCategories("Groceries"))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("Work", "work"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("work", "word"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 7.0/8.0, Similarity("personal", "persnal"), 1e-9)
	assert.InDelta(t, 0.75, Similarity("Café", "cafe"), 1e-9)
}
