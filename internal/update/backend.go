package update

import (
	"context"

	"github.com/sandeepkv93/twodo/internal/model"
	"github.com/sandeepkv93/twodo/internal/normalize"
	"github.com/sandeepkv93/twodo/internal/remote"
	"github.com/sandeepkv93/twodo/internal/store"
)

// Backend applies task mutations. *remote.Service satisfies it; LocalBackend
// adapts a bare store.
type Backend interface {
	Create(ctx context.Context, raw normalize.Raw) (model.Task, error)
	Update(ctx context.Context, id string, patch normalize.Patch) (model.Task, error)
	Delete(ctx context.Context, ids ...string) (int, error)
	ToggleComplete(ctx context.Context, id string) (model.Task, error)
	ToggleImportant(ctx context.Context, id string) (model.Task, error)
	// RenameCategory and DeleteCategory also rewrite every task that uses
	// the category.
	RenameCategory(ctx context.Context, key, label string) (model.Category, error)
	DeleteCategory(ctx context.Context, key string) error
}

// QuickAdder turns free text into a created task on the server, or into an
// edit of an existing one.
type QuickAdder interface {
	QuickAdd(ctx context.Context, input string) (model.Task, remote.ParseResult, error)
	ParseInto(ctx context.Context, id, input string) (model.Task, remote.ParseResult, error)
}

// NotificationSyncer pulls the server's notifications into the local center.
type NotificationSyncer interface {
	SyncNotifications(ctx context.Context) (int, error)
}

var (
	_ Backend            = (*remote.Service)(nil)
	_ QuickAdder         = (*remote.Service)(nil)
	_ NotificationSyncer = (*remote.Service)(nil)
	_ Backend            = LocalBackend{}
)

type LocalBackend struct {
	Store *store.Store
}

func (b LocalBackend) Create(_ context.Context, raw normalize.Raw) (model.Task, error) {
	return b.Store.Create(raw)
}

func (b LocalBackend) Update(_ context.Context, id string, patch normalize.Patch) (model.Task, error) {
	return b.Store.Update(id, patch)
}

func (b LocalBackend) Delete(_ context.Context, ids ...string) (int, error) {
	return b.Store.Delete(ids...), nil
}

func (b LocalBackend) ToggleComplete(_ context.Context, id string) (model.Task, error) {
	return b.Store.ToggleComplete(id)
}

func (b LocalBackend) ToggleImportant(_ context.Context, id string) (model.Task, error) {
	return b.Store.ToggleImportant(id)
}

func (b LocalBackend) RenameCategory(_ context.Context, key, label string) (model.Category, error) {
	return b.Store.RenameCategory(key, label)
}

func (b LocalBackend) DeleteCategory(_ context.Context, key string) error {
	return b.Store.DeleteCategory(key)
}
