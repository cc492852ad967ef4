package remote

import (
	"context"
	"encoding/json"

	"github.com/sandeepkv93/twodo/internal/model"
)

// RenameCategory renames a custom category. Tasks that use it are rewritten
// on the server first; the store changes only after every one is
// acknowledged.
func (s *Service) RenameCategory(ctx context.Context, key, label string) (model.Category, error) {
	_, affected, err := s.store.PlanRenameCategory(key, label)
	if err != nil {
		return model.Category{}, err
	}
	acked, err := s.pushTasks(ctx, affected)
	if err != nil {
		return model.Category{}, err
	}
	cat, err := s.store.RenameCategory(key, label)
	s.commitAll(acked)
	if err != nil {
		return model.Category{}, err
	}
	s.logger.Info("category renamed", "from", key, "to", cat.Key, "tasks", len(acked))
	return cat, nil
}

// DeleteCategory removes a custom category after the server has dropped it
// from every task.
func (s *Service) DeleteCategory(ctx context.Context, key string) error {
	affected, err := s.store.PlanDeleteCategory(key)
	if err != nil {
		return err
	}
	acked, err := s.pushTasks(ctx, affected)
	if err != nil {
		return err
	}
	err = s.store.DeleteCategory(key)
	s.commitAll(acked)
	if err != nil {
		return err
	}
	s.logger.Info("category deleted", "key", key, "tasks", len(acked))
	return nil
}

// pushTasks sends each task in full. When one fails, the tasks already
// accepted are put back to the store's copy.
func (s *Service) pushTasks(ctx context.Context, tasks []model.Task) ([]json.RawMessage, error) {
	acked := make([]json.RawMessage, 0, len(tasks))
	for i, task := range tasks {
		s.seq.Next(task.ID)
		resp, err := s.client.UpdateTask(ctx, task)
		if err != nil {
			s.restore(context.WithoutCancel(ctx), tasks[:i])
			return nil, err
		}
		acked = append(acked, resp)
	}
	return acked, nil
}

func (s *Service) restore(ctx context.Context, tasks []model.Task) {
	for _, task := range tasks {
		orig, err := s.store.Get(task.ID)
		if err != nil {
			continue
		}
		if _, err := s.client.UpdateTask(ctx, orig); err != nil {
			s.logger.Warn("restoring task after failed category change", "task_id", task.ID, "error", err)
		}
	}
}

func (s *Service) commitAll(acked []json.RawMessage) {
	for _, resp := range acked {
		if _, err := s.commit("update", resp); err != nil {
			s.logger.Warn("category change response", "error", err)
		}
	}
}
