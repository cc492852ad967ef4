package remote

import (
	"context"

	"github.com/sandeepkv93/twodo/internal/notify"
)

func (s *Service) Notifications() *notify.Center {
	return s.center
}

// SyncNotifications replaces the local notification list with the server's.
// On failure the local list is kept.
func (s *Service) SyncNotifications(ctx context.Context) (int, error) {
	list, err := s.client.ListNotifications(ctx)
	if err != nil {
		return 0, err
	}
	s.center.Replace(list)
	return s.center.Unread(), nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	if err := s.client.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	s.center.MarkRead(id)
	return nil
}

func (s *Service) ClearNotifications(ctx context.Context) error {
	if err := s.client.ClearNotifications(ctx); err != nil {
		return err
	}
	s.center.Clear()
	return nil
}
