package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	api "github.com/mediakit/asset-console/api/v1alpha1"
	"github.com/mediakit/asset-console/internal/notify"
	"github.com/mediakit/asset-console/pkg/metrics"
)

// NotificationService exposes the tray operations: listing the feed, the two
// seen-marking paths, and the dismissal protocol.
type NotificationService struct {
	notifications *notify.Store
	keys          *notify.KeySets
	controller    *notify.DismissalController
	engine        *notify.Engine
	log           *zap.SugaredLogger
}

func NewNotificationService(notifications *notify.Store, keys *notify.KeySets, controller *notify.DismissalController, engine *notify.Engine) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		keys:          keys,
		controller:    controller,
		engine:        engine,
		log:           zap.S().Named("notification_service"),
	}
}

// ListNotifications returns the feed in insertion order plus the badge count.
func (s *NotificationService) ListNotifications(ctx context.Context) (api.NotificationList, error) {
	items := s.notifications.List()

	list := api.NotificationList{
		Notifications: make([]api.Notification, 0, len(items)),
		UnseenCount:   len(s.keys.Get(ctx, notify.KeyUnseenNotificationIDs)),
	}
	for _, n := range items {
		list.Notifications = append(list.Notifications, notificationToAPI(n))
	}
	return list, nil
}

// MarkNotificationSeen acknowledges a single notification: the read marker is
// set, the badge entry drops, and the (job, status) pair is recorded so this
// state never lights the badge again.
func (s *NotificationService) MarkNotificationSeen(ctx context.Context, id string) error {
	n, ok := s.notifications.Get(id)
	if !ok {
		return NewErrNotificationNotFound(id)
	}

	s.markSeen(ctx, n)
	metrics.UpdateUnseenCountMetric(len(s.keys.Get(ctx, notify.KeyUnseenNotificationIDs)))
	return nil
}

// MarkAllNotificationsSeen acknowledges the whole feed. The tray calls this
// when it opens.
func (s *NotificationService) MarkAllNotificationsSeen(ctx context.Context) error {
	for _, n := range s.notifications.List() {
		if n.Seen {
			continue
		}
		s.markSeen(ctx, n)
	}

	// ids left behind by already-removed notifications go too
	if err := s.keys.Clear(ctx, notify.KeyUnseenNotificationIDs); err != nil {
		return err
	}

	metrics.UpdateUnseenCountMetric(0)
	return nil
}

// DismissNotification runs the dismissal protocol and, when a notification
// was actually removed, resyncs the feed against the last job snapshot so the
// change is visible immediately.
func (s *NotificationService) DismissNotification(ctx context.Context, id string, confirmed bool) (api.DismissResult, error) {
	result, err := s.controller.Dismiss(ctx, id, confirmed)
	if err != nil {
		switch {
		case errors.Is(err, notify.ErrNotificationNotFound):
			return api.DismissResult{}, NewErrNotificationNotFound(id)
		case errors.Is(err, notify.ErrNotDismissible):
			return api.DismissResult{}, NewErrNotificationNotDismissible(id)
		default:
			return api.DismissResult{}, err
		}
	}

	if result.Dismissed {
		if err := s.engine.Resync(ctx); err != nil {
			s.log.Errorf("resync after dismissal failed: %v", err)
		}
		metrics.UpdateUnseenCountMetric(len(s.keys.Get(ctx, notify.KeyUnseenNotificationIDs)))
	}

	return result, nil
}

func (s *NotificationService) markSeen(ctx context.Context, n notify.Notification) {
	s.notifications.MarkAsSeen(ctx, n.ID)

	if err := s.keys.Remove(ctx, notify.KeyUnseenNotificationIDs, n.ID); err != nil {
		s.log.Errorf("failed to drop %s from the unseen set: %v", n.ID, err)
	}
	if n.JobID != "" {
		if err := s.keys.Add(ctx, notify.KeySeenJobStatusKeys, notify.SeenKey(n.JobID, n.JobStatus)); err != nil {
			s.log.Errorf("failed to record seen key for job %s: %v", n.JobID, err)
		}
	}
}

func notificationToAPI(n notify.Notification) api.Notification {
	return api.Notification{
		ID:               n.ID,
		JobID:            n.JobID,
		JobStatus:        n.JobStatus,
		Type:             n.Type,
		Message:          n.Message,
		Seen:             n.Seen,
		AutoCloseMs:      n.AutoCloseMs,
		CreatedAt:        n.CreatedAt,
		UpdatedAt:        n.UpdatedAt,
		Description:      n.Description,
		DownloadUrls:     n.DownloadUrls,
		ExpiresAt:        n.ExpiresAt,
		Error:            n.Error,
		TotalSize:        n.TotalSize,
		FoundAssetsCount: n.FoundAssetsCount,
		SmallFilesCount:  n.SmallFilesCount,
		LargeFilesCount:  n.LargeFilesCount,
	}
}
