package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	api "github.com/mediakit/asset-console/api/v1alpha1"
	"github.com/mediakit/asset-console/internal/events"
	"github.com/mediakit/asset-console/pkg/metrics"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotDismissible       = errors.New("notification is not dismissible")
)

// deleteJobTimeout bounds the cascade delete-job call that follows a
// confirmed dismissal. The call is fire-and-forget: the notification is
// already gone when it runs, and a failure is logged but never surfaced.
const deleteJobTimeout = 5 * time.Second

// JobDeleter issues the server-side cascade delete of a finished job.
type JobDeleter interface {
	DeleteJob(ctx context.Context, jobID string) error
}

// DismissalController runs the user-facing dismissal protocols on top of the
// notification store: the confirm-then-cascade flow for completed downloads,
// plain removal for everything else, and the auto-close timers failure
// notifications carry.
type DismissalController struct {
	store     *Store
	keys      *KeySets
	deleter   JobDeleter
	scheduler Scheduler
	producer  *events.EventProducer
	log       *zap.SugaredLogger
}

func NewDismissalController(store *Store, keys *KeySets, deleter JobDeleter, scheduler Scheduler, producer *events.EventProducer) *DismissalController {
	return &DismissalController{
		store:     store,
		keys:      keys,
		deleter:   deleter,
		scheduler: scheduler,
		producer:  producer,
		log:       zap.S().Named("dismissal"),
	}
}

// Dismiss runs the dismissal protocol for the notification with the given id.
//
// Sticky notifications cannot be dismissed at all. A completed download asks
// for confirmation on the first attempt and is only removed once the caller
// confirms, at which point the backing job is deleted server-side as well.
// Every other dismissible notification is removed immediately.
func (c *DismissalController) Dismiss(ctx context.Context, id string, confirmed bool) (api.DismissResult, error) {
	n, ok := c.store.Get(id)
	if !ok {
		return api.DismissResult{}, ErrNotificationNotFound
	}

	switch n.Type {
	case api.NotificationTypeSticky:
		return api.DismissResult{}, ErrNotDismissible

	case api.NotificationTypeStickyDismissible:
		if n.JobStatus == api.JobStatusCompleted && !confirmed {
			return api.DismissResult{RequiresConfirmation: true}, nil
		}
	}

	c.remove(ctx, n)

	if n.JobID != "" && n.JobStatus == api.JobStatusCompleted {
		go c.deleteJob(n.JobID)
	}

	return api.DismissResult{Dismissed: true}, nil
}

// SyncTimers arms auto-close timers for every notification that carries an
// auto-close delay. It is called after every reconciliation cycle so timers
// survive feed churn; a timer whose notification was removed by another path
// fires against an absent id and no-ops.
func (c *DismissalController) SyncTimers(current []Notification) {
	for _, n := range current {
		if n.AutoCloseMs <= 0 || c.scheduler.Scheduled(n.ID) {
			continue
		}
		id := n.ID
		c.scheduler.Schedule(id, time.Duration(n.AutoCloseMs)*time.Millisecond, func() {
			c.autoClose(id)
		})
	}
}

// CancelTimer drops the auto-close timer for id, if any.
func (c *DismissalController) CancelTimer(id string) {
	c.scheduler.Cancel(id)
}

// Teardown cancels every outstanding auto-close timer.
func (c *DismissalController) Teardown() {
	c.scheduler.Stop()
}

// autoClose fires when an auto-close delay elapses. The notification is
// removed exactly like a user dismissal, minus the cascade: auto-closing
// notifications are failures, not completed downloads.
func (c *DismissalController) autoClose(id string) {
	n, ok := c.store.Get(id)
	if !ok {
		return
	}
	c.log.Debugf("auto-closing notification %s for job %s", id, n.JobID)
	c.remove(context.Background(), n)
}

// remove takes the notification out of the feed. The job id is recorded as
// dismissed before the feed mutation so a poll cycle racing this removal can
// never recreate the notification.
func (c *DismissalController) remove(ctx context.Context, n Notification) {
	c.scheduler.Cancel(n.ID)

	if n.JobID != "" {
		if err := c.keys.Add(ctx, KeyDismissedJobIDs, n.JobID); err != nil {
			c.log.Errorf("failed to record dismissed job %s: %v", n.JobID, err)
		}
	}

	c.store.Dismiss(ctx, n.ID)

	if err := c.keys.Remove(ctx, KeyUnseenNotificationIDs, n.ID); err != nil {
		c.log.Errorf("failed to drop %s from the unseen set: %v", n.ID, err)
	}

	emitNotificationEvent(c.producer, events.NotificationDismissedKind, n)
}

func (c *DismissalController) deleteJob(jobID string) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteJobTimeout)
	defer cancel()

	if err := c.deleter.DeleteJob(ctx, jobID); err != nil {
		metrics.IncreaseJobDeletionsTotalMetric("failed")
		c.log.Errorf("failed to delete job %s after dismissal: %v", jobID, err)
		return
	}
	metrics.IncreaseJobDeletionsTotalMetric("deleted")
}

func emitNotificationEvent(producer *events.EventProducer, kind string, n Notification) {
	if producer == nil {
		return
	}
	data, err := json.Marshal(events.NotificationEvent{
		NotificationID: n.ID,
		JobID:          n.JobID,
		JobStatus:      string(n.JobStatus),
		Type:           string(n.Type),
		Message:        n.Message,
	})
	if err != nil {
		zap.S().Named("notify").Errorf("failed to serialize notification event: %v", err)
		return
	}
	if err := producer.Write(context.TODO(), kind, bytes.NewReader(data)); err != nil {
		zap.S().Named("notify").Errorf("failed to emit notification event: %v", err)
	}
}
