package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"

	api "github.com/mediakit/asset-console/api/v1alpha1"
	"github.com/mediakit/asset-console/internal/events"
	"github.com/mediakit/asset-console/pkg/metrics"
)

// Engine applies the reconciliation protocol to the notification store. Each
// cycle it diffs the feed against the latest job snapshot and applies the
// resulting mutations together with their key-set bookkeeping: duplicate
// resolution first, then creates, in-place updates, and removals for jobs that
// vanished server-side.
//
// The engine serializes cycles: a poll delivery and a Resync triggered by a
// dismissal never interleave.
type Engine struct {
	mu         sync.Mutex
	store      *Store
	keys       *KeySets
	controller *DismissalController
	producer   *events.EventProducer
	log        *zap.SugaredLogger

	lastJobs    []api.JobRecord
	hasSnapshot bool
}

func NewEngine(store *Store, keys *KeySets, controller *DismissalController, producer *events.EventProducer) *Engine {
	return &Engine{
		store:      store,
		keys:       keys,
		controller: controller,
		producer:   producer,
		log:        zap.S().Named("reconcile"),
	}
}

// Reconcile brings the feed into agreement with the given job snapshot.
func (e *Engine) Reconcile(ctx context.Context, jobs []api.JobRecord) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastJobs = jobs
	e.hasSnapshot = true

	return e.reconcile(ctx, jobs)
}

// Resync re-runs reconciliation against the last snapshot the engine saw.
// Dismissal paths call it so the feed reflects a dismissal immediately instead
// of waiting out the poll interval. Before the first snapshot it is a no-op.
func (e *Engine) Resync(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.hasSnapshot {
		return nil
	}
	return e.reconcile(ctx, e.lastJobs)
}

func (e *Engine) reconcile(ctx context.Context, jobs []api.JobRecord) error {
	dismissedJobIDs := e.keys.Get(ctx, KeyDismissedJobIDs)

	// dismissal records and acknowledged statuses for jobs absent from the
	// snapshot expire with the job, even when no notification was left to
	// remove
	present := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		present[job.JobID] = true
	}
	for _, jobID := range dismissedJobIDs {
		if !present[jobID] {
			if err := e.keys.Remove(ctx, KeyDismissedJobIDs, jobID); err != nil {
				e.log.Errorf("failed to release dismissal record for job %s: %v", jobID, err)
			}
			if err := e.keys.RemoveByPrefix(ctx, KeySeenJobStatusKeys, jobID+":"); err != nil {
				e.log.Errorf("failed to release seen keys for job %s: %v", jobID, err)
			}
		}
	}

	diff := Reconcile(e.store.List(), jobs, dismissedJobIDs)
	if diff.Empty() {
		// timers are process-local: after a restart a persisted dismissible
		// notification needs its auto-close timer re-armed even when the
		// snapshot left the feed untouched
		e.controller.SyncTimers(e.store.List())
		metrics.IncreaseReconcileCyclesTotalMetric("noop")
		e.updateGauges(ctx)
		return nil
	}

	for _, n := range diff.Duplicates {
		e.store.Dismiss(ctx, n.ID)
		if err := e.keys.Remove(ctx, KeyUnseenNotificationIDs, n.ID); err != nil {
			e.log.Errorf("failed to drop duplicate %s from the unseen set: %v", n.ID, err)
		}
	}

	for _, n := range diff.Creates {
		id, err := e.store.Add(ctx, n)
		if err != nil {
			e.log.Errorf("failed to add notification for job %s: %v", n.JobID, err)
			continue
		}
		// a status the user already acknowledged in a previous session does
		// not light the badge again
		if !e.keys.Contains(ctx, KeySeenJobStatusKeys, SeenKey(n.JobID, n.JobStatus)) {
			if err := e.keys.Add(ctx, KeyUnseenNotificationIDs, id); err != nil {
				e.log.Errorf("failed to mark notification %s unseen: %v", id, err)
			}
		}
		n.ID = id
		emitNotificationEvent(e.producer, events.NotificationCreatedKind, n)
	}

	for _, u := range diff.Updates {
		completedUnacked := u.CompletedTransition &&
			!e.keys.Contains(ctx, KeySeenJobStatusKeys, SeenKey(u.Job.JobID, api.JobStatusCompleted))

		e.store.Update(ctx, u.ID, func(n *Notification) {
			n.JobStatus = u.Job.Status
			n.Type = u.Rendering.Type
			n.Message = u.Rendering.Message
			n.AutoCloseMs = u.Rendering.AutoCloseMs
			n.Description = u.Job.Description
			n.DownloadUrls = u.Job.DownloadUrls
			n.ExpiresAt = u.Job.ExpiresAt
			n.Error = u.Job.Error
			n.TotalSize = u.Job.TotalSize
			n.FoundAssetsCount = u.Job.FoundAssetsCount
			n.SmallFilesCount = u.Job.SmallFilesCount
			n.LargeFilesCount = u.Job.LargeFilesCount
			// completion is the one transition that resurfaces an already
			// read notification
			if completedUnacked {
				n.Seen = false
			}
		})

		if completedUnacked {
			if err := e.keys.Add(ctx, KeyUnseenNotificationIDs, u.ID); err != nil {
				e.log.Errorf("failed to mark notification %s unseen: %v", u.ID, err)
			}
		}

		if updated, ok := e.store.Get(u.ID); ok {
			emitNotificationEvent(e.producer, events.NotificationUpdatedKind, updated)
		}
	}

	for _, n := range diff.Removes {
		e.controller.CancelTimer(n.ID)
		e.store.Dismiss(ctx, n.ID)
		// the job is gone server-side, so the dismissal record and the
		// acknowledged statuses for it have nothing left to guard
		if err := e.keys.Remove(ctx, KeyDismissedJobIDs, n.JobID); err != nil {
			e.log.Errorf("failed to release dismissal record for job %s: %v", n.JobID, err)
		}
		if err := e.keys.RemoveByPrefix(ctx, KeySeenJobStatusKeys, n.JobID+":"); err != nil {
			e.log.Errorf("failed to release seen keys for job %s: %v", n.JobID, err)
		}
		if err := e.keys.Remove(ctx, KeyUnseenNotificationIDs, n.ID); err != nil {
			e.log.Errorf("failed to drop %s from the unseen set: %v", n.ID, err)
		}
		emitNotificationEvent(e.producer, events.NotificationDismissedKind, n)
	}

	e.controller.SyncTimers(e.store.List())

	metrics.IncreaseReconcileCyclesTotalMetric("applied")
	e.updateGauges(ctx)

	e.log.Debugf("reconciled %d jobs: %d created, %d updated, %d removed, %d duplicates dropped",
		len(jobs), len(diff.Creates), len(diff.Updates), len(diff.Removes), len(diff.Duplicates))

	return nil
}

func (e *Engine) updateGauges(ctx context.Context) {
	counts := map[api.NotificationType]int{
		api.NotificationTypeSticky:            0,
		api.NotificationTypeStickyDismissible: 0,
		api.NotificationTypeDismissible:       0,
	}
	for _, n := range e.store.List() {
		counts[n.Type]++
	}
	for t, c := range counts {
		metrics.UpdateNotificationCountMetric(string(t), c)
	}
	metrics.UpdateUnseenCountMetric(len(e.keys.Get(ctx, KeyUnseenNotificationIDs)))
}
