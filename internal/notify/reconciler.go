package notify

import (
	"reflect"
	"time"

	api "github.com/mediakit/asset-console/api/v1alpha1"
)

// Diff is the set of mutations that brings the feed into agreement with a
// job snapshot. Duplicates are resolved before anything else is applied.
type Diff struct {
	Duplicates []Notification
	Creates    []Notification
	Updates    []Update
	Removes    []Notification
}

// Update describes the in-place mutation of one job-backed notification.
type Update struct {
	ID        string
	Job       api.JobRecord
	Rendering Rendering
	// CompletedTransition is set when this update moves the job into
	// COMPLETED from any other status.
	CompletedTransition bool
}

// Empty reports whether applying the diff would change anything.
func (d Diff) Empty() bool {
	return len(d.Duplicates) == 0 && len(d.Creates) == 0 && len(d.Updates) == 0 && len(d.Removes) == 0
}

// Reconcile computes the diff between the current feed and a freshly polled
// job snapshot. It is pure: no I/O, no mutation of its inputs, deterministic
// for identical inputs. Reconciling the result of a previous application of
// the same snapshot yields an empty diff.
//
// Order matters: duplicate resolution runs first so the create/update/remove
// decisions below see at most one notification per job. Jobs whose id is in
// dismissedJobIDs are skipped entirely; notifications whose job has left the
// snapshot are removed.
func Reconcile(current []Notification, jobs []api.JobRecord, dismissedJobIDs []string) Diff {
	var diff Diff

	dismissed := make(map[string]bool, len(dismissedJobIDs))
	for _, id := range dismissedJobIDs {
		dismissed[id] = true
	}

	// Resolve duplicates: keep the most recently touched notification per
	// job, schedule the rest for dismissal.
	byJob := make(map[string]Notification)
	for _, n := range current {
		if n.JobID == "" {
			continue
		}
		kept, ok := byJob[n.JobID]
		if !ok {
			byJob[n.JobID] = n
			continue
		}
		if touchedAt(n).After(touchedAt(kept)) {
			diff.Duplicates = append(diff.Duplicates, kept)
			byJob[n.JobID] = n
		} else {
			diff.Duplicates = append(diff.Duplicates, n)
		}
	}

	inSnapshot := make(map[string]bool, len(jobs))
	created := make(map[string]bool)
	for _, job := range jobs {
		inSnapshot[job.JobID] = true

		if dismissed[job.JobID] {
			continue
		}

		rendering := Format(job.Status, job.Progress, job.Description, job.Error)

		existing, ok := byJob[job.JobID]
		if !ok {
			// a malformed snapshot repeating a job id still yields one
			// notification
			if !created[job.JobID] {
				created[job.JobID] = true
				diff.Creates = append(diff.Creates, newNotification(job, rendering))
			}
			continue
		}

		if existing.JobStatus != job.Status ||
			existing.Message != rendering.Message ||
			!reflect.DeepEqual(existing.DownloadUrls, job.DownloadUrls) {
			diff.Updates = append(diff.Updates, Update{
				ID:                  existing.ID,
				Job:                 job,
				Rendering:           rendering,
				CompletedTransition: job.Status == api.JobStatusCompleted && existing.JobStatus != api.JobStatusCompleted,
			})
		}
	}

	// Remove notifications whose job no longer exists server-side. Duplicates
	// already scheduled for dismissal are not removed twice.
	duplicate := make(map[string]bool, len(diff.Duplicates))
	for _, n := range diff.Duplicates {
		duplicate[n.ID] = true
	}
	for _, n := range current {
		if n.JobID == "" || inSnapshot[n.JobID] || duplicate[n.ID] {
			continue
		}
		diff.Removes = append(diff.Removes, n)
	}

	return diff
}

func newNotification(job api.JobRecord, rendering Rendering) Notification {
	return Notification{
		JobID:            job.JobID,
		JobStatus:        job.Status,
		Type:             rendering.Type,
		Message:          rendering.Message,
		AutoCloseMs:      rendering.AutoCloseMs,
		Description:      job.Description,
		DownloadUrls:     job.DownloadUrls,
		ExpiresAt:        job.ExpiresAt,
		Error:            job.Error,
		TotalSize:        job.TotalSize,
		FoundAssetsCount: job.FoundAssetsCount,
		SmallFilesCount:  job.SmallFilesCount,
		LargeFilesCount:  job.LargeFilesCount,
	}
}

func touchedAt(n Notification) time.Time {
	if n.UpdatedAt.After(n.CreatedAt) {
		return n.UpdatedAt
	}
	return n.CreatedAt
}
