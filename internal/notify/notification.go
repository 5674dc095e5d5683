// Package notify implements the job-notification reconciliation core: a
// durable notification feed kept in agreement with the bulk-download job
// snapshots delivered by the poller, plus the dismissal protocols the tray
// drives against it.
package notify

import (
	"time"

	api "github.com/mediakit/asset-console/api/v1alpha1"
)

// Durable storage keys. Their names and JSON payloads are a persistence
// contract shared with previous sessions, so they must not change.
const (
	KeyNotifications         = "notifications"
	KeyUnseenNotificationIDs = "unseenNotificationIds"
	KeySeenJobStatusKeys     = "seenJobStatusKeys"
	KeyDismissedJobIDs       = "dismissedJobIds"
)

// Notification is one entry of the tray feed. Job-backed notifications mirror
// the last reconciled state of their job; the descriptive fields are passed
// through from the job record untouched.
type Notification struct {
	ID               string               `json:"id"`
	JobID            string               `json:"jobId,omitempty"`
	JobStatus        api.JobStatus        `json:"jobStatus,omitempty"`
	Type             api.NotificationType `json:"type"`
	Message          string               `json:"message"`
	Seen             bool                 `json:"seen"`
	AutoCloseMs      int                  `json:"autoCloseMs,omitempty"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
	Description      string               `json:"description,omitempty"`
	DownloadUrls     []string             `json:"downloadUrls,omitempty"`
	ExpiresAt        *time.Time           `json:"expiresAt,omitempty"`
	Error            string               `json:"error,omitempty"`
	TotalSize        *int64               `json:"totalSize,omitempty"`
	FoundAssetsCount *int                 `json:"foundAssetsCount,omitempty"`
	SmallFilesCount  *int                 `json:"smallFilesCount,omitempty"`
	LargeFilesCount  *int                 `json:"largeFilesCount,omitempty"`
}

// SeenKey is the persisted form of an acknowledged (job, status) pair.
func SeenKey(jobID string, status api.JobStatus) string {
	return jobID + ":" + string(status)
}
