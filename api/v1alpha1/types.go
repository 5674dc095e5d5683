package v1alpha1

import "time"

// JobStatus is the lifecycle state reported by the bulk-download job API.
type JobStatus string

const (
	JobStatusInitiated  JobStatus = "INITIATED"
	JobStatusAssessed   JobStatus = "ASSESSED"
	JobStatusStaging    JobStatus = "STAGING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// JobRecord is one bulk-download job as reported by the job API on each
// poll cycle. Descriptive fields are passed through to the notification
// untouched.
type JobRecord struct {
	JobID            string     `json:"jobId"`
	Status           JobStatus  `json:"status"`
	Progress         *int       `json:"progress,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	Description      string     `json:"description,omitempty"`
	DownloadUrls     []string   `json:"downloadUrls,omitempty"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	Error            string     `json:"error,omitempty"`
	TotalSize        *int64     `json:"totalSize,omitempty"`
	FoundAssetsCount *int       `json:"foundAssetsCount,omitempty"`
	SmallFilesCount  *int       `json:"smallFilesCount,omitempty"`
	LargeFilesCount  *int       `json:"largeFilesCount,omitempty"`
}

// NotificationType selects the dismissal behavior of a notification.
type NotificationType string

const (
	// NotificationTypeSticky has no dismiss affordance; it is removed only
	// when its job disappears from the backend snapshot.
	NotificationTypeSticky NotificationType = "sticky"
	// NotificationTypeStickyDismissible carries an explicit Dismiss button
	// and may require confirmation before dismissal.
	NotificationTypeStickyDismissible NotificationType = "sticky-dismissible"
	// NotificationTypeDismissible carries an "X" button and an optional
	// auto-close timer.
	NotificationTypeDismissible NotificationType = "dismissible"
)

// NotificationList is the tray listing response.
type NotificationList struct {
	Notifications []Notification `json:"notifications"`
	UnseenCount   int            `json:"unseenCount"`
}

// Notification is the tray-facing view of one notification.
type Notification struct {
	ID               string           `json:"id"`
	JobID            string           `json:"jobId,omitempty"`
	JobStatus        JobStatus        `json:"jobStatus,omitempty"`
	Type             NotificationType `json:"type"`
	Message          string           `json:"message"`
	Seen             bool             `json:"seen"`
	AutoCloseMs      int              `json:"autoCloseMs,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
	Description      string           `json:"description,omitempty"`
	DownloadUrls     []string         `json:"downloadUrls,omitempty"`
	ExpiresAt        *time.Time       `json:"expiresAt,omitempty"`
	Error            string           `json:"error,omitempty"`
	TotalSize        *int64           `json:"totalSize,omitempty"`
	FoundAssetsCount *int             `json:"foundAssetsCount,omitempty"`
	SmallFilesCount  *int             `json:"smallFilesCount,omitempty"`
	LargeFilesCount  *int             `json:"largeFilesCount,omitempty"`
}

// DismissResult reports the outcome of a dismissal request.
type DismissResult struct {
	Dismissed            bool `json:"dismissed"`
	RequiresConfirmation bool `json:"requiresConfirmation"`
}

// Error is the common error payload.
type Error struct {
	Message   string  `json:"message"`
	RequestId *string `json:"request_id,omitempty"`
}
