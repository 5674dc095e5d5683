package events

// NotificationEvent describes one lifecycle change of a tray notification.
type NotificationEvent struct {
	NotificationID string `json:"notification_id"`
	JobID          string `json:"job_id,omitempty"`
	JobStatus      string `json:"job_status,omitempty"`
	Type           string `json:"type"`
	Message        string `json:"message"`
}
