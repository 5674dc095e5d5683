package notify

import (
	"fmt"

	api "github.com/mediakit/asset-console/api/v1alpha1"
)

// failedAutoCloseMs is how long a failure notification stays on screen.
const failedAutoCloseMs = 10000

// Rendering is the display form of a job state: the tray message plus the
// behavior preset governing how the notification can be dismissed.
type Rendering struct {
	Message     string
	Type        api.NotificationType
	AutoCloseMs int
}

// Format maps a job's reported state to its notification rendering. It is a
// pure function: identical inputs always produce identical renderings.
//
// STAGING and PROCESSING expose a single 0-100 progress number covering two
// equally weighted backend stages, archive assembly (0-50) and multipart
// upload (50-100). Each half is rescaled to its own 0-100% so the message
// names the stage actually running.
func Format(status api.JobStatus, progress *int, description, errorText string) Rendering {
	switch status {
	case api.JobStatusInitiated:
		return Rendering{Message: "Initiating your bulk download...", Type: api.NotificationTypeSticky}

	case api.JobStatusAssessed:
		return Rendering{Message: "Assessing download requirements...", Type: api.NotificationTypeSticky}

	case api.JobStatusStaging:
		if progress == nil {
			return Rendering{Message: "Preparing download archive...", Type: api.NotificationTypeSticky}
		}
		return Rendering{Message: phaseMessage(*progress), Type: api.NotificationTypeSticky}

	case api.JobStatusProcessing:
		// unlike STAGING there is no generic fallback; a missing progress
		// reads as the very start of the archive phase
		p := 0
		if progress != nil {
			p = *progress
		}
		return Rendering{Message: phaseMessage(p), Type: api.NotificationTypeSticky}

	case api.JobStatusCompleted:
		message := description
		if message == "" {
			message = "Your download is ready!"
		}
		return Rendering{Message: message, Type: api.NotificationTypeStickyDismissible}

	case api.JobStatusFailed:
		reason := errorText
		if reason == "" {
			reason = "Unknown error"
		}
		return Rendering{
			Message:     fmt.Sprintf("Download failed: %s", reason),
			Type:        api.NotificationTypeDismissible,
			AutoCloseMs: failedAutoCloseMs,
		}

	default:
		return Rendering{
			Message: fmt.Sprintf("Download status: %s", status),
			Type:    api.NotificationTypeDismissible,
		}
	}
}

func phaseMessage(progress int) string {
	if progress <= 50 {
		return fmt.Sprintf("Creating archive: %d%% complete", progress*100/50)
	}
	return fmt.Sprintf("Staging archive: %d%% complete", (progress-50)*100/50)
}
