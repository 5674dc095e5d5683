package v1alpha1

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mediakit/asset-console/internal/service"
)

func (h *ServiceHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.notificationSrv.ListNotifications(r.Context())
	if err != nil {
		zap.S().Named("notification_handler").Errorf("failed to list notifications: %v", err)
		writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to list notifications: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ServiceHandler) MarkNotificationSeen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.notificationSrv.MarkNotificationSeen(r.Context(), id); err != nil {
		switch err.(type) {
		case *service.ErrNotificationNotFound:
			writeError(w, r, http.StatusNotFound, err.Error())
		default:
			zap.S().Named("notification_handler").Errorf("failed to mark notification %s seen: %v", id, err)
			writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to mark notification as seen: %v", err))
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ServiceHandler) MarkAllNotificationsSeen(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationSrv.MarkAllNotificationsSeen(r.Context()); err != nil {
		zap.S().Named("notification_handler").Errorf("failed to mark all notifications seen: %v", err)
		writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to mark notifications as seen: %v", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DismissNotification runs the dismissal protocol. A completed download that
// has not been confirmed yet answers 409 with requiresConfirmation set; the
// tray retries with ?confirm=true.
func (h *ServiceHandler) DismissNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	confirmed := r.URL.Query().Get("confirm") == "true"

	result, err := h.notificationSrv.DismissNotification(r.Context(), id, confirmed)
	if err != nil {
		switch err.(type) {
		case *service.ErrNotificationNotFound:
			writeError(w, r, http.StatusNotFound, err.Error())
		case *service.ErrNotificationNotDismissible:
			writeError(w, r, http.StatusForbidden, err.Error())
		default:
			zap.S().Named("notification_handler").Errorf("failed to dismiss notification %s: %v", id, err)
			writeError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to dismiss notification: %v", err))
		}
		return
	}

	if result.RequiresConfirmation {
		writeJSON(w, http.StatusConflict, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
