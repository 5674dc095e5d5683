// Package v1alpha1 exposes the notification tray over HTTP.
package v1alpha1

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	api "github.com/mediakit/asset-console/api/v1alpha1"
	"github.com/mediakit/asset-console/internal/service"
	"github.com/mediakit/asset-console/pkg/requestid"
)

type ServiceHandler struct {
	notificationSrv *service.NotificationService
}

func NewServiceHandler(notificationSrv *service.NotificationService) *ServiceHandler {
	return &ServiceHandler{notificationSrv: notificationSrv}
}

// RegisterRoutes mounts the tray endpoints on the router.
func (h *ServiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/notifications", h.ListNotifications)
	r.Post("/notifications/seen", h.MarkAllNotificationsSeen)
	r.Post("/notifications/{id}/seen", h.MarkNotificationSeen)
	r.Delete("/notifications/{id}", h.DismissNotification)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, api.Error{
		Message:   message,
		RequestId: requestid.FromContextPtr(r.Context()),
	})
}
