package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dorozco/marketpulse-backend/api/responses"
	"github.com/dorozco/marketpulse-backend/api/validators"
	"github.com/dorozco/marketpulse-backend/internal/notifications"
	"github.com/dorozco/marketpulse-backend/pkg/enums"
	pkgerrors "github.com/dorozco/marketpulse-backend/pkg/errors"
	"github.com/dorozco/marketpulse-backend/pkg/logger"
	"github.com/dorozco/marketpulse-backend/pkg/types"
)

type createNotificationRequest struct {
	Title    string                    `json:"title" validate:"required,min=1,max=200"`
	Message  string                    `json:"message" validate:"required,min=1,max=2000"`
	Category string                    `json:"category" validate:"omitempty,oneof=orders inventory revenue system"`
	Priority string                    `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Actions  types.NotificationActions `json:"actions" validate:"omitempty,max=5,dive"`
	Metadata types.JSONMap             `json:"metadata"`
}

type markAllReadRequest struct {
	Category string `json:"category" validate:"omitempty,oneof=orders inventory revenue system"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
}

// ListNotifications returns paginated notifications with read-state,
// category and priority filters.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params := notifications.ListParams{}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit

		params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

		unreadOnly, err := validators.ParseQueryBool(r, "unreadOnly")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.UnreadOnly = unreadOnly

		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseNotificationCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			params.Category = &category
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("priority")); raw != "" {
			priority, err := enums.ParseNotificationPriority(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid priority"))
				return
			}
			params.Priority = &priority
		}

		resp, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// GetNotification returns one notification by id.
func GetNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "notificationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification id"))
			return
		}

		notification, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, notification)
	}
}

// CreateNotification persists and broadcasts a new notification.
func CreateNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createNotificationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notification, err := svc.Create(r.Context(), notifications.CreateInput{
			Title:    validators.SanitizeString(body.Title, 200),
			Message:  validators.SanitizeString(body.Message, 2000),
			Category: enums.NotificationCategory(body.Category),
			Priority: enums.NotificationPriority(body.Priority),
			Actions:  body.Actions,
			Metadata: body.Metadata,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, notification)
	}
}

// MarkNotificationRead transitions one notification to read; repeat calls
// succeed without changing readAt.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "notificationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid notification id"))
			return
		}

		if err := svc.MarkRead(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}

// MarkAllNotificationsRead marks every unread notification matching the
// optional category/priority filter.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body markAllReadRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		filter := notifications.ReadFilter{}
		if body.Category != "" {
			category := enums.NotificationCategory(body.Category)
			filter.Category = &category
		}
		if body.Priority != "" {
			priority := enums.NotificationPriority(body.Priority)
			filter.Priority = &priority
		}

		updated, err := svc.MarkAllRead(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}
