package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dorozco/marketpulse-backend/internal/notifications"
	"github.com/dorozco/marketpulse-backend/pkg/db/models"
	"github.com/dorozco/marketpulse-backend/pkg/enums"
	pkgerrors "github.com/dorozco/marketpulse-backend/pkg/errors"
	"github.com/dorozco/marketpulse-backend/pkg/logger"
)

type fakeNotificationsService struct {
	lastList   notifications.ListParams
	lastCreate notifications.CreateInput
	lastFilter notifications.ReadFilter
	markedRead []uuid.UUID
	created    *models.Notification
	err        error
}

func (f *fakeNotificationsService) Create(ctx context.Context, input notifications.CreateInput) (*models.Notification, error) {
	f.lastCreate = input
	if f.err != nil {
		return nil, f.err
	}
	if f.created == nil {
		f.created = &models.Notification{
			ID:        uuid.New(),
			Title:     input.Title,
			Message:   input.Message,
			Category:  input.Category,
			Priority:  input.Priority,
			CreatedAt: time.Now(),
		}
	}
	return f.created, nil
}

func (f *fakeNotificationsService) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Notification{ID: id, Title: "t", Message: "m"}, nil
}

func (f *fakeNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	f.lastList = params
	if f.err != nil {
		return nil, f.err
	}
	return &notifications.ListResult{}, nil
}

func (f *fakeNotificationsService) MarkRead(ctx context.Context, id uuid.UUID) error {
	f.markedRead = append(f.markedRead, id)
	return f.err
}

func (f *fakeNotificationsService) MarkAllRead(ctx context.Context, filter notifications.ReadFilter) (int64, error) {
	f.lastFilter = filter
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func newNotificationsRouter(svc notifications.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	router := chi.NewRouter()
	router.Route("/api/v1/notifications", func(r chi.Router) {
		r.Get("/", ListNotifications(svc, logg))
		r.Post("/", CreateNotification(svc, logg))
		r.Post("/read-all", MarkAllNotificationsRead(svc, logg))
		r.Get("/{notificationId}", GetNotification(svc, logg))
		r.Post("/{notificationId}/read", MarkNotificationRead(svc, logg))
	})
	return router
}

func TestListNotifications_ParsesFilters(t *testing.T) {
	svc := &fakeNotificationsService{}
	router := newNotificationsRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=10&unreadOnly=true&category=orders&priority=high", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 10, svc.lastList.Limit)
	require.True(t, svc.lastList.UnreadOnly)
	require.NotNil(t, svc.lastList.Category)
	require.Equal(t, enums.NotificationCategoryOrders, *svc.lastList.Category)
	require.NotNil(t, svc.lastList.Priority)
	require.Equal(t, enums.NotificationPriorityHigh, *svc.lastList.Priority)
}

func TestListNotifications_RejectsUnknownCategory(t *testing.T) {
	svc := &fakeNotificationsService{}
	router := newNotificationsRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?category=gossip", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateNotification_Returns201(t *testing.T) {
	svc := &fakeNotificationsService{}
	router := newNotificationsRouter(svc)

	body := `{"title":"Low stock","message":"3 left","category":"inventory","priority":"high"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Low stock", svc.lastCreate.Title)
	require.Equal(t, enums.NotificationCategoryInventory, svc.lastCreate.Category)
}

func TestCreateNotification_RejectsInvalidBody(t *testing.T) {
	svc := &fakeNotificationsService{}
	router := newNotificationsRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(`{"title":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkNotificationRead_InvalidID(t *testing.T) {
	svc := &fakeNotificationsService{}
	router := newNotificationsRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/nope/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, svc.markedRead)
}

func TestMarkNotificationRead_NotFound(t *testing.T) {
	svc := &fakeNotificationsService{err: pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")}
	router := newNotificationsRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+uuid.NewString()+"/read", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkAllNotificationsRead_WithFilter(t *testing.T) {
	svc := &fakeNotificationsService{}
	router := newNotificationsRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", strings.NewReader(`{"category":"orders"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"updated":3`)
	require.NotNil(t, svc.lastFilter.Category)
	require.Equal(t, enums.NotificationCategoryOrders, *svc.lastFilter.Category)
}

func TestMarkAllNotificationsRead_EmptyBodyAllowed(t *testing.T) {
	svc := &fakeNotificationsService{}
	router := newNotificationsRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, svc.lastFilter.Category)
	require.Nil(t, svc.lastFilter.Priority)
}
