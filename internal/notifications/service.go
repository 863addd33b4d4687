package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dorozco/marketpulse-backend/pkg/db/models"
	"github.com/dorozco/marketpulse-backend/pkg/enums"
	pkgerrors "github.com/dorozco/marketpulse-backend/pkg/errors"
	"github.com/dorozco/marketpulse-backend/pkg/pagination"
	"github.com/dorozco/marketpulse-backend/pkg/types"
)

// Broadcaster pushes a freshly created notification to open streams.
type Broadcaster interface {
	PublishNotification(notification models.Notification)
}

// Service defines notification create/list/read operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Notification, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, filter ReadFilter) (int64, error)
}

type service struct {
	repo Repository
	bus  Broadcaster
	now  func() time.Time
}

// CreateInput carries the fields for a new notification. Notifications are
// always created unread.
type CreateInput struct {
	Title    string
	Message  string
	Category enums.NotificationCategory
	Priority enums.NotificationPriority
	Actions  types.NotificationActions
	Metadata types.JSONMap
}

// ListParams configures filtering and pagination for notifications.
type ListParams struct {
	Limit      int
	Cursor     string
	UnreadOnly bool
	Category   *enums.NotificationCategory
	Priority   *enums.NotificationPriority
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository, bus Broadcaster) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if bus == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification broadcaster required")
	}
	return &service{
		repo: repo,
		bus:  bus,
		now:  time.Now,
	}, nil
}

// Create persists an unread notification and publishes it so that open
// streams see it immediately.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Notification, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}

	category := input.Category
	if category == "" {
		category = enums.NotificationCategorySystem
	}
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.NotificationPriorityLow
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority")
	}

	notification := &models.Notification{
		ID:        uuid.New(),
		Title:     title,
		Message:   message,
		Category:  category,
		Priority:  priority,
		Actions:   input.Actions,
		Metadata:  input.Metadata,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}

	s.bus.PublishNotification(*notification)
	return notification, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find notification")
	}
	return notification, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Category != nil && !params.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category filter")
	}
	if params.Priority != nil && !params.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority filter")
	}

	query := listNotificationsParams{
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
		Category:   params.Category,
		Priority:   params.Priority,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}

	return &ListResult{
		Items:  rows,
		Cursor: cursor,
	}, nil
}

// MarkRead transitions a notification to read at most once. Marking an
// already read notification succeeds without touching readAt again.
func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}

	result, err := s.repo.MarkRead(ctx, id, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, filter ReadFilter) (int64, error) {
	if filter.Category != nil && !filter.Category.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid category filter")
	}
	if filter.Priority != nil && !filter.Priority.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid priority filter")
	}

	count, err := s.repo.MarkAllRead(ctx, filter, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}
