package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dorozco/marketpulse-backend/pkg/enums"
	"github.com/dorozco/marketpulse-backend/pkg/logger"
	"github.com/dorozco/marketpulse-backend/pkg/types"
)

const (
	eventOrderPlaced    = "order.placed"
	eventOrderCancelled = "order.cancelled"
)

// Consumer watches order events and turns them into in-app notifications.
// Notifications go through the service so they are persisted and broadcast
// to open streams in one step.
type Consumer struct {
	service      Service
	subscription *pubsub.Subscriber
	logg         *logger.Logger
}

// NewConsumer builds an order event consumer.
func NewConsumer(service Service, subscription *pubsub.Subscriber, logg *logger.Logger) (*Consumer, error) {
	if service == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("orders subscription required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		service:      service,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

type orderEventPayload struct {
	OrderID    uuid.UUID `json:"orderId"`
	UserID     uuid.UUID `json:"userId"`
	TotalCents int64     `json:"totalCents"`
	Reason     string    `json:"reason,omitempty"`
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(c.logg.WithComponent(ctx, "order-events"), map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != eventOrderPlaced && eventType != eventOrderCancelled {
		c.logg.Info(logCtx, "skipping unhandled event")
		return processResult{ack: true}
	}

	var payload orderEventPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		return processResult{ack: true}
	}
	if payload.OrderID == uuid.Nil {
		c.logg.Error(logCtx, "order id missing", nil)
		return processResult{ack: true}
	}

	logCtx = c.logg.WithField(logCtx, "order_id", payload.OrderID.String())

	input := buildOrderNotification(eventType, payload)
	if _, err := c.service.Create(ctx, input); err != nil {
		c.logg.Error(logCtx, "notification creation failed", err)
		return processResult{nack: true}
	}

	c.logg.Info(logCtx, "order event notification created")
	return processResult{ack: true}
}

func buildOrderNotification(eventType string, payload orderEventPayload) CreateInput {
	orderLink := fmt.Sprintf("/orders/%s", payload.OrderID)
	total := decimal.New(payload.TotalCents, -2)

	if eventType == eventOrderCancelled {
		message := fmt.Sprintf("Order %s was cancelled.", payload.OrderID)
		if payload.Reason != "" {
			message = fmt.Sprintf("Order %s was cancelled: %s", payload.OrderID, payload.Reason)
		}
		return CreateInput{
			Title:    "Order cancelled",
			Message:  message,
			Category: enums.NotificationCategoryOrders,
			Priority: enums.NotificationPriorityHigh,
			Actions: types.NotificationActions{
				{Label: "View order", URL: orderLink},
			},
			Metadata: types.JSONMap{
				"orderId": payload.OrderID.String(),
			},
		}
	}

	return CreateInput{
		Title:    "New order placed",
		Message:  fmt.Sprintf("Order %s was placed for $%s.", payload.OrderID, total.StringFixed(2)),
		Category: enums.NotificationCategoryOrders,
		Priority: enums.NotificationPriorityMedium,
		Actions: types.NotificationActions{
			{Label: "View order", URL: orderLink},
		},
		Metadata: types.JSONMap{
			"orderId":    payload.OrderID.String(),
			"totalCents": payload.TotalCents,
		},
	}
}
