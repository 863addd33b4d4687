package notifications

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dorozco/marketpulse-backend/pkg/enums"
)

func TestBuildOrderNotification_Placed(t *testing.T) {
	orderID := uuid.New()
	input := buildOrderNotification(eventOrderPlaced, orderEventPayload{
		OrderID:    orderID,
		TotalCents: 12550,
	})

	require.Equal(t, "New order placed", input.Title)
	require.Contains(t, input.Message, "$125.50")
	require.Equal(t, enums.NotificationCategoryOrders, input.Category)
	require.Equal(t, enums.NotificationPriorityMedium, input.Priority)
	require.Len(t, input.Actions, 1)
	require.Equal(t, "/orders/"+orderID.String(), input.Actions[0].URL)
}

func TestBuildOrderNotification_CancelledWithReason(t *testing.T) {
	orderID := uuid.New()
	input := buildOrderNotification(eventOrderCancelled, orderEventPayload{
		OrderID: orderID,
		Reason:  "payment declined",
	})

	require.Equal(t, "Order cancelled", input.Title)
	require.Contains(t, input.Message, "payment declined")
	require.Equal(t, enums.NotificationPriorityHigh, input.Priority)
}
