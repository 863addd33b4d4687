package enums

import "fmt"

// NotificationCategory groups in-app notifications by the subsystem that
// produced them.
type NotificationCategory string

const (
	NotificationCategoryOrders    NotificationCategory = "orders"
	NotificationCategoryInventory NotificationCategory = "inventory"
	NotificationCategoryRevenue   NotificationCategory = "revenue"
	NotificationCategorySystem    NotificationCategory = "system"
)

var validNotificationCategories = []NotificationCategory{
	NotificationCategoryOrders,
	NotificationCategoryInventory,
	NotificationCategoryRevenue,
	NotificationCategorySystem,
}

// IsValid checks whether the given category matches the canonical enum.
func (n NotificationCategory) IsValid() bool {
	for _, candidate := range validNotificationCategories {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationCategory converts raw strings into NotificationCategory.
func ParseNotificationCategory(value string) (NotificationCategory, error) {
	for _, candidate := range validNotificationCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification category %q", value)
}

// NotificationPriority is the ordered severity of a notification.
type NotificationPriority string

const (
	NotificationPriorityLow      NotificationPriority = "low"
	NotificationPriorityMedium   NotificationPriority = "medium"
	NotificationPriorityHigh     NotificationPriority = "high"
	NotificationPriorityCritical NotificationPriority = "critical"
)

var notificationPriorityRank = map[NotificationPriority]int{
	NotificationPriorityLow:      0,
	NotificationPriorityMedium:   1,
	NotificationPriorityHigh:     2,
	NotificationPriorityCritical: 3,
}

// IsValid checks whether the given priority matches the canonical enum.
func (n NotificationPriority) IsValid() bool {
	_, ok := notificationPriorityRank[n]
	return ok
}

// Rank returns the severity order of the priority; low < medium < high < critical.
func (n NotificationPriority) Rank() int {
	return notificationPriorityRank[n]
}

// ParseNotificationPriority converts raw strings into NotificationPriority.
func ParseNotificationPriority(value string) (NotificationPriority, error) {
	if _, ok := notificationPriorityRank[NotificationPriority(value)]; ok {
		return NotificationPriority(value), nil
	}
	return "", fmt.Errorf("invalid notification priority %q", value)
}
