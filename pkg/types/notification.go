package types

// NotificationAction is a suggested follow-up link attached to a notification.
type NotificationAction struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// NotificationActions is stored as a jsonb array on the notification row.
type NotificationActions []NotificationAction

// JSONMap holds free-form notification metadata.
type JSONMap map[string]any
