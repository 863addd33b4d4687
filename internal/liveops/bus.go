package liveops

import (
	"sync"

	"github.com/dorozco/marketpulse-backend/pkg/db/models"
)

// SnapshotListener receives every metric snapshot published while subscribed.
type SnapshotListener func(MetricSnapshot)

// NotificationListener receives every notification published while subscribed.
type NotificationListener func(models.Notification)

type snapshotEntry struct {
	id uint64
	fn SnapshotListener
}

type notificationEntry struct {
	id uint64
	fn NotificationListener
}

// Bus fans events out on two independent channels: metric snapshots and
// discrete notifications. Delivery is synchronous, in registration order,
// with no buffering and no replay; a listener registered after a publish
// never sees that event.
type Bus struct {
	mu            sync.Mutex
	nextID        uint64
	snapshots     []snapshotEntry
	notifications []notificationEntry
}

// NewBus builds an empty event bus.
func NewBus() *Bus {
	return &Bus{}
}

// SubscribeSnapshots registers a listener on the metrics channel and returns
// its unsubscribe handle. Calling the handle more than once is a no-op.
func (b *Bus) SubscribeSnapshots(fn SnapshotListener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.snapshots = append(b.snapshots, snapshotEntry{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, entry := range b.snapshots {
			if entry.id == id {
				b.snapshots = append(b.snapshots[:i], b.snapshots[i+1:]...)
				return
			}
		}
	}
}

// SubscribeNotifications registers a listener on the notifications channel
// and returns its unsubscribe handle.
func (b *Bus) SubscribeNotifications(fn NotificationListener) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.notifications = append(b.notifications, notificationEntry{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, entry := range b.notifications {
			if entry.id == id {
				b.notifications = append(b.notifications[:i], b.notifications[i+1:]...)
				return
			}
		}
	}
}

// PublishSnapshot delivers the snapshot to all current metrics listeners.
func (b *Bus) PublishSnapshot(snapshot MetricSnapshot) {
	b.mu.Lock()
	listeners := make([]snapshotEntry, len(b.snapshots))
	copy(listeners, b.snapshots)
	b.mu.Unlock()

	for _, entry := range listeners {
		entry.fn(snapshot)
	}
}

// PublishNotification delivers the notification to all current listeners.
func (b *Bus) PublishNotification(notification models.Notification) {
	b.mu.Lock()
	listeners := make([]notificationEntry, len(b.notifications))
	copy(listeners, b.notifications)
	b.mu.Unlock()

	for _, entry := range listeners {
		entry.fn(notification)
	}
}

// SnapshotListeners reports the current metrics channel listener count.
func (b *Bus) SnapshotListeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.snapshots)
}

// NotificationListeners reports the current notifications channel listener count.
func (b *Bus) NotificationListeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.notifications)
}
