package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/pocketbank/backend/internal/models"
)

// IDFunc mints alert ids. The wiring layer supplies the generation policy
// (uuid in production); the queue itself has no opinion.
type IDFunc func() string

// Queue is a per-user mailbox of pending notifications, drained on read.
// The single mutex spans push and drain so an alert is returned by exactly
// one Drain call and none is ever dropped: a Push racing a Drain either lands
// before the swap (included) or after it (next call).
type Queue struct {
	mu       sync.Mutex
	boxes    map[string][]models.Alert
	channels ChannelStore
	newID    IDFunc
}

func NewQueue(channels ChannelStore, newID IDFunc) *Queue {
	return &Queue{
		boxes:    make(map[string][]models.Alert),
		channels: channels,
		newID:    newID,
	}
}

// Push appends a timestamped alert to the tail of the user's mailbox. There
// is no deduplication; repeated failures produce repeated alerts.
func (q *Queue) Push(userID, alertType, message string) models.Alert {
	alert := models.Alert{
		ID:        q.newID(),
		UserID:    userID,
		Type:      alertType,
		Message:   message,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	q.boxes[userID] = append(q.boxes[userID], alert)
	q.mu.Unlock()

	return alert
}

// Drain atomically returns and removes all alerts queued for the user, in
// FIFO order. A second back-to-back Drain with no intervening Push returns an
// empty slice.
func (q *Queue) Drain(userID string) []models.Alert {
	q.mu.Lock()
	defer q.mu.Unlock()

	box := q.boxes[userID]
	if len(box) == 0 {
		return []models.Alert{}
	}
	delete(q.boxes, userID)
	return box
}

// Pending reports how many alerts are queued for the user without consuming
// them.
func (q *Queue) Pending(userID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.boxes[userID])
}

// Subscribe records delivery-channel metadata for the user. The metadata is
// advisory: the polling mailbox never consumes it.
func (q *Queue) Subscribe(ctx context.Context, userID string, channel models.AlertChannel) error {
	channel.UserID = userID
	channel.UpdatedAt = time.Now()
	return q.channels.Save(ctx, channel)
}

// Channels returns the delivery channels recorded for the user.
func (q *Queue) Channels(ctx context.Context, userID string) ([]models.AlertChannel, error) {
	return q.channels.List(ctx, userID)
}
