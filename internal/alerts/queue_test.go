package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketbank/backend/internal/models"
)

func newTestQueue() *Queue {
	var n int
	return NewQueue(NewMemoryChannelStore(), func() string {
		n++
		return fmt.Sprintf("alert-%d", n)
	})
}

func TestQueue_PushAndDrain(t *testing.T) {
	q := newTestQueue()

	q.Push("user-1", models.AlertTypeTransferFailed, "first")
	q.Push("user-1", models.AlertTypeTransferFailed, "second")
	q.Push("user-2", models.AlertTypeTransferFailed, "other user")

	drained := q.Drain("user-1")
	require.Len(t, drained, 2)
	assert.Equal(t, "first", drained[0].Message, "FIFO order")
	assert.Equal(t, "second", drained[1].Message)
	assert.NotEmpty(t, drained[0].ID)
	assert.False(t, drained[0].CreatedAt.IsZero())

	t.Run("back-to-back drain is empty", func(t *testing.T) {
		assert.Empty(t, q.Drain("user-1"))
	})

	t.Run("other mailboxes are untouched", func(t *testing.T) {
		assert.Equal(t, 1, q.Pending("user-2"))
	})

	t.Run("drain for unknown user", func(t *testing.T) {
		assert.Empty(t, q.Drain("nobody"))
	})
}

func TestQueue_NoDuplicationNoDeduplication(t *testing.T) {
	q := newTestQueue()

	// Identical pushes are all kept: the queue never deduplicates.
	q.Push("user-1", models.AlertTypeTransferFailed, "same")
	q.Push("user-1", models.AlertTypeTransferFailed, "same")

	drained := q.Drain("user-1")
	assert.Len(t, drained, 2)
}

func TestQueue_ExactlyOnceUnderConcurrency(t *testing.T) {
	q := newTestQueue()

	const pushers = 4
	const perPusher = 250

	var wg sync.WaitGroup
	seen := make(chan models.Alert, pushers*perPusher)

	for p := 0; p < pushers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perPusher; i++ {
				q.Push("user-1", models.AlertTypeTransferFailed, fmt.Sprintf("p%d-%d", p, i))
			}
		}(p)
	}

	// Drain concurrently with the pushes; whatever is left after the
	// pushers finish is picked up by the final drain.
	finished := doneWhen(&wg)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-time.After(time.Millisecond):
				for _, a := range q.Drain("user-1") {
					seen <- a
				}
			case <-finished:
				for _, a := range q.Drain("user-1") {
					seen <- a
				}
				return
			}
		}
	}()
	<-done
	close(seen)

	messages := map[string]int{}
	for a := range seen {
		messages[a.Message]++
	}

	assert.Len(t, messages, pushers*perPusher, "no alert may be dropped")
	for msg, count := range messages {
		assert.Equal(t, 1, count, "alert %s delivered more than once", msg)
	}
}

// doneWhen adapts a WaitGroup to a channel for use in select.
func doneWhen(wg *sync.WaitGroup) <-chan struct{} {
	ch := make(chan struct{})
	go func() {
		wg.Wait()
		close(ch)
	}()
	return ch
}

func TestQueue_Subscribe(t *testing.T) {
	q := newTestQueue()
	ctx := context.Background()

	err := q.Subscribe(ctx, "user-1", models.AlertChannel{Kind: "email", Address: "u1@example.com"})
	require.NoError(t, err)
	err = q.Subscribe(ctx, "user-1", models.AlertChannel{Kind: "sms", Address: "+15550100"})
	require.NoError(t, err)

	// Re-subscribing a kind replaces it.
	err = q.Subscribe(ctx, "user-1", models.AlertChannel{Kind: "email", Address: "new@example.com"})
	require.NoError(t, err)

	channels, err := q.Channels(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, channels, 2)

	byKind := map[string]models.AlertChannel{}
	for _, ch := range channels {
		byKind[ch.Kind] = ch
	}
	assert.Equal(t, "new@example.com", byKind["email"].Address)
	assert.Equal(t, "+15550100", byKind["sms"].Address)
	assert.Equal(t, "user-1", byKind["email"].UserID)

	t.Run("subscription does not affect the mailbox", func(t *testing.T) {
		assert.Empty(t, q.Drain("user-1"))
	})
}

func TestRedisChannelStore(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisChannelStore(client)
	ctx := context.Background()

	channel := models.AlertChannel{
		UserID:    "user-1",
		Kind:      "email",
		Address:   "u1@example.com",
		UpdatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(channel)
	require.NoError(t, err)

	t.Run("save", func(t *testing.T) {
		mock.ExpectHSet("alerts:channels:user-1", "email", data).SetVal(1)
		require.NoError(t, store.Save(ctx, channel))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list", func(t *testing.T) {
		mock.ExpectHGetAll("alerts:channels:user-1").SetVal(map[string]string{"email": string(data)})
		channels, err := store.List(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, channels, 1)
		assert.Equal(t, channel, channels[0])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list empty", func(t *testing.T) {
		mock.ExpectHGetAll("alerts:channels:user-2").SetVal(map[string]string{})
		channels, err := store.List(ctx, "user-2")
		require.NoError(t, err)
		assert.Empty(t, channels)
	})
}
