package events_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/habiliai/inbox/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversMessageSent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus(slog.Default())
	defer bus.Close()

	received := make(chan events.MessageSent, 1)
	require.NoError(t, bus.OnMessageSent(ctx, func(_ context.Context, ev events.MessageSent) error {
		received <- ev
		return nil
	}))

	sentAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, bus.PublishMessageSent(ctx, events.MessageSent{
		ThreadID:     7,
		MessageID:    11,
		SenderID:     1,
		RecipientIDs: []uint{2, 3},
		SentAt:       sentAt,
	}))

	select {
	case ev := <-received:
		assert.Equal(t, uint(7), ev.ThreadID)
		assert.Equal(t, uint(11), ev.MessageID)
		assert.Equal(t, []uint{2, 3}, ev.RecipientIDs)
		assert.True(t, sentAt.Equal(ev.SentAt))
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBusWithoutSubscribersDoesNotBlock(t *testing.T) {
	bus := events.NewBus(slog.Default())
	defer bus.Close()

	done := make(chan error, 1)
	go func() {
		done <- bus.PublishThreadCreated(context.Background(), events.ThreadCreated{ThreadID: 1})
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("publish blocked")
	}
}
