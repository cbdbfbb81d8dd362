package events

import (
	"context"
	"time"
)

const (
	TopicThreadCreated = "thread.created"
	TopicMessageSent   = "message.sent"
)

type ThreadCreated struct {
	ThreadID       uint      `json:"thread_id"`
	MessageID      uint      `json:"message_id"`
	SenderID       uint      `json:"sender_id"`
	ParticipantIDs []uint    `json:"participant_ids"`
	CreatedAt      time.Time `json:"created_at"`
}

type MessageSent struct {
	ThreadID     uint      `json:"thread_id"`
	MessageID    uint      `json:"message_id"`
	SenderID     uint      `json:"sender_id"`
	RecipientIDs []uint    `json:"recipient_ids"`
	SentAt       time.Time `json:"sent_at"`
}

// Publisher announces committed changes. Implementations must not block on
// slow subscribers.
type Publisher interface {
	PublishThreadCreated(ctx context.Context, ev ThreadCreated) error
	PublishMessageSent(ctx context.Context, ev MessageSent) error
}

type Subscriber interface {
	OnThreadCreated(ctx context.Context, fn func(context.Context, ThreadCreated) error) error
	OnMessageSent(ctx context.Context, fn func(context.Context, MessageSent) error) error
}
