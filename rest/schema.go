package rest

import (
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/habiliai/inbox/entity"
)

// Operation names a REST action independently of its HTTP method.
type Operation int

const (
	OpListThreads Operation = iota
	OpCreateThread
	OpRetrieveThread
	OpListMessages
	OpCreateMessage
)

func (o Operation) String() string {
	return schemas[o].Name
}

// Schema describes what an operation reads and how it answers.
type Schema struct {
	Name string
	// NewRequest returns the body to decode into, or nil when the operation
	// takes no body.
	NewRequest func() any
	Status     int
}

var schemas = map[Operation]Schema{
	OpListThreads: {
		Name:   "list_threads",
		Status: http.StatusOK,
	},
	OpCreateThread: {
		Name:       "create_thread",
		NewRequest: func() any { return &CreateThreadRequest{} },
		Status:     http.StatusCreated,
	},
	OpRetrieveThread: {
		Name:   "retrieve_thread",
		Status: http.StatusOK,
	},
	OpListMessages: {
		Name:   "list_messages",
		Status: http.StatusOK,
	},
	OpCreateMessage: {
		Name:       "create_message",
		NewRequest: func() any { return &CreateMessageRequest{} },
		Status:     http.StatusCreated,
	},
}

func SchemaOf(op Operation) Schema {
	return schemas[op]
}

type (
	CreateThreadRequest struct {
		ToUsers []string `json:"to_users"`
		Content string   `json:"content"`
	}

	CreateMessageRequest struct {
		Content string `json:"content"`
	}

	UserRef struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}

	Message struct {
		ID      uint      `json:"id"`
		Thread  uint      `json:"thread"`
		Sender  UserRef   `json:"sender"`
		SentAt  time.Time `json:"sent_at"`
		Content string    `json:"content"`
	}

	Thread struct {
		ID              uint      `json:"id"`
		CreatedAt       time.Time `json:"created_at"`
		LatestMessageAt time.Time `json:"latest_message_at"`
		Participants    []UserRef `json:"participants"`
		LatestMessage   *Message  `json:"latest_message"`
	}
)

func newUserRef(u entity.User) UserRef {
	return UserRef{ID: u.ID, Username: u.Username}
}

func newMessage(m entity.Message) Message {
	return Message{
		ID:      m.ID,
		Thread:  m.ThreadID,
		Sender:  newUserRef(m.Sender),
		SentAt:  m.SentAt,
		Content: m.Content,
	}
}

func newThread(t entity.Thread) Thread {
	out := Thread{
		ID:              t.ID,
		CreatedAt:       t.CreatedAt,
		LatestMessageAt: t.LatestMessageAt,
		Participants: lo.Map(t.Participants, func(u entity.User, _ int) UserRef {
			return newUserRef(u)
		}),
	}
	if t.LatestMessage != nil {
		out.LatestMessage = lo.ToPtr(newMessage(*t.LatestMessage))
	}
	return out
}

func newThreads(threads []entity.Thread) []Thread {
	return lo.Map(threads, func(t entity.Thread, _ int) Thread { return newThread(t) })
}

func newMessages(messages []entity.Message) []Message {
	return lo.Map(messages, func(m entity.Message, _ int) Message { return newMessage(m) })
}
