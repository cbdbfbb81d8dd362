package thread

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jcooky/go-din"
	"github.com/samber/lo"

	"github.com/habiliai/inbox/config"
	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/events"
	"github.com/habiliai/inbox/internal/mylog"
	"github.com/habiliai/inbox/internal/stringutils"
	"github.com/habiliai/inbox/user"
)

const (
	MsgNoRecipients   = "at least one recipient required"
	MsgSelfAddressed  = "cannot start a conversation with yourself"
	MsgContentMissing = "content is required"
)

type (
	Service interface {
		// ListThreads returns userId's threads, newest activity first, and the
		// cursor of the following page (nil on the last page).
		ListThreads(ctx context.Context, userId uint, before *Cursor, pageSize int) ([]entity.Thread, *Cursor, error)
		GetThread(ctx context.Context, userId uint, threadId uint) (*entity.Thread, error)
		// ListMessages pages through a thread's messages by (sent_at, id). The
		// returned cursor is the last message's id, or 0 on the last page.
		ListMessages(ctx context.Context, userId uint, threadId uint, order string, cursor uint, limit int) ([]entity.Message, uint, error)
		AppendMessage(ctx context.Context, threadId uint, senderId uint, content string) (*entity.Message, error)
		CreateThread(ctx context.Context, senderId uint, recipients []string, content string) (*entity.Thread, error)
	}

	ServiceOption func(*service)

	service struct {
		logger    *slog.Logger
		manager   Manager
		guard     Guard
		users     user.Manager
		publisher events.Publisher
		now       func() time.Time

		maxContentLength int
		threadPageSize   int
		messagePageSize  int
	}
)

var (
	_ Service = (*service)(nil)
)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		s.now = now
	}
}

func NewService(
	logger *slog.Logger,
	conf *config.ServerConfig,
	manager Manager,
	guard Guard,
	users user.Manager,
	publisher events.Publisher,
	opts ...ServiceOption,
) Service {
	s := &service{
		logger:           logger,
		manager:          manager,
		guard:            guard,
		users:            users,
		publisher:        publisher,
		now:              time.Now,
		maxContentLength: conf.MaxContentLength,
		threadPageSize:   conf.ThreadPageSize,
		messagePageSize:  conf.MessagePageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) ListThreads(ctx context.Context, userId uint, before *Cursor, pageSize int) ([]entity.Thread, *Cursor, error) {
	if userId == 0 {
		return nil, nil, errors.Wrapf(errors.ErrUnauthenticated, "authentication required")
	}
	pageSize = clampPageSize(pageSize, s.threadPageSize, config.MaxThreadPageSize)

	threads, err := s.manager.GetThreads(ctx, userId, before, uint(pageSize))
	if err != nil {
		return nil, nil, err
	}

	var next *Cursor
	if len(threads) == pageSize {
		last := threads[len(threads)-1]
		next = &Cursor{At: last.LatestMessageAt, ID: last.ID}
	}

	return threads, next, nil
}

func (s *service) GetThread(ctx context.Context, userId uint, threadId uint) (*entity.Thread, error) {
	thread, err := s.guard.Authorize(ctx, userId, threadId)
	if errors.Is(err, errors.ErrForbidden) {
		// Threads are only addressable by their participants.
		return nil, errors.Wrapf(errors.ErrNotFound, "thread not found")
	}
	return thread, err
}

func (s *service) ListMessages(ctx context.Context, userId uint, threadId uint, order string, cursor uint, limit int) ([]entity.Message, uint, error) {
	if _, err := s.guard.Authorize(ctx, userId, threadId); err != nil {
		return nil, 0, err
	}
	if order == "" {
		order = "ASC"
	}
	limit = clampPageSize(limit, s.messagePageSize, config.MaxMessagePageSize)

	messages, err := s.manager.GetMessages(ctx, threadId, order, cursor, uint(limit))
	if err != nil {
		return nil, 0, err
	}

	var next uint
	if len(messages) == limit {
		next = messages[len(messages)-1].ID
	}

	return messages, next, nil
}

func (s *service) AppendMessage(ctx context.Context, threadId uint, senderId uint, content string) (*entity.Message, error) {
	thread, err := s.guard.Authorize(ctx, senderId, threadId)
	if err != nil {
		return nil, err
	}

	content, err = s.validateContent(content)
	if err != nil {
		return nil, err
	}

	msg, err := s.manager.InsertMessage(ctx, threadId, senderId, content, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Debug("message appended", "thread_id", threadId, "message_id", msg.ID, "sender_id", senderId)

	if err := s.publisher.PublishMessageSent(ctx, events.MessageSent{
		ThreadID:     threadId,
		MessageID:    msg.ID,
		SenderID:     senderId,
		RecipientIDs: lo.Without(thread.ParticipantIDs(), senderId),
		SentAt:       msg.SentAt,
	}); err != nil {
		s.logger.Warn("failed to publish message event", "thread_id", threadId, mylog.Err(err))
	}

	return msg, nil
}

func (s *service) CreateThread(ctx context.Context, senderId uint, recipients []string, content string) (*entity.Thread, error) {
	if senderId == 0 {
		return nil, errors.Wrapf(errors.ErrUnauthenticated, "authentication required")
	}
	sender, err := s.users.GetUserById(ctx, senderId)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Wrapf(errors.ErrUnauthenticated, "unknown sender")
	} else if err != nil {
		return nil, err
	}

	verr := &errors.ValidationError{}

	handles := lo.Uniq(lo.Compact(lo.Map(recipients, func(r string, _ int) string {
		return stringutils.NormalizeHandle(r)
	})))

	var to []entity.User
	switch {
	case len(handles) == 0:
		verr.Add("to_users", MsgNoRecipients)
	case lo.Contains(handles, sender.Username):
		verr.Add("to_users", MsgSelfAddressed)
	default:
		found, missing, err := s.users.FindActiveByUsernames(ctx, handles)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			verr.Add("to_users", "unknown or inactive user(s): "+strings.Join(missing, ", "))
		}
		to = found
	}

	content, err = s.validateContent(content)
	if err != nil {
		var contentErr *errors.ValidationError
		if !errors.As(err, &contentErr) {
			return nil, err
		}
		for _, msg := range contentErr.Fields["content"] {
			verr.Add("content", msg)
		}
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	participantIds := lo.Map(to, func(u entity.User, _ int) uint { return u.ID })
	thread, err := s.manager.InsertThread(ctx, s.now(), sender.ID, participantIds, content)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("thread created", "thread_id", thread.ID, "sender_id", sender.ID, "recipients", handles)

	ev := events.ThreadCreated{
		ThreadID:       thread.ID,
		SenderID:       sender.ID,
		ParticipantIDs: thread.ParticipantIDs(),
		CreatedAt:      thread.CreatedAt,
	}
	if thread.LatestMessageID != nil {
		ev.MessageID = *thread.LatestMessageID
	}
	if err := s.publisher.PublishThreadCreated(ctx, ev); err != nil {
		s.logger.Warn("failed to publish thread event", "thread_id", thread.ID, mylog.Err(err))
	}

	return thread, nil
}

func (s *service) validateContent(content string) (string, error) {
	content = stringutils.SanitizeContent(content)
	if content == "" {
		return "", errors.NewValidationError("content", MsgContentMissing)
	}
	if utf8.RuneCountInString(content) > s.maxContentLength {
		return "", errors.NewValidationError("content", fmt.Sprintf("content must be at most %d characters", s.maxContentLength))
	}
	return content, nil
}

func clampPageSize(size, def, limit int) int {
	if size <= 0 {
		return def
	}
	if size > limit {
		return limit
	}
	return size
}

func init() {
	din.RegisterT(func(c *din.Container) (Service, error) {
		logger, err := din.GetT[*mylog.Logger](c)
		if err != nil {
			return nil, err
		}

		return NewService(
			logger,
			din.MustGetT[*config.ServerConfig](c),
			din.MustGetT[Manager](c),
			din.MustGetT[Guard](c),
			din.MustGetT[user.Manager](c),
			din.MustGetT[events.Publisher](c),
		), nil
	})
}
