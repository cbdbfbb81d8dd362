package thread

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jcooky/go-din"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/internal/db"
	"github.com/habiliai/inbox/internal/mylog"
)

type (
	// Cursor marks a position in a newest-activity-first thread listing.
	// A zero ID selects the strict "latest_message_at < At" boundary; a
	// non-zero ID continues after (At, ID) so that threads sharing At are
	// neither skipped nor repeated.
	Cursor struct {
		At time.Time
		ID uint
	}

	Manager interface {
		GetThreadById(ctx context.Context, threadId uint) (*entity.Thread, error)
		IsParticipant(ctx context.Context, threadId uint, userId uint) (bool, error)
		GetThreads(ctx context.Context, userId uint, cursor *Cursor, limit uint) ([]entity.Thread, error)
		GetMessages(ctx context.Context, threadId uint, order string, cursor uint, limit uint) ([]entity.Message, error)
		GetNumMessages(ctx context.Context, threadId uint) (int64, error)
		InsertThread(ctx context.Context, createdAt time.Time, senderId uint, participantIds []uint, content string) (*entity.Thread, error)
		InsertMessage(ctx context.Context, threadId uint, senderId uint, content string, sentAt time.Time) (*entity.Message, error)
		// UpdateThreadLatest points the thread at messageId unless it already
		// has activity after sentAt. It reports whether the pointers moved.
		UpdateThreadLatest(ctx context.Context, threadId uint, messageId uint, sentAt time.Time) (bool, error)
	}

	manager struct {
		logger *mylog.Logger
		db     *gorm.DB
	}
)

var (
	_ Manager = (*manager)(nil)
)

func NewManager(logger *slog.Logger, db *gorm.DB) Manager {
	return &manager{logger: logger, db: db}
}

func preloadThread(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Participants", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("users.id ASC")
		}).
		Preload("LatestMessage.Sender")
}

func (s *manager) GetThreadById(ctx context.Context, threadId uint) (*entity.Thread, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var thread entity.Thread
	if r := preloadThread(tx).Limit(1).Find(&thread, threadId); r.Error != nil {
		return nil, errors.Wrapf(r.Error, "failed to find thread")
	} else if r.RowsAffected == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "thread not found")
	}

	return &thread, nil
}

func (s *manager) IsParticipant(ctx context.Context, threadId uint, userId uint) (bool, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var count int64
	if err := tx.Table(entity.ThreadParticipantsTable).
		Where("thread_id = ? AND user_id = ?", threadId, userId).
		Count(&count).Error; err != nil {
		return false, errors.Wrapf(err, "failed to count participants")
	}

	return count > 0, nil
}

func (s *manager) GetThreads(ctx context.Context, userId uint, cursor *Cursor, limit uint) ([]entity.Thread, error) {
	_, tx := db.OpenSession(ctx, s.db)

	stmt := preloadThread(tx).
		Model(&entity.Thread{}).
		Joins("JOIN thread_participants tp ON tp.thread_id = threads.id AND tp.user_id = ?", userId)

	if cursor != nil {
		at := entity.Timestamp(cursor.At)
		if cursor.ID == 0 {
			stmt = stmt.Where("threads.latest_message_at < ?", at)
		} else {
			stmt = stmt.Where(
				"(threads.latest_message_at < ? OR (threads.latest_message_at = ? AND threads.id < ?))",
				at, at, cursor.ID,
			)
		}
	}
	if limit == 0 {
		limit = 20
	}

	var threads []entity.Thread
	if err := stmt.
		Order("threads.latest_message_at DESC").
		Order("threads.id DESC").
		Limit(int(limit)).
		Find(&threads).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find threads")
	}

	return threads, nil
}

func (s *manager) GetMessages(
	ctx context.Context,
	threadId uint,
	order string,
	cursor uint,
	limit uint,
) (messages []entity.Message, err error) {
	_, tx := db.OpenSession(ctx, s.db)
	order = strings.ToUpper(order)
	if order != "ASC" && order != "DESC" {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "invalid order")
	}

	stmt := tx.Model(&entity.Message{}).
		Preload("Sender").
		Where("thread_id = ?", threadId).
		Order("sent_at " + order).
		Order("id " + order)

	if cursor != 0 {
		var at entity.Message
		if r := tx.Limit(1).Find(&at, "id = ? AND thread_id = ?", cursor, threadId); r.Error != nil {
			return nil, errors.Wrapf(r.Error, "failed to find cursor message")
		} else if r.RowsAffected == 0 {
			return nil, errors.Wrapf(errors.ErrInvalidParams, "invalid cursor")
		}

		if order == "ASC" {
			stmt = stmt.Where("(sent_at > ? OR (sent_at = ? AND id > ?))", at.SentAt, at.SentAt, at.ID)
		} else {
			stmt = stmt.Where("(sent_at < ? OR (sent_at = ? AND id < ?))", at.SentAt, at.SentAt, at.ID)
		}
	}
	if limit == 0 {
		limit = 50
	}

	if err := stmt.Limit(int(limit)).Find(&messages).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to find messages")
	}

	return
}

func (s *manager) GetNumMessages(ctx context.Context, threadId uint) (int64, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var count int64
	if err := tx.Model(&entity.Message{}).Where("thread_id = ?", threadId).Count(&count).Error; err != nil {
		return 0, errors.Wrapf(err, "failed to count messages")
	}

	return count, nil
}

// InsertThread stores a thread, its participants and its first message in
// one transaction.
func (s *manager) InsertThread(
	ctx context.Context,
	createdAt time.Time,
	senderId uint,
	participantIds []uint,
	content string,
) (*entity.Thread, error) {
	createdAt = entity.Timestamp(createdAt)
	participantIds = lo.Uniq(append([]uint{senderId}, participantIds...))
	if len(participantIds) < 2 {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "a thread needs at least two participants")
	}

	var threadId uint
	if err := db.Transaction(ctx, s.db, func(ctx context.Context) error {
		_, tx := db.OpenSession(ctx, s.db)

		thread := entity.Thread{
			CreatedAt:       createdAt,
			LatestMessageAt: createdAt,
		}
		if err := tx.Omit(clause.Associations).Create(&thread).Error; err != nil {
			return errors.Wrapf(err, "failed to create thread")
		}
		threadId = thread.ID

		rows := lo.Map(participantIds, func(userId uint, _ int) map[string]any {
			return map[string]any{"thread_id": thread.ID, "user_id": userId}
		})
		if err := tx.Table(entity.ThreadParticipantsTable).Create(rows).Error; err != nil {
			return errors.Wrapf(err, "failed to add participants")
		}

		_, err := s.insertMessage(ctx, thread.ID, senderId, content, createdAt)
		return err
	}); err != nil {
		return nil, err
	}

	return s.GetThreadById(ctx, threadId)
}

func (s *manager) InsertMessage(
	ctx context.Context,
	threadId uint,
	senderId uint,
	content string,
	sentAt time.Time,
) (*entity.Message, error) {
	var msg *entity.Message
	if err := db.Transaction(ctx, s.db, func(ctx context.Context) error {
		var err error
		msg, err = s.insertMessage(ctx, threadId, senderId, content, entity.Timestamp(sentAt))
		return err
	}); err != nil {
		return nil, err
	}

	return msg, nil
}

// insertMessage must run inside a transaction. The conditional update is what
// serialises concurrent replies: it only moves the thread's latest pointers
// forward, so a reply committing late with an earlier timestamp cannot
// regress them.
func (s *manager) insertMessage(
	ctx context.Context,
	threadId uint,
	senderId uint,
	content string,
	sentAt time.Time,
) (*entity.Message, error) {
	_, tx := db.OpenSession(ctx, s.db)

	var thread entity.Thread
	if r := tx.Select("id").Limit(1).Find(&thread, threadId); r.Error != nil {
		return nil, errors.Wrapf(r.Error, "failed to find thread")
	} else if r.RowsAffected == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "thread not found")
	}

	msg := entity.Message{
		ThreadID: threadId,
		SenderID: senderId,
		Content:  content,
		SentAt:   sentAt,
	}
	if err := tx.Omit(clause.Associations).Create(&msg).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to save message")
	}

	if _, err := s.UpdateThreadLatest(ctx, threadId, msg.ID, sentAt); err != nil {
		return nil, err
	}

	if err := tx.Limit(1).Find(&msg.Sender, senderId).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to load sender")
	}

	return &msg, nil
}

func (s *manager) UpdateThreadLatest(ctx context.Context, threadId uint, messageId uint, sentAt time.Time) (bool, error) {
	_, tx := db.OpenSession(ctx, s.db)
	sentAt = entity.Timestamp(sentAt)

	r := tx.Model(&entity.Thread{}).
		Where("id = ? AND latest_message_at <= ?", threadId, sentAt).
		Updates(map[string]any{
			"latest_message_at": sentAt,
			"latest_message_id": messageId,
		})
	if r.Error != nil {
		return false, errors.Wrapf(r.Error, "failed to update thread activity")
	}
	if r.RowsAffected == 0 {
		s.logger.Debug("thread already has newer activity", "thread_id", threadId, "sent_at", sentAt)
		return false, nil
	}

	return true, nil
}

func init() {
	din.RegisterT(func(c *din.Container) (Manager, error) {
		logger, err := din.GetT[*mylog.Logger](c)
		if err != nil {
			return nil, err
		}

		return NewManager(logger, din.MustGetT[*gorm.DB](c)), nil
	})
}
