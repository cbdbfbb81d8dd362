package threadtest

import (
	"context"
	"time"

	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/thread"
	"github.com/stretchr/testify/mock"
)

type ServiceMock struct {
	mock.Mock
}

func (t *ServiceMock) ListThreads(ctx context.Context, userId uint, before *thread.Cursor, pageSize int) ([]entity.Thread, *thread.Cursor, error) {
	args := t.Called(ctx, userId, before, pageSize)
	threads, _ := args.Get(0).([]entity.Thread)
	next, _ := args.Get(1).(*thread.Cursor)
	return threads, next, args.Error(2)
}

func (t *ServiceMock) GetThread(ctx context.Context, userId uint, threadId uint) (*entity.Thread, error) {
	args := t.Called(ctx, userId, threadId)
	th, _ := args.Get(0).(*entity.Thread)
	return th, args.Error(1)
}

func (t *ServiceMock) ListMessages(ctx context.Context, userId uint, threadId uint, order string, cursor uint, limit int) ([]entity.Message, uint, error) {
	args := t.Called(ctx, userId, threadId, order, cursor, limit)
	messages, _ := args.Get(0).([]entity.Message)
	return messages, args.Get(1).(uint), args.Error(2)
}

func (t *ServiceMock) AppendMessage(ctx context.Context, threadId uint, senderId uint, content string) (*entity.Message, error) {
	args := t.Called(ctx, threadId, senderId, content)
	msg, _ := args.Get(0).(*entity.Message)
	return msg, args.Error(1)
}

func (t *ServiceMock) CreateThread(ctx context.Context, senderId uint, recipients []string, content string) (*entity.Thread, error) {
	args := t.Called(ctx, senderId, recipients, content)
	th, _ := args.Get(0).(*entity.Thread)
	return th, args.Error(1)
}

var (
	_ thread.Service = (*ServiceMock)(nil)
)

type ManagerMock struct {
	mock.Mock
}

func (m *ManagerMock) GetThreadById(ctx context.Context, threadId uint) (*entity.Thread, error) {
	args := m.Called(ctx, threadId)
	th, _ := args.Get(0).(*entity.Thread)
	return th, args.Error(1)
}

func (m *ManagerMock) IsParticipant(ctx context.Context, threadId uint, userId uint) (bool, error) {
	args := m.Called(ctx, threadId, userId)
	return args.Bool(0), args.Error(1)
}

func (m *ManagerMock) GetThreads(ctx context.Context, userId uint, cursor *thread.Cursor, limit uint) ([]entity.Thread, error) {
	args := m.Called(ctx, userId, cursor, limit)
	threads, _ := args.Get(0).([]entity.Thread)
	return threads, args.Error(1)
}

func (m *ManagerMock) GetMessages(ctx context.Context, threadId uint, order string, cursor uint, limit uint) ([]entity.Message, error) {
	args := m.Called(ctx, threadId, order, cursor, limit)
	messages, _ := args.Get(0).([]entity.Message)
	return messages, args.Error(1)
}

func (m *ManagerMock) GetNumMessages(ctx context.Context, threadId uint) (int64, error) {
	args := m.Called(ctx, threadId)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ManagerMock) InsertThread(ctx context.Context, createdAt time.Time, senderId uint, participantIds []uint, content string) (*entity.Thread, error) {
	args := m.Called(ctx, createdAt, senderId, participantIds, content)
	th, _ := args.Get(0).(*entity.Thread)
	return th, args.Error(1)
}

func (m *ManagerMock) InsertMessage(ctx context.Context, threadId uint, senderId uint, content string, sentAt time.Time) (*entity.Message, error) {
	args := m.Called(ctx, threadId, senderId, content, sentAt)
	msg, _ := args.Get(0).(*entity.Message)
	return msg, args.Error(1)
}

func (m *ManagerMock) UpdateThreadLatest(ctx context.Context, threadId uint, messageId uint, sentAt time.Time) (bool, error) {
	args := m.Called(ctx, threadId, messageId, sentAt)
	return args.Bool(0), args.Error(1)
}

var (
	_ thread.Manager = (*ManagerMock)(nil)
)
