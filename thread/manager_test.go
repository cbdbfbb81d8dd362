package thread_test

import (
	"testing"
	"time"

	"github.com/jcooky/go-din"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/internal/mytesting"
	"github.com/habiliai/inbox/thread"
	"github.com/habiliai/inbox/user"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type ThreadManagerTestSuite struct {
	mytesting.Suite

	threadManager thread.Manager
	DB            *gorm.DB

	alice, bob, carol *entity.User
}

func (s *ThreadManagerTestSuite) SetupTest() {
	s.Suite.SetupTest()

	s.threadManager = din.MustGetT[thread.Manager](s.Container)
	s.DB = din.MustGetT[*gorm.DB](s.Container)

	users := din.MustGetT[user.Manager](s.Container)
	var err error
	s.alice, err = users.CreateUser(s, "alice")
	s.Require().NoError(err)
	s.bob, err = users.CreateUser(s, "bob")
	s.Require().NoError(err)
	s.carol, err = users.CreateUser(s, "carol")
	s.Require().NoError(err)
}

func (s *ThreadManagerTestSuite) TearDownTest() {
	s.Suite.TearDownTest()
}

func (s *ThreadManagerTestSuite) insertThread(at time.Time, sender *entity.User, others ...*entity.User) *entity.Thread {
	ids := make([]uint, 0, len(others))
	for _, o := range others {
		ids = append(ids, o.ID)
	}
	th, err := s.threadManager.InsertThread(s, at, sender.ID, ids, "hello")
	s.Require().NoError(err)
	return th
}

func (s *ThreadManagerTestSuite) TestInsertThread() {
	th := s.insertThread(base, s.alice, s.bob)

	s.Require().Len(th.Participants, 2)
	s.Equal(s.alice.ID, th.Participants[0].ID)
	s.Equal(s.bob.ID, th.Participants[1].ID)
	s.True(base.Equal(th.CreatedAt))
	s.True(base.Equal(th.LatestMessageAt))

	s.Require().NotNil(th.LatestMessage)
	s.Equal("hello", th.LatestMessage.Content)
	s.Equal("alice", th.LatestMessage.Sender.Username)
	s.True(base.Equal(th.LatestMessage.SentAt))
	s.Require().NotNil(th.LatestMessageID)
	s.Equal(th.LatestMessage.ID, *th.LatestMessageID)

	n, err := s.threadManager.GetNumMessages(s, th.ID)
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *ThreadManagerTestSuite) TestInsertThreadRequiresTwoParticipants() {
	_, err := s.threadManager.InsertThread(s, base, s.alice.ID, []uint{s.alice.ID}, "hello")
	s.Require().ErrorIs(err, errors.ErrInvalidParams)

	var count int64
	s.Require().NoError(s.DB.Model(&entity.Thread{}).Count(&count).Error)
	s.Zero(count)
}

func (s *ThreadManagerTestSuite) TestLatestMessageNeverMovesBackwards() {
	th := s.insertThread(base, s.alice, s.bob)

	_, err := s.threadManager.InsertMessage(s, th.ID, s.bob.ID, "first", base.Add(time.Minute))
	s.Require().NoError(err)
	latest, err := s.threadManager.InsertMessage(s, th.ID, s.alice.ID, "third", base.Add(3*time.Minute))
	s.Require().NoError(err)
	// committed last but sent earlier
	_, err = s.threadManager.InsertMessage(s, th.ID, s.bob.ID, "second", base.Add(2*time.Minute))
	s.Require().NoError(err)

	got, err := s.threadManager.GetThreadById(s, th.ID)
	s.Require().NoError(err)
	s.True(base.Add(3 * time.Minute).Equal(got.LatestMessageAt))
	s.Require().NotNil(got.LatestMessage)
	s.Equal(latest.ID, got.LatestMessage.ID)
	s.Equal("third", got.LatestMessage.Content)
}

func (s *ThreadManagerTestSuite) TestUpdateThreadLatestOnlyMovesForward() {
	th := s.insertThread(base, s.alice, s.bob)
	later, err := s.threadManager.InsertMessage(s, th.ID, s.bob.ID, "later", base.Add(time.Hour))
	s.Require().NoError(err)

	moved, err := s.threadManager.UpdateThreadLatest(s, th.ID, th.LatestMessage.ID, base)
	s.Require().NoError(err)
	s.False(moved)

	got, err := s.threadManager.GetThreadById(s, th.ID)
	s.Require().NoError(err)
	s.Equal(later.ID, got.LatestMessage.ID)

	// equal timestamps still move, matching max semantics on ties
	moved, err = s.threadManager.UpdateThreadLatest(s, th.ID, later.ID, base.Add(time.Hour))
	s.Require().NoError(err)
	s.True(moved)
}

func (s *ThreadManagerTestSuite) TestInsertMessageUnknownThread() {
	_, err := s.threadManager.InsertMessage(s, 4242, s.alice.ID, "hello", base)
	s.Require().ErrorIs(err, errors.ErrNotFound)

	var count int64
	s.Require().NoError(s.DB.Model(&entity.Message{}).Count(&count).Error)
	s.Zero(count)
}

func (s *ThreadManagerTestSuite) TestGetThreadByIdNotFound() {
	_, err := s.threadManager.GetThreadById(s, 4242)
	s.Require().ErrorIs(err, errors.ErrNotFound)
}

func (s *ThreadManagerTestSuite) TestIsParticipant() {
	th := s.insertThread(base, s.alice, s.bob)

	ok, err := s.threadManager.IsParticipant(s, th.ID, s.bob.ID)
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.threadManager.IsParticipant(s, th.ID, s.carol.ID)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ThreadManagerTestSuite) TestGetThreadsScopedAndOrdered() {
	t1 := s.insertThread(base, s.alice, s.bob)
	t2 := s.insertThread(base.Add(time.Minute), s.alice, s.carol)
	t3 := s.insertThread(base.Add(2*time.Minute), s.bob, s.carol)

	// a reply bumps t1 to the top
	_, err := s.threadManager.InsertMessage(s, t1.ID, s.bob.ID, "bump", base.Add(5*time.Minute))
	s.Require().NoError(err)

	threads, err := s.threadManager.GetThreads(s, s.alice.ID, nil, 10)
	s.Require().NoError(err)
	s.Require().Len(threads, 2)
	s.Equal(t1.ID, threads[0].ID)
	s.Equal(t2.ID, threads[1].ID)
	s.Equal("bump", threads[0].LatestMessage.Content)
	s.Len(threads[0].Participants, 2)

	threads, err = s.threadManager.GetThreads(s, s.carol.ID, nil, 10)
	s.Require().NoError(err)
	s.Require().Len(threads, 2)
	s.Equal(t3.ID, threads[0].ID)
	s.Equal(t2.ID, threads[1].ID)
}

func (s *ThreadManagerTestSuite) TestGetThreadsStrictCursor() {
	var ids []uint
	for i := 0; i < 5; i++ {
		th := s.insertThread(base.Add(time.Duration(i)*time.Minute), s.alice, s.bob)
		ids = append([]uint{th.ID}, ids...)
	}

	var (
		seen   []uint
		cursor *thread.Cursor
	)
	for {
		page, err := s.threadManager.GetThreads(s, s.alice.ID, cursor, 2)
		s.Require().NoError(err)
		for _, th := range page {
			seen = append(seen, th.ID)
		}
		if len(page) < 2 {
			break
		}
		cursor = &thread.Cursor{At: page[len(page)-1].LatestMessageAt}
	}

	s.Equal(ids, seen)
}

func (s *ThreadManagerTestSuite) TestGetThreadsCompositeCursorKeepsTies() {
	var ids []uint
	for i := 0; i < 3; i++ {
		th := s.insertThread(base, s.alice, s.bob)
		ids = append([]uint{th.ID}, ids...)
	}

	first, err := s.threadManager.GetThreads(s, s.alice.ID, nil, 1)
	s.Require().NoError(err)
	s.Require().Len(first, 1)

	// the strict boundary skips threads sharing the timestamp
	strict, err := s.threadManager.GetThreads(s, s.alice.ID, &thread.Cursor{At: first[0].LatestMessageAt}, 10)
	s.Require().NoError(err)
	s.Empty(strict)

	seen := []uint{first[0].ID}
	cursor := &thread.Cursor{At: first[0].LatestMessageAt, ID: first[0].ID}
	for {
		page, err := s.threadManager.GetThreads(s, s.alice.ID, cursor, 1)
		s.Require().NoError(err)
		if len(page) == 0 {
			break
		}
		seen = append(seen, page[0].ID)
		cursor = &thread.Cursor{At: page[0].LatestMessageAt, ID: page[0].ID}
	}

	s.Equal(ids, seen)
}

func (s *ThreadManagerTestSuite) TestGetMessages() {
	th := s.insertThread(base, s.alice, s.bob)
	for i := 1; i <= 4; i++ {
		_, err := s.threadManager.InsertMessage(s, th.ID, s.bob.ID, "reply", base.Add(time.Duration(i)*time.Second))
		s.Require().NoError(err)
	}

	asc, err := s.threadManager.GetMessages(s, th.ID, "ASC", 0, 100)
	s.Require().NoError(err)
	s.Require().Len(asc, 5)
	s.Equal("hello", asc[0].Content)
	s.Equal("bob", asc[1].Sender.Username)
	for i := 1; i < len(asc); i++ {
		s.True(asc[i-1].SentAt.Before(asc[i].SentAt))
	}

	desc, err := s.threadManager.GetMessages(s, th.ID, "desc", 0, 2)
	s.Require().NoError(err)
	s.Require().Len(desc, 2)
	s.Equal(asc[4].ID, desc[0].ID)
	s.Equal(asc[3].ID, desc[1].ID)

	next, err := s.threadManager.GetMessages(s, th.ID, "DESC", desc[1].ID, 2)
	s.Require().NoError(err)
	s.Require().Len(next, 2)
	s.Equal(asc[2].ID, next[0].ID)
	s.Equal(asc[1].ID, next[1].ID)

	after, err := s.threadManager.GetMessages(s, th.ID, "ASC", asc[3].ID, 10)
	s.Require().NoError(err)
	s.Require().Len(after, 1)
	s.Equal(asc[4].ID, after[0].ID)
}

func (s *ThreadManagerTestSuite) TestGetMessagesRejectsBadInput() {
	th := s.insertThread(base, s.alice, s.bob)

	_, err := s.threadManager.GetMessages(s, th.ID, "sideways", 0, 10)
	s.ErrorIs(err, errors.ErrInvalidParams)

	_, err = s.threadManager.GetMessages(s, th.ID, "ASC", 4242, 10)
	s.ErrorIs(err, errors.ErrInvalidParams)
}

func TestThreadManager(t *testing.T) {
	suite.Run(t, new(ThreadManagerTestSuite))
}
