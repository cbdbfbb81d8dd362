package thread

import (
	"context"
	"sync"

	"github.com/jcooky/go-din"

	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/errors"
)

type (
	// Guard decides whether a user may read or write a thread's messages.
	Guard interface {
		// CanAccess reports whether userId participates in threadId. It
		// fails closed: a missing thread yields false.
		CanAccess(ctx context.Context, userId uint, threadId uint) (bool, error)
		// Authorize returns the thread when userId participates in it,
		// ErrNotFound when it does not exist and ErrForbidden otherwise.
		Authorize(ctx context.Context, userId uint, threadId uint) (*entity.Thread, error)
	}

	guard struct {
		manager Manager
	}

	requestCacheKey struct{}

	requestCache struct {
		mu      sync.Mutex
		threads map[uint]*entity.Thread
	}
)

var (
	_ Guard = (*guard)(nil)
)

func NewGuard(manager Manager) Guard {
	return &guard{manager: manager}
}

// WithRequestCache scopes thread lookups made by a Guard to ctx. Repeated
// checks against the same thread within one request hit the store once; a
// new request starts with an empty cache.
func WithRequestCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, requestCacheKey{}, &requestCache{
		threads: make(map[uint]*entity.Thread),
	})
}

func (g *guard) CanAccess(ctx context.Context, userId uint, threadId uint) (bool, error) {
	if _, err := g.Authorize(ctx, userId, threadId); err != nil {
		if errors.Is(err, errors.ErrNotFound) ||
			errors.Is(err, errors.ErrForbidden) ||
			errors.Is(err, errors.ErrUnauthenticated) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (g *guard) Authorize(ctx context.Context, userId uint, threadId uint) (*entity.Thread, error) {
	if userId == 0 {
		return nil, errors.Wrapf(errors.ErrUnauthenticated, "authentication required")
	}

	thread, err := g.lookup(ctx, threadId)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "thread not found")
	}
	if !thread.HasParticipant(userId) {
		return nil, errors.Wrapf(errors.ErrForbidden, "not a participant of this thread")
	}

	return thread, nil
}

// lookup returns nil, nil for a missing thread so the miss is cached too.
func (g *guard) lookup(ctx context.Context, threadId uint) (*entity.Thread, error) {
	cache, _ := ctx.Value(requestCacheKey{}).(*requestCache)
	if cache != nil {
		cache.mu.Lock()
		thread, ok := cache.threads[threadId]
		cache.mu.Unlock()
		if ok {
			return thread, nil
		}
	}

	thread, err := g.manager.GetThreadById(ctx, threadId)
	if errors.Is(err, errors.ErrNotFound) {
		thread, err = nil, nil
	}
	if err != nil {
		return nil, err
	}

	if cache != nil {
		cache.mu.Lock()
		cache.threads[threadId] = thread
		cache.mu.Unlock()
	}

	return thread, nil
}

func init() {
	din.RegisterT(func(c *din.Container) (Guard, error) {
		return NewGuard(din.MustGetT[Manager](c)), nil
	})
}
