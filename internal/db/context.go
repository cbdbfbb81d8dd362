package db

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	sessionCtxKey = uuid.New()
)

// OpenSession returns the session bound to ctx, if any, so that managers
// called from inside Transaction join the enclosing transaction.
func OpenSession(ctx context.Context, db *gorm.DB) (context.Context, *gorm.DB) {
	tx, ok := ctx.Value(sessionCtxKey).(*gorm.DB)
	if ok {
		return ctx, tx
	}

	return WithSession(ctx, db)
}

func WithSession(ctx context.Context, db *gorm.DB) (context.Context, *gorm.DB) {
	tx := db.WithContext(ctx)
	return context.WithValue(ctx, sessionCtxKey, tx), tx
}

// Transaction runs fn in a database transaction. Sessions opened from the
// context passed to fn use that transaction.
func Transaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context) error) error {
	_, tx := OpenSession(ctx, db)
	return tx.Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, sessionCtxKey, tx))
	})
}
