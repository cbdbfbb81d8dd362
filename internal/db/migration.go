package db

import (
	"context"

	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/errors"
	"gorm.io/gorm"
)

func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	_, tx := OpenSession(ctx, db)

	return errors.WithStack(tx.AutoMigrate(
		&entity.User{},
		&entity.Thread{},
		&entity.Message{},
	))
}

func DropAll(ctx context.Context, db *gorm.DB) error {
	_, tx := OpenSession(ctx, db)
	return errors.WithStack(tx.Migrator().DropTable(
		entity.ThreadParticipantsTable,
		&entity.Message{},
		&entity.Thread{},
		&entity.User{},
	))
}
