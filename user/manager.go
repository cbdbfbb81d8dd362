package user

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/jcooky/go-din"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/internal/db"
	"github.com/habiliai/inbox/internal/mylog"
	"github.com/habiliai/inbox/internal/stringutils"
)

type (
	Manager interface {
		CreateUser(ctx context.Context, username string) (*entity.User, error)
		GetUserById(ctx context.Context, id uint) (*entity.User, error)
		GetUserByUsername(ctx context.Context, username string) (*entity.User, error)
		// FindActiveByUsernames resolves handles to active users. Handles that
		// do not resolve are returned separately, in request order.
		FindActiveByUsernames(ctx context.Context, usernames []string) (found []entity.User, missing []string, err error)
		Deactivate(ctx context.Context, username string) error
		ImportFile(ctx context.Context, filename string) ([]entity.User, error)
	}

	manager struct {
		logger   *slog.Logger
		db       *gorm.DB
		validate *validator.Validate
	}

	importFile struct {
		Users []struct {
			Username string `yaml:"username"`
			Active   *bool  `yaml:"active"`
		} `yaml:"users"`
	}

	newUser struct {
		Username string `validate:"required,alphanum,min=2,max=150"`
	}
)

var (
	_ Manager = (*manager)(nil)
)

func (m *manager) CreateUser(ctx context.Context, username string) (*entity.User, error) {
	_, tx := db.OpenSession(ctx, m.db)

	username = stringutils.NormalizeHandle(username)
	if err := m.validate.Struct(newUser{Username: username}); err != nil {
		return nil, errors.NewValidationError("username", "username must be 2-150 letters or digits")
	}

	u := entity.User{Username: username, IsActive: true}
	if err := tx.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.NewValidationError("username", "username already taken")
		}
		return nil, errors.Wrapf(err, "failed to create user")
	}

	m.logger.Debug("user created", "id", u.ID, "username", u.Username)
	return &u, nil
}

func (m *manager) GetUserById(ctx context.Context, id uint) (*entity.User, error) {
	_, tx := db.OpenSession(ctx, m.db)

	var u entity.User
	if r := tx.Limit(1).Find(&u, id); r.Error != nil {
		return nil, errors.Wrapf(r.Error, "failed to find user")
	} else if r.RowsAffected == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "user not found")
	}

	return &u, nil
}

func (m *manager) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	_, tx := db.OpenSession(ctx, m.db)

	var u entity.User
	if r := tx.Limit(1).Find(&u, "username = ?", stringutils.NormalizeHandle(username)); r.Error != nil {
		return nil, errors.Wrapf(r.Error, "failed to find user")
	} else if r.RowsAffected == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "user not found")
	}

	return &u, nil
}

func (m *manager) FindActiveByUsernames(ctx context.Context, usernames []string) ([]entity.User, []string, error) {
	_, tx := db.OpenSession(ctx, m.db)

	handles := lo.Uniq(lo.Map(usernames, func(u string, _ int) string {
		return stringutils.NormalizeHandle(u)
	}))
	if len(handles) == 0 {
		return nil, nil, nil
	}

	var users []entity.User
	if err := tx.Where("username IN ? AND is_active = ?", handles, true).Find(&users).Error; err != nil {
		return nil, nil, errors.Wrapf(err, "failed to find users")
	}

	found := lo.SliceToMap(users, func(u entity.User) (string, struct{}) {
		return u.Username, struct{}{}
	})
	missing := lo.Filter(handles, func(h string, _ int) bool {
		_, ok := found[h]
		return !ok
	})

	return users, missing, nil
}

func (m *manager) Deactivate(ctx context.Context, username string) error {
	_, tx := db.OpenSession(ctx, m.db)

	r := tx.Model(&entity.User{}).
		Where("username = ?", stringutils.NormalizeHandle(username)).
		Update("is_active", false)
	if r.Error != nil {
		return errors.Wrapf(r.Error, "failed to deactivate user")
	} else if r.RowsAffected == 0 {
		return errors.Wrapf(errors.ErrNotFound, "user not found")
	}

	return nil
}

// ImportFile creates the users listed in a YAML file of the form
//
//	users:
//	  - username: alice
//	  - username: bob
//	    active: false
//
// Existing usernames are skipped. The whole file is imported in one
// transaction.
func (m *manager) ImportFile(ctx context.Context, filename string) ([]entity.User, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", filename)
	}

	var file importFile
	if err := yaml.Unmarshal(contents, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", filename)
	}

	var imported []entity.User
	err = db.Transaction(ctx, m.db, func(ctx context.Context) error {
		for _, entry := range file.Users {
			if _, err := m.GetUserByUsername(ctx, entry.Username); err == nil {
				m.logger.Info("user already exists, skipping", "username", entry.Username)
				continue
			} else if !errors.Is(err, errors.ErrNotFound) {
				return err
			}

			u, err := m.CreateUser(ctx, entry.Username)
			if err != nil {
				return errors.Wrapf(err, "failed to import %q", entry.Username)
			}
			if entry.Active != nil && !*entry.Active {
				if err := m.Deactivate(ctx, u.Username); err != nil {
					return err
				}
				u.IsActive = false
			}
			imported = append(imported, *u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return imported, nil
}

func init() {
	din.RegisterT(func(c *din.Container) (Manager, error) {
		logger, err := din.GetT[*mylog.Logger](c)
		if err != nil {
			return nil, err
		}

		return &manager{
			logger:   logger,
			db:       din.MustGetT[*gorm.DB](c),
			validate: validator.New(validator.WithRequiredStructEnabled()),
		}, nil
	})
}
