package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/jcooky/go-din"

	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/user"
)

type (
	Authenticator struct {
		issuer *Issuer
		users  user.Manager
	}

	userCtxKey struct{}
)

func NewAuthenticator(issuer *Issuer, users user.Manager) *Authenticator {
	return &Authenticator{issuer: issuer, users: users}
}

// Authenticate resolves the bearer token of r to an active user.
func (a *Authenticator) Authenticate(r *http.Request) (*entity.User, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, errors.Wrapf(errors.ErrUnauthenticated, "missing bearer token")
	}

	claims, err := a.issuer.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		return nil, err
	}

	u, err := a.users.GetUserById(r.Context(), claims.UserID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Wrapf(errors.ErrUnauthenticated, "unknown user")
	} else if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, errors.Wrapf(errors.ErrUnauthenticated, "user is inactive")
	}

	return u, nil
}

func WithUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

func UserFromContext(ctx context.Context) *entity.User {
	u, _ := ctx.Value(userCtxKey{}).(*entity.User)
	return u
}

// UserID returns the authenticated user's id, or 0 when ctx carries none.
func UserID(ctx context.Context) uint {
	if u := UserFromContext(ctx); u != nil {
		return u.ID
	}
	return 0
}

func init() {
	din.RegisterT(func(c *din.Container) (*Authenticator, error) {
		issuer, err := din.GetT[*Issuer](c)
		if err != nil {
			return nil, err
		}

		return NewAuthenticator(issuer, din.MustGetT[user.Manager](c)), nil
	})
}
