package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jcooky/go-din"

	"github.com/habiliai/inbox/config"
	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/errors"
)

// Claims is the payload of an inbox bearer token.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret, issuer string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "JWT_SECRET is required")
	}
	if ttl <= 0 {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "JWT_TTL must be positive")
	}

	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// GenerateToken signs an HS256 token for u. A non-positive ttl falls back to
// the issuer default.
func (i *Issuer) GenerateToken(u *entity.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = i.ttl
	}
	now := i.now()

	claims := &Claims{
		UserID: u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.Username,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", errors.Wrapf(err, "failed to sign token")
	}

	return signed, nil
}

// ValidateToken checks signature, algorithm, issuer and expiry.
func (i *Issuer) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnauthenticated, "invalid token: %v", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == 0 {
		return nil, errors.Wrapf(errors.ErrUnauthenticated, "invalid token")
	}

	return claims, nil
}

func init() {
	din.RegisterT(func(c *din.Container) (*Issuer, error) {
		conf, err := din.GetT[*config.ServerConfig](c)
		if err != nil {
			return nil, err
		}

		return NewIssuer(conf.JwtSecret, conf.JwtIssuer, conf.JwtTTL)
	})
}
