package auth_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jcooky/go-din"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/habiliai/inbox/auth"
	"github.com/habiliai/inbox/entity"
	"github.com/habiliai/inbox/errors"
	"github.com/habiliai/inbox/internal/mytesting"
	"github.com/habiliai/inbox/user"
)

func TestIssuerRoundTrip(t *testing.T) {
	issuer, err := auth.NewIssuer("secret", "inbox", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateToken(&entity.User{ID: 7, Username: "alice"}, 0)
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "inbox", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestIssuerRejectsForeignTokens(t *testing.T) {
	issuer, err := auth.NewIssuer("secret", "inbox", time.Hour)
	require.NoError(t, err)
	u := &entity.User{ID: 7, Username: "alice"}

	other, err := auth.NewIssuer("another-secret", "inbox", time.Hour)
	require.NoError(t, err)
	token, err := other.GenerateToken(u, 0)
	require.NoError(t, err)
	_, err = issuer.ValidateToken(token)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	otherIssuer, err := auth.NewIssuer("secret", "someone-else", time.Hour)
	require.NoError(t, err)
	token, err = otherIssuer.GenerateToken(u, 0)
	require.NoError(t, err)
	_, err = issuer.ValidateToken(token)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	fallback, err := issuer.GenerateToken(u, -time.Hour)
	require.NoError(t, err)
	_, err = issuer.ValidateToken(fallback)
	require.NoError(t, err, "non-positive ttl falls back to the default")

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "inbox",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.ValidateToken(unsigned)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)

	_, err = issuer.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}

func TestIssuerRejectsExpiredTokens(t *testing.T) {
	issuer, err := auth.NewIssuer("secret", "inbox", time.Hour)
	require.NoError(t, err)

	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "inbox",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.ValidateToken(stale)
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := auth.NewIssuer("", "inbox", time.Hour)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	_, err = auth.NewIssuer("secret", "inbox", 0)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

type AuthenticatorTestSuite struct {
	mytesting.Suite

	issuer        *auth.Issuer
	authenticator *auth.Authenticator
	users         user.Manager
}

func (s *AuthenticatorTestSuite) SetupTest() {
	s.Suite.SetupTest()

	s.issuer = din.MustGetT[*auth.Issuer](s.Container)
	s.authenticator = din.MustGetT[*auth.Authenticator](s.Container)
	s.users = din.MustGetT[user.Manager](s.Container)
}

func (s *AuthenticatorTestSuite) TearDownTest() {
	s.Suite.TearDownTest()
}

func (s *AuthenticatorTestSuite) TestAuthenticate() {
	alice, err := s.users.CreateUser(s, "alice")
	s.Require().NoError(err)
	token, err := s.issuer.GenerateToken(alice, 0)
	s.Require().NoError(err)

	r := httptest.NewRequest("GET", "/threads", nil).WithContext(s)
	r.Header.Set("Authorization", "Bearer "+token)

	got, err := s.authenticator.Authenticate(r)
	s.Require().NoError(err)
	s.Equal(alice.ID, got.ID)

	ctx := auth.WithUser(s, got)
	s.Equal(alice.ID, auth.UserID(ctx))
	s.Zero(auth.UserID(s))
}

func (s *AuthenticatorTestSuite) TestAuthenticateRejects() {
	alice, err := s.users.CreateUser(s, "alice")
	s.Require().NoError(err)
	token, err := s.issuer.GenerateToken(alice, 0)
	s.Require().NoError(err)

	ghostToken, err := s.issuer.GenerateToken(&entity.User{ID: 4242, Username: "ghost"}, 0)
	s.Require().NoError(err)

	for name, header := range map[string]string{
		"missing":      "",
		"wrong scheme": "Basic " + token,
		"empty bearer": "Bearer ",
		"garbage":      "Bearer abc.def.ghi",
		"unknown user": "Bearer " + ghostToken,
	} {
		r := httptest.NewRequest("GET", "/threads", nil).WithContext(s)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		_, err := s.authenticator.Authenticate(r)
		s.ErrorIs(err, errors.ErrUnauthenticated, name)
	}

	s.Require().NoError(s.users.Deactivate(s, "alice"))
	r := httptest.NewRequest("GET", "/threads", nil).WithContext(s)
	r.Header.Set("Authorization", "Bearer "+token)
	_, err = s.authenticator.Authenticate(r)
	s.ErrorIs(err, errors.ErrUnauthenticated)
}

func TestAuthenticator(t *testing.T) {
	suite.Run(t, new(AuthenticatorTestSuite))
}
