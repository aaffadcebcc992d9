package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapi/internal/config"
	"todoapi/internal/core/domain"
)

func newIssuer(secret string, now time.Time) *JWTIssuer {
	issuer := NewJWTIssuer(config.AuthConfig{JWTSecret: secret, Issuer: "todo-api", TokenTTL: time.Hour})
	issuer.now = func() time.Time { return now }
	return issuer
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	now := time.Now()
	issuer := newIssuer("secret", now)

	token, err := issuer.Issue(domain.User{ID: 42, Username: "ana", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.Equal(t, now.Add(time.Hour), token.ExpiresAt)

	userID, err := issuer.Verify(token.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestJWTIssuer_RejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Now()
	token, err := newIssuer("secret", now).Issue(domain.User{ID: 1})
	require.NoError(t, err)

	_, err = newIssuer("secret", now.Add(2*time.Hour)).Verify(token.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = newIssuer("other-secret", now).Verify(token.Token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = newIssuer("secret", now).Verify("not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
