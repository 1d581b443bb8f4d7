package session

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueThenValidate(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), time.Hour)

	token, err := issuer.Issue(7, "a@x.com", "editor")
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.AccountId)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "editor", claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestValidateAfterTTL(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewIssuer([]byte("secret"), time.Hour).WithClock(fixedClock(start))

	token, err := issuer.Issue(1, "a@x.com", "admin")
	require.NoError(t, err)

	_, err = issuer.WithClock(fixedClock(start.Add(59 * time.Minute))).Validate(token)
	assert.NoError(t, err)

	_, err = issuer.WithClock(fixedClock(start.Add(time.Hour + time.Second))).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateRejectsTampering(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), time.Hour)
	token, err := issuer.Issue(1, "a@x.com", "editor")
	require.NoError(t, err)

	other := NewIssuer([]byte("other-secret"), time.Hour)
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{AccountId: 1, Role: "admin"}).SignedString([]byte("x"))
	require.NoError(t, err)
	tampered := strings.Split(forged, ".")[0] + "." + strings.Split(forged, ".")[1] + "." + parts[2]
	_, err = issuer.Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = issuer.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateRequiresExpiry(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{AccountId: 1}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	issuer := NewIssuer([]byte("secret"), time.Hour)
	claims := Claims{
		AccountId:        1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
