// Package session issues and validates the signed, time-limited tokens that
// carry an account's identity and role between requests.
package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/beyondbeauty/press/util/common"
)

const loginClaims = "LOGIN_CLAIMS"

// ErrInvalidSession is returned for any token that fails validation. Callers
// are not told whether it was expired, tampered with or malformed.
var ErrInvalidSession = errors.New("invalid session")

// Claims is the payload of a session token.
type Claims struct {
	AccountId int    `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs tokens with a server-held HMAC secret. Expiry is absolute.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	c := *i
	c.now = now
	return &c
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(accountId int, email, role string) (string, error) {
	issuedAt := i.now()
	claims := Claims{
		AccountId: accountId,
		Email:     email,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(accountId),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(i.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", &common.CryptoError{Op: "sign session", Err: err}
	}
	return token, nil
}

func (i *Issuer) Validate(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

func SetLoginClaims(c *gin.Context, claims *Claims) {
	c.Set(loginClaims, claims)
}

func GetLoginClaims(c *gin.Context) *Claims {
	if obj, ok := c.Get(loginClaims); ok {
		if claims, ok := obj.(*Claims); ok {
			return claims
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginClaims(c) != nil
}
