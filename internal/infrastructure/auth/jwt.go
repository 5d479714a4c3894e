// Package auth verifies the bearer tokens issued by the external identity
// service and turns them into the acting staff member.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims are the claims the warehouse reads from an access token
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Actor returns the staff member the token was issued to
func (c *Claims) Actor() shared.Actor {
	username := c.Username
	if username == "" {
		username = c.UserID
	}
	return shared.Actor{UserID: c.UserID, Username: username}
}

// Verifier validates HS256 tokens signed with the shared secret
type Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// NewVerifier creates a Verifier. Tokens must carry the configured issuer
// when one is set.
func NewVerifier(cfg config.JWTConfig) *Verifier {
	return &Verifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		leeway: 30 * time.Second,
		now:    time.Now,
	}
}

// Verify parses and validates a token and returns its claims
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		if claims.Subject == "" {
			return nil, ErrMissingUserID
		}
		claims.UserID = claims.Subject
	}
	return claims, nil
}

// ExtractBearer returns the token from an Authorization header value
func ExtractBearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
