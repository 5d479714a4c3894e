package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Actor context keys and headers
const (
	ActorKey          = "actor"
	AuthHeaderKey     = "Authorization"
	DevUserIDHeader   = "X-User-ID"
	DevUsernameHeader = "X-Username"
)

// TokenVerifier verifies a bearer token
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// ActorConfig holds configuration for the actor middleware
type ActorConfig struct {
	Verifier TokenVerifier
	// DevHeaders accepts X-User-ID / X-Username when no bearer token is sent.
	// Never enable it in production.
	DevHeaders bool
	// SkipPaths are paths that don't need an actor
	SkipPaths []string
	Logger    *zap.Logger
}

// Actor resolves the acting staff member for every request. A bearer token
// is verified when present; otherwise the development headers are used when
// enabled. Requests with neither are rejected with 401.
func Actor(cfg ActorConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]bool, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		actor, err := resolveActor(c, cfg)
		if err != nil {
			log.Warn("Actor authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", GetRequestID(c)))
			abortUnauthorized(c, err)
			return
		}

		c.Set(ActorKey, actor)
		c.Set(logger.GinUserIDKey, actor.UserID)
		ctx, _ := logger.WithActor(c.Request.Context(), logger.FromContext(c.Request.Context()), actor.UserID, actor.Username)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

var errNoCredentials = errors.New("no credentials supplied")

func resolveActor(c *gin.Context, cfg ActorConfig) (shared.Actor, error) {
	if header := c.GetHeader(AuthHeaderKey); header != "" {
		token, ok := auth.ExtractBearer(header)
		if !ok || cfg.Verifier == nil {
			return shared.Actor{}, auth.ErrInvalidToken
		}
		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			return shared.Actor{}, err
		}
		return claims.Actor(), nil
	}

	if cfg.DevHeaders {
		userID := strings.TrimSpace(c.GetHeader(DevUserIDHeader))
		if userID != "" {
			username := strings.TrimSpace(c.GetHeader(DevUsernameHeader))
			if username == "" {
				username = userID
			}
			return shared.Actor{UserID: userID, Username: username}, nil
		}
	}
	return shared.Actor{}, errNoCredentials
}

func abortUnauthorized(c *gin.Context, err error) {
	code := shared.CodeUnauthorized
	message := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		message = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingUserID):
		code = dto.ErrCodeTokenInvalid
		message = "Invalid token"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetActor retrieves the actor stored by the Actor middleware
func GetActor(c *gin.Context) (shared.Actor, bool) {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(shared.Actor); ok {
			return actor, true
		}
	}
	return shared.Actor{}, false
}
