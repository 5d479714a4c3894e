package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wms/backend/internal/infrastructure/auth"
	"github.com/wms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret-key-that-is-at-least-32-chars"

func signToken(t *testing.T, userID, username string, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "wms-auth",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
		UserID:   userID,
		Username: username,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func actorRouter(cfg ActorConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Actor(cfg))
	router.GET("/api/v1/health", func(c *gin.Context) {
		_, ok := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"has_actor": ok})
	})
	router.GET("/api/v1/whoami", func(c *gin.Context) {
		actor, _ := GetActor(c)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "username": actor.Username})
	})
	return router
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestActor(t *testing.T) {
	verifier := auth.NewVerifier(config.JWTConfig{Secret: testSecret, Issuer: "wms-auth"})
	cfg := ActorConfig{Verifier: verifier, SkipPaths: []string{"/api/v1/health"}}

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
		req.Header.Set(AuthHeaderKey, "Bearer "+signToken(t, "u-7", "alice", time.Hour))
		w := httptest.NewRecorder()
		actorRouter(cfg).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "u-7", body["user_id"])
		assert.Equal(t, "alice", body["username"])
	})

	t.Run("expired token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
		req.Header.Set(AuthHeaderKey, "Bearer "+signToken(t, "u-7", "alice", -time.Hour))
		w := httptest.NewRecorder()
		actorRouter(cfg).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "TOKEN_EXPIRED", decodeBody(t, w)["error"].(map[string]interface{})["code"])
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
		req.Header.Set(AuthHeaderKey, "Token abc")
		w := httptest.NewRecorder()
		actorRouter(cfg).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_TOKEN", decodeBody(t, w)["error"].(map[string]interface{})["code"])
	})

	t.Run("dev headers ignored unless enabled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
		req.Header.Set(DevUserIDHeader, "u-9")
		w := httptest.NewRecorder()
		actorRouter(cfg).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeBody(t, w)["error"].(map[string]interface{})["code"])
	})

	t.Run("dev headers", func(t *testing.T) {
		devCfg := cfg
		devCfg.DevHeaders = true
		req := httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil)
		req.Header.Set(DevUserIDHeader, "u-9")
		req.Header.Set(DevUsernameHeader, "bob")
		w := httptest.NewRecorder()
		actorRouter(devCfg).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "bob", decodeBody(t, w)["username"])
	})

	t.Run("skipped path", func(t *testing.T) {
		w := httptest.NewRecorder()
		actorRouter(cfg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decodeBody(t, w)["has_actor"])
	})
}

func TestActor_LogsRejections(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := ActorConfig{Logger: zap.New(core)}

	w := httptest.NewRecorder()
	actorRouter(cfg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/whoami", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	entries := logs.FilterMessage("Actor authentication failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/api/v1/whoami", entries[0].ContextMap()["path"])
}
