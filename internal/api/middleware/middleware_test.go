package middleware

import (
	"Bulletin/internal/api/config"
	"Bulletin/internal/api/dto"
	"Bulletin/internal/pkg/consts"
	"Bulletin/internal/pkg/logger"
	"Bulletin/internal/pkg/response"
	"Bulletin/internal/pkg/security"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenManager(t *testing.T) *security.TokenManager {
	t.Helper()
	tm, err := security.NewTokenManager(config.JWTConfig{Secret: "test-secret", Issuer: "Bulletin"})
	require.NoError(t, err)
	return tm
}

func decode(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newAuthRouter(tm *security.TokenManager, rdb redis.Cmdable, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(tm, rdb)}
	if len(roles) > 0 {
		handlers = append(handlers, CheckRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		response.Success(c, gin.H{
			"user_id": c.GetUint64("user_id"),
			"ctx_uid": c.Request.Context().Value(consts.UserIDKey),
		})
	})
	r.GET("/me", handlers...)
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tm := newTokenManager(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), Protocol: 2})
	t.Cleanup(func() { _ = rdb.Close() })
	r := newAuthRouter(tm, rdb)

	assert.Equal(t, response.Unauthorized, decode(t, get(r, "")).Code)
	assert.Equal(t, response.Unauthorized, decode(t, get(r, "a.b")).Code)
	assert.Equal(t, response.Unauthorized, decode(t, get(r, "a.b.c")).Code)

	token, err := tm.GenerateToken(7, nil)
	require.NoError(t, err)
	resp := decode(t, get(r, token))
	require.Equal(t, response.Ok, resp.Code)
	data := resp.Data.(map[string]any)
	assert.EqualValues(t, 7, data["user_id"])
	assert.EqualValues(t, 7, data["ctx_uid"])

	sig, err := security.ExtractSignature(token)
	require.NoError(t, err)
	require.NoError(t, mr.Set(consts.TokenRevokedKey+sig, "1"))
	assert.Equal(t, response.Unauthorized, decode(t, get(r, token)).Code)
}

func TestCheckRoles(t *testing.T) {
	tm := newTokenManager(t)
	r := newAuthRouter(tm, nil, security.RoleAdmin, security.RoleAudit)

	plain, err := tm.GenerateToken(1, []string{"USER"})
	require.NoError(t, err)
	assert.Equal(t, response.Forbidden, decode(t, get(r, plain)).Code)

	auditor, err := tm.GenerateToken(2, []string{security.RoleAudit})
	require.NoError(t, err)
	assert.Equal(t, response.Ok, decode(t, get(r, auditor)).Code)
}

func TestAuthOptionalMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tm := newTokenManager(t)
	r := gin.New()
	r.GET("/me", AuthOptionalMiddleware(tm), func(c *gin.Context) {
		response.Success(c, c.GetUint64("user_id"))
	})

	assert.EqualValues(t, 0, decode(t, get(r, "")).Data)
	assert.EqualValues(t, 0, decode(t, get(r, "garbage.token.value")).Data)

	token, err := tm.GenerateToken(9, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 9, decode(t, get(r, token)).Data)
}

func TestTraceMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var seen any
	r.GET("/", TraceMiddleware(), func(c *gin.Context) {
		seen = c.Request.Context().Value(logger.TraceIDKey)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, "client-trace-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-trace-1", w.Header().Get(TraceHeader))
	assert.Equal(t, "client-trace-1", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceHeader, strings.Repeat("x", 100))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(TraceHeader), 36)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

