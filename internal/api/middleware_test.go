package api

import (
	"alcyxob/dieta-core/internal/auth"
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/result"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMaskBody(t *testing.T) {
	body := `{"email":"a@dieta.test","password":"Secret#123","profile":{"Token":"abc"},"items":[{"newPassword":"x"}]}`
	out := maskBody([]byte(body))

	assert.Contains(t, out, `"email":"a@dieta.test"`)
	assert.Contains(t, out, `"password":"***"`)
	assert.Contains(t, out, `"Token":"***"`)
	assert.Contains(t, out, `"newPassword":"***"`)
	assert.NotContains(t, out, "Secret#123")

	assert.Equal(t, `{"id":9007199254740993,"password":"***","weight":72.35}`,
		maskBody([]byte(`{"id":9007199254740993,"weight":72.35,"password":"p"}`)))

	assert.Equal(t, "plain text", maskBody([]byte("plain text")))
	assert.Empty(t, maskBody(nil))

	long := maskBody([]byte(strings.Repeat("a", 1500)))
	assert.True(t, strings.HasSuffix(long, "...(truncated)"))
	assert.Equal(t, maxLoggedBody+len("...(truncated)"), len(long))
}

func TestMaskHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer secret")
	h.Set("Cookie", "session=1")
	h.Set("Content-Type", "application/json")

	out := maskHeaders(h)
	assert.Equal(t, masked, out["Authorization"])
	assert.Equal(t, masked, out["Cookie"])
	assert.Equal(t, "application/json", out["Content-Type"])
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, requestID(c)) })

	w := perform(t, r, http.MethodGet, "/", "", nil)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
	assert.Equal(t, w.Header().Get(HeaderRequestID), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}

func TestRequestLogger_MasksSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.New(core)))
	r.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": "jwt-value"})
	})
	r.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "nope"})
	})

	perform(t, r, http.MethodPost, "/login", "some-token", map[string]string{"email": "a@dieta.test", "password": goodPassword})
	perform(t, r, http.MethodGet, "/missing", "", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, zapcore.InfoLevel, first.Level)
	fields := first.ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["requestID"])
	assert.NotContains(t, fields["requestBody"], goodPassword)
	assert.Contains(t, fields["requestBody"], `"password":"***"`)
	assert.Contains(t, fields["responseBody"], `"token":"***"`)
	headers, ok := fields["headers"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, masked, headers["Authorization"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := perform(t, r, http.MethodGet, "/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decode[any](t, w)
	assert.Equal(t, result.Fail, env.Code)
	assert.Equal(t, msgInternalError, env.Message)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestMetricsMiddleware(t *testing.T) {
	rec := &fakeRecorder{}
	r := gin.New()
	r.Use(Metrics(rec))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	perform(t, r, http.MethodGet, "/items/7", "", nil)
	perform(t, r, http.MethodGet, "/nowhere", "", nil)

	assert.Equal(t, 2, rec.started)
	assert.Equal(t, []string{"/items/:id", "unmatched"}, rec.routes)
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNotFound}, rec.statuses)
}

func protectedRouter(tokens *auth.TokenManager) *gin.Engine {
	r := gin.New()
	r.GET("/admin", Authenticate(tokens), RequireRoles(domain.RoleAdmin), func(c *gin.Context) {
		id, err := auth.CurrentUserID(c.Request.Context())
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, result.OK(id, ""))
	})
	return r
}

func TestAuthenticate(t *testing.T) {
	tokens := newTokens()
	r := protectedRouter(tokens)

	cases := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"missing", "", http.StatusUnauthorized, "Authorization header is missing."},
		{"bad scheme", "Token abc", http.StatusUnauthorized, "Authorization header format must be Bearer {token}."},
		{"garbage", "Bearer not-a-jwt", http.StatusUnauthorized, "Invalid token."},
		{"wrong secret", "Bearer " + tokenFor(t, auth.NewTokenManager("other", time.Hour, testIssuer, testAudience), 5, domain.RoleAdmin), http.StatusUnauthorized, "Invalid token."},
		{"wrong role", "Bearer " + tokenFor(t, tokens, 5, domain.RoleDietitian), http.StatusForbidden, "You don't have permission to access this resource."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.msg, decode[any](t, w).Message)
		})
	}

	w := perform(t, r, http.MethodGet, "/admin", tokenFor(t, tokens, 5, domain.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), decode[int64](t, w).Data)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	claims := &auth.Claims{
		UserID: "5",
		Roles:  []domain.Role{domain.RoleAdmin},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	w := perform(t, protectedRouter(newTokens()), http.MethodGet, "/admin", signed, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Token has expired.", decode[any](t, w).Message)
}
