package api

import (
	"alcyxob/dieta-core/internal/identity"
	"alcyxob/dieta-core/internal/metrics"
	"alcyxob/dieta-core/internal/ownership"
	"alcyxob/dieta-core/internal/repository/memory"
	"alcyxob/dieta-core/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"
)

const adminEmail = "admin@dieta.test"

type nopFiles struct{}

func (nopFiles) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://files.test/put/" + key, nil
}

func (nopFiles) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/get/" + key, nil
}

func (nopFiles) DeleteObject(context.Context, string) error { return nil }

// newServer wires the full application on the in-memory store with a
// seeded administrator.
func newServer(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	log := zap.NewNop()
	store := memory.NewStore()
	ids := identity.NewProvider(store.Users, identity.Options{BcryptCost: bcrypt.MinCost}, log)
	require.NoError(t, ids.EnsureAdmin(context.Background(), adminEmail, goodPassword))
	resolver := ownership.NewResolver(store)
	tokens := newTokens()

	deps.Services = Services{
		Auth:      service.NewAuthService(ids, tokens, store.Tx, log),
		Dietitian: service.NewDietitianService(store, ids, resolver, log),
		Client:    service.NewClientService(store, ids, resolver, log),
		DietPlan:  service.NewDietPlanService(store, resolver, log),
		Meal:      service.NewMealService(store, resolver, log),
		Progress:  service.NewProgressService(store, resolver, nopFiles{}, time.Minute, log),
	}
	deps.Tokens = tokens
	if deps.Logger == nil {
		deps.Logger = log
	}

	r := gin.New()
	require.NoError(t, SetupRoutes(r, deps))
	return r
}

func login(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w := perform(t, r, http.MethodPost, "/api/v1/auth/login", "", service.LoginInput{Email: email, Password: goodPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[service.AuthResponse](t, w).Data.Token
}

func TestRoutes_StaffWorkflow(t *testing.T) {
	r := newServer(t, Deps{})
	adminToken := login(t, r, adminEmail)

	w := perform(t, r, http.MethodPost, "/api/v1/admin/dietitians", adminToken, map[string]any{
		"firstName":      "Dana",
		"lastName":       "Dietitian",
		"email":          "dana@dieta.test",
		"password":       goodPassword,
		"phoneNumber":    "+15551234567",
		"specialization": "Sports nutrition",
		"licenseNumber":  "LIC-1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dietitian := decode[service.DietitianResponse](t, w)
	assert.Equal(t, "Dietitian created successfully.", dietitian.Message)

	dietToken := login(t, r, "dana@dieta.test")

	w = perform(t, r, http.MethodPost, "/api/v1/dietitian/clients", dietToken, map[string]any{
		"firstName":     "Cleo",
		"lastName":      "Client",
		"email":         "cleo@dieta.test",
		"password":      goodPassword,
		"phoneNumber":   "+15557654321",
		"dateOfBirth":   "1990-05-10T00:00:00Z",
		"gender":        "Female",
		"height":        168,
		"initialWeight": 82,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	client := decode[service.ClientResponse](t, w).Data
	require.NotNil(t, client.DietitianID)
	assert.Equal(t, dietitian.Data.ID, *client.DietitianID)

	w = perform(t, r, http.MethodGet, "/api/v1/dietitian/clients", dietToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]service.ClientResponse](t, w).Data, 1)

	start := time.Now().UTC().AddDate(0, 0, 1).Truncate(24 * time.Hour)
	w = perform(t, r, http.MethodPost, "/api/v1/dietitian/plans", dietToken, map[string]any{
		"title":         "Cut",
		"startDate":     start,
		"endDate":       start.AddDate(0, 1, 0),
		"initialWeight": 82,
		"targetWeight":  75,
		"clientId":      client.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[service.DietPlanResponse](t, w).Data

	w = perform(t, r, http.MethodPost, "/api/v1/dietitian/meals", dietToken, map[string]any{
		"title":      "Breakfast",
		"startTime":  "08:00",
		"endTime":    "08:30",
		"contents":   "Oats and berries",
		"calories":   350,
		"dietPlanId": plan.ID,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	clientToken := login(t, r, "cleo@dieta.test")

	w = perform(t, r, http.MethodGet, "/api/v1/client/profile", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dana Dietitian", decode[service.ClientResponse](t, w).Data.DietitianName)

	w = perform(t, r, http.MethodGet, "/api/v1/client/plans/"+strconv.FormatInt(plan.ID, 10)+"/meals", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	meals := decode[[]map[string]any](t, w).Data
	require.Len(t, meals, 1)
	assert.Equal(t, "08:00:00", meals[0]["startTime"])

	// Role checks happen before any service call.
	w = perform(t, r, http.MethodGet, "/api/v1/dietitian/clients", clientToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = perform(t, r, http.MethodGet, "/api/v1/admin/clients", dietToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(t, r, http.MethodGet, "/api/v1/dietitian/clients/abc", dietToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidID, decode[any](t, w).Message)

	w = perform(t, r, http.MethodGet, "/api/v1/dietitian/clients/999", dietToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ownership.MsgClientNotFound, decode[any](t, w).Message)

	// The administrator can unassign the client.
	w = perform(t, r, http.MethodDelete, "/api/v1/admin/clients/"+strconv.FormatInt(client.ID, 10)+"/dietitian", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = perform(t, r, http.MethodGet, "/api/v1/dietitian/clients", dietToken, nil)
	assert.Empty(t, decode[[]service.ClientResponse](t, w).Data)
}

func TestRoutes_RegisterConfirmLogin(t *testing.T) {
	r := newServer(t, Deps{})

	w := perform(t, r, http.MethodPost, "/api/v1/auth/register", "", service.RegisterInput{
		FirstName: "Reg",
		LastName:  "User",
		Email:     "reg@dieta.test",
		Password:  goodPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	registered := decode[service.AuthResponse](t, w).Data

	w = perform(t, r, http.MethodPost, "/api/v1/auth/login", "", service.LoginInput{Email: "reg@dieta.test", Password: goodPassword})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.MsgEmailNotConfirmed, decode[any](t, w).Message)

	w = perform(t, r, http.MethodPost, "/api/v1/auth/confirmation-token", registered.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmation := decode[string](t, w).Data
	require.NotEmpty(t, confirmation)

	w = perform(t, r, http.MethodPost, "/api/v1/auth/confirm-email", "", service.ConfirmEmailInput{UserID: registered.ID, Token: "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, r, http.MethodPost, "/api/v1/auth/confirm-email", "", service.ConfirmEmailInput{UserID: registered.ID, Token: confirmation})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token := login(t, r, "reg@dieta.test")
	w = perform(t, r, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "reg@dieta.test", decode[service.UserResponse](t, w).Data.Email)
}

func TestRoutes_ValidationAndAuthErrors(t *testing.T) {
	r := newServer(t, Deps{})

	w := perform(t, r, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"lastName": "User",
		"email":    "nope",
		"password": goodPassword,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decode[any](t, w)
	assert.Equal(t, "First name is required. "+msgInvalidEmail, env.Message)
	assert.Nil(t, env.Data)

	w = perform(t, r, http.MethodPost, "/api/v1/auth/login", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgValidationFailed, decode[any](t, w).Message)

	w = perform(t, r, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(t, r, http.MethodPost, "/api/v1/auth/login", "", service.LoginInput{Email: "ghost@dieta.test", Password: goodPassword})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, service.MsgInvalidCredentials, decode[any](t, w).Message)
}

func TestRoutes_LoginRateLimitAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	limiter := NewLoginLimiter(LoginLimiterConfig{PerMinute: 1, Burst: 1}, collector, zap.NewNop())
	defer limiter.Stop()

	r := newServer(t, Deps{LoginLimiter: limiter, Recorder: collector, Gatherer: reg})

	login(t, r, adminEmail)
	w := perform(t, r, http.MethodPost, "/api/v1/auth/login", "", service.LoginInput{Email: adminEmail, Password: goodPassword})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = perform(t, r, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `dieta_http_requests_total{method="GET",route="/ping",status="200"} 1`)
	assert.Contains(t, body, "dieta_login_throttled_total 1")
}

func loginRequest(r http.Handler, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"x@dieta.test","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRoutes_LoginLimiterKeysOnPeerWithoutTrustedProxies(t *testing.T) {
	limiter := NewLoginLimiter(LoginLimiterConfig{PerMinute: 1, Burst: 2}, &fakeRecorder{}, zap.NewNop())
	defer limiter.Stop()
	r := newServer(t, Deps{LoginLimiter: limiter})

	var throttled int
	for i := 1; i <= 20; i++ {
		if loginRequest(r, "192.0.2.1:4000", "203.0.113."+strconv.Itoa(i)) == http.StatusTooManyRequests {
			throttled++
		}
	}
	assert.Equal(t, 18, throttled)
	assert.Equal(t, 1, limiter.size())
}

func TestRoutes_LoginLimiterHonoursTrustedProxy(t *testing.T) {
	limiter := NewLoginLimiter(LoginLimiterConfig{PerMinute: 1, Burst: 1}, &fakeRecorder{}, zap.NewNop())
	defer limiter.Stop()
	r := newServer(t, Deps{LoginLimiter: limiter, TrustedProxies: []string{"10.0.0.0/8"}})

	assert.NotEqual(t, http.StatusTooManyRequests, loginRequest(r, "10.1.2.3:4000", "203.0.113.1"))
	assert.NotEqual(t, http.StatusTooManyRequests, loginRequest(r, "10.1.2.3:4000", "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, loginRequest(r, "10.1.2.3:4000", "203.0.113.2"))
	assert.Equal(t, 2, limiter.size())
}

func TestSetupRoutes_RejectsInvalidTrustedProxy(t *testing.T) {
	err := SetupRoutes(gin.New(), Deps{Logger: zap.NewNop(), TrustedProxies: []string{"not-an-ip"}})
	assert.Error(t, err)
}

func TestRoutes_PanicIsLoggedAndCounted(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rec := &fakeRecorder{}
	r := newServer(t, Deps{Logger: zap.New(core), Recorder: rec})
	r.POST("/boom", func(c *gin.Context) { panic("kaboom") })

	w := perform(t, r, http.MethodPost, "/boom", "some-token", map[string]string{"password": goodPassword})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	requests := logs.FilterMessage("request").All()
	require.Len(t, requests, 1)
	assert.Equal(t, zapcore.ErrorLevel, requests[0].Level)
	fields := requests[0].ContextMap()
	assert.Equal(t, int64(http.StatusInternalServerError), fields["status"])
	assert.Equal(t, "/boom", fields["route"])
	assert.Contains(t, fields["requestBody"], `"password":"***"`)
	assert.NotContains(t, fields["requestBody"], goodPassword)
	assert.Contains(t, fields["responseBody"], msgInternalError)

	assert.Equal(t, []int{http.StatusInternalServerError}, rec.statuses)
}

func TestRoutes_MetricsDisabled(t *testing.T) {
	r := newServer(t, Deps{})
	w := perform(t, r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
