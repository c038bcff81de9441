package api

import (
	"alcyxob/dieta-core/internal/auth"
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/result"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret"
	testIssuer   = "dieta-core"
	testAudience = "dieta-core-clients"
	goodPassword = "Secret#123"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager(testSecret, time.Hour, testIssuer, testAudience)
}

func tokenFor(t *testing.T, tokens *auth.TokenManager, id int64, roles ...domain.Role) string {
	t.Helper()
	token, _, err := tokens.Issue(&domain.User{ID: id, FirstName: "Test", LastName: "User", Email: "user@dieta.test", Roles: roles})
	require.NoError(t, err)
	return token
}

// perform sends a JSON request through r. body may be nil, a string sent
// verbatim, or a value to marshal.
func perform(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) result.Result[T] {
	t.Helper()
	var r result.Result[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r), w.Body.String())
	return r
}

// fakeRecorder captures what the middleware reports.
type fakeRecorder struct {
	mu        sync.Mutex
	started   int
	routes    []string
	statuses  []int
	throttled int
}

func (f *fakeRecorder) RequestStarted() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
}

func (f *fakeRecorder) RequestFinished(_ string, route string, status int, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, route)
	f.statuses = append(f.statuses, status)
}

func (f *fakeRecorder) LoginThrottled() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.throttled++
}
