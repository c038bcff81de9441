package api

import (
	"alcyxob/dieta-core/internal/auth"
	"alcyxob/dieta-core/internal/domain"
	"alcyxob/dieta-core/internal/metrics"
	"alcyxob/dieta-core/internal/result"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	HeaderRequestID  = "X-Request-ID"
	contextRequestID = "requestID"

	maxLoggedBody = 1000
	masked        = "***"
)

var (
	sensitiveFields = map[string]bool{
		"password": true, "newpassword": true, "token": true, "accesstoken": true,
		"refreshtoken": true, "creditcard": true, "ssn": true,
	}
	sensitiveHeaders = map[string]bool{
		"authorization": true, "cookie": true, "set-cookie": true, "x-api-key": true,
		"x-auth-token": true, "authentication": true,
	}
)

// Recovery turns a panic into a Fail envelope and logs the stack.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
				)
				abortWith(c, result.Fail, msgInternalError)
			}
		}()
		c.Next()
	}
}

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(contextRequestID)
}

// bodyRecorder keeps a copy of the response body for the request log.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if w.body.Len() < maxLoggedBody {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// RequestLogger logs every request with its response. Secrets in JSON
// bodies and headers are masked and bodies are truncated.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var reqBody []byte
		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(reqBody))
		}
		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("requestID", requestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("clientIP", c.ClientIP()),
			zap.Any("headers", maskHeaders(c.Request.Header)),
			zap.String("requestBody", maskBody(reqBody)),
			zap.String("responseBody", maskBody(rec.body.Bytes())),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

func maskHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if sensitiveHeaders[strings.ToLower(name)] {
			out[name] = masked
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// maskBody replaces sensitive JSON values; numbers keep their exact
// digits and a body that is not JSON is logged as is. The result is cut at maxLoggedBody characters.
func maskBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err == nil && !dec.More() {
		if b, err := json.Marshal(maskValue(doc)); err == nil {
			body = b
		}
	}
	return truncate(string(body), maxLoggedBody)
}

func maskValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if sensitiveFields[strings.ToLower(k)] {
				t[k] = masked
				continue
			}
			t[k] = maskValue(val)
		}
	case []any:
		for i := range t {
			t[i] = maskValue(t[i])
		}
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "...(truncated)"
}

// Metrics reports request counts and latency by matched route.
func Metrics(rec metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rec.RequestStarted()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.RequestFinished(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// Authenticate verifies the bearer token and puts the caller's principal
// into the request context.
func Authenticate(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWith(c, result.Unauthorized, "Authorization header is missing.")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			abortWith(c, result.Unauthorized, "Authorization header format must be Bearer {token}.")
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abortWith(c, result.Unauthorized, "Token has expired.")
			} else {
				abortWith(c, result.Unauthorized, "Invalid token.")
			}
			return
		}

		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), claims.Principal()))
		c.Next()
	}
}

// RequireRoles lets the request through when the caller holds any of
// roles. Must run after Authenticate.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := auth.PrincipalFrom(c.Request.Context())
		if !ok {
			abortWith(c, result.Unauthorized, "User is not authenticated.")
			return
		}
		for _, role := range roles {
			if p.HasRole(role) {
				c.Next()
				return
			}
		}
		abortWith(c, result.Forbidden, "You don't have permission to access this resource.")
	}
}
