package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/duynhne/backoffice/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGetTraceID(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "traceparent wins",
			headers: map[string]string{TraceParentHeader: "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", TraceIDHeader: "other"},
			want:    "4bf92f3577b34da6a3ce929d0e0e4736",
		},
		{
			name:    "x-trace-id fallback",
			headers: map[string]string{TraceIDHeader: "abc123"},
			want:    "abc123",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/users", nil)
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, GetTraceID(c))
		})
	}

	t.Run("generated", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/users", nil)
		assert.Regexp(t, `^[0-9a-f]{32}$`, GetTraceID(c))
	})
}

func TestLoggingMiddleware_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	r := gin.New()
	r.Use(LoggingMiddleware(logger))
	r.GET("/ok", func(c *gin.Context) {
		assert.NotNil(t, GetLoggerFromGinContext(c))
		c.Status(http.StatusOK)
	})
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })
	r.GET("/down", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, path := range []string{"/ok", "/bad", "/down"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.NotEmpty(t, w.Header().Get(TraceIDHeader))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestGetLoggerFromGinContext_FallsBackToGlobal(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Same(t, zap.L(), GetLoggerFromGinContext(c))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = NewLogger(config.LoggingConfig{Level: "nonsense", Format: "json"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestShouldSkipInfrastructurePaths(t *testing.T) {
	for _, path := range []string{"/health", "/ready", "/metrics"} {
		assert.False(t, shouldTrace(path), path)
		assert.False(t, shouldCollectMetrics(path), path)
	}
	for _, path := range []string{"/users", "/items/report", "/"} {
		assert.True(t, shouldTrace(path), path)
		assert.True(t, shouldCollectMetrics(path), path)
	}
}

func TestServiceIdentity(t *testing.T) {
	cfg := &config.Config{Service: config.ServiceConfig{Name: "backoffice-dashboard", Env: "staging"}}

	t.Setenv("OTEL_SERVICE_NAME", "")
	name, env := serviceIdentity(cfg)
	assert.Equal(t, "backoffice-dashboard", name)
	assert.Equal(t, "staging", env)

	t.Setenv("OTEL_SERVICE_NAME", "relabelled")
	name, _ = serviceIdentity(cfg)
	assert.Equal(t, "relabelled", name)

	t.Setenv("OTEL_SERVICE_NAME", "")
	name, _ = serviceIdentity(&config.Config{})
	assert.Equal(t, unknownService, name)
}

func TestNewSessionStore(t *testing.T) {
	store, err := NewSessionStore(config.SessionConfig{Secure: true}, zap.NewNop())
	require.NoError(t, err)

	require.NotNil(t, store.Options)
	assert.True(t, store.Options.HttpOnly)
	assert.True(t, store.Options.Secure)
	assert.Equal(t, http.SameSiteLaxMode, store.Options.SameSite)
}

func TestNewSessionStore_KeyGenerationFailure(t *testing.T) {
	prev := randRead
	randRead = func([]byte) (int, error) { return 0, errors.New("entropy exhausted") }
	t.Cleanup(func() { randRead = prev })

	store, err := NewSessionStore(config.SessionConfig{}, zap.NewNop())
	assert.Nil(t, store)
	assert.ErrorContains(t, err, "generate session key")

	store, err = NewSessionStore(config.SessionConfig{Secret: "0123456789abcdef0123456789abcdef"}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, store)
}

func TestAddSpanAttributesAndShutdown(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	prev := tracerProvider
	tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { tracerProvider = prev })

	ctx, span := tracerProvider.Tracer("test").Start(context.Background(), "users.load")
	AddSpanAttributes(ctx, attribute.Int("records.count", 3))
	AddSpanAttributes(context.Background(), attribute.Int("dropped", 1))
	span.End()

	require.NoError(t, Shutdown(context.Background()))
	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Contains(t, ended[0].Attributes(), attribute.Int("records.count", 3))

	_, late := tracerProvider.Tracer("test").Start(context.Background(), "late")
	assert.False(t, late.IsRecording())

	tracerProvider = nil
	assert.NoError(t, Shutdown(context.Background()))
}
