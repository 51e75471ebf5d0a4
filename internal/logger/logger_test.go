package logger

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit(t *testing.T) {
	originalLog := global.Load()
	defer global.Store(originalLog)

	Init("production")
	assert.NotNil(t, global.Load())

	Init("development")
	assert.NotNil(t, global.Load())
}

func TestL(t *testing.T) {
	originalLog := global.Load()
	defer global.Store(originalLog)

	global.Store(nil)
	t.Setenv("APP_ENV", "test")
	assert.NotNil(t, L())
}

func TestL_ConcurrentWithSet(t *testing.T) {
	originalLog := global.Load()
	defer global.Store(originalLog)
	global.Store(nil)
	t.Setenv("APP_ENV", "test")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NotNil(t, L())
		}()
		go func() {
			defer wg.Done()
			Set(zap.NewNop())
		}()
	}
	wg.Wait()
	assert.NotNil(t, global.Load())
}

func TestFromCtx(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	originalLog := global.Load()
	Set(zap.New(core))
	defer global.Store(originalLog)

	FromCtx(WithRequestID(context.Background(), "req-1")).Info("with id")
	FromCtx(context.Background()).Info("without id")

	logs := observed.TakeAll()
	require.Len(t, logs, 2)
	assert.Equal(t, "req-1", logs[0].ContextMap()["request_id"])
	_, ok := logs[1].ContextMap()["request_id"]
	assert.False(t, ok)
}

func TestMiddleware(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	originalLog := global.Load()
	Set(zap.New(core))
	defer global.Store(originalLog)

	app := fiber.New()
	app.Use(Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error {
		assert.NotEmpty(t, RequestIDFrom(c.UserContext()))
		return c.SendStatus(fiber.StatusTeapot)
	})

	t.Run("Generates ID when missing", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil), -1)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	})

	t.Run("Preserves existing ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
	})

	logs := observed.FilterMessage("http request").TakeAll()
	require.Len(t, logs, 2)
	assert.Equal(t, "/ping", logs[1].ContextMap()["path"])
	assert.EqualValues(t, fiber.StatusTeapot, logs[1].ContextMap()["status"])
	assert.Equal(t, "abc-123", logs[1].ContextMap()["request_id"])
}
