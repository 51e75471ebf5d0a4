package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"canedrop/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator map[string]models.Principal

func (f fakeValidator) ValidateToken(token string) (models.Principal, error) {
	p, ok := f[token]
	if !ok {
		return models.Principal{}, errors.New("bad token")
	}
	return p, nil
}

func newGatedApp() *fiber.App {
	tokens := fakeValidator{
		"cust":  {UserID: "c1", Username: "alice", Role: models.RoleCustomer},
		"owner": {UserID: "o1", Username: "boss", Role: models.RoleOwner},
	}
	app := fiber.New()
	api := app.Group("/api", AuthRequired(tokens))
	api.Get("/queue", Require(models.CapViewOrderQueue), func(c *fiber.Ctx) error {
		p, _ := PrincipalFrom(c)
		return c.SendString(p.UserID)
	})
	app.Get("/ungated", Require(models.CapViewOrderQueue), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func TestAuthRequiredAndRequire(t *testing.T) {
	app := newGatedApp()

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"no header", "/api/queue", "", fiber.StatusUnauthorized},
		{"not bearer", "/api/queue", "Basic abc", fiber.StatusUnauthorized},
		{"bad token", "/api/queue", "Bearer nope", fiber.StatusUnauthorized},
		{"wrong role", "/api/queue", "Bearer cust", fiber.StatusForbidden},
		{"owner", "/api/queue", "Bearer owner", fiber.StatusOK},
		{"require without auth", "/ungated", "", fiber.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	clock := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	app := fiber.New()
	app.Post("/login", limiter.Handler(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	hit := func() int {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil), -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, hit())
	assert.Equal(t, fiber.StatusOK, hit())
	assert.Equal(t, fiber.StatusTooManyRequests, hit())

	clock = clock.Add(time.Second)
	assert.Equal(t, fiber.StatusOK, hit(), "one token refills per second")

	clock = clock.Add(10 * time.Minute)
	assert.Equal(t, fiber.StatusOK, hit())
	limiter.mu.Lock()
	assert.Len(t, limiter.visitors, 1, "idle visitors are swept")
	limiter.mu.Unlock()
}
