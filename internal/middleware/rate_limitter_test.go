package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func TestRateLimiter(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("RATE_LIMIT_BURST", "2")

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := New(logger)

	app := fiber.New()
	app.Post("/sessions", m.NewRateLimiter, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	want := []int{fiber.StatusCreated, fiber.StatusCreated, fiber.StatusTooManyRequests}
	for i, status := range want {
		resp, err := app.Test(httptest.NewRequest("POST", "/sessions", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		resp.Body.Close()

		if resp.StatusCode != status {
			t.Fatalf("request %d: status = %d, want %d", i, resp.StatusCode, status)
		}
		if status == fiber.StatusTooManyRequests && resp.Header.Get(fiber.HeaderRetryAfter) != "2" {
			t.Errorf("Retry-After = %q, want 2", resp.Header.Get(fiber.HeaderRetryAfter))
		}
	}
}

func TestRateFromEnvDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "nope")

	limit, burst := rateFromEnv()
	if limit != rate.Limit(1) || burst != 5 {
		t.Errorf("rateFromEnv() = (%v, %d), want (1, 5)", limit, burst)
	}
}
