package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
)

const idempotencyHeader = "X-Idempotency-Key"

// Idempotency replays cached responses for repeated registration submissions.
// A client that retries after a timeout sends the same key and receives the
// stored response instead of consuming another identifier. Only successful
// (2xx) responses are cached; failures may legitimately be retried.
func Idempotency(rc *redis.Client, keyPrefix string, ttl time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		if rc == nil {
			return c.Next()
		}

		key := c.Get(idempotencyHeader)
		if key == "" {
			return c.Next()
		}
		cacheKey := keyPrefix + ":idempotency:" + key

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		cached, err := rc.Get(ctx, cacheKey).Bytes()
		if err == nil && len(cached) > 0 {
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			c.Set("X-Idempotency-Replayed", "true")
			return c.Send(cached)
		}
		if err != nil && err != redis.Nil {
			// Cache trouble must not block registrations
			log.Printf("idempotency lookup failed for %s: %v", key, err)
		}

		if err := c.Next(); err != nil {
			return err
		}

		status := c.Response().StatusCode()
		if status >= 200 && status < 300 {
			body := append([]byte(nil), c.Response().Body()...)
			storeCtx, storeCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer storeCancel()
			if err := rc.Set(storeCtx, cacheKey, body, ttl).Err(); err != nil {
				log.Printf("idempotency store failed for %s: %v", key, err)
			}
		}

		return nil
	}
}
