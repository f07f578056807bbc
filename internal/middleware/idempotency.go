package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// storedResponse is the replayable form of a completed request's response.
type storedResponse struct {
	StatusCode int             `json:"status_code"`
	Body       json.RawMessage `json:"body"`
	Headers    http.Header     `json:"headers"`
}

// captureWriter wraps gin.ResponseWriter to keep a copy of the body.
type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response for requests that repeat
// an Idempotency-Key. A retried seat reservation must not reserve twice.
func IdempotencyMiddleware(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := "idempotency:" + key

		stored, err := getStoredResponse(ctx, redisClient, cacheKey)
		if err != nil && err != redis.Nil {
			// Redis unavailable; serve the request without replay protection.
			c.Next()
			return
		}

		if stored != nil {
			for k, v := range stored.Headers {
				for _, val := range v {
					c.Header(k, val)
				}
			}
			c.Data(stored.StatusCode, "application/json", stored.Body)
			c.Abort()
			return
		}

		w := &captureWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		c.Next()

		// 5xx responses are not stored so the client can retry for real.
		if c.Writer.Status() >= 200 && c.Writer.Status() < 500 {
			response := storedResponse{
				StatusCode: c.Writer.Status(),
				Body:       w.body.Bytes(),
				Headers:    replayHeaders(c),
			}
			_ = setStoredResponse(ctx, redisClient, cacheKey, &response, idempotencyTTL)
		}
	}
}

func getStoredResponse(ctx context.Context, client *redis.Client, key string) (*storedResponse, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var stored storedResponse
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	return &stored, nil
}

func setStoredResponse(ctx context.Context, client *redis.Client, key string, response *storedResponse, ttl time.Duration) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}

	return client.Set(ctx, key, data, ttl).Err()
}

// replayHeaders picks the headers worth replaying with a stored response.
func replayHeaders(c *gin.Context) http.Header {
	headers := make(http.Header)
	if ct := c.Writer.Header().Get("Content-Type"); ct != "" {
		headers.Set("Content-Type", ct)
	}
	return headers
}
