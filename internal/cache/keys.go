package cache

import (
	"fmt"
	"time"
)

const RateLimitWindow = time.Minute

// RateLimitKey generates the Redis key counting requests of a client within
// the fixed window that contains now.
func RateLimitKey(clientIP string, now time.Time) string {
	return fmt.Sprintf("ratelimit:ip:%s:%d", clientIP, now.Truncate(RateLimitWindow).Unix())
}
