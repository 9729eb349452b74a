package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gabrilr/ferreteria-sistema/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── API rate limiter ──────────────────────────────────────────────────────────

// rateEntry tracks request counts per IP within a fixed window.
type rateEntry struct {
	count     int
	windowEnd time.Time
}

type rateLimiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	entries   map[string]*rateEntry
	nextPurge time.Time
	now       func() time.Time
}

const purgeInterval = 5 * time.Minute

// RateLimiter allows limit requests per window and IP.
// Each call creates an independent limiter.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	rl := &rateLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*rateEntry),
		now:     time.Now,
	}
	return rl.handle
}

func (rl *rateLimiter) handle(c *gin.Context) {
	ok, windowEnd := rl.allow(c.ClientIP())
	if !ok {
		c.Header("Retry-After", windowEnd.UTC().Format(http.TimeFormat))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
		return
	}
	c.Next()
}

func (rl *rateLimiter) allow(ip string) (bool, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.After(rl.nextPurge) {
		rl.purge(now)
	}

	entry, exists := rl.entries[ip]
	if !exists || now.After(entry.windowEnd) {
		entry = &rateEntry{windowEnd: now.Add(rl.window)}
		rl.entries[ip] = entry
	}
	entry.count++
	return entry.count <= rl.limit, entry.windowEnd
}

// purge removes expired entries so IPs that never return do not accumulate.
// Must be called under lock.
func (rl *rateLimiter) purge(now time.Time) {
	purged := 0
	for ip, entry := range rl.entries {
		if now.After(entry.windowEnd) {
			delete(rl.entries, ip)
			purged++
		}
	}
	rl.nextPurge = now.Add(purgeInterval)
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(rl.entries)).Msg("rate limiter entries purged")
	}
}
