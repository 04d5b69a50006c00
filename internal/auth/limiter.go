package auth

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// maxTrackedClients is the client count above which idle clients are evicted.
const maxTrackedClients = 10000

// clientLimiter gives every client its own token bucket.
type clientLimiter struct {
	limit rate.Limit
	burst int
	max   int
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*rate.Limiter
}

func newClientLimiter(limit rate.Limit, burst int) *clientLimiter {
	return &clientLimiter{
		limit:   limit,
		burst:   burst,
		max:     maxTrackedClients,
		now:     time.Now,
		clients: make(map[string]*rate.Limiter),
	}
}

// Allow reports whether the client identified by key may make a request now.
func (c *clientLimiter) Allow(key string) bool {
	if c.limit == rate.Inf {
		return true
	}
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.clients[key]
	if !ok {
		if len(c.clients) >= c.max {
			c.evictIdle(now)
		}
		l = rate.NewLimiter(c.limit, c.burst)
		c.clients[key] = l
	}
	return l.AllowN(now, 1)
}

// evictIdle drops clients whose bucket has refilled. A full bucket allows
// exactly what a fresh one would, so nothing is forgotten.
func (c *clientLimiter) evictIdle(now time.Time) {
	for k, l := range c.clients {
		if l.TokensAt(now) >= float64(c.burst) {
			delete(c.clients, k)
		}
	}
}

func (c *clientLimiter) tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

// clientKey identifies the client of r by IP. RealIP has already replaced
// RemoteAddr when the server sits behind a proxy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
