package tournamenthandlers

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Black-And-White-Club/cutline/pkg/jwt"
	"golang.org/x/time/rate"
)

const (
	pruneAbove  = 500
	idleTimeout = 10 * time.Minute
)

type clientBudget struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter hands out one token bucket per client key. Idle buckets are
// pruned once the table grows past pruneAbove entries.
type ClientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBudget
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewClientLimiter creates a limiter granting limit requests per second with
// the given burst to every client.
func NewClientLimiter(limit rate.Limit, burst int) *ClientLimiter {
	return &ClientLimiter{
		clients: make(map[string]*clientBudget),
		limit:   limit,
		burst:   burst,
		now:     time.Now,
	}
}

// Reserve takes one token for key. A zero delay means the request may go
// ahead; otherwise it is the wait until the bucket refills.
func (l *ClientLimiter) Reserve(key string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.clients) > pruneAbove {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > idleTimeout {
				delete(l.clients, k)
			}
		}
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientBudget{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	if c.limiter.AllowN(now, 1) {
		return 0, true
	}
	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return 0, false
	}
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return delay, false
}

// clientKey throttles signed-in players per account. Anonymous callers and
// the shared local account fall back to the remote address, which RealIP has
// already resolved.
func clientKey(r *http.Request, localAccount string) string {
	if account := jwt.AccountFromContext(r.Context()); account != "" && account != localAccount {
		return "account:" + account
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// RateLimitMiddleware answers 429 with a Retry-After hint once a client runs
// out of budget. It must run after jwt.AccountMiddleware.
func RateLimitMiddleware(limiter *ClientLimiter, localAccount string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			delay, ok := limiter.Reserve(clientKey(r, localAccount))
			if !ok {
				if delay > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				}
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodDelete}, ", ")
	corsHeaders = "Authorization, Content-Type"
)

// CORSMiddleware lets the configured browser origins call the API. Preflights
// from any other origin are refused.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
			if !allowed[origin] {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			if preflight {
				w.Header().Set("Access-Control-Allow-Methods", corsMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
