package server

import (
	"container/list"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultMaxIPs = 10000
	limiterIdle   = 10 * time.Minute
)

type ipLimiter struct {
	ip       string
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiters is a per-client token bucket set with LRU eviction. Idle
// buckets are swept lazily while serving.
type ipLimiters struct {
	rps    rate.Limit
	burst  int
	maxIPs int
	now    func() time.Time

	mu        sync.Mutex
	items     map[string]*list.Element
	order     *list.List // front = most recent
	lastSweep time.Time
}

func newIPLimiters(rps float64, burst, maxIPs int, now func() time.Time) *ipLimiters {
	if maxIPs <= 0 {
		maxIPs = defaultMaxIPs
	}
	if burst <= 0 {
		burst = 1
	}
	return &ipLimiters{
		rps:    rate.Limit(rps),
		burst:  burst,
		maxIPs: maxIPs,
		now:    now,
		items:  make(map[string]*list.Element),
		order:  list.New(),
	}
}

func (l *ipLimiters) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > limiterIdle {
		l.sweep(now)
		l.lastSweep = now
	}

	elem, ok := l.items[ip]
	if ok {
		l.order.MoveToFront(elem)
		elem.Value.(*ipLimiter).lastSeen = now
	} else {
		if l.order.Len() >= l.maxIPs {
			if back := l.order.Back(); back != nil {
				l.order.Remove(back)
				delete(l.items, back.Value.(*ipLimiter).ip)
			}
		}
		elem = l.order.PushFront(&ipLimiter{
			ip:       ip,
			limiter:  rate.NewLimiter(l.rps, l.burst),
			lastSeen: now,
		})
		l.items[ip] = elem
	}
	return elem.Value.(*ipLimiter).limiter.AllowN(now, 1)
}

func (l *ipLimiters) sweep(now time.Time) {
	for e := l.order.Back(); e != nil; {
		prev := e.Prev()
		lim := e.Value.(*ipLimiter)
		if now.Sub(lim.lastSeen) > limiterIdle {
			l.order.Remove(e)
			delete(l.items, lim.ip)
		}
		e = prev
	}
}

// middleware answers 429 once a client spends its burst.
func (l *ipLimiters) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeErr(w, http.StatusTooManyRequests, "Слишком много попыток, попробуйте позже")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP is the peer address. chi's RealIP middleware has already
// rewritten RemoteAddr for proxied requests.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
