// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// window holds the request timestamps of one client, oldest first.
type window struct {
	mu    sync.Mutex
	times []time.Time
}

// RateLimiter limits requests per client IP over a sliding window.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
	stopCh  chan struct{}
	stopped sync.Once

	trustProxy bool
}

// NewRateLimiter creates a limiter allowing limit requests per period. A
// background goroutine drops idle clients until Stop is called.
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.sweep()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background cleanup goroutine. It is safe to call
// more than once.
func (rl *RateLimiter) Stop() {
	rl.stopped.Do(func() { close(rl.stopCh) })
}

// take records a request for key. When the key is over its limit it
// returns false and how long until the oldest request leaves the window.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	rl.mu.Lock()
	win, ok := rl.clients[key]
	if !ok {
		win = &window{}
		rl.clients[key] = win
	}
	rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.period)

	win.mu.Lock()
	defer win.mu.Unlock()

	i := 0
	for i < len(win.times) && !win.times[i].After(cutoff) {
		i++
	}
	win.times = win.times[i:]

	if len(win.times) >= rl.limit {
		return false, win.times[0].Sub(cutoff)
	}
	win.times = append(win.times, now)
	return true, 0
}

// sweep removes clients with no requests inside the window.
func (rl *RateLimiter) sweep() {
	cutoff := rl.now().Add(-rl.period)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, win := range rl.clients {
		win.mu.Lock()
		idle := len(win.times) == 0 || !win.times[len(win.times)-1].After(cutoff)
		win.mu.Unlock()
		if idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware rejects requests over the limit with a JSON 429 and a
// Retry-After header.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.take(clientIP(r, rl.trustProxy))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TrustProxy makes the limiter key clients by the address a reverse proxy
// reports. Only enable it when every request passes through such a proxy;
// otherwise clients can pick their own key. Call it before serving.
func (rl *RateLimiter) TrustProxy(on bool) {
	rl.trustProxy = on
}

// clientIP extracts the client's IP address. Without a trusted proxy it is
// the connection address. Behind one it is the rightmost X-Forwarded-For
// entry (the one the proxy appended), then X-Real-IP.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			entries := strings.Split(xff, ",")
			if last := strings.TrimSpace(entries[len(entries)-1]); last != "" {
				return last
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
