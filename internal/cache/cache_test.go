// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("VALKEY_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func TestConnectValkeyUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := ConnectValkey(ctx, "127.0.0.1:1", ""); err == nil {
		t.Error("expected error for unreachable address")
	}
}

// TestNilResponseCache verifies that a disabled cache is a transparent
// pass-through.
func TestNilResponseCache(t *testing.T) {
	var rc *ResponseCache
	ctx := context.Background()

	rc.Set(ctx, "k", []byte("v"))
	if _, ok := rc.Get(ctx, "k"); ok {
		t.Error("nil cache should never hit")
	}
	rc.InvalidateAll(ctx)

	calls := 0
	handler := rc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	}))
	for i := 0; i < 2; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/posts", nil))
	}
	if calls != 2 {
		t.Errorf("handler calls = %d, want 2", calls)
	}
}

func TestResponseCacheGetSet(t *testing.T) {
	rc := NewResponseCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	if _, ok := rc.Get(ctx, "/api/posts"); ok {
		t.Fatal("expected miss on empty cache")
	}
	rc.Set(ctx, "/api/posts", []byte(`[]`))
	body, ok := rc.Get(ctx, "/api/posts")
	if !ok || string(body) != `[]` {
		t.Errorf("Get = %q, %v", body, ok)
	}

	rc.InvalidateAll(ctx)
	if _, ok := rc.Get(ctx, "/api/posts"); ok {
		t.Error("expected miss after InvalidateAll")
	}
}

func TestResponseCacheMiddleware(t *testing.T) {
	rc := NewResponseCache(testValkeyClient(t), time.Minute)
	rc.InvalidateAll(context.Background())

	calls := 0
	read := rc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"posts":[]}`))
	}))
	write := rc.InvalidateOnWrite(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	get := func() *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		read.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/posts?featured=true", nil))
		return rr
	}

	if rr := get(); rr.Header().Get("X-Cache") != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", rr.Header().Get("X-Cache"))
	}
	rr := get()
	if rr.Header().Get("X-Cache") != "HIT" || rr.Body.String() != `{"posts":[]}` {
		t.Errorf("second response = %q (%s)", rr.Body.String(), rr.Header().Get("X-Cache"))
	}
	if calls != 1 {
		t.Errorf("handler calls = %d, want 1", calls)
	}

	write.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/admin/posts", nil))
	get()
	if calls != 2 {
		t.Errorf("handler calls after write = %d, want 2", calls)
	}
}
