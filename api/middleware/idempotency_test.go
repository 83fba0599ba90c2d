package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type fakeIdempotencyStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{data: make(map[string]string)}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	f.data[key] = str
	return true, nil
}

func (f *fakeIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	str, _ := value.(string)
	f.data[key] = str
	return nil
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeIdempotencyStore) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("fake:%s:%s", scope, id)
}

func orderRequest(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{"/orders"}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
	ctx = WithTenantID(WithUserID(ctx, "user-1"), "tenant-1")
	return req.WithContext(ctx)
}

func countingHandler(calls *int, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, `{"call":%d,"len":%d}`, *calls, len(body))
	})
}

func TestRouteTTLSelection(t *testing.T) {
	if ttl, ok := routeTTL(http.MethodPost, "/orders"); !ok || ttl != orderIdempotencyTTL {
		t.Fatalf("expected order ttl, got %v %v", ttl, ok)
	}
	if _, ok := routeTTL(http.MethodGet, "/orders"); ok {
		t.Fatal("GET /orders must not be covered")
	}
	if _, ok := routeTTL(http.MethodPost, "/auth/login"); ok {
		t.Fatal("login must not be covered")
	}
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, nil)(countingHandler(&calls, http.StatusCreated))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, orderRequest(`{"items":[]}`, "abc"))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, orderRequest(`{"items":[]}`, "abc"))

	if calls != 1 {
		t.Fatalf("expected handler to run once, ran %d times", calls)
	}
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201, got %d", second.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replayed body differs: %q vs %q", second.Body.String(), first.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatal("expected replay header")
	}
	if second.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", second.Header().Get("Content-Type"))
	}
}

func TestIdempotencyRejectsDifferentBody(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, nil)(countingHandler(&calls, http.StatusCreated))

	handler.ServeHTTP(httptest.NewRecorder(), orderRequest(`{"items":[1]}`, "abc"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, orderRequest(`{"items":[2]}`, "abc"))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "IDEMPOTENCY_KEY_REUSED") {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestIdempotencySkipsWithoutKeyAndFailures(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, nil)(countingHandler(&calls, http.StatusCreated))

	handler.ServeHTTP(httptest.NewRecorder(), orderRequest(`{}`, ""))
	handler.ServeHTTP(httptest.NewRecorder(), orderRequest(`{}`, ""))
	if calls != 2 || store.size() != 0 {
		t.Fatalf("expected pass-through without key, calls=%d stored=%d", calls, store.size())
	}

	failing := Idempotency(store, nil)(countingHandler(&calls, http.StatusConflict))
	failing.ServeHTTP(httptest.NewRecorder(), orderRequest(`{}`, "k1"))
	failing.ServeHTTP(httptest.NewRecorder(), orderRequest(`{}`, "k1"))
	if calls != 4 || store.size() != 0 {
		t.Fatalf("expected failed responses not to be stored, calls=%d stored=%d", calls, store.size())
	}
}

func TestIdempotencyRejectsConcurrentDuplicate(t *testing.T) {
	store := newFakeIdempotencyStore()
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"order-1"}`))
	}))

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(first, orderRequest(`{"items":[1]}`, "double-click"))
	}()
	<-started

	duplicate := httptest.NewRecorder()
	handler.ServeHTTP(duplicate, orderRequest(`{"items":[1]}`, "double-click"))
	if duplicate.Code != http.StatusConflict {
		t.Fatalf("expected 409 while first request is in flight, got %d", duplicate.Code)
	}
	if !strings.Contains(duplicate.Body.String(), "IDEMPOTENCY_KEY_IN_PROGRESS") {
		t.Fatalf("unexpected body %s", duplicate.Body.String())
	}

	close(release)
	<-done
	if first.Code != http.StatusCreated {
		t.Fatalf("expected first request to succeed, got %d", first.Code)
	}

	replay := httptest.NewRecorder()
	handler.ServeHTTP(replay, orderRequest(`{"items":[1]}`, "double-click"))
	if replay.Code != http.StatusCreated || replay.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("expected replay after completion, got %d", replay.Code)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected handler to run once, ran %d times", n)
	}
}

func TestIdempotencyReleasesKeyWhenHandlerPanics(t *testing.T) {
	store := newFakeIdempotencyStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	func() {
		defer func() { _ = recover() }()
		handler.ServeHTTP(httptest.NewRecorder(), orderRequest(`{}`, "k-panic"))
	}()
	if store.size() != 0 {
		t.Fatalf("expected in-flight marker to be released, stored=%d", store.size())
	}
}
