package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lastros/pos-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed on first request")
	}
	if count != 1 {
		t.Fatalf("expected counter 1 got %d", count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expire for first increment")
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestFixedWindowIsolatesScopes(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	if allowed, _, err := client.FixedWindowAllow(ctx, "login:1.2.3.4", 1, time.Minute); err != nil || !allowed {
		t.Fatalf("first scope should pass: allowed=%v err=%v", allowed, err)
	}
	if allowed, count, err := client.FixedWindowAllow(ctx, "login:5.6.7.8", 1, time.Minute); err != nil || !allowed || count != 1 {
		t.Fatalf("second scope should have its own counter: allowed=%v count=%d err=%v", allowed, count, err)
	}
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	key := client.AccessSessionKey("jti-1")
	if err := client.Set(ctx, key, "value", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := client.Get(ctx, key)
	if err != nil || got != "value" {
		t.Fatalf("get returned %q, %v", got, err)
	}
	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, key); !IsNil(err) {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}

	ok, err := client.SetNX(ctx, "k", "first", time.Minute)
	if err != nil || !ok {
		t.Fatalf("setnx on empty key: ok=%v err=%v", ok, err)
	}
	ok, _ = client.SetNX(ctx, "k", "second", time.Minute)
	if ok {
		t.Fatalf("setnx should not overwrite")
	}
}

func TestDelIfValue(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	mock.data["lock"] = "owner-b"
	removed, err := client.DelIfValue(ctx, "lock", "owner-a")
	if err != nil || removed {
		t.Fatalf("foreign owner must not delete: removed=%v err=%v", removed, err)
	}
	if mock.data["lock"] != "owner-b" {
		t.Fatalf("lock value changed to %q", mock.data["lock"])
	}

	removed, err = client.DelIfValue(ctx, "lock", "owner-b")
	if err != nil || !removed {
		t.Fatalf("owner delete failed: removed=%v err=%v", removed, err)
	}
	if _, ok := mock.data["lock"]; ok {
		t.Fatal("lock still present")
	}
	if mock.evalCalls != 2 {
		t.Fatalf("expected one script call per release, got %d", mock.evalCalls)
	}

	var nilClient *Client
	if _, err := nilClient.DelIfValue(ctx, "lock", "x"); err == nil {
		t.Fatal("expected error from nil client")
	}
}

func TestNilClientReturnsError(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected error from nil client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on nil client should be a no-op, got %v", err)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{
		URL:         "redis://:secret@cache:6380/2",
		PoolSize:    7,
		DialTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6380" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("url not parsed: %+v", opts)
	}
	if opts.PoolSize != 7 || opts.DialTimeout != 3*time.Second {
		t.Fatalf("pool settings not applied: %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "localhost:6379", DB: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 4 {
		t.Fatalf("address config not applied: %+v", opts)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("orders", "abc"); got != "pos:idempotency:orders:abc" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.RateLimitKey("login"); got != "pos:rate_limit:login" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.AccessSessionKey("jti"); got != "pos:session:access:jti" {
		t.Fatalf("unexpected session key %s", got)
	}
	if got := client.IdempotencyKey("orders", " "); got != "pos:idempotency:orders" {
		t.Fatalf("blank parts should be skipped, got %s", got)
	}
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
	evalCalls   int
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (m *mockCmdable) EvalSha(ctx context.Context, sha1 string, keys []string, args ...any) *redis.Cmd {
	if sha1 != compareAndDelete.Hash() {
		return redis.NewCmdResult(nil, errors.New("NOSCRIPT No matching script"))
	}
	m.evalCalls++
	if v, ok := m.data[keys[0]]; ok && v == fmt.Sprint(args[0]) {
		delete(m.data, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

func (m *mockCmdable) Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return redis.NewCmdResult(nil, errors.New("unexpected EVAL"))
}

func (m *mockCmdable) EvalRO(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return m.Eval(ctx, script, keys, args...)
}

func (m *mockCmdable) EvalShaRO(ctx context.Context, sha1 string, keys []string, args ...any) *redis.Cmd {
	return m.EvalSha(ctx, sha1, keys, args...)
}

func (m *mockCmdable) ScriptExists(ctx context.Context, hashes ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult(make([]bool, len(hashes)), nil)
}

func (m *mockCmdable) ScriptLoad(ctx context.Context, script string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}
