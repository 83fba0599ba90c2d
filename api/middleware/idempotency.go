package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lastros/pos-backend/api/responses"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
	"github.com/lastros/pos-backend/pkg/logger"
	pkgredis "github.com/lastros/pos-backend/pkg/redis"
)

const (
	// IdempotencyHeader carries the client-chosen replay key.
	IdempotencyHeader = "Idempotency-Key"

	orderIdempotencyTTL = 24 * time.Hour
)

type idempotencyRule struct {
	method  string
	pattern string
	ttl     time.Duration
}

var idempotencyRules = []idempotencyRule{
	{method: http.MethodPost, pattern: "/orders", ttl: orderIdempotencyTTL},
}

type idempotencyStore interface {
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	Set(context.Context, string, any, time.Duration) error
	Del(context.Context, ...string) error
	IdempotencyKey(scope, id string) string
}

// idempotencyRecord is either the in-flight marker (Pending) or the stored response.
type idempotencyRecord struct {
	Pending     bool   `json:"pending,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
	RequestHash string `json:"request_hash"`
}

// Idempotency replays the stored response for a repeated Idempotency-Key on
// covered routes. Requests without a key pass through untouched. The key is
// reserved before the handler runs; a duplicate arriving meanwhile gets 409.
// A key reused with a different body is rejected. Only 2xx responses are remembered.
func Idempotency(store idempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, covered := routeTTL(r.Method, routePattern(r))
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if !covered || store == nil || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			sum := sha256.Sum256(body)
			hash := hex.EncodeToString(sum[:])
			key := store.IdempotencyKey(idempotencyScope(r), clientKey)

			reserved, err := reserveKey(r.Context(), store, key, hash, ttl)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if !reserved {
				previous, err := lookupRecord(r.Context(), store, key)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
				switch {
				case previous != nil && previous.RequestHash != hash:
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
				case previous == nil || previous.Pending:
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeIdempotencyBusy, "request with this idempotency key is still in progress"))
				default:
					previous.replay(w)
				}
				return
			}

			// the marker must not outlive this request, even when the handler panics
			ctx := context.WithoutCancel(r.Context())
			settled := false
			defer func() {
				if !settled {
					_ = store.Del(ctx, key)
				}
			}()

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)
			settled = true

			status := capture.statusOrOK()
			if status < 200 || status >= 300 {
				if err := store.Del(ctx, key); err != nil && logg != nil {
					logg.Error(logg.WithField(ctx, "route", r.URL.Path), "idempotency.release_failed", err)
				}
				return
			}
			payload, err := json.Marshal(idempotencyRecord{
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				RequestHash: hash,
			})
			if err == nil {
				err = store.Set(ctx, key, string(payload), ttl)
			}
			if err != nil && logg != nil {
				logg.Error(logg.WithField(ctx, "route", r.URL.Path), "idempotency.persist_failed", err)
			}
		})
	}
}

func reserveKey(ctx context.Context, store idempotencyStore, key, hash string, ttl time.Duration) (bool, error) {
	marker, err := json.Marshal(idempotencyRecord{Pending: true, RequestHash: hash})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode idempotency marker")
	}
	ok, err := store.SetNX(ctx, key, string(marker), ttl)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key")
	}
	return ok, nil
}

// idempotencyScope keeps keys from different tenants, users or routes apart.
func idempotencyScope(r *http.Request) string {
	ctx := r.Context()
	return strings.Join([]string{TenantIDFromContext(ctx), UserIDFromContext(ctx), r.Method, r.URL.Path}, "|")
}

func lookupRecord(ctx context.Context, store idempotencyStore, key string) (*idempotencyRecord, error) {
	raw, err := store.Get(ctx, key)
	if pkgredis.IsNil(err) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency")
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &record, nil
}

func (rec *idempotencyRecord) replay(w http.ResponseWriter) {
	if rec.ContentType != "" {
		w.Header().Set("Content-Type", rec.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	status := rec.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write(rec.Body)
}

func routePattern(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

func routeTTL(method, pattern string) (time.Duration, bool) {
	pattern = strings.TrimSuffix(pattern, "/")
	for _, rule := range idempotencyRules {
		if rule.method == method && rule.pattern == pattern {
			return rule.ttl, true
		}
	}
	return 0, false
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusOrOK() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
