package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lastros/pos-backend/pkg/config"
	redisclient "github.com/lastros/pos-backend/pkg/redis"
)

const refreshTokenBytes = 32

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// Store is the key/value surface a Manager persists sessions in.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// Manager issues refresh tokens bound to an access token jti and a user.
// Only a SHA-256 digest of the refresh token is stored.
type Manager struct {
	store Store
	ttl   time.Duration
	isNil func(error) bool
}

// AccessSessionChecker is what the auth middleware needs to reject revoked tokens.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager builds a Redis backed manager from the JWT settings.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= accessTTL {
		return nil, fmt.Errorf("refresh token ttl (%s) must exceed access token ttl (%s)", ttl, accessTTL)
	}
	return NewManagerWithStore(client, ttl, redisclient.IsNil)
}

// NewManagerWithStore builds a manager on any Store. isNil reports the store's missing key error.
func NewManagerWithStore(store Store, ttl time.Duration, isNil func(error) bool) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("refresh token ttl must be positive")
	}
	if isNil == nil {
		isNil = func(error) bool { return false }
	}
	return &Manager{store: store, ttl: ttl, isNil: isNil}, nil
}

// Generate creates a refresh token for accessID owned by userID.
func (m *Manager) Generate(ctx context.Context, accessID string, userID uuid.UUID) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", fmt.Errorf("access id is required")
	}
	if userID == uuid.Nil {
		return "", fmt.Errorf("user id is required")
	}
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.store.AccessSessionKey(accessID), encodeRecord(userID, token), m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Rotate exchanges a refresh token for a new access id and refresh token.
// The old session is removed so a refresh token is single use.
func (m *Manager) Rotate(ctx context.Context, oldAccessID string, userID uuid.UUID, provided string) (string, string, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return "", "", ErrInvalidRefreshToken
	}

	key := m.store.AccessSessionKey(oldAccessID)
	stored, err := m.store.Get(ctx, key)
	if err != nil {
		if m.isNil(err) {
			return "", "", ErrInvalidRefreshToken
		}
		return "", "", err
	}

	owner, digest, ok := decodeRecord(stored)
	if !ok || owner != userID {
		return "", "", ErrInvalidRefreshToken
	}
	if subtle.ConstantTimeCompare([]byte(digest), []byte(hashToken(provided))) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	newAccessID := NewAccessID()
	newToken, err := m.Generate(ctx, newAccessID, userID)
	if err != nil {
		return "", "", err
	}
	if err := m.store.Del(ctx, key); err != nil {
		return "", "", err
	}
	return newAccessID, newToken, nil
}

// Revoke deletes the session tied to accessID.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.store.AccessSessionKey(accessID))
}

// HasSession reports whether accessID still has a live refresh session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, nil
	}
	if _, err := m.store.Get(ctx, m.store.AccessSessionKey(accessID)); err != nil {
		if m.isNil(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// NewAccessID returns the identifier used as JWT jti and session key.
func NewAccessID() string {
	return uuid.NewString()
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func encodeRecord(userID uuid.UUID, token string) string {
	return userID.String() + "|" + hashToken(token)
}

func decodeRecord(raw string) (uuid.UUID, string, bool) {
	owner, digest, found := strings.Cut(raw, "|")
	if !found || digest == "" {
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(owner)
	if err != nil {
		return uuid.Nil, "", false
	}
	return id, digest, true
}
