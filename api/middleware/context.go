package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxRole     contextKey = "actor_role"
	ctxTenantID contextKey = "tenant_id"
)

func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

func RoleFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRole)
}

func TenantIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxTenantID)
}

// UserUUIDFromContext parses the authenticated user id. It returns uuid.Nil
// when the request is anonymous.
func UserUUIDFromContext(ctx context.Context) uuid.UUID {
	return uuidValue(ctx, ctxUserID)
}

func TenantUUIDFromContext(ctx context.Context) uuid.UUID {
	return uuidValue(ctx, ctxTenantID)
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return withValue(ctx, ctxUserID, userID)
}

func WithRole(ctx context.Context, role string) context.Context {
	return withValue(ctx, ctxRole, role)
}

// WithTenantID injects the tenant identifier into the context for downstream handlers.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return withValue(ctx, ctxTenantID, tenantID)
}

func withValue(ctx context.Context, key contextKey, value string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, value)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func uuidValue(ctx context.Context, key contextKey) uuid.UUID {
	id, err := uuid.Parse(stringValue(ctx, key))
	if err != nil {
		return uuid.Nil
	}
	return id
}
