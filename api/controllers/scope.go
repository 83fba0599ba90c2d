package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lastros/pos-backend/api/middleware"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
)

// tenantScope returns the restaurant and user carried by the access token.
func tenantScope(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	tenantID := middleware.TenantUUIDFromContext(r.Context())
	if tenantID == uuid.Nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "restaurant context missing")
	}
	userID := middleware.UserUUIDFromContext(r.Context())
	if userID == uuid.Nil {
		return uuid.Nil, uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return tenantID, userID, nil
}

func uuidParam(r *http.Request, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label+" id")
	}
	return id, nil
}
