package orders

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lastros/pos-backend/api/middleware"
	"github.com/lastros/pos-backend/api/responses"
	"github.com/lastros/pos-backend/api/validators"
	internalorders "github.com/lastros/pos-backend/internal/orders"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
	"github.com/lastros/pos-backend/pkg/logger"
)

// Place records a sale for the caller's restaurant and answers 201 with the
// stored order. The declared total is kept even when it disagrees with the
// line items; the response flags that case with total_mismatch.
func Place(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		tenantID, userID, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body internalorders.PlaceOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := body.ToInput(tenantID, userID)
		input.ActorRole = middleware.RoleFromContext(r.Context())

		order, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// List returns the restaurant's orders, most recent first.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		tenantID, _, err := actor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListOrders(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func actor(r *http.Request) (uuid.UUID, uuid.UUID, error) {
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
