package controllers

import (
	"net/http"

	"github.com/lastros/pos-backend/api/responses"
	"github.com/lastros/pos-backend/api/validators"
	"github.com/lastros/pos-backend/internal/dashboard"
	"github.com/lastros/pos-backend/pkg/logger"
)

// DashboardSummary reports the sales of ?date=YYYY-MM-DD, today when omitted.
func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		day, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Summary(r.Context(), tenantID, day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

func FinanceSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		finance, err := svc.Finance(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, finance)
	}
}

func KitchenSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kitchen, err := svc.Kitchen(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, kitchen)
	}
}
