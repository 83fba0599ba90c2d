package controllers

import (
	"net/http"

	"github.com/lastros/pos-backend/api/responses"
	"github.com/lastros/pos-backend/api/validators"
	"github.com/lastros/pos-backend/internal/expenses"
	"github.com/lastros/pos-backend/pkg/logger"
)

func CreateExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body expenses.CreateExpenseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Create(r.Context(), tenantID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

func ListExpenses(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func DeleteExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, _, err := tenantScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expenseID, err := uuidParam(r, "id", "expense")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), tenantID, expenseID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
