package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastros/pos-backend/internal/dashboard"
	"github.com/lastros/pos-backend/internal/expenses"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
)

type stubDashboardService struct {
	day string
}

func (s *stubDashboardService) Summary(_ context.Context, _ uuid.UUID, day string) (*dashboard.SummaryDTO, error) {
	s.day = day
	return &dashboard.SummaryDTO{Date: day, SalesToday: decimal.NewFromInt(100), OrdersToday: 2}, nil
}

func (s *stubDashboardService) Finance(context.Context, uuid.UUID) (*dashboard.FinanceDTO, error) {
	return &dashboard.FinanceDTO{Revenue: decimal.NewFromInt(10), Expenses: decimal.NewFromInt(4), Balance: decimal.NewFromInt(6)}, nil
}

func (s *stubDashboardService) Kitchen(context.Context, uuid.UUID) (*dashboard.KitchenDTO, error) {
	return &dashboard.KitchenDTO{Pending: 1}, nil
}

type stubExpenseService struct {
	created []expenses.CreateExpenseRequest
	delErr  error
}

func (s *stubExpenseService) Create(_ context.Context, tenantID uuid.UUID, req expenses.CreateExpenseRequest) (*expenses.ExpenseDTO, error) {
	s.created = append(s.created, req)
	return &expenses.ExpenseDTO{ID: uuid.New(), TenantID: tenantID, Description: req.Description, Amount: req.Amount}, nil
}

func (s *stubExpenseService) List(context.Context, uuid.UUID) ([]expenses.ExpenseDTO, error) {
	return []expenses.ExpenseDTO{}, nil
}

func (s *stubExpenseService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return s.delErr
}

func TestDashboardSummaryPassesDate(t *testing.T) {
	stub := &stubDashboardService{}
	rec := httptest.NewRecorder()
	DashboardSummary(stub, nil).ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodGet, "/dashboard/summary?date=2026-03-10", nil), nil))

	if rec.Code != http.StatusOK || stub.day != "2026-03-10" {
		t.Fatalf("unexpected response %d day=%q", rec.Code, stub.day)
	}
	if !strings.Contains(rec.Body.String(), `"orders_today":2`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestDashboardSummaryRejectsBadDate(t *testing.T) {
	stub := &stubDashboardService{}
	rec := httptest.NewRecorder()
	DashboardSummary(stub, nil).ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodGet, "/dashboard/summary?date=10/03/2026", nil), nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFinanceAndKitchenSummaries(t *testing.T) {
	stub := &stubDashboardService{}

	rec := httptest.NewRecorder()
	FinanceSummary(stub, nil).ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodGet, "/finance/summary", nil), nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "balance") {
		t.Fatalf("unexpected finance response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	KitchenSummary(stub, nil).ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodGet, "/kitchen/summary", nil), nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"pending":1`) {
		t.Fatalf("unexpected kitchen response %d %s", rec.Code, rec.Body.String())
	}
}

func TestExpensesEndpoints(t *testing.T) {
	stub := &stubExpenseService{}

	rec := httptest.NewRecorder()
	body := `{"description":"Gás","amount":"89.90","category":"VARIAVEL"}`
	CreateExpense(stub, nil).ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(body)), nil))
	if rec.Code != http.StatusCreated || len(stub.created) != 1 {
		t.Fatalf("unexpected create response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	ListExpenses(stub, nil).ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodGet, "/expenses", nil), nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("unexpected list response %d %s", rec.Code, rec.Body.String())
	}

	id := uuid.NewString()
	stub.delErr = pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
	rec = httptest.NewRecorder()
	DeleteExpense(stub, nil).ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodDelete, "/expenses/"+id, nil), map[string]string{"id": id}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	stub.delErr = nil
	rec = httptest.NewRecorder()
	DeleteExpense(stub, nil).ServeHTTP(rec, withActor(httptest.NewRequest(http.MethodDelete, "/expenses/"+id, nil), map[string]string{"id": id}))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
