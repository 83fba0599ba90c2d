package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastros/pos-backend/pkg/db/dbtest"
	"github.com/lastros/pos-backend/pkg/enums"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, uuid.UUID) {
	t.Helper()
	client := dbtest.Open(t, "expenses")
	tenant := dbtest.MustTenant(t, client, "restaurante-demo")
	svc, err := NewService(NewRepository(client.DB()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, tenant.ID
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
	return &d
}

func TestCreateAndListOrdersByDate(t *testing.T) {
	svc, tenantID := newTestService(t)
	ctx := context.Background()

	older, err := svc.Create(ctx, tenantID, CreateExpenseRequest{
		Description: "Aluguel",
		Amount:      decimal.RequireFromString("1500"),
		Category:    "fixo",
		Date:        datePtr(2026, time.March, 1),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if older.Category != enums.ExpenseCategoryFixed {
		t.Fatalf("expected FIXO, got %s", older.Category)
	}
	newer, err := svc.Create(ctx, tenantID, CreateExpenseRequest{
		Description: " Hortifruti ",
		Amount:      decimal.RequireFromString("230.40"),
		Category:    "FORNECEDOR",
		Date:        datePtr(2026, time.March, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if newer.Description != "Hortifruti" {
		t.Fatalf("expected trimmed description, got %q", newer.Description)
	}

	list, err := svc.List(ctx, tenantID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	other, err := svc.List(ctx, uuid.New())
	if err != nil {
		t.Fatalf("list other tenant: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no expenses for another tenant, got %d", len(other))
	}
}

func TestCreateDefaultsDateToNow(t *testing.T) {
	svc, tenantID := newTestService(t)
	before := time.Now().UTC().Add(-time.Second)

	created, err := svc.Create(context.Background(), tenantID, CreateExpenseRequest{
		Description: "Gas",
		Amount:      decimal.NewFromInt(90),
		Category:    "VARIAVEL",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Date.Before(before) {
		t.Fatalf("expected date to default to now, got %s", created.Date)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, tenantID := newTestService(t)
	ctx := context.Background()

	cases := map[string]CreateExpenseRequest{
		"blankDescription": {Description: " ", Amount: decimal.NewFromInt(1), Category: "FIXO"},
		"negativeAmount":   {Description: "x", Amount: decimal.NewFromInt(-1), Category: "FIXO"},
		"unknownCategory":  {Description: "x", Amount: decimal.NewFromInt(1), Category: "rent"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Create(ctx, tenantID, req); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	svc, tenantID := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, tenantID, CreateExpenseRequest{Description: "Luz", Amount: decimal.NewFromInt(300), Category: "FIXO"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, uuid.New(), created.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for other tenant, got %v", err)
	}
	if err := svc.Delete(ctx, tenantID, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, tenantID, created.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
