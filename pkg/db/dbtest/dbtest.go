// Package dbtest opens throwaway SQLite databases with the full schema for package tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/db"
	"github.com/lastros/pos-backend/pkg/db/models"
	"github.com/lastros/pos-backend/pkg/enums"
)

// Open returns a client on a fresh in-memory database. The database lives until
// the test ends.
func Open(t testing.TB, name string) *db.Client {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{
		Driver:       db.DriverSQLite,
		DSN:          "file:" + name + "_" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := client.DB().AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func MustTenant(t testing.TB, client *db.Client, slug string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{Name: slug, Slug: slug}
	if err := client.DB().Create(tenant).Error; err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tenant
}

func MustUser(t testing.TB, client *db.Client, tenantID uuid.UUID, email string, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		TenantID:     tenantID,
		Email:        email,
		Name:         "Test User",
		PasswordHash: "hash",
		Role:         role,
	}
	if err := client.DB().Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func MustProduct(t testing.TB, client *db.Client, tenantID uuid.UUID, name, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		TenantID: tenantID,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	}
	if err := client.DB().Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
