package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/internal/tenants"
	"github.com/lastros/pos-backend/internal/users"
	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/db/models"
	"github.com/lastros/pos-backend/pkg/logger"
	"github.com/lastros/pos-backend/pkg/security"
)

const (
	demoTenantName = "Restaurante Demo"
	demoAdminName  = "Administrador"
)

type seedParams struct {
	TenantSlug string
	AdminEmail string
	Password   string
	Passwords  config.PasswordConfig
}

type seedResult struct {
	Tenant         *models.Tenant
	Admin          *models.User
	AdminCreated   bool
	ProductCreated bool
}

// seed is idempotent: it ensures the demo restaurant, resets the admin
// password and adds a sample product when the catalog is empty.
func seed(ctx context.Context, gdb *gorm.DB, params seedParams, logg *logger.Logger) (*seedResult, error) {
	var result seedResult
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := tenants.NewRepository(tx).EnsureBySlug(ctx, demoTenantName, params.TenantSlug)
		if err != nil {
			return fmt.Errorf("ensure tenant: %w", err)
		}
		result.Tenant = tenant

		hash, err := security.HashPassword(params.Password, params.Passwords)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		admin, created, err := users.NewRepository(tx).UpsertAdmin(ctx, tenant.ID, users.NormalizeEmail(params.AdminEmail), demoAdminName, hash)
		if err != nil {
			return fmt.Errorf("upsert admin: %w", err)
		}
		result.Admin = admin
		result.AdminCreated = created

		var count int64
		if err := tx.Model(&models.Product{}).Where("tenant_id = ?", tenant.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if count > 0 {
			return nil
		}
		sample := &models.Product{
			TenantID: tenant.ID,
			Name:     "X-Burger",
			Price:    decimal.RequireFromString("25.90"),
			Stock:    50,
		}
		if err := tx.Create(sample).Error; err != nil {
			return fmt.Errorf("create sample product: %w", err)
		}
		result.ProductCreated = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"tenant_id":       result.Tenant.ID.String(),
		"admin_email":     result.Admin.Email,
		"admin_created":   result.AdminCreated,
		"product_created": result.ProductCreated,
	}), "seed.completed")
	return &result, nil
}
