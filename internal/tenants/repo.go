package tenants

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/internal/repo"
	"github.com/lastros/pos-backend/pkg/db/models"
)

// Repository persists restaurants (tenants).
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, name, slug string) (*models.Tenant, error) {
	tenant := &models.Tenant{Name: strings.TrimSpace(name), Slug: Slugify(slug)}
	if tenant.Slug == "" {
		tenant.Slug = Slugify(name)
	}
	if tenant.Name == "" || tenant.Slug == "" {
		return nil, errors.New("tenant name is required")
	}
	if err := r.DB(ctx).Create(tenant).Error; err != nil {
		return nil, err
	}
	return tenant, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.DB(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.DB(ctx).Where("slug = ?", Slugify(slug)).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

// EnsureBySlug returns the tenant with slug, creating it when missing.
func (r *Repository) EnsureBySlug(ctx context.Context, name, slug string) (*models.Tenant, error) {
	tenant, err := r.FindBySlug(ctx, slug)
	if err == nil {
		return tenant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return r.Create(ctx, name, slug)
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
