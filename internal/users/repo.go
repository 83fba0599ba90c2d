package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/internal/repo"
	"github.com/lastros/pos-backend/pkg/db/models"
	"github.com/lastros/pos-backend/pkg/enums"
)

// Repository exposes user persistence. Emails are stored lowercased.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

// UpdateProfile applies the non-nil fields of patch and returns the reloaded user.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (*models.User, error) {
	updates := map[string]any{}
	if patch.Name != nil {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		updates["email"] = NormalizeEmail(*patch.Email)
	}
	if patch.PasswordHash != nil {
		updates["password_hash"] = *patch.PasswordHash
	}
	if len(updates) > 0 {
		if err := r.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// UpsertAdmin creates or resets an administrator account for tenantID.
func (r *Repository) UpsertAdmin(ctx context.Context, tenantID uuid.UUID, email, name, passwordHash string) (*models.User, bool, error) {
	existing, err := r.FindByEmail(ctx, email)
	switch {
	case err == nil:
		err = r.DB(ctx).Model(&models.User{}).Where("id = ?", existing.ID).Updates(map[string]any{
			"password_hash": passwordHash,
			"role":          enums.UserRoleAdmin,
		}).Error
		if err != nil {
			return nil, false, err
		}
		user, err := r.FindByID(ctx, existing.ID)
		return user, false, err
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err := r.Create(ctx, CreateUserDTO{
			TenantID:     tenantID,
			Email:        email,
			Name:         name,
			PasswordHash: passwordHash,
			Role:         enums.UserRoleAdmin,
		})
		return user, true, err
	default:
		return nil, false, err
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
