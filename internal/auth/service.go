package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lastros/pos-backend/internal/users"
	pkgAuth "github.com/lastros/pos-backend/pkg/auth"
	"github.com/lastros/pos-backend/pkg/auth/session"
	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/db"
	"github.com/lastros/pos-backend/pkg/db/models"
	"github.com/lastros/pos-backend/pkg/enums"
	pkgerrors "github.com/lastros/pos-backend/pkg/errors"
	"github.com/lastros/pos-backend/pkg/logger"
	"github.com/lastros/pos-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid email or password"
	emailTakenMessage         = "email already registered"
)

// Service covers account registration, sign in and the session lifecycle.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, accessToken string) error
	Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*users.UserDTO, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, patch users.ProfilePatch) (*models.User, error)
}

type tenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string, userID uuid.UUID) (string, error)
	Rotate(ctx context.Context, oldAccessID string, userID uuid.UUID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies of the auth service. SessionManager
// may be nil, in which case no refresh tokens are issued.
type ServiceParams struct {
	UserRepo          userRepository
	TenantRepo        tenantRepository
	SessionManager    sessionManager
	JWTConfig         config.JWTConfig
	PasswordConfig    config.PasswordConfig
	DefaultTenantSlug string
	Logger            *logger.Logger
}

type service struct {
	users         userRepository
	tenants       tenantRepository
	session       sessionManager
	jwtCfg        config.JWTConfig
	passwordCfg   config.PasswordConfig
	defaultTenant string
	logg          *logger.Logger
	now           func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.TenantRepo == nil {
		return nil, fmt.Errorf("tenant repository is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		users:         params.UserRepo,
		tenants:       params.TenantRepo,
		session:       params.SessionManager,
		jwtCfg:        params.JWTConfig,
		passwordCfg:   params.PasswordConfig,
		defaultTenant: strings.TrimSpace(params.DefaultTenantSlug),
		logg:          logg,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := users.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if email == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and name are required")
	}
	if len(req.Password) < 6 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters")
	}

	tenant, err := s.resolveTenant(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		TenantID:     tenant.ID,
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         enums.UserRoleUser,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return s.issueTokens(ctx, user, s.now())
}

func (s *service) resolveTenant(ctx context.Context, id *uuid.UUID) (*models.Tenant, error) {
	var (
		tenant *models.Tenant
		err    error
		msg    string
	)
	if id != nil && *id != uuid.Nil {
		tenant, err = s.tenants.FindByID(ctx, *id)
		msg = "restaurant not found"
	} else {
		if s.defaultTenant == "" {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no restaurant registered")
		}
		tenant, err = s.tenants.FindBySlug(ctx, s.defaultTenant)
		msg = "no restaurant registered"
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msg)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup restaurant")
	}
	return tenant, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	s.upgradeHash(ctx, user, req.Password)

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return s.issueTokens(ctx, user, now)
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := users.NormalizeEmail(email)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

// upgradeHash re-hashes legacy bcrypt passwords with argon2id after a
// successful login. Failures only log.
func (s *service) upgradeHash(ctx context.Context, user *models.User, password string) {
	if !security.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "auth.rehash_failed")
		return
	}
	user.PasswordHash = hash
}

func (s *service) issueTokens(ctx context.Context, user *models.User, now time.Time) (*AuthResponse, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Email:    user.Email,
		Role:     user.Role,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	var refreshToken string
	if s.session != nil {
		refreshToken, err = s.session.Generate(ctx, accessID, user.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store refresh token")
		}
	}
	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*AuthResponse, error) {
	if s.session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "sessions are disabled")
	}
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	newAccessID, newRefresh, err := s.session.Rotate(ctx, claims.ID, claims.UserID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	signed, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Email:    user.Email,
		Role:     user.Role,
		JTI:      newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &AuthResponse{AccessToken: signed, RefreshToken: newRefresh, User: users.FromModel(user)}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if s.session == nil || claims.ID == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return users.FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*users.UserDTO, error) {
	current, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	patch := users.ProfilePatch{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		patch.Name = &name
	}
	if req.Email != nil {
		email := users.NormalizeEmail(*req.Email)
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		if email != current.Email {
			if _, err := s.users.FindByEmail(ctx, email); err == nil {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
			}
			patch.Email = &email
		}
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 6 characters")
		}
		hash, err := security.HashPassword(*req.Password, s.passwordCfg)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		patch.PasswordHash = &hash
	}

	updated, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return users.FromModel(updated), nil
}
