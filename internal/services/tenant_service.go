package services

import (
	"context"
	"errors"
	"strings"

	"kitchenstock/internal/caching"
	"kitchenstock/internal/models"
	"kitchenstock/internal/repositories"
	"kitchenstock/internal/validation"

	"github.com/rs/zerolog"
)

var ErrInvalidTenantCode = errors.New("tenant code may only contain lowercase letters, digits and hyphens")

// Evictor drops the in-memory state of a tenant. *inventory.Registry implements it.
type Evictor interface {
	Evict(tenantCode string)
}

type TenantService interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByCode(ctx context.Context, code string) (*models.Tenant, error)
	List(ctx context.Context) ([]*models.Tenant, error)
	ActiveCodes(ctx context.Context) ([]string, error)
	SetStatus(ctx context.Context, code, status string) error
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
	cache      caching.CacheService
	evictor    Evictor
	logger     zerolog.Logger
}

func NewTenantService(tenantRepo repositories.TenantRepository, cache caching.CacheService, evictor Evictor, logger zerolog.Logger) TenantService {
	return &tenantService{
		tenantRepo: tenantRepo,
		cache:      cache,
		evictor:    evictor,
		logger:     logger.With().Str("component", "tenants").Logger(),
	}
}

type CreateTenantRequest struct {
	Code string `json:"code" validate:"required,min=2,max=40"`
	Name string `json:"name" validate:"required,max=120"`
}

type UpdateTenantStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	code := strings.ToLower(strings.TrimSpace(req.Code))
	if !validTenantCode(code) {
		return nil, ErrInvalidTenantCode
	}

	tenant := &models.Tenant{
		Code:   code,
		Name:   strings.TrimSpace(req.Name),
		Status: models.TenantStatusActive,
	}
	if err := s.tenantRepo.Upsert(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

func validTenantCode(code string) bool {
	if code == "" || strings.HasPrefix(code, "-") || strings.HasSuffix(code, "-") {
		return false
	}
	for _, r := range code {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

func (s *tenantService) GetByCode(ctx context.Context, code string) (*models.Tenant, error) {
	if code == "" {
		return nil, errors.New("tenant code is required")
	}
	return s.tenantRepo.GetByCode(ctx, code)
}

func (s *tenantService) List(ctx context.Context) ([]*models.Tenant, error) {
	return s.tenantRepo.List(ctx)
}

func (s *tenantService) ActiveCodes(ctx context.Context) ([]string, error) {
	return s.tenantRepo.ListActiveCodes(ctx)
}

// SetStatus activates or suspends a tenant. Suspending drops the tenant's
// engine and cached state so the next activation reloads from the database.
func (s *tenantService) SetStatus(ctx context.Context, code, status string) error {
	if err := validation.Struct(&UpdateTenantStatusRequest{Status: status}); err != nil {
		return err
	}
	if _, err := s.tenantRepo.GetByCode(ctx, code); err != nil {
		return err
	}
	if err := s.tenantRepo.UpdateStatus(ctx, code, status); err != nil {
		return err
	}
	if status != models.TenantStatusSuspended {
		return nil
	}
	if s.evictor != nil {
		s.evictor.Evict(code)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateTenantCache(ctx, code); err != nil {
			s.logger.Warn().Err(err).Str("tenant", code).Msg("tenant cache invalidation failed")
		}
	}
	return nil
}
