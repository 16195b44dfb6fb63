package services

import (
	"context"
	"strings"
	"time"

	"kitchenstock/internal/models"
	"kitchenstock/internal/repositories"
	"kitchenstock/internal/validation"

	"github.com/google/uuid"
)

type UtensilService interface {
	Create(ctx context.Context, tenantCode string, req *UtensilRequest) (*models.Utensil, error)
	Update(ctx context.Context, tenantCode string, id uuid.UUID, req *UtensilRequest) (*models.Utensil, error)
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Utensil, error)
	List(ctx context.Context, tenantCode string) ([]*models.Utensil, error)
	Delete(ctx context.Context, tenantCode string, id uuid.UUID) error
}

type UtensilRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Condition string `json:"condition" validate:"omitempty,oneof=bom desgastado quebrado"`
	Location  string `json:"location,omitempty" validate:"max=120"`
}

type utensilService struct {
	repo repositories.UtensilRepository
	now  func() time.Time
}

func NewUtensilService(repo repositories.UtensilRepository) UtensilService {
	return &utensilService{repo: repo, now: time.Now}
}

func (s *utensilService) Create(ctx context.Context, tenantCode string, req *UtensilRequest) (*models.Utensil, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	u := &models.Utensil{ID: uuid.New(), TenantCode: tenantCode}
	s.apply(u, req)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *utensilService) Update(ctx context.Context, tenantCode string, id uuid.UUID, req *UtensilRequest) (*models.Utensil, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, tenantCode, id)
	if err != nil {
		return nil, err
	}
	s.apply(u, req)
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *utensilService) apply(u *models.Utensil, req *UtensilRequest) {
	u.Name = strings.TrimSpace(req.Name)
	u.Quantity = req.Quantity
	u.Condition = req.Condition
	if u.Condition == "" {
		u.Condition = models.UtensilConditionGood
	}
	u.Location = strings.TrimSpace(req.Location)
	u.UpdatedAt = s.now().UTC()
}

func (s *utensilService) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Utensil, error) {
	return s.repo.GetByID(ctx, tenantCode, id)
}

func (s *utensilService) List(ctx context.Context, tenantCode string) ([]*models.Utensil, error) {
	return s.repo.List(ctx, tenantCode)
}

func (s *utensilService) Delete(ctx context.Context, tenantCode string, id uuid.UUID) error {
	return s.repo.Delete(ctx, tenantCode, id)
}
