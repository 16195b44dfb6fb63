package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kitchenstock/internal/common"
	"kitchenstock/internal/models"
	"kitchenstock/internal/repositories"
	"kitchenstock/internal/validation"

	"github.com/google/uuid"
)

type ChecklistService interface {
	Create(ctx context.Context, tenantCode string, req *ChecklistRequest) (*models.Checklist, error)
	GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Checklist, error)
	ListTemplates(ctx context.Context, tenantCode string) ([]*models.Checklist, error)
	ListByDay(ctx context.Context, tenantCode string, day time.Time) ([]*models.Checklist, error)
	CloneTemplatesForDay(ctx context.Context, tenantCode string, day time.Time) (int, error)
	CheckItem(ctx context.Context, tenantCode string, itemID uuid.UUID, done bool) error
}

type ChecklistRequest struct {
	Title      string   `json:"title" validate:"required,max=120"`
	Day        string   `json:"day,omitempty"`
	IsTemplate bool     `json:"is_template"`
	Items      []string `json:"items" validate:"required,min=1,dive,required,max=200"`
}

type checklistService struct {
	repo repositories.ChecklistRepository
	now  func() time.Time
}

func NewChecklistService(repo repositories.ChecklistRepository) ChecklistService {
	return &checklistService{repo: repo, now: time.Now}
}

// Create stores a template when IsTemplate is set, otherwise a checklist for
// Day (YYYY-MM-DD, defaulting to today).
func (s *checklistService) Create(ctx context.Context, tenantCode string, req *ChecklistRequest) (*models.Checklist, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	c := &models.Checklist{
		ID:         uuid.New(),
		TenantCode: tenantCode,
		Title:      strings.TrimSpace(req.Title),
		IsTemplate: req.IsTemplate,
		CreatedAt:  s.now().UTC(),
	}
	if !req.IsTemplate {
		day := truncateDay(s.now())
		if req.Day != "" {
			parsed, err := common.ValidateDateFormat(req.Day, "day")
			if err != nil {
				return nil, &validation.Error{Fields: map[string]string{"day": err.Error()}}
			}
			day = parsed
		}
		c.Day = &day
	}
	for i, label := range req.Items {
		c.Items = append(c.Items, models.ChecklistItem{ID: uuid.New(), Label: strings.TrimSpace(label), Position: i})
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create checklist: %w", err)
	}
	return c, nil
}

func (s *checklistService) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Checklist, error) {
	return s.repo.GetByID(ctx, tenantCode, id)
}

func (s *checklistService) ListTemplates(ctx context.Context, tenantCode string) ([]*models.Checklist, error) {
	return s.repo.ListTemplates(ctx, tenantCode)
}

func (s *checklistService) ListByDay(ctx context.Context, tenantCode string, day time.Time) ([]*models.Checklist, error) {
	if day.IsZero() {
		day = s.now()
	}
	return s.repo.ListByDay(ctx, tenantCode, truncateDay(day))
}

// CloneTemplatesForDay creates a fresh, unchecked copy of every template for
// day. Templates already cloned for that day are skipped by the repository,
// so running it twice is harmless. Returns the number of templates cloned.
func (s *checklistService) CloneTemplatesForDay(ctx context.Context, tenantCode string, day time.Time) (int, error) {
	templates, err := s.repo.ListTemplates(ctx, tenantCode)
	if err != nil {
		return 0, fmt.Errorf("list templates: %w", err)
	}
	day = truncateDay(day)
	n := 0
	for _, t := range templates {
		c := &models.Checklist{
			ID:         uuid.New(),
			TenantCode: tenantCode,
			Title:      t.Title,
			Day:        &day,
			CreatedAt:  s.now().UTC(),
		}
		for i, item := range t.Items {
			c.Items = append(c.Items, models.ChecklistItem{ID: uuid.New(), Label: item.Label, Position: i})
		}
		if err := s.repo.Create(ctx, c); err != nil {
			return n, fmt.Errorf("clone %q: %w", t.Title, err)
		}
		n++
	}
	return n, nil
}

func (s *checklistService) CheckItem(ctx context.Context, tenantCode string, itemID uuid.UUID, done bool) error {
	return s.repo.SetItemDone(ctx, tenantCode, itemID, done, common.ActorFromContext(ctx), s.now().UTC())
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
