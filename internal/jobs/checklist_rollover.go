package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ChecklistCloner is satisfied by services.ChecklistService.
type ChecklistCloner interface {
	CloneTemplatesForDay(ctx context.Context, tenantCode string, day time.Time) (int, error)
}

// ChecklistRollover opens each tenant's daily checklists from its templates.
type ChecklistRollover struct {
	tenants    TenantLister
	checklists ChecklistCloner
	loc        *time.Location
	now        func() time.Time
	logger     zerolog.Logger
}

func NewChecklistRollover(tenants TenantLister, checklists ChecklistCloner, loc *time.Location, logger zerolog.Logger) *ChecklistRollover {
	if loc == nil {
		loc = time.UTC
	}
	return &ChecklistRollover{
		tenants:    tenants,
		checklists: checklists,
		loc:        loc,
		now:        time.Now,
		logger:     logger.With().Str("component", "checklist-rollover").Logger(),
	}
}

// Today clones the templates for the current day in the configured timezone.
func (r *ChecklistRollover) Today(ctx context.Context) (int, error) {
	return r.ForDay(ctx, r.now().In(r.loc))
}

// ForDay clones templates for every active tenant and returns how many
// checklists were created.
func (r *ChecklistRollover) ForDay(ctx context.Context, day time.Time) (int, error) {
	codes, err := r.tenants.ActiveCodes(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tenants: %w", err)
	}
	var (
		total int
		errs  []error
	)
	for _, code := range codes {
		n, err := r.checklists.CloneTemplatesForDay(ctx, code, day)
		if err != nil {
			errs = append(errs, fmt.Errorf("clone checklists for %s: %w", code, err))
			continue
		}
		total += n
	}
	r.logger.Info().Str("day", day.Format("2006-01-02")).Int("created", total).Int("tenants", len(codes)).Msg("daily checklists opened")
	return total, errors.Join(errs...)
}
