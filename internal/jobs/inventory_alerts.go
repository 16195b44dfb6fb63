package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"kitchenstock/internal/metrics"
	"kitchenstock/internal/models"
	"kitchenstock/internal/notify"
	"kitchenstock/internal/services"

	"github.com/rs/zerolog"
)

// TenantLister yields the tenants background work runs for.
type TenantLister interface {
	ActiveCodes(ctx context.Context) ([]string, error)
}

// LowStockDigestService sends one summary per tenant listing every item
// below its minimum threshold.
type LowStockDigestService struct {
	tenants  TenantLister
	stock    services.StockProvider
	digester notify.Digester
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// DigestReport summarizes one digest run.
type DigestReport struct {
	Tenants int      `json:"tenants"`
	Sent    int      `json:"sent"`
	Alerts  int      `json:"alerts"`
	Failed  []string `json:"failed,omitempty"`
}

func NewLowStockDigestService(tenants TenantLister, stock services.StockProvider, digester notify.Digester, m *metrics.Metrics, logger zerolog.Logger) *LowStockDigestService {
	if digester == nil {
		digester = notify.Noop{}
	}
	return &LowStockDigestService{
		tenants:  tenants,
		stock:    stock,
		digester: digester,
		metrics:  m,
		logger:   logger.With().Str("component", "low-stock-digest").Logger(),
	}
}

// CheckLowStock lists the items of a tenant at or below their minimum,
// ordered by sheet then item name.
func (s *LowStockDigestService) CheckLowStock(ctx context.Context, tenantCode string) ([]models.LowStockAlert, error) {
	stock, err := s.stock.Stock(ctx, tenantCode)
	if err != nil {
		return nil, fmt.Errorf("load stock for %s: %w", tenantCode, err)
	}
	alerts := stock.LowStock()
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].SheetName != alerts[j].SheetName {
			return alerts[i].SheetName < alerts[j].SheetName
		}
		return alerts[i].ItemName < alerts[j].ItemName
	})
	return alerts, nil
}

// SendDigests runs CheckLowStock for every active tenant and sends a digest
// for those with alerts. A failing tenant does not stop the others.
func (s *LowStockDigestService) SendDigests(ctx context.Context) (DigestReport, error) {
	var report DigestReport
	codes, err := s.tenants.ActiveCodes(ctx)
	if err != nil {
		return report, fmt.Errorf("list tenants: %w", err)
	}
	report.Tenants = len(codes)

	var errs []error
	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		alerts, err := s.CheckLowStock(ctx, code)
		if err != nil {
			report.Failed = append(report.Failed, code)
			errs = append(errs, err)
			continue
		}
		if len(alerts) == 0 {
			continue
		}
		report.Alerts += len(alerts)
		if err := s.digester.Digest(ctx, code, alerts); err != nil {
			s.metrics.IncAlert("digest_failed")
			report.Failed = append(report.Failed, code)
			errs = append(errs, fmt.Errorf("digest for %s: %w", code, err))
			continue
		}
		s.metrics.IncAlert("digest_sent")
		report.Sent++
		s.logger.Info().Str("tenant", code).Int("items", len(alerts)).Msg("low stock digest sent")
	}
	return report, errors.Join(errs...)
}
