// Package notify delivers low-stock alerts to external channels.
package notify

import (
	"context"
	"errors"
	"fmt"

	"kitchenstock/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Alerter matches inventory.Alerter.
type Alerter interface {
	LowStock(ctx context.Context, alert models.LowStockAlert) error
}

// Digester sends a batch of alerts for one tenant as a single message.
type Digester interface {
	Digest(ctx context.Context, tenantCode string, alerts []models.LowStockAlert) error
}

// Noop discards alerts.
type Noop struct{}

func (Noop) LowStock(context.Context, models.LowStockAlert) error { return nil }

func (Noop) Digest(context.Context, string, []models.LowStockAlert) error { return nil }

// Multi sends every alert to all of its alerters and joins their errors.
type Multi []Alerter

func (m Multi) LowStock(ctx context.Context, alert models.LowStockAlert) error {
	var errs []error
	for _, a := range m {
		if err := a.LowStock(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Digest forwards to the members that can send digests.
func (m Multi) Digest(ctx context.Context, tenantCode string, alerts []models.LowStockAlert) error {
	var errs []error
	for _, a := range m {
		d, ok := a.(Digester)
		if !ok {
			continue
		}
		if err := d.Digest(ctx, tenantCode, alerts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// AsDigester returns the digest side of an alerter built by New, or Noop.
func AsDigester(a Alerter) Digester {
	if d, ok := a.(Digester); ok {
		return d
	}
	return Noop{}
}

// New combines the configured alerters. With none it returns Noop.
func New(alerters ...Alerter) Alerter {
	var live Multi
	for _, a := range alerters {
		if a != nil {
			live = append(live, a)
		}
	}
	switch len(live) {
	case 0:
		return Noop{}
	case 1:
		return live[0]
	}
	return live
}

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatAlert renders the human readable alert text.
func FormatAlert(alert models.LowStockAlert) string {
	return printer.Sprintf("Estoque baixo: %s (%s) está com %v %s, mínimo %v %s",
		alert.ItemName, alert.SheetName, alert.Quantity, alert.Unit, alert.MinThreshold, alert.Unit)
}

// FormatDigest renders several alerts as one message.
func FormatDigest(tenantCode string, alerts []models.LowStockAlert) string {
	out := fmt.Sprintf("Itens abaixo do mínimo em %s: %d", tenantCode, len(alerts))
	for _, a := range alerts {
		out += "\n- " + printer.Sprintf("%s: %v/%v %s", a.ItemName, a.Quantity, a.MinThreshold, a.Unit)
	}
	return out
}
