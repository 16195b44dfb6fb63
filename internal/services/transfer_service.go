package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"kitchenstock/internal/caching"
	"kitchenstock/internal/models"
	"kitchenstock/internal/spreadsheet"

	"github.com/rs/zerolog"
)

// ErrStorageDisabled is returned by Export when no object storage is configured.
var ErrStorageDisabled = errors.New("export storage is not configured")

const defaultLinkExpiry = 15 * time.Minute

type TransferService interface {
	Export(ctx context.Context, tenantCode string) (*ExportResult, error)
	Workbook(ctx context.Context, tenantCode string) ([]byte, error)
	Import(ctx context.Context, tenantCode string, r io.Reader) (*ImportResult, error)
}

type ExportResult struct {
	ObjectName string    `json:"object_name"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
	Sheets     int       `json:"sheets"`
	Items      int       `json:"items"`
}

type ImportResult struct {
	Sheets []string               `json:"sheets"`
	Items  int                    `json:"items"`
	Issues []spreadsheet.RowIssue `json:"issues,omitempty"`
}

type transferService struct {
	stock      StockProvider
	storage    ObjectStorage
	cache      caching.CacheService
	linkExpiry time.Duration
	logger     zerolog.Logger
	now        func() time.Time
}

// NewTransferService wires workbook import and export. storage may be nil,
// in which case Export fails and Workbook still works. Imports drop the
// tenant's cached recipe costs when cache is set.
func NewTransferService(stock StockProvider, storage ObjectStorage, cache caching.CacheService, linkExpiry time.Duration, logger zerolog.Logger) TransferService {
	if linkExpiry <= 0 {
		linkExpiry = defaultLinkExpiry
	}
	return &transferService{
		stock:      stock,
		storage:    storage,
		cache:      cache,
		linkExpiry: linkExpiry,
		logger:     logger.With().Str("component", "transfer").Logger(),
		now:        time.Now,
	}
}

// Workbook renders the tenant's sheets and recent log as XLSX.
func (s *transferService) Workbook(ctx context.Context, tenantCode string) ([]byte, error) {
	stock, err := s.stock.Stock(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	data, err := spreadsheet.Encode(stock.Sheets(), stock.Log())
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return data, nil
}

// Export uploads the workbook and returns a presigned download link.
func (s *transferService) Export(ctx context.Context, tenantCode string) (*ExportResult, error) {
	if s.storage == nil {
		return nil, ErrStorageDisabled
	}
	stock, err := s.stock.Stock(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	sheets := stock.Sheets()
	data, err := spreadsheet.Encode(sheets, stock.Log())
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}

	now := s.now().UTC()
	objectName := fmt.Sprintf("exports/%s/estoque-%s.xlsx", tenantCode, now.Format("20060102-150405"))
	if err := s.storage.Upload(ctx, objectName, bytes.NewReader(data), int64(len(data)), xlsxContentType); err != nil {
		return nil, fmt.Errorf("upload workbook: %w", err)
	}
	url, err := s.storage.PresignedURL(ctx, objectName, s.linkExpiry)
	if err != nil {
		if derr := s.storage.Delete(ctx, objectName); derr != nil {
			s.logger.Warn().Err(derr).Str("object", objectName).Msg("failed to remove unlinked export")
		}
		return nil, fmt.Errorf("presign workbook: %w", err)
	}

	result := &ExportResult{
		ObjectName: objectName,
		URL:        url,
		ExpiresAt:  now.Add(s.linkExpiry),
		Sheets:     len(sheets),
	}
	for _, sh := range sheets {
		result.Items += len(sh.Items)
	}
	s.logger.Info().Str("tenant", tenantCode).Str("object", objectName).Int("items", result.Items).Msg("inventory exported")
	return result, nil
}

// Import decodes a workbook and merges it into the tenant's sheets.
func (s *transferService) Import(ctx context.Context, tenantCode string, r io.Reader) (*ImportResult, error) {
	sheets, issues, err := spreadsheet.Decode(r)
	if err != nil {
		return &ImportResult{Issues: issues}, err
	}
	stock, err := s.stock.Stock(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	n, err := stock.Import(ctx, sheets)
	if err != nil {
		return nil, fmt.Errorf("import sheets: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateRecipeCosts(ctx, tenantCode); err != nil {
			s.logger.Warn().Err(err).Str("tenant", tenantCode).Msg("recipe cost invalidation failed")
		}
	}
	result := &ImportResult{Items: n, Issues: issues, Sheets: sheetNames(sheets)}
	s.logger.Info().Str("tenant", tenantCode).Int("items", n).Int("skipped_rows", len(issues)).Msg("inventory imported")
	return result, nil
}

func sheetNames(sheets []models.Sheet) []string {
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name
	}
	return names
}
