package handlers

import (
	"fmt"
	"net/http"
	"time"

	"kitchenstock/internal/common"
	"kitchenstock/internal/services"
	"kitchenstock/internal/spreadsheet"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	maxUploadSize   = 10 << 20
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// TransferHandlers handles XLSX import and export
type TransferHandlers struct {
	transferService services.TransferService
	logger          zerolog.Logger
}

// NewTransferHandlers creates a new transfer handlers instance
func NewTransferHandlers(transferService services.TransferService, logger zerolog.Logger) *TransferHandlers {
	return &TransferHandlers{
		transferService: transferService,
		logger:          logger.With().Str("component", "transfer-api").Logger(),
	}
}

// ImportWorkbook merges the uploaded workbook (form field "file") into stock
func (h *TransferHandlers) ImportWorkbook(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "is required")
	}
	if fh.Size > maxUploadSize {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"error": fmt.Sprintf("file exceeds %d MB", maxUploadSize>>20),
		})
	}
	f, err := fh.Open()
	if err != nil {
		return common.SendClientError(c, "file could not be read")
	}
	defer f.Close()

	result, err := h.transferService.Import(c.Request().Context(), tenant, f)
	if err != nil {
		if result != nil && len(result.Issues) > 0 {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error":  err.Error(),
				"issues": result.Issues,
			})
		}
		return respondError(c, h.logger, err)
	}
	if result.Issues == nil {
		result.Issues = []spreadsheet.RowIssue{}
	}
	return c.JSON(http.StatusOK, result)
}

// ExportWorkbook uploads the workbook and returns a download link. With
// ?download=true the workbook is streamed directly instead.
func (h *TransferHandlers) ExportWorkbook(c echo.Context) error {
	tenant, err := tenantFrom(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	ctx := c.Request().Context()
	if c.QueryParam("download") == "true" {
		data, err := h.transferService.Workbook(ctx, tenant)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		name := fmt.Sprintf("estoque-%s-%s.xlsx", tenant, time.Now().UTC().Format("20060102"))
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
		return c.Blob(http.StatusOK, xlsxContentType, data)
	}
	result, err := h.transferService.Export(ctx, tenant)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, result)
}
