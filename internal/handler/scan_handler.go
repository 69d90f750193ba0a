package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/cardshare/internal/dto"
	"github.com/octobees/cardshare/internal/extract"
)

// ScanHandler exposes the card scanner. Its responses use the scanner's own
// {success, data | error} shape rather than the API envelope.
type ScanHandler struct {
	scanner extract.Scanner
}

// NewScanHandler constructs a ScanHandler.
func NewScanHandler(scanner extract.Scanner) *ScanHandler {
	return &ScanHandler{scanner: scanner}
}

// Scan handles POST /scan.
func (h *ScanHandler) Scan(c echo.Context) error {
	var req dto.ScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, extract.Outcome{Error: "invalid payload"})
	}

	out := h.scanner.Scan(c.Request().Context(), req.ImageData, nil)
	if out.Success {
		return c.JSON(http.StatusOK, out)
	}
	return c.JSON(extract.StatusFor(out.Kind), out)
}
