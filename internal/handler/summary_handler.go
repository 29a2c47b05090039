package handler

import (
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/justice-digital/activities-api/internal/service"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
	"github.com/justice-digital/activities-api/pkg/response"
)

// SummaryHandler manages daily summary and export endpoints.
type SummaryHandler struct {
	summaries *service.SummaryService
	exports   *service.ExportService
}

// NewSummaryHandler constructs handler.
func NewSummaryHandler(summaries *service.SummaryService, exports *service.ExportService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, exports: exports}
}

// Daily godoc
// @Summary Daily attendance summary for a prison
// @Tags Summary
// @Produce json
// @Param prisonCode query string true "Prison code"
// @Param date query string true "Summary date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /summary/daily [get]
func (h *SummaryHandler) Daily(c *gin.Context) {
	prisonCode := c.Query("prisonCode")
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
		return
	}
	summary, cached, err := h.summaries.Daily(c.Request.Context(), prisonCode, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cached": cached})
}

// RequestExport godoc
// @Summary Request a CSV or PDF export of a daily summary
// @Tags Summary
// @Accept json
// @Produce json
// @Param payload body service.ExportRequest true "Export request"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /summary/exports [post]
func (h *SummaryHandler) RequestExport(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "exports are disabled"))
		return
	}
	var req service.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	record, err := h.exports.Request(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, record, nil)
}

// ExportStatus godoc
// @Summary Check the status of an export
// @Tags Summary
// @Produce json
// @Param id path string true "Export ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /summary/exports/{id} [get]
func (h *SummaryHandler) ExportStatus(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	record, err := h.exports.Status(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Download godoc
// @Summary Download a completed export via its signed token
// @Tags Summary
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /summary/exports/download [get]
func (h *SummaryHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "exports are disabled"))
		return
	}
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, relPath, err := h.exports.Open(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	filename := path.Base(relPath)
	contentType := "application/octet-stream"
	switch {
	case strings.HasSuffix(filename, ".csv"):
		contentType = "text/csv"
	case strings.HasSuffix(filename, ".pdf"):
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
