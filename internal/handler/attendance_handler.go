package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/justice-digital/activities-api/internal/middleware"
	"github.com/justice-digital/activities-api/internal/models"
	"github.com/justice-digital/activities-api/internal/service"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
	"github.com/justice-digital/activities-api/pkg/response"
)

// AttendanceHandler manages attendance recording endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param sessionId query int false "Filter by session instance"
// @Param prisonCode query string false "Filter by prison"
// @Param prisonerNumber query string false "Filter by prisoner"
// @Param date query string false "Filter by session date (YYYY-MM-DD)"
// @Param status query string false "Filter by status"
// @Param timeSlot query string false "Filter by time slot"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	var req service.AttendanceListRequest
	if raw := c.Query("sessionId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session id"))
			return
		}
		req.SessionInstanceID = id
	}
	req.PrisonCode = c.Query("prisonCode")
	req.PrisonerNumber = c.Query("prisonerNumber")
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
			return
		}
		req.SessionDate = &date
	}
	req.Status = c.Query("status")
	req.TimeSlot = c.Query("timeSlot")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		req.PageSize = limit
	}
	req.SortBy = c.Query("sort")
	req.SortOrder = c.Query("order")

	records, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Mark godoc
// @Summary Record attendance outcomes
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance updates"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/mark [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	if claims, ok := middleware.CurrentClaims(c); ok {
		req.RecordedBy = claims.Username
	}
	result, err := h.service.Mark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reset godoc
// @Summary Reset a recorded attendance back to waiting
// @Tags Attendance
// @Produce json
// @Param id path int true "Attendance ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /attendance/{id}/reset [post]
func (h *AttendanceHandler) Reset(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid attendance id"))
		return
	}
	record, err := h.service.Reset(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Reasons godoc
// @Summary List the attendance reason catalog
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance-reasons [get]
func (h *AttendanceHandler) Reasons(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.ReasonDefinitions(), nil)
}
