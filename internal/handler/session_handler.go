package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/justice-digital/activities-api/internal/middleware"
	"github.com/justice-digital/activities-api/internal/service"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
	"github.com/justice-digital/activities-api/pkg/response"
)

// SessionHandler manages session instance endpoints.
type SessionHandler struct {
	service *service.AttendanceService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(svc *service.AttendanceService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// Cancel godoc
// @Summary Cancel a session instance
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path int true "Session instance ID"
// @Param payload body service.CancelSessionRequest true "Cancellation reason"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/cancel [post]
func (h *SessionHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session id"))
		return
	}
	var req service.CancelSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	if claims, ok := middleware.CurrentClaims(c); ok {
		req.CancelledBy = claims.Username
	}
	session, err := h.service.CancelSession(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Uncancel godoc
// @Summary Reinstate a cancelled session instance
// @Tags Sessions
// @Produce json
// @Param id path int true "Session instance ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/uncancel [post]
func (h *SessionHandler) Uncancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid session id"))
		return
	}
	actionedBy := ""
	if claims, ok := middleware.CurrentClaims(c); ok {
		actionedBy = claims.Username
	}
	session, err := h.service.UncancelSession(c.Request.Context(), id, actionedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}
