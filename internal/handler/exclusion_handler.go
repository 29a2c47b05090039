package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/justice-digital/activities-api/internal/service"
	appErrors "github.com/justice-digital/activities-api/pkg/errors"
	"github.com/justice-digital/activities-api/pkg/response"
)

// ExclusionHandler manages allocation exclusion endpoints.
type ExclusionHandler struct {
	service *service.ExclusionService
}

// NewExclusionHandler constructs handler.
func NewExclusionHandler(svc *service.ExclusionService) *ExclusionHandler {
	return &ExclusionHandler{service: svc}
}

func allocationID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid allocation id")
	}
	return id, nil
}

// Preview godoc
// @Summary Preview changes to an allocation's exclusion pattern
// @Tags Exclusions
// @Accept json
// @Produce json
// @Param id path int true "Allocation ID"
// @Param payload body service.UpdateExclusionsRequest true "Proposed pattern"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /allocations/{id}/exclusions/preview [post]
func (h *ExclusionHandler) Preview(c *gin.Context) {
	id, err := allocationID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateExclusionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	diff, err := h.service.Preview(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, diff, nil)
}

// Update godoc
// @Summary Replace an allocation's exclusion pattern
// @Tags Exclusions
// @Accept json
// @Produce json
// @Param id path int true "Allocation ID"
// @Param payload body service.UpdateExclusionsRequest true "New pattern"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /allocations/{id}/exclusions [put]
func (h *ExclusionHandler) Update(c *gin.Context) {
	id, err := allocationID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateExclusionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payload"))
		return
	}
	diff, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, diff, nil)
}
