package handlers

import (
	"net/http"
	"time"

	"consultly/utils"

	"github.com/gin-gonic/gin"
)

// ListAvailableSlotsHandler handles GET /api/availability.
func (h *BookingHandler) ListAvailableSlotsHandler(c *gin.Context) {
	var query struct {
		Start    string `form:"start" binding:"required"`
		End      string `form:"end" binding:"required"`
		Duration int    `form:"duration" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query", err.Error())
		return
	}

	start, err := time.Parse(time.RFC3339, query.Start)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid start", err.Error())
		return
	}
	end, err := time.Parse(time.RFC3339, query.End)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid end", err.Error())
		return
	}
	if !end.After(start) {
		utils.JSONError(c, http.StatusBadRequest, "invalid range", "end must be after start")
		return
	}

	slots, err := h.Service.ListAvailableSlots(c.Request.Context(), start, end, query.Duration)
	if err != nil {
		h.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
