package handlers

import (
	"net/http"

	"consultly/services/resilience"
	"consultly/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports dependency health and provider breaker statistics.
type HealthHandler struct {
	CalendarBreaker *resilience.CircuitBreaker
	CrmBreaker      *resilience.CircuitBreaker
}

// HealthzHandler handles GET /healthz.
func (h *HealthHandler) HealthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services": utils.GetHealthStatus(),
		"breakers": gin.H{
			"calendar": h.CalendarBreaker.Stats(),
			"crm":      h.CrmBreaker.Stats(),
		},
	})
}
