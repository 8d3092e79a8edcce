package controllers

import (
	"net/http"

	"spacrm-backend/logger"
	"spacrm-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DashboardController struct {
	dashboard *services.DashboardService
	logger    *zap.Logger
}

func NewDashboardController(dashboard *services.DashboardService, log *zap.Logger) *DashboardController {
	return &DashboardController{dashboard: dashboard, logger: logger.OrNop(log)}
}

func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	overview, err := dc.dashboard.Overview(c.Request.Context())
	if err != nil {
		respondError(c, dc.logger, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
