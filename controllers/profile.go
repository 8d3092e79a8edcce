package controllers

import (
	"net/http"

	"spacrm-backend/logger"
	"spacrm-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileController serves the caller's own working hours.
type ProfileController struct {
	defaults *services.DefaultScheduleService
	logger   *zap.Logger
}

func NewProfileController(defaults *services.DefaultScheduleService, log *zap.Logger) *ProfileController {
	return &ProfileController{defaults: defaults, logger: logger.OrNop(log)}
}

func (pc *ProfileController) GetWorkingHours(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	days, err := pc.defaults.Get(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

func (pc *ProfileController) UpdateWorkingHours(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	var input ReplaceWeekInput
	if !bindJSON(c, &input) {
		return
	}
	days, err := pc.defaults.Replace(c.Request.Context(), accountID, input.Days)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Working hours updated successfully",
		"days":    days,
	})
}
