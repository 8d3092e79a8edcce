// controllers/reminder.go
package controllers

import (
	"net/http"

	"spacrm-backend/logger"
	"spacrm-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReminderController struct {
	reminders *services.ReminderService
	logger    *zap.Logger
}

func NewReminderController(reminders *services.ReminderService, log *zap.Logger) *ReminderController {
	return &ReminderController{reminders: reminders, logger: logger.OrNop(log)}
}

// RunBirthdayReminders triggers the daily job on demand.
func (rc *ReminderController) RunBirthdayReminders(c *gin.Context) {
	summary, err := rc.reminders.SendBirthdayReminders(c.Request.Context())
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (rc *ReminderController) GetReminderLogs(c *gin.Context) {
	page, size := pageParams(c)
	logs, err := rc.reminders.ListLogs(c.Request.Context(), page, size)
	if err != nil {
		respondError(c, rc.logger, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
