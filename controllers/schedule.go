package controllers

import (
	"net/http"

	"spacrm-backend/errs"
	"spacrm-backend/logger"
	"spacrm-backend/services"
	"spacrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReplaceWeekInput struct {
	Days []services.WeekdayEntry `json:"days" binding:"required"`
}

type ScheduleController struct {
	schedules *services.ScheduleService
	logger    *zap.Logger
}

func NewScheduleController(schedules *services.ScheduleService, log *zap.Logger) *ScheduleController {
	return &ScheduleController{schedules: schedules, logger: logger.OrNop(log)}
}

func (sc *ScheduleController) GetWeek(c *gin.Context) {
	staffID, ok := paramUUID(c, "id", "staff")
	if !ok {
		return
	}
	week, err := sc.schedules.GetOrCreateWeek(c.Request.Context(), staffID)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (sc *ScheduleController) ReplaceWeek(c *gin.Context) {
	staffID, ok := paramUUID(c, "id", "staff")
	if !ok {
		return
	}
	var input ReplaceWeekInput
	if !bindJSON(c, &input) {
		return
	}
	week, err := sc.schedules.ReplaceWeek(c.Request.Context(), staffID, input.Days)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

func (sc *ScheduleController) UpdateEntry(c *gin.Context) {
	id, ok := paramUUID(c, "id", "schedule")
	if !ok {
		return
	}
	var input services.UpdateScheduleInput
	if !bindJSON(c, &input) {
		return
	}
	row, err := sc.schedules.UpdateEntry(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (sc *ScheduleController) CreateOverride(c *gin.Context) {
	staffID, ok := paramUUID(c, "id", "staff")
	if !ok {
		return
	}
	var input services.OverrideInput
	if !bindJSON(c, &input) {
		return
	}
	row, err := sc.schedules.CreateOverride(c.Request.Context(), staffID, input)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// ListOverrides returns time off and overrides between ?from= and ?to=.
func (sc *ScheduleController) ListOverrides(c *gin.Context) {
	staffID, ok := paramUUID(c, "id", "staff")
	if !ok {
		return
	}
	from, err := utils.ParseDate(c.Query("from"))
	if err != nil {
		respondError(c, sc.logger, errs.Validation("%s", err.Error()))
		return
	}
	to, err := utils.ParseDate(c.Query("to"))
	if err != nil {
		respondError(c, sc.logger, errs.Validation("%s", err.Error()))
		return
	}
	rows, err := sc.schedules.ListRange(c.Request.Context(), staffID, from, to)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetAvailability resolves working hours on ?date=.
func (sc *ScheduleController) GetAvailability(c *gin.Context) {
	staffID, ok := paramUUID(c, "id", "staff")
	if !ok {
		return
	}
	day, err := utils.ParseDate(c.Query("date"))
	if err != nil {
		respondError(c, sc.logger, errs.Validation("%s", err.Error()))
		return
	}
	availability, err := sc.schedules.Availability(c.Request.Context(), staffID, day)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}
