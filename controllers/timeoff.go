package controllers

import (
	"net/http"

	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/services"
	"spacrm-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DecideTimeOffInput struct {
	Status models.TimeOffStatus `json:"status" binding:"required,oneof=approved rejected"`
	Note   string               `json:"note"`
}

type TimeOffController struct {
	timeOff *services.TimeOffService
	logger  *zap.Logger
}

func NewTimeOffController(timeOff *services.TimeOffService, log *zap.Logger) *TimeOffController {
	return &TimeOffController{timeOff: timeOff, logger: logger.OrNop(log)}
}

func (tc *TimeOffController) RequestTimeOff(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	var input services.TimeOffRequestInput
	if !bindJSON(c, &input) {
		return
	}
	req, err := tc.timeOff.Request(c.Request.Context(), accountID, c.GetString(utils.ContextRole), input)
	if err != nil {
		respondError(c, tc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// GetTimeOffs accepts ?staffId= and ?status= filters.
func (tc *TimeOffController) GetTimeOffs(c *gin.Context) {
	var filter services.TimeOffFilter
	if raw := c.Query("staffId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid staff ID format")
			return
		}
		filter.StaffID = &id
	}
	filter.Status = models.TimeOffStatus(c.Query("status"))

	list, err := tc.timeOff.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, tc.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (tc *TimeOffController) GetTimeOff(c *gin.Context) {
	id, ok := paramUUID(c, "id", "time-off")
	if !ok {
		return
	}
	req, err := tc.timeOff.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, tc.logger, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (tc *TimeOffController) DecideTimeOff(c *gin.Context) {
	approverID, ok := currentAccount(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id", "time-off")
	if !ok {
		return
	}
	var input DecideTimeOffInput
	if !bindJSON(c, &input) {
		return
	}
	req, err := tc.timeOff.Decide(c.Request.Context(), id, approverID, input.Status, input.Note)
	if err != nil {
		respondError(c, tc.logger, err)
		return
	}
	c.JSON(http.StatusOK, req)
}
