package controllers

import (
	"net/http"

	"spacrm-backend/logger"
	"spacrm-backend/models"
	"spacrm-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChangeStatusInput struct {
	Status models.EmploymentStatus `json:"status" binding:"required"`
}

type OffboardInput struct {
	Note string `json:"note"`
}

type AssignServicesInput struct {
	ServiceIDs []uuid.UUID `json:"serviceIds"`
}

type StaffController struct {
	staff  *services.StaffService
	logger *zap.Logger
}

func NewStaffController(staff *services.StaffService, log *zap.Logger) *StaffController {
	return &StaffController{staff: staff, logger: logger.OrNop(log)}
}

func (sc *StaffController) CreateStaff(c *gin.Context) {
	var input services.CreateStaffInput
	if !bindJSON(c, &input) {
		return
	}
	profile, err := sc.staff.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// GetStaffList supports ?status= plus pagination.
func (sc *StaffController) GetStaffList(c *gin.Context) {
	page, size := pageParams(c)
	result, err := sc.staff.List(c.Request.Context(), page, size, models.EmploymentStatus(c.Query("status")))
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (sc *StaffController) GetStaff(c *gin.Context) {
	id, ok := paramUUID(c, "id", "staff")
	if !ok {
		return
	}
	profile, err := sc.staff.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (sc *StaffController) UpdateStaff(c *gin.Context) {
	id, ok := paramUUID(c, "id", "staff")
	if !ok {
		return
	}
	var input services.UpdateStaffInput
	if !bindJSON(c, &input) {
		return
	}
	profile, err := sc.staff.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (sc *StaffController) ChangeStatus(c *gin.Context) {
	id, ok := paramUUID(c, "id", "staff")
	if !ok {
		return
	}
	var input ChangeStatusInput
	if !bindJSON(c, &input) {
		return
	}
	profile, err := sc.staff.ChangeStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (sc *StaffController) Offboard(c *gin.Context) {
	id, ok := paramUUID(c, "id", "staff")
	if !ok {
		return
	}
	var input OffboardInput
	// the note is optional, so an empty body is fine
	_ = c.ShouldBindJSON(&input)

	profile, err := sc.staff.Offboard(c.Request.Context(), id, input.Note)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (sc *StaffController) AssignServices(c *gin.Context) {
	id, ok := paramUUID(c, "id", "staff")
	if !ok {
		return
	}
	var input AssignServicesInput
	if !bindJSON(c, &input) {
		return
	}
	profile, err := sc.staff.AssignServices(c.Request.Context(), id, input.ServiceIDs)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
