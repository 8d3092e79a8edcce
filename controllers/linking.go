package controllers

import (
	"net/http"

	"spacrm-backend/logger"
	"spacrm-backend/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InitiateLinkInput struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

type VerifyLinkInput struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

type LinkingController struct {
	linking *services.LinkingService
	logger  *zap.Logger
}

func NewLinkingController(linking *services.LinkingService, log *zap.Logger) *LinkingController {
	return &LinkingController{linking: linking, logger: logger.OrNop(log)}
}

// Initiate sends a verification code to the walk-in profile's phone.
func (lc *LinkingController) Initiate(c *gin.Context) {
	var input InitiateLinkInput
	if !bindJSON(c, &input) {
		return
	}
	res, err := lc.linking.Initiate(c.Request.Context(), input.PhoneNumber)
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Verify checks the code and merges the walk-in profile into the caller's
// account.
func (lc *LinkingController) Verify(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	var input VerifyLinkInput
	if !bindJSON(c, &input) {
		return
	}

	customer, err := lc.linking.VerifyAndMerge(c.Request.Context(), accountID, input.PhoneNumber, input.Code)
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Account linked successfully",
		"customer":    customer,
		"profileKind": customer.Kind(),
	})
}
