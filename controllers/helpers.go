package controllers

import (
	"net/http"
	"strconv"

	"spacrm-backend/errs"
	"spacrm-backend/repository"
	"spacrm-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation, errs.KindInvalidOTP:
		return http.StatusBadRequest
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindAccountLinking:
		return http.StatusUnprocessableEntity
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps service errors onto HTTP responses. Unclassified errors
// are logged and reported without detail.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		utils.RespondWithError(c, status, "Internal server error")
		return
	}
	if kind == errs.KindAccountLinking {
		log.Warn("account linking failed", zap.Error(err))
	}
	utils.RespondWithError(c, status, message(err))
}

// message prefers the classified error's own text over the wrapped chain.
func message(err error) string {
	if e, ok := err.(*errs.Error); ok && e.Message != "" {
		return e.Message
	}
	return err.Error()
}

func paramUUID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

func currentAccount(c *gin.Context) (uuid.UUID, bool) {
	id, ok := utils.CurrentAccountID(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Account ID not found in context")
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads ?page=&pageSize= with the repository defaults.
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(repository.DefaultPageSize)))
	return page, size
}

// skipLimit converts page parameters for repository.List.
func skipLimit(c *gin.Context) (int, int) {
	page, size := pageParams(c)
	_, size, offset := repository.NormalizePage(page, size)
	return offset, size
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}
