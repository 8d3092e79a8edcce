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

type AuthController struct {
	auth      *services.AuthService
	customers *services.CustomerService
	staff     *services.StaffService
	logger    *zap.Logger
}

func NewAuthController(auth *services.AuthService, customers *services.CustomerService, staff *services.StaffService, log *zap.Logger) *AuthController {
	return &AuthController{auth: auth, customers: customers, staff: staff, logger: logger.OrNop(log)}
}

func setTokenCookie(c *gin.Context, token string) {
	maxAge := int(utils.TokenExpiry().Seconds())
	c.SetCookie(
		"token",
		token,
		maxAge,
		"/",
		"",
		true,
		true,
	)
}

func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	res, err := ac.auth.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	setTokenCookie(c, res.Token)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Registration successful",
		"token":    res.Token,
		"account":  res.Account,
		"customer": res.Customer,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	res, err := ac.auth.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	setTokenCookie(c, res.Token)

	c.JSON(http.StatusOK, gin.H{
		"token":   res.Token,
		"account": res.Account,
	})
}

// Me returns the caller's identity plus whichever profiles it owns.
func (ac *AuthController) Me(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	identity, err := ac.auth.Identity(ctx, accountID)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	resp := gin.H{"account": identity}
	if customer, err := ac.customers.GetByAccount(ctx, accountID, false); err == nil {
		resp["customer"] = customer
		resp["profileKind"] = customer.Kind()
	} else if !errs.Is(err, errs.KindNotFound) {
		respondError(c, ac.logger, err)
		return
	}
	if profile, err := ac.staff.GetByAccount(ctx, accountID); err == nil {
		resp["staff"] = profile
	} else if !errs.Is(err, errs.KindNotFound) {
		respondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type SetRoleInput struct {
	Role string `json:"role" binding:"required,oneof=admin staff customer"`
}

func (ac *AuthController) SetRole(c *gin.Context) {
	accountID, ok := paramUUID(c, "id", "account")
	if !ok {
		return
	}
	var input SetRoleInput
	if !bindJSON(c, &input) {
		return
	}

	identity, err := ac.auth.SetRole(c.Request.Context(), accountID, input.Role)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}
