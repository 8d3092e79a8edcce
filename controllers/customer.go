package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"spacrm-backend/logger"
	"spacrm-backend/services"
	"spacrm-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CustomerController struct {
	customers *services.CustomerService
	export    *services.ExportService
	logger    *zap.Logger
}

func NewCustomerController(customers *services.CustomerService, export *services.ExportService, log *zap.Logger) *CustomerController {
	return &CustomerController{customers: customers, export: export, logger: logger.OrNop(log)}
}

// CreateCustomer registers a walk-in customer at the front desk.
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	var input services.CreateCustomerInput
	if !bindJSON(c, &input) {
		return
	}

	customer, err := cc.customers.CreateWalkIn(c.Request.Context(), input)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomers searches by ?q= over name and phone, paginated.
func (cc *CustomerController) GetCustomers(c *gin.Context) {
	page, size := pageParams(c)
	result, err := cc.customers.Search(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func includeDeleted(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.DefaultQuery("includeDeleted", "false"))
	return v
}

func (cc *CustomerController) GetCustomer(c *gin.Context) {
	id, ok := paramUUID(c, "id", "customer")
	if !ok {
		return
	}
	customer, err := cc.customers.GetByID(c.Request.Context(), id, includeDeleted(c))
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// LookupCustomer finds a profile by ?phone=.
func (cc *CustomerController) LookupCustomer(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Phone number is required")
		return
	}
	customer, err := cc.customers.GetByPhone(c.Request.Context(), phone, includeDeleted(c))
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, ok := paramUUID(c, "id", "customer")
	if !ok {
		return
	}
	var input services.UpdateCustomerInput
	if !bindJSON(c, &input) {
		return
	}

	customer, err := cc.customers.Update(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, ok := paramUUID(c, "id", "customer")
	if !ok {
		return
	}
	if err := cc.customers.Delete(c.Request.Context(), id); err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

func (cc *CustomerController) RestoreCustomer(c *gin.Context) {
	id, ok := paramUUID(c, "id", "customer")
	if !ok {
		return
	}
	customer, err := cc.customers.Restore(c.Request.Context(), id)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// ExportCustomers downloads the ?q= search result as a spreadsheet.
func (cc *CustomerController) ExportCustomers(c *gin.Context) {
	data, err := cc.export.CustomersXLSX(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	filename := fmt.Sprintf("customers-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

// GetMyProfile returns the customer profile owned by the caller.
func (cc *CustomerController) GetMyProfile(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	customer, err := cc.customers.GetByAccount(c.Request.Context(), accountID, false)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer, "profileKind": customer.Kind()})
}

// UpdateMyProfile lets a customer complete their own profile. The active
// flag is managed by staff only.
func (cc *CustomerController) UpdateMyProfile(c *gin.Context) {
	accountID, ok := currentAccount(c)
	if !ok {
		return
	}
	var input services.UpdateCustomerInput
	if !bindJSON(c, &input) {
		return
	}
	input.IsActive = nil

	ctx := c.Request.Context()
	current, err := cc.customers.GetByAccount(ctx, accountID, false)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	customer, err := cc.customers.Update(ctx, current.ID, input)
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer, "profileKind": customer.Kind()})
}
