package controllers

import (
	"net/http"
	"strconv"

	"spacrm-backend/logger"
	"spacrm-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const totalCountHeader = "X-Total-Count"

type AddProductImageInput struct {
	MediaID uuid.UUID `json:"mediaId" binding:"required"`
	Primary bool      `json:"primary"`
}

type PlanServicesInput struct {
	ServiceIDs []uuid.UUID `json:"serviceIds"`
}

type CatalogController struct {
	catalog *services.CatalogService
	logger  *zap.Logger
}

func NewCatalogController(catalog *services.CatalogService, log *zap.Logger) *CatalogController {
	return &CatalogController{catalog: catalog, logger: logger.OrNop(log)}
}

// respond writes v or the mapped error.
func (cc *CatalogController) respond(c *gin.Context, status int, v any, err error) {
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(status, v)
}

// respondList writes a page and reports the unpaged size in X-Total-Count.
func (cc *CatalogController) respondList(c *gin.Context, list any, total int64, err error) {
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.Header(totalCountHeader, strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, list)
}

func (cc *CatalogController) deleted(c *gin.Context, what string, err error) {
	if err != nil {
		respondError(c, cc.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": what + " deleted successfully"})
}

// Categories

func (cc *CatalogController) GetCategories(c *gin.Context) {
	skip, limit := skipLimit(c)
	list, total, err := cc.catalog.ListCategories(c.Request.Context(), skip, limit)
	cc.respondList(c, list, total, err)
}

func (cc *CatalogController) GetCategory(c *gin.Context) {
	id, ok := paramUUID(c, "id", "category")
	if !ok {
		return
	}
	item, err := cc.catalog.GetCategory(c.Request.Context(), id)
	cc.respond(c, http.StatusOK, item, err)
}

func (cc *CatalogController) CreateCategory(c *gin.Context) {
	var input services.CategoryInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := cc.catalog.CreateCategory(c.Request.Context(), input)
	cc.respond(c, http.StatusCreated, item, err)
}

func (cc *CatalogController) UpdateCategory(c *gin.Context) {
	id, ok := paramUUID(c, "id", "category")
	if !ok {
		return
	}
	var input services.CategoryInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := cc.catalog.UpdateCategory(c.Request.Context(), id, input)
	cc.respond(c, http.StatusOK, item, err)
}

func (cc *CatalogController) DeleteCategory(c *gin.Context) {
	id, ok := paramUUID(c, "id", "category")
	if !ok {
		return
	}
	cc.deleted(c, "Category", cc.catalog.DeleteCategory(c.Request.Context(), id))
}

// Services

func (cc *CatalogController) GetServices(c *gin.Context) {
	skip, limit := skipLimit(c)
	list, total, err := cc.catalog.ListServices(c.Request.Context(), skip, limit)
	cc.respondList(c, list, total, err)
}

func (cc *CatalogController) GetService(c *gin.Context) {
	id, ok := paramUUID(c, "id", "service")
	if !ok {
		return
	}
	item, err := cc.catalog.GetService(c.Request.Context(), id)
	cc.respond(c, http.StatusOK, item, err)
}

func (cc *CatalogController) CreateService(c *gin.Context) {
	var input services.ServiceInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := cc.catalog.CreateService(c.Request.Context(), input)
	cc.respond(c, http.StatusCreated, item, err)
}

func (cc *CatalogController) UpdateService(c *gin.Context) {
	id, ok := paramUUID(c, "id", "service")
	if !ok {
		return
	}
	var input services.ServiceInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := cc.catalog.UpdateService(c.Request.Context(), id, input)
	cc.respond(c, http.StatusOK, item, err)
}

func (cc *CatalogController) DeleteService(c *gin.Context) {
	id, ok := paramUUID(c, "id", "service")
	if !ok {
		return
	}
	cc.deleted(c, "Service", cc.catalog.DeleteService(c.Request.Context(), id))
}

// Products

func (cc *CatalogController) GetProducts(c *gin.Context) {
	skip, limit := skipLimit(c)
	list, total, err := cc.catalog.ListProducts(c.Request.Context(), skip, limit)
	cc.respondList(c, list, total, err)
}

func (cc *CatalogController) GetProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id", "product")
	if !ok {
		return
	}
	item, err := cc.catalog.GetProduct(c.Request.Context(), id)
	cc.respond(c, http.StatusOK, item, err)
}

func (cc *CatalogController) CreateProduct(c *gin.Context) {
	var input services.ProductInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := cc.catalog.CreateProduct(c.Request.Context(), input)
	cc.respond(c, http.StatusCreated, item, err)
}

func (cc *CatalogController) UpdateProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id", "product")
	if !ok {
		return
	}
	var input services.ProductInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := cc.catalog.UpdateProduct(c.Request.Context(), id, input)
	cc.respond(c, http.StatusOK, item, err)
}

func (cc *CatalogController) DeleteProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id", "product")
	if !ok {
		return
	}
	cc.deleted(c, "Product", cc.catalog.DeleteProduct(c.Request.Context(), id))
}

func (cc *CatalogController) AddProductImage(c *gin.Context) {
	id, ok := paramUUID(c, "id", "product")
	if !ok {
		return
	}
	var input AddProductImageInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := cc.catalog.AddProductImage(c.Request.Context(), id, input.MediaID, input.Primary)
	cc.respond(c, http.StatusCreated, item, err)
}

func (cc *CatalogController) RemoveProductImage(c *gin.Context) {
	id, ok := paramUUID(c, "id", "product")
	if !ok {
		return
	}
	imageID, ok := paramUUID(c, "imageId", "image")
	if !ok {
		return
	}
	item, err := cc.catalog.RemoveProductImage(c.Request.Context(), id, imageID)
	cc.respond(c, http.StatusOK, item, err)
}

// Treatment plans

func (cc *CatalogController) GetTreatmentPlans(c *gin.Context) {
	skip, limit := skipLimit(c)
	list, total, err := cc.catalog.ListTreatmentPlans(c.Request.Context(), skip, limit)
	cc.respondList(c, list, total, err)
}

func (cc *CatalogController) GetTreatmentPlan(c *gin.Context) {
	id, ok := paramUUID(c, "id", "treatment plan")
	if !ok {
		return
	}
	item, err := cc.catalog.GetTreatmentPlan(c.Request.Context(), id)
	cc.respond(c, http.StatusOK, item, err)
}

func (cc *CatalogController) CreateTreatmentPlan(c *gin.Context) {
	var input services.TreatmentPlanInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := cc.catalog.CreateTreatmentPlan(c.Request.Context(), input)
	cc.respond(c, http.StatusCreated, item, err)
}

func (cc *CatalogController) UpdateTreatmentPlan(c *gin.Context) {
	id, ok := paramUUID(c, "id", "treatment plan")
	if !ok {
		return
	}
	var input services.TreatmentPlanInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := cc.catalog.UpdateTreatmentPlan(c.Request.Context(), id, input)
	cc.respond(c, http.StatusOK, item, err)
}

func (cc *CatalogController) SetTreatmentPlanServices(c *gin.Context) {
	id, ok := paramUUID(c, "id", "treatment plan")
	if !ok {
		return
	}
	var input PlanServicesInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := cc.catalog.SetTreatmentPlanServices(c.Request.Context(), id, input.ServiceIDs)
	cc.respond(c, http.StatusOK, item, err)
}

func (cc *CatalogController) DeleteTreatmentPlan(c *gin.Context) {
	id, ok := paramUUID(c, "id", "treatment plan")
	if !ok {
		return
	}
	cc.deleted(c, "Treatment plan", cc.catalog.DeleteTreatmentPlan(c.Request.Context(), id))
}
