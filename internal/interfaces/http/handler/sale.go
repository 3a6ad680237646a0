package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	salesapp "github.com/pharmacy-pos/backend/internal/application/sales"
	"github.com/pharmacy-pos/backend/internal/interfaces/http/dto"
)

// SaleHandler handles sale API endpoints
type SaleHandler struct {
	BaseHandler
	saleService       *salesapp.SaleService
	allocationService *salesapp.AllocationService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *salesapp.SaleService, allocationService *salesapp.AllocationService) *SaleHandler {
	return &SaleHandler{
		saleService:       saleService,
		allocationService: allocationService,
	}
}

// ValidateItem handles POST /sales/validate-item
// Previews the lot allocation for one line without committing anything.
// The result is advisory: stock can change before the sale is submitted.
func (h *SaleHandler) ValidateItem(c *gin.Context) {
	var req salesapp.ValidateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.allocationService.ValidateItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Create handles POST /sales
// Allocates stock from lots, records the sale with its lot traceability
// and payments, and updates customer credit, all in one transaction.
func (h *SaleHandler) Create(c *gin.Context) {
	var req salesapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	sale, err := h.saleService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// Update handles PUT /sales/:id
// Restores the stock consumed by the previous version of the sale, then
// re-allocates against the updated contents.
func (h *SaleHandler) Update(c *gin.Context) {
	saleID, ok := h.saleIDParam(c)
	if !ok {
		return
	}

	var req salesapp.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	sale, err := h.saleService.Update(c.Request.Context(), saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// Get handles GET /sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.saleIDParam(c)
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// List handles GET /sales
func (h *SaleHandler) List(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filters := map[string]interface{}{}
	if status := c.Query("status"); status != "" {
		filters["status"] = status
	}
	if customerID := c.Query("customer_id"); customerID != "" {
		id, err := uuid.Parse(customerID)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID")
			return
		}
		filters["customer_id"] = id
	}
	if dateFrom := c.Query("date_from"); dateFrom != "" {
		from, err := time.Parse(time.DateOnly, dateFrom)
		if err != nil {
			h.BadRequest(c, "Invalid date_from, expected YYYY-MM-DD")
			return
		}
		filters["date_from"] = from
	}
	if dateTo := c.Query("date_to"); dateTo != "" {
		to, err := time.Parse(time.DateOnly, dateTo)
		if err != nil {
			h.BadRequest(c, "Invalid date_to, expected YYYY-MM-DD")
			return
		}
		// Exclusive upper bound covering the whole named day
		filters["date_to"] = to.AddDate(0, 0, 1)
	}
	if len(filters) > 0 {
		filter.Filters = filters
	}

	result, err := h.saleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

func (h *SaleHandler) saleIDParam(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid sale ID")
		return uuid.Nil, false
	}
	return id, true
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("/validate-item", h.ValidateItem)
		sales.POST("", h.Create)
		sales.GET("", h.List)
		sales.GET("/:id", h.Get)
		sales.PUT("/:id", h.Update)
	}
}
