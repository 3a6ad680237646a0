package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/pharmacy-pos/backend/internal/application/catalog"
	"github.com/pharmacy-pos/backend/internal/interfaces/http/dto"
)

// ProductHandler handles product catalog API endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// Search handles GET /catalog/products/search?q=
// Matches products by name or barcode and enriches each hit with current
// stock figures for the sale screen.
func (h *ProductHandler) Search(c *gin.Context) {
	query := c.Query("q")

	results, err := h.productService.Search(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, results)
}

// Stock handles GET /catalog/products/:id/stock
// Returns the product's available lots in first-expired-first-out order
// plus aggregate stock figures.
func (h *ProductHandler) Stock(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	productID, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	info, err := h.productService.StockInfo(c.Request.Context(), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, info)
}

// RegisterRoutes registers all product catalog routes
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/catalog/products")
	{
		products.GET("/search", h.Search)
		products.GET("/:id/stock", h.Stock)
	}
}
