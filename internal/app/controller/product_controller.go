package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mstasiak/storefront-backend/internal/app/model"
	"github.com/mstasiak/storefront-backend/internal/app/repository"
	"github.com/mstasiak/storefront-backend/internal/app/service"
	apperrors "github.com/mstasiak/storefront-backend/internal/errors"
	"github.com/mstasiak/storefront-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	catalogService service.CatalogService
}

func NewProductController(catalogService service.CatalogService) *ProductController {
	return &ProductController{catalogService: catalogService}
}

type CreateProductRequest struct {
	Title             string          `json:"title" binding:"required"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price" binding:"required"`
	Active            *bool           `json:"active"`
	DefaultCategoryID *uint           `json:"default_category_id"`
}

// ListProducts returns the active catalog, optionally filtered
// GET /api/v1/products?category=&q=&min_price=&max_price=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := repository.ProductFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}

	if raw := c.Query("min_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "min_price must be a number")
			return
		}
		filter.MinPrice = &price
	}
	if raw := c.Query("max_price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "max_price must be a number")
			return
		}
		filter.MaxPrice = &price
	}

	products, err := ctrl.catalogService.ListProducts(filter)
	if err != nil {
		log.Error("Failed to list products", err, map[string]interface{}{
			"category": filter.Category,
			"query":    filter.Query,
		})
		apperrors.InternalError(c, "Failed to fetch products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns a single active product with its variations
// GET /api/v1/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product id")
		return
	}

	product, err := ctrl.catalogService.GetProduct(uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// CreateProduct adds a catalog entry. A default variation is provisioned so
// the product is purchasable immediately.
// POST /api/v1/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "title and price are required")
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	product := &model.Product{
		Title:             req.Title,
		Description:       req.Description,
		Price:             req.Price,
		Active:            active,
		DefaultCategoryID: req.DefaultCategoryID,
	}
	if err := ctrl.catalogService.CreateProduct(product); err != nil {
		log.Error("Failed to create product", err, map[string]interface{}{
			"title": req.Title,
		})
		apperrors.InternalError(c, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// ListVariations returns a product's variations
// GET /api/v1/products/:id/variations
func (ctrl *ProductController) ListVariations(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product id")
		return
	}

	variations, err := ctrl.catalogService.ListVariations(uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to list variations", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "Failed to fetch variations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"variations": variations})
}

// UpdateVariations applies a bulk inventory and pricing edit
// PUT /api/v1/products/:id/variations
func (ctrl *ProductController) UpdateVariations(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	productID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product id")
		return
	}

	var updates []service.VariationUpdate
	if err := c.ShouldBindJSON(&updates); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid variation rows")
		return
	}

	if err := ctrl.catalogService.UpdateVariations(uint(productID), updates); err != nil {
		if errors.Is(err, service.ErrVariationNotFound) {
			apperrors.NotFound(c, apperrors.VariationNotFound,
				"Variation not found for this product")
			return
		}
		log.Error("Failed to update variations", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "Failed to update variations")
		return
	}

	variations, err := ctrl.catalogService.ListVariations(uint(productID))
	if err != nil {
		apperrors.InternalError(c, "Failed to fetch variations")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Variations updated successfully",
		"variations": variations,
	})
}
