package api

import (
	"fmt"
	"net/http"
	"strconv"

	"storefront/internal/catalog"
	"storefront/internal/models"

	"github.com/gin-gonic/gin"
)

const defaultFeaturedLimit = 6

// CatalogHandler serves the read-only catalog routes
type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

func (h *CatalogHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/products", h.listProducts)
	rg.GET("/products/:id", h.getProduct)
	rg.GET("/featured", h.featured)
	rg.GET("/categories", h.categories)
	rg.GET("/brands", h.brands)
	rg.GET("/search", h.search)
	rg.POST("/filter", h.filter)
}

func (h *CatalogHandler) listProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.List())
}

func (h *CatalogHandler) getProduct(c *gin.Context) {
	product, err := h.catalog.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) featured(c *gin.Context) {
	limit := defaultFeaturedLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, fmt.Errorf("%w: limit must be a non-negative integer", models.ErrInvalidInput))
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.catalog.Featured(limit))
}

func (h *CatalogHandler) categories(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Categories())
}

func (h *CatalogHandler) brands(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Brands())
}

func (h *CatalogHandler) search(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Search(c.Query("q")))
}

func (h *CatalogHandler) filter(c *gin.Context) {
	var f catalog.Filter
	if !bindJSON(c, &f) {
		return
	}
	c.JSON(http.StatusOK, h.catalog.Filter(f))
}
