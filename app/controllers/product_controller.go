package controllers

import (
	"errors"
	"net/http"

	"github.com/livraria-escolar/catalog/app/models"
	"github.com/livraria-escolar/catalog/app/services"
	"github.com/livraria-escolar/catalog/pkg/ctx"
)

type ProductController struct {
	service *services.CatalogService
}

func NewProductController(service *services.CatalogService) *ProductController {
	return &ProductController{service: service}
}

// Index lists every product.
func (pc *ProductController) Index(c *ctx.Context) {
	products, err := pc.service.ListProducts(c.Context())
	if err != nil {
		c.Log().Error("list products", "error", err)
		c.Fail(http.StatusInternalServerError, "Failed to fetch products", "")
		return
	}
	c.JSON(http.StatusOK, products)
}

// Store creates a product and its reading plan. Every failure, including a
// malformed body or an oversized image, is answered with a 500.
func (pc *ProductController) Store(c *ctx.Context) {
	var payload models.ProductPayload
	if err := c.Decode(&payload); err != nil {
		c.Log().Warn("add product: decode", "error", err)
		c.Fail(http.StatusInternalServerError, "Failed to add product", err.Error())
		return
	}

	product, err := pc.service.CreateProduct(c.Context(), payload)
	if err != nil {
		c.Log().Error("add product", "error", err)
		c.Fail(http.StatusInternalServerError, "Failed to add product", err.Error())
		return
	}
	c.JSON(http.StatusCreated, product)
}

// Update replaces the product at {id} and its reading plan.
func (pc *ProductController) Update(c *ctx.Context) {
	id := c.Param("id")

	var payload models.ProductPayload
	if err := c.Decode(&payload); err != nil {
		c.Log().Warn("update product: decode", "product_id", id, "error", err)
		c.Fail(http.StatusInternalServerError, "Failed to update product", err.Error())
		return
	}

	product, err := pc.service.UpdateProduct(c.Context(), id, payload)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		c.Fail(http.StatusNotFound, "Failed to update product", err.Error())
	case err != nil:
		c.Log().Error("update product", "product_id", id, "error", err)
		c.Fail(http.StatusInternalServerError, "Failed to update product", err.Error())
	default:
		c.JSON(http.StatusOK, product)
	}
}
