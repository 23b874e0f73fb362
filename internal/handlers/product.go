package handlers

import (
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/avolkov/storefront/internal/errs"
	"github.com/avolkov/storefront/internal/models"
	"github.com/avolkov/storefront/internal/mykafka"
	"github.com/avolkov/storefront/internal/repo"
	"github.com/avolkov/storefront/internal/service/search"
	"github.com/avolkov/storefront/internal/util"
)

type ProductHandler struct {
	Catalog  *repo.Catalog
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

type productRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Brand       string   `json:"brand"`
	Image       string   `json:"image"`
	Price       float64  `json:"price"`
	SalePrice   *float64 `json:"sale_price"`
	Stock       uint     `json:"stock"`
}

func (r *productRequest) validate() error {
	if r.Name == "" {
		return errs.InvalidRequestf("name required")
	}
	if r.Price <= 0 {
		return errs.InvalidRequestf("price must be positive")
	}
	if r.SalePrice != nil && *r.SalePrice >= r.Price {
		return errs.InvalidRequestf("sale price must be below list price")
	}
	return nil
}

// syncIndex pushes the product into the search index; index failures are
// logged, not returned, so catalog writes don't depend on ES being up.
func (h *ProductHandler) syncIndex(c echo.Context, p *models.Product) {
	if h.ES == nil {
		return
	}
	if err := search.IndexProduct(c.Request().Context(), h.ES, h.Index, p); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *ProductHandler) dropIndex(c echo.Context, id uint) {
	if h.ES == nil {
		return
	}
	if err := search.DeleteProduct(c.Request().Context(), h.ES, h.Index, id); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	p, err := h.Catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	items, total, err := h.Catalog.ListProducts(c.Request().Context(), offset, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return writeError(c, err)
	}

	prod := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Image:       req.Image,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Stock:       req.Stock,
	}
	if err := h.Catalog.CreateProduct(c.Request().Context(), &prod); err != nil {
		return writeError(c, err)
	}

	h.syncIndex(c, &prod)
	publish(c, h.Producer, "product_events", fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := req.validate(); err != nil {
		return writeError(c, err)
	}

	prod, err := h.Catalog.GetProduct(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	prod.Name = req.Name
	prod.Description = req.Description
	prod.Brand = req.Brand
	prod.Image = req.Image
	prod.Price = req.Price
	prod.SalePrice = req.SalePrice
	prod.Stock = req.Stock

	if err := h.Catalog.SaveProduct(c.Request().Context(), prod); err != nil {
		return writeError(c, err)
	}

	h.syncIndex(c, prod)
	publish(c, h.Producer, "product_events", fmt.Sprint(prod.ID), map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Catalog.DeleteProduct(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}

	h.dropIndex(c, id)
	publish(c, h.Producer, "product_events", fmt.Sprint(id), map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	return c.NoContent(http.StatusNoContent)
}
