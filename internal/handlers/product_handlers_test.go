package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/storefront/internal/models"
)

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)

	sale := 79.99
	rec, c := env.doJSON(http.MethodPost, "/api/v1/admin/products", map[string]any{
		"name": "headset", "brand": "acme", "price": 99.99, "sale_price": sale, "stock": 25,
	}, 9, "admin")
	require.NoError(t, env.Product.CreateProduct(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var p models.Product
	decodeBody(t, rec, &p)
	require.NotZero(t, p.ID)
	require.NotNil(t, p.SalePrice)
	require.Equal(t, 79.99, *p.SalePrice)
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []map[string]any{
		{"price": 10.0},                                     // missing name
		{"name": "x", "price": 0},                           // non-positive price
		{"name": "x", "price": 10.0, "sale_price": 12.0},    // sale above list
	}
	for _, body := range cases {
		rec, c := env.doJSON(http.MethodPost, "/api/v1/admin/products", body, 9, "admin")
		require.NoError(t, env.Product.CreateProduct(c))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var eb ErrorBody
		decodeBody(t, rec, &eb)
		require.Equal(t, "invalid_request", eb.Kind)
	}
}

func TestGetProductNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec, c := env.doJSON(http.MethodGet, "/", nil, 0, "")
	c.SetParamNames("id")
	c.SetParamValues("123")
	require.NoError(t, env.Product.GetProduct(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPatchProduct(t *testing.T) {
	env := newTestEnv(t)

	p := env.seedProduct(models.Product{Name: "monitor", Price: 199, Stock: 4})

	rec, c := env.doJSON(http.MethodPatch, "/", map[string]any{
		"name": "monitor 27", "price": 249.0, "stock": 6,
	}, 9, "admin")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Product.PatchProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Product
	require.NoError(t, env.DB.First(&got, p.ID).Error)
	require.Equal(t, "monitor 27", got.Name)
	require.Equal(t, 249.0, got.Price)
	require.Equal(t, uint(6), got.Stock)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)

	env.seedProduct(models.Product{Name: "cable", Price: 5, Stock: 10})

	rec, c := env.doJSON(http.MethodDelete, "/", nil, 9, "admin")
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, env.Product.DeleteProduct(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Product{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestListProductsMeta(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		env.seedProduct(models.Product{Name: "item", Price: 10, Stock: 1})
	}

	rec, c := env.doJSON(http.MethodGet, "/api/v1/products?page=1&size=2", nil, 0, "")
	require.NoError(t, env.Product.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Product `json:"data"`
		Meta struct {
			Total      int64 `json:"total"`
			TotalPages int64 `json:"total_pages"`
			HasNext    bool  `json:"has_next"`
		} `json:"meta"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp.Data, 2)
	require.EqualValues(t, 3, resp.Meta.Total)
	require.EqualValues(t, 2, resp.Meta.TotalPages)
	require.True(t, resp.Meta.HasNext)
}
