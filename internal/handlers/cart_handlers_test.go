package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avolkov/storefront/internal/models"
	"github.com/avolkov/storefront/internal/service/cart"
)

func TestAddToCartAndGetCart(t *testing.T) {
	env := newTestEnv(t)

	p := env.seedProduct(models.Product{Name: "keyboard", Price: 49.99, Stock: 10})

	rec, c := env.doJSON(http.MethodPost, "/api/v1/cart",
		map[string]any{"product_id": p.ID, "quantity": 2}, 1, "user")
	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var line cart.Line
	decodeBody(t, rec, &line)
	require.Equal(t, uint(2), line.Quantity)
	require.Equal(t, "keyboard", line.Product.Name)

	rec, c = env.doJSON(http.MethodGet, "/api/v1/cart", nil, 1, "user")
	require.NoError(t, env.Cart.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var view cart.View
	decodeBody(t, rec, &view)
	require.Len(t, view.Items, 1)
	require.Equal(t, uint(2), view.ItemCount)
	require.Equal(t, 99.98, view.Subtotal)
}

func TestAddToCartInsufficientStock(t *testing.T) {
	env := newTestEnv(t)

	p := env.seedProduct(models.Product{Name: "dock", Price: 80, Stock: 1})

	rec, c := env.doJSON(http.MethodPost, "/api/v1/cart",
		map[string]any{"product_id": p.ID, "quantity": 3}, 1, "user")
	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorBody
	decodeBody(t, rec, &body)
	require.Equal(t, "insufficient_stock", body.Kind)
	require.Contains(t, body.Message, "dock")
}

func TestAddToCartDefaultsQuantity(t *testing.T) {
	env := newTestEnv(t)

	p := env.seedProduct(models.Product{Name: "mouse", Price: 15, Stock: 5})

	rec, c := env.doJSON(http.MethodPost, "/api/v1/cart",
		map[string]any{"product_id": p.ID}, 1, "user")
	require.NoError(t, env.Cart.AddToCart(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var line cart.Line
	decodeBody(t, rec, &line)
	require.Equal(t, uint(1), line.Quantity)
}

func TestUpdateCartItem(t *testing.T) {
	env := newTestEnv(t)

	p := env.seedProduct(models.Product{Name: "monitor", Price: 199, Stock: 4})
	require.NoError(t, env.DB.Create(&models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 1}).Error)

	rec, c := env.doJSON(http.MethodPut, "/", map[string]any{"quantity": 4}, 1, "user")
	c.SetParamNames("productId")
	c.SetParamValues("1")
	require.NoError(t, env.Cart.UpdateCartItem(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var line cart.Line
	decodeBody(t, rec, &line)
	require.Equal(t, uint(4), line.Quantity)

	// over stock
	rec, c = env.doJSON(http.MethodPut, "/", map[string]any{"quantity": 5}, 1, "user")
	c.SetParamNames("productId")
	c.SetParamValues("1")
	require.NoError(t, env.Cart.UpdateCartItem(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveFromCart(t *testing.T) {
	env := newTestEnv(t)

	p := env.seedProduct(models.Product{Name: "cable", Price: 5, Stock: 10})
	require.NoError(t, env.DB.Create(&models.CartItem{UserID: 1, ProductID: p.ID, Quantity: 2}).Error)

	rec, c := env.doJSON(http.MethodDelete, "/", nil, 1, "user")
	c.SetParamNames("productId")
	c.SetParamValues("1")
	require.NoError(t, env.Cart.RemoveFromCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// second delete of the same line is a 404
	rec, c = env.doJSON(http.MethodDelete, "/", nil, 1, "user")
	c.SetParamNames("productId")
	c.SetParamValues("1")
	require.NoError(t, env.Cart.RemoveFromCart(c))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorBody
	decodeBody(t, rec, &body)
	require.Equal(t, "not_found", body.Kind)
}

func TestCartRequiresLogin(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSON(http.MethodGet, "/api/v1/cart", nil, 0, "")
	err := env.Cart.GetCart(c)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}
