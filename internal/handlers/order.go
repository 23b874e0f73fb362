package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/storefront/internal/logging"
	"github.com/avolkov/storefront/internal/mykafka"
	"github.com/avolkov/storefront/internal/service/order"
	"github.com/avolkov/storefront/internal/util"
)

type OrderHandler struct {
	Svc      *order.Service
	Producer *mykafka.Producer
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	var req order.PlaceInput
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.Place(ctx, userID, req)
	if err != nil {
		l.Warn("create_order_error", "error", err)
		return writeError(c, err)
	}

	l.Info("create_order_success", "orderID", o.ID, "orderNumber", o.OrderNumber)
	publish(c, h.Producer, "order_events", fmt.Sprint(userID), map[string]any{
		"type":        "order_created",
		"userID":      userID,
		"orderID":     o.ID,
		"orderNumber": o.OrderNumber,
		"total":       o.TotalPrice,
	})
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	userID, _, err := currentUser(c)
	if err != nil {
		return err
	}

	orders, err := h.Svc.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	userID, role, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	o, err := h.Svc.Get(c.Request().Context(), id, userID, role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("limit"), util.DefaultPageSize)
	status := c.QueryParam("status")

	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Svc.List(c.Request().Context(), status, offset, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"orders": orders,
		"meta": map[string]any{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	o, err := h.Svc.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return writeError(c, err)
	}

	publish(c, h.Producer, "order_events", fmt.Sprint(o.UserID), map[string]any{
		"type":    "order_status_updated",
		"orderID": o.ID,
		"status":  o.Status,
	})
	return c.JSON(http.StatusOK, o)
}
