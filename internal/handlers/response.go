package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avolkov/storefront/internal/errs"
	"github.com/avolkov/storefront/internal/mykafka"
)

// ErrorBody is the wire shape of every error: a stable machine-readable
// kind plus a human-readable message.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, errs.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorBody{Kind: "not_found", Message: err.Error()})
	case errors.Is(err, errs.ErrInsufficientStock):
		return c.JSON(http.StatusBadRequest, ErrorBody{Kind: "insufficient_stock", Message: err.Error()})
	case errors.Is(err, errs.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, ErrorBody{Kind: "invalid_request", Message: err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorBody{Kind: "forbidden", Message: "not authorized"})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorBody{Kind: "internal", Message: "server error"})
	}
}

// currentUser reads the identity placed into the context by the token
// middleware.
func currentUser(c echo.Context) (uint, string, error) {
	id, ok := c.Get("userID").(uint)
	if !ok {
		return 0, "", echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	role, _ := c.Get("role").(string)
	return id, role, nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func parseID(c echo.Context, param string) (uint, error) {
	id, err := strconv.Atoi(c.Param(param))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// publish sends an event without failing the request; a broken broker must
// not break checkout.
func publish(c echo.Context, p *mykafka.Producer, topic, key string, event map[string]any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
