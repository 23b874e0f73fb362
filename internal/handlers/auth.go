package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avolkov/storefront/internal/hash"
	"github.com/avolkov/storefront/internal/models"
	"github.com/avolkov/storefront/internal/mykafka"
	"github.com/avolkov/storefront/internal/service/token"
)

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *token.TokenService
	Producer *mykafka.Producer
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password required")
	}

	var existing models.User
	err := h.DB.Where("username = ?", req.Username).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return writeError(c, err)
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		return writeError(c, err)
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: pwHash,
		Role:         "user",
	}
	if err := h.DB.Create(&user).Error; err != nil {
		return writeError(c, err)
	}

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	var user models.User
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	access, accessExp, err := h.Tokens.SignAccessToken(user.ID, user.Role)
	if err != nil {
		return writeError(c, err)
	}
	refresh, refreshExp, err := h.Tokens.SignRefreshToken(user.ID, user.Role)
	if err != nil {
		return writeError(c, err)
	}

	c.SetCookie(token.CreateCookie(token.AccessCookie, access, "/", accessExp))
	c.SetCookie(token.CreateCookie(token.RefreshCookie, refresh, "/", refreshExp))

	publish(c, h.Producer, "user_events", fmt.Sprint(user.ID), map[string]any{
		"type":   "user_logged_in",
		"userID": user.ID,
	})
	return c.JSON(http.StatusOK, map[string]string{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if ck, err := c.Cookie(token.RefreshCookie); err == nil {
		if err := h.Tokens.Revoke(ck.Value); err != nil {
			c.Logger().Errorf("revoke refresh token: %v", err)
		}
	}

	expired := time.Unix(0, 0)
	c.SetCookie(token.CreateCookie(token.AccessCookie, "", "/", expired))
	c.SetCookie(token.CreateCookie(token.RefreshCookie, "", "/", expired))

	return c.NoContent(http.StatusNoContent)
}
