package token

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avolkov/storefront/internal/models"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour

	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

type TokenService struct {
	DB            *gorm.DB
	JWTSecret     []byte
	RefreshSecret []byte
}

func CreateCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (t *TokenService) SignAccessToken(userID uint, role string) (string, time.Time, error) {
	exp := time.Now().Add(accessTTL)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.JWTSecret)
	return s, exp, err
}

// SignRefreshToken signs and persists a refresh token so it can be rotated
// and revoked later.
func (t *TokenService) SignRefreshToken(userID uint, role string) (string, time.Time, error) {
	exp := time.Now().Add(refreshTTL)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"typ":  "refresh",
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.RefreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	stored := models.RefreshToken{
		Token:     s,
		UserID:    userID,
		Role:      role,
		ExpiresAt: exp.Unix(),
	}
	if err := t.DB.Create(&stored).Error; err != nil {
		return "", time.Time{}, fmt.Errorf("save refresh token: %w", err)
	}
	return s, exp, nil
}

func (t *TokenService) validateRefresh(raw string) (jwt.MapClaims, error) {
	tok, err := jwt.Parse(raw, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return t.RefreshSecret, nil
	})
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("cannot parse claims")
	}
	if typ, ok := claims["typ"]; !ok || typ != "refresh" {
		return nil, errors.New("not a refresh token")
	}

	var stored models.RefreshToken
	if err := t.DB.Where("token = ?", raw).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("refresh token not found")
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if stored.Revoked {
		return nil, errors.New("refresh token revoked")
	}
	if time.Now().Unix() > stored.ExpiresAt {
		return nil, errors.New("refresh token expired")
	}

	return claims, nil
}

// RotateToken trades a valid refresh token for a new access/refresh pair,
// revoking the old one.
func (t *TokenService) RotateToken(raw string) (string, string, time.Time, time.Time, error) {
	claims, err := t.validateRefresh(raw)
	if err != nil {
		return "", "", time.Time{}, time.Time{}, err
	}

	userID := uint(claims["sub"].(float64))
	role, _ := claims["role"].(string)

	access, accessExp, err := t.SignAccessToken(userID, role)
	if err != nil {
		return "", "", time.Time{}, time.Time{}, err
	}
	refresh, refreshExp, err := t.SignRefreshToken(userID, role)
	if err != nil {
		return "", "", time.Time{}, time.Time{}, err
	}
	if err := t.Revoke(raw); err != nil {
		return "", "", time.Time{}, time.Time{}, err
	}

	return access, refresh, accessExp, refreshExp, nil
}

func (t *TokenService) Revoke(raw string) error {
	if err := t.DB.Model(&models.RefreshToken{}).
		Where("token = ?", raw).
		Update("revoked", true).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// RequireLogin validates the access cookie, transparently rotating via the
// refresh cookie when the access token has expired.
func (t *TokenService) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		asCookie, err := c.Cookie(AccessCookie)
		if err == nil {
			tok, perr := jwt.Parse(asCookie.Value, func(j *jwt.Token) (interface{}, error) {
				if _, ok := j.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", j.Header["alg"])
				}
				return t.JWTSecret, nil
			})
			if perr == nil && tok.Valid {
				setUserContext(c, tok.Claims.(jwt.MapClaims))
				return next(c)
			}
			if !errors.Is(perr, jwt.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
			}
		}

		rfCookie, err := c.Cookie(RefreshCookie)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
		}
		access, refresh, accessExp, refreshExp, err := t.RotateToken(rfCookie.Value)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "cannot rotate token")
		}

		c.SetCookie(CreateCookie(AccessCookie, access, "/", accessExp))
		c.SetCookie(CreateCookie(RefreshCookie, refresh, "/", refreshExp))

		tok, _ := jwt.Parse(access, func(j *jwt.Token) (interface{}, error) { return t.JWTSecret, nil })
		setUserContext(c, tok.Claims.(jwt.MapClaims))
		return next(c)
	}
}

// RequireAdmin is RequireLogin plus a role check.
func (t *TokenService) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return t.RequireLogin(func(c echo.Context) error {
		role, _ := c.Get("role").(string)
		if role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		return next(c)
	})
}

func setUserContext(c echo.Context, claims jwt.MapClaims) {
	c.Set("userID", uint(claims["sub"].(float64)))
	if role, ok := claims["role"].(string); ok {
		c.Set("role", role)
	}
}
