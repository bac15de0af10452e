package controllers

import (
	"wardrobeapi/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	currentUserKey = "currentUserID"
	languageKey    = "language"
)

// UserMiddleware exposes the JWT subject as the current user id.
func UserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get("user").(*jwt.Token)
		if !ok || user == nil {
			return echo.ErrUnauthorized
		}
		claims, ok := user.Claims.(jwt.MapClaims)
		if !ok {
			return echo.ErrUnauthorized
		}
		userId, ok := claims["sub"].(string)
		if !ok || userId == "" {
			c.Logger().Warn("token without subject")
			return echo.ErrUnauthorized
		}
		c.Set(currentUserKey, userId)
		return next(c)
	}
}

func LanguageMiddleware(fallback models.Language) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			lang := models.MatchLanguage(c.Request().Header.Get("Accept-Language"), fallback)
			if query := models.Language(c.QueryParam("lang")); query.IsValid() {
				lang = query
			}
			c.Set(languageKey, lang)
			return next(c)
		}
	}
}
