// Package middleware provides shared request processing: principal
// resolution, role gating, rate limiting, response caching, request
// logging and the audit sink.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mwangik/farm-produce-market/internal/model"
	"github.com/mwangik/farm-produce-market/internal/repository"
	"github.com/mwangik/farm-produce-market/internal/utils"
)

const userKey = "user"

// failJSON writes an error envelope without depending on the handler
// package (which depends on this one).
func failJSON(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{
		"success":   false,
		"error":     echo.Map{"code": code, "message": message},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// JWTAuth validates a Bearer access token, loads the subject user row
// and stores it in the request context. Tokens whose subject no
// longer exists or is deactivated are rejected: a deactivated
// principal is treated as unauthenticated.
func JWTAuth(secret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return failJSON(c, http.StatusUnauthorized, "UNAUTHENTICATED", "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			userID, _, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return failJSON(c, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid token")
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			u, err := users.GetByID(ctx, userID)
			if err != nil || !u.IsActive {
				return failJSON(c, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid token")
			}

			c.Set(userKey, &u)
			c.Set("user_id", u.ID)
			c.Set("role", u.Role)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user stored by JWTAuth, or
// nil on unauthenticated routes.
func CurrentUser(c echo.Context) *model.User {
	if u, ok := c.Get(userKey).(*model.User); ok {
		return u
	}
	return nil
}
