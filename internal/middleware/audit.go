package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mwangik/farm-produce-market/internal/model"
	"github.com/mwangik/farm-produce-market/internal/repository"
)

// redactedFields never reach the audit log in plaintext.
var redactedFields = map[string]bool{
	"password":        true,
	"currentPassword": true,
	"newPassword":     true,
	"refreshToken":    true,
}

const auditBodyCap = 8 << 10

// AuditTrail records mutating requests to the audit_logs table after
// the response is written. Request bodies are sanitized before
// storage and audit failures are swallowed so they never affect the
// caller.
func AuditTrail(audits *repository.AuditRepo, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return next(c)
			}

			var body []byte
			if c.Request().Body != nil {
				body, _ = io.ReadAll(io.LimitReader(c.Request().Body, auditBodyCap))
				c.Request().Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request().Body))
			}

			err := next(c)

			rec := model.AuditLog{
				Action:   method + " " + c.Path(),
				Resource: resourceFromPath(c.Path()),
				Metadata: sanitizeBody(body, c.Response().Status),
			}
			if userID, ok := c.Get("user_id").(string); ok && userID != "" {
				rec.UserID = &userID
			}
			if id := c.Param("id"); id != "" {
				rec.ResourceID = &id
			}
			if ip := c.RealIP(); ip != "" {
				rec.IPAddress = &ip
			}
			if ua := c.Request().UserAgent(); ua != "" {
				rec.UserAgent = &ua
			}

			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if insErr := audits.Insert(ctx, rec); insErr != nil {
				log.Warn("audit insert failed", zap.String("action", rec.Action), zap.Error(insErr))
			}
			return err
		}
	}
}

func resourceFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for _, p := range parts {
		switch p {
		case "listings":
			return "listing"
		case "interactions":
			return "interaction"
		case "preferences":
			return "preference"
		case "register", "login", "logout", "refresh", "profile", "change-password":
			return "auth"
		}
	}
	return "request"
}

func sanitizeBody(body []byte, status int) json.RawMessage {
	meta := map[string]any{"status": status}
	if len(body) > 0 {
		var parsed map[string]any
		if err := json.Unmarshal(body, &parsed); err == nil {
			for k := range parsed {
				if redactedFields[k] {
					parsed[k] = "[REDACTED]"
				}
			}
			meta["body"] = parsed
		}
	}
	out, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return out
}
