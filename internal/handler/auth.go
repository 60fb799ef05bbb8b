package handler

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mwangik/farm-produce-market/internal/config"
	"github.com/mwangik/farm-produce-market/internal/middleware"
	"github.com/mwangik/farm-produce-market/internal/model"
	"github.com/mwangik/farm-produce-market/internal/repository"
	"github.com/mwangik/farm-produce-market/internal/utils"
	"github.com/mwangik/farm-produce-market/internal/validation"
)

// AuthHandler bundles dependencies for the identity endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Log    *zap.Logger
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log}
}

type authResp struct {
	User    userResp  `json:"user"`
	Access  tokenResp `json:"access"`
	Refresh tokenResp `json:"refresh"`
}

// issuePair mints an access/refresh pair for a user and stores the
// refresh hash.
func (h *AuthHandler) issuePair(ctx context.Context, u model.User) (tokenResp, tokenResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenResp{}, tokenResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenResp{}, tokenResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return tokenResp{}, tokenResp{}, err
	}
	return tokenResp{Token: access.Token, Expires: access.Exp},
		tokenResp{Token: refresh.Raw, Expires: refresh.Exp}, nil // raw back to client
}

// Register creates the user with its profile and returns tokens
// immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req validation.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, CodeValidation, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return FailDetails(c, CodeValidation, "Validation failed", errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var farmSize *float64
	if req.FarmSize != nil {
		f := float64(*req.FarmSize)
		farmSize = &f
	}
	u, err := h.Users.Create(ctx, repository.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		Location:    req.Location,
		FarmSize:    farmSize,
		BcryptCost:  h.Cfg.BcryptCost,
	})
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return Fail(c, CodeEmailTaken, "User with this email already exists")
		}
		h.Log.Error("register failed", zap.Error(err))
		return Fail(c, CodeInternal, "Registration failed")
	}

	access, refresh, err := h.issuePair(ctx, u)
	if err != nil {
		h.Log.Error("issue tokens failed", zap.Error(err))
		return Fail(c, CodeInternal, "Registration failed")
	}
	profile, _ := h.Users.GetProfile(ctx, u.ID)
	h.Log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", u.Role))
	return OK(c, 201, authResp{User: newUserResp(u, &profile), Access: access, Refresh: refresh})
}

// Login verifies credentials and returns a new pair. Unknown email
// and wrong password are indistinguishable to the caller.
func (h *AuthHandler) Login(c echo.Context) error {
	var req validation.LoginRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, CodeValidation, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return FailDetails(c, CodeValidation, "Validation failed", errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Fail(c, CodeUnauthenticated, "Invalid credentials")
		}
		h.Log.Error("login query failed", zap.Error(err))
		return Fail(c, CodeInternal, "Login failed")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return Fail(c, CodeUnauthenticated, "Invalid credentials")
	}
	if !u.IsActive {
		return Fail(c, CodeAccountDeactivated, "Account is deactivated")
	}

	access, refresh, err := h.issuePair(ctx, u)
	if err != nil {
		h.Log.Error("issue tokens failed", zap.Error(err))
		return Fail(c, CodeInternal, "Login failed")
	}
	profile, _ := h.Users.GetProfile(ctx, u.ID)
	return OK(c, 200, authResp{User: newUserResp(u, &profile), Access: access, Refresh: refresh})
}

// Refresh rotates the pair: the presented refresh token is validated
// by hash, revoked, and replaced. Prior refresh tokens are single-use.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req validation.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, CodeValidation, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return FailDetails(c, CodeValidation, "Validation failed", errs)
	}
	hash := utils.HashRefreshRaw(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return Fail(c, CodeUnauthenticated, "Invalid refresh token")
	}
	if err != nil {
		h.Log.Error("validate refresh failed", zap.Error(err))
		return Fail(c, CodeInternal, "Refresh failed")
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		// Without the revocation the presented token would stay
		// usable alongside the new pair.
		h.Log.Error("revoke refresh token failed", zap.Error(err))
		return Fail(c, CodeInternal, "Refresh failed")
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil || !u.IsActive {
		// Subject gone or deactivated since issuance.
		return Fail(c, CodeUnauthenticated, "Invalid refresh token")
	}

	access, refresh, err := h.issuePair(ctx, u)
	if err != nil {
		h.Log.Error("issue tokens failed", zap.Error(err))
		return Fail(c, CodeInternal, "Refresh failed")
	}
	profile, _ := h.Users.GetProfile(ctx, u.ID)
	return OK(c, 200, authResp{User: newUserResp(u, &profile), Access: access, Refresh: refresh})
}

// Logout revokes all refresh tokens for the authenticated user.
func (h *AuthHandler) Logout(c echo.Context) error {
	u := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.RevokeAllForUser(ctx, u.ID); err != nil {
		h.Log.Error("logout failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Logout failed")
	}
	return OK(c, 200, echo.Map{"message": "Logged out"})
}

// GetProfile returns the authenticated user's own record and profile.
func (h *AuthHandler) GetProfile(c echo.Context) error {
	u := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	profile, err := h.Users.GetProfile(ctx, u.ID)
	if err != nil {
		h.Log.Error("load profile failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Failed to get profile")
	}
	return OK(c, 200, echo.Map{"user": newUserResp(*u, &profile)})
}

// UpdateProfile patches the caller's user fields and upserts the
// profile row. Only supplied fields change.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	u := middleware.CurrentUser(c)

	var req validation.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, CodeValidation, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return FailDetails(c, CodeValidation, "Validation failed", errs)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var farmSize *float64
	if req.FarmSize != nil {
		f := float64(*req.FarmSize)
		farmSize = &f
	}
	err := h.Users.UpdateProfile(ctx, u.ID, repository.ProfilePatch{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Location:    req.Location,
		FarmSize:    farmSize,
	})
	if err != nil {
		h.Log.Error("update profile failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Profile update failed")
	}

	updated, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return Fail(c, CodeInternal, "Profile update failed")
	}
	profile, _ := h.Users.GetProfile(ctx, u.ID)
	return OK(c, 200, echo.Map{"user": newUserResp(updated, &profile)})
}

// ChangePassword re-verifies the current password, stores the new
// hash and invalidates every outstanding refresh token for the user.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	u := middleware.CurrentUser(c)

	var req validation.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return Fail(c, CodeValidation, "invalid body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return FailDetails(c, CodeValidation, "Validation failed", errs)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return Fail(c, CodeUnauthenticated, "Invalid credentials")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return Fail(c, CodeInternal, "Password change failed")
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		h.Log.Error("password change failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Password change failed")
	}
	// All existing sessions are invalidated with the old credential.
	if err := h.Tokens.RevokeAllForUser(ctx, u.ID); err != nil {
		h.Log.Error("revoke sessions failed", zap.Error(err), zap.String("user_id", u.ID))
		return Fail(c, CodeInternal, "Password change failed")
	}
	h.Log.Info("password changed", zap.String("user_id", u.ID))
	return OK(c, 200, echo.Map{"message": "Password changed"})
}
