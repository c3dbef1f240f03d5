package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-manager/internal/config"
	"github.com/iliyamo/movie-manager/internal/middleware"
	"github.com/iliyamo/movie-manager/internal/model"
	"github.com/iliyamo/movie-manager/internal/repository"
	"github.com/iliyamo/movie-manager/internal/utils"
)

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 6

// UserStore is the account persistence AuthHandler needs.
type UserStore interface {
	Create(ctx context.Context, email, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenStore keeps hashed refresh tokens.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Validate(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAll(ctx context.Context, userID uint64) error
}

// AuthHandler serves sign-up, sign-in and token endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func (req *credentialsReq) bind(c echo.Context) error {
	if err := c.Bind(req); err != nil {
		return errors.New("invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return errors.New("email/password required")
	}
	return nil
}

// Register creates an account and signs it in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := req.bind(c); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if len(req.Password) < MinPasswordLen {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, h.Cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	}
	if err != nil {
		log.Error().Err(err).Msg("create user failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	log.Info().Uint64("user_id", uid).Msg("user registered")
	return h.issue(ctx, c, http.StatusCreated, userPart{ID: uid, Email: req.Email})
}

// Login verifies credentials and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := req.bind(c); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !u.IsActive {
		return c.JSON(http.StatusForbidden, echo.Map{"error": repository.ErrInactiveUser.Error()})
	}
	return h.issue(ctx, c, http.StatusOK, userPart{ID: u.ID, Email: u.Email})
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	u, hash, status, err := h.refreshUser(c)
	if err != nil {
		return c.JSON(status, echo.Map{"error": err.Error()})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Tokens.Revoke(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	return h.issue(ctx, c, http.StatusOK, userPart{ID: u.ID, Email: u.Email})
}

// RefreshAccess returns a new access token and keeps the refresh token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	u, _, status, err := h.refreshUser(c)
	if err != nil {
		return c.JSON(status, echo.Map{"error": err.Error()})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout revokes the refresh token in the body, or, with only a bearer
// token, every refresh token of that user.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Tokens.Validate(ctx, hash, time.Now().UTC()); err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		if err := h.Tokens.Revoke(ctx, hash); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	bearer, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
	}
	uid, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimSpace(bearer))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Tokens.RevokeAll(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the signed-in account.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":    u.ID,
		"email":      u.Email,
		"created_at": u.CreatedAt,
	})
}

// ActiveUser adapts a UserStore to middleware.ActiveFunc.
func ActiveUser(users UserStore) middleware.ActiveFunc {
	return func(ctx context.Context, id uint64) (bool, error) {
		u, err := users.GetByID(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return u.IsActive, nil
	}
}

// refreshUser resolves the account behind the refresh token in the body.
func (h *AuthHandler) refreshUser(c echo.Context) (model.User, string, int, error) {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return model.User{}, "", http.StatusBadRequest, errors.New("refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Tokens.Validate(ctx, hash, time.Now().UTC())
	if err != nil {
		return model.User{}, "", http.StatusUnauthorized, errors.New("invalid refresh")
	}
	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, "", http.StatusUnauthorized, errors.New("invalid refresh")
	}
	if err != nil {
		return model.User{}, "", http.StatusInternalServerError, errors.New("load user failed")
	}
	if !u.IsActive {
		return model.User{}, "", http.StatusForbidden, repository.ErrInactiveUser
	}
	return u, hash, 0, nil
}

func (h *AuthHandler) issue(ctx context.Context, c echo.Context, status int, u userPart) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	return c.JSON(status, authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}
