package handler

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/hotel-management/internal/config"
	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/repository"
	"github.com/iliyamo/hotel-management/internal/utils"
)

// AuthHandler issues and revokes the agent and root session cookies.
type AuthHandler struct {
	Cfg      config.Config
	Agents   *repository.AgentRepo
	Sessions *repository.SessionRepo
}

func NewAuthHandler(cfg config.Config, agents *repository.AgentRepo, sessions *repository.SessionRepo) *AuthHandler {
	if agents == nil || sessions == nil {
		panic("nil repository passed to NewAuthHandler")
	}
	return &AuthHandler{Cfg: cfg, Agents: agents, Sessions: sessions}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

type sessionResp struct {
	ID       uint64    `json:"id,omitempty"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Expires  time.Time `json:"expires"`
}

// AgentLogin handles POST /v1/agent/login.
func (h *AuthHandler) AgentLogin(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	a, err := h.Agents.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return dbError(c, err, "agent")
	}
	if !utils.VerifyPassword(a.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issue(c, middleware.AgentCookie, h.Cfg.AgentJWTSecret, a.ID, a.Username, model.RoleAgent)
}

// RootLogin handles POST /v1/root/login.  The root account lives in
// configuration, not in the database.
func (h *AuthHandler) RootLogin(c echo.Context) error {
	var req loginReq
	if err := bindValid(c, &req); err != nil {
		return nil
	}
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Username)), []byte(h.Cfg.RootUsername)) == 1
	passOK := utils.VerifyPassword(h.Cfg.RootPasswordHash, req.Password)
	if !userOK || !passOK {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issue(c, middleware.RootCookie, h.Cfg.RootJWTSecret, 0, h.Cfg.RootUsername, model.RoleRoot)
}

func (h *AuthHandler) issue(c echo.Context, cookie, secret string, id uint64, username, role string) error {
	tok, err := utils.NewSessionToken(secret, id, username, role, h.Cfg.SessionTTLMin)
	if err != nil {
		zerolog.Ctx(c.Request().Context()).Error().Err(err).Msg("sign session token")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	c.SetCookie(&http.Cookie{
		Name:     cookie,
		Value:    tok.Token,
		Path:     "/",
		Expires:  tok.Exp,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	zerolog.Ctx(c.Request().Context()).Info().Str("username", username).Str("role", role).Msg("session opened")
	return c.JSON(http.StatusOK, sessionResp{ID: id, Username: username, Role: role, Expires: tok.Exp})
}

// AgentLogout handles POST /v1/agent/logout.
func (h *AuthHandler) AgentLogout(c echo.Context) error { return h.logout(c, middleware.AgentCookie) }

// RootLogout handles POST /v1/root/logout.
func (h *AuthHandler) RootLogout(c echo.Context) error { return h.logout(c, middleware.RootCookie) }

// logout revokes the presented token until its natural expiry and clears
// the cookie.  It runs behind CookieAuth, so the token is known valid.
func (h *AuthHandler) logout(c echo.Context, cookie string) error {
	claims, ok := middleware.SessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Sessions.Revoke(ctx, utils.HashToken(middleware.SessionToken(c)), claims.Exp); err != nil {
		return dbError(c, err, "session")
	}
	c.SetCookie(&http.Cookie{
		Name:     cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

// Me returns the identity of the current session.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := middleware.SessionFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, sessionResp{ID: claims.Subject, Username: claims.Username, Role: claims.Role, Expires: claims.Exp})
}
