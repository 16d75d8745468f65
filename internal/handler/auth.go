package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/filmorate/internal/apperror"
	"github.com/iliyamo/filmorate/internal/config"
	"github.com/iliyamo/filmorate/internal/service"
	"github.com/iliyamo/filmorate/internal/utils"
)

// AuthHandler issues access tokens for users created with a password.
type AuthHandler struct {
	Cfg   config.Config
	Users *service.UserService
}

func NewAuthHandler(cfg config.Config, users *service.UserService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// Login: verify login/password and return a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return respondError(c, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, strings.TrimSpace(req.Login), req.Password)
	if err != nil {
		return respondError(c, err)
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return respondError(c, apperror.Wrap(err, apperror.CodeInternal, "issue access token"))
	}
	return c.JSON(http.StatusOK, tokenResp{UserID: u.ID, Token: access.Token, Expires: access.Exp})
}
