package transport

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"kanbanApi/internal/modules/auth/application/usecase"
	userdomain "kanbanApi/internal/modules/users/domain"
	"kanbanApi/internal/shared/apperr"
	"kanbanApi/internal/shared/auth"
	"kanbanApi/internal/shared/httputil"
)

type credentials struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type AuthHandler struct {
	auth   *usecase.AuthService
	mapper *httputil.ErrorMapper
}

func NewAuthHandler(svc *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: svc, mapper: httputil.NewDomainErrorMapper()}
}

func (h *AuthHandler) Register(g *echo.Group) {
	g.POST("/login", h.login)
	g.POST("/signup", h.signup)
	g.POST("/logout", h.logout)
}

func (h *AuthHandler) login(c echo.Context) error {
	var creds credentials
	if err := c.Bind(&creds); err != nil || creds.Email == nil || creds.Password == nil {
		return httputil.Fail(c, h.mapper, apperr.Authentication("no email or password in credentials"), "Failed to Login")
	}
	user, err := h.auth.Login(c.Request().Context(), *creds.Email, *creds.Password)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to Login")
	}
	return h.respondLoggedIn(c, user, "Failed to Login")
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req usecase.SignupRequest
	if err := c.Bind(&req); err != nil {
		return httputil.Fail(c, h.mapper, apperr.Validation("invalid request body"), "Failed to signup")
	}
	ctx := c.Request().Context()
	if _, err := h.auth.Signup(ctx, req); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to signup")
	}
	user, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to signup")
	}
	return h.respondLoggedIn(c, user, "Failed to signup")
}

func (h *AuthHandler) logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), auth.ExtractToken(c.Request())); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to logout")
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.LoginCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
	return c.JSON(http.StatusOK, httputil.MessageBody{Msg: "Logged out successfully"})
}

func (h *AuthHandler) respondLoggedIn(c echo.Context, user *userdomain.User, fallback string) error {
	if err := issueCookie(c, h.auth, user); err != nil {
		return httputil.Fail(c, h.mapper, err, fallback)
	}
	return c.JSON(http.StatusOK, user)
}

func issueCookie(c echo.Context, svc *usecase.AuthService, user *userdomain.User) error {
	token, claims, err := svc.LoginToken(user)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     auth.LoginCookie,
		Value:    token,
		Path:     "/",
		Expires:  claims.ExpiresAt.Time,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	})
	return nil
}
