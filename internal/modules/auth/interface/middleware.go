package transport

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"kanbanApi/internal/modules/auth/application/usecase"
	"kanbanApi/internal/shared/auth"
	"kanbanApi/internal/shared/httputil"
	"kanbanApi/internal/shared/logging"
	"kanbanApi/internal/shared/session"
)

// GuestAccount is logged in on behalf of anonymous callers when guest mode
// is enabled.
type GuestAccount struct {
	Enabled  bool
	Email    string
	Password string
}

// Identify populates the request identity from the login token once, before
// any handler runs. Invalid or revoked tokens leave the request anonymous.
func Identify(svc *usecase.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if id, ok := svc.ValidateToken(req.Context(), auth.ExtractToken(req)); ok {
				c.SetRequest(req.WithContext(session.WithIdentity(req.Context(), id)))
			}
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous requests with 401, unless guest mode can log
// the caller in as the guest account.
func RequireAuth(svc *usecase.AuthService, guest GuestAccount) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if _, ok := session.FromContext(ctx); ok {
				return next(c)
			}
			if !guest.Enabled {
				return c.JSON(http.StatusUnauthorized, httputil.ErrorBody{Err: "Not Authenticated"})
			}

			user, err := svc.Login(ctx, guest.Email, guest.Password)
			if err == nil {
				err = issueCookie(c, svc, user)
			}
			if err != nil {
				logging.FromContext(ctx).Warn("guest login failed", slog.Any("error", err))
				return c.JSON(http.StatusUnauthorized, httputil.ErrorBody{Err: "Not Authenticated"})
			}
			id := &session.Identity{
				ID:       user.ID.Hex(),
				Email:    user.Email,
				Fullname: user.Fullname,
				ImgURL:   user.ImgURL,
				IsAdmin:  user.IsAdmin,
			}
			c.SetRequest(c.Request().WithContext(session.WithIdentity(ctx, id)))
			return next(c)
		}
	}
}
