package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"kanbanApi/internal/modules/users/application/usecase"
	"kanbanApi/internal/modules/users/domain"
	"kanbanApi/internal/shared/apperr"
	"kanbanApi/internal/shared/httputil"
)

type UserHandler struct {
	users  *usecase.UserService
	mapper *httputil.ErrorMapper
}

func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users, mapper: httputil.NewDomainErrorMapper()}
}

func (h *UserHandler) Register(g *echo.Group) {
	g.GET("", h.query)
	g.GET("/:userId", h.getByID)
	g.PUT("/:userId", h.update)
	g.DELETE("/:userId", h.remove)
}

func (h *UserHandler) query(c echo.Context) error {
	users, err := h.users.Query(c.Request().Context(), domain.Filter{Txt: c.QueryParam("txt")})
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to get users")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) getByID(c echo.Context) error {
	user, err := h.users.GetByID(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to get user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) update(c echo.Context) error {
	var patch domain.Patch
	if err := c.Bind(&patch); err != nil {
		return httputil.Fail(c, h.mapper, apperr.Validation("invalid request body"), "Failed to update user")
	}
	user, err := h.users.Update(c.Request().Context(), c.Param("userId"), patch)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to update user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) remove(c echo.Context) error {
	if err := h.users.Remove(c.Request().Context(), c.Param("userId")); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to delete user")
	}
	return c.JSON(http.StatusOK, httputil.MessageBody{Msg: "Deleted successfully"})
}
