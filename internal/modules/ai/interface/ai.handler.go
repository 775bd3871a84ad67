package transport

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"kanbanApi/internal/modules/ai/application/usecase"
	"kanbanApi/internal/shared/apperr"
	"kanbanApi/internal/shared/logging"
)

type generateBoardRequest struct {
	Description string `json:"description"`
}

type generateBoardResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NewGenerateBoardHandler serves POST /api/ai/generateBoard. Every failure
// answers 500; a missing description is the only client error.
func NewGenerateBoardHandler(uc *usecase.GenerateBoardUseCase) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req generateBoardRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, generateBoardResponse{Message: "invalid request body"})
		}

		board, err := uc.Execute(c.Request().Context(), req.Description)
		if err != nil {
			if errors.Is(err, apperr.ErrValidation) {
				return c.JSON(http.StatusBadRequest, generateBoardResponse{Message: "description is required"})
			}
			logging.FromContext(c.Request().Context()).Error("generate board failed", slog.Any("error", err))
			return c.JSON(http.StatusInternalServerError, generateBoardResponse{
				Message: "Internal Server Error",
				Error:   "board generation failed",
			})
		}
		return c.JSON(http.StatusOK, generateBoardResponse{Message: "Board generated successfully", Data: board})
	}
}
