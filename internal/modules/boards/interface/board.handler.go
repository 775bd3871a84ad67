package transport

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"kanbanApi/internal/modules/boards/application/usecase"
	"kanbanApi/internal/modules/boards/domain"
	rtdomain "kanbanApi/internal/modules/realtime/domain"
	"kanbanApi/internal/shared/apperr"
	"kanbanApi/internal/shared/httputil"
	"kanbanApi/internal/shared/session"
)

// ChangeNotifier fans a change out to sockets after a successful mutation.
type ChangeNotifier interface {
	Execute(ctx context.Context, evt rtdomain.ChangeEvent)
}

type BoardHandler struct {
	boards   *usecase.BoardService
	notifier ChangeNotifier
	mapper   *httputil.ErrorMapper
}

func NewBoardHandler(boards *usecase.BoardService, notifier ChangeNotifier) *BoardHandler {
	return &BoardHandler{boards: boards, notifier: notifier, mapper: httputil.NewDomainErrorMapper()}
}

// Register mounts the board routes. Static segments ("group", "task",
// "comment", "activities") win over ids in echo's router.
func (h *BoardHandler) Register(g *echo.Group) {
	g.GET("", h.query)
	g.POST("", h.add)
	g.GET("/:boardId", h.getByID)
	g.PUT("/:boardId", h.update)
	g.DELETE("/:boardId", h.remove)
	g.GET("/:boardId/activities", h.activities)
	g.POST("/:boardId/activities", h.logActivity)

	g.GET("/:boardId/comment", h.comments)
	g.POST("/:boardId/comment", h.addComment)
	g.PUT("/:boardId/comment/:commentId", h.updateComment)
	g.DELETE("/:boardId/comment/:commentId", h.deleteComment)

	g.POST("/:boardId/group", h.addGroup)
	g.PUT("/:boardId/:groupId", h.updateGroup)
	g.DELETE("/:boardId/:groupId", h.removeGroup)

	g.GET("/:boardId/:groupId/comment", h.comments)
	g.POST("/:boardId/:groupId/comment", h.addComment)
	g.PUT("/:boardId/:groupId/comment/:commentId", h.updateComment)
	g.DELETE("/:boardId/:groupId/comment/:commentId", h.deleteComment)

	g.POST("/:boardId/:groupId/task", h.addTask)
	g.PUT("/:boardId/:groupId/:taskId", h.updateTask)
	g.DELETE("/:boardId/:groupId/:taskId", h.removeTask)

	g.GET("/:boardId/:groupId/:taskId/comment", h.comments)
	g.POST("/:boardId/:groupId/:taskId/comment", h.addComment)
	g.PUT("/:boardId/:groupId/:taskId/:commentId", h.updateComment)
	g.DELETE("/:boardId/:groupId/:taskId/:commentId", h.deleteComment)
}

func (h *BoardHandler) query(c echo.Context) error {
	filter, err := parseFilter(c)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to get boards")
	}
	boards, err := h.boards.Query(c.Request().Context(), filter)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to get boards")
	}
	if boards == nil {
		boards = []domain.Board{}
	}
	return c.JSON(http.StatusOK, boards)
}

func (h *BoardHandler) getByID(c echo.Context) error {
	board, err := h.boards.GetByID(c.Request().Context(), c.Param("boardId"))
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to get board")
	}
	return c.JSON(http.StatusOK, board)
}

func (h *BoardHandler) add(c echo.Context) error {
	var draft domain.BoardPatch
	if err := bind(c, &draft); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to add board")
	}
	board, err := h.boards.Add(c.Request().Context(), draft)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to add board")
	}
	// nobody can be subscribed to a board that did not exist yet
	h.emit(c, rtdomain.BoardAdded, board, "")
	return c.JSON(http.StatusOK, board)
}

func (h *BoardHandler) update(c echo.Context) error {
	var patch domain.BoardPatch
	if err := bind(c, &patch); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to update board")
	}
	boardID := c.Param("boardId")
	board, err := h.boards.Update(c.Request().Context(), boardID, patch)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to update board")
	}
	h.emit(c, rtdomain.BoardChanged, board, boardID)
	return c.JSON(http.StatusOK, board)
}

func (h *BoardHandler) remove(c echo.Context) error {
	boardID := c.Param("boardId")
	if err := h.boards.Remove(c.Request().Context(), boardID); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to remove board")
	}
	h.emit(c, rtdomain.BoardRemoved, boardID, boardID)
	return c.JSON(http.StatusOK, httputil.MessageBody{Msg: "Removed successfully"})
}

func (h *BoardHandler) activities(c echo.Context) error {
	activities, err := h.boards.Activities(c.Request().Context(), c.Param("boardId"))
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to get board activities")
	}
	return c.JSON(http.StatusOK, activities)
}

func (h *BoardHandler) addGroup(c echo.Context) error {
	var patch domain.GroupPatch
	if err := bind(c, &patch); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to add group")
	}
	boardID := c.Param("boardId")
	group, err := h.boards.AddGroup(c.Request().Context(), boardID, patch)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to add group")
	}
	h.emit(c, rtdomain.GroupAdded, group, boardID)
	return c.JSON(http.StatusOK, group)
}

func (h *BoardHandler) updateGroup(c echo.Context) error {
	var patch domain.GroupPatch
	if err := bind(c, &patch); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to update group")
	}
	boardID := c.Param("boardId")
	group, err := h.boards.UpdateGroup(c.Request().Context(), boardID, c.Param("groupId"), patch)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to update group")
	}
	h.emit(c, rtdomain.GroupChanged, group, boardID)
	return c.JSON(http.StatusOK, group)
}

func (h *BoardHandler) removeGroup(c echo.Context) error {
	boardID := c.Param("boardId")
	group, err := h.boards.RemoveGroup(c.Request().Context(), boardID, c.Param("groupId"))
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to remove group")
	}
	h.emit(c, rtdomain.GroupRemoved, group, boardID)
	return c.JSON(http.StatusOK, group)
}

func (h *BoardHandler) addTask(c echo.Context) error {
	var patch domain.TaskPatch
	if err := bind(c, &patch); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to add task")
	}
	boardID := c.Param("boardId")
	task, err := h.boards.AddTask(c.Request().Context(), boardID, c.Param("groupId"), patch)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to add task")
	}
	h.emit(c, rtdomain.TaskAdded, task, boardID)
	return c.JSON(http.StatusOK, task)
}

func (h *BoardHandler) updateTask(c echo.Context) error {
	var patch domain.TaskPatch
	if err := bind(c, &patch); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to update task")
	}
	boardID := c.Param("boardId")
	task, err := h.boards.UpdateTask(c.Request().Context(), boardID, c.Param("groupId"), c.Param("taskId"), patch)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to update task")
	}
	h.emit(c, rtdomain.TaskChanged, task, boardID)
	return c.JSON(http.StatusOK, task)
}

func (h *BoardHandler) removeTask(c echo.Context) error {
	boardID := c.Param("boardId")
	task, err := h.boards.RemoveTask(c.Request().Context(), boardID, c.Param("groupId"), c.Param("taskId"))
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to remove task")
	}
	h.emit(c, rtdomain.TaskRemoved, task, boardID)
	return c.JSON(http.StatusOK, task)
}

func (h *BoardHandler) comments(c echo.Context) error {
	comments, err := h.boards.Comments(c.Request().Context(), c.Param("boardId"), target(c))
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to get comments")
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *BoardHandler) addComment(c echo.Context) error {
	var patch domain.CommentPatch
	if err := bind(c, &patch); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to add comment")
	}
	boardID := c.Param("boardId")
	comment, err := h.boards.AddComment(c.Request().Context(), boardID, target(c), patch)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to add comment")
	}
	h.emit(c, rtdomain.CommentAdded, comment, boardID)
	return c.JSON(http.StatusOK, comment)
}

func (h *BoardHandler) updateComment(c echo.Context) error {
	var patch domain.CommentPatch
	if err := bind(c, &patch); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to update comment")
	}
	boardID := c.Param("boardId")
	comment, err := h.boards.UpdateComment(c.Request().Context(), boardID, target(c), c.Param("commentId"), patch)
	if err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to update comment")
	}
	h.emit(c, rtdomain.CommentUpdated, comment, boardID)
	return c.JSON(http.StatusOK, comment)
}

func (h *BoardHandler) deleteComment(c echo.Context) error {
	boardID := c.Param("boardId")
	commentID := c.Param("commentId")
	if _, err := h.boards.DeleteComment(c.Request().Context(), boardID, target(c), commentID); err != nil {
		return httputil.Fail(c, h.mapper, err, "Cannot remove comment")
	}
	h.emit(c, rtdomain.CommentRemoved, commentID, boardID)
	return c.JSON(http.StatusOK, httputil.MessageBody{Msg: "Deleted successfully"})
}

func (h *BoardHandler) emit(c echo.Context, kind string, payload any, topic string) {
	if h.notifier == nil {
		return
	}
	ctx := c.Request().Context()
	h.notifier.Execute(ctx, rtdomain.ChangeEvent{
		Kind:         kind,
		Payload:      payload,
		Topic:        topic,
		ActingUserID: session.UserID(ctx),
	})
}

func target(c echo.Context) domain.CommentTarget {
	return domain.ResolveTarget(c.Param("groupId"), c.Param("taskId"))
}

type activityRequest struct {
	Action   domain.Action     `json:"action"`
	Entity   domain.EntityType `json:"entity"`
	EntityID string            `json:"entityId"`
}

// logActivity appends a client-reported activity, such as a view, to the board log.
func (h *BoardHandler) logActivity(c echo.Context) error {
	var req activityRequest
	if err := bind(c, &req); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to log activity")
	}
	if err := h.boards.LogActivity(c.Request().Context(), c.Param("boardId"), req.Action, req.Entity, req.EntityID); err != nil {
		return httputil.Fail(c, h.mapper, err, "Failed to log activity")
	}
	return c.JSON(http.StatusOK, httputil.MessageBody{Msg: "Activity logged"})
}

func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

func parseFilter(c echo.Context) (domain.BoardFilter, error) {
	filter := domain.BoardFilter{
		Txt:       strings.TrimSpace(c.QueryParam("txt")),
		SortField: strings.TrimSpace(c.QueryParam("sortField")),
		SortDir:   1,
	}
	if raw := c.QueryParam("sortDir"); raw != "" {
		dir, err := strconv.Atoi(raw)
		if err != nil {
			return filter, apperr.Validation("sortDir must be a number")
		}
		filter.SortDir = dir
	}
	if raw := c.QueryParam("pageIdx"); raw != "" {
		idx, err := strconv.Atoi(raw)
		if err != nil || idx < 0 {
			return filter, apperr.Validation("pageIdx must be a non-negative number")
		}
		filter.PageIdx = &idx
	}
	return filter, nil
}
