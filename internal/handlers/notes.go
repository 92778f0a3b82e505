package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/returnscoi/returns/internal/auth"
	"github.com/returnscoi/returns/internal/notes"
)

type NotesHandler struct {
	service *notes.Service
	logger  *slog.Logger
}

type noteRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func NewNotesHandler(log *slog.Logger, service *notes.Service) *NotesHandler {
	return &NotesHandler{
		service: service,
		logger:  log.With(slog.String("handler", "notes")),
	}
}

func (h *NotesHandler) Register(e *echo.Echo) {
	g := e.Group("/api/notes")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.SoftDelete)
	g.POST("/:id/restore", h.Restore)
}

func (h *NotesHandler) List(c echo.Context) error {
	includeDeleted, _ := strconv.ParseBool(c.QueryParam("include_deleted"))
	items, err := h.service.List(c.Request().Context(), includeDeleted)
	if err != nil {
		h.logger.Error("list notes failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "list notes failed")
	}
	if items == nil {
		items = []notes.Note{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *NotesHandler) Create(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	note, err := h.service.Create(c.Request().Context(), req.Title, req.Body, userID)
	if err != nil {
		h.logger.Error("create note failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "create note failed")
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *NotesHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req noteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	note, err := h.service.Update(c.Request().Context(), id, req.Title, req.Body)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, note)
}

func (h *NotesHandler) SoftDelete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.SoftDelete(c.Request().Context(), id); err != nil {
		return h.mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotesHandler) Restore(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Restore(c.Request().Context(), id); err != nil {
		return h.mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotesHandler) mapError(err error) error {
	if errors.Is(err, notes.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "note not found")
	}
	h.logger.Error("notes operation failed", slog.Any("error", err))
	return echo.NewHTTPError(http.StatusInternalServerError, "operation failed")
}
