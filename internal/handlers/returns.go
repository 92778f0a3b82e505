package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/returnscoi/returns/internal/auth"
	"github.com/returnscoi/returns/internal/returns"
)

// ReturnsHandler exposes returns record CRUD for the web app.
type ReturnsHandler struct {
	service *returns.Service
	logger  *slog.Logger
}

func NewReturnsHandler(log *slog.Logger, service *returns.Service) *ReturnsHandler {
	return &ReturnsHandler{
		service: service,
		logger:  log.With(slog.String("handler", "returns")),
	}
}

func (h *ReturnsHandler) Register(e *echo.Echo) {
	g := e.Group("/api/returns")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.POST("/:id/archive", h.Archive)
	g.POST("/:id/unarchive", h.Unarchive)
	g.DELETE("/:id", h.Delete)
}

func (h *ReturnsHandler) List(c echo.Context) error {
	archived, _ := strconv.ParseBool(c.QueryParam("archived"))
	items, err := h.service.List(c.Request().Context(), archived)
	if err != nil {
		h.logger.Error("list returns failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "list returns failed")
	}
	if items == nil {
		items = []returns.Return{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ReturnsHandler) Get(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ReturnsHandler) Create(c echo.Context) error {
	userID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req returns.CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.service.Create(c.Request().Context(), req, userID)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *ReturnsHandler) Update(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req returns.UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	item, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ReturnsHandler) Archive(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.service.SetArchived(c.Request().Context(), id, true)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ReturnsHandler) Unarchive(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	item, err := h.service.SetArchived(c.Request().Context(), id, false)
	if err != nil {
		return h.mapError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ReturnsHandler) Delete(c echo.Context) error {
	id, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return h.mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ReturnsHandler) mapError(err error) error {
	switch {
	case errors.Is(err, returns.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "return not found")
	case errors.Is(err, returns.ErrInvalidStatus):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("returns operation failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "operation failed")
	}
}
