package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/returnscoi/returns/internal/auth"
	"github.com/returnscoi/returns/internal/links"
)

// LinkRegistrar writes a link record; implemented by links.Service.
type LinkRegistrar interface {
	Upsert(ctx context.Context, rec links.LinkRecord) (links.LinkRecord, error)
}

// LinkHandler registers the caller's Telegram account against their verified
// session. The JWT middleware guarantees the caller identity: requests
// without a valid token never reach this handler.
type LinkHandler struct {
	service LinkRegistrar
	logger  *slog.Logger
}

type linkRequest struct {
	TelegramID string `json:"telegram_id" validate:"required"`
	Username   string `json:"username"`
}

type linkResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
}

func NewLinkHandler(log *slog.Logger, service LinkRegistrar) *LinkHandler {
	return &LinkHandler{
		service: service,
		logger:  log.With(slog.String("handler", "link")),
	}
}

func (h *LinkHandler) Register(e *echo.Echo) {
	e.POST("/api/telegram/link", h.LinkTelegramAccount)
}

func (h *LinkHandler) LinkTelegramAccount(c echo.Context) error {
	session, err := auth.SessionFromContext(c)
	if err != nil {
		return err
	}

	var req linkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.service.Upsert(c.Request().Context(), links.LinkRecord{
		TelegramID: req.TelegramID,
		UserID:     session.UserID,
		Email:      session.Email,
		Username:   req.Username,
	})
	if err != nil {
		if errors.Is(err, links.ErrInvalidTelegramID) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid telegram id")
		}
		h.logger.Error("link registration failed",
			slog.String("user_id", session.UserID), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, "link registration failed")
	}

	return c.JSON(http.StatusOK, linkResponse{Success: true, Email: rec.Email})
}
