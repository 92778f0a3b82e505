package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
)

// UpdateHandler processes one inbound Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// TelegramWebhookHandler is the single ingress for Telegram events. It
// acknowledges every request with 200 regardless of outcome: a non-success
// status would trigger Telegram's redelivery, which this system does not
// want. Failures are logged, never surfaced to the platform.
type TelegramWebhookHandler struct {
	bot    UpdateHandler
	logger *slog.Logger
}

func NewTelegramWebhookHandler(log *slog.Logger, bot UpdateHandler) *TelegramWebhookHandler {
	return &TelegramWebhookHandler{
		bot:    bot,
		logger: log.With(slog.String("handler", "telegram_webhook")),
	}
}

func (h *TelegramWebhookHandler) Register(e *echo.Echo) {
	e.POST("/telegram/webhook", h.HandleWebhook)
}

func (h *TelegramWebhookHandler) HandleWebhook(c echo.Context) error {
	var update tgbotapi.Update
	if err := json.NewDecoder(c.Request().Body).Decode(&update); err != nil {
		h.logger.Warn("malformed webhook payload", slog.Any("error", err))
		return c.NoContent(http.StatusOK)
	}
	if err := h.bot.HandleUpdate(c.Request().Context(), update); err != nil {
		h.logger.Error("webhook processing error", slog.Any("error", err))
	}
	return c.NoContent(http.StatusOK)
}
