package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
)

type fakeUpdateHandler struct {
	updates []tgbotapi.Update
	err     error
}

func (f *fakeUpdateHandler) HandleUpdate(_ context.Context, update tgbotapi.Update) error {
	f.updates = append(f.updates, update)
	return f.err
}

func postWebhook(t *testing.T, handler *TelegramWebhookHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := handler.HandleWebhook(c); err != nil {
		t.Fatalf("HandleWebhook returned error: %v", err)
	}
	return rec
}

func TestWebhookAcknowledgesValidUpdate(t *testing.T) {
	bot := &fakeUpdateHandler{}
	handler := NewTelegramWebhookHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), bot)

	rec := postWebhook(t, handler, `{"update_id":7,"message":{"message_id":1,"text":"hi","chat":{"id":100}}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(bot.updates) != 1 {
		t.Fatalf("handled updates = %d, want 1", len(bot.updates))
	}
	if bot.updates[0].UpdateID != 7 {
		t.Fatalf("update id = %d, want 7", bot.updates[0].UpdateID)
	}
}

func TestWebhookAcknowledgesMalformedPayload(t *testing.T) {
	bot := &fakeUpdateHandler{}
	handler := NewTelegramWebhookHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), bot)

	rec := postWebhook(t, handler, `{not json`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(bot.updates) != 0 {
		t.Fatalf("malformed payload reached the bot: %d updates", len(bot.updates))
	}
}

func TestWebhookAcknowledgesHandlerFailure(t *testing.T) {
	bot := &fakeUpdateHandler{err: errors.New("storage down")}
	handler := NewTelegramWebhookHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), bot)

	rec := postWebhook(t, handler, `{"update_id":8}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
