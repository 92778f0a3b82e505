// Package bot bridges the Telegram bot to the returns backend: /start hands
// out an account-linking deep link, and photos from linked senders are
// persisted to blob storage.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/returnscoi/returns/internal/config"
	"github.com/returnscoi/returns/internal/links"
	"github.com/returnscoi/returns/internal/storage"
)

const (
	replyNotLinked    = "⛔ Account not linked. Please type /start to get a verification link."
	replyUploadOK     = "✅ Success! Image uploaded."
	replyUploadFailed = "❌ Upload failed."
	replyHelp         = "Click /start to verify your Telegram account via logging into the Returns website, then you can start using the bot by sending images to it to upload it!"
)

// API is the slice of the Telegram bot client the service uses. The concrete
// *tgbotapi.BotAPI satisfies it; tests plug in a fake.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// LinkStore resolves a Telegram user id to its registered account link.
type LinkStore interface {
	Get(ctx context.Context, telegramID string) (links.LinkRecord, error)
}

// Service handles inbound Telegram updates. One instance serves the whole
// process; the underlying bot client is created on first use and reused, it
// holds no per-update state beyond configuration.
type Service struct {
	logger *slog.Logger
	links  LinkStore
	store  storage.Provider
	cfg    config.TelegramConfig
	client *http.Client

	mu  sync.Mutex
	bot API

	// test hooks
	newBot func(token string) (API, error)
	now    func() time.Time
}

func NewService(log *slog.Logger, linkStore LinkStore, store storage.Provider, cfg config.TelegramConfig) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		logger: log.With(slog.String("service", "bot")),
		links:  linkStore,
		store:  store,
		cfg:    cfg,
		client: &http.Client{Timeout: 60 * time.Second},
		newBot: func(token string) (API, error) {
			return tgbotapi.NewBotAPI(token)
		},
		now: time.Now,
	}
}

// getOrCreateBot lazily constructs the shared bot client. The double check
// keeps a racing redundant construction from replacing one already in use.
func (s *Service) getOrCreateBot() (API, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bot != nil {
		return s.bot, nil
	}
	if strings.TrimSpace(s.cfg.BotToken) == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}
	bot, err := s.newBot(s.cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	s.bot = bot
	return bot, nil
}

// HandleUpdate dispatches one inbound update. Errors it returns are for the
// caller's log only; the webhook transport acknowledges regardless.
func (s *Service) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	bot, err := s.getOrCreateBot()
	if err != nil {
		return err
	}
	switch {
	case msg.IsCommand() && msg.Command() == "start":
		return s.handleStart(bot, msg)
	case msg.IsCommand() && msg.Command() == "help":
		return s.reply(bot, msg.Chat.ID, replyHelp)
	case len(msg.Photo) > 0:
		return s.handlePhoto(ctx, bot, msg)
	}
	return nil
}

// handleStart replies with a deep link that pre-fills the web settings page
// with the sender's Telegram identity. No state changes here; the link is
// only written once the user confirms on the website.
func (s *Service) handleStart(bot API, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	username := ""
	if msg.From.UserName != "" {
		username = msg.From.UserName
	}
	link := fmt.Sprintf("%s/settings?tgId=%d&tgName=%s",
		strings.TrimRight(s.cfg.WebOrigin, "/"), msg.From.ID, url.QueryEscape(username))
	text := fmt.Sprintf("🔗 To verify your account, please click this link and confirm on the website:\n\n%s", link)
	return s.reply(bot, msg.Chat.ID, text)
}

func (s *Service) reply(bot API, chatID int64, text string) error {
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func telegramUserID(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return ""
	}
	return strconv.FormatInt(msg.From.ID, 10)
}
