package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/returnscoi/returns/internal/links"
	"github.com/returnscoi/returns/internal/storage"
)

// fetchTimeout bounds the photo download so a stalled Telegram file server
// cannot hang an invocation indefinitely.
const fetchTimeout = 60 * time.Second

// handlePhoto runs the upload flow for an inbound photo. An unlinked sender
// is an expected state answered in chat, not an error. Everything after the
// link check funnels into one generic failure reply; detail stays in the log.
func (s *Service) handlePhoto(ctx context.Context, bot API, msg *tgbotapi.Message) error {
	telegramID := telegramUserID(msg)
	if telegramID == "" {
		return nil
	}

	rec, err := s.lookupLink(ctx, telegramID)
	if err != nil {
		if errors.Is(err, links.ErrNotLinked) || errors.Is(err, links.ErrInvalidTelegramID) {
			return s.reply(bot, msg.Chat.ID, replyNotLinked)
		}
		// link store unreachable: same generic failure as the transfer path
		s.logger.Error("link lookup failed",
			slog.String("telegram_id", telegramID), slog.Any("error", err))
		_ = s.reply(bot, msg.Chat.ID, replyUploadFailed)
		return err
	}

	if err := s.uploadPhoto(ctx, bot, msg, rec); err != nil {
		s.logger.Error("upload failed",
			slog.String("telegram_id", telegramID),
			slog.String("email", rec.Email),
			slog.Any("error", err))
		_ = s.reply(bot, msg.Chat.ID, replyUploadFailed)
		return err
	}
	return s.reply(bot, msg.Chat.ID, replyUploadOK)
}

// lookupLink reads the link record, retrying once on transient store
// failure. The lookup is idempotent so a retry is safe; the later
// write-then-reply sequence is not retried to avoid duplicate uploads.
func (s *Service) lookupLink(ctx context.Context, telegramID string) (links.LinkRecord, error) {
	rec, err := s.links.Get(ctx, telegramID)
	if err == nil || errors.Is(err, links.ErrNotLinked) || errors.Is(err, links.ErrInvalidTelegramID) {
		return rec, err
	}
	return s.links.Get(ctx, telegramID)
}

func (s *Service) uploadPhoto(ctx context.Context, bot API, msg *tgbotapi.Message, rec links.LinkRecord) error {
	photo := largestPhoto(msg.Photo)
	if photo.FileID == "" {
		return fmt.Errorf("photo message has no file id")
	}

	fileURL, err := bot.GetFileDirectURL(photo.FileID)
	if err != nil {
		return fmt.Errorf("resolve file url: %w", err)
	}

	// Best-effort UX feedback before the transfer; not a correctness signal.
	_ = s.reply(bot, msg.Chat.ID, fmt.Sprintf("Authenticated as %s. Uploading...", rec.Email))

	data, err := s.fetch(ctx, fileURL)
	if err != nil {
		return err
	}

	ts := s.now().UTC()
	key := storage.TelegramUploadKey(ts)
	opts := storage.PutOptions{
		ContentType: "image/jpeg",
		Metadata: map[string]string{
			storage.MetaUploaderEmail:   rec.Email,
			storage.MetaUploadTimestamp: ts.Format(time.RFC3339),
			storage.MetaRemarks:         msg.Caption,
			storage.MetaTelegramUserID:  rec.TelegramID,
		},
	}
	if err := s.store.Put(ctx, key, bytes.NewReader(data), opts); err != nil {
		return fmt.Errorf("store photo: %w", err)
	}
	s.logger.Info("photo uploaded",
		slog.String("key", key),
		slog.String("email", rec.Email),
		slog.Int("bytes", len(data)))
	return nil
}

// fetch downloads the photo bytes as an opaque buffer.
func (s *Service) fetch(ctx context.Context, fileURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download photo: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("download photo status: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read photo body: %w", err)
	}
	return data, nil
}

// largestPhoto picks the highest-resolution variant. Telegram orders the
// slice smallest to largest, so the last entry wins; the size comparison
// guards against clients that do not keep that order.
func largestPhoto(photos []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	var best tgbotapi.PhotoSize
	for _, p := range photos {
		if p.Width*p.Height >= best.Width*best.Height {
			best = p
		}
	}
	return best
}
