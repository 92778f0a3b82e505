// Package links persists the mapping from a Telegram user id to a verified
// web account. A photo sent to the bot is only accepted once its sender id
// resolves here.
package links

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotLinked is the expected state for senders that never completed
	// the /start flow. It is a user-facing condition, not a system fault.
	ErrNotLinked = errors.New("telegram account is not linked")

	ErrInvalidTelegramID = errors.New("invalid telegram id")
)

// Telegram user ids are int64 values assigned by the platform; anything else
// is rejected before it can name a row in the store.
var telegramIDPattern = regexp.MustCompile(`^[0-9]{1,20}$`)

const defaultUsername = "Unknown"

// LinkRecord associates a Telegram user id with a verified account.
type LinkRecord struct {
	TelegramID string    `json:"telegram_id"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	LinkedAt   time.Time `json:"linked_at"`
}

type Service struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewService(log *slog.Logger, pool *pgxpool.Pool) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		pool:   pool,
		logger: log.With(slog.String("service", "links")),
	}
}

// ValidateTelegramID normalizes and checks the external id format.
func ValidateTelegramID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if !telegramIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTelegramID, raw)
	}
	return id, nil
}

// Upsert writes the link record for a Telegram id, replacing any previous
// link in place. Last write wins; at most one row per Telegram id.
func (s *Service) Upsert(ctx context.Context, rec LinkRecord) (LinkRecord, error) {
	telegramID, err := ValidateTelegramID(rec.TelegramID)
	if err != nil {
		return LinkRecord{}, err
	}
	if strings.TrimSpace(rec.UserID) == "" {
		return LinkRecord{}, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(rec.Email) == "" {
		return LinkRecord{}, fmt.Errorf("email is required")
	}
	username := strings.TrimSpace(rec.Username)
	if username == "" {
		username = defaultUsername
	}

	var out LinkRecord
	err = s.pool.QueryRow(ctx,
		`INSERT INTO telegram_links (telegram_id, user_id, email, username, linked_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (telegram_id) DO UPDATE
		 SET user_id = EXCLUDED.user_id,
		     email = EXCLUDED.email,
		     username = EXCLUDED.username,
		     linked_at = EXCLUDED.linked_at
		 RETURNING telegram_id, user_id, email, username, linked_at`,
		telegramID, rec.UserID, rec.Email, username,
	).Scan(&out.TelegramID, &out.UserID, &out.Email, &out.Username, &out.LinkedAt)
	if err != nil {
		return LinkRecord{}, fmt.Errorf("upsert link: %w", err)
	}
	s.logger.Info("telegram account linked",
		slog.String("telegram_id", out.TelegramID),
		slog.String("email", out.Email))
	return out, nil
}

// Get looks up the link record for a Telegram id. ErrNotLinked when absent.
func (s *Service) Get(ctx context.Context, telegramID string) (LinkRecord, error) {
	id, err := ValidateTelegramID(telegramID)
	if err != nil {
		return LinkRecord{}, err
	}
	var out LinkRecord
	err = s.pool.QueryRow(ctx,
		`SELECT telegram_id, user_id, email, username, linked_at
		 FROM telegram_links WHERE telegram_id = $1`,
		id).Scan(&out.TelegramID, &out.UserID, &out.Email, &out.Username, &out.LinkedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LinkRecord{}, ErrNotLinked
		}
		return LinkRecord{}, fmt.Errorf("load link: %w", err)
	}
	return out, nil
}
