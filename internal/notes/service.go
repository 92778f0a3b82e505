// Package notes manages soft-deleted notes. Deleted notes stay recoverable
// until the daily purge removes those past the retention window.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("note not found")

type Note struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedBy string     `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
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
		logger: log.With(slog.String("service", "notes")),
	}
}

const noteColumns = `id, title, body, is_deleted, deleted_at, COALESCE(created_by::text, ''), created_at, updated_at`

func scanNote(row pgx.Row) (Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.IsDeleted, &n.DeletedAt,
		&n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// List returns notes, including soft-deleted ones when includeDeleted is set.
func (s *Service) List(ctx context.Context, includeDeleted bool) ([]Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE NOT is_deleted ORDER BY updated_at DESC`
	if includeDeleted {
		query = `SELECT ` + noteColumns + ` FROM notes ORDER BY updated_at DESC`
	}
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Service) Create(ctx context.Context, title, body, createdBy string) (Note, error) {
	n, err := scanNote(s.pool.QueryRow(ctx,
		`INSERT INTO notes (title, body, created_by) VALUES ($1, $2, $3)
		 RETURNING `+noteColumns,
		title, body, createdBy))
	if err != nil {
		return Note{}, fmt.Errorf("create note: %w", err)
	}
	return n, nil
}

func (s *Service) Update(ctx context.Context, id, title, body string) (Note, error) {
	n, err := scanNote(s.pool.QueryRow(ctx,
		`UPDATE notes SET title = $2, body = $3, updated_at = now()
		 WHERE id = $1 AND NOT is_deleted
		 RETURNING `+noteColumns,
		id, title, body))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Note{}, ErrNotFound
		}
		return Note{}, fmt.Errorf("update note: %w", err)
	}
	return n, nil
}

// SoftDelete marks a note deleted and stamps the deletion time the purge
// window is measured from.
func (s *Service) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notes SET is_deleted = true, deleted_at = now(), updated_at = now()
		 WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return fmt.Errorf("soft delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore brings a soft-deleted note back before the purge claims it.
func (s *Service) Restore(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notes SET is_deleted = false, deleted_at = NULL, updated_at = now()
		 WHERE id = $1 AND is_deleted`, id)
	if err != nil {
		return fmt.Errorf("restore note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeDeleted hard-deletes notes that were soft-deleted before the
// retention cutoff. Returns the number of rows removed.
func (s *Service) PurgeDeleted(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notes WHERE is_deleted AND deleted_at <= $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge notes: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		s.logger.Info("purged deleted notes", slog.Int64("count", n))
		return n, nil
	}
	return 0, nil
}
