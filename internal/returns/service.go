// Package returns manages the returns records behind the web app's Returns
// and Archive views.
package returns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("return not found")
	ErrInvalidStatus = errors.New("invalid return status")
)

var validStatuses = map[string]bool{
	"pending":  true,
	"received": true,
	"refunded": true,
	"rejected": true,
}

type Return struct {
	ID        string    `json:"id"`
	OrderRef  string    `json:"order_ref"`
	Customer  string    `json:"customer"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	Remarks   string    `json:"remarks"`
	Archived  bool      `json:"archived"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateRequest struct {
	OrderRef string `json:"order_ref" validate:"required"`
	Customer string `json:"customer"`
	Reason   string `json:"reason"`
	Status   string `json:"status"`
	Remarks  string `json:"remarks"`
}

type UpdateRequest struct {
	OrderRef *string `json:"order_ref,omitempty"`
	Customer *string `json:"customer,omitempty"`
	Reason   *string `json:"reason,omitempty"`
	Status   *string `json:"status,omitempty"`
	Remarks  *string `json:"remarks,omitempty"`
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
		logger: log.With(slog.String("service", "returns")),
	}
}

const returnColumns = `id, order_ref, customer, reason, status, remarks, archived, COALESCE(created_by::text, ''), created_at, updated_at`

func scanReturn(row pgx.Row) (Return, error) {
	var r Return
	err := row.Scan(&r.ID, &r.OrderRef, &r.Customer, &r.Reason, &r.Status,
		&r.Remarks, &r.Archived, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// List returns records filtered by archive state, newest first.
func (s *Service) List(ctx context.Context, archived bool) ([]Return, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+returnColumns+` FROM returns WHERE archived = $1 ORDER BY created_at DESC`,
		archived)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rows.Close()

	var out []Return
	for rows.Next() {
		r, err := scanReturn(rows)
		if err != nil {
			return nil, fmt.Errorf("scan return: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Service) Get(ctx context.Context, id string) (Return, error) {
	r, err := scanReturn(s.pool.QueryRow(ctx,
		`SELECT `+returnColumns+` FROM returns WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Return{}, ErrNotFound
		}
		return Return{}, fmt.Errorf("load return: %w", err)
	}
	return r, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy string) (Return, error) {
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = "pending"
	}
	if !validStatuses[status] {
		return Return{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	r, err := scanReturn(s.pool.QueryRow(ctx,
		`INSERT INTO returns (order_ref, customer, reason, status, remarks, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+returnColumns,
		strings.TrimSpace(req.OrderRef), req.Customer, req.Reason, status, req.Remarks, createdBy))
	if err != nil {
		return Return{}, fmt.Errorf("create return: %w", err)
	}
	s.logger.Info("return created", slog.String("id", r.ID), slog.String("order_ref", r.OrderRef))
	return r, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Return, error) {
	if req.Status != nil && !validStatuses[*req.Status] {
		return Return{}, fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return Return{}, err
	}
	if req.OrderRef != nil && strings.TrimSpace(*req.OrderRef) != "" {
		current.OrderRef = strings.TrimSpace(*req.OrderRef)
	}
	if req.Customer != nil {
		current.Customer = *req.Customer
	}
	if req.Reason != nil {
		current.Reason = *req.Reason
	}
	if req.Status != nil {
		current.Status = *req.Status
	}
	if req.Remarks != nil {
		current.Remarks = *req.Remarks
	}

	r, err := scanReturn(s.pool.QueryRow(ctx,
		`UPDATE returns
		 SET order_ref = $2, customer = $3, reason = $4, status = $5, remarks = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING `+returnColumns,
		id, current.OrderRef, current.Customer, current.Reason, current.Status, current.Remarks))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Return{}, ErrNotFound
		}
		return Return{}, fmt.Errorf("update return: %w", err)
	}
	return r, nil
}

// SetArchived moves a record between the Returns and Archive views.
func (s *Service) SetArchived(ctx context.Context, id string, archived bool) (Return, error) {
	r, err := scanReturn(s.pool.QueryRow(ctx,
		`UPDATE returns SET archived = $2, updated_at = now() WHERE id = $1
		 RETURNING `+returnColumns,
		id, archived))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Return{}, ErrNotFound
		}
		return Return{}, fmt.Errorf("archive return: %w", err)
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM returns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete return: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
