package links_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/returnscoi/returns/internal/links"
)

func setupLinksIntegrationTest(t *testing.T) (*links.Service, *pgxpool.Pool, func()) {
	t.Helper()

	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("skip integration test: TEST_POSTGRES_DSN is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("skip integration test: cannot connect to database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("skip integration test: database ping failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc := links.NewService(logger, pool)
	return svc, pool, func() { pool.Close() }
}

func createTestUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, email string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, 'x') RETURNING id`,
		email).Scan(&id)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM telegram_links WHERE user_id = $1`, id)
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func TestUpsertLastWriteWins(t *testing.T) {
	svc, pool, cleanup := setupLinksIntegrationTest(t)
	defer cleanup()
	ctx := context.Background()

	userID := createTestUser(ctx, t, pool, "links-a@test.local")

	first, err := svc.Upsert(ctx, links.LinkRecord{
		TelegramID: "900042",
		UserID:     userID,
		Email:      "links-a@test.local",
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if first.Username != "Unknown" {
		t.Fatalf("default username = %q, want Unknown", first.Username)
	}

	second, err := svc.Upsert(ctx, links.LinkRecord{
		TelegramID: "900042",
		UserID:     userID,
		Email:      "links-a@test.local",
		Username:   "alice",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.Username != "alice" {
		t.Fatalf("username after re-registration = %q, want alice", second.Username)
	}

	var count int
	if err := pool.QueryRow(ctx,
		`SELECT count(*) FROM telegram_links WHERE telegram_id = '900042'`).Scan(&count); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if count != 1 {
		t.Fatalf("link rows = %d, want 1", count)
	}

	got, err := svc.Get(ctx, "900042")
	if err != nil {
		t.Fatalf("get link: %v", err)
	}
	if got.Email != "links-a@test.local" || got.Username != "alice" {
		t.Fatalf("unexpected link record: %+v", got)
	}
}

func TestGetUnlinkedReturnsErrNotLinked(t *testing.T) {
	svc, _, cleanup := setupLinksIntegrationTest(t)
	defer cleanup()

	_, err := svc.Get(context.Background(), "999999999999")
	if !errors.Is(err, links.ErrNotLinked) {
		t.Fatalf("expected ErrNotLinked, got %v", err)
	}
}
