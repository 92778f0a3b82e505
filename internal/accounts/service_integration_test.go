package accounts_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/returnscoi/returns/internal/accounts"
)

func setupAccountsIntegrationTest(t *testing.T) (*accounts.Service, *pgxpool.Pool, func()) {
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
	svc := accounts.NewService(logger, pool)
	return svc, pool, func() { pool.Close() }
}

func TestEnsureAdminAndAuthenticate(t *testing.T) {
	svc, pool, cleanup := setupAccountsIntegrationTest(t)
	defer cleanup()
	ctx := context.Background()

	email := fmt.Sprintf("admin-%d@test.local", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE email = $1`, email)
	})

	if err := svc.EnsureAdmin(ctx, email, "s3cret-pass", "Admin"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	// second call is a no-op, not an error
	if err := svc.EnsureAdmin(ctx, email, "other-pass", "Admin"); err != nil {
		t.Fatalf("EnsureAdmin repeat: %v", err)
	}

	acc, err := svc.Authenticate(ctx, email, "s3cret-pass")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if acc.Email != email {
		t.Fatalf("email = %q, want %q", acc.Email, email)
	}

	if _, err := svc.Authenticate(ctx, email, "wrong"); !errors.Is(err, accounts.ErrInvalidCredentials) {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@test.local", "x"); !errors.Is(err, accounts.ErrInvalidCredentials) {
		t.Fatalf("unknown email error = %v, want ErrInvalidCredentials", err)
	}

	got, err := svc.Get(ctx, acc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != acc.ID {
		t.Fatalf("get id = %q, want %q", got.ID, acc.ID)
	}
}
