package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/tripline/tripline/internal/auth/domain"
	"github.com/tripline/tripline/internal/auth/repository"
	"github.com/tripline/tripline/internal/clock"
	"github.com/tripline/tripline/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, clk clock.Clock) authdomain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo, sessionRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return New(zap.NewNop(), repo, sessionRepo, node, clk)
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc := newTestService(t, nil)

	user, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "  Alice@Example.COM ",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.DisplayName != "alice" {
		t.Fatalf("expected display name derived from email, got %s", user.DisplayName)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "bob@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	_, err = svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "BOB@example.com",
		Password: "another-password",
	})
	if err != authdomain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "carol@example.com",
		Password: "short",
	})
	if err != authdomain.ErrWeakPassword {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	_, err = svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUserMapsToInvalidCredentials(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever-password",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	svc := newTestService(t, nil)

	registered, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "dave@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	result, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "dave@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	if result.RawToken == "" {
		t.Fatal("expected raw session token")
	}

	user, session, err := svc.Authenticate(context.Background(), result.RawToken)
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	if user.ID != registered.ID {
		t.Fatalf("expected user %s, got %s", registered.ID, user.ID)
	}
	if session.UserID != registered.ID {
		t.Fatalf("expected session for user %s, got %s", registered.ID, session.UserID)
	}
}

func TestAuthenticateExpiredSession(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC))
	svc := newTestService(t, clk)

	_, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "erin@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	result, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "erin@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}

	clk.Advance(8 * 24 * time.Hour)

	_, _, err = svc.Authenticate(context.Background(), result.RawToken)
	if err != authdomain.ErrSessionExpired {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc := newTestService(t, nil)

	_, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "frank@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	result, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "frank@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}

	if err := svc.Logout(context.Background(), result.RawToken); err != nil {
		t.Fatalf("failed to logout: %v", err)
	}

	_, _, err = svc.Authenticate(context.Background(), result.RawToken)
	if err != authdomain.ErrSessionRevoked {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	svc := newTestService(t, nil)

	user, err := svc.Register(context.Background(), authdomain.RegisterRequest{
		Email:    "grace@example.com",
		Password: "original-password",
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	result, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "grace@example.com",
		Password: "original-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "original-password", "replacement-password"); err != nil {
		t.Fatalf("failed to change password: %v", err)
	}

	_, _, err = svc.Authenticate(context.Background(), result.RawToken)
	if err != authdomain.ErrSessionRevoked {
		t.Fatalf("expected sessions revoked, got %v", err)
	}

	if _, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "grace@example.com",
		Password: "replacement-password",
	}); err != nil {
		t.Fatalf("failed to login with new password: %v", err)
	}
}
