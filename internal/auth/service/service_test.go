package service

import (
	"context"
	"testing"
	"time"

	"leadvox_backend/internal/auth/repository"
	"leadvox_backend/platform/apperr"
	"leadvox_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type fakeStore struct {
	users map[string]repository.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]repository.User)}
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (repository.User, error) {
	u, ok := f.users[email]
	if !ok {
		return repository.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (repository.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return repository.User{}, repository.ErrNotFound
}

func (f *fakeStore) CreateUser(ctx context.Context, email, passwordHash string) (repository.User, error) {
	u := repository.User{ID: uuid.New(), Email: email, PasswordHash: passwordHash}
	f.users[email] = u
	return u, nil
}

func (f *fakeStore) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	for email, u := range f.users {
		if u.ID == userID {
			u.PasswordHash = passwordHash
			f.users[email] = u
			return nil
		}
	}
	return repository.ErrNotFound
}

type testAuthConfig struct{}

func (testAuthConfig) GetJWTAccessSecret() string       { return "test-secret" }
func (testAuthConfig) GetAccessTokenTTL() time.Duration { return time.Hour }

func newService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return New(store, testAuthConfig{}, logger.New("test")), store
}

func TestEnsureOperatorIsIdempotent(t *testing.T) {
	svc, store := newService(t)

	if err := svc.EnsureOperator(context.Background(), "op@example.com", "secret123"); err != nil {
		t.Fatalf("EnsureOperator: %v", err)
	}
	first := store.users["op@example.com"]

	if err := svc.EnsureOperator(context.Background(), "op@example.com", "different"); err != nil {
		t.Fatalf("second EnsureOperator: %v", err)
	}
	if store.users["op@example.com"].ID != first.ID {
		t.Fatal("existing operator account replaced")
	}
}

func TestLoginIssuesSignedAccessToken(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.EnsureOperator(context.Background(), "op@example.com", "secret123"); err != nil {
		t.Fatalf("EnsureOperator: %v", err)
	}

	result, err := svc.Login(context.Background(), "op@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	parsed, err := jwt.Parse(result.AccessToken, func(tok *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token did not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["type"] != "access" {
		t.Fatalf("type claim = %v, want access", claims["type"])
	}
	if claims["email"] != "op@example.com" {
		t.Fatalf("email claim = %v", claims["email"])
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newService(t)
	if err := svc.EnsureOperator(context.Background(), "op@example.com", "secret123"); err != nil {
		t.Fatalf("EnsureOperator: %v", err)
	}

	_, err := svc.Login(context.Background(), "op@example.com", "wrong")
	if apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	if apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	svc, store := newService(t)
	if err := svc.EnsureOperator(context.Background(), "op@example.com", "secret123"); err != nil {
		t.Fatalf("EnsureOperator: %v", err)
	}
	user := store.users["op@example.com"]

	err := svc.ChangePassword(context.Background(), user.ID, "wrong", "newsecret1")
	if apperr.GetKind(err) != apperr.KindUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "secret123", "newsecret1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Login(context.Background(), "op@example.com", "newsecret1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}
