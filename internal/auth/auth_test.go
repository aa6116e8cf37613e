package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tmusial/convoy/internal/models"
)

// memoryUsers is an in-memory UserStorage for authenticator tests.
type memoryUsers struct {
	byEmail map[string]*models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: make(map[string]*models.User)}
}

func (m *memoryUsers) CreateUser(ctx context.Context, user *models.User) error {
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUsers) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.byEmail[email], nil
}

func (m *memoryUsers) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("valid registration", func(t *testing.T) {
		auth := NewPasswordAuthenticator(newMemoryUsers())
		user, err := auth.Register(ctx, "alice@example.com", "Alice", "password123")
		if err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		if user.ID == "" || user.Email != "alice@example.com" {
			t.Errorf("user = %+v", user)
		}
		if user.PasswordHash == "password123" || user.PasswordHash == "" {
			t.Error("password must be stored hashed")
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		auth := NewPasswordAuthenticator(newMemoryUsers())
		_, err := auth.Register(ctx, "not-an-email", "Alice", "password123")
		if !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("expected ErrInvalidEmail, got %v", err)
		}
	})

	t.Run("weak password", func(t *testing.T) {
		auth := NewPasswordAuthenticator(newMemoryUsers())
		_, err := auth.Register(ctx, "alice@example.com", "Alice", "short")
		if !errors.Is(err, ErrWeakPassword) {
			t.Errorf("expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		auth := NewPasswordAuthenticator(newMemoryUsers())
		if _, err := auth.Register(ctx, "alice@example.com", "Alice", "password123"); err != nil {
			t.Fatalf("failed to register: %v", err)
		}
		_, err := auth.Register(ctx, "alice@example.com", "Alice Again", "password456")
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("expected ErrEmailExists, got %v", err)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	auth := NewPasswordAuthenticator(newMemoryUsers())
	if _, err := auth.Register(ctx, "alice@example.com", "Alice", "password123"); err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		user, err := auth.Authenticate(ctx, "alice@example.com", "password123")
		if err != nil {
			t.Fatalf("failed to authenticate: %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("user = %+v", user)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Authenticate(ctx, "alice@example.com", "wrong-password")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := auth.Authenticate(ctx, "nobody@example.com", "password123")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestJWT(t *testing.T) {
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	t.Run("round trip", func(t *testing.T) {
		m := NewJWTManager("test-secret", time.Hour)
		token, err := m.Generate(user)
		if err != nil {
			t.Fatalf("failed to generate: %v", err)
		}

		claims, err := m.Validate(token)
		if err != nil {
			t.Fatalf("failed to validate: %v", err)
		}
		if claims.UserID != "user-1" || claims.Email != "alice@example.com" {
			t.Errorf("claims = %+v", claims)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		m := NewJWTManager("test-secret", -time.Minute)
		token, err := m.Generate(user)
		if err != nil {
			t.Fatalf("failed to generate: %v", err)
		}
		if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTManager("secret-a", time.Hour).Generate(user)
		if err != nil {
			t.Fatalf("failed to generate: %v", err)
		}
		if _, err := NewJWTManager("secret-b", time.Hour).Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		m := NewJWTManager("test-secret", time.Hour)
		if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
