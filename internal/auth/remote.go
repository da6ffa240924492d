package auth

import (
	"context"
	"encoding/json"
	"time"

	"equipment-backend/internal/logging"
	"equipment-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RemoteAuthenticator: token'ı Supabase'in /auth/v1/user endpoint'ine sorar
type RemoteAuthenticator struct {
	baseURL string
	anonKey string
	timeout time.Duration
}

func NewRemoteAuthenticator(baseURL, anonKey string) *RemoteAuthenticator {
	return &RemoteAuthenticator{baseURL: baseURL, anonKey: anonKey, timeout: 5 * time.Second}
}

type remoteUser struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

func (a *RemoteAuthenticator) Authenticate(ctx context.Context, token string) (Principal, error) {
	timeout := a.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}

	agent := fiber.Get(a.baseURL + "/auth/v1/user")
	agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	agent.Set("apikey", a.anonKey)
	agent.Timeout(timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		logging.LogError("auth", "RemoteAuthenticator.Authenticate", "request", nil, errs[0])
		return Principal{}, ErrInvalidToken
	}
	if code != fiber.StatusOK {
		return Principal{}, ErrInvalidToken
	}

	var u remoteUser
	if err := json.Unmarshal(body, &u); err != nil {
		return Principal{}, ErrInvalidToken
	}
	id, err := uuid.Parse(u.ID)
	if err != nil {
		return Principal{}, ErrUserNotFound
	}

	email := u.Email
	if email == "" {
		email = u.UserMetadata.Email
	}
	return Principal{ID: id, Email: email, Role: models.ParseRole(u.UserMetadata.Role)}, nil
}
