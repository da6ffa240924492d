package auth

import (
	"context"
	"errors"

	"equipment-backend/internal/models"

	"github.com/google/uuid"
)

// Principal: doğrulanmış istek sahibi
type Principal struct {
	ID    uuid.UUID       `json:"id"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// Authenticator: bearer token'ı Principal'a çevirir
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

var (
	ErrInvalidToken = errors.New("Invalid or expired token")
	ErrUserNotFound = errors.New("User not found")
)
