package auth

import (
	"context"
	"fmt"
	"time"

	"equipment-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SupabaseClaims: Supabase access token'ındaki alanlar
type SupabaseClaims struct {
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
	jwt.RegisteredClaims
}

type UserMetadata struct {
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

// JWTAuthenticator: HS256 token'ları proje secret'ı ile yerelde doğrular
type JWTAuthenticator struct {
	secret []byte
}

func NewJWTAuthenticator(secret string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret)}
}

func (a *JWTAuthenticator) Authenticate(_ context.Context, tokenStr string) (Principal, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SupabaseClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("geçersiz imzalama yöntemi")
		}
		return a.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SupabaseClaims)
	if !ok {
		return Principal{}, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, ErrUserNotFound
	}

	email := claims.Email
	if email == "" {
		email = claims.UserMetadata.Email
	}
	return Principal{
		ID:    id,
		Email: email,
		Role:  models.ParseRole(claims.UserMetadata.Role),
	}, nil
}

// GenerateToken: Supabase formatında imzalı token üretir (dev aracı ve testler)
func GenerateToken(secret string, p Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &SupabaseClaims{
		Email:        p.Email,
		UserMetadata: UserMetadata{Role: string(p.Role)},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
