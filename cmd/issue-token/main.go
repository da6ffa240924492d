// issue-token: geliştirme ortamı için Supabase formatında imzalı token basar.
//
//	SUPABASE_JWT_SECRET=... go run ./cmd/issue-token -role admin -email admin@example.com
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"equipment-backend/internal/auth"
	"equipment-backend/internal/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	sub := flag.String("sub", "", "kullanıcı id'si (boşsa yeni uuid)")
	email := flag.String("email", "dev@example.com", "e-posta")
	role := flag.String("role", string(models.RoleStaff), "admin veya staff")
	ttl := flag.Duration("ttl", 24*time.Hour, "geçerlilik süresi")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("SUPABASE_JWT_SECRET")
	if secret == "" {
		log.Fatal("SUPABASE_JWT_SECRET tanımlanmamış")
	}

	id := uuid.New()
	if *sub != "" {
		parsed, err := uuid.Parse(*sub)
		if err != nil {
			log.Fatalf("geçersiz -sub: %v", err)
		}
		id = parsed
	}

	token, err := auth.GenerateToken(secret, auth.Principal{
		ID:    id,
		Email: *email,
		Role:  models.ParseRole(*role),
	}, *ttl)
	if err != nil {
		log.Fatalf("token üretilemedi: %v", err)
	}
	fmt.Println(token)
}
