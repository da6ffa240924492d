package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	AuthModeJWT    = "jwt"
	AuthModeRemote = "remote"

	defaultDSN    = "host=localhost user=postgres password=postgres dbname=equipment port=5432 sslmode=disable"
	defaultOrigin = "http://localhost:3000"
)

type Config struct {
	HTTPPort    string
	DatabaseDSN string

	// Kimlik sağlayıcı (Supabase)
	AuthMode        string
	SupabaseURL     string
	SupabaseAnonKey string
	JWTSecret       string

	CORSOrigins string

	UploadDir   string // Sipariş eklerinin yerel klasörü
	UploadMaxMB int
	GCSBucket   string // Doluysa ekler GCS'e yazılır

	RedisAddr       string
	KafkaBrokers    []string
	KafkaOrderTopic string

	LogLevel       string
	MetricsEnabled bool

	allowAll       bool
	allowedOrigins map[string]struct{}
}

// Load: .env varsa önce onu okur, sonra environment değişkenlerinden Config kurar
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] .env okunamadı: %v", err)
	}

	cfg := FromEnv()

	switch cfg.AuthMode {
	case AuthModeJWT:
		if cfg.JWTSecret == "" {
			log.Fatal("[FATAL] SUPABASE_JWT_SECRET tanımlanmamış! AUTH_MODE=jwt için zorunludur.")
		}
		if len(cfg.JWTSecret) < 32 {
			log.Fatal("[FATAL] SUPABASE_JWT_SECRET en az 32 karakter olmalıdır! Güvenlik riski.")
		}
	case AuthModeRemote:
		if cfg.SupabaseURL == "" || cfg.SupabaseAnonKey == "" {
			log.Fatal("[FATAL] AUTH_MODE=remote için SUPABASE_URL ve SUPABASE_ANON_KEY zorunludur.")
		}
	default:
		log.Fatalf("[FATAL] Bilinmeyen AUTH_MODE: %q (jwt veya remote olmalı)", cfg.AuthMode)
	}

	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN varsayılan değer kullanılıyor, production için mutlaka kendi Postgres bağlantı bilgisini tanımla.")
	}
	if cfg.CORSOrigins == defaultOrigin {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için mutlaka kendi domain'ini tanımla.")
	}

	return cfg
}

// FromEnv: doğrulama yapmadan Config kurar (testler ve yardımcı araçlar için)
func FromEnv() *Config {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:     getEnv("DATABASE_DSN", defaultDSN),
		AuthMode:        strings.ToLower(getEnv("AUTH_MODE", AuthModeJWT)),
		SupabaseURL:     strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
		JWTSecret:       getEnv("SUPABASE_JWT_SECRET", ""),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", defaultOrigin),
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		UploadMaxMB:     getEnvInt("UPLOAD_MAX_MB", 10),
		GCSBucket:       getEnv("GCS_BUCKET", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "order-events"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
	}
	cfg.SetOrigins(cfg.CORSOrigins)
	return cfg
}

// SetOrigins: allow-list'i bir kere parse eder
func (c *Config) SetOrigins(list string) {
	c.CORSOrigins = list
	c.allowAll = false
	c.allowedOrigins = make(map[string]struct{})
	for _, o := range splitList(list) {
		if o == "*" {
			c.allowAll = true
			continue
		}
		c.allowedOrigins[strings.TrimRight(o, "/")] = struct{}{}
	}
}

// AllowOrigin: CORS predicate'i
func (c *Config) AllowOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	if c.allowAll {
		return true
	}
	_, ok := c.allowedOrigins[strings.TrimRight(origin, "/")]
	return ok
}

func (c *Config) UploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) * 1024 * 1024
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[WARN] %s geçersiz (%q), varsayılan %d kullanılıyor", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
