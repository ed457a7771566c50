package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Development fallbacks. Release mode refuses to start with these.
const (
	devJWTSecret     = "default_super_secret_key"
	devAdminPassword = "admin"
)

// Config holds everything the server needs at startup.
type Config struct {
	Port    string
	GinMode string

	DatabaseURL string

	JWTSecret         []byte
	AdminPasswordHash string
	SessionTTL        time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSOrigins       []string
	LowStockThreshold int
	LogLevel          string
}

// Release reports whether the server runs in gin release mode.
func (c Config) Release() bool {
	return c.GinMode == "release"
}

// Load reads the optional dotenv file and then the process environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		// A missing file is fine; the environment may already be populated.
		_ = godotenv.Load(envFile)
	}

	cfg := Config{
		Port:     get("PORT", "8080"),
		GinMode:  os.Getenv("GIN_MODE"),
		LogLevel: get("LOG_LEVEL", "info"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = postgresURL()
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if cfg.LowStockThreshold, err = getInt("LOW_STOCK_THRESHOLD", 20); err != nil {
		return Config{}, err
	}

	ttl, err := time.ParseDuration(get("SESSION_TTL", "8h"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	if ttl <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}
	cfg.SessionTTL = ttl

	for _, o := range strings.Split(get("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",") {
		if s := strings.TrimSpace(o); s != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, s)
		}
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if cfg.Release() {
			return Config{}, errors.New("JWT_SECRET is required in release mode")
		}
		secret = devJWTSecret
	}
	cfg.JWTSecret = []byte(secret)

	cfg.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")
	if cfg.AdminPasswordHash == "" {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			if cfg.Release() {
				return Config{}, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required in release mode")
			}
			password = devAdminPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return Config{}, fmt.Errorf("failed to hash admin password: %w", err)
		}
		cfg.AdminPasswordHash = string(hash)
	}

	return cfg, nil
}

// postgresURL assembles a DSN from the DB_* variables. Credentials are
// escaped, so passwords may contain URL delimiters.
func postgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(get("DB_USER", "postgres"), get("DB_PASSWORD", "postgres")),
		Host:     net.JoinHostPort(get("DB_HOST", "localhost"), get("DB_PORT", "5432")),
		Path:     "/" + get("DB_NAME", "postgres"),
		RawQuery: url.Values{"sslmode": {get("DB_SSLMODE", "disable")}}.Encode(),
	}
	return u.String()
}

func get(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
