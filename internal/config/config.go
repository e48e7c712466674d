package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/survivalcast/survivalcast-go/internal/crypto"
	"github.com/survivalcast/survivalcast-go/internal/repository"
)

var (
	ErrSecretRequired    = errors.New("SECRET_KEY must be set")
	ErrAlgorithmRequired = errors.New("ALGORITHM must be set")
)

type Config struct {
	Port string
	Env  string

	JWTSecret    string
	JWTAlgorithm string
	JWTExpiry    time.Duration

	DB repository.DBConfig

	ModelPath      string
	CORSOrigins    []string
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads the configuration from the environment. A missing signing
// secret or algorithm is an error; the process must not start without them.
func Load() (Config, error) {
	var errs []error

	local, err := getBool("DB_LOCAL", true)
	errs = append(errs, err)
	expiryMinutes, err := getInt("ACCESS_TOKEN_EXPIRE_MINUTES", int(crypto.DefaultTokenExpiry/time.Minute))
	errs = append(errs, err)
	attempts, err := getInt("DB_CONNECT_ATTEMPTS", 5)
	errs = append(errs, err)
	delay, err := getDuration("DB_CONNECT_DELAY", 5*time.Second)
	errs = append(errs, err)
	timeout, err := getDuration("REQUEST_TIMEOUT", 15*time.Second)
	errs = append(errs, err)
	rps, err := getFloat("RATE_LIMIT_RPS", 5)
	errs = append(errs, err)
	burst, err := getInt("RATE_LIMIT_BURST", 10)
	errs = append(errs, err)

	cfg := Config{
		Port:         getEnv("PORT", "8000"),
		Env:          getEnv("ENV", "development"),
		JWTSecret:    os.Getenv("SECRET_KEY"),
		JWTAlgorithm: os.Getenv("ALGORITHM"),
		JWTExpiry:    time.Duration(expiryMinutes) * time.Minute,
		DB: repository.DBConfig{
			Local:           local,
			SQLitePath:      getEnv("SQLITE_PATH", "temp.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "3306"),
			User:            getEnv("DB_USER", "root"),
			Password:        os.Getenv("DB_PASSWORD"),
			Name:            getEnv("DB_NAME", "titanic_db"),
			ConnectAttempts: attempts,
			ConnectDelay:    delay,
		},
		ModelPath:      getEnv("MODEL_PATH", "models/model.json"),
		CORSOrigins:    splitList(getEnv("CORS_ALLOWED_ORIGINS", "https://titanic-fullstack.appspot.com")),
		RequestTimeout: timeout,
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, ErrSecretRequired)
	}
	if cfg.JWTAlgorithm == "" {
		errs = append(errs, ErrAlgorithmRequired)
	}
	if cfg.JWTExpiry <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", expiryMinutes))
	}
	if attempts < 1 {
		errs = append(errs, fmt.Errorf("DB_CONNECT_ATTEMPTS must be at least 1, got %d", attempts))
	}
	if delay <= 0 {
		errs = append(errs, fmt.Errorf("DB_CONNECT_DELAY must be positive, got %s", delay))
	}

	return cfg, errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
