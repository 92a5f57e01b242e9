// Package config reads cifra's settings from CIFRA_* environment variables.
// Command-line flags are applied on top by the cmd package.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	DefaultAPIURL   = "http://localhost:3001/api"
	DefaultAddr     = ":3001"
	DefaultJWTTTL   = 7 * 24 * time.Hour
	DefaultDBDriver = "sqlite"
)

// Client configures the terminal app.
type Client struct {
	APIURL string
	// DBPath is the local database; empty means the XDG data dir.
	DBPath      string
	LogMode     string
	Voice       bool
	VoicePlayer string
	TTSURL      string
	// ContentDir replaces the embedded lessons and tests when set.
	ContentDir string
}

// Server configures `cifra serve`.
type Server struct {
	Addr        string
	JWTSecret   string
	JWTTTL      time.Duration
	DBDriver    string
	DBDSN       string
	CORSOrigins []string
	LogMode     string
}

// ClientFromEnv reads the client settings from the process environment.
func ClientFromEnv() (Client, error) { return clientFrom(os.Getenv) }

// ServerFromEnv reads the server settings from the process environment.
func ServerFromEnv() (Server, error) { return serverFrom(os.Getenv) }

func clientFrom(getenv func(string) string) (Client, error) {
	e := env(getenv)
	voice, err := e.boolean("CIFRA_VOICE", true)
	if err != nil {
		return Client{}, err
	}
	return Client{
		APIURL:      strings.TrimRight(e.or("CIFRA_API_URL", DefaultAPIURL), "/"),
		DBPath:      e.or("CIFRA_DB", ""),
		LogMode:     e.or("CIFRA_LOG_MODE", "dev"),
		Voice:       voice,
		VoicePlayer: e.or("CIFRA_VOICE_PLAYER", ""),
		TTSURL:      e.or("CIFRA_TTS_URL", ""),
		ContentDir:  e.or("CIFRA_CONTENT_DIR", ""),
	}, nil
}

func serverFrom(getenv func(string) string) (Server, error) {
	e := env(getenv)
	ttl := DefaultJWTTTL
	if v := e.or("CIFRA_JWT_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Server{}, fmt.Errorf("CIFRA_JWT_TTL: %w", err)
		}
		ttl = d
	}
	cfg := Server{
		Addr:        e.or("CIFRA_ADDR", DefaultAddr),
		JWTSecret:   e.or("CIFRA_JWT_SECRET", ""),
		JWTTTL:      ttl,
		DBDriver:    e.or("CIFRA_DB_DRIVER", DefaultDBDriver),
		DBDSN:       e.or("CIFRA_DB_DSN", ""),
		CORSOrigins: e.list("CIFRA_CORS_ORIGINS"),
		LogMode:     e.or("CIFRA_LOG_MODE", "prod"),
	}
	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (s Server) Validate() error {
	if s.JWTSecret == "" {
		return fmt.Errorf("CIFRA_JWT_SECRET is required")
	}
	if s.JWTTTL <= 0 {
		return fmt.Errorf("token lifetime must be positive, got %s", s.JWTTTL)
	}
	switch s.DBDriver {
	case "sqlite", "pgx", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", s.DBDriver)
	}
	return nil
}

type env func(string) string

func (e env) or(key, def string) string {
	if v := strings.TrimSpace(e(key)); v != "" {
		return v
	}
	return def
}

func (e env) boolean(key string, def bool) (bool, error) {
	switch strings.ToLower(e.or(key, "")) {
	case "":
		return def, nil
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s: expected on/off, got %q", key, e(key))
	}
}

func (e env) list(key string) []string {
	var out []string
	for _, p := range strings.Split(e(key), ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
