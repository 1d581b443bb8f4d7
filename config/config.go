// Package config exposes the press server settings. Every value comes from a
// PRESS_* environment variable (optionally seeded from a .env file) with a
// sensible default.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// LoadEnv reads a .env file from the working directory, or the file named by
// PRESS_ENV_FILE. Variables already present in the environment win. A missing
// file is not an error.
func LoadEnv() error {
	path := os.Getenv("PRESS_ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("PRESS_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("PRESS_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("PRESS_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/press"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return filepath.Join(GetDBFolderPath(), GetName()+".db")
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("PRESS_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetUploadFolder is where attached article images are written. The same
// folder is served read-only under /uploads.
func GetUploadFolder() string {
	uploadFolder := os.Getenv("PRESS_UPLOAD_FOLDER")
	if uploadFolder == "" {
		uploadFolder = "uploads"
	}
	return uploadFolder
}

func GetListen() string {
	return os.Getenv("PRESS_LISTEN")
}

func GetPort() int {
	return getInt("PRESS_PORT", 8000)
}

// GetJWTSecret returns the HMAC key used to sign session tokens. JWT_SECRET is
// honoured for deployments that predate the PRESS_ prefix.
func GetJWTSecret() string {
	if secret := os.Getenv("PRESS_JWT_SECRET"); secret != "" {
		return secret
	}
	return os.Getenv("JWT_SECRET")
}

func GetSessionTTL() time.Duration {
	raw := os.Getenv("PRESS_SESSION_TTL")
	if raw == "" {
		return time.Hour
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		return time.Hour
	}
	return ttl
}

func GetBcryptCost() int {
	return getInt("PRESS_BCRYPT_COST", 10)
}

// CheckActiveOnRequest reports whether protected routes re-read the account's
// active flag instead of trusting the token until it expires.
func CheckActiveOnRequest() bool {
	return os.Getenv("PRESS_AUTH_CHECK_ACTIVE") != "false"
}

func GetCORSOrigins() []string {
	raw := os.Getenv("PRESS_CORS_ORIGINS")
	if raw == "" {
		return []string{"*"}
	}
	origins := make([]string, 0)
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// GetRequestsPerMinute is the per-IP budget applied to every route.
func GetRequestsPerMinute() int {
	return getInt("PRESS_RATE_LIMIT", 100)
}

func getInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
