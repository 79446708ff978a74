package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the process-level settings. Values come from the
// environment, with a .env file loaded in dev for convenience.
type Config struct {
	// DataDir holds the books.txt / users.txt snapshots.
	DataDir string
	// AuditDB is the SQLite circulation log path.
	AuditDB string
}

// LoadConfig reads the configuration from the environment with sensible
// defaults.
func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		DataDir: getEnv("LIBRARY_DATA_DIR", "data"),
		AuditDB: getEnv("LIBRARY_AUDIT_DB", "data/audit.db"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
