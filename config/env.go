package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
)

// Env holds process-level settings that are not editable from the UI.
type Env struct {
	DataDir     string
	DBPath      string
	Port        string
	OpenBrowser bool
	StaticDir   string
}

// LoadEnv reads the environment, optionally seeded from an env file.
func LoadEnv(envFile string) (Env, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Env{}, fmt.Errorf("failed loading env file %s: %w", envFile, err)
		}
	} else {
		// a missing .env is fine
		_ = godotenv.Load()
	}

	dataDir := os.Getenv("AUTOPARTS_DATA_DIR")
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	env := Env{
		DataDir:   dataDir,
		DBPath:    getenvWithDefault("AUTOPARTS_DB_PATH", filepath.Join(dataDir, "autoparts.db")),
		Port:      getenvWithDefault("AUTOPARTS_PORT", "8080"),
		StaticDir: getenvWithDefault("AUTOPARTS_STATIC_DIR", "static"),
	}

	openBrowser, err := strconv.ParseBool(getenvWithDefault("AUTOPARTS_OPEN_BROWSER", "true"))
	if err != nil {
		return Env{}, fmt.Errorf("AUTOPARTS_OPEN_BROWSER: %w", err)
	}
	env.OpenBrowser = openBrowser
	return env, nil
}

// DefaultDataDir is %APPDATA%\AutoParts on Windows and ~/.autoparts elsewhere.
func DefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "AutoParts")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".autoparts"
	}
	return filepath.Join(home, ".autoparts")
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
