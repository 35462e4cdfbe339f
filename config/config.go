package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/robfig/cron/v3"
)

// Config is the user-editable settings file kept next to the database.
type Config struct {
	BackupDir           string            `json:"backupDir"`
	ExportDir           string            `json:"exportDir"`
	AutoBackupEnabled   bool              `json:"autoBackupEnabled"`
	BackupSchedule      string            `json:"backupSchedule"`
	MaxBackupFiles      int               `json:"maxBackupFiles"`
	LowStockThreshold   int               `json:"lowStockThreshold"`
	ItemsPerPage        int               `json:"itemsPerPage"`
	DefaultExportFormat string            `json:"defaultExportFormat"`
	CSVEncoding         string            `json:"csvEncoding"`
	ConfirmDeletions    bool              `json:"confirmDeletions"`
	Windows             map[string]string `json:"windows,omitempty"`
	Interface           map[string]string `json:"interface,omitempty"`
	RecentFiles         []string          `json:"recentFiles,omitempty"`
}

const (
	FileName       = "autoparts_config.json"
	maxRecentFiles = 10
)

var (
	cfg      Config
	dataDir  string
	mu       sync.RWMutex
	loadOnce bool
)

// Defaults returns the settings used when no file exists yet.
func Defaults(dir string) Config {
	return Config{
		BackupDir:           filepath.Join(dir, "backups"),
		ExportDir:           filepath.Join(dir, "exports"),
		AutoBackupEnabled:   true,
		BackupSchedule:      "0 3 * * 0",
		MaxBackupFiles:      10,
		LowStockThreshold:   5,
		ItemsPerPage:        50,
		DefaultExportFormat: "csv",
		CSVEncoding:         "utf-8",
		ConfirmDeletions:    true,
	}
}

// Init points the package at a data directory and creates the working folders.
func Init(dir string) error {
	mu.Lock()
	dataDir = dir
	cfg = Defaults(dir)
	loadOnce = false
	mu.Unlock()

	for _, sub := range []string{"", "backups", "exports", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return fmt.Errorf("failed to create data directory %s: %w", filepath.Join(dir, sub), err)
		}
	}
	return nil
}

// LogDir is the folder the application log file goes to.
func LogDir() string {
	mu.RLock()
	defer mu.RUnlock()
	return filepath.Join(dataDir, "logs")
}

func configFilePath() string {
	return filepath.Join(dataDir, FileName)
}

// LoadConfig reads the settings file. Fields missing from the file keep their defaults.
func LoadConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	loaded := Defaults(dataDir)
	file, err := os.ReadFile(configFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			cfg = loaded
			loadOnce = true
			return cfg, nil
		}
		return Config{}, err
	}

	if err := json.Unmarshal(file, &loaded); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	applyDefaults(&loaded)
	cfg = loaded
	loadOnce = true
	return cfg, nil
}

func applyDefaults(c *Config) {
	d := Defaults(dataDir)
	if c.BackupDir == "" {
		c.BackupDir = d.BackupDir
	}
	if c.ExportDir == "" {
		c.ExportDir = d.ExportDir
	}
	if c.BackupSchedule == "" {
		c.BackupSchedule = d.BackupSchedule
	}
	if c.MaxBackupFiles == 0 {
		c.MaxBackupFiles = d.MaxBackupFiles
	}
	if c.ItemsPerPage == 0 {
		c.ItemsPerPage = d.ItemsPerPage
	}
	if c.DefaultExportFormat == "" {
		c.DefaultExportFormat = d.DefaultExportFormat
	}
	if c.CSVEncoding == "" {
		c.CSVEncoding = d.CSVEncoding
	}
}

// Validate rejects settings the rest of the application cannot work with.
func (c Config) Validate() error {
	if c.MaxBackupFiles < 0 {
		return errors.New("maxBackupFiles must not be negative")
	}
	if c.LowStockThreshold < 0 {
		return errors.New("lowStockThreshold must not be negative")
	}
	if c.ItemsPerPage < 0 {
		return errors.New("itemsPerPage must not be negative")
	}
	if c.DefaultExportFormat != "" && c.DefaultExportFormat != "csv" && c.DefaultExportFormat != "xlsx" {
		return fmt.Errorf("unsupported export format %q", c.DefaultExportFormat)
	}
	switch c.CSVEncoding {
	case "", "utf-8", "windows-1251":
	default:
		return fmt.Errorf("unsupported csv encoding %q", c.CSVEncoding)
	}
	if c.BackupSchedule != "" {
		if _, err := cron.ParseStandard(c.BackupSchedule); err != nil {
			return fmt.Errorf("invalid backup schedule %q: %w", c.BackupSchedule, err)
		}
	}
	return nil
}

// SaveConfig validates and persists the settings.
func SaveConfig(newCfg Config) error {
	if err := newCfg.Validate(); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	applyDefaults(&newCfg)
	file, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(configFilePath(), file, 0644); err != nil {
		return err
	}
	cfg = newCfg
	return nil
}

// GetConfig returns the current settings, loading them on first use.
func GetConfig() Config {
	mu.RLock()
	loaded := loadOnce
	current := cfg
	mu.RUnlock()
	if loaded {
		return current
	}
	c, err := LoadConfig()
	if err != nil {
		return current
	}
	return c
}

// ResetConfig discards the settings file and returns to defaults.
func ResetConfig() (Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if err := os.Remove(configFilePath()); err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}
	cfg = Defaults(dataDir)
	loadOnce = true
	return cfg, nil
}

// SetWindowGeometry remembers a window (or panel) layout string for the front-end.
func SetWindowGeometry(name, geometry string) error {
	c := GetConfig()
	windows := make(map[string]string, len(c.Windows)+1)
	for k, v := range c.Windows {
		windows[k] = v
	}
	windows[name] = geometry
	c.Windows = windows
	return SaveConfig(c)
}

// AddRecentFile puts path at the head of the recent files list.
func AddRecentFile(path string) error {
	c := GetConfig()
	recent := []string{path}
	for _, p := range c.RecentFiles {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > maxRecentFiles {
		recent = recent[:maxRecentFiles]
	}
	c.RecentFiles = slices.Clip(recent)
	return SaveConfig(c)
}
