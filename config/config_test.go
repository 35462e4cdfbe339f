package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsAndPartialFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatal(err)
	}
	for _, sub := range []string{"backups", "exports", "logs"} {
		if _, err := os.Stat(filepath.Join(dir, sub)); err != nil {
			t.Errorf("%s not created: %v", sub, err)
		}
	}
	if LogDir() != filepath.Join(dir, "logs") {
		t.Errorf("LogDir() = %s", LogDir())
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BackupDir != filepath.Join(dir, "backups") || cfg.MaxBackupFiles != 10 {
		t.Errorf("defaults = %+v", cfg)
	}

	os.WriteFile(filepath.Join(dir, FileName), []byte(`{"lowStockThreshold": 3, "csvEncoding": "windows-1251"}`), 0644)
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LowStockThreshold != 3 || cfg.CSVEncoding != "windows-1251" || cfg.BackupSchedule != "0 3 * * 0" {
		t.Errorf("partial file = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := Defaults(t.TempDir())
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"negative threshold", func(c *Config) { c.LowStockThreshold = -1 }, true},
		{"unknown format", func(c *Config) { c.DefaultExportFormat = "ods" }, true},
		{"unknown encoding", func(c *Config) { c.CSVEncoding = "koi8-r" }, true},
		{"bad schedule", func(c *Config) { c.BackupSchedule = "every day" }, true},
		{"daily schedule", func(c *Config) { c.BackupSchedule = "30 2 * * *" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveResetAndRecentFiles(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatal(err)
	}

	cfg := GetConfig()
	cfg.ItemsPerPage = 100
	if err := SaveConfig(cfg); err != nil {
		t.Fatal(err)
	}
	if got, _ := LoadConfig(); got.ItemsPerPage != 100 {
		t.Errorf("ItemsPerPage after reload = %d", got.ItemsPerPage)
	}

	for i := 0; i < maxRecentFiles+2; i++ {
		if err := AddRecentFile(filepath.Join(dir, "f", string(rune('a'+i))+".csv")); err != nil {
			t.Fatal(err)
		}
	}
	AddRecentFile(filepath.Join(dir, "f", "c.csv"))
	recent := GetConfig().RecentFiles
	if len(recent) != maxRecentFiles || recent[0] != filepath.Join(dir, "f", "c.csv") {
		t.Errorf("recent = %v", recent)
	}

	if err := SetWindowGeometry("main", "1200x800+10+10"); err != nil {
		t.Fatal(err)
	}
	if GetConfig().Windows["main"] != "1200x800+10+10" {
		t.Error("window geometry not stored")
	}

	reset, err := ResetConfig()
	if err != nil {
		t.Fatal(err)
	}
	if reset.ItemsPerPage != 50 || len(reset.RecentFiles) != 0 {
		t.Errorf("reset = %+v", reset)
	}
	if _, err := os.Stat(filepath.Join(dir, FileName)); !os.IsNotExist(err) {
		t.Error("config file not removed")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	os.WriteFile(envFile, []byte("AUTOPARTS_PORT=9090\nAUTOPARTS_OPEN_BROWSER=false\n"), 0644)
	t.Setenv("AUTOPARTS_DATA_DIR", dir)
	for _, key := range []string{"AUTOPARTS_PORT", "AUTOPARTS_OPEN_BROWSER", "AUTOPARTS_DB_PATH"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	env, err := LoadEnv(envFile)
	if err != nil {
		t.Fatal(err)
	}
	if env.Port != "9090" || env.OpenBrowser || env.DBPath != filepath.Join(dir, "autoparts.db") {
		t.Errorf("env = %+v", env)
	}
}
