package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"autoparts/backup"
	"autoparts/config"
	"autoparts/respond"

	"go.uber.org/zap"
)

// ConfigHandler returns the settings (GET) or saves them (POST). Saving
// reschedules the automatic backup.
func ConfigHandler(sched *backup.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			respond.OK(w, config.GetConfig())
		case http.MethodPost:
			var newCfg config.Config
			if err := json.NewDecoder(r.Body).Decode(&newCfg); err != nil {
				respond.BadRequest(w, "Invalid request body")
				return
			}
			for _, dir := range []string{newCfg.BackupDir, newCfg.ExportDir} {
				if err := ensureFolder(dir); err != nil {
					respond.BadRequest(w, err.Error())
					return
				}
			}
			if err := newCfg.Validate(); err != nil {
				respond.BadRequest(w, err.Error())
				return
			}
			if err := config.SaveConfig(newCfg); err != nil {
				zap.L().Named("http").Error("failed to save config", zap.Error(err))
				respond.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to save settings"})
				return
			}
			applySchedule(sched)
			respond.Message(w, "Settings saved")
		default:
			respond.MethodNotAllowed(w)
		}
	}
}

// ResetConfigHandler restores the default settings.
func ResetConfigHandler(sched *backup.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respond.MethodNotAllowed(w)
			return
		}
		cfg, err := config.ResetConfig()
		if err != nil {
			zap.L().Named("http").Error("failed to reset config", zap.Error(err))
			respond.JSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to reset settings"})
			return
		}
		applySchedule(sched)
		respond.OK(w, cfg)
	}
}

type windowGeometry struct {
	Name     string `json:"name"`
	Geometry string `json:"geometry"`
}

// WindowGeometryHandler remembers the layout of a named window.
func WindowGeometryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respond.MethodNotAllowed(w)
			return
		}
		var req windowGeometry
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			respond.BadRequest(w, "name and geometry are required")
			return
		}
		if err := config.SetWindowGeometry(req.Name, req.Geometry); err != nil {
			respond.BadRequest(w, err.Error())
			return
		}
		respond.Message(w, "Saved")
	}
}

func applySchedule(sched *backup.Scheduler) {
	if sched == nil {
		return
	}
	if err := sched.Apply(config.GetConfig()); err != nil {
		zap.L().Named("backup").Warn("failed to reschedule automatic backup", zap.Error(err))
	}
}

// ensureFolder creates a missing folder and rejects a path that is not one.
func ensureFolder(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("cannot create folder %s: %w", path, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot check folder %s: %w", path, err)
	}
	if !info.IsDir() {
		return errors.New("path is not a folder: " + path)
	}
	return nil
}
