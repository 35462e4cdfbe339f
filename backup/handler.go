package backup

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"autoparts/respond"
)

type restoreRequest struct {
	Name string `json:"name"`
}

func writeError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrNotBackup):
		respond.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.JSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		respond.Error(w, err, msg)
	}
}

// BackupsHandler lists backups (GET) or creates one now (POST).
func BackupsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list, err := svc.List()
			if err != nil {
				writeError(w, err, "Failed to list backups")
				return
			}
			respond.OK(w, list)
		case http.MethodPost:
			info, err := svc.Create(r.Context())
			if err != nil {
				writeError(w, err, "Failed to create backup")
				return
			}
			respond.JSON(w, http.StatusCreated, info)
		default:
			respond.MethodNotAllowed(w)
		}
	}
}

// BackupHandler deletes the backup named in /api/backups/{name}.
func BackupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			respond.MethodNotAllowed(w)
			return
		}
		name := strings.TrimPrefix(r.URL.Path, "/api/backups/")
		if err := svc.Delete(name); err != nil {
			writeError(w, err, "Failed to delete backup")
			return
		}
		respond.Message(w, "Backup deleted")
	}
}

// RestoreHandler restores the database from a backup in the backup folder.
func RestoreHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respond.MethodNotAllowed(w)
			return
		}
		var req restoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.BadRequest(w, "Invalid request body")
			return
		}
		path, err := svc.Path(req.Name)
		if err != nil {
			writeError(w, err, "Failed to restore backup")
			return
		}
		safety, err := svc.Restore(r.Context(), path)
		if err != nil {
			writeError(w, err, "Failed to restore backup")
			return
		}
		respond.OK(w, map[string]interface{}{
			"message": "Database restored from " + req.Name,
			"safety":  safety,
		})
	}
}

// CleanupHandler keeps the newest ?keep= backups (default from the settings passed in).
func CleanupHandler(svc *Service, defaultKeep func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respond.MethodNotAllowed(w)
			return
		}
		keep := defaultKeep()
		if v := r.URL.Query().Get("keep"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				respond.BadRequest(w, "keep must be a positive integer")
				return
			}
			keep = n
		}
		removed, err := svc.Cleanup(keep)
		if err != nil {
			writeError(w, err, "Failed to clean up backups")
			return
		}
		respond.OK(w, map[string]int{"removed": removed, "kept": keep})
	}
}
