// Package respond writes JSON responses and maps data-layer errors to HTTP statuses.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"autoparts/database"

	"go.uber.org/zap"
)

func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Named("http").Warn("failed to encode response", zap.Error(err))
	}
}

func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Message sends {"message": msg} the way the UI expects simple acknowledgements.
func Message(w http.ResponseWriter, msg string) {
	OK(w, map[string]string{"message": msg})
}

// StatusFor picks the HTTP status for an error returned by the database package.
func StatusFor(err error) int {
	var stockErr *database.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return http.StatusConflict
	case errors.Is(err, database.ErrPartNotFound),
		errors.Is(err, database.ErrSaleNotFound),
		errors.Is(err, database.ErrReceiptNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrDuplicateArticle),
		errors.Is(err, database.ErrPartInUse):
		return http.StatusConflict
	case errors.Is(err, database.ErrInvalidInput),
		errors.Is(err, database.ErrEmptyDocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error reports err as {"error": ...}. Internal errors are logged and hidden behind msg.
func Error(w http.ResponseWriter, err error, msg string) {
	status := StatusFor(err)
	text := err.Error()
	if status == http.StatusInternalServerError {
		zap.L().Named("http").Error(msg, zap.Error(err))
		text = msg
	}

	body := map[string]interface{}{"error": text}
	var stockErr *database.InsufficientStockError
	if errors.As(err, &stockErr) {
		body["partId"] = stockErr.PartID
		body["available"] = stockErr.Available
		body["requested"] = stockErr.Requested
	}
	JSON(w, status, body)
}

// BadRequest reports a malformed request.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func MethodNotAllowed(w http.ResponseWriter) {
	JSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method Not Allowed"})
}

// IDFromPath parses the trailing path segment after prefix as an id.
func IDFromPath(r *http.Request, prefix string) (int64, error) {
	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id: " + raw)
	}
	return id, nil
}
