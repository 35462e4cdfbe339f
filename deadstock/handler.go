package deadstock

import (
	"net/http"
	"strconv"

	"autoparts/automation"
	"autoparts/database"
	"autoparts/export"
	"autoparts/model"
	"autoparts/reports"
	"autoparts/render"
	"autoparts/respond"

	"github.com/jmoiron/sqlx"
)

const defaultDays = 90

// DeadStockListResponse is the slow moving list with the cut-off it was computed for.
type DeadStockListResponse struct {
	Since string                 `json:"since"`
	Items []model.SlowMovingPart `json:"items"`
}

// sinceParam reads ?since=YYYY-MM-DD, or ?days=N counted back from today.
func sinceParam(r *http.Request) (string, bool) {
	q := r.URL.Query()
	if since := q.Get("since"); since != "" {
		return since, true
	}
	days := defaultDays
	if raw := q.Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return "", false
		}
		days = n
	}
	return database.Now().AddDate(0, 0, -days).Format(model.DateLayout), true
}

// ListDeadStockHandler lists parts in stock without sales since the cut-off.
func ListDeadStockHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, ok := sinceParam(r)
		if !ok {
			respond.BadRequest(w, "days must be a non-negative integer")
			return
		}
		items, err := database.GetSlowMovingParts(db, since)
		if err != nil {
			respond.Error(w, err, "Failed to get slow moving parts")
			return
		}
		respond.OK(w, DeadStockListResponse{Since: since, Items: items})
	}
}

func ExportDeadStockHandler(db *sqlx.DB, p *automation.Printer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		since, ok := sinceParam(r)
		if !ok {
			respond.BadRequest(w, "days must be a non-negative integer")
			return
		}
		items, err := database.GetSlowMovingParts(db, since)
		if err != nil {
			respond.Error(w, err, "Failed to get slow moving parts for export")
			return
		}
		reports.Deliver(w, r, p, reports.Document{
			Title:    "Parts without sales since " + since,
			BaseName: "slow_moving",
			Tables:   []export.Table{render.SlowMovingTable(items)},
		})
	}
}
