package inventoryadjustment

import (
	"encoding/json"
	"net/http"
	"strconv"

	"autoparts/database"
	"autoparts/model"
	"autoparts/respond"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// InventoryData is what the stock-count screen shows for one part.
type InventoryData struct {
	Part    model.PartView          `json:"part"`
	History []model.StockAdjustment `json:"history"`
}

// GetInventoryDataHandler returns a part with its adjustment history for ?partId=.
func GetInventoryDataHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		partID, err := strconv.ParseInt(r.URL.Query().Get("partId"), 10, 64)
		if err != nil || partID <= 0 {
			respond.BadRequest(w, "partId is a required parameter")
			return
		}
		p, err := database.GetPartByID(db, partID)
		if err != nil {
			respond.Error(w, err, "Failed to get part")
			return
		}
		history, err := database.GetAdjustments(db, partID)
		if err != nil {
			respond.Error(w, err, "Failed to get adjustment history")
			return
		}
		respond.OK(w, InventoryData{Part: model.ToPartView(*p), History: history})
	}
}

// SavePayload carries the counted lines of a stock-taking session.
type SavePayload struct {
	Counts []model.StockCount `json:"counts"`
}

// SaveInventoryDataHandler applies counted quantities atomically.
func SaveInventoryDataHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respond.MethodNotAllowed(w)
			return
		}
		var payload SavePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respond.BadRequest(w, "Invalid request body")
			return
		}

		var (
			adjustments []model.StockAdjustment
			err         error
		)
		if len(payload.Counts) == 1 {
			var a *model.StockAdjustment
			c := payload.Counts[0]
			a, err = database.AdjustStock(db, c.PartID, c.CountedQuantity, c.Reason)
			if a != nil {
				adjustments = []model.StockAdjustment{*a}
			}
		} else {
			adjustments, err = database.AdjustStockBatch(db, payload.Counts)
		}
		if err != nil {
			respond.Error(w, err, "Failed to save stock count")
			return
		}

		zap.L().Named("inventory").Info("stock count saved",
			zap.Int("lines", len(payload.Counts)), zap.Int("adjusted", len(adjustments)))
		respond.OK(w, map[string]interface{}{
			"message":     "Stock count saved",
			"adjustments": adjustments,
		})
	}
}

// ListAdjustmentsHandler returns the adjustment log, optionally for ?partId=.
func ListAdjustmentsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var partID int64
		if raw := r.URL.Query().Get("partId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				respond.BadRequest(w, "partId must be an integer")
				return
			}
			partID = id
		}
		list, err := database.GetAdjustments(db, partID)
		if err != nil {
			respond.Error(w, err, "Failed to get adjustments")
			return
		}
		respond.OK(w, list)
	}
}
