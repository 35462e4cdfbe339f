package receipts

import (
	"encoding/json"
	"net/http"

	"autoparts/database"
	"autoparts/model"
	"autoparts/respond"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ReceiptsHandler lists receipts (GET, optional ?start=&end=) and records deliveries (POST).
func ReceiptsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			q := r.URL.Query()
			list, err := database.GetReceiptsByDate(db, q.Get("start"), q.Get("end"))
			if err != nil {
				respond.Error(w, err, "Failed to get receipts")
				return
			}
			respond.OK(w, list)
		case http.MethodPost:
			var in model.ReceiptInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				respond.BadRequest(w, "Invalid request body")
				return
			}
			receipt, err := database.CreateReceipt(db, in)
			if err != nil {
				respond.Error(w, err, "Failed to save receipt")
				return
			}
			zap.L().Named("receipts").Info("receipt recorded",
				zap.Int64("id", receipt.ID), zap.String("supplier", receipt.Supplier),
				zap.String("total", receipt.Total.StringFixed(2)))
			respond.JSON(w, http.StatusCreated, receipt)
		default:
			respond.MethodNotAllowed(w)
		}
	}
}

// ReceiptHandler serves /api/receipts/{id}: GET with items, DELETE voids.
func ReceiptHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.IDFromPath(r, "/api/receipts/")
		if err != nil {
			respond.BadRequest(w, err.Error())
			return
		}
		switch r.Method {
		case http.MethodGet:
			receipt, err := database.GetReceiptByID(db, id)
			if err != nil {
				respond.Error(w, err, "Failed to get receipt")
				return
			}
			respond.OK(w, receipt)
		case http.MethodDelete:
			if err := database.VoidReceipt(db, id); err != nil {
				respond.Error(w, err, "Failed to void receipt")
				return
			}
			zap.L().Named("receipts").Info("receipt voided", zap.Int64("id", id))
			respond.Message(w, "Receipt voided")
		default:
			respond.MethodNotAllowed(w)
		}
	}
}

func SuppliersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		suppliers, err := database.GetSuppliers(db)
		if err != nil {
			respond.Error(w, err, "Failed to get suppliers")
			return
		}
		respond.OK(w, suppliers)
	}
}
