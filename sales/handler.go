package sales

import (
	"encoding/json"
	"net/http"

	"autoparts/database"
	"autoparts/model"
	"autoparts/respond"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SalePayload is the cart submitted by the point-of-sale screen.
type SalePayload struct {
	Items []model.SaleItemInput `json:"items"`
	Paid  *decimal.Decimal      `json:"paid,omitempty"`
}

// SaleResponse adds the change due to the stored sale.
type SaleResponse struct {
	*model.Sale
	Change decimal.Decimal `json:"change"`
}

// SalesHandler lists sales (GET, optional ?start=&end=) and records new ones (POST).
func SalesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			q := r.URL.Query()
			list, err := database.GetSalesByDate(db, q.Get("start"), q.Get("end"))
			if err != nil {
				respond.Error(w, err, "Failed to get sales")
				return
			}
			respond.OK(w, list)
		case http.MethodPost:
			var payload SalePayload
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
				respond.BadRequest(w, "Invalid request body")
				return
			}
			sale, err := database.CreateSale(db, payload.Items, payload.Paid)
			if err != nil {
				respond.Error(w, err, "Failed to save sale")
				return
			}
			zap.L().Named("sales").Info("sale recorded",
				zap.Int64("id", sale.ID), zap.String("total", sale.Total.StringFixed(2)), zap.Int("lines", len(sale.Items)))

			resp := SaleResponse{Sale: sale}
			if sale.Paid.Valid {
				resp.Change = database.CalculateChange(sale.Total, sale.Paid.Decimal)
			}
			respond.JSON(w, http.StatusCreated, resp)
		default:
			respond.MethodNotAllowed(w)
		}
	}
}

// SaleHandler serves /api/sales/{id}: GET returns the sale with items, DELETE voids it.
func SaleHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.IDFromPath(r, "/api/sales/")
		if err != nil {
			respond.BadRequest(w, err.Error())
			return
		}
		switch r.Method {
		case http.MethodGet:
			sale, err := database.GetSaleByID(db, id)
			if err != nil {
				respond.Error(w, err, "Failed to get sale")
				return
			}
			respond.OK(w, sale)
		case http.MethodDelete:
			if err := database.VoidSale(db, id); err != nil {
				respond.Error(w, err, "Failed to void sale")
				return
			}
			zap.L().Named("sales").Info("sale voided", zap.Int64("id", id))
			respond.Message(w, "Sale voided")
		default:
			respond.MethodNotAllowed(w)
		}
	}
}

// ValidateSaleHandler checks a cart without saving it.
func ValidateSaleHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respond.MethodNotAllowed(w)
			return
		}
		var payload SalePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			respond.BadRequest(w, "Invalid request body")
			return
		}
		problems, err := database.ValidateSaleItems(db, payload.Items)
		if err != nil {
			respond.Error(w, err, "Failed to validate sale")
			return
		}
		if problems == nil {
			problems = []string{}
		}
		respond.OK(w, map[string]interface{}{"valid": len(problems) == 0, "problems": problems})
	}
}

// ChangeHandler computes the change for ?total= and ?paid=.
func ChangeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		total, err := decimal.NewFromString(q.Get("total"))
		if err != nil {
			respond.BadRequest(w, "total must be a number")
			return
		}
		paid, err := decimal.NewFromString(q.Get("paid"))
		if err != nil {
			respond.BadRequest(w, "paid must be a number")
			return
		}
		respond.OK(w, map[string]interface{}{
			"change":     database.CalculateChange(total, paid),
			"sufficient": paid.GreaterThanOrEqual(total),
		})
	}
}
