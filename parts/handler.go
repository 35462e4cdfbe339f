package parts

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"autoparts/config"
	"autoparts/database"
	"autoparts/model"
	"autoparts/respond"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// PartsHandler serves the collection: GET lists or searches (?q=), POST creates.
func PartsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			list, err := database.SearchParts(db, r.URL.Query().Get("q"))
			if err != nil {
				respond.Error(w, err, "Failed to get parts")
				return
			}
			respond.OK(w, toViews(list))
		case http.MethodPost:
			var in model.PartInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				respond.BadRequest(w, "Invalid request body")
				return
			}
			p, err := database.CreatePart(db, in)
			if err != nil {
				respond.Error(w, err, "Failed to create part")
				return
			}
			respond.JSON(w, http.StatusCreated, model.ToPartView(*p))
		default:
			respond.MethodNotAllowed(w)
		}
	}
}

// PartHandler serves /api/parts/{id}.
func PartHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.IDFromPath(r, "/api/parts/")
		if err != nil {
			respond.BadRequest(w, err.Error())
			return
		}

		switch r.Method {
		case http.MethodGet:
			p, err := database.GetPartByID(db, id)
			if err != nil {
				respond.Error(w, err, "Failed to get part")
				return
			}
			respond.OK(w, model.ToPartView(*p))
		case http.MethodPut:
			var in model.PartInput
			if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
				respond.BadRequest(w, "Invalid request body")
				return
			}
			p, err := database.UpdatePart(db, id, in)
			if err != nil {
				respond.Error(w, err, "Failed to update part")
				return
			}
			respond.OK(w, model.ToPartView(*p))
		case http.MethodDelete:
			if err := database.DeletePart(db, id); err != nil {
				respond.Error(w, err, "Failed to delete part")
				return
			}
			respond.Message(w, "Part deleted")
		default:
			respond.MethodNotAllowed(w)
		}
	}
}

func GetPartByArticleHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		article := strings.TrimPrefix(r.URL.Path, "/api/parts/by_article/")
		if article == "" {
			respond.BadRequest(w, "Article is required")
			return
		}
		p, err := database.GetPartByArticle(db, article)
		if err != nil {
			respond.Error(w, err, "Failed to get part")
			return
		}
		respond.OK(w, model.ToPartView(*p))
	}
}

func InStockHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := database.GetPartsInStock(db)
		if err != nil {
			respond.Error(w, err, "Failed to get parts in stock")
			return
		}
		respond.OK(w, toViews(list))
	}
}

// LowStockHandler uses ?threshold= or the configured low stock threshold.
func LowStockHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		threshold := config.GetConfig().LowStockThreshold
		if raw := r.URL.Query().Get("threshold"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				respond.BadRequest(w, "threshold must be a non-negative integer")
				return
			}
			threshold = n
		}
		list, err := database.GetLowStockParts(db, threshold)
		if err != nil {
			respond.Error(w, err, "Failed to get low stock parts")
			return
		}
		respond.OK(w, map[string]interface{}{"threshold": threshold, "parts": toViews(list)})
	}
}

func CategoriesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := database.GetCategories(db)
		if err != nil {
			respond.Error(w, err, "Failed to get categories")
			return
		}
		respond.OK(w, values)
	}
}

func BrandsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values, err := database.GetBrands(db)
		if err != nil {
			respond.Error(w, err, "Failed to get brands")
			return
		}
		respond.OK(w, values)
	}
}

// CheckArticleHandler answers whether ?article= is free, ignoring ?excludeId=.
func CheckArticleHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		article := strings.TrimSpace(q.Get("article"))
		if article == "" {
			respond.BadRequest(w, "Article is required")
			return
		}
		var excludeID int64
		if raw := q.Get("excludeId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				respond.BadRequest(w, "excludeId must be an integer")
				return
			}
			excludeID = id
		}
		available, err := database.IsArticleAvailable(db, article, excludeID)
		if err != nil {
			respond.Error(w, err, "Failed to check article")
			return
		}
		respond.OK(w, map[string]interface{}{"article": article, "available": available})
	}
}

// SellPriceHandler computes a sell price from ?buy= and ?markup= (percent).
func SellPriceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buy, markup, ok := decimalParams(w, r, "buy", "markup")
		if !ok {
			return
		}
		respond.OK(w, map[string]decimal.Decimal{
			"buyPrice":      buy,
			"markupPercent": markup,
			"sellPrice":     model.SellPriceForMarkup(buy, markup),
		})
	}
}

// MarkupHandler computes the markup percent from ?buy= and ?sell=.
func MarkupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buy, sell, ok := decimalParams(w, r, "buy", "sell")
		if !ok {
			return
		}
		respond.OK(w, map[string]decimal.Decimal{
			"buyPrice":      buy,
			"sellPrice":     sell,
			"markupPercent": model.MarkupPercent(buy, sell),
		})
	}
}

func decimalParams(w http.ResponseWriter, r *http.Request, names ...string) (decimal.Decimal, decimal.Decimal, bool) {
	values := make([]decimal.Decimal, len(names))
	for i, name := range names {
		v, err := decimal.NewFromString(strings.TrimSpace(r.URL.Query().Get(name)))
		if err != nil {
			respond.BadRequest(w, name+" must be a number")
			return decimal.Zero, decimal.Zero, false
		}
		if v.IsNegative() {
			respond.BadRequest(w, name+" must not be negative")
			return decimal.Zero, decimal.Zero, false
		}
		values[i] = v
	}
	return values[0], values[1], true
}

func toViews(list []model.Part) []model.PartView {
	views := make([]model.PartView, 0, len(list))
	for _, p := range list {
		views = append(views, model.ToPartView(p))
	}
	return views
}
