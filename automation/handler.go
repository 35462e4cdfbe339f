package automation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"autoparts/database"
	"autoparts/export"
	"autoparts/render"
	"autoparts/respond"

	"github.com/jmoiron/sqlx"
)

const maxHTMLSize = 8 << 20

func writePDF(w http.ResponseWriter, pdf []byte, filename string) {
	w.Header().Set("Content-Type", "application/pdf")
	export.Attachment(w, filename)
	w.Write(pdf)
}

func printError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNoBrowser) {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	respond.Error(w, err, "Failed to print PDF")
}

// PrintHTMLHandler prints an HTML document posted by the front-end.
// ?landscape=true switches the page orientation.
func PrintHTMLHandler(p *Printer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respond.MethodNotAllowed(w)
			return
		}
		html, err := io.ReadAll(io.LimitReader(r.Body, maxHTMLSize))
		if err != nil || len(html) == 0 {
			respond.BadRequest(w, "HTML document is required")
			return
		}
		pdf, err := p.PrintPDF(r.Context(), html, r.URL.Query().Get("landscape") == "true")
		if err != nil {
			printError(w, err)
			return
		}
		writePDF(w, pdf, "document.pdf")
	}
}

// PrintSaleHandler prints the customer copy of /api/print/sale/{id}.
func PrintSaleHandler(db *sqlx.DB, p *Printer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := respond.IDFromPath(r, "/api/print/sale/")
		if err != nil {
			respond.BadRequest(w, err.Error())
			return
		}
		sale, err := database.GetSaleByID(db, id)
		if err != nil {
			respond.Error(w, err, "Failed to get sale")
			return
		}

		html, err := render.ReportHTML(fmt.Sprintf("Sale #%d, %s", sale.ID, sale.Date), time.Now(), render.SaleTable(sale))
		if err != nil {
			respond.Error(w, err, "Failed to render sale")
			return
		}
		if r.URL.Query().Get("format") == "html" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(html)
			return
		}

		pdf, err := p.PrintPDF(r.Context(), html, false)
		if err != nil {
			printError(w, err)
			return
		}
		writePDF(w, pdf, fmt.Sprintf("sale_%d.pdf", sale.ID))
	}
}
