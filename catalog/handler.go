package catalog

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"autoparts/config"
	"autoparts/database"
	"autoparts/export"
	"autoparts/parsers"
	"autoparts/render"
	"autoparts/respond"

	"github.com/jmoiron/sqlx"
)

const maxUploadSize = 32 << 20

// ExportAllPartsHandler downloads the whole catalogue as CSV or XLSX.
func ExportAllPartsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts, err := database.GetAllParts(db)
		if err != nil {
			respond.Error(w, err, "Failed to get all parts")
			return
		}

		cfg := config.GetConfig()
		format := r.URL.Query().Get("format")
		if format == "" {
			format = cfg.DefaultExportFormat
		}
		encoding := r.URL.Query().Get("encoding")
		if encoding == "" {
			encoding = cfg.CSVEncoding
		}

		base := "parts_" + time.Now().Format("20060102")
		if err := export.Send(w, render.PartsTable(parts), format, encoding, base); err != nil {
			respond.BadRequest(w, err.Error())
		}
	}
}

// ImportAllPartsHandler reads an uploaded catalogue (form field "file") and
// upserts it by article. CSV encoding comes from ?encoding= or the settings.
func ImportAllPartsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			respond.MethodNotAllowed(w)
			return
		}
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			respond.BadRequest(w, "Failed to read upload: "+err.Error())
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			respond.BadRequest(w, "Failed to read uploaded file: "+err.Error())
			return
		}
		defer file.Close()

		encoding := r.URL.Query().Get("encoding")
		if encoding == "" {
			encoding = config.GetConfig().CSVEncoding
		}

		var (
			parts   []parsers.ParsedPart
			rowErrs []parsers.RowError
		)
		switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
		case ".xlsx":
			parts, rowErrs, err = parsers.ParsePartsXLSX(file)
		case ".csv", ".txt":
			parts, rowErrs, err = parsers.ParsePartsCSV(file, encoding)
		default:
			respond.BadRequest(w, fmt.Sprintf("unsupported file type %q, use .csv or .xlsx", ext))
			return
		}
		if err != nil {
			respond.BadRequest(w, "Failed to parse file: "+err.Error())
			return
		}

		result, err := Import(db, parts, rowErrs)
		if err != nil {
			respond.Error(w, err, "Failed to import parts")
			return
		}
		respond.OK(w, result)
	}
}
