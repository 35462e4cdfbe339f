package reports

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"autoparts/automation"
	"autoparts/config"
	"autoparts/export"
	"autoparts/render"
	"autoparts/respond"

	"go.uber.org/zap"
)

const (
	FormatJSON = "json"
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// Document is a report ready to be delivered in any export format.
type Document struct {
	Title     string
	BaseName  string
	Tables    []export.Table
	Landscape bool
}

// Deliver writes doc in the format asked for with ?format= (csv, xlsx, html,
// pdf; default from settings). CSV carries the first table only.
// With ?save=true the file goes to the export folder instead of the response.
func Deliver(w http.ResponseWriter, r *http.Request, p *automation.Printer, doc Document) {
	cfg := config.GetConfig()
	q := r.URL.Query()

	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = cfg.DefaultExportFormat
	}
	encoding := q.Get("encoding")
	if encoding == "" {
		encoding = cfg.CSVEncoding
	}

	var buf bytes.Buffer
	var contentType string
	switch format {
	case export.FormatCSV:
		if len(doc.Tables) == 0 {
			respond.BadRequest(w, "Nothing to export")
			return
		}
		if err := export.WriteCSV(&buf, doc.Tables[0], encoding); err != nil {
			respond.BadRequest(w, err.Error())
			return
		}
		contentType = "text/csv"
	case export.FormatXLSX:
		if err := export.WriteXLSX(&buf, doc.Tables...); err != nil {
			respond.Error(w, err, "Failed to build workbook")
			return
		}
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatHTML, FormatPDF:
		html, err := render.ReportHTML(doc.Title, time.Now(), doc.Tables...)
		if err != nil {
			respond.Error(w, err, "Failed to render report")
			return
		}
		if format == FormatHTML {
			buf.Write(html)
			contentType = "text/html; charset=utf-8"
			break
		}
		pdf, err := p.PrintPDF(r.Context(), html, doc.Landscape)
		if err != nil {
			if errors.Is(err, automation.ErrNoBrowser) {
				respond.JSON(w, http.StatusServiceUnavailable, map[string]string{"error": automation.ErrNoBrowser.Error()})
				return
			}
			respond.Error(w, err, "Failed to print report")
			return
		}
		buf.Write(pdf)
		contentType = "application/pdf"
	default:
		respond.BadRequest(w, fmt.Sprintf("unsupported format %q", format))
		return
	}

	filename := fmt.Sprintf("%s_%s.%s", doc.BaseName, time.Now().Format("20060102_150405"), format)
	if q.Get("save") == "true" {
		path, err := saveExport(cfg.ExportDir, filename, buf.Bytes())
		if err != nil {
			respond.Error(w, err, "Failed to save export")
			return
		}
		respond.OK(w, map[string]string{"message": "Export saved", "path": path})
		return
	}

	w.Header().Set("Content-Type", contentType)
	export.Attachment(w, filename)
	w.Write(buf.Bytes())
}

func saveExport(dir, filename string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	if err := config.AddRecentFile(path); err != nil {
		zap.L().Named("reports").Warn("failed to remember recent file", zap.String("path", path), zap.Error(err))
	}
	zap.L().Named("reports").Info("export saved", zap.String("path", path))
	return path, nil
}
