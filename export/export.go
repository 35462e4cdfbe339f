// Package export turns tabular data into downloadable CSV and XLSX files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Table is a titled grid of already formatted cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Footer rows are written after the data, e.g. totals.
	Footer [][]string
}

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteCSV writes t as CSV. UTF-8 output starts with a BOM so spreadsheet
// programs detect it; windows-1251 is written for older Excel setups.
func WriteCSV(w io.Writer, t Table, encoding string) error {
	var out io.Writer
	var closer io.Closer
	switch strings.ToLower(encoding) {
	case "", "utf-8":
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return err
		}
		out = w
	case "windows-1251":
		tw := transform.NewWriter(w, charmap.Windows1251.NewEncoder())
		out, closer = tw, tw
	default:
		return fmt.Errorf("unsupported encoding %q", encoding)
	}

	writer := csv.NewWriter(out)
	writer.UseCRLF = true
	if err := writer.Write(t.Headers); err != nil {
		return err
	}
	for _, rows := range [][][]string{t.Rows, t.Footer} {
		if err := writer.WriteAll(rows); err != nil {
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	if closer != nil {
		return closer.Close()
	}
	return nil
}

// WriteXLSX writes one sheet per table into a new workbook.
func WriteXLSX(w io.Writer, tables ...Table) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, t := range tables {
		sheet := sheetName(t.Title, i)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return err
		}

		all := append([][]string{t.Headers}, t.Rows...)
		all = append(all, t.Footer...)
		for r, row := range all {
			cells := make([]interface{}, len(row))
			for c, v := range row {
				cells[c] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
				return err
			}
		}

		if len(t.Headers) > 0 {
			last, _ := excelize.CoordinatesToCellName(len(t.Headers), 1)
			if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
				return err
			}
		}
	}
	return f.Write(w)
}

// sheetName keeps within Excel's 31 character limit and its forbidden characters.
func sheetName(title string, i int) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

// Send writes t to the response in format, as an attachment named base.csv or base.xlsx.
func Send(w http.ResponseWriter, t Table, format, encoding, base string) error {
	var buf bytes.Buffer
	var contentType string
	switch format {
	case FormatXLSX:
		if err := WriteXLSX(&buf, t); err != nil {
			return err
		}
		contentType = xlsxContentType
	case FormatCSV, "":
		format = FormatCSV
		if err := WriteCSV(&buf, t, encoding); err != nil {
			return err
		}
		contentType = "text/csv; charset=" + charsetName(encoding)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}

	w.Header().Set("Content-Type", contentType)
	Attachment(w, base+"."+format)
	_, err := w.Write(buf.Bytes())
	return err
}

// Attachment sets a Content-Disposition that survives non-ASCII file names.
func Attachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
}

func charsetName(encoding string) string {
	if strings.EqualFold(encoding, "windows-1251") {
		return "windows-1251"
	}
	return "utf-8"
}
