package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"autoparts/model"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// PartColumns is the column layout of a parts catalogue file.
var PartColumns = []string{
	"article", "name", "brand", "car_model", "category",
	"quantity", "buy_price", "sell_price", "description",
}

var requiredPartColumns = []string{"article", "name", "brand", "car_model", "category", "buy_price", "sell_price"}

// ParsedPart is one catalogue row. HasQuantity is false when the file has no
// quantity column, so an import keeps the stored stock.
type ParsedPart struct {
	Line        int
	Input       model.PartInput
	HasQuantity bool
}

// RowError describes a row that could not be read.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// ParsePartsCSV reads a parts catalogue CSV in the given encoding. Bad rows
// are returned as RowErrors next to the good ones.
func ParsePartsCSV(r io.Reader, encoding string) ([]ParsedPart, []RowError, error) {
	decoded, err := Decode(r, encoding)
	if err != nil {
		return nil, nil, err
	}
	reader := csv.NewReader(decoded)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.New("CSV file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	var rows [][]string
	var rowErrs []RowError
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = append(rowErrs, RowError{Line: line, Message: err.Error()})
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, rec)
	}

	parts, errs, err := parsePartRows(header, rows)
	if err != nil {
		return nil, nil, err
	}
	return parts, append(rowErrs, errs...), nil
}

// ParsePartsXLSX reads the first sheet of a workbook with the same columns as the CSV.
func ParsePartsXLSX(r io.Reader) ([]ParsedPart, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("workbook is empty")
	}
	return parsePartRows(rows[0], rows[1:])
}

// parsePartRows converts data rows; a nil row is a placeholder for a line
// the reader already reported.
func parsePartRows(header []string, rows [][]string) ([]ParsedPart, []RowError, error) {
	colIndex, err := getColIndex(header, requiredPartColumns)
	if err != nil {
		return nil, nil, err
	}
	_, hasQuantity := colIndex["quantity"]

	var parts []ParsedPart
	var rowErrs []RowError
	for i, row := range rows {
		line := i + 2
		if row == nil || isBlank(row) {
			continue
		}

		get := func(key string) string {
			if idx, ok := colIndex[key]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		in := model.PartInput{
			Article:     get("article"),
			Name:        get("name"),
			Brand:       get("brand"),
			CarModel:    get("car_model"),
			Category:    get("category"),
			Description: get("description"),
		}

		var problems []string
		if in.BuyPrice, err = parseMoney(get("buy_price")); err != nil {
			problems = append(problems, "buy_price: "+err.Error())
		}
		if in.SellPrice, err = parseMoney(get("sell_price")); err != nil {
			problems = append(problems, "sell_price: "+err.Error())
		}
		if hasQuantity && get("quantity") != "" {
			if in.Quantity, err = strconv.Atoi(get("quantity")); err != nil {
				problems = append(problems, "quantity: not an integer")
			}
		}
		if err := in.Validate(); err != nil && len(problems) == 0 {
			problems = append(problems, strings.ReplaceAll(err.Error(), "\n", "; "))
		}
		if len(problems) > 0 {
			rowErrs = append(rowErrs, RowError{Line: line, Message: strings.Join(problems, "; ")})
			continue
		}

		parts = append(parts, ParsedPart{Line: line, Input: in, HasQuantity: hasQuantity && get("quantity") != ""})
	}
	return parts, rowErrs, nil
}

// parseMoney accepts both "12.50" and "12,50".
func parseMoney(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")
	if s == "" {
		return decimal.Zero, errors.New("empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}
	return d, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
