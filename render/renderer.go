package render

import (
	"bytes"
	"html/template"
	"time"

	"autoparts/export"
)

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{"isNumber": isNumber}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: "Segoe UI", Arial, sans-serif; font-size: 12px; margin: 16px; }
  h1 { font-size: 18px; margin: 0 0 4px; }
  .generated { color: #666; margin-bottom: 12px; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 16px; }
  th, td { border: 1px solid #999; padding: 3px 6px; }
  th { background: #eee; text-align: left; }
  td.num { text-align: right; }
  tfoot td { font-weight: bold; background: #f6f6f6; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="generated">{{.Generated}}</div>
{{range .Tables}}
{{if .Title}}<h2>{{.Title}}</h2>{{end}}
<table>
  <thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
  <tbody>
  {{- range .Rows}}
    <tr>{{range .}}<td{{if isNumber .}} class="num"{{end}}>{{.}}</td>{{end}}</tr>
  {{- else}}
    <tr><td colspan="{{len .Headers}}">No data.</td></tr>
  {{- end}}
  </tbody>
  {{- if .Footer}}
  <tfoot>
  {{- range .Footer}}
    <tr>{{range .}}<td{{if isNumber .}} class="num"{{end}}>{{.}}</td>{{end}}</tr>
  {{- end}}
  </tfoot>
  {{- end}}
</table>
{{end}}
</body>
</html>
`))

// ReportHTML renders a printable page holding one or more tables.
func ReportHTML(title string, generated time.Time, tables ...export.Table) ([]byte, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		Title     string
		Generated string
		Tables    []export.Table
	}{
		Title:     title,
		Generated: "Generated " + generated.Format("2006-01-02 15:04"),
		Tables:    tables,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	digits := 0
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == ',':
		case r == '-' && i == 0:
		default:
			return false
		}
	}
	return digits > 0
}
