package report

import (
	"html/template"
	"strings"
	"time"

	"github.com/veritrack/veritrack/internal/verification"
)

var entriesTemplate = template.Must(template.New("entries").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Verification entries</title>
<style>
body { font-family: sans-serif; font-size: 11px; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 3px 5px; text-align: left; }
h1 { font-size: 16px; }
</style>
</head>
<body>
<h1>Verification entries</h1>
<p>Generated {{.GeneratedAt}} &middot; {{.Count}} entries</p>
<table>
<thead>
<tr><th>Date</th><th>Valid until</th><th>Factory no.</th><th>Water</th><th>Result</th><th>Employee</th><th>City</th><th>Act</th><th>Address</th><th>Client</th><th>Phone</th></tr>
</thead>
<tbody>
{{range .Rows}}
<tr><td>{{index . 0}}</td><td>{{index . 1}}</td><td>{{index . 2}}</td><td>{{index . 4}}</td><td>{{index . 5}}</td><td>{{index . 6}}</td><td>{{index . 7}}</td><td>{{index . 8}}</td><td>{{index . 9}}</td><td>{{index . 10}}</td><td>{{index . 11}}</td></tr>
{{end}}
</tbody>
</table>
</body>
</html>`))

// EntriesHTML renders verification entries as a printable document for
// PDF conversion.
func EntriesHTML(entries []verification.Entry, now time.Time) (string, error) {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, entryRecord(entry))
	}
	data := struct {
		GeneratedAt string
		Count       int
		Rows        [][]string
	}{
		GeneratedAt: now.Format("02.01.2006 15:04"),
		Count:       len(entries),
		Rows:        rows,
	}
	var b strings.Builder
	if err := entriesTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
