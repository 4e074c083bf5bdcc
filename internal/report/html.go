package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"time"

	"github.com/Alias1177/Scanner/models"
)

//go:embed report.html.tmpl
var reportSource string

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"thousands": func(n int64) string { return printer.Sprintf("%d", n) },
}).Parse(reportSource))

type htmlData struct {
	Criteria    models.Criteria
	Stocks      []models.Candidate
	GeneratedAt string
}

// WriteHTML renders the screener report
func WriteHTML(w io.Writer, stocks []models.Candidate, c models.Criteria, generatedAt time.Time) error {
	return reportTemplate.Execute(w, htmlData{
		Criteria:    c,
		Stocks:      stocks,
		GeneratedAt: generatedAt.Format("2006-01-02 15:04:05"),
	})
}

// WriteHTMLFile renders the report into path
func WriteHTMLFile(path string, stocks []models.Candidate, c models.Criteria, generatedAt time.Time) error {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, stocks, c, generatedAt); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
