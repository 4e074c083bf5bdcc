package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Alias1177/Scanner/models"
)

var sample = []models.Candidate{
	{Symbol: "ABCD", Price: 6.5, ChangePct: 32.4, Volume: 12345678, RelativeVolume: 8.2, FloatMillions: 9.1, HasCatalyst: true, NewsCount: 3},
	{Symbol: "WXYZ", Price: 3.1, ChangePct: 12, Volume: 900000, RelativeVolume: 5.5, FloatMillions: 14, NewsCount: 0},
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, sample, models.DefaultCriteria()); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Found 2 momentum stocks",
		"12,345,678",
		"$6.50",
		"32.4%",
		"8.2x",
		"YES",
		"up 10%+ today",
		"Price range: $2-$20",
		"Catalysts detected: 1 stocks",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "ABCD") > strings.Index(out, "WXYZ") {
		t.Error("table reordered the input")
	}
}

func TestWriteTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, nil, models.DefaultCriteria()); err != nil {
		t.Fatalf("WriteTable() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != NoResults {
		t.Errorf("WriteTable(nil) = %q", buf.String())
	}
}

func TestWriteHTML(t *testing.T) {
	ts := time.Date(2024, 3, 8, 15, 4, 5, 0, time.UTC)

	t.Run("With results", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteHTML(&buf, sample, models.DefaultCriteria(), ts); err != nil {
			t.Fatalf("WriteHTML() error = %v", err)
		}
		out := buf.String()
		for _, want := range []string{
			"<strong>2</strong> stocks found",
			`<td class="symbol">ABCD</td>`,
			"+32.4%",
			"12,345,678",
			"Low Float: &lt;20M shares",
			"Generated on 2024-03-08 15:04:05",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("report missing %q", want)
			}
		}
		if strings.Contains(out, "no-results\">") {
			t.Error("report shows the no-results block")
		}
	})

	t.Run("No results", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteHTML(&buf, nil, models.DefaultCriteria(), ts); err != nil {
			t.Fatalf("WriteHTML() error = %v", err)
		}
		if !strings.Contains(buf.String(), "No stocks found matching the specified criteria.") {
			t.Error("report missing the no-results block")
		}
	})

	t.Run("Escapes symbols", func(t *testing.T) {
		var buf bytes.Buffer
		evil := []models.Candidate{{Symbol: "<b>X</b>"}}
		if err := WriteHTML(&buf, evil, models.DefaultCriteria(), ts); err != nil {
			t.Fatalf("WriteHTML() error = %v", err)
		}
		if strings.Contains(buf.String(), "<b>X</b>") {
			t.Error("symbol was not escaped")
		}
	})
}

func TestWriteHTMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteHTMLFile(path, sample, models.DefaultCriteria(), time.Now()); err != nil {
		t.Fatalf("WriteHTMLFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("<!DOCTYPE html>")) {
		t.Errorf("file starts with %q", data[:20])
	}
}
