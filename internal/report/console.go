package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Alias1177/Scanner/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const NoResults = "No momentum stocks found matching criteria."

var printer = message.NewPrinter(language.English)

// WriteTable prints candidates in the order given, followed by a strategy
// summary built from c.
func WriteTable(w io.Writer, stocks []models.Candidate, c models.Criteria) error {
	if len(stocks) == 0 {
		_, err := fmt.Fprintln(w, NoResults)
		return err
	}

	rule := strings.Repeat("-", 80)
	var b strings.Builder
	fmt.Fprintf(&b, "\nFound %d momentum stocks matching your strategy:\n", len(stocks))
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%-8s %-8s %-8s %-12s %-8s %-10s %-9s %-5s\n",
		"Symbol", "Price", "Gain %", "Volume", "Rel Vol", "Float(M)", "Catalyst", "News")
	b.WriteString(rule + "\n")

	catalysts := 0
	for _, s := range stocks {
		catalyst := "NO"
		if s.HasCatalyst {
			catalyst = "YES"
			catalysts++
		}
		fmt.Fprintf(&b, "%-8s %-8s %-8s %-12s %-8s %-10s %-9s %-5d\n",
			s.Symbol,
			fmt.Sprintf("$%.2f", s.Price),
			fmt.Sprintf("%.1f%%", s.ChangePct),
			printer.Sprintf("%d", s.Volume),
			fmt.Sprintf("%.1fx", s.RelativeVolume),
			fmt.Sprintf("%.1f", s.FloatMillions),
			catalyst,
			s.NewsCount,
		)
	}

	b.WriteString("\nStrategy Summary:\n")
	fmt.Fprintf(&b, "   - High gainers: All stocks up %g%%+ today\n", c.MinChangePct)
	fmt.Fprintf(&b, "   - Low float: All under %gM shares outstanding\n", c.MaxFloatMillions)
	fmt.Fprintf(&b, "   - High volume: All trading %gx+ normal volume\n", c.MinRelativeVolume)
	fmt.Fprintf(&b, "   - Price range: $%g-$%g (affordable entry)\n", c.MinPrice, c.MaxPrice)
	if catalysts > 0 {
		fmt.Fprintf(&b, "   - Catalysts detected: %d stocks have news catalysts\n", catalysts)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
