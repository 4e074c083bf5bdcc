package screener

import (
	"strings"

	"github.com/Alias1177/Scanner/models"
)

var catalystKeywords = []string{
	"earnings", "fda", "approval", "acquisition", "merger", "partnership",
	"contract", "breakthrough", "clinical", "trial", "results", "guidance",
	"upgrade", "downgrade", "analyst", "buyout", "dividend", "split",
	"patent", "launch", "expansion", "revenue", "beat", "miss",
}

// DetectCatalyst reports whether any article mentions a catalyst keyword
func DetectCatalyst(news []models.NewsItem) bool {
	for _, article := range news {
		headline := strings.ToLower(article.Headline)
		summary := strings.ToLower(article.Summary)
		for _, kw := range catalystKeywords {
			if strings.Contains(headline, kw) || strings.Contains(summary, kw) {
				return true
			}
		}
	}
	return false
}
