package screener

import (
	"fmt"
	"math"
	"sort"

	"github.com/Alias1177/Scanner/models"
)

// MeetsBasic is the cheap first pass run before any per-ticker lookups.
// It returns the reason for a rejection.
func MeetsBasic(price float64, volume int64, changePct float64, c models.Criteria) (bool, string) {
	if price < c.MinPrice || price > c.MaxPrice {
		return false, fmt.Sprintf("price %.2f outside $%.2f-$%.2f", price, c.MinPrice, c.MaxPrice)
	}
	if volume < c.MinVolume {
		return false, fmt.Sprintf("volume %d < %d", volume, c.MinVolume)
	}
	if changePct < c.MinChangePct {
		return false, fmt.Sprintf("change %.1f%% < %.1f%%", changePct, c.MinChangePct)
	}
	return true, ""
}

// MeetsMomentum applies the full momentum strategy to an enriched candidate
func MeetsMomentum(s models.Candidate, c models.Criteria) (bool, string) {
	if s.ChangePct < c.MinChangePct {
		return false, fmt.Sprintf("change %.1f%% < %.1f%%", s.ChangePct, c.MinChangePct)
	}
	if s.Price < c.MinPrice || s.Price > c.MaxPrice {
		return false, fmt.Sprintf("price %.2f outside $%.2f-$%.2f", s.Price, c.MinPrice, c.MaxPrice)
	}
	if s.FloatMillions > c.MaxFloatMillions {
		return false, fmt.Sprintf("float %.1fM > %.1fM", s.FloatMillions, c.MaxFloatMillions)
	}
	if s.RelativeVolume < c.MinRelativeVolume {
		return false, fmt.Sprintf("rvol %.1fx < %.1fx", s.RelativeVolume, c.MinRelativeVolume)
	}
	if c.RequireCatalyst && !s.HasCatalyst {
		return false, "no catalyst"
	}
	return true, ""
}

// Filter keeps the candidates that pass MeetsMomentum
func Filter(stocks []models.Candidate, c models.Criteria) []models.Candidate {
	out := make([]models.Candidate, 0, len(stocks))
	for _, s := range stocks {
		if ok, _ := MeetsMomentum(s, c); ok {
			out = append(out, s)
		}
	}
	return out
}

// SortByChange orders by percentage gain, biggest first. Ties go by symbol.
func SortByChange(stocks []models.Candidate) {
	sort.SliceStable(stocks, func(i, j int) bool {
		if stocks[i].ChangePct != stocks[j].ChangePct {
			return stocks[i].ChangePct > stocks[j].ChangePct
		}
		return stocks[i].Symbol < stocks[j].Symbol
	})
}

// Limit truncates to n entries; n <= 0 means no limit
func Limit(stocks []models.Candidate, n int) []models.Candidate {
	if n <= 0 || len(stocks) <= n {
		return stocks
	}
	return stocks[:n]
}

// Validate rejects criteria that can never match
func Validate(c models.Criteria) error {
	// NaN compares false against everything and would pass every stock
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"min price", c.MinPrice},
		{"max price", c.MaxPrice},
		{"min change", c.MinChangePct},
		{"max float", c.MaxFloatMillions},
		{"min relative volume", c.MinRelativeVolume},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s must be a finite number", f.name)
		}
	}
	if c.MinPrice < 0 || c.MaxPrice < 0 {
		return fmt.Errorf("price bounds must be non-negative")
	}
	if c.MaxPrice < c.MinPrice {
		return fmt.Errorf("max price %.2f below min price %.2f", c.MaxPrice, c.MinPrice)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	return nil
}
