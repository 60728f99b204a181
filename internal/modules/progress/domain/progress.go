package domain

import (
	"fmt"
	"math"
	"strings"

	apperrors "progresscard/internal/platform/errors"
)

const (
	UserCollection = "user"
	NameField      = "name"
)

// Document is one record from the store: field name to value.
type Document map[string]any

// Schema is the versioned list of categories that make up a user's
// progress. TotalItems is the number of completable items across all
// categories; it is not derived from live data and must be updated together
// with the category content.
type Schema struct {
	Version    int
	Categories []string
	TotalItems int
}

func (s Schema) Validate() error {
	if len(s.Categories) == 0 {
		return fmt.Errorf("schema v%d: no categories", s.Version)
	}
	for _, c := range s.Categories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("schema v%d: empty category name", s.Version)
		}
	}
	if s.TotalItems <= 0 {
		return fmt.Errorf("schema v%d: total items must be positive", s.Version)
	}
	return nil
}

// Ratio divides the answered count by TotalItems. No clamping: a count above
// the denominator yields a ratio above 1.
func (s Schema) Ratio(answered int) float64 {
	return float64(answered) / float64(s.TotalItems)
}

// Drifted reports whether answered cannot be explained by the schema, which
// means TotalItems is out of date.
func (s Schema) Drifted(answered int) bool {
	return answered > s.TotalItems
}

// Record is a user's progress, recomputed on every fetch.
type Record struct {
	UserID      string
	DisplayName string
	Answered    int
	Ratio       float64
}

// Percent is the whole percentage shown on the card.
func (r Record) Percent() int {
	return Percent(r.Ratio)
}

// Percent floors ratio*100. Out-of-range ratios pass through.
func Percent(ratio float64) int {
	return int(math.Floor(ratio * 100))
}

// FetchResult is either a found record or the not-found marker.
type FetchResult struct {
	record Record
	found  bool
}

func Found(r Record) FetchResult { return FetchResult{record: r, found: true} }

func NotFound() FetchResult { return FetchResult{} }

func (r FetchResult) Get() (Record, bool) { return r.record, r.found }

// Require returns the record or apperrors.ErrNotFound.
func (r FetchResult) Require() (Record, error) {
	if !r.found {
		return Record{}, apperrors.ErrNotFound
	}
	return r.record, nil
}

// CountItems is the number of answered items a category document
// contributes: its field count, whatever the values are.
func CountItems(doc Document) int {
	return len(doc)
}

// DisplayName reads the name field of a user document. Non-string or
// missing names yield "".
func DisplayName(doc Document) string {
	name, _ := doc[NameField].(string)
	return strings.TrimSpace(name)
}
