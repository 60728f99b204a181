package dto

type FetchInput struct {
	UserID string
}

type ProgressOutput struct {
	Found       bool
	UserID      string
	DisplayName string
	Answered    int
	Ratio       float64
	Percent     int
}

// Fixture maps collection -> document id -> fields.
type Fixture map[string]map[string]map[string]any

type SeedOutput struct {
	Documents int
}
