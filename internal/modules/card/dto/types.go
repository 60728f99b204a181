package dto

import "time"

type CardInput struct {
	UserID  string
	Refresh bool
}

type CardOutput struct {
	UserID      string    `json:"-"`
	Filename    string    `json:"artifact_filename"`
	Default     bool      `json:"default"`
	GeneratedAt time.Time `json:"generated_at,omitzero"`
}

// PageOutput carries what the Open Graph page shows.
type PageOutput struct {
	Card        CardOutput
	Found       bool
	Title       string
	DisplayName string
	Percent     int
}

type ArtifactOutput struct {
	UserID      string
	Filename    string
	Path        string
	GeneratedAt time.Time
	ModTime     time.Time
	Stale       bool
}

type EvictOutput struct {
	UserID  string
	Kept    string
	Removed []string
}
