package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "progresscard/internal/platform/errors"
)

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidateUserID accepts ASCII letters and digits only.
func ValidateUserID(userID string) error {
	if !userIDPattern.MatchString(userID) {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidIdentifier, userID)
	}
	return nil
}

// ArtifactRef points at one rendered card. GeneratedAt comes from the
// filename; ModTime from the filesystem. Default refs point at the shared
// fallback image and carry no user.
type ArtifactRef struct {
	UserID      string
	Filename    string
	Path        string
	GeneratedAt time.Time
	ModTime     time.Time
	Default     bool
}

func DefaultRef(filename string) ArtifactRef {
	return ArtifactRef{Filename: filename, Default: true}
}

const nameSep = "."

// FormatName builds the cache key {user}.{unix seconds}.{ext}.
func FormatName(userID string, generatedAt time.Time, ext string) string {
	return strings.Join([]string{userID, strconv.FormatInt(generatedAt.Unix(), 10), ext}, nameSep)
}

// ParseName is the inverse of FormatName.
func ParseName(name string) (userID string, generatedAt time.Time, ext string, err error) {
	parts := strings.Split(name, nameSep)
	if len(parts) != 3 {
		return "", time.Time{}, "", fmt.Errorf("%w: artifact name %q", apperrors.ErrInvalidInput, name)
	}
	if err := ValidateUserID(parts[0]); err != nil {
		return "", time.Time{}, "", fmt.Errorf("artifact name %q: %w", name, err)
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || ts < 0 {
		return "", time.Time{}, "", fmt.Errorf("%w: artifact timestamp in %q", apperrors.ErrInvalidInput, name)
	}
	if parts[2] == "" {
		return "", time.Time{}, "", fmt.Errorf("%w: artifact extension in %q", apperrors.ErrInvalidInput, name)
	}
	return parts[0], time.Unix(ts, 0).UTC(), parts[2], nil
}

// IsStale reports whether ref must be regenerated at now. A nil ref is
// stale. An artifact exactly maxAge old is stale.
func IsStale(ref *ArtifactRef, now time.Time, maxAge time.Duration) bool {
	if ref == nil {
		return true
	}
	return !ref.GeneratedAt.After(now.Add(-maxAge))
}

// Newer orders artifacts by modification time, then embedded timestamp,
// then filename, so every observer picks the same canonical artifact.
func Newer(a, b ArtifactRef) bool {
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.After(b.ModTime)
	}
	if !a.GeneratedAt.Equal(b.GeneratedAt) {
		return a.GeneratedAt.After(b.GeneratedAt)
	}
	return a.Filename > b.Filename
}

func SortNewestFirst(refs []ArtifactRef) {
	sort.SliceStable(refs, func(i, j int) bool { return Newer(refs[i], refs[j]) })
}
