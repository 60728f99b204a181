package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"progresscard/internal/modules/card/domain"
	cardout "progresscard/internal/modules/card/port/out"
	apperrors "progresscard/internal/platform/errors"
)

// FSArtifactStore keeps one file per card in a single directory. The
// filenames are the index: there is no other state.
type FSArtifactStore struct {
	dir    string
	logger *zap.Logger
}

func NewFSArtifactStore(dir string, logger *zap.Logger) (*FSArtifactStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty cache dir", apperrors.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FSArtifactStore{dir: dir, logger: logger}, nil
}

var _ cardout.ArtifactStore = (*FSArtifactStore)(nil)

func (s *FSArtifactStore) Dir() string {
	return s.dir
}

func (s *FSArtifactStore) Find(ctx context.Context, userID string) (domain.Lookup, error) {
	refs, err := s.scan(ctx, userID)
	if err != nil {
		return domain.Lookup{}, err
	}
	return domain.ResolveLookup(refs), nil
}

// Store writes to a hidden temp file and renames it into place, so a
// concurrent scan never sees a partial artifact.
func (s *FSArtifactStore) Store(ctx context.Context, userID string, img domain.Image, generatedAt time.Time) (domain.ArtifactRef, error) {
	if err := domain.ValidateUserID(userID); err != nil {
		return domain.ArtifactRef{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.ArtifactRef{}, err
	}
	name := domain.FormatName(userID, generatedAt, img.Ext)
	tmp, err := os.CreateTemp(s.dir, "."+userID+".*.tmp")
	if err != nil {
		return domain.ArtifactRef{}, fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(img.Data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return domain.ArtifactRef{}, fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return domain.ArtifactRef{}, fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return domain.ArtifactRef{}, fmt.Errorf("chmod artifact: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return domain.ArtifactRef{}, fmt.Errorf("publish artifact: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.ArtifactRef{}, fmt.Errorf("stat artifact: %w", err)
	}
	s.logger.Debug("artifact stored", zap.String("user_id", userID), zap.String("filename", name), zap.Int("bytes", len(img.Data)))
	return domain.ArtifactRef{
		UserID:      userID,
		Filename:    name,
		Path:        path,
		GeneratedAt: time.Unix(generatedAt.Unix(), 0).UTC(),
		ModTime:     info.ModTime(),
	}, nil
}

// EvictSuperseded keeps the newest artifact of userID. Files already removed
// by a concurrent eviction are ignored; any other removal failure leaves the
// cache inconsistent and is reported as such.
func (s *FSArtifactStore) EvictSuperseded(ctx context.Context, userID string) (domain.Eviction, error) {
	s.sweepTemps(userID)
	refs, err := s.scan(ctx, userID)
	if err != nil {
		return domain.Eviction{}, err
	}
	if len(refs) == 0 {
		return domain.Eviction{}, fmt.Errorf("no artifact for %q: %w", userID, apperrors.ErrNotFound)
	}
	domain.SortNewestFirst(refs)
	ev := domain.Eviction{Kept: refs[0]}
	var errs []error
	for _, ref := range refs[1:] {
		err := os.Remove(ref.Path)
		switch {
		case err == nil:
			ev.Removed = append(ev.Removed, ref.Filename)
		case errors.Is(err, fs.ErrNotExist):
		default:
			errs = append(errs, err)
		}
	}
	if len(ev.Removed) > 0 {
		s.logger.Info("superseded artifacts evicted",
			zap.String("user_id", userID),
			zap.String("kept", ev.Kept.Filename),
			zap.Strings("removed", ev.Removed),
		)
	}
	if len(errs) > 0 {
		return ev, fmt.Errorf("%w: evict %q: %w", apperrors.ErrCacheInconsistency, userID, errors.Join(errs...))
	}
	return ev, nil
}

// staleTempAge is how long a temp file may live before it is taken for
// the leftover of a crashed Store. Live writes finish well within it.
const staleTempAge = 10 * time.Minute

// sweepTemps removes temp files of userID that a crash between create and
// rename left behind. Failures are logged and otherwise ignored.
func (s *FSArtifactStore) sweepTemps(userID string) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "."+userID+".*.tmp"))
	if err != nil {
		return
	}
	cutoff := time.Now().Add(-staleTempAge)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("temp artifact not removed", zap.String("path", path), zap.Error(err))
			continue
		}
		s.logger.Info("stale temp artifact removed", zap.String("user_id", userID), zap.String("filename", filepath.Base(path)))
	}
}

// List returns every artifact, grouped by user and newest first per user.
func (s *FSArtifactStore) List(ctx context.Context) ([]domain.ArtifactRef, error) {
	refs, err := s.scan(ctx, "")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(refs, func(i, j int) bool {
		if refs[i].UserID != refs[j].UserID {
			return refs[i].UserID < refs[j].UserID
		}
		return domain.Newer(refs[i], refs[j])
	})
	return refs, nil
}

// scan lists the artifacts of userID, or of every user when userID is empty.
func (s *FSArtifactStore) scan(ctx context.Context, userID string) ([]domain.ArtifactRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read cache dir: %w", err)
	}
	var refs []domain.ArtifactRef
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		if userID != "" && !strings.HasPrefix(name, userID+".") {
			continue
		}
		uid, generatedAt, _, err := domain.ParseName(name)
		if err != nil {
			s.logger.Debug("ignoring foreign file in cache dir", zap.String("filename", name))
			continue
		}
		if userID != "" && uid != userID {
			continue
		}
		info, err := e.Info()
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		refs = append(refs, domain.ArtifactRef{
			UserID:      uid,
			Filename:    name,
			Path:        filepath.Join(s.dir, name),
			GeneratedAt: generatedAt,
			ModTime:     info.ModTime(),
		})
	}
	return refs, nil
}
