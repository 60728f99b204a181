package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"progresscard/internal/modules/card/domain"
	cardout "progresscard/internal/modules/card/port/out"
	"progresscard/internal/platform/clock"
	apperrors "progresscard/internal/platform/errors"
)

type CardService struct {
	store       cardout.ArtifactStore
	progress    cardout.ProgressSource
	renderer    cardout.Renderer
	maxAge      time.Duration
	defaultCard string
	clock       clock.Clock
	logger      *zap.Logger
}

type Option func(*CardService)

func WithClock(c clock.Clock) Option {
	return func(s *CardService) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *CardService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewCardService(store cardout.ArtifactStore, progress cardout.ProgressSource, renderer cardout.Renderer, maxAge time.Duration, defaultCard string, opts ...Option) (*CardService, error) {
	if store == nil || progress == nil || renderer == nil {
		return nil, errors.New("card service requires a store, a progress source and a renderer")
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("%w: max age must be positive, got %s", apperrors.ErrInvalidInput, maxAge)
	}
	if defaultCard == "" {
		return nil, fmt.Errorf("%w: default card filename is empty", apperrors.ErrInvalidInput)
	}
	s := &CardService{
		store:       store,
		progress:    progress,
		renderer:    renderer,
		maxAge:      maxAge,
		defaultCard: defaultCard,
		clock:       clock.SystemClock{},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *CardService) MaxAge() time.Duration {
	return s.maxAge
}

func (s *CardService) DefaultRef() domain.ArtifactRef {
	return domain.DefaultRef(s.defaultCard)
}

// Resolution is the outcome of Resolve. Progress is only set when the
// request had to read it, that is on every path except a cache hit.
type Resolution struct {
	Ref      domain.ArtifactRef
	Progress *domain.Progress
}

// GetOrRender returns the cached card of userID while it is fresh, and
// otherwise renders, stores and reconciles a new one. Unknown users get the
// default card and nothing is written.
func (s *CardService) GetOrRender(ctx context.Context, userID string, forceRefresh bool) (domain.ArtifactRef, error) {
	res, err := s.Resolve(ctx, userID, forceRefresh)
	return res.Ref, err
}

// Resolve is GetOrRender that also hands back the progress it fetched.
func (s *CardService) Resolve(ctx context.Context, userID string, forceRefresh bool) (Resolution, error) {
	lookup, err := s.store.Find(ctx, userID)
	if err != nil {
		return Resolution{}, fmt.Errorf("lookup card: %w", err)
	}
	switch lookup.Kind() {
	case domain.LookupFound:
		ref, _ := lookup.Ref()
		if !forceRefresh && !domain.IsStale(&ref, s.clock.Now(), s.maxAge) {
			s.logger.Debug("card cache hit", zap.String("user_id", userID), zap.String("filename", ref.Filename))
			return Resolution{Ref: ref}, nil
		}
	case domain.LookupInconsistent:
		s.logger.Error("card cache inconsistency",
			zap.String("user_id", userID),
			zap.Strings("filenames", lookup.Filenames()),
			zap.Error(apperrors.ErrCacheInconsistency),
		)
	}

	progress, ok, err := s.progress.Fetch(ctx, userID)
	if err != nil {
		return Resolution{}, fmt.Errorf("fetch progress: %w", err)
	}
	if !ok {
		s.logger.Info("unknown user, serving default card", zap.String("user_id", userID))
		return Resolution{Ref: s.DefaultRef()}, nil
	}

	img, err := s.renderer.Render(ctx, progress.DisplayName, progress.Ratio)
	if err != nil {
		return Resolution{}, fmt.Errorf("render card: %w", err)
	}
	stored, err := s.store.Store(ctx, userID, img, s.clock.Now())
	if err != nil {
		return Resolution{}, fmt.Errorf("store card: %w", err)
	}
	ev, err := s.store.EvictSuperseded(ctx, userID)
	if err != nil {
		return Resolution{}, fmt.Errorf("evict superseded cards: %w", err)
	}
	s.logger.Info("card rendered",
		zap.String("user_id", userID),
		zap.String("filename", stored.Filename),
		zap.Int("percent", progress.Percent),
		zap.Bool("forced", forceRefresh),
	)
	return Resolution{Ref: ev.Kept, Progress: &progress}, nil
}

// Progress exposes the progress source for pages that describe a card.
func (s *CardService) Progress(ctx context.Context, userID string) (domain.Progress, bool, error) {
	return s.progress.Fetch(ctx, userID)
}

// Artifacts lists the cached artifacts of one user, newest first.
func (s *CardService) Artifacts(ctx context.Context, userID string) ([]domain.ArtifactRef, error) {
	lookup, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ref, ok := lookup.Ref(); ok {
		return []domain.ArtifactRef{ref}, nil
	}
	return lookup.Conflicts(), nil
}

func (s *CardService) List(ctx context.Context) ([]domain.ArtifactRef, error) {
	return s.store.List(ctx)
}

func (s *CardService) Evict(ctx context.Context, userID string) (domain.Eviction, error) {
	return s.store.EvictSuperseded(ctx, userID)
}
