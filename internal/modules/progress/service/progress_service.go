package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"progresscard/internal/modules/progress/domain"
	progressout "progresscard/internal/modules/progress/port/out"
	"progresscard/internal/platform/retry"
)

type ProgressService struct {
	store       progressout.RecordStore
	schema      domain.Schema
	policy      retry.Policy
	concurrency int
	logger      *zap.Logger
}

type Option func(*ProgressService)

func WithRetryPolicy(p retry.Policy) Option {
	return func(s *ProgressService) { s.policy = p }
}

// WithConcurrency bounds the number of category reads in flight. 1 reads
// the categories sequentially.
func WithConcurrency(n int) Option {
	return func(s *ProgressService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *ProgressService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewProgressService(store progressout.RecordStore, schema domain.Schema, opts ...Option) (*ProgressService, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	s := &ProgressService{
		store:       store,
		schema:      schema,
		policy:      retry.DefaultPolicy(),
		concurrency: len(schema.Categories),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *ProgressService) Schema() domain.Schema {
	return s.schema
}

// Fetch reads the user document and every category document for userID
// and reduces them to a progress ratio. An absent user is NotFound, not an
// error. Absent category documents count as zero.
func (s *ProgressService) Fetch(ctx context.Context, userID string) (domain.FetchResult, error) {
	user, ok, err := s.get(ctx, domain.UserCollection, userID)
	if err != nil {
		return domain.FetchResult{}, err
	}
	if !ok {
		return domain.NotFound(), nil
	}

	counts := make([]int, len(s.schema.Categories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, category := range s.schema.Categories {
		g.Go(func() error {
			doc, found, err := s.get(gctx, category, userID)
			if err != nil {
				return err
			}
			if found {
				counts[i] = domain.CountItems(doc)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.FetchResult{}, err
	}

	answered := 0
	for _, n := range counts {
		answered += n
	}
	if s.schema.Drifted(answered) {
		s.logger.Warn("answered items exceed configured total; progress.total_items is stale",
			zap.String("user_id", userID),
			zap.Int("answered", answered),
			zap.Int("total_items", s.schema.TotalItems),
			zap.Int("schema_version", s.schema.Version),
		)
	}
	return domain.Found(domain.Record{
		UserID:      userID,
		DisplayName: domain.DisplayName(user),
		Answered:    answered,
		Ratio:       s.schema.Ratio(answered),
	}), nil
}

func (s *ProgressService) get(ctx context.Context, collection, id string) (domain.Document, bool, error) {
	var (
		doc   domain.Document
		found bool
	)
	err := retry.Do(ctx, s.policy, func(ctx context.Context) error {
		var err error
		doc, found, err = s.store.GetDocument(ctx, collection, id)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return doc, found, nil
}
