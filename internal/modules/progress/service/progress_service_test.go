package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	progressout "progresscard/internal/modules/progress/adapter/out"
	"progresscard/internal/modules/progress/domain"
	"progresscard/internal/modules/progress/service"
	apperrors "progresscard/internal/platform/errors"
	"progresscard/internal/platform/retry"
)

var schema = domain.Schema{
	Version:    1,
	Categories: []string{"constitution", "feeding", "housing", "transport", "consumption", "production"},
	TotalItems: 149,
}

func fastRetry() retry.Policy {
	return retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
}

func seeded(t *testing.T) *progressout.MemoryRecordStore {
	t.Helper()
	ctx := context.Background()
	store := progressout.NewMemoryRecordStore()
	require.NoError(t, store.PutDocument(ctx, "user", "abc123", domain.Document{"name": "ada lovelace"}))
	require.NoError(t, store.PutDocument(ctx, "constitution", "abc123", domain.Document{"q1": 1, "q2": 0, "q3": "yes"}))
	require.NoError(t, store.PutDocument(ctx, "housing", "abc123", domain.Document{"h1": 1, "h2": 1, "h3": 1, "h4": 1, "h5": 1}))
	return store
}

func TestFetchCountsFieldsAcrossCategories(t *testing.T) {
	t.Parallel()
	svc, err := service.NewProgressService(seeded(t), schema)
	require.NoError(t, err)

	result, err := svc.Fetch(context.Background(), "abc123")
	require.NoError(t, err)
	rec, ok := result.Get()
	require.True(t, ok)
	assert.Equal(t, "abc123", rec.UserID)
	assert.Equal(t, "ada lovelace", rec.DisplayName)
	assert.Equal(t, 8, rec.Answered)
	assert.InDelta(t, 8.0/149.0, rec.Ratio, 1e-12)
	assert.Equal(t, 5, rec.Percent())
}

func TestFetchSequentialMatchesParallel(t *testing.T) {
	t.Parallel()
	store := seeded(t)
	seq, err := service.NewProgressService(store, schema, service.WithConcurrency(1))
	require.NoError(t, err)
	par, err := service.NewProgressService(store, schema, service.WithConcurrency(6))
	require.NoError(t, err)

	a, err := seq.Fetch(context.Background(), "abc123")
	require.NoError(t, err)
	b, err := par.Fetch(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFetchUnknownUserIsNotFound(t *testing.T) {
	t.Parallel()
	svc, err := service.NewProgressService(seeded(t), schema)
	require.NoError(t, err)

	result, err := svc.Fetch(context.Background(), "nonexistent")
	require.NoError(t, err)
	_, err = result.Require()
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestNewProgressServiceRejectsBadSchema(t *testing.T) {
	t.Parallel()
	_, err := service.NewProgressService(progressout.NewMemoryRecordStore(), domain.Schema{Categories: []string{"a"}})
	require.Error(t, err)
}

type flakyStore struct {
	inner    *progressout.MemoryRecordStore
	failures atomic.Int32
	calls    atomic.Int32
	err      error
}

func (f *flakyStore) GetDocument(ctx context.Context, collection, id string) (domain.Document, bool, error) {
	f.calls.Add(1)
	if f.failures.Add(-1) >= 0 {
		return nil, false, f.err
	}
	return f.inner.GetDocument(ctx, collection, id)
}

func TestFetchRetriesTransientStoreErrors(t *testing.T) {
	t.Parallel()
	store := &flakyStore{inner: seeded(t), err: apperrors.ErrUnavailable}
	store.failures.Store(2)
	svc, err := service.NewProgressService(store, schema, service.WithRetryPolicy(fastRetry()), service.WithConcurrency(1))
	require.NoError(t, err)

	result, err := svc.Fetch(context.Background(), "abc123")
	require.NoError(t, err)
	rec, ok := result.Get()
	require.True(t, ok)
	assert.Equal(t, 8, rec.Answered)
	assert.Equal(t, int32(2+1+len(schema.Categories)), store.calls.Load())
}

func TestFetchSurfacesPermanentStoreErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("permission denied")
	store := &flakyStore{inner: seeded(t), err: boom}
	store.failures.Store(1)
	svc, err := service.NewProgressService(store, schema, service.WithRetryPolicy(fastRetry()))
	require.NoError(t, err)

	_, err = svc.Fetch(context.Background(), "abc123")
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), store.calls.Load())
}

func TestFetchWarnsWhenDenominatorIsStale(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.WarnLevel)
	small := domain.Schema{Version: 2, Categories: []string{"constitution", "housing"}, TotalItems: 4}
	svc, err := service.NewProgressService(seeded(t), small, service.WithLogger(zap.New(core)))
	require.NoError(t, err)

	result, err := svc.Fetch(context.Background(), "abc123")
	require.NoError(t, err)
	rec, _ := result.Get()
	assert.InDelta(t, 2.0, rec.Ratio, 1e-12)

	entries := logs.FilterField(zap.Int("answered", 8)).All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "abc123", entries[0].ContextMap()["user_id"])
}

type recordingWriter struct {
	keys []string
}

func (w *recordingWriter) PutDocument(_ context.Context, collection, id string, _ domain.Document) error {
	w.keys = append(w.keys, collection+"/"+id)
	return nil
}

func TestSeedWritesInStableOrder(t *testing.T) {
	t.Parallel()
	w := &recordingWriter{}
	n, err := service.Seed(context.Background(), w, map[string]map[string]map[string]any{
		"user":         {"b": {"name": "B"}, "a": {"name": "A"}},
		"constitution": {"a": {"q1": true}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"constitution/a", "user/a", "user/b"}, w.keys)

	_, err = service.Seed(context.Background(), nil, nil)
	require.Error(t, err)
}
