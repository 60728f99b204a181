package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progresscard/internal/modules/progress/domain"
	apperrors "progresscard/internal/platform/errors"
)

func TestRatioAndPercent(t *testing.T) {
	t.Parallel()
	s := domain.Schema{Version: 1, Categories: []string{"constitution"}, TotalItems: 149}
	ratio := s.Ratio(8)
	assert.InDelta(t, 0.0537, ratio, 0.0001)
	assert.Equal(t, 5, domain.Percent(ratio))
	assert.Equal(t, 100, domain.Percent(s.Ratio(149)))
	assert.Equal(t, 130, domain.Percent(1.3))
	assert.False(t, s.Drifted(149))
	assert.True(t, s.Drifted(150))
}

func TestSchemaValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, domain.Schema{Categories: []string{"a"}, TotalItems: 1}.Validate())
	require.Error(t, domain.Schema{TotalItems: 1}.Validate())
	require.Error(t, domain.Schema{Categories: []string{" "}, TotalItems: 1}.Validate())
	require.Error(t, domain.Schema{Categories: []string{"a"}}.Validate())
}

func TestFetchResultVariants(t *testing.T) {
	t.Parallel()
	_, ok := domain.NotFound().Get()
	assert.False(t, ok)
	_, err := domain.NotFound().Require()
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	rec := domain.Record{UserID: "abc123", DisplayName: "ada", Answered: 3, Ratio: 0.5}
	got, err := domain.Found(rec).Require()
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestDocumentHelpers(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3, domain.CountItems(domain.Document{"q1": true, "q2": nil, "q3": "x"}))
	assert.Equal(t, 0, domain.CountItems(nil))
	assert.Equal(t, "Ada", domain.DisplayName(domain.Document{"name": " Ada "}))
	assert.Equal(t, "", domain.DisplayName(domain.Document{"name": 42}))
	assert.Equal(t, "", domain.DisplayName(domain.Document{}))
}
