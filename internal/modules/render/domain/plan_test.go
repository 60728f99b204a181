package domain_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"progresscard/internal/modules/render/domain"
)

func TestPlanGolden(t *testing.T) {
	t.Parallel()
	raw, err := domain.MarshalPlan(domain.BuildPlan("ada lovelace", 0.5, domain.DefaultLayout()))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "half_ada", raw)
}

func TestBuildPlanIsDeterministic(t *testing.T) {
	t.Parallel()
	l := domain.DefaultLayout()
	first := domain.BuildPlan("Ada", 0.42, l)
	second := domain.BuildPlan("Ada", 0.42, l)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("plan changed between calls (-first +second):\n%s", diff)
	}
}

func TestBuildPlanOverRange(t *testing.T) {
	t.Parallel()
	var arc domain.StrokeArc
	var label domain.PercentLabel
	for _, cmd := range domain.BuildPlan("Ada", 1.3, domain.DefaultLayout()) {
		switch op := cmd.(type) {
		case domain.StrokeArc:
			arc = op
		case domain.PercentLabel:
			label = op
		}
	}
	assert.InDelta(t, 468, arc.SweepDeg, 1e-9)
	assert.Equal(t, -90.0, arc.StartDeg)
	assert.Equal(t, "130", label.Value)
}

func TestBuildPlanOptionalParts(t *testing.T) {
	t.Parallel()
	l := domain.DefaultLayout()
	kinds := func(cmds []domain.Command) []string {
		out := make([]string, len(cmds))
		for i, c := range cmds {
			out[i] = c.Kind()
		}
		return out
	}

	assert.Equal(t,
		[]string{"fill_rect", "fill_disc", "stroke_arc", "percent_label", "chip", "chip", "centered_text"},
		kinds(domain.BuildPlan("   ", 0.1, l)))

	l.LogoPath = "logo.png"
	l.LogoRect = domain.Rect{Min: domain.Point{X: 20, Y: 20}, Max: domain.Point{X: 120, Y: 60}}
	l.FooterText = ""
	assert.Equal(t,
		[]string{"fill_rect", "image", "fill_disc", "stroke_arc", "percent_label", "chip", "chip", "chip"},
		kinds(domain.BuildPlan("ada", 0.1, l)))
}

func TestTitleCase(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "Ada Lovelace", domain.TitleCase("ada lovelace"))
	assert.Equal(t, "Élise Dupont", domain.TitleCase(" élise dupont "))
	assert.Equal(t, "", domain.TitleCase(""))
}

func TestPercentFloors(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, domain.Percent(0))
	assert.Equal(t, 5, domain.Percent(8.0/149))
	assert.Equal(t, 99, domain.Percent(0.999))
	assert.Equal(t, 100, domain.Percent(1))
	assert.Equal(t, -50, domain.Percent(-0.5))
	assert.Equal(t, 1000000000, domain.Percent(1e7))
}

func TestPercentSaturatesNonFinite(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, domain.Percent(math.NaN()))
	assert.Equal(t, math.MaxInt, domain.Percent(math.Inf(1)))
	assert.Equal(t, math.MinInt, domain.Percent(math.Inf(-1)))
}

func TestLayoutValidate(t *testing.T) {
	t.Parallel()
	require.NoError(t, domain.DefaultLayout().Validate())

	l := domain.DefaultLayout()
	l.Width = 0
	require.Error(t, l.Validate())

	l = domain.DefaultLayout()
	l.RingInset = l.RingRadius
	require.Error(t, l.Validate())

	l = domain.DefaultLayout()
	l.FooterSize = 0
	require.Error(t, l.Validate())
}
