package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"endurance-planner/internal/analysis"
	"endurance-planner/internal/logger"
)

type stubProvider struct {
	name  string
	tier  analysis.Tier
	err   error
	block bool
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Classify(ctx context.Context, _ string, _ int) (analysis.Tier, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.tier, s.err
}

func TestChainFirstAnswerWins(t *testing.T) {
	first := &stubProvider{name: "remote", tier: analysis.TierAdvanced}
	second := &stubProvider{name: "cohort", tier: analysis.TierElite}
	chain := NewChain(logger.Discard(), time.Second, 0, first, second)

	tier, source, ok := chain.Classify(context.Background(), "a1")
	require.True(t, ok)
	assert.Equal(t, analysis.TierAdvanced, tier)
	assert.Equal(t, "remote", source)
	assert.Equal(t, 0, second.calls)
}

func TestChainFallsThrough(t *testing.T) {
	failing := &stubProvider{name: "remote", err: errors.New("connection refused")}
	empty := &stubProvider{name: "cohort", err: ErrUnavailable}
	invalid := &stubProvider{name: "other", tier: "Legend"}
	chain := NewChain(logger.Discard(), time.Second, 0, failing, empty, invalid)

	_, _, ok := chain.Classify(context.Background(), "a1")
	assert.False(t, ok)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, empty.calls)
	assert.Equal(t, 1, invalid.calls)
}

func TestChainTimeout(t *testing.T) {
	slow := &stubProvider{name: "remote", block: true}
	local := &stubProvider{name: "cohort", tier: analysis.TierIntermediate}
	chain := NewChain(logger.Discard(), 20*time.Millisecond, 0, slow, local)

	start := time.Now()
	tier, source, ok := chain.Classify(context.Background(), "a1")
	require.True(t, ok)
	assert.Equal(t, analysis.TierIntermediate, tier)
	assert.Equal(t, "cohort", source)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestChainCancelledContext(t *testing.T) {
	p := &stubProvider{name: "remote", tier: analysis.TierElite}
	chain := NewChain(nil, 0, 0, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, ok := chain.Classify(ctx, "a1")
	assert.False(t, ok)
	assert.Equal(t, 0, p.calls)
}

func TestEmptyChain(t *testing.T) {
	chain := NewChain(nil, 0, 0)
	_, _, ok := chain.Classify(context.Background(), "a1")
	assert.False(t, ok)
	assert.Equal(t, 0, chain.Len())
}

func TestRemote(t *testing.T) {
	var got remoteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&got)) {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}

		switch got.UserID {
		case "elite":
			fmt.Fprint(w, `{"success":true,"level":"Elite"}`)
		case "nodata":
			fmt.Fprint(w, `{"success":false,"error":"no_data"}`)
		case "weird":
			fmt.Fprint(w, `{"success":true,"level":"Pro"}`)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	r := NewRemote(srv.URL, srv.Client())
	ctx := context.Background()

	tier, err := r.Classify(ctx, "elite", 56)
	require.NoError(t, err)
	assert.Equal(t, analysis.TierElite, tier)
	assert.Equal(t, 56, got.LookbackDays)

	_, err = r.Classify(ctx, "nodata", 56)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = r.Classify(ctx, "weird", 56)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)

	_, err = r.Classify(ctx, "crash", 56)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestRemoteWithoutURL(t *testing.T) {
	_, err := NewRemote("", nil).Classify(context.Background(), "a1", 56)
	assert.ErrorIs(t, err, ErrUnavailable)
}

type stubCohort struct {
	samples map[string][]analysis.Sample
	since   time.Time
	err     error
}

func (s *stubCohort) SamplesByAthlete(_ context.Context, since time.Time) (map[string][]analysis.Sample, error) {
	s.since = since
	return s.samples, s.err
}

var cohortNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

// athleteAt builds a history that grows with level 0..3: more runs, longer
// runs and faster pace.
func athleteAt(level int, jitter float64) []analysis.Sample {
	var out []analysis.Sample
	runs := (level + 1) * 8
	km := 5 + 3*float64(level) + jitter
	pace := 7 - float64(level)
	for i := 0; i < runs; i++ {
		out = append(out, analysis.Sample{
			Date:            cohortNow.AddDate(0, 0, -(i + 1)),
			DistanceMeters:  km * 1000,
			DurationMinutes: km * pace,
			Kind:            "Run",
		})
	}
	return out
}

func TestCohortRanksAthletes(t *testing.T) {
	src := &stubCohort{samples: map[string][]analysis.Sample{
		"a": athleteAt(0, 0),
		"b": athleteAt(1, 0),
		"c": athleteAt(2, 0),
		"d": athleteAt(3, 0),
		"e": athleteAt(0, 0.2),
		"f": athleteAt(1, 0.2),
		"g": athleteAt(2, 0.2),
		"h": athleteAt(3, 0.2),
		// rides only, ignored
		"z": {{Date: cohortNow.AddDate(0, 0, -1), DistanceMeters: 80000, DurationMinutes: 180, Kind: "Ride"}},
	}}
	c := &Cohort{Source: src, Now: func() time.Time { return cohortNow }}

	want := map[string]analysis.Tier{
		"a": analysis.TierBeginner,
		"e": analysis.TierBeginner,
		"f": analysis.TierIntermediate,
		"c": analysis.TierAdvanced,
		"h": analysis.TierElite,
	}
	for id, tier := range want {
		got, err := c.Classify(context.Background(), id, 56)
		require.NoError(t, err, id)
		assert.Equal(t, tier, got, id)
	}
	assert.Equal(t, cohortNow.AddDate(0, 0, -56), src.since)

	_, err := c.Classify(context.Background(), "z", 56)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCohortNeedsFourAthletes(t *testing.T) {
	src := &stubCohort{samples: map[string][]analysis.Sample{
		"a": athleteAt(0, 0),
		"b": athleteAt(1, 0),
		"c": athleteAt(3, 0),
	}}
	c := &Cohort{Source: src, Now: func() time.Time { return cohortNow }}

	_, err := c.Classify(context.Background(), "a", 0)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, cohortNow.AddDate(0, 0, -DefaultLookbackDays), src.since)
}

func TestCohortSourceError(t *testing.T) {
	c := NewCohort(&stubCohort{err: errors.New("db closed")})
	_, err := c.Classify(context.Background(), "a", 56)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestCohortImputesMissingSpeed(t *testing.T) {
	short := []analysis.Sample{{Date: cohortNow, DistanceMeters: 2000, DurationMinutes: 12, Kind: "Run"}}
	ids, rows := cohortFeatures(map[string][]analysis.Sample{
		"slow": {{Date: cohortNow, DistanceMeters: 5000, DurationMinutes: 30, Kind: "Run"}},
		"fast": {{Date: cohortNow, DistanceMeters: 5000, DurationMinutes: 20, Kind: "Run"}},
		"new":  short,
	}, 56)

	require.Equal(t, []string{"fast", "new", "slow"}, ids)
	mean := (1.0/4 + 1.0/6) / 2
	assert.InDelta(t, mean, rows[1][3], 1e-9)
	assert.InDelta(t, 5.0/8, rows[0][0], 1e-9)
}

func TestKMeansSeparatesGroups(t *testing.T) {
	rows := [][]float64{{0, 0}, {10, 10}, {0.1, 0}, {10, 9.9}}
	_, labels := kmeans(rows, 2, 50)
	assert.Equal(t, labels[0], labels[2])
	assert.Equal(t, labels[1], labels[3])
	assert.NotEqual(t, labels[0], labels[1])
}
