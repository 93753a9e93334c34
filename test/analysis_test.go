package test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/internal/training/history"
	"github.com/strengthlab/liftstats/internal/training/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) analysisRequest(ctx context.Context, path string, out interface{}) {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s%s", serverEndpoint, path),
		nil,
	)
	require.NoError(s.T(), err)
	mobileAppHeaders(req)

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	require.NoError(s.T(), json.Unmarshal(respBytes, out))
}

// The analysis responses are cached briefly, so everything runs against
// one seeded history and hits each endpoint once.
func (s *IntegrationTestSuite) TestAnalysis() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.deleteAllSets(ctx)

	// all singles, so the estimated 1RMs equal the lifted weights
	now := time.Now()
	seed := []training.LoggedSet{
		{Lift: training.LiftSquat, Weight: 300, Reps: 1, CreatedAt: now.Add(-4 * time.Hour)},
		{Lift: training.LiftSquat, Weight: 315, Reps: 1, CreatedAt: now.Add(-3 * time.Hour)},
		{Lift: training.LiftBench, Weight: 220, Reps: 1, CreatedAt: now.Add(-2 * time.Hour)},
		{Lift: training.LiftDeadlift, Weight: 370, Reps: 1, CreatedAt: now.Add(-90 * time.Minute)},
		{Lift: training.LiftOverheadPress, Weight: 137.5, Reps: 1, CreatedAt: now.Add(-time.Hour)},
	}
	for _, set := range seed {
		s.newSetRequest(ctx, set)
	}

	t.Run("prs", func(t *testing.T) {
		var report history.PRReport
		s.analysisRequest(ctx, "/analysis/prs?lift=squat", &report)

		// both squat singles broke both record kinds as they happened
		require.Len(t, report.Sets, 2)
		assert.True(t, report.Sets[0].VolumePR)
		assert.True(t, report.Sets[0].OneRepMaxPR)
		assert.True(t, report.Sets[1].VolumePR)
		assert.True(t, report.Sets[1].OneRepMaxPR)

		require.Len(t, report.Records, 4)
		for _, record := range report.Records {
			assert.Equal(t, training.LiftSquat, record.Lift)
		}
	})

	t.Run("symmetry", func(t *testing.T) {
		var report history.SymmetryReport
		s.analysisRequest(ctx, "/analysis/symmetry", &report)

		assert.Equal(t, 315.0, report.Totals.Squat)
		assert.Equal(t, 220.0, report.Totals.Bench)
		assert.Equal(t, 370.0, report.Totals.Deadlift)
		assert.Equal(t, 137.5, report.Totals.OverheadPress)

		// seeded numbers sit within tolerance of every ideal ratio
		require.Len(t, report.Ratios, 4)
		assert.Empty(t, report.Imbalances)
		assert.Equal(t, 100.0, report.OverallScore)
	})

	t.Run("wilks", func(t *testing.T) {
		var wilksResp history.WilksResponse
		s.analysisRequest(ctx, "/analysis/wilks?bodyweight=90&sex=male", &wilksResp)

		assert.Equal(t, 905.0, wilksResp.Total) // 315 + 220 + 370
		assert.Greater(t, wilksResp.Score, 0.0)
		assert.Equal(t, 315.0, wilksResp.Totals.Squat)
	})

	t.Run("standards", func(t *testing.T) {
		var standards []history.LiftStandard
		s.analysisRequest(ctx, "/analysis/standards?bodyweight=90&sex=male", &standards)

		require.Len(t, standards, 4)

		squat := standards[0]
		assert.Equal(t, training.LiftSquat, squat.Lift)
		assert.Equal(t, 315.0, squat.Estimated1RM)
		require.NotNil(t, squat.Classification)
		// 3.5x bodyweight is comfortably past the elite threshold
		assert.Equal(t, scoring.StandardElite, squat.Classification.Standard)
		assert.Nil(t, squat.Classification.NextLevel)
	})

	t.Run("missing bodyweight", func(t *testing.T) {
		req, err := http.NewRequestWithContext(
			ctx,
			"GET", fmt.Sprintf("%s/analysis/wilks?sex=male", serverEndpoint),
			nil,
		)
		require.NoError(t, err)
		mobileAppHeaders(req)

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.NoError(t, resp.Body.Close())
	})

	s.deleteAllSets(ctx)
}
