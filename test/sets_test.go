package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/internal/training/sets"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) deleteAllSets(ctx context.Context) {
	_, err := s.dbPool.Exec(ctx, "DELETE FROM logged_set")
	require.NoError(s.T(), err)
}

// mobileAppHeaders sets the headers the mobile logging app sends.
func mobileAppHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "LiftStats/1.2.0 test")
	req.Header.Set("Authorization", testMobileAppSecret)
}

func (s *IntegrationTestSuite) newSetRequest(
	ctx context.Context,
	set training.LoggedSet,
) sets.AddSetResponse {
	setJson, err := json.Marshal(set)
	require.NoError(s.T(), err)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/sets", serverEndpoint),
		bytes.NewReader(setJson),
	)
	require.NoError(s.T(), err)
	mobileAppHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	var addedSet sets.AddSetResponse
	require.NoError(s.T(), json.Unmarshal(respBytes, &addedSet))

	return addedSet
}

func (s *IntegrationTestSuite) getSetRequest(ctx context.Context, id int) training.LoggedSet {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/sets/%d", serverEndpoint, id),
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

	var set training.LoggedSet
	require.NoError(s.T(), json.Unmarshal(respBytes, &set))
	return set
}

func (s *IntegrationTestSuite) listSetsRequest(ctx context.Context, params sets.ListParams) sets.ListResponse {
	urlVals := url.Values{}
	if params.Lift != "" {
		urlVals.Add("lift", string(params.Lift))
	}
	if params.OnlyProd {
		urlVals.Add("only_prod", "true")
	}
	if params.ExcludeTestingData {
		urlVals.Add("exclude_testing_data", "true")
	}

	req, err := http.NewRequestWithContext(
		ctx,
		"GET",
		fmt.Sprintf(
			"%s/sets/page/%d/size/%d?%s",
			serverEndpoint, params.Page, params.Size, urlVals.Encode(),
		),
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

	var listResp sets.ListResponse
	require.NoError(s.T(), json.Unmarshal(respBytes, &listResp))
	return listResp
}

func (s *IntegrationTestSuite) deleteSetRequest(ctx context.Context, id int) sets.DeleteSetResponse {
	req, err := http.NewRequestWithContext(
		ctx,
		"DELETE", fmt.Sprintf("%s/sets/%d", serverEndpoint, id),
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

	var deleteResp sets.DeleteSetResponse
	require.NoError(s.T(), json.Unmarshal(respBytes, &deleteResp))
	return deleteResp
}

func (s *IntegrationTestSuite) TestSets_CRUD() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.deleteAllSets(ctx)

	rpe := gofakeit.Float64Range(6, 10)
	added := s.newSetRequest(ctx, training.LoggedSet{
		Lift:   training.LiftSquat,
		Weight: 315,
		Reps:   5,
		RPE:    &rpe,
		Metadata: map[string]string{
			"env":  "prod",
			"note": gofakeit.Word(),
		},
		CreatedAt: time.Now(),
	})
	require.NotZero(t, added.ID)
	assert.Equal(t, 1, added.CountToday)

	secondAdded := s.newSetRequest(ctx, training.LoggedSet{
		Lift:      training.LiftSquat,
		Weight:    325,
		Reps:      3,
		Metadata:  map[string]string{"env": "prod"},
		CreatedAt: time.Now(),
	})
	require.NotZero(t, secondAdded.ID)
	assert.Equal(t, 2, secondAdded.CountToday)

	benchAdded := s.newSetRequest(ctx, training.LoggedSet{
		Lift:      training.LiftBench,
		Weight:    225,
		Reps:      5,
		Warmup:    false,
		Metadata:  map[string]string{"env": "prod"},
		CreatedAt: time.Now(),
	})
	require.NotZero(t, benchAdded.ID)
	assert.Equal(t, 1, benchAdded.CountToday)

	gotten := s.getSetRequest(ctx, added.ID)
	assert.Equal(t, added.ID, gotten.ID)
	assert.Equal(t, training.LiftSquat, gotten.Lift)
	assert.Equal(t, 315.0, gotten.Weight)
	assert.Equal(t, 5, gotten.Reps)
	require.NotNil(t, gotten.RPE)
	assert.InDelta(t, rpe, *gotten.RPE, 0.001)
	assert.Equal(t, "prod", gotten.Metadata["env"])

	listResp := s.listSetsRequest(ctx, sets.ListParams{Page: 1, Size: 10})
	assert.Equal(t, 3, listResp.Total)
	require.Len(t, listResp.Sets, 3)
	// newest first
	assert.Equal(t, benchAdded.ID, listResp.Sets[0].ID)

	squatList := s.listSetsRequest(ctx, sets.ListParams{
		SetParams: sets.SetParams{Lift: training.LiftSquat},
		Page:      1,
		Size:      10,
	})
	assert.Equal(t, 2, squatList.Total)

	deleteResp := s.deleteSetRequest(ctx, benchAdded.ID)
	assert.Equal(t, benchAdded.ID, deleteResp.DeletedID)

	// deleting it again is a 404
	req, err := http.NewRequestWithContext(
		ctx,
		"DELETE", fmt.Sprintf("%s/sets/%d", serverEndpoint, benchAdded.ID),
		nil,
	)
	require.NoError(t, err)
	mobileAppHeaders(req)
	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	s.deleteAllSets(ctx)
}

func (s *IntegrationTestSuite) TestSets_DuplicateRetry() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.deleteAllSets(ctx)

	set := training.LoggedSet{
		Lift:      training.LiftOverheadPress,
		Weight:    115,
		Reps:      5,
		CreatedAt: time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC),
	}
	added := s.newSetRequest(ctx, set)
	require.NotZero(t, added.ID)

	// resubmitting the exact same set (a mobile app retry) is rejected
	setJson, err := json.Marshal(set)
	require.NoError(t, err)
	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/sets", serverEndpoint),
		bytes.NewReader(setJson),
	)
	require.NoError(t, err)
	mobileAppHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	s.deleteAllSets(ctx)
}

func (s *IntegrationTestSuite) TestSets_Unauthorized() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setJson, err := json.Marshal(training.LoggedSet{
		Lift:   training.LiftBench,
		Weight: 185,
		Reps:   5,
	})
	require.NoError(t, err)

	t.Run("no auth at all", func(t *testing.T) {
		req, err := http.NewRequestWithContext(
			ctx,
			"POST", fmt.Sprintf("%s/sets", serverEndpoint),
			bytes.NewReader(setJson),
		)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.NoError(t, resp.Body.Close())
	})

	t.Run("wrong app secret", func(t *testing.T) {
		req, err := http.NewRequestWithContext(
			ctx,
			"POST", fmt.Sprintf("%s/sets", serverEndpoint),
			bytes.NewReader(setJson),
		)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "LiftStats/1.2.0 test")
		req.Header.Set("Authorization", "not-the-secret")
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.NoError(t, resp.Body.Close())
	})

	t.Run("logged in via session token", func(t *testing.T) {
		token := doLogin(ctx, t)
		req, err := http.NewRequestWithContext(
			ctx,
			"GET", fmt.Sprintf("%s/sets/page/1/size/10", serverEndpoint),
			nil,
		)
		require.NoError(t, err)
		req.Header.Set("User-Agent", "test-agent")
		req.Header.Set("X-LIFTSTATS-TOKEN", token)

		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, resp.Body.Close())
	})
}
