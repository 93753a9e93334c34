package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/strengthlab/liftstats/internal/training"
	"github.com/strengthlab/liftstats/internal/training/plates"
	"github.com/strengthlab/liftstats/internal/training/program"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) createProgramRequest(ctx context.Context, p program.Program) program.Program {
	programJson, err := json.Marshal(p)
	require.NoError(s.T(), err)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/program", serverEndpoint),
		bytes.NewReader(programJson),
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

	var created program.Program
	require.NoError(s.T(), json.Unmarshal(respBytes, &created))
	return created
}

func (s *IntegrationTestSuite) getProgramRequest(ctx context.Context, id int, expectedStatus int) *program.Program {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/program/%d", serverEndpoint, id),
		nil,
	)
	require.NoError(s.T(), err)
	mobileAppHeaders(req)

	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), expectedStatus, resp.StatusCode)
	defer resp.Body.Close()

	if expectedStatus != http.StatusOK {
		return nil
	}

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)

	var p program.Program
	require.NoError(s.T(), json.Unmarshal(respBytes, &p))
	return &p
}

func (s *IntegrationTestSuite) nextWorkoutRequest(ctx context.Context, id int, withPlates bool) program.NextWorkoutResponse {
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/program/%d/next?plates=%t", serverEndpoint, id, withPlates),
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

	var workout program.NextWorkoutResponse
	require.NoError(s.T(), json.Unmarshal(respBytes, &workout))
	return workout
}

func (s *IntegrationTestSuite) completeSessionRequest(ctx context.Context, id int) program.Program {
	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/program/%d/complete", serverEndpoint, id),
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

	var advanced program.Program
	require.NoError(s.T(), json.Unmarshal(respBytes, &advanced))
	return advanced
}

func (s *IntegrationTestSuite) TestProgram_PercentageCycle() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	created := s.createProgramRequest(ctx, program.Program{
		Type:  program.TypePercentageCycle,
		Week:  1,
		Cycle: 1,
		TrainingMaxes: map[training.Lift]float64{
			training.LiftSquat: 300,
		},
	})
	require.NotZero(t, created.ID)
	assert.Equal(t, program.TypePercentageCycle, created.Type)
	assert.Equal(t, 1, created.Week)

	gotten := s.getProgramRequest(ctx, created.ID, http.StatusOK)
	require.NotNil(t, gotten)
	assert.Equal(t, 300.0, gotten.TrainingMaxes[training.LiftSquat])

	workout := s.nextWorkoutRequest(ctx, created.ID, true)
	// 3 main sets plus 5 accessory sets for the single tracked lift
	require.Len(t, workout.Sets, 8)

	firstSet := workout.Sets[0]
	assert.Equal(t, training.LiftSquat, firstSet.Lift)
	assert.Equal(t, 195.0, firstSet.Weight) // 65% of 300
	assert.Equal(t, 5, firstSet.Reps)
	assert.False(t, firstSet.AMRAP)
	require.NotNil(t, firstSet.Loading)
	assert.True(t, firstSet.Loading.Exact)
	assert.Equal(t, []float64{45, 25, 5}, firstSet.Loading.Plates)

	// last main set is the max effort one
	thirdSet := workout.Sets[2]
	assert.Equal(t, 255.0, thirdSet.Weight) // 85% of 300
	assert.True(t, thirdSet.AMRAP)

	// accessory work at 50% of the training max
	accessory := workout.Sets[3]
	assert.Equal(t, 150.0, accessory.Weight)
	assert.Equal(t, 10, accessory.Reps)

	advanced := s.completeSessionRequest(ctx, created.ID)
	assert.Equal(t, 2, advanced.Week)
	assert.Equal(t, 1, advanced.Cycle)
	assert.Equal(t, 300.0, advanced.TrainingMaxes[training.LiftSquat])

	// weeks 2, 3 and the deload week wrap back to week 1 of the next
	// cycle, with the training max bumped by the lower body increment
	s.completeSessionRequest(ctx, created.ID)
	s.completeSessionRequest(ctx, created.ID)
	wrapped := s.completeSessionRequest(ctx, created.ID)
	assert.Equal(t, 1, wrapped.Week)
	assert.Equal(t, 2, wrapped.Cycle)
	assert.Equal(t, 310.0, wrapped.TrainingMaxes[training.LiftSquat])
}

func (s *IntegrationTestSuite) TestProgram_LinearProgression() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	created := s.createProgramRequest(ctx, program.Program{
		Type:          program.TypeLinearProgression,
		SessionNumber: 1,
		Workout:       program.WorkoutA,
		CurrentWeights: map[training.Lift]float64{
			training.LiftSquat:         200,
			training.LiftBench:         150,
			training.LiftDeadlift:      250,
			training.LiftOverheadPress: 100,
		},
	})
	require.NotZero(t, created.ID)

	workout := s.nextWorkoutRequest(ctx, created.ID, false)
	// workout A: squat 3x5, bench 3x5, deadlift 1x5
	require.Len(t, workout.Sets, 7)
	assert.Equal(t, training.LiftSquat, workout.Sets[0].Lift)
	assert.Equal(t, 200.0, workout.Sets[0].Weight)
	assert.Equal(t, training.LiftBench, workout.Sets[3].Lift)
	assert.Equal(t, 150.0, workout.Sets[3].Weight)
	assert.Equal(t, training.LiftDeadlift, workout.Sets[6].Lift)
	assert.Equal(t, 250.0, workout.Sets[6].Weight)
	assert.Nil(t, workout.Sets[0].Loading)

	advanced := s.completeSessionRequest(ctx, created.ID)
	assert.Equal(t, 2, advanced.SessionNumber)
	assert.Equal(t, program.WorkoutB, advanced.Workout)
	assert.Equal(t, 210.0, advanced.CurrentWeights[training.LiftSquat])
	assert.Equal(t, 155.0, advanced.CurrentWeights[training.LiftBench])
	assert.Equal(t, 260.0, advanced.CurrentWeights[training.LiftDeadlift])
	// overhead press only moves on workout B sessions
	assert.Equal(t, 100.0, advanced.CurrentWeights[training.LiftOverheadPress])

	nextWorkout := s.nextWorkoutRequest(ctx, created.ID, false)
	// workout B: squat 3x5, ohp 3x5, deadlift 1x5
	require.Len(t, nextWorkout.Sets, 7)
	assert.Equal(t, training.LiftOverheadPress, nextWorkout.Sets[3].Lift)
	assert.Equal(t, 100.0, nextWorkout.Sets[3].Weight)

	// delete it, then it is gone
	req, err := http.NewRequestWithContext(
		ctx,
		"DELETE", fmt.Sprintf("%s/program/%d", serverEndpoint, created.ID),
		nil,
	)
	require.NoError(t, err)
	mobileAppHeaders(req)
	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	var deleteResp program.DeleteProgramResponse
	require.NoError(t, json.Unmarshal(respBytes, &deleteResp))
	assert.Equal(t, created.ID, deleteResp.DeletedID)

	s.getProgramRequest(ctx, created.ID, http.StatusNotFound)
}

func (s *IntegrationTestSuite) TestProgram_InvalidCreate() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	programJson, err := json.Marshal(program.Program{
		Type: program.TypePercentageCycle,
		// no week, cycle or training maxes
	})
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(
		ctx,
		"POST", fmt.Sprintf("%s/program", serverEndpoint),
		bytes.NewReader(programJson),
	)
	require.NoError(t, err)
	mobileAppHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NoError(t, resp.Body.Close())
}

func (s *IntegrationTestSuite) TestPlatesSolve_Public() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// the plate solver needs no auth
	req, err := http.NewRequestWithContext(
		ctx,
		"GET", fmt.Sprintf("%s/plates/solve?target=225", serverEndpoint),
		nil,
	)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var result plates.Result
	require.NoError(t, json.Unmarshal(respBytes, &result))
	assert.True(t, result.Exact)
	assert.Equal(t, 225.0, result.Total)
	assert.Equal(t, 90.0, result.PerSide)
	assert.Equal(t, []float64{45, 45}, result.Plates)
}
