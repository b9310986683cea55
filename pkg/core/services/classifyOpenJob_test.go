package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danhmatthews/crewdesk/pkg/core/eligibility"
	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

// stubStore implements ClassifyStore and RequirementChangeStore with
// overridable behavior per test.
type stubStore struct {
	workers      []model.Worker
	conflicts    []model.ScheduleConflict
	timeOff      []model.TimeOffRequest
	prefs        map[model.PreferenceScope][]model.PreferenceRecord
	workersErr   error
	conflictsErr error
	timeOffErr   error
	prefsErr     error

	cleared [][2]string
}

func (s *stubStore) GetWorkers(ctx context.Context) ([]model.Worker, error) {
	return s.workers, s.workersErr
}

func (s *stubStore) GetScheduleConflicts(ctx context.Context, window model.JobWindow) ([]model.ScheduleConflict, error) {
	return s.conflicts, s.conflictsErr
}

func (s *stubStore) GetTimeOffRequests(ctx context.Context, from, to time.Time) ([]model.TimeOffRequest, error) {
	return s.timeOff, s.timeOffErr
}

func (s *stubStore) GetPreferences(ctx context.Context, scope model.PreferenceScope, entityID string) ([]model.PreferenceRecord, error) {
	if s.prefsErr != nil {
		return nil, s.prefsErr
	}
	return s.prefs[scope], nil
}

func (s *stubStore) ClearSlotAssignment(ctx context.Context, jobID, workerID string) error {
	s.cleared = append(s.cleared, [2]string{jobID, workerID})
	return nil
}

func testInput() ClassifyJobInput {
	return ClassifyJobInput{
		Window: model.JobWindow{
			Start:     time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC),
			End:       time.Date(2024, 6, 10, 16, 0, 0, 0, time.UTC),
			CompanyID: "co1",
			SiteID:    "site1",
			ClientID:  "cl1",
		},
		Required: []model.PositionRequirement{
			{Position: model.PositionTCP, Count: 1},
		},
		Location: time.UTC,
	}
}

func TestClassifyOpenJob_HappyPath(t *testing.T) {
	store := &stubStore{
		workers: []model.Worker{
			{ID: "w1", FirstName: "Ana", LastName: "Brice", Role: model.RoleTCP},
			{ID: "w2", FirstName: "Ben", LastName: "Cole", Role: model.RoleTCP},
		},
		conflicts: []model.ScheduleConflict{
			{WorkerID: "w2", Kind: model.ConflictDirectOverlap},
		},
	}

	result, err := ClassifyOpenJob(context.Background(), store, zap.NewNop(), testInput())

	require.NoError(t, err)
	require.Len(t, result.Verdicts, 2)
	assert.Equal(t, "w1", result.Verdicts[0].WorkerID)
	assert.True(t, result.Verdicts[0].IsEligibleByDefault)
	assert.True(t, result.Verdicts[1].HasBlockingConflict)

	require.Len(t, result.Visible, 1)
	assert.Equal(t, "w1", result.Visible[0].WorkerID)
}

func TestClassifyOpenJob_FetchFailuresAreInputsUnavailable(t *testing.T) {
	cause := errors.New("connection refused")

	cases := []struct {
		name  string
		store *stubStore
	}{
		{"workers", &stubStore{workersErr: cause}},
		{"schedule", &stubStore{conflictsErr: cause}},
		{"time off", &stubStore{timeOffErr: cause}},
		{"preferences", &stubStore{prefsErr: cause}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ClassifyOpenJob(context.Background(), tc.store, zap.NewNop(), testInput())

			require.Error(t, err)
			assert.Nil(t, result, "partial input must never be classified")
			assert.True(t, errors.Is(err, ErrInputsUnavailable))
			assert.True(t, errors.Is(err, cause))
		})
	}
}

func TestClassifyOpenJob_ExcludesOwnJobConflicts(t *testing.T) {
	input := testInput()
	input.Window.JobID = "job-1"

	store := &stubStore{
		workers: []model.Worker{
			{ID: "w1", FirstName: "Ana", LastName: "Brice", Role: model.RoleTCP},
		},
		conflicts: []model.ScheduleConflict{
			{WorkerID: "w1", Kind: model.ConflictDirectOverlap, JobID: "job-1"},
			{WorkerID: "w1", Kind: model.ConflictGapViolation, JobID: "job-2"},
		},
	}

	result, err := ClassifyOpenJob(context.Background(), store, zap.NewNop(), input)

	require.NoError(t, err)
	require.Len(t, result.Verdicts, 1)
	v := result.Verdicts[0]
	assert.False(t, v.HasBlockingConflict, "a job never conflicts with itself")
	assert.True(t, v.HasScheduleConflict, "conflicts from other jobs survive")
	require.Len(t, v.ScheduleConflicts, 1)
	assert.Equal(t, "job-2", v.ScheduleConflicts[0].JobID)
}

func TestClassifyOpenJob_SelectedWorkerStaysVisible(t *testing.T) {
	input := testInput()
	input.Selected = eligibility.NewSelectionSet("w2")

	store := &stubStore{
		workers: []model.Worker{
			{ID: "w1", FirstName: "Ana", LastName: "Brice", Role: model.RoleTCP},
			{ID: "w2", FirstName: "Ben", LastName: "Cole", Role: model.RoleTCP},
		},
		conflicts: []model.ScheduleConflict{
			{WorkerID: "w2", Kind: model.ConflictDirectOverlap},
		},
	}

	result, err := ClassifyOpenJob(context.Background(), store, zap.NewNop(), input)

	require.NoError(t, err)
	require.Len(t, result.Visible, 2)
}
