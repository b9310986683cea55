package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danhmatthews/crewdesk/pkg/core/eligibility"
	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

func TestApplyRequirementChange_ForcesDeselectionAndClearsAssignment(t *testing.T) {
	// w1 (tcp-only) was selected while the slot required tcp; the slot now
	// requires lct, so their selection is invalidated and their assignment
	// cleared.
	input := testInput()
	input.Window.JobID = "job-1"
	input.Required = []model.PositionRequirement{
		{Position: model.PositionLCT, Count: 1},
	}
	input.Selected = eligibility.NewSelectionSet("w1", "w2")

	store := &stubStore{
		workers: []model.Worker{
			{ID: "w1", FirstName: "Ana", LastName: "Brice", Role: model.RoleTCP},
			{ID: "w2", FirstName: "Ben", LastName: "Cole", Role: model.RoleLCT},
		},
	}

	result, err := ApplyRequirementChange(context.Background(), store, zap.NewNop(), input)

	require.NoError(t, err)
	assert.Equal(t, []string{"w1"}, result.Deselected)
	assert.False(t, result.Selected.Has("w1"))
	assert.True(t, result.Selected.Has("w2"))
	assert.Equal(t, [][2]string{{"job-1", "w1"}}, store.cleared,
		"invalid assignment data must be cleared, not silently retained")
}

func TestApplyRequirementChange_NoChangesWhenAllStillQualify(t *testing.T) {
	input := testInput()
	input.Window.JobID = "job-1"
	input.Selected = eligibility.NewSelectionSet("w1")

	store := &stubStore{
		workers: []model.Worker{
			{ID: "w1", FirstName: "Ana", LastName: "Brice", Role: model.RoleTCP},
		},
	}

	result, err := ApplyRequirementChange(context.Background(), store, zap.NewNop(), input)

	require.NoError(t, err)
	assert.Empty(t, result.Deselected)
	assert.True(t, result.Selected.Has("w1"))
	assert.Empty(t, store.cleared)
}

func TestApplyRequirementChange_PropagatesInputsUnavailable(t *testing.T) {
	input := testInput()
	input.Selected = eligibility.NewSelectionSet("w1")

	store := &stubStore{timeOffErr: assert.AnError}

	result, err := ApplyRequirementChange(context.Background(), store, zap.NewNop(), input)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrInputsUnavailable)
	assert.Empty(t, store.cleared, "no assignment is touched while inputs are unavailable")
}
