package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

func TestResolvePreferences_NoRecords(t *testing.T) {
	res, err := ResolvePreferences("w1", PreferenceSets{})

	require.NoError(t, err)
	assert.Nil(t, res.Company)
	assert.Nil(t, res.Site)
	assert.Nil(t, res.Client)
	assert.False(t, res.HasAnyRecord())
	assert.Equal(t, 0, res.PreferredCount)
}

func TestResolvePreferences_PreferredCountAcrossScopes(t *testing.T) {
	sets := PreferenceSets{
		Company: []model.PreferenceRecord{
			{Scope: model.ScopeCompany, WorkerID: "w1", Type: model.Preferred},
		},
		Site: []model.PreferenceRecord{
			{Scope: model.ScopeSite, WorkerID: "w1", Type: model.Preferred},
		},
		Client: []model.PreferenceRecord{
			{Scope: model.ScopeClient, WorkerID: "w2", Type: model.Preferred},
		},
	}

	res, err := ResolvePreferences("w1", sets)

	require.NoError(t, err)
	assert.Equal(t, 2, res.PreferredCount)
	assert.False(t, res.HasMandatoryNotPreferred)
	assert.False(t, res.HasNonMandatoryNotPreferred)
	require.NotNil(t, res.Company)
	assert.Equal(t, model.Preferred, res.Company.Type)
	assert.Nil(t, res.Client, "other workers' records must not match")
}

func TestResolvePreferences_MandatorySuppressesNonMandatory(t *testing.T) {
	// One mandatory not-preferred (site) and one waivable (client): the
	// mandatory restriction takes total priority.
	sets := PreferenceSets{
		Site: []model.PreferenceRecord{
			{Scope: model.ScopeSite, WorkerID: "w1", Type: model.NotPreferred, IsMandatory: true, Reason: "site incident"},
		},
		Client: []model.PreferenceRecord{
			{Scope: model.ScopeClient, WorkerID: "w1", Type: model.NotPreferred, Reason: "client request"},
		},
	}

	res, err := ResolvePreferences("w1", sets)

	require.NoError(t, err)
	assert.True(t, res.HasMandatoryNotPreferred)
	assert.False(t, res.HasNonMandatoryNotPreferred,
		"mandatory restriction suppresses the non-mandatory classification")
	assert.Equal(t, "site incident", res.NotPreferredReason())
}

func TestResolvePreferences_NonMandatoryOnly(t *testing.T) {
	sets := PreferenceSets{
		Client: []model.PreferenceRecord{
			{Scope: model.ScopeClient, WorkerID: "w1", Type: model.NotPreferred, Reason: "client request"},
		},
	}

	res, err := ResolvePreferences("w1", sets)

	require.NoError(t, err)
	assert.False(t, res.HasMandatoryNotPreferred)
	assert.True(t, res.HasNonMandatoryNotPreferred)
	assert.Equal(t, "client request", res.NotPreferredReason())
}

func TestResolvePreferences_MixedPolarities(t *testing.T) {
	sets := PreferenceSets{
		Company: []model.PreferenceRecord{
			{Scope: model.ScopeCompany, WorkerID: "w1", Type: model.Preferred},
		},
		Site: []model.PreferenceRecord{
			{Scope: model.ScopeSite, WorkerID: "w1", Type: model.NotPreferred, Reason: "crew mismatch"},
		},
	}

	res, err := ResolvePreferences("w1", sets)

	require.NoError(t, err)
	assert.Equal(t, 1, res.PreferredCount)
	assert.True(t, res.HasNonMandatoryNotPreferred)
	assert.True(t, res.HasAnyRecord())
}

func TestResolvePreferences_DuplicateRecordsAreIntegrityError(t *testing.T) {
	sets := PreferenceSets{
		Site: []model.PreferenceRecord{
			{Scope: model.ScopeSite, WorkerID: "w1", Type: model.Preferred},
			{Scope: model.ScopeSite, WorkerID: "w1", Type: model.NotPreferred},
		},
	}

	_, err := ResolvePreferences("w1", sets)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "data integrity violation")
}
