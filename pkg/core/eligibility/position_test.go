package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

var jobStart = time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

func expiry(t time.Time) *time.Time { return &t }

func TestQualifiesFor_FixedRoles(t *testing.T) {
	combined := model.Worker{ID: "w1", Role: model.RoleLCTTCP}
	assert.True(t, QualifiesFor(combined, model.PositionLCT, jobStart))
	assert.True(t, QualifiesFor(combined, model.PositionTCP, jobStart))
	assert.True(t, QualifiesFor(combined, model.PositionLCTTCP, jobStart))
	assert.False(t, QualifiesFor(combined, model.PositionSupervisor, jobStart))

	lct := model.Worker{ID: "w2", Role: model.RoleLCT}
	assert.True(t, QualifiesFor(lct, model.PositionLCT, jobStart))
	assert.False(t, QualifiesFor(lct, model.PositionTCP, jobStart))
	assert.False(t, QualifiesFor(lct, model.PositionLCTTCP, jobStart))

	tcp := model.Worker{ID: "w3", Role: model.RoleTCP}
	assert.True(t, QualifiesFor(tcp, model.PositionTCP, jobStart))
	assert.False(t, QualifiesFor(tcp, model.PositionLCT, jobStart))
}

func TestQualifiesFor_RoleOverridesCertifications(t *testing.T) {
	// A fixed lct role with a valid TCP certification still does not grant tcp.
	worker := model.Worker{
		ID:                     "w1",
		Role:                   model.RoleLCT,
		TCPCertificationExpiry: expiry(jobStart.AddDate(1, 0, 0)),
	}
	assert.False(t, QualifiesFor(worker, model.PositionTCP, jobStart))
	assert.True(t, QualifiesFor(worker, model.PositionLCT, jobStart))
}

func TestQualifiesFor_CertificationDerived(t *testing.T) {
	valid := expiry(jobStart.AddDate(0, 6, 0))
	expired := expiry(jobStart.AddDate(0, -1, 0))

	both := model.Worker{
		ID:                     "w1",
		Role:                   model.RoleWorker,
		TCPCertificationExpiry: valid,
		DriverLicenseExpiry:    valid,
	}
	assert.True(t, QualifiesFor(both, model.PositionTCP, jobStart))
	assert.True(t, QualifiesFor(both, model.PositionLCT, jobStart))
	assert.True(t, QualifiesFor(both, model.PositionLCTTCP, jobStart))

	tcpOnly := model.Worker{
		ID:                     "w2",
		Role:                   model.RoleEmployee,
		TCPCertificationExpiry: valid,
	}
	assert.True(t, QualifiesFor(tcpOnly, model.PositionTCP, jobStart))
	assert.False(t, QualifiesFor(tcpOnly, model.PositionLCT, jobStart))
	assert.False(t, QualifiesFor(tcpOnly, model.PositionLCTTCP, jobStart))

	expiredCerts := model.Worker{
		ID:                     "w3",
		Role:                   model.RoleWorker,
		TCPCertificationExpiry: expired,
		DriverLicenseExpiry:    expired,
	}
	assert.False(t, QualifiesFor(expiredCerts, model.PositionTCP, jobStart),
		"expired certification must not grant a position")
	assert.False(t, QualifiesFor(expiredCerts, model.PositionLCT, jobStart))

	noCerts := model.Worker{ID: "w4", Role: model.RoleWorker}
	assert.False(t, QualifiesFor(noCerts, model.PositionTCP, jobStart),
		"no fallback positions absent a valid certification")
	assert.False(t, QualifiesFor(noCerts, model.PositionLCT, jobStart))
}

func TestQualifiesFor_AdminNeverQualifies(t *testing.T) {
	admin := model.Worker{
		ID:                     "a1",
		Role:                   model.RoleAdmin,
		TCPCertificationExpiry: expiry(jobStart.AddDate(1, 0, 0)),
		DriverLicenseExpiry:    expiry(jobStart.AddDate(1, 0, 0)),
		Positions:              []model.PositionTag{model.PositionTCP},
	}
	assert.False(t, QualifiesFor(admin, model.PositionTCP, jobStart))
	assert.False(t, QualifiesFor(admin, model.PositionLCT, jobStart))
	assert.False(t, QualifiesFor(admin, model.PositionSupervisor, jobStart))
}

func TestQualifiesFor_OtherRoleFallsBackToDeclaredPositions(t *testing.T) {
	supervisor := model.Worker{
		ID:        "s1",
		Role:      model.RoleSupervisor,
		Positions: []model.PositionTag{model.PositionSupervisor},
	}
	assert.True(t, QualifiesFor(supervisor, model.PositionSupervisor, jobStart))
	assert.False(t, QualifiesFor(supervisor, model.PositionTCP, jobStart))

	noDeclared := model.Worker{ID: "s2", Role: model.RoleSupervisor}
	assert.False(t, QualifiesFor(noDeclared, model.PositionSupervisor, jobStart))
}

func TestMatchedPositions_CombinedRoleMatchesBothBuckets(t *testing.T) {
	worker := model.Worker{ID: "w1", Role: model.RoleLCTTCP}
	required := []model.PositionRequirement{
		{Position: model.PositionTCP, Count: 1},
		{Position: model.PositionLCT, Count: 1},
	}

	matched := MatchedPositions(worker, required, jobStart)

	assert.Equal(t, []model.PositionTag{model.PositionTCP, model.PositionLCT}, matched)
	assert.Equal(t, "tcp, lct", PositionLabel(matched))
}

func TestMatchedPositions_Deduplicates(t *testing.T) {
	worker := model.Worker{ID: "w1", Role: model.RoleTCP}
	required := []model.PositionRequirement{
		{Position: model.PositionTCP, Count: 2},
		{Position: model.PositionTCP, Count: 1},
		{Position: model.PositionLCT, Count: 1},
	}

	matched := MatchedPositions(worker, required, jobStart)

	assert.Equal(t, []model.PositionTag{model.PositionTCP}, matched)
}
