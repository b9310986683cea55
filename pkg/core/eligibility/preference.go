package eligibility

import (
	"fmt"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

// ScopePreference is the resolved preference state at a single scope:
// the record's polarity, whether it is non-waivable, and its free-text
// reason for display.
type ScopePreference struct {
	Type        model.PreferenceType
	IsMandatory bool
	Reason      string
}

// PreferenceResolution is a worker's resolved preference state across the
// company, site, and client scopes. Nil scope fields mean no active record
// at that scope.
type PreferenceResolution struct {
	Company *ScopePreference
	Site    *ScopePreference
	Client  *ScopePreference

	// HasMandatoryNotPreferred is true if any scope carries a not-preferred
	// record marked mandatory. Blocks selection outright.
	HasMandatoryNotPreferred bool

	// HasNonMandatoryNotPreferred is true if any scope carries a waivable
	// not-preferred record and no scope carries a mandatory one. A mandatory
	// restriction takes total priority and suppresses this classification.
	HasNonMandatoryNotPreferred bool

	// PreferredCount is the number of scopes with a preferred record.
	PreferredCount int
}

// HasAnyRecord reports whether any scope carries a record of either
// polarity.
func (r PreferenceResolution) HasAnyRecord() bool {
	return r.Company != nil || r.Site != nil || r.Client != nil
}

// NotPreferredReason returns the reason of the highest-priority
// not-preferred record for display: mandatory records win over waivable
// ones, then company before site before client. Empty if no not-preferred
// record exists.
func (r PreferenceResolution) NotPreferredReason() string {
	scopes := []*ScopePreference{r.Company, r.Site, r.Client}
	if r.HasMandatoryNotPreferred {
		for _, sp := range scopes {
			if sp != nil && sp.Type == model.NotPreferred && sp.IsMandatory {
				return sp.Reason
			}
		}
	}
	for _, sp := range scopes {
		if sp != nil && sp.Type == model.NotPreferred {
			return sp.Reason
		}
	}
	return ""
}

// ResolvePreferences resolves one worker's preference state from the three
// scope record sets, each pre-filtered to the job's specific company, site,
// and client. More than one record for the worker at a single scope is a
// data-integrity violation: the resolver reports it rather than guessing
// which record wins.
func ResolvePreferences(workerID string, sets PreferenceSets) (PreferenceResolution, error) {
	var res PreferenceResolution
	var err error

	if res.Company, err = resolveScope(workerID, model.ScopeCompany, sets.Company); err != nil {
		return PreferenceResolution{}, err
	}
	if res.Site, err = resolveScope(workerID, model.ScopeSite, sets.Site); err != nil {
		return PreferenceResolution{}, err
	}
	if res.Client, err = resolveScope(workerID, model.ScopeClient, sets.Client); err != nil {
		return PreferenceResolution{}, err
	}

	for _, sp := range []*ScopePreference{res.Company, res.Site, res.Client} {
		if sp == nil {
			continue
		}
		switch sp.Type {
		case model.Preferred:
			res.PreferredCount++
		case model.NotPreferred:
			if sp.IsMandatory {
				res.HasMandatoryNotPreferred = true
			} else {
				res.HasNonMandatoryNotPreferred = true
			}
		}
	}

	// Mandatory restrictions suppress the non-mandatory classification even
	// when another scope carries a waivable record.
	if res.HasMandatoryNotPreferred {
		res.HasNonMandatoryNotPreferred = false
	}

	return res, nil
}

// resolveScope finds the worker's record in a single scope set.
func resolveScope(workerID string, scope model.PreferenceScope, records []model.PreferenceRecord) (*ScopePreference, error) {
	var found *ScopePreference
	for _, rec := range records {
		if rec.WorkerID != workerID {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf(
				"data integrity violation: multiple active %s preference records for worker %s",
				scope, workerID,
			)
		}
		found = &ScopePreference{
			Type:        rec.Type,
			IsMandatory: rec.IsMandatory,
			Reason:      rec.Reason,
		}
	}
	return found, nil
}
