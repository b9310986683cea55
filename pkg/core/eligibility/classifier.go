package eligibility

import (
	"fmt"
	"sort"
	"time"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

// Sort priorities, ascending: lower values appear first in the candidate
// list. A clean worker's priority is -preferredCount, so workers preferred
// at more scopes rise to the top.
const (
	priorityTimeOff          = 3000
	prioritySchedule         = 2000
	priorityMandatoryNotPref = 1000
	priorityWaivableNotPref  = 500
)

// Classify runs a full classification pass over the snapshot and returns one
// verdict per worker, sorted by ascending priority with ties broken by
// stable input order. Classification is deterministic and has no side
// effects: identical snapshots always yield identical verdicts in identical
// order.
//
// Workers with role admin are excluded from the candidate pool entirely.
func Classify(snap Snapshot) ([]Verdict, error) {
	loc := snap.Location
	if loc == nil {
		loc = time.UTC
	}

	verdicts := make([]Verdict, 0, len(snap.Workers))

	for _, worker := range snap.Workers {
		if worker.Role == model.RoleAdmin {
			continue
		}

		matched := MatchedPositions(worker, snap.Required, snap.Window.Start)
		report := DetectConflicts(worker.ID, snap.Window, snap.Conflicts, snap.TimeOff, loc)

		prefs, err := ResolvePreferences(worker.ID, snap.Preferences)
		if err != nil {
			return nil, fmt.Errorf("failed to classify worker %s: %w", worker.ID, err)
		}

		v := Verdict{
			WorkerID:         worker.ID,
			WorkerName:       worker.FullName(),
			MatchedPositions: matched,
			QualifiesForJob:  len(matched) > 0,

			HasScheduleConflict:       report.HasScheduleConflict,
			HasBlockingConflict:       report.HasBlockingScheduleConflict,
			HasUnavailabilityConflict: report.HasUnavailabilityConflict,
			HasTimeOffConflict:        report.HasTimeOffConflict,

			HasMandatoryNotPreferred:    prefs.HasMandatoryNotPreferred,
			HasNonMandatoryNotPreferred: prefs.HasNonMandatoryNotPreferred,
			PreferredCount:              prefs.PreferredCount,
			HasPreferenceRecord:         prefs.HasAnyRecord(),

			ScheduleConflicts: report.ScheduleConflicts,
			TimeOffConflicts:  report.TimeOffConflicts,
			Preferences:       prefs,
		}

		v.IsEligibleByDefault = v.QualifiesForJob &&
			!v.HasTimeOffConflict &&
			!v.HasScheduleConflict &&
			!v.HasMandatoryNotPreferred &&
			(v.PreferredCount > 0 || !hasNotPreferred(prefs))

		v.SortPriority = sortPriority(v)

		verdicts = append(verdicts, v)
	}

	sort.SliceStable(verdicts, func(i, j int) bool {
		return verdicts[i].SortPriority < verdicts[j].SortPriority
	})

	return verdicts, nil
}

// sortPriority derives the verdict's sort key. Restriction causes are
// checked in severity order; a clean worker sorts by how many scopes prefer
// them.
func sortPriority(v Verdict) int {
	switch {
	case v.HasTimeOffConflict:
		return priorityTimeOff
	case v.HasScheduleConflict:
		return prioritySchedule
	case v.HasMandatoryNotPreferred:
		return priorityMandatoryNotPref
	case v.HasNonMandatoryNotPreferred:
		return priorityWaivableNotPref
	default:
		return -v.PreferredCount
	}
}

// hasNotPreferred reports whether any scope carries a not-preferred record.
func hasNotPreferred(r PreferenceResolution) bool {
	return r.HasMandatoryNotPreferred || r.HasNonMandatoryNotPreferred
}

// VisibleCandidates filters verdicts to the default candidate view: workers
// eligible by default, plus any worker already in the caller's selection set
// or already assigned to the job being edited. Default-view filtering hides
// only not-yet-selected, non-default-eligible workers; it never hides a
// worker the caller has committed to.
func VisibleCandidates(verdicts []Verdict, selected SelectionSet, assigned []string) []Verdict {
	assignedSet := make(map[string]bool, len(assigned))
	for _, id := range assigned {
		assignedSet[id] = true
	}

	visible := make([]Verdict, 0, len(verdicts))
	for _, v := range verdicts {
		if v.IsEligibleByDefault || selected.Has(v.WorkerID) || assignedSet[v.WorkerID] {
			visible = append(visible, v)
		}
	}
	return visible
}
