package eligibility

import (
	"errors"
	"fmt"
	"sort"
)

// SelectionSet is the caller-owned set of worker ids currently selected for
// notification or assignment. It is mutated only through the transition
// functions below, which return the next set and leave the input unchanged.
// Concurrent mutation from multiple triggers must be serialized by the
// caller.
type SelectionSet map[string]struct{}

// NewSelectionSet builds a selection set from worker ids.
func NewSelectionSet(ids ...string) SelectionSet {
	set := make(SelectionSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s SelectionSet) Has(workerID string) bool {
	_, ok := s[workerID]
	return ok
}

// IDs returns the selected worker ids in sorted order.
func (s SelectionSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s SelectionSet) clone() SelectionSet {
	next := make(SelectionSet, len(s)+1)
	for id := range s {
		next[id] = struct{}{}
	}
	return next
}

// AckOutcome is the result of the acknowledgement step presented to the user
// for warn-class restrictions.
type AckOutcome int

const (
	// AckNotAsked means no acknowledgement dialog has been shown yet.
	AckNotAsked AckOutcome = iota

	// AckProceed means the user confirmed the warning.
	AckProceed

	// AckCancel means the user dismissed the warning.
	AckCancel
)

// RestrictionKind names the single flattened cause reported when a
// transition is blocked or needs acknowledgement. When a worker has multiple
// simultaneous causes, the highest-severity one within its class wins:
// time off, then schedule, then mandatory preference, then waivable
// preference.
type RestrictionKind string

const (
	RestrictionNone                  RestrictionKind = ""
	RestrictionTimeOff               RestrictionKind = "time_off_conflict"
	RestrictionBlockingSchedule      RestrictionKind = "blocking_schedule_conflict"
	RestrictionGapViolation          RestrictionKind = "gap_violation"
	RestrictionMandatoryNotPreferred RestrictionKind = "mandatory_not_preferred"
	RestrictionNotPreferred          RestrictionKind = "not_preferred"
)

// ErrSelectionBlocked marks a forbidden Unselected -> Selected transition.
var ErrSelectionBlocked = errors.New("selection blocked")

// ErrAcknowledgementRequired marks a transition that needs the user to
// confirm a warning before it can complete.
var ErrAcknowledgementRequired = errors.New("acknowledgement required")

// BlockedError reports why a worker cannot be selected. Blocked-class
// restrictions can never be acknowledged away; the worker can only be
// removed from the set.
type BlockedError struct {
	WorkerID string
	Kind     RestrictionKind
	Detail   string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("worker %s: selection blocked: %s", e.WorkerID, e.Kind)
}

func (e *BlockedError) Is(target error) bool { return target == ErrSelectionBlocked }

// AckRequiredError reports a warn-class restriction that must be presented
// to the user before the worker can be selected. Detail carries the reason
// or conflict description to render in the dialog.
type AckRequiredError struct {
	WorkerID string
	Kind     RestrictionKind
	Detail   string
}

func (e *AckRequiredError) Error() string {
	return fmt.Sprintf("worker %s: acknowledgement required: %s", e.WorkerID, e.Kind)
}

func (e *AckRequiredError) Is(target error) bool { return target == ErrAcknowledgementRequired }

// blockingRestriction returns the flattened blocked-class cause, if any.
func blockingRestriction(v Verdict) RestrictionKind {
	switch {
	case v.HasTimeOffConflict:
		return RestrictionTimeOff
	case v.HasBlockingConflict:
		return RestrictionBlockingSchedule
	case v.HasMandatoryNotPreferred:
		return RestrictionMandatoryNotPreferred
	}
	return RestrictionNone
}

// warnRestriction returns the flattened warn-class cause, if any. Only
// meaningful when blockingRestriction returned none.
func warnRestriction(v Verdict) RestrictionKind {
	switch {
	case v.HasScheduleConflict:
		// Non-blocking by construction here: gap violations only.
		return RestrictionGapViolation
	case v.HasNonMandatoryNotPreferred:
		return RestrictionNotPreferred
	}
	return RestrictionNone
}

// warnDetail picks the display detail for a warn-class restriction.
func warnDetail(v Verdict, kind RestrictionKind) string {
	if kind == RestrictionGapViolation && len(v.ScheduleConflicts) > 0 {
		c := v.ScheduleConflicts[0]
		return fmt.Sprintf("assignment %s at %s (%s) within shift-gap window", c.JobNumber, c.SiteName, c.Client)
	}
	return v.Preferences.NotPreferredReason()
}

// Select attempts the Unselected -> Selected transition for one worker and
// returns the next selection set.
//
//   - Blocked-class verdicts (blocking schedule conflict, time-off conflict,
//     mandatory not-preferred) return a *BlockedError; no acknowledgement
//     can override them.
//   - Warn-class verdicts (gap-violation-only conflict, non-mandatory
//     not-preferred) require ack == AckProceed. With AckNotAsked an
//     *AckRequiredError is returned so the caller can present the dialog;
//     with AckCancel the worker stays unselected with no error.
//   - Clean verdicts transition immediately.
//
// Selecting an already-selected worker is a no-op.
func Select(sel SelectionSet, workerID string, v Verdict, ack AckOutcome) (SelectionSet, error) {
	if sel.Has(workerID) {
		return sel, nil
	}

	if kind := blockingRestriction(v); kind != RestrictionNone {
		return sel, &BlockedError{
			WorkerID: workerID,
			Kind:     kind,
			Detail:   v.Preferences.NotPreferredReason(),
		}
	}

	if kind := warnRestriction(v); kind != RestrictionNone {
		switch ack {
		case AckProceed:
			// Fall through to selection.
		case AckCancel:
			return sel, nil
		default:
			return sel, &AckRequiredError{
				WorkerID: workerID,
				Kind:     kind,
				Detail:   warnDetail(v, kind),
			}
		}
	}

	next := sel.clone()
	next[workerID] = struct{}{}
	return next, nil
}

// Deselect removes a worker from the selection set. The Selected ->
// Unselected transition is always allowed, with no acknowledgement, for any
// verdict.
func Deselect(sel SelectionSet, workerID string) SelectionSet {
	if !sel.Has(workerID) {
		return sel
	}
	next := sel.clone()
	delete(next, workerID)
	return next
}

// SelectAll adds every clean worker from the verdict list to the selection
// set. A worker is clean only when they qualify for the job and carry no
// conflict of any kind and no preference record of either polarity: workers
// needing individual acknowledgement are never added in bulk, and even
// preferred workers are left for explicit selection.
func SelectAll(sel SelectionSet, verdicts []Verdict) SelectionSet {
	next := sel.clone()
	for _, v := range verdicts {
		if isClean(v) {
			next[v.WorkerID] = struct{}{}
		}
	}
	return next
}

// DeselectAll empties the selection set unconditionally.
func DeselectAll(sel SelectionSet) SelectionSet {
	return make(SelectionSet)
}

// isClean reports whether a verdict carries no conflict flag and no
// preference record of either polarity.
func isClean(v Verdict) bool {
	return v.QualifiesForJob &&
		!v.HasScheduleConflict &&
		!v.HasTimeOffConflict &&
		!v.HasPreferenceRecord
}

// InvalidateUnqualified force-deselects workers whose reclassified verdict
// no longer qualifies them for any required position, after the job's
// required positions or time window changed. It returns the next selection
// set and the removed worker ids so the caller can clear dependent
// assignment data; a now-invalid assignment is never silently retained.
func InvalidateUnqualified(sel SelectionSet, verdicts []Verdict) (SelectionSet, []string) {
	byID := make(map[string]Verdict, len(verdicts))
	for _, v := range verdicts {
		byID[v.WorkerID] = v
	}

	next := sel.clone()
	var removed []string
	for _, id := range sel.IDs() {
		v, ok := byID[id]
		if ok && v.QualifiesForJob {
			continue
		}
		delete(next, id)
		removed = append(removed, id)
	}
	return next, removed
}
