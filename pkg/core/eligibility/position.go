package eligibility

import (
	"slices"
	"strings"
	"time"

	"github.com/danhmatthews/crewdesk/pkg/core/model"
)

// QualifiesFor reports whether the worker is qualified for a single required
// position tag. Rules apply in priority order, first match wins:
//
//   - Role "lct/tcp" qualifies for lct, tcp, and the combined tag.
//   - Role "lct" qualifies for lct only; role "tcp" for tcp only. A fixed
//     role overrides any certification-derived capability.
//   - Roles "worker" and "employee" derive capability from certifications:
//     a non-expired TCP certification grants tcp, a non-expired driver
//     licence grants lct, both grant the combined tag. No positions are
//     granted absent a valid certification.
//   - Role "admin" never qualifies.
//   - Any other role falls back to the worker's backend-declared position
//     list, if present.
//
// at is the reference instant for certification expiry, normally the job
// window start.
func QualifiesFor(w model.Worker, tag model.PositionTag, at time.Time) bool {
	switch w.Role {
	case model.RoleLCTTCP:
		return tag == model.PositionLCT || tag == model.PositionTCP || tag == model.PositionLCTTCP
	case model.RoleLCT:
		return tag == model.PositionLCT
	case model.RoleTCP:
		return tag == model.PositionTCP
	case model.RoleWorker, model.RoleEmployee:
		hasTCP := certValid(w.TCPCertificationExpiry, at)
		hasLCT := certValid(w.DriverLicenseExpiry, at)
		switch tag {
		case model.PositionTCP:
			return hasTCP
		case model.PositionLCT:
			return hasLCT
		case model.PositionLCTTCP:
			return hasTCP && hasLCT
		}
		return false
	case model.RoleAdmin:
		return false
	default:
		return slices.Contains(w.Positions, tag)
	}
}

// MatchedPositions returns the distinct required position tags the worker
// qualifies for, in required-position order. The result is retained on the
// verdict for display.
func MatchedPositions(w model.Worker, required []model.PositionRequirement, at time.Time) []model.PositionTag {
	var matched []model.PositionTag
	for _, req := range required {
		if slices.Contains(matched, req.Position) {
			continue
		}
		if QualifiesFor(w, req.Position, at) {
			matched = append(matched, req.Position)
		}
	}
	return matched
}

// PositionLabel renders matched position tags as a display label,
// e.g. "tcp, lct".
func PositionLabel(tags []model.PositionTag) string {
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = string(tag)
	}
	return strings.Join(parts, ", ")
}

// certValid reports whether a certification with the given expiry is valid
// at the reference instant. A nil expiry means the certification is absent.
func certValid(expiry *time.Time, at time.Time) bool {
	return expiry != nil && expiry.After(at)
}
