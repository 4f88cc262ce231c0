package schedule

import (
	"sort"
	"strings"
	"time"
)

// MatchOverride finds the override belonging to a scheduled class, or nil.
// An override never attaches to another teacher's class, which matters for
// the ALL view where every teacher's rows and overrides are merged at once.
//
// Within a teacher the primary key is (normalized date, batch, subject,
// normalized time range). Historical override records were written without a
// reliable time component, so when the strict key finds nothing the looser
// (date, batch, subject) key is tried. Duplicate matches resolve to the most
// recently created record.
func MatchOverride(class ReconciledClass, overrides []Override) *Override {
	if match := bestMatch(class, overrides, true); match != nil {
		return match
	}
	return bestMatch(class, overrides, false)
}

func bestMatch(class ReconciledClass, overrides []Override, withTime bool) *Override {
	classRange := NormalizeTimeRange(class.Time)
	var best *Override
	classTeacher := strings.TrimSpace(class.TeacherID)
	for i := range overrides {
		ov := &overrides[i]
		if strings.TrimSpace(ov.TeacherUID) != classTeacher {
			continue
		}
		date, _ := NormalizeDate(ov.Date)
		if date != class.NormalizedDate || ov.Batch != class.Batch || ov.Subject != class.Subject {
			continue
		}
		if withTime && NormalizeTimeRange(ov.TimeRange) != classRange {
			continue
		}
		if best == nil || ov.CreatedAt.After(best.CreatedAt) {
			best = ov
		}
	}
	return best
}

// DeriveStatus computes the display status for a class. An override always
// wins over date-based inference: a teacher may request sign-off for a class
// the date rule still calls upcoming, and an admin completion is
// authoritative regardless of what the spreadsheet shows.
func DeriveStatus(class ReconciledClass, override *Override, today time.Time) ClassStatus {
	if override != nil {
		switch override.Status {
		case OverrideCompleted:
			return StatusCompleted
		case OverrideRequestToComplete, OverridePending:
			return StatusRequested
		}
	}
	if strings.EqualFold(strings.TrimSpace(class.RawStatus), "completed") {
		return StatusCompleted
	}
	todayStr := today.Format(CanonicalDateLayout)
	switch {
	case class.NormalizedDate == todayStr:
		return StatusToday
	case class.NormalizedDate < todayStr:
		return StatusPending
	default:
		return StatusUpcoming
	}
}

// Reconcile merges spreadsheet rows with override records into the
// status-annotated view, sorted ascending by normalized date. Rows whose
// dates could not be normalized sort on their original strings, which is
// accepted degradation.
func Reconcile(rows []ScheduledClass, overrides []Override, today time.Time) []ReconciledClass {
	reconciled := make([]ReconciledClass, 0, len(rows))
	for _, row := range rows {
		normalized, ok := NormalizeDate(row.Date)
		class := ReconciledClass{
			ScheduledClass: row,
			NormalizedDate: normalized,
			DateCanonical:  ok,
		}
		class.Status = DeriveStatus(class, MatchOverride(class, overrides), today)
		reconciled = append(reconciled, class)
	}
	sort.SliceStable(reconciled, func(i, j int) bool {
		return reconciled[i].NormalizedDate < reconciled[j].NormalizedDate
	})
	return reconciled
}
