package attendance

import (
	"math"
	"time"
)

// Institutional workday policy. A single timezone is assumed; comparisons run
// on the wall-clock components of the timestamps as given.
const (
	WorkStartHour    = 8
	WorkEndHour      = 16
	GracePeriod      = 15 * time.Minute
	MinRequiredHours = 6.0
)

// ClassifyPunctuality classifies a check-in against the workday start plus
// the grace period, on the same calendar day as the check-in itself.
func ClassifyPunctuality(checkIn time.Time) Punctuality {
	y, m, d := checkIn.Date()
	cutoff := time.Date(y, m, d, WorkStartHour, 0, 0, 0, checkIn.Location()).Add(GracePeriod)
	if checkIn.After(cutoff) {
		return PunctualityLate
	}
	return PunctualityOnTime
}

// HoursWorked returns the span between check-in and check-out in hours,
// rounded to 2 decimal places; 0 if either timestamp is absent.
func HoursWorked(checkIn, checkOut time.Time) float64 {
	if checkIn.IsZero() || checkOut.IsZero() {
		return 0
	}
	h := checkOut.Sub(checkIn).Hours()
	return math.Round(h*100) / 100
}

// DeriveDayStatus computes the canonical day status from the record's raw
// fields. The priority order is load-bearing: an approved excused absence
// beats every other signal, and incompleteness is checked before the hours
// threshold so an unfinished day is never mistaken for a short one.
func DeriveDayStatus(rec Record) DayStatus {
	switch {
	case rec.AbsenceReason.Valid && rec.AbsenceReason.String != "" && rec.ApprovalStatus == ApprovalApproved:
		return DayExcusedAbsence
	case !rec.CheckInTime.Valid:
		return DayAbsent
	case !rec.CheckOutTime.Valid:
		return DayIncomplete
	case HoursWorked(rec.CheckInTime.Time, rec.CheckOutTime.Time) < MinRequiredHours:
		return DayHalfDay
	case rec.Punctuality == PunctualityOnTime:
		return DayPresentOnTime
	default:
		return DayPresentLate
	}
}

// Recompute refreshes the derived fields on rec before it is persisted.
// Stored values are never trusted as inputs to further logic.
func Recompute(rec *Record) {
	if rec.CheckInTime.Valid && rec.CheckOutTime.Valid {
		rec.HoursWorked = HoursWorked(rec.CheckInTime.Time, rec.CheckOutTime.Time)
	}
	rec.DayStatus = DeriveDayStatus(*rec)
}
