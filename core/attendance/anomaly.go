package attendance

import (
	"fmt"
	"sort"
)

// Severity tags an anomaly finding.
type Severity string

const (
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Anomaly kinds.
const (
	AnomalyFrequentLateness    = "FREQUENT_LATENESS"
	AnomalyHighAbsenceRate     = "HIGH_ABSENCE_RATE"
	AnomalyFrequentIncomplete  = "FREQUENT_INCOMPLETE_DAYS"
	AnomalyConsecutiveAbsences = "CONSECUTIVE_ABSENCES"
)

// Anomaly is a severity-tagged behavioral finding over a student's records.
type Anomaly struct {
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Detection thresholds. Rate checks only kick in past the minimum sample
// size; a student with exactly 5 records triggers nothing.
const (
	minSampleSize        = 5
	latenessRateLimit    = 0.30
	absenceRateLimit     = 0.20
	incompleteRateLimit  = 0.15
	consecutiveWindow    = 10
	consecutiveRunLength = 3
)

// Analyze inspects a student's record history and returns zero or more
// findings. Order of the input does not matter; the consecutive-absence scan
// sorts by date internally.
func Analyze(records []Record) []Anomaly {
	var found []Anomaly

	var presentOnTime, presentLate, absent, incomplete int
	for _, rec := range records {
		switch rec.DayStatus {
		case DayPresentOnTime:
			presentOnTime++
		case DayPresentLate:
			presentLate++
		case DayAbsent:
			absent++
		case DayIncomplete:
			incomplete++
		}
	}
	total := len(records)
	presentDays := presentOnTime + presentLate

	if presentDays > minSampleSize {
		if rate := float64(presentLate) / float64(presentDays); rate > latenessRateLimit {
			found = append(found, Anomaly{
				Kind:     AnomalyFrequentLateness,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("late on %d of %d present days (%.0f%%)", presentLate, presentDays, rate*100),
			})
		}
	}
	if total > minSampleSize {
		if rate := float64(absent) / float64(total); rate > absenceRateLimit {
			found = append(found, Anomaly{
				Kind:     AnomalyHighAbsenceRate,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("absent on %d of %d recorded days (%.0f%%)", absent, total, rate*100),
			})
		}
		if rate := float64(incomplete) / float64(total); rate > incompleteRateLimit {
			found = append(found, Anomaly{
				Kind:     AnomalyFrequentIncomplete,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("%d of %d recorded days have no check-out (%.0f%%)", incomplete, total, rate*100),
			})
		}
	}

	if run := consecutiveAbsences(records); run >= consecutiveRunLength {
		found = append(found, Anomaly{
			Kind:     AnomalyConsecutiveAbsences,
			Severity: SeverityHigh,
			Message:  fmt.Sprintf("absent %d days in a row", run),
		})
	}

	return found
}

// consecutiveAbsences counts the ABSENT run starting at the most recent
// record, scanning at most the 10 latest records and stopping at the first
// non-absent day.
func consecutiveAbsences(records []Record) int {
	recent := make([]Record, len(records))
	copy(recent, records)
	sort.Slice(recent, func(i, j int) bool { return recent[i].Date.After(recent[j].Date) })
	if len(recent) > consecutiveWindow {
		recent = recent[:consecutiveWindow]
	}

	var run int
	for _, rec := range recent {
		if rec.DayStatus != DayAbsent {
			break
		}
		run++
	}
	return run
}
