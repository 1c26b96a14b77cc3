package attendance

// Stats rolls a student's records up into counts and rates.
// Everything here is computed on read; no derived table backs it.
type Stats struct {
	Total            int                    `json:"total"`
	ByDayStatus      map[DayStatus]int      `json:"by_day_status"`
	ByApprovalStatus map[ApprovalStatus]int `json:"by_approval_status"`
	// CompletionPercentage counts any attended or excused day against the total.
	CompletionPercentage float64 `json:"completion_percentage"`
	// PunctualityRate is presentOnTime / (presentOnTime + presentLate); 0 when no present days.
	PunctualityRate float64 `json:"punctuality_rate"`
}

// Summary is Stats plus the anomaly findings, for reporting dashboards.
type Summary struct {
	Stats
	Anomalies []Anomaly `json:"anomalies"`
}

// Tally computes counts and rates over a record set.
func Tally(records []Record) Stats {
	stats := Stats{
		Total:            len(records),
		ByDayStatus:      make(map[DayStatus]int, len(AllDayStatuses)),
		ByApprovalStatus: make(map[ApprovalStatus]int, 4),
	}
	for _, status := range AllDayStatuses {
		stats.ByDayStatus[status] = 0
	}
	for _, status := range []ApprovalStatus{ApprovalPending, ApprovalApproved, ApprovalRejected, ApprovalNeedsReview} {
		stats.ByApprovalStatus[status] = 0
	}

	for _, rec := range records {
		stats.ByDayStatus[rec.DayStatus]++
		stats.ByApprovalStatus[rec.ApprovalStatus]++
	}

	if stats.Total > 0 {
		attended := stats.ByDayStatus[DayPresentOnTime] + stats.ByDayStatus[DayPresentLate] +
			stats.ByDayStatus[DayHalfDay] + stats.ByDayStatus[DayExcusedAbsence]
		stats.CompletionPercentage = float64(attended) / float64(stats.Total) * 100
	}
	if present := stats.ByDayStatus[DayPresentOnTime] + stats.ByDayStatus[DayPresentLate]; present > 0 {
		stats.PunctualityRate = float64(stats.ByDayStatus[DayPresentOnTime]) / float64(present) * 100
	}
	return stats
}

// Summarize produces the full report for a record set.
func Summarize(records []Record) Summary {
	return Summary{
		Stats:     Tally(records),
		Anomalies: Analyze(records),
	}
}
