package attendance

import (
	"testing"
	"time"

	"github.com/volatiletech/null/v8"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func Test_ClassifyPunctuality(t *testing.T) {
	tests := []struct {
		name    string
		checkIn time.Time
		want    Punctuality
	}{
		{name: "early", checkIn: at(7, 0), want: PunctualityOnTime},
		{name: "on the hour", checkIn: at(8, 0), want: PunctualityOnTime},
		{name: "within grace", checkIn: at(8, 10), want: PunctualityOnTime},
		{name: "grace boundary", checkIn: at(8, 15), want: PunctualityOnTime},
		{name: "one minute past grace", checkIn: at(8, 16), want: PunctualityLate},
		{name: "mid-morning", checkIn: at(10, 30), want: PunctualityLate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPunctuality(tt.checkIn); got != tt.want {
				t.Errorf("ClassifyPunctuality() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_HoursWorked(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     float64
	}{
		{name: "no check-in", checkOut: at(16, 0), want: 0},
		{name: "no check-out", checkIn: at(8, 0), want: 0},
		{name: "full day", checkIn: at(8, 0), checkOut: at(16, 0), want: 8},
		{name: "rounded down", checkIn: at(8, 10), checkOut: at(12, 50), want: 4.67},
		{name: "rounded up", checkIn: at(8, 5), checkOut: at(16, 15), want: 8.17},
		{name: "quarter hours", checkIn: at(8, 50), checkOut: at(17, 5), want: 8.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HoursWorked(tt.checkIn, tt.checkOut); got != tt.want {
				t.Errorf("HoursWorked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_DeriveDayStatus(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want DayStatus
	}{
		{
			name: "approved absence request beats everything",
			rec: Record{
				AbsenceReason:  null.StringFrom("medical"),
				ApprovalStatus: ApprovalApproved,
				CheckInTime:    null.TimeFrom(at(8, 0)),
				CheckOutTime:   null.TimeFrom(at(16, 0)),
			},
			want: DayExcusedAbsence,
		},
		{
			name: "pending absence request is still absent",
			rec: Record{
				AbsenceReason:  null.StringFrom("medical"),
				ApprovalStatus: ApprovalPending,
			},
			want: DayAbsent,
		},
		{
			name: "rejected absence request is still absent",
			rec: Record{
				AbsenceReason:  null.StringFrom("medical"),
				ApprovalStatus: ApprovalRejected,
			},
			want: DayAbsent,
		},
		{
			name: "no check-in",
			rec:  Record{},
			want: DayAbsent,
		},
		{
			name: "no check-out",
			rec:  Record{CheckInTime: null.TimeFrom(at(8, 0))},
			want: DayIncomplete,
		},
		{
			name: "under six hours",
			rec: Record{
				CheckInTime:  null.TimeFrom(at(10, 30)),
				CheckOutTime: null.TimeFrom(at(15, 0)),
				Punctuality:  PunctualityLate,
			},
			want: DayHalfDay,
		},
		{
			name: "exactly six hours on time",
			rec: Record{
				CheckInTime:  null.TimeFrom(at(8, 0)),
				CheckOutTime: null.TimeFrom(at(14, 0)),
				Punctuality:  PunctualityOnTime,
			},
			want: DayPresentOnTime,
		},
		{
			name: "full day late",
			rec: Record{
				CheckInTime:  null.TimeFrom(at(8, 20)),
				CheckOutTime: null.TimeFrom(at(16, 0)),
				Punctuality:  PunctualityLate,
			},
			want: DayPresentLate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveDayStatus(tt.rec); got != tt.want {
				t.Errorf("DeriveDayStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_Recompute(t *testing.T) {
	rec := Record{
		CheckInTime:  null.TimeFrom(at(8, 10)),
		CheckOutTime: null.TimeFrom(at(12, 50)),
		Punctuality:  PunctualityOnTime,
		HoursWorked:  99, // stale stored value
		DayStatus:    DayPresentOnTime,
	}
	Recompute(&rec)

	if rec.HoursWorked != 4.67 {
		t.Errorf("HoursWorked = %v, want 4.67", rec.HoursWorked)
	}
	if rec.DayStatus != DayHalfDay {
		t.Errorf("DayStatus = %v, want %v", rec.DayStatus, DayHalfDay)
	}

	// a half-open record keeps HoursWorked untouched but re-derives the status
	rec = Record{CheckInTime: null.TimeFrom(at(8, 0))}
	Recompute(&rec)
	if rec.HoursWorked != 0 {
		t.Errorf("HoursWorked = %v, want 0", rec.HoursWorked)
	}
	if rec.DayStatus != DayIncomplete {
		t.Errorf("DayStatus = %v, want %v", rec.DayStatus, DayIncomplete)
	}
}
