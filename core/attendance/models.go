package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/dev-Vortex51/iitms/core"
)

// Punctuality is the binary ON_TIME/LATE classification of a single check-in.
// It is set once on first check-in and never recomputed afterwards.
type Punctuality string

const (
	PunctualityOnTime Punctuality = "ON_TIME"
	PunctualityLate   Punctuality = "LATE"
)

// DayStatus is the canonical daily outcome for a student.
// It is always derived from the raw record fields, never set directly
// (reclassification by a supervisor being the one audited exception).
type DayStatus string

const (
	DayPresentOnTime  DayStatus = "PRESENT_ON_TIME"
	DayPresentLate    DayStatus = "PRESENT_LATE"
	DayHalfDay        DayStatus = "HALF_DAY"
	DayAbsent         DayStatus = "ABSENT"
	DayExcusedAbsence DayStatus = "EXCUSED_ABSENCE"
	DayIncomplete     DayStatus = "INCOMPLETE"
)

var AllDayStatuses = []DayStatus{
	DayPresentOnTime, DayPresentLate, DayHalfDay, DayAbsent, DayExcusedAbsence, DayIncomplete,
}

func (s DayStatus) Valid() bool {
	for _, known := range AllDayStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ApprovalStatus is the supervisor-controlled workflow state of a record,
// independent of the derived DayStatus.
type ApprovalStatus string

const (
	ApprovalPending     ApprovalStatus = "PENDING"
	ApprovalApproved    ApprovalStatus = "APPROVED"
	ApprovalRejected    ApprovalStatus = "REJECTED"
	ApprovalNeedsReview ApprovalStatus = "NEEDS_REVIEW"
)

// Record is one student's attendance outcome for one calendar day.
// At most one Record exists per (StudentID, Date); the store enforces this
// with a uniqueness constraint so concurrent writers race-fail instead of
// silently duplicating.
type Record struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"student_id"`
	PlacementID string    `json:"placement_id"`
	Date        time.Time `json:"date"` // UTC midnight of the workday

	CheckInTime  null.Time   `json:"check_in_time"`
	CheckOutTime null.Time   `json:"check_out_time"`
	HoursWorked  float64     `json:"hours_worked"`
	Punctuality  Punctuality `json:"punctuality,omitempty"`

	DayStatus      DayStatus      `json:"day_status"`
	ApprovalStatus ApprovalStatus `json:"approval_status"`
	AbsenceReason  null.String    `json:"absence_reason"`

	Location null.String `json:"location"`
	Notes    null.String `json:"notes"`

	SupervisorComment null.String `json:"supervisor_comment"`
	ReviewedBy        null.String `json:"reviewed_by"`
	ReviewedAt        null.Time   `json:"reviewed_at"`
	AcknowledgedBy    null.String `json:"acknowledged_by"`
	AcknowledgedAt    null.Time   `json:"acknowledged_at"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// CheckInData is the optional metadata a student may attach when checking in.
type CheckInData struct {
	Location string `json:"location" validate:"omitempty,max=255"`
	Notes    string `json:"notes" validate:"omitempty,max=1000"`
}

func (d *CheckInData) Validate(validate *validator.Validate) error {
	d.Location = core.CleanString(d.Location)
	d.Notes = core.CleanString(d.Notes)
	return validate.Struct(d)
}

// CheckOutData is the optional metadata a student may attach when checking out.
type CheckOutData struct {
	Notes string `json:"notes" validate:"omitempty,max=1000"`
}

func (d *CheckOutData) Validate(validate *validator.Validate) error {
	d.Notes = core.CleanString(d.Notes)
	return validate.Struct(d)
}

// AbsenceRequest asks for a day to be excused ahead of (or after) the fact.
type AbsenceRequest struct {
	Date   string `json:"date" validate:"required,date"`
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (r *AbsenceRequest) Validate(validate *validator.Validate) error {
	r.Date = core.CleanString(r.Date)
	r.Reason = core.CleanString(r.Reason)
	return validate.Struct(r)
}

// ReviewData carries the supervisor comment for approve/reject actions.
// The comment is optional on approval; Reject enforces it separately.
type ReviewData struct {
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

func (d *ReviewData) Validate(validate *validator.Validate) error {
	d.Comment = core.CleanString(d.Comment)
	return validate.Struct(d)
}

// ReclassifyData is a supervisor override of the derived day status.
type ReclassifyData struct {
	DayStatus DayStatus `json:"day_status" validate:"required,daystatus"`
	Comment   string    `json:"comment" validate:"required,max=1000"`
}

func (d *ReclassifyData) Validate(validate *validator.Validate) error {
	d.Comment = core.CleanString(d.Comment)
	return validate.Struct(d)
}

// QueryFilter narrows record queries. All set fields are ANDed.
type QueryFilter struct {
	StudentID   string
	PlacementID string
	Date        time.Time // exact workday
	From        time.Time
	To          time.Time
	Statuses    []DayStatus
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.PlacementID == "" &&
		qf.Date.IsZero() && qf.From.IsZero() && qf.To.IsZero() && qf.Statuses == nil
}
