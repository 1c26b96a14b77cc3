package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/dev-Vortex51/iitms/core"
	"github.com/dev-Vortex51/iitms/core/student"
)

var (
	// NowFunc returns the current institutional time. Mockable in tests.
	NowFunc = time.Now

	// errors
	ErrRecordNotFound    = errors.New("attendance record not found")
	ErrNoActivePlacement = errors.New("student has no approved active placement")
	ErrAlreadyCheckedIn  = errors.New("attendance already recorded for this day")
	ErrNotCheckedIn      = errors.New("no check-in recorded for today")
	ErrAlreadyCheckedOut = errors.New("check-out already recorded for today")
	ErrCheckOutTooEarly  = errors.New("check-out must be after check-in")
	ErrDayAlreadySettled = errors.New("an approved record already exists for this day")
	ErrNotAuthorized     = errors.New("supervisor is not assigned to this student")
	ErrCommentRequired   = errors.New("a comment is required for this action")

	// ErrDuplicateRecord surfaces the store's per-(student, day) uniqueness
	// constraint; two concurrent writers race and the loser gets this.
	ErrDuplicateRecord = errors.New("an attendance record already exists for this day")
)

type (
	// Repository is the attendance record store. One record per (student, day);
	// CreateRecord returns ErrDuplicateRecord when that invariant would break.
	Repository interface {
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		GetRecord(ctx context.Context, id string) (Record, error)
		GetRecordForDay(ctx context.Context, studentID string, day time.Time) (Record, error)
		UpdateRecord(ctx context.Context, rec Record) (Record, error)
		// QueryRecords applies AND on set QueryFilter fields, newest day first
		// unless an explicit ordering is given.
		QueryRecords(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Record, error)
	}

	Service struct {
		repo      Repository
		directory student.Directory
		notifSvc  core.NotificationService
	}
)

func NewService(repo Repository, directory student.Directory, notifSvc core.NotificationService) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		notifSvc:  notifSvc,
	}
}

// resolveActive fetches the student and checks the placement preconditions
// shared by every student-facing mutation.
func (svc *Service) resolveActive(ctx context.Context, studentID string) (student.Profile, error) {
	stu, err := svc.directory.Resolve(ctx, studentID)
	if err != nil {
		return student.Profile{}, err
	}
	if !stu.IsActivelyPlaced() {
		return student.Profile{}, ErrNoActivePlacement
	}
	return stu, nil
}

// CheckIn opens today's attendance record for the student.
// A second check-in for the same day fails deterministically; the original
// record is left untouched.
func (svc *Service) CheckIn(ctx context.Context, studentID string, data CheckInData) (Record, error) {
	stu, err := svc.resolveActive(ctx, studentID)
	if err != nil {
		return Record{}, err
	}

	now := NowFunc()
	day := core.DateOf(now)

	if _, err = svc.repo.GetRecordForDay(ctx, studentID, day); err == nil {
		return Record{}, ErrAlreadyCheckedIn
	} else if err != ErrRecordNotFound {
		return Record{}, err
	}

	rec := Record{
		StudentID:      studentID,
		PlacementID:    stu.Placement.ID,
		Date:           day,
		CheckInTime:    null.TimeFrom(now),
		Punctuality:    ClassifyPunctuality(now),
		ApprovalStatus: ApprovalPending,
		Location:       null.NewString(data.Location, data.Location != ""),
		Notes:          null.NewString(data.Notes, data.Notes != ""),
		CreatedAt:      now.UTC(),
		UpdatedAt:      now.UTC(),
	}
	Recompute(&rec)

	// the store's uniqueness constraint settles any race left open by the
	// existence check above
	rec, err = svc.repo.CreateRecord(ctx, rec)
	if err != nil {
		return Record{}, err
	}

	svc.notify(core.Event{
		Name:      core.EventCheckedIn,
		StudentID: studentID,
		RecordID:  rec.ID,
		Occurred:  now,
		Recipient: stu.Email,
		Subject:   "Check-in recorded",
		Body:      fmt.Sprintf("Check-in recorded at %s.", now.Format("15:04")),
	})
	return rec, nil
}

// CheckOut closes today's record and derives the final day status.
// Punctuality set at check-in is sticky; it is only backfilled here on legacy
// records that somehow lack it.
func (svc *Service) CheckOut(ctx context.Context, studentID string, data CheckOutData) (Record, error) {
	if _, err := svc.resolveActive(ctx, studentID); err != nil {
		return Record{}, err
	}

	now := NowFunc()
	rec, err := svc.repo.GetRecordForDay(ctx, studentID, core.DateOf(now))
	if err != nil {
		if err == ErrRecordNotFound {
			return Record{}, ErrNotCheckedIn
		}
		return Record{}, err
	}

	if !rec.CheckInTime.Valid {
		return Record{}, ErrNotCheckedIn
	}
	if rec.CheckOutTime.Valid {
		return Record{}, ErrAlreadyCheckedOut
	}
	if !now.After(rec.CheckInTime.Time) {
		return Record{}, ErrCheckOutTooEarly
	}

	rec.CheckOutTime = null.TimeFrom(now)
	if rec.Punctuality == "" {
		rec.Punctuality = ClassifyPunctuality(rec.CheckInTime.Time)
	}
	if data.Notes != "" {
		rec.Notes = null.StringFrom(data.Notes)
	}
	rec.UpdatedAt = now.UTC()
	Recompute(&rec)

	rec, err = svc.repo.UpdateRecord(ctx, rec)
	if err != nil {
		return Record{}, err
	}

	svc.notify(core.Event{
		Name:      core.EventCheckedOut,
		StudentID: studentID,
		RecordID:  rec.ID,
		Occurred:  now,
		Subject:   "Check-out recorded",
		Body:      fmt.Sprintf("Checked out at %s; %.2f hours worked.", now.Format("15:04"), rec.HoursWorked),
	})
	return rec, nil
}

// RequestAbsence files an excused-absence request for a day. It creates a new
// record, or rewrites an existing one as long as that record has neither been
// approved nor checked in.
func (svc *Service) RequestAbsence(ctx context.Context, studentID string, req AbsenceRequest) (Record, error) {
	stu, err := svc.resolveActive(ctx, studentID)
	if err != nil {
		return Record{}, err
	}

	day, err := core.ParseDate(req.Date)
	if err != nil {
		return Record{}, core.NewValidationError(err, core.FieldError{Field: "date", Error: "invalid date"})
	}

	now := NowFunc()
	rec, err := svc.repo.GetRecordForDay(ctx, studentID, day)
	switch err {
	case nil:
		if rec.ApprovalStatus == ApprovalApproved {
			return Record{}, ErrDayAlreadySettled
		}
		if rec.CheckInTime.Valid {
			return Record{}, ErrAlreadyCheckedIn
		}
		rec.AbsenceReason = null.StringFrom(req.Reason)
		rec.ApprovalStatus = ApprovalPending
		rec.UpdatedAt = now.UTC()
		Recompute(&rec)
		rec, err = svc.repo.UpdateRecord(ctx, rec)
	case ErrRecordNotFound:
		rec = Record{
			StudentID:      studentID,
			PlacementID:    stu.Placement.ID,
			Date:           day,
			AbsenceReason:  null.StringFrom(req.Reason),
			ApprovalStatus: ApprovalPending,
			CreatedAt:      now.UTC(),
			UpdatedAt:      now.UTC(),
		}
		Recompute(&rec)
		rec, err = svc.repo.CreateRecord(ctx, rec)
	default:
		return Record{}, err
	}
	if err != nil {
		return Record{}, err
	}

	svc.notify(core.Event{
		Name:      core.EventAbsenceRequested,
		StudentID: studentID,
		RecordID:  rec.ID,
		Occurred:  now,
		Subject:   "Absence request submitted",
		Body:      fmt.Sprintf("Absence requested for %s: %s", day.Format("2006-01-02"), req.Reason),
	})
	return rec, nil
}

// AuthorizeSupervisor verifies that the supervisor may act on the student.
func (svc *Service) AuthorizeSupervisor(ctx context.Context, supervisorID, studentID string) (student.Profile, error) {
	stu, err := svc.directory.Resolve(ctx, studentID)
	if err != nil {
		return student.Profile{}, err
	}
	sup, err := svc.directory.GetSupervisor(ctx, supervisorID)
	if err != nil {
		return student.Profile{}, err
	}
	if !student.IsAuthorized(sup, stu) {
		return student.Profile{}, ErrNotAuthorized
	}
	return stu, nil
}

// getAuthorized loads the record and checks the supervisor-student link.
func (svc *Service) getAuthorized(ctx context.Context, supervisorID, recordID string) (Record, student.Profile, error) {
	rec, err := svc.repo.GetRecord(ctx, recordID)
	if err != nil {
		return Record{}, student.Profile{}, err
	}
	stu, err := svc.AuthorizeSupervisor(ctx, supervisorID, rec.StudentID)
	if err != nil {
		return Record{}, student.Profile{}, err
	}
	return rec, stu, nil
}

// Approve marks the record approved. Approving a pending absence request
// re-derives the day status so it flips to EXCUSED_ABSENCE; any other record
// keeps its stored status, so a prior supervisor reclassification survives.
func (svc *Service) Approve(ctx context.Context, supervisorID, recordID string, data ReviewData) (Record, error) {
	rec, stu, err := svc.getAuthorized(ctx, supervisorID, recordID)
	if err != nil {
		return Record{}, err
	}

	now := NowFunc()
	rec.ApprovalStatus = ApprovalApproved
	rec.ReviewedBy = null.StringFrom(supervisorID)
	rec.ReviewedAt = null.TimeFrom(now.UTC())
	if data.Comment != "" {
		rec.SupervisorComment = null.StringFrom(data.Comment)
	}
	rec.UpdatedAt = now.UTC()
	if rec.DayStatus == DayAbsent && rec.AbsenceReason.Valid {
		Recompute(&rec)
	}

	rec, err = svc.repo.UpdateRecord(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	svc.notifyReviewed(rec, stu, now)
	return rec, nil
}

// Reject turns the request down; the comment is mandatory and the day status
// stays as derived (a rejected excuse remains ABSENT).
func (svc *Service) Reject(ctx context.Context, supervisorID, recordID string, data ReviewData) (Record, error) {
	if data.Comment == "" {
		return Record{}, core.NewValidationError(ErrCommentRequired, core.FieldError{Field: "comment", Error: ErrCommentRequired.Error()})
	}

	rec, stu, err := svc.getAuthorized(ctx, supervisorID, recordID)
	if err != nil {
		return Record{}, err
	}

	now := NowFunc()
	rec.ApprovalStatus = ApprovalRejected
	rec.ReviewedBy = null.StringFrom(supervisorID)
	rec.ReviewedAt = null.TimeFrom(now.UTC())
	rec.SupervisorComment = null.StringFrom(data.Comment)
	rec.UpdatedAt = now.UTC()
	// rejection never re-derives the day status

	rec, err = svc.repo.UpdateRecord(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	svc.notifyReviewed(rec, stu, now)
	return rec, nil
}

// Reclassify overrides the derived day status. The override itself is flagged
// NEEDS_REVIEW rather than APPROVED so it stays visible for audit.
func (svc *Service) Reclassify(ctx context.Context, supervisorID, recordID string, data ReclassifyData) (Record, error) {
	if !data.DayStatus.Valid() {
		return Record{}, core.NewValidationError(nil, core.FieldError{Field: "day_status", Error: "unknown day status"})
	}
	if data.Comment == "" {
		return Record{}, core.NewValidationError(ErrCommentRequired, core.FieldError{Field: "comment", Error: ErrCommentRequired.Error()})
	}

	rec, stu, err := svc.getAuthorized(ctx, supervisorID, recordID)
	if err != nil {
		return Record{}, err
	}

	now := NowFunc()
	rec.DayStatus = data.DayStatus
	rec.ApprovalStatus = ApprovalNeedsReview
	rec.ReviewedBy = null.StringFrom(supervisorID)
	rec.ReviewedAt = null.TimeFrom(now.UTC())
	rec.SupervisorComment = null.StringFrom(data.Comment)
	rec.UpdatedAt = now.UTC()

	rec, err = svc.repo.UpdateRecord(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	svc.notifyReviewed(rec, stu, now)
	return rec, nil
}

// Acknowledge records that a supervisor has seen the record. Nothing else
// changes; it is distinct from approval.
func (svc *Service) Acknowledge(ctx context.Context, supervisorID, recordID string) (Record, error) {
	rec, _, err := svc.getAuthorized(ctx, supervisorID, recordID)
	if err != nil {
		return Record{}, err
	}

	now := NowFunc()
	rec.AcknowledgedBy = null.StringFrom(supervisorID)
	rec.AcknowledgedAt = null.TimeFrom(now.UTC())
	rec.UpdatedAt = now.UTC()

	return svc.repo.UpdateRecord(ctx, rec)
}

// Today returns the student's record for the current day.
func (svc *Service) Today(ctx context.Context, studentID string) (Record, error) {
	return svc.repo.GetRecordForDay(ctx, studentID, core.DateOf(NowFunc()))
}

// History returns the student's records narrowed by the filter.
func (svc *Service) History(ctx context.Context, studentID string, filter QueryFilter, ordering ...core.DBOrdering) ([]Record, error) {
	filter.StudentID = studentID
	return svc.repo.QueryRecords(ctx, filter, ordering...)
}

// PlacementRecords returns all records booked against a placement.
func (svc *Service) PlacementRecords(ctx context.Context, placementID string, filter QueryFilter, ordering ...core.DBOrdering) ([]Record, error) {
	filter.PlacementID = placementID
	return svc.repo.QueryRecords(ctx, filter, ordering...)
}

// Stats tallies the student's full history into counts and rates.
func (svc *Service) Stats(ctx context.Context, studentID string) (Stats, error) {
	records, err := svc.repo.QueryRecords(ctx, QueryFilter{StudentID: studentID})
	if err != nil {
		return Stats{}, err
	}
	return Tally(records), nil
}

// Summary reports counts, rates and anomaly findings for the student.
func (svc *Service) Summary(ctx context.Context, studentID string) (Summary, error) {
	records, err := svc.repo.QueryRecords(ctx, QueryFilter{StudentID: studentID})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records), nil
}

func (svc *Service) notify(event core.Event) {
	if svc.notifSvc != nil {
		svc.notifSvc.Notify(event)
	}
}

func (svc *Service) notifyReviewed(rec Record, stu student.Profile, now time.Time) {
	svc.notify(core.Event{
		Name:      core.EventRecordReviewed,
		StudentID: rec.StudentID,
		RecordID:  rec.ID,
		Occurred:  now,
		Recipient: stu.Email,
		Subject:   "Attendance record reviewed",
		Body: fmt.Sprintf("Your attendance record for %s is now %s (%s).",
			rec.Date.Format("2006-01-02"), rec.ApprovalStatus, rec.DayStatus),
	})
}
