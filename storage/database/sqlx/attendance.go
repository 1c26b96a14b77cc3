package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/dev-Vortex51/iitms/core"
	"github.com/dev-Vortex51/iitms/core/attendance"
)

// pq error code for unique_violation
const uniqueViolation = "23505"

type attendanceRow struct {
	ID                string      `db:"id"`
	StudentID         string      `db:"student_id"`
	PlacementID       string      `db:"placement_id"`
	Date              time.Time   `db:"date"`
	CheckInTime       null.Time   `db:"check_in_time"`
	CheckOutTime      null.Time   `db:"check_out_time"`
	HoursWorked       float64     `db:"hours_worked"`
	Punctuality       string      `db:"punctuality"`
	DayStatus         string      `db:"day_status"`
	ApprovalStatus    string      `db:"approval_status"`
	AbsenceReason     null.String `db:"absence_reason"`
	Location          null.String `db:"location"`
	Notes             null.String `db:"notes"`
	SupervisorComment null.String `db:"supervisor_comment"`
	ReviewedBy        null.String `db:"reviewed_by"`
	ReviewedAt        null.Time   `db:"reviewed_at"`
	AcknowledgedBy    null.String `db:"acknowledged_by"`
	AcknowledgedAt    null.Time   `db:"acknowledged_at"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sql.DB) *attendanceRepository {
	return &attendanceRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo attendanceRepository) toRow(rec attendance.Record) attendanceRow {
	return attendanceRow{
		ID:                rec.ID,
		StudentID:         rec.StudentID,
		PlacementID:       rec.PlacementID,
		Date:              core.DateOf(rec.Date),
		CheckInTime:       rec.CheckInTime,
		CheckOutTime:      rec.CheckOutTime,
		HoursWorked:       rec.HoursWorked,
		Punctuality:       string(rec.Punctuality),
		DayStatus:         string(rec.DayStatus),
		ApprovalStatus:    string(rec.ApprovalStatus),
		AbsenceReason:     rec.AbsenceReason,
		Location:          rec.Location,
		Notes:             rec.Notes,
		SupervisorComment: rec.SupervisorComment,
		ReviewedBy:        rec.ReviewedBy,
		ReviewedAt:        rec.ReviewedAt,
		AcknowledgedBy:    rec.AcknowledgedBy,
		AcknowledgedAt:    rec.AcknowledgedAt,
		CreatedAt:         rec.CreatedAt.UTC(),
		UpdatedAt:         rec.UpdatedAt.UTC(),
	}
}

func (repo attendanceRepository) fromRow(row attendanceRow) attendance.Record {
	return attendance.Record{
		ID:                row.ID,
		StudentID:         row.StudentID,
		PlacementID:       row.PlacementID,
		Date:              core.DateOf(row.Date),
		CheckInTime:       row.CheckInTime,
		CheckOutTime:      row.CheckOutTime,
		HoursWorked:       row.HoursWorked,
		Punctuality:       attendance.Punctuality(row.Punctuality),
		DayStatus:         attendance.DayStatus(row.DayStatus),
		ApprovalStatus:    attendance.ApprovalStatus(row.ApprovalStatus),
		AbsenceReason:     row.AbsenceReason,
		Location:          row.Location,
		Notes:             row.Notes,
		SupervisorComment: row.SupervisorComment,
		ReviewedBy:        row.ReviewedBy,
		ReviewedAt:        row.ReviewedAt,
		AcknowledgedBy:    row.AcknowledgedBy,
		AcknowledgedAt:    row.AcknowledgedAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
}

// trapNoRowsErr maps psql "no rows" err to attendance.ErrRecordNotFound
func (repo attendanceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return attendance.ErrRecordNotFound
	}
	return errors.Wrap(err, msg)
}

// trapDuplicateErr maps the (student_id, date) unique_violation to
// attendance.ErrDuplicateRecord
func (repo attendanceRepository) trapDuplicateErr(err error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return attendance.ErrDuplicateRecord
	}
	return errors.Wrap(err, msg)
}

func (repo attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = uuid.New().String()
	row := repo.toRow(rec)

	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO attendance_record (
			id, student_id, placement_id, date, check_in_time, check_out_time,
			hours_worked, punctuality, day_status, approval_status, absence_reason,
			location, notes, supervisor_comment, reviewed_by, reviewed_at,
			acknowledged_by, acknowledged_at, created_at, updated_at
		) VALUES (
			:id, :student_id, :placement_id, :date, :check_in_time, :check_out_time,
			:hours_worked, :punctuality, :day_status, :approval_status, :absence_reason,
			:location, :notes, :supervisor_comment, :reviewed_by, :reviewed_at,
			:acknowledged_by, :acknowledged_at, :created_at, :updated_at
		)`, row)
	if err != nil {
		return attendance.Record{}, repo.trapDuplicateErr(err, "inserting attendance record")
	}
	return repo.fromRow(row), nil
}

func (repo attendanceRepository) GetRecord(ctx context.Context, id string) (attendance.Record, error) {
	var row attendanceRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM attendance_record WHERE id = $1`, id)
	if err != nil {
		return attendance.Record{}, repo.trapNoRowsErr(err, "getting attendance record")
	}
	return repo.fromRow(row), nil
}

func (repo attendanceRepository) GetRecordForDay(ctx context.Context, studentID string, day time.Time) (attendance.Record, error) {
	var row attendanceRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM attendance_record WHERE student_id = $1 AND date = $2`,
		studentID, core.DateOf(day))
	if err != nil {
		return attendance.Record{}, repo.trapNoRowsErr(err, "getting attendance record for day")
	}
	return repo.fromRow(row), nil
}

func (repo attendanceRepository) UpdateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	row := repo.toRow(rec)

	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE attendance_record SET
			check_in_time = :check_in_time,
			check_out_time = :check_out_time,
			hours_worked = :hours_worked,
			punctuality = :punctuality,
			day_status = :day_status,
			approval_status = :approval_status,
			absence_reason = :absence_reason,
			location = :location,
			notes = :notes,
			supervisor_comment = :supervisor_comment,
			reviewed_by = :reviewed_by,
			reviewed_at = :reviewed_at,
			acknowledged_by = :acknowledged_by,
			acknowledged_at = :acknowledged_at,
			updated_at = :updated_at
		WHERE id = :id`, row)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "updating attendance record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return repo.fromRow(row), nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter, ordering ...core.DBOrdering) ([]attendance.Record, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.StudentID != "" {
		conds = append(conds, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if filter.PlacementID != "" {
		conds = append(conds, "placement_id = ?")
		args = append(args, filter.PlacementID)
	}
	if !filter.Date.IsZero() {
		conds = append(conds, "date = ?")
		args = append(args, core.DateOf(filter.Date))
	}
	if !filter.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, core.DateOf(filter.From))
	}
	if !filter.To.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, core.DateOf(filter.To))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, string(status))
		}
		conds = append(conds, "day_status IN (?)")
		args = append(args, statuses)
	}

	query := `SELECT * FROM attendance_record`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	} else {
		query += " ORDER BY date DESC"
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "building attendance query")
	}

	var rows []attendanceRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}

	records := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, repo.fromRow(row))
	}
	return records, nil
}
