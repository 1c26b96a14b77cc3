package sqlxrepos

import (
	"context"
	"database/sql"
	"net/mail"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/dev-Vortex51/iitms/core/student"
)

// directory reads the student, placement and supervisor tables owned by the
// registration subsystem. This engine never writes to them.
type directory struct {
	db *sqlx.DB
}

var _ student.Directory = (*directory)(nil) // interface compliance check

func NewDirectory(db *sql.DB) *directory {
	return &directory{db: sqlx.NewDb(db, "postgres")}
}

type studentRow struct {
	ID                string      `db:"id"`
	Name              string      `db:"name"`
	Email             string      `db:"email"`
	PlacementApproved bool        `db:"placement_approved"`
	PlacementID       null.String `db:"placement_id"`
	CompanyName       null.String `db:"company_name"`
	DeptSupervisorID  null.String `db:"departmental_supervisor_id"`
	IndSupervisorID   null.String `db:"industrial_supervisor_id"`
}

type supervisorRow struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

func (dir directory) Resolve(ctx context.Context, studentID string) (student.Profile, error) {
	var row studentRow
	err := dir.db.GetContext(ctx, &row, `
		SELECT s.id, s.name, s.email, s.placement_approved,
		       p.id AS placement_id, p.company_name,
		       p.departmental_supervisor_id, p.industrial_supervisor_id
		FROM student s
		LEFT JOIN placement p ON p.student_id = s.id AND p.is_active
		WHERE s.id = $1`, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Profile{}, student.ErrNotFound
		}
		return student.Profile{}, errors.Wrap(err, "resolving student")
	}

	var supervisorIDs []string
	err = dir.db.SelectContext(ctx, &supervisorIDs,
		`SELECT supervisor_id FROM supervisor_student WHERE student_id = $1`, studentID)
	if err != nil {
		return student.Profile{}, errors.Wrap(err, "loading student supervisors")
	}

	return student.Profile{
		ID:                 row.ID,
		Name:               row.Name,
		Email:              mail.Address{Name: row.Name, Address: row.Email},
		PlacementApproved:  row.PlacementApproved,
		HasActivePlacement: row.PlacementID.Valid,
		Placement: student.Placement{
			ID:                       row.PlacementID.String,
			CompanyName:              row.CompanyName.String,
			DepartmentalSupervisorID: row.DeptSupervisorID.String,
			IndustrialSupervisorID:   row.IndSupervisorID.String,
		},
		SupervisorIDs: supervisorIDs,
	}, nil
}

func (dir directory) GetSupervisor(ctx context.Context, supervisorID string) (student.Supervisor, error) {
	var row supervisorRow
	err := dir.db.GetContext(ctx, &row,
		`SELECT id, name, email FROM supervisor WHERE id = $1`, supervisorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Supervisor{}, student.ErrSupervisorNotFound
		}
		return student.Supervisor{}, errors.Wrap(err, "getting supervisor")
	}

	var studentIDs []string
	err = dir.db.SelectContext(ctx, &studentIDs,
		`SELECT student_id FROM supervisor_student WHERE supervisor_id = $1`, supervisorID)
	if err != nil {
		return student.Supervisor{}, errors.Wrap(err, "loading assigned students")
	}

	return student.Supervisor{
		ID:                 row.ID,
		Name:               row.Name,
		Email:              mail.Address{Name: row.Name, Address: row.Email},
		AssignedStudentIDs: studentIDs,
	}, nil
}

func (dir directory) ListActivelyPlaced(ctx context.Context) ([]string, error) {
	var ids []string
	err := dir.db.SelectContext(ctx, &ids, `
		SELECT s.id
		FROM student s
		JOIN placement p ON p.student_id = s.id AND p.is_active
		WHERE s.placement_approved`)
	if err != nil {
		return nil, errors.Wrap(err, "listing actively placed students")
	}
	return ids, nil
}
