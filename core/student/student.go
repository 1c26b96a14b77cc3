package student

import (
	"context"
	"errors"
	"net/mail"
)

var (
	// errors
	ErrNotFound           = errors.New("student not found")
	ErrSupervisorNotFound = errors.New("supervisor not found")
)

type (
	// Profile is the directory view of a student, as resolved at call time.
	// The engine never caches it; placement-approval state must be fresh.
	Profile struct {
		ID                 string       `json:"id"`
		Name               string       `json:"name"`
		Email              mail.Address `json:"-"`
		PlacementApproved  bool         `json:"placement_approved"`
		HasActivePlacement bool         `json:"has_active_placement"`
		Placement          Placement    `json:"placement"`
		// SupervisorIDs are the supervisor references recorded on the student itself.
		SupervisorIDs []string `json:"supervisor_ids"`
	}

	// Placement is a student's industrial-training engagement.
	Placement struct {
		ID                       string `json:"id"`
		CompanyName              string `json:"company_name"`
		DepartmentalSupervisorID string `json:"departmental_supervisor_id"`
		IndustrialSupervisorID   string `json:"industrial_supervisor_id"`
	}

	// Supervisor is the directory view of a supervising party.
	Supervisor struct {
		ID                 string       `json:"id"`
		Name               string       `json:"name"`
		Email              mail.Address `json:"-"`
		AssignedStudentIDs []string     `json:"assigned_student_ids"`
	}

	// Directory resolves students, placements and supervisor assignments.
	// It fronts the user/placement subsystems, which this engine does not own.
	Directory interface {
		Resolve(ctx context.Context, studentID string) (Profile, error)
		GetSupervisor(ctx context.Context, supervisorID string) (Supervisor, error)
		// ListActivelyPlaced returns the IDs of all students with an approved, active placement.
		ListActivelyPlaced(ctx context.Context) ([]string, error)
	}
)

// IsActivelyPlaced reports whether the student may record attendance.
func (p Profile) IsActivelyPlaced() bool {
	return p.PlacementApproved && p.HasActivePlacement
}

// IsAuthorized reports whether sup supervises stu. The supervisor↔student link
// is recorded redundantly across the directory data, so three evidence sources
// are consulted and any single match suffices:
// the placement's supervisor fields, the student's own supervisor references,
// and the supervisor's assigned-student list.
func IsAuthorized(sup Supervisor, stu Profile) bool {
	if sup.ID == "" {
		return false
	}
	if stu.Placement.DepartmentalSupervisorID == sup.ID || stu.Placement.IndustrialSupervisorID == sup.ID {
		return true
	}
	for _, id := range stu.SupervisorIDs {
		if id == sup.ID {
			return true
		}
	}
	for _, id := range sup.AssignedStudentIDs {
		if id == stu.ID {
			return true
		}
	}
	return false
}
