package inmemdb

import (
	"context"

	"github.com/dev-Vortex51/iitms/core/student"
)

type directory struct {
	db *directoryTable
}

var _ student.Directory = (*directory)(nil) // interface compliance check

func NewDirectory(db *DB) *directory {
	return &directory{db: db.directory}
}

func (dir *directory) Resolve(ctx context.Context, studentID string) (student.Profile, error) {
	dir.db.mutex.RLock()
	defer dir.db.mutex.RUnlock()

	if stu, ok := dir.db.students[studentID]; ok {
		return stu, nil
	}
	return student.Profile{}, student.ErrNotFound
}

func (dir *directory) GetSupervisor(ctx context.Context, supervisorID string) (student.Supervisor, error) {
	dir.db.mutex.RLock()
	defer dir.db.mutex.RUnlock()

	if sup, ok := dir.db.supervisors[supervisorID]; ok {
		return sup, nil
	}
	return student.Supervisor{}, student.ErrSupervisorNotFound
}

func (dir *directory) ListActivelyPlaced(ctx context.Context) ([]string, error) {
	dir.db.mutex.RLock()
	defer dir.db.mutex.RUnlock()

	ids := make([]string, 0, len(dir.db.students))
	for id, stu := range dir.db.students {
		if stu.IsActivelyPlaced() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// SetStudent registers or replaces a student profile. Test helper.
func (dir *directory) SetStudent(stu student.Profile) {
	dir.db.mutex.Lock()
	defer dir.db.mutex.Unlock()
	dir.db.students[stu.ID] = stu
}

// SetSupervisor registers or replaces a supervisor. Test helper.
func (dir *directory) SetSupervisor(sup student.Supervisor) {
	dir.db.mutex.Lock()
	defer dir.db.mutex.Unlock()
	dir.db.supervisors[sup.ID] = sup
}
