package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dev-Vortex51/iitms/core"
	"github.com/dev-Vortex51/iitms/core/attendance"
)

type attendanceRepository struct {
	db *recordTable
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.records}
}

func dayKey(studentID string, day time.Time) string {
	return studentID + "|" + core.DateOf(day).Format("2006-01-02")
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := dayKey(rec.StudentID, rec.Date)
	if _, exists := repo.db.byDay[key]; exists {
		return attendance.Record{}, attendance.ErrDuplicateRecord
	}

	rec.ID = uuid.New().String()
	repo.db.table[rec.ID] = &rec
	repo.db.byDay[key] = rec.ID
	return rec, nil
}

func (repo *attendanceRepository) GetRecord(ctx context.Context, id string) (attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.table[id]; ok {
		return *rec, nil
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) GetRecordForDay(ctx context.Context, studentID string, day time.Time) (attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if id, ok := repo.db.byDay[dayKey(studentID, day)]; ok {
		return *repo.db.table[id], nil
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) UpdateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[rec.ID]; !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	repo.db.table[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter, ordering ...core.DBOrdering) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]attendance.Record, 0, len(repo.db.table))
	for _, rec := range repo.db.table {
		if matches(*rec, filter) {
			records = append(records, *rec)
		}
	}

	// newest day first; explicit orderings beyond "date" are not needed in tests
	sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	if len(ordering) > 0 && ordering[0].Field == "date" && ordering[0].Ascending {
		sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	}
	return records, nil
}

func matches(rec attendance.Record, filter attendance.QueryFilter) bool {
	if filter.StudentID != "" && rec.StudentID != filter.StudentID {
		return false
	}
	if filter.PlacementID != "" && rec.PlacementID != filter.PlacementID {
		return false
	}
	if !filter.Date.IsZero() && !rec.Date.Equal(core.DateOf(filter.Date)) {
		return false
	}
	if !filter.From.IsZero() && rec.Date.Before(core.DateOf(filter.From)) {
		return false
	}
	if !filter.To.IsZero() && rec.Date.After(core.DateOf(filter.To)) {
		return false
	}
	if len(filter.Statuses) > 0 {
		var found bool
		for _, status := range filter.Statuses {
			if rec.DayStatus == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
