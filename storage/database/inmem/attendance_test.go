package inmemdb

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dev-Vortex51/iitms/core"
	"github.com/dev-Vortex51/iitms/core/attendance"
)

func testRecord(studentID string, day time.Time) attendance.Record {
	return attendance.Record{
		StudentID:   studentID,
		PlacementID: "plc-1",
		Date:        day,
		DayStatus:   attendance.DayAbsent,
	}
}

func Test_attendanceRepository_uniqueness(t *testing.T) {
	db, err := Open()
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	repo := NewAttendanceRepository(db)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if _, err = repo.CreateRecord(ctx, testRecord("stu-1", day)); err != nil {
		t.Fatalf("CreateRecord(): %v", err)
	}
	if _, err = repo.CreateRecord(ctx, testRecord("stu-1", day)); err != attendance.ErrDuplicateRecord {
		t.Errorf("CreateRecord() error = %v, want %v", err, attendance.ErrDuplicateRecord)
	}

	// other students and other days are unaffected
	if _, err = repo.CreateRecord(ctx, testRecord("stu-2", day)); err != nil {
		t.Errorf("CreateRecord(): %v", err)
	}
	if _, err = repo.CreateRecord(ctx, testRecord("stu-1", day.AddDate(0, 0, 1))); err != nil {
		t.Errorf("CreateRecord(): %v", err)
	}
}

func Test_attendanceRepository_concurrentCreates(t *testing.T) {
	db, err := Open()
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	repo := NewAttendanceRepository(db)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreateRecord(ctx, testRecord("stu-1", day))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var created, rejected int
	for err := range errs {
		switch err {
		case nil:
			created++
		case attendance.ErrDuplicateRecord:
			rejected++
		default:
			t.Fatalf("CreateRecord(): %v", err)
		}
	}
	if created != 1 {
		t.Errorf("created = %d, want exactly 1", created)
	}
	if rejected != writers-1 {
		t.Errorf("rejected = %d, want %d", rejected, writers-1)
	}
}

func Test_attendanceRepository_QueryRecords(t *testing.T) {
	db, err := Open()
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	repo := NewAttendanceRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		rec := testRecord("stu-1", base.AddDate(0, 0, i))
		if i%2 == 0 {
			rec.DayStatus = attendance.DayPresentOnTime
		}
		if _, err = repo.CreateRecord(ctx, rec); err != nil {
			t.Fatalf("CreateRecord(): %v", err)
		}
	}

	records, err := repo.QueryRecords(ctx, attendance.QueryFilter{StudentID: "stu-1"})
	if err != nil {
		t.Fatalf("QueryRecords(): %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("len(records) = %d, want 5", len(records))
	}
	// newest day first by default
	for i := 1; i < len(records); i++ {
		if records[i].Date.After(records[i-1].Date) {
			t.Errorf("records not sorted newest first at index %d", i)
		}
	}

	records, err = repo.QueryRecords(ctx, attendance.QueryFilter{
		StudentID: "stu-1",
		From:      base.AddDate(0, 0, 1),
		To:        base.AddDate(0, 0, 3),
	})
	if err != nil {
		t.Fatalf("QueryRecords(): %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len(records) = %d, want 3", len(records))
	}

	records, err = repo.QueryRecords(ctx, attendance.QueryFilter{
		StudentID: "stu-1",
		Statuses:  []attendance.DayStatus{attendance.DayPresentOnTime},
	})
	if err != nil {
		t.Fatalf("QueryRecords(): %v", err)
	}
	if len(records) != 3 {
		t.Errorf("len(records) = %d, want 3", len(records))
	}

	records, err = repo.QueryRecords(ctx, attendance.QueryFilter{StudentID: "stu-1"}, core.DBOrdering{Field: "date", Ascending: true})
	if err != nil {
		t.Fatalf("QueryRecords(): %v", err)
	}
	for i := 1; i < len(records); i++ {
		if records[i].Date.Before(records[i-1].Date) {
			t.Errorf("records not sorted oldest first at index %d", i)
		}
	}
}
