package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/dev-Vortex51/iitms/core"
)

// MarkAbsentForDate reconciles a past workday: every actively-placed student
// without a record for that day gets an ABSENT/PENDING one. Safe to re-run;
// existing records are skipped and a writer that sneaks in between the query
// and the insert simply wins the uniqueness race.
func (svc *Service) MarkAbsentForDate(ctx context.Context, date time.Time) (int, error) {
	day := core.DateOf(date)

	studentIDs, err := svc.directory.ListActivelyPlaced(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "listing actively placed students")
	}

	existing, err := svc.repo.QueryRecords(ctx, QueryFilter{Date: day})
	if err != nil {
		return 0, errors.Wrap(err, "querying existing records")
	}
	covered := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		covered[rec.StudentID] = struct{}{}
	}

	now := NowFunc()
	var marked int
	for _, studentID := range studentIDs {
		if _, ok := covered[studentID]; ok {
			continue
		}

		stu, err := svc.directory.Resolve(ctx, studentID)
		if err != nil {
			return marked, errors.Wrapf(err, "resolving student %s", studentID)
		}

		rec := Record{
			StudentID:      studentID,
			PlacementID:    stu.Placement.ID,
			Date:           day,
			ApprovalStatus: ApprovalPending,
			CreatedAt:      now.UTC(),
			UpdatedAt:      now.UTC(),
		}
		Recompute(&rec) // no check-in -> ABSENT

		rec, err = svc.repo.CreateRecord(ctx, rec)
		if err != nil {
			if err == ErrDuplicateRecord {
				// the student checked in between our query and this insert;
				// first writer wins
				continue
			}
			return marked, errors.Wrapf(err, "marking student %s absent", studentID)
		}
		marked++

		svc.notify(core.Event{
			Name:      core.EventMarkedAbsent,
			StudentID: studentID,
			RecordID:  rec.ID,
			Occurred:  now,
			Recipient: stu.Email,
			Subject:   "Marked absent",
			Body:      fmt.Sprintf("No attendance was recorded for %s; the day was marked absent.", day.Format("2006-01-02")),
		})
	}
	return marked, nil
}

// MarkAbsentForYesterday is the scheduled entrypoint; the job runs after
// midnight and closes out the previous workday.
func (svc *Service) MarkAbsentForYesterday(ctx context.Context) (int, error) {
	return svc.MarkAbsentForDate(ctx, NowFunc().AddDate(0, 0, -1))
}
