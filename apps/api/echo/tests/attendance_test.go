package tests

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dev-Vortex51/iitms/core"
	"github.com/dev-Vortex51/iitms/core/attendance"
	"github.com/dev-Vortex51/iitms/core/student"
)

func seedPlacedStudent(id, placementID, deptSupID, indSupID string) {
	directory.SetStudent(student.Profile{
		ID:                 id,
		Name:               "Student " + id,
		PlacementApproved:  true,
		HasActivePlacement: true,
		Placement: student.Placement{
			ID:                       placementID,
			CompanyName:              "Acme Engineering",
			DepartmentalSupervisorID: deptSupID,
			IndustrialSupervisorID:   indSupID,
		},
	})
	if deptSupID != "" {
		directory.SetSupervisor(student.Supervisor{ID: deptSupID, Name: "Sup " + deptSupID})
	}
	if indSupID != "" {
		directory.SetSupervisor(student.Supervisor{ID: indSupID, Name: "Sup " + indSupID})
	}
}

func Test_attendanceApi_authRequired(t *testing.T) {
	tests := []httpTest{
		{name: "check-in", method: http.MethodPost, path: "/v1/attendance/check-in"},
		{name: "check-out", method: http.MethodPost, path: "/v1/attendance/check-out"},
		{name: "absence request", method: http.MethodPost, path: "/v1/attendance/absence-requests"},
		{name: "today", method: http.MethodGet, path: "/v1/attendance/today"},
		{name: "approve", method: http.MethodPut, path: "/v1/attendance/records/xyz/approve"},
		{name: "records", method: http.MethodGet, path: "/v1/students/xyz/records"},
		{name: "mark absent", method: http.MethodPost, path: "/v1/attendance/mark-absent"},
	}
	for _, tt := range tests {
		tt.wantCode = http.StatusUnauthorized

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndError(t, tt, rec, errMissingToken)
		})
	}
}

func Test_attendanceApi_roleEnforcement(t *testing.T) {
	supToken := supervisorToken(t, "sup-role")
	stuToken := studentToken(t, "stu-role")

	tests := []httpTest{
		{name: "supervisor cannot check in", method: http.MethodPost, path: "/v1/attendance/check-in", token: supToken},
		{name: "student cannot approve", method: http.MethodPut, path: "/v1/attendance/records/xyz/approve", token: stuToken},
		{name: "student cannot mark absent", method: http.MethodPost, path: "/v1/attendance/mark-absent", token: stuToken},
		{name: "student cannot read placements", method: http.MethodGet, path: "/v1/placements/plc/records", token: stuToken},
	}
	for _, tt := range tests {
		tt.wantCode = http.StatusForbidden

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndError(t, tt, rec, errForbidden)
		})
	}
}

func Test_attendanceApi_checkInOut(t *testing.T) {
	seedPlacedStudent("stu-api-1", "plc-api-1", "sup-api-1", "sup-api-2")
	token := studentToken(t, "stu-api-1")

	setNow(t, time.Date(2026, 4, 6, 8, 10, 0, 0, time.UTC))

	tt := httpTest{name: "check-in", wantCode: http.StatusCreated}
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/check-in", token, marchallObj(t, attendance.CheckInData{Location: "Acme HQ"}))
	app.ServeHTTP(rec, req)
	checkCode(t, tt, rec)

	got := unmarshalRecord(t, rec.Body.Bytes())
	if got.Punctuality != attendance.PunctualityOnTime {
		t.Errorf("Punctuality = %v, want %v", got.Punctuality, attendance.PunctualityOnTime)
	}
	if got.DayStatus != attendance.DayIncomplete {
		t.Errorf("DayStatus = %v, want %v", got.DayStatus, attendance.DayIncomplete)
	}

	tt = httpTest{name: "duplicate check-in", wantCode: http.StatusPreconditionFailed}
	req, rec = newAuthRequest(http.MethodPost, "/v1/attendance/check-in", token, marchallObj(t, attendance.CheckInData{}))
	app.ServeHTTP(rec, req)
	checkCodeAndError(t, tt, rec, httpErr{Error: attendance.ErrAlreadyCheckedIn.Error()})

	tt = httpTest{name: "today", wantCode: http.StatusOK}
	req, rec = newAuthRequest(http.MethodGet, "/v1/attendance/today", token)
	app.ServeHTTP(rec, req)
	checkCode(t, tt, rec)

	setNow(t, time.Date(2026, 4, 6, 16, 25, 0, 0, time.UTC))

	tt = httpTest{name: "check-out", wantCode: http.StatusOK}
	req, rec = newAuthRequest(http.MethodPost, "/v1/attendance/check-out", token, marchallObj(t, attendance.CheckOutData{Notes: "wrapped up"}))
	app.ServeHTTP(rec, req)
	checkCode(t, tt, rec)

	got = unmarshalRecord(t, rec.Body.Bytes())
	if got.HoursWorked != 8.25 {
		t.Errorf("HoursWorked = %v, want 8.25", got.HoursWorked)
	}
	if got.DayStatus != attendance.DayPresentOnTime {
		t.Errorf("DayStatus = %v, want %v", got.DayStatus, attendance.DayPresentOnTime)
	}

	tt = httpTest{name: "second check-out", wantCode: http.StatusPreconditionFailed}
	req, rec = newAuthRequest(http.MethodPost, "/v1/attendance/check-out", token, marchallObj(t, attendance.CheckOutData{}))
	app.ServeHTTP(rec, req)
	checkCodeAndError(t, tt, rec, httpErr{Error: attendance.ErrAlreadyCheckedOut.Error()})
}

func Test_attendanceApi_absenceAndReview(t *testing.T) {
	seedPlacedStudent("stu-api-2", "plc-api-2", "sup-api-3", "")
	directory.SetSupervisor(student.Supervisor{ID: "sup-api-9", Name: "Unrelated"})
	token := studentToken(t, "stu-api-2")

	setNow(t, time.Date(2026, 4, 7, 7, 0, 0, 0, time.UTC))

	tt := httpTest{name: "absence request", wantCode: http.StatusCreated}
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance/absence-requests", token,
		marchallObj(t, attendance.AbsenceRequest{Date: "2026-04-07", Reason: "medical"}))
	app.ServeHTTP(rec, req)
	checkCode(t, tt, rec)
	recID := unmarshalRecord(t, rec.Body.Bytes()).ID

	tt = httpTest{name: "missing reason", wantCode: http.StatusBadRequest}
	req, rec = newAuthRequest(http.MethodPost, "/v1/attendance/absence-requests", token,
		marchallObj(t, attendance.AbsenceRequest{Date: "2026-04-07"}))
	app.ServeHTTP(rec, req)
	checkCode(t, tt, rec)

	tt = httpTest{name: "unrelated supervisor cannot approve", wantCode: http.StatusForbidden}
	req, rec = newAuthRequest(http.MethodPut, "/v1/attendance/records/"+recID+"/approve", supervisorToken(t, "sup-api-9"),
		marchallObj(t, attendance.ReviewData{}))
	app.ServeHTTP(rec, req)
	checkCodeAndError(t, tt, rec, httpErr{Error: attendance.ErrNotAuthorized.Error()})

	tt = httpTest{name: "reject without comment", wantCode: http.StatusBadRequest}
	req, rec = newAuthRequest(http.MethodPut, "/v1/attendance/records/"+recID+"/reject", supervisorToken(t, "sup-api-3"),
		marchallObj(t, attendance.ReviewData{}))
	app.ServeHTTP(rec, req)
	checkCode(t, tt, rec)

	tt = httpTest{name: "approve", wantCode: http.StatusOK}
	req, rec = newAuthRequest(http.MethodPut, "/v1/attendance/records/"+recID+"/approve", supervisorToken(t, "sup-api-3"),
		marchallObj(t, attendance.ReviewData{Comment: "get well"}))
	app.ServeHTTP(rec, req)
	checkCode(t, tt, rec)

	got := unmarshalRecord(t, rec.Body.Bytes())
	if got.DayStatus != attendance.DayExcusedAbsence {
		t.Errorf("DayStatus = %v, want %v", got.DayStatus, attendance.DayExcusedAbsence)
	}
	if got.ApprovalStatus != attendance.ApprovalApproved {
		t.Errorf("ApprovalStatus = %v, want %v", got.ApprovalStatus, attendance.ApprovalApproved)
	}

	tt = httpTest{name: "unknown record", wantCode: http.StatusNotFound}
	req, rec = newAuthRequest(http.MethodPut, "/v1/attendance/records/nope/approve", supervisorToken(t, "sup-api-3"),
		marchallObj(t, attendance.ReviewData{}))
	app.ServeHTTP(rec, req)
	checkCodeAndError(t, tt, rec, httpErr{Error: attendance.ErrRecordNotFound.Error()})
}

func Test_attendanceApi_reads(t *testing.T) {
	seedPlacedStudent("stu-api-3", "plc-api-3", "sup-api-4", "")
	seedPlacedStudent("stu-api-4", "plc-api-4", "sup-api-5", "")

	day, _ := core.ParseDate("2026-04-09")
	if _, err := attRepo.CreateRecord(context.Background(), attendance.Record{
		StudentID:   "stu-api-3",
		PlacementID: "plc-api-3",
		Date:        day,
		DayStatus:   attendance.DayAbsent,
	}); err != nil {
		t.Fatalf("CreateRecord(): %v", err)
	}

	tests := []httpTest{
		{name: "own records", method: http.MethodGet, path: "/v1/students/stu-api-3/records", token: studentToken(t, "stu-api-3"), wantCode: http.StatusOK},
		{name: "own stats", method: http.MethodGet, path: "/v1/students/stu-api-3/stats", token: studentToken(t, "stu-api-3"), wantCode: http.StatusOK},
		{name: "own summary", method: http.MethodGet, path: "/v1/students/stu-api-3/summary", token: studentToken(t, "stu-api-3"), wantCode: http.StatusOK},
		{name: "another student's records", method: http.MethodGet, path: "/v1/students/stu-api-3/records", token: studentToken(t, "stu-api-4"), wantCode: http.StatusForbidden},
		{name: "assigned supervisor", method: http.MethodGet, path: "/v1/students/stu-api-3/records", token: supervisorToken(t, "sup-api-4"), wantCode: http.StatusOK},
		{name: "unassigned supervisor", method: http.MethodGet, path: "/v1/students/stu-api-3/records", token: supervisorToken(t, "sup-api-5"), wantCode: http.StatusForbidden},
		{name: "admin", method: http.MethodGet, path: "/v1/students/stu-api-3/records", token: adminToken(t, "admin-1"), wantCode: http.StatusOK},
		{name: "records filtered by status", method: http.MethodGet, path: "/v1/students/stu-api-3/records?status=ABSENT", token: studentToken(t, "stu-api-3"), wantCode: http.StatusOK},
		{name: "records with bad filter", method: http.MethodGet, path: "/v1/students/stu-api-3/records?from=lol", token: studentToken(t, "stu-api-3"), wantCode: http.StatusBadRequest},
		{name: "records ordered oldest first", method: http.MethodGet, path: "/v1/students/stu-api-3/records?ordering=date", token: studentToken(t, "stu-api-3"), wantCode: http.StatusOK},
		{name: "records with unorderable field", method: http.MethodGet, path: "/v1/students/stu-api-3/records?ordering=absence_reason", token: studentToken(t, "stu-api-3"), wantCode: http.StatusBadRequest},
		{name: "placement records", method: http.MethodGet, path: "/v1/placements/plc-api-3/records", token: supervisorToken(t, "sup-api-4"), wantCode: http.StatusOK},
		{name: "placement records as admin", method: http.MethodGet, path: "/v1/placements/plc-api-3/records", token: adminToken(t, "admin-1"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCode(t, tt, rec)
		})
	}
}

func Test_attendanceApi_markAbsent(t *testing.T) {
	seedPlacedStudent("stu-api-5", "plc-api-5", "sup-api-6", "")

	setNow(t, time.Date(2026, 4, 11, 1, 0, 0, 0, time.UTC))

	tests := []httpTest{
		{name: "invalid date", path: "/v1/attendance/mark-absent?date=lol", token: adminToken(t, "admin-1"), wantCode: http.StatusBadRequest},
		{name: "explicit date", path: "/v1/attendance/mark-absent?date=2026-04-10", token: adminToken(t, "admin-1"), wantCode: http.StatusOK},
		{name: "defaults to yesterday", path: "/v1/attendance/mark-absent", token: adminToken(t, "admin-1"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCode(t, tt, rec)
		})
	}

	// both runs reconciled the same day; the record exists exactly once
	day, _ := core.ParseDate("2026-04-10")
	rec, err := attRepo.GetRecordForDay(context.Background(), "stu-api-5", day)
	if err != nil {
		t.Fatalf("GetRecordForDay(): %v", err)
	}
	if rec.DayStatus != attendance.DayAbsent {
		t.Errorf("DayStatus = %v, want %v", rec.DayStatus, attendance.DayAbsent)
	}
}
