package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dev-Vortex51/iitms/core"
	"github.com/dev-Vortex51/iitms/core/attendance"
)

type attendanceApi struct {
	svc        *attendance.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerAttendanceAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *attendance.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := attendanceApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	ag := g.Group("/attendance", jwt)

	// student endpoints; the acting student comes from the token
	sg := ag.Group("", studentMiddleware())
	sg.POST("/check-in", api.checkIn)
	sg.POST("/check-out", api.checkOut)
	sg.POST("/absence-requests", api.requestAbsence)
	sg.GET("/today", api.today)

	// supervisor review endpoints
	rg := ag.Group("/records/:id", supervisorMiddleware())
	rg.PUT("/approve", api.approve)
	rg.PUT("/reject", api.reject)
	rg.PUT("/reclassify", api.reclassify)
	rg.PUT("/acknowledge", api.acknowledge)

	// scheduled job fallback; normally run by the admin CLI
	ag.POST("/mark-absent", api.markAbsent, adminMiddleware())

	// read endpoints
	stg := g.Group("/students/:id", jwt)
	stg.GET("/records", api.studentRecords)
	stg.GET("/stats", api.studentStats)
	stg.GET("/summary", api.studentSummary)

	g.GET("/placements/:id/records", api.placementRecords, jwt)
}

// Handlers

func (api *attendanceApi) checkIn(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data attendance.CheckInData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckInData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.CheckIn(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) checkOut(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data attendance.CheckOutData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckOutData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.CheckOut(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) requestAbsence(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var req attendance.AbsenceRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to AbsenceRequest")
	}
	if err := req.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.RequestAbsence(ctx.Request().Context(), claims.Subject, req)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) today(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.Today(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) approve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data attendance.ReviewData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.Approve(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) reject(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data attendance.ReviewData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.Reject(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) reclassify(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	var data attendance.ReclassifyData
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReclassifyData")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.Reclassify(ctx.Request().Context(), claims.Subject, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) acknowledge(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	rec, err := api.svc.Acknowledge(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

// authorizeStudentRead lets a student read their own data, a supervisor read
// their assigned students' data, and an admin read anything.
func (api *attendanceApi) authorizeStudentRead(ctx echo.Context, studentID string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	switch {
	case claims.IsAdmin:
		return nil
	case claims.IsStudent && claims.Subject == studentID:
		return nil
	case claims.IsSupervisor:
		_, err = api.svc.AuthorizeSupervisor(ctx.Request().Context(), claims.Subject, studentID)
		return err
	default:
		return errHttpForbidden
	}
}

func (api *attendanceApi) studentRecords(ctx echo.Context) error {
	studentID := ctx.Param("id")
	if err := api.authorizeStudentRead(ctx, studentID); err != nil {
		return err
	}

	var rf RecordFilter
	if err := ctx.Bind(&rf); err != nil {
		return errors.Wrap(err, "binding to RecordFilter")
	}
	filter, err := rf.Filter()
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	if err := ordering.Bind(ctx); err != nil {
		return err
	}

	records, err := api.svc.History(ctx.Request().Context(), studentID, filter, ordering.Orderings...)
	if err != nil {
		return err
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) studentStats(ctx echo.Context) error {
	studentID := ctx.Param("id")
	if err := api.authorizeStudentRead(ctx, studentID); err != nil {
		return err
	}

	stats, err := api.svc.Stats(ctx.Request().Context(), studentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *attendanceApi) studentSummary(ctx echo.Context) error {
	studentID := ctx.Param("id")
	if err := api.authorizeStudentRead(ctx, studentID); err != nil {
		return err
	}

	summary, err := api.svc.Summary(ctx.Request().Context(), studentID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *attendanceApi) placementRecords(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !(claims.IsSupervisor || claims.IsAdmin) {
		return errHttpForbidden
	}

	var rf RecordFilter
	if err := ctx.Bind(&rf); err != nil {
		return errors.Wrap(err, "binding to RecordFilter")
	}
	filter, err := rf.Filter()
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	if err := ordering.Bind(ctx); err != nil {
		return err
	}

	records, err := api.svc.PlacementRecords(ctx.Request().Context(), ctx.Param("id"), filter, ordering.Orderings...)
	if err != nil {
		return err
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) markAbsent(ctx echo.Context) error {
	day := attendance.NowFunc().AddDate(0, 0, -1)
	if raw := ctx.QueryParam("date"); raw != "" {
		var err error
		if day, err = core.ParseDate(raw); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "date", Error: "invalid date"})
		}
	}

	marked, err := api.svc.MarkAbsentForDate(ctx.Request().Context(), day)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"date":   core.DateOf(day).Format("2006-01-02"),
		"marked": marked,
	})
}
