package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dev-Vortex51/iitms/core"
	"github.com/dev-Vortex51/iitms/core/attendance"
)

var orderingParam = "ordering"

// orderableFields are the only columns orderable via the API; everything else
// is rejected before the field can ever reach an ORDER BY clause.
var orderableFields = map[string]bool{
	"date":        true,
	"day_status":  true,
	"punctuality": true,
	"created_at":  true,
	"updated_at":  true,
}

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) error {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return nil
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return nil
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if !orderableFields[field] {
			return core.NewValidationError(nil, core.FieldError{Field: orderingParam, Error: "cannot order by " + field})
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
	return nil
}

// RecordFilter binds the record query parameters. Dates are ISO calendar days.
type RecordFilter struct {
	Date     string   `query:"date"`
	From     string   `query:"from"`
	To       string   `query:"to"`
	Statuses []string `query:"status"`
}

func (rf *RecordFilter) Filter() (attendance.QueryFilter, error) {
	var filter attendance.QueryFilter
	var flds []core.FieldError

	if rf.Date != "" {
		day, err := core.ParseDate(rf.Date)
		if err != nil {
			flds = append(flds, core.FieldError{Field: "date", Error: "invalid date"})
		}
		filter.Date = day
	}
	if rf.From != "" {
		day, err := core.ParseDate(rf.From)
		if err != nil {
			flds = append(flds, core.FieldError{Field: "from", Error: "invalid date"})
		}
		filter.From = day
	}
	if rf.To != "" {
		day, err := core.ParseDate(rf.To)
		if err != nil {
			flds = append(flds, core.FieldError{Field: "to", Error: "invalid date"})
		}
		filter.To = day
	}
	for _, status := range rf.Statuses {
		ds := attendance.DayStatus(strings.ToUpper(strings.TrimSpace(status)))
		if !ds.Valid() {
			flds = append(flds, core.FieldError{Field: "status", Error: "unknown day status"})
			continue
		}
		filter.Statuses = append(filter.Statuses, ds)
	}

	if flds != nil {
		return attendance.QueryFilter{}, core.NewValidationError(nil, flds...)
	}
	return filter, nil
}
