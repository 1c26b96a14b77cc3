package main

import (
	"context"
	"fmt"

	"github.com/dev-Vortex51/iitms/core"
	"github.com/dev-Vortex51/iitms/core/attendance"
)

func (cli *commandLine) markAbsent(date string) error {
	day := attendance.NowFunc().AddDate(0, 0, -1)
	if date != "" {
		var err error
		if day, err = core.ParseDate(date); err != nil {
			return err
		}
	}

	marked, err := cli.attSvc.MarkAbsentForDate(context.Background(), day)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d student(s) marked absent\n", core.DateOf(day).Format("2006-01-02"), marked)
	return nil
}
