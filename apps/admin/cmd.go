package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/dev-Vortex51/iitms/core/attendance"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db     *sql.DB
	attSvc *attendance.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [args] - run DB migrations (up, down, status, ...)")
	fmt.Println("  markabsent [-date YYYY-MM-DD] - mark absent students without a record for the day (default: yesterday)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	markAbsentCmd := flag.NewFlagSet("markabsent", flag.ExitOnError)
	markAbsentDate := markAbsentCmd.String("date", "", "The workday to reconcile, in YYYY-MM-DD format. Defaults to yesterday.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "markabsent":
		if err := markAbsentCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.markAbsent(*markAbsentDate)
	default:
		cli.printUsage()
		return errHelp
	}
}
