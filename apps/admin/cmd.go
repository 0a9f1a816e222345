package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/trezcool/kadai/core/attendance"
	"github.com/trezcool/kadai/core/chart"
	"github.com/trezcool/kadai/core/homework"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db            *sql.DB
	out           io.Writer
	chartSvc      *chart.Service
	sweeper       *homework.Sweeper
	attendanceSvc *attendance.Service
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS...]                  - run a goose migration command (up, down, status, ...)")
	fmt.Fprintln(cli.out, "  seedchart                                  - create the 45 timetable slots")
	fmt.Fprintln(cli.out, "  sweep [-strict]                            - mark past due homeworks as late, once")
	fmt.Fprintln(cli.out, "  attendance -text TEXT [-at RFC3339 TIME]   - check attendance as if TEXT was sent at TIME")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	sweepCmd := flag.NewFlagSet("sweep", flag.ContinueOnError)
	sweepCmd.SetOutput(cli.out)
	sweepStrict := sweepCmd.Bool("strict", false, "Stop at the first malformed due timestamp.")

	attendanceCmd := flag.NewFlagSet("attendance", flag.ContinueOnError)
	attendanceCmd.SetOutput(cli.out)
	attendanceText := attendanceCmd.String("text", "", "The message text.")
	attendanceAt := attendanceCmd.String("at", "", "When the message is sent, RFC3339 (default now).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seedchart":
		return cli.seedChart()
	case "sweep":
		if err := sweepCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.sweep(*sweepStrict)
	case "attendance":
		if err := attendanceCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *attendanceText == "" {
			attendanceCmd.Usage()
			return errHelp
		}
		at := time.Now()
		if *attendanceAt != "" {
			var err error
			if at, err = time.Parse(time.RFC3339, *attendanceAt); err != nil {
				return fmt.Errorf("invalid -at %q: %w", *attendanceAt, err)
			}
		}
		return cli.checkAttendance(at, *attendanceText)
	default:
		cli.printUsage()
		return errHelp
	}
}
