package main

import (
	"context"
	"fmt"
	"time"
)

func (cli *commandLine) checkAttendance(at time.Time, text string) error {
	res, err := cli.attendanceSvc.Check(context.Background(), at, text)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s (time_id %d): %s\n", res.Outcome, res.SlotID, res.Reply)
	return nil
}
