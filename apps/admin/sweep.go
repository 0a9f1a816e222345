package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) sweep(strict bool) error {
	cli.sweeper.Strict = strict
	res, err := cli.sweeper.Sweep(context.Background())
	fmt.Fprintf(cli.out, "checked: %d, marked late: %d, malformed: %d\n", res.Checked, res.MarkedLate, res.Malformed)
	return err
}
