package main

import (
	"context"
	"fmt"

	"github.com/trezcool/kadai/core/chart"
)

func (cli *commandLine) seedChart() error {
	if err := cli.chartSvc.Seed(context.Background()); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%d slots seeded\n", chart.SlotCount)
	return nil
}
