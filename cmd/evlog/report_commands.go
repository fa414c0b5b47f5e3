package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmarinov/evlog/pkg/domain"
)

// summaryCommand displays this month against last month and the average.
type summaryCommand struct {
	format     string
	compact    bool
	configPath string
}

// Execute runs the summary command.
func (c *summaryCommand) Execute() error {
	ctx := context.Background()

	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	return a.formatter(c.format, c.compact).FormatSummary(os.Stdout, a.ledger.Summary())
}

// monthlyCommand displays per-month charging totals.
type monthlyCommand struct {
	format     string
	configPath string
}

// Execute runs the monthly command.
func (c *monthlyCommand) Execute() error {
	ctx := context.Background()

	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	return a.formatter(c.format, false).FormatMonthly(os.Stdout, a.ledger.MonthlyTotals())
}

// compareCommand displays the EV versus ICE cost comparison.
type compareCommand struct {
	periodOnly bool
	format     string
	configPath string
}

// Execute runs the compare command.
func (c *compareCommand) Execute() error {
	ctx := context.Background()

	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	f := a.formatter(c.format, false)
	if c.periodOnly {
		if err := f.FormatPeriod(os.Stdout, a.ledger.ActivePeriod()); err != nil {
			return err
		}
	}

	return f.FormatCompare(os.Stdout, a.ledger.Compare(c.periodOnly))
}

// periodCommand manages the stored active period.
type periodCommand struct {
	configPath string
}

// Execute runs the period command with subcommands.
func (c *periodCommand) Execute(args []string) error {
	if len(args) == 0 {
		return c.show(nil)
	}

	switch args[0] {
	case "show":
		return c.show(args[1:])
	case "set":
		return c.set(args[1:])
	default:
		return fmt.Errorf("unknown period subcommand: %s", args[0])
	}
}

// show displays the resolved active period.
func (c *periodCommand) show(args []string) error {
	fs := flag.NewFlagSet("period show", flag.ExitOnError)
	format := fs.String("format", "", "output format (table, json, simple)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	return a.formatter(*format, false).FormatPeriod(os.Stdout, a.ledger.ActivePeriod())
}

// set stores a new period selection.
func (c *periodCommand) set(args []string) error {
	fs := flag.NewFlagSet("period set", flag.ExitOnError)
	mode := fs.String("mode", "", "period mode (this-month, last-month, last-30, custom, all-time)")
	from := fs.String("from", "", "custom period start (YYYY-MM-DD)")
	to := fs.String("to", "", "custom period end (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *mode == "" {
		return fmt.Errorf("period set requires -mode")
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	a.ledger.SetPeriod(ctx, domain.PeriodSelection{
		Mode: domain.ParsePeriodMode(*mode),
		From: *from,
		To:   *to,
	})

	return a.formatter("", false).FormatPeriod(os.Stdout, a.ledger.ActivePeriod())
}
