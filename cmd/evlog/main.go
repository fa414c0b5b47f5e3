// Package main provides the evlog CLI application.
//
// evlog is a personal EV charging and running-cost tracker. It keeps a
// local ledger of charging sessions and vehicle costs, summarizes them
// per month and period, and estimates what the same driving would have
// cost in a combustion car.
package main

import (
	"flag"
	"fmt"
	"os"
)

// version is set during build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the main application logic.
func run() error {
	// Define global flags.
	configPath := flag.String("config", "", "path to configuration file")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Parse()

	if *showVersion {
		fmt.Printf("evlog %s\n", version)
		return nil
	}

	args := flag.Args()
	if len(args) == 0 {
		return showUsage()
	}

	command := args[0]

	switch command {
	case "add":
		return runAddCommand(*configPath, args[1:])
	case "entry":
		return runEntryCommand(*configPath, args[1:])
	case "cost":
		return runCostCommand(*configPath, args[1:])
	case "summary":
		return runSummaryCommand(*configPath, args[1:])
	case "monthly":
		return runMonthlyCommand(*configPath, args[1:])
	case "compare":
		return runCompareCommand(*configPath, args[1:])
	case "period":
		return runPeriodCommand(*configPath, args[1:])
	case "settings":
		return runSettingsCommand(*configPath, args[1:])
	case "fuel":
		return runFuelCommand(*configPath, args[1:])
	case "export":
		return runExportCommand(*configPath, args[1:])
	case "backup":
		return runBackupCommand(*configPath, args[1:])
	case "config":
		return runConfigCommand(*configPath, args[1:])
	case "watch":
		return runWatchCommand(*configPath, args[1:])
	case "help":
		return showUsage()
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runAddCommand runs the add command.
func runAddCommand(configPath string, args []string) error {
	// Define add-specific flags.
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	kwh := fs.Float64("kwh", 0, "energy charged in kWh")
	chargeType := fs.String("type", "", "charge type (public, public-xp, home, home-xp)")
	date := fs.String("date", "", "session date (YYYY-MM-DD, default: today)")
	price := fs.Float64("price", 0, "price per kWh (default: configured price for the type)")
	note := fs.String("note", "", "free-text note")
	last := fs.Bool("last", false, "prefill unset fields from the most recent entry")
	format := fs.String("format", "", "output format (table, json, simple)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &addCommand{
		date:       *date,
		kwh:        *kwh,
		chargeType: *chargeType,
		price:      *price,
		note:       *note,
		last:       *last,
		format:     *format,
		configPath: configPath,
	}

	return cmd.Execute()
}

// runEntryCommand runs the entry command.
func runEntryCommand(configPath string, args []string) error {
	cmd := &entryCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// runCostCommand runs the cost command.
func runCostCommand(configPath string, args []string) error {
	cmd := &costCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// runSummaryCommand runs the summary command.
func runSummaryCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	format := fs.String("format", "", "output format (table, json, simple)")
	compact := fs.Bool("compact", false, "compact output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &summaryCommand{
		format:     *format,
		compact:    *compact,
		configPath: configPath,
	}

	return cmd.Execute()
}

// runMonthlyCommand runs the monthly command.
func runMonthlyCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("monthly", flag.ExitOnError)
	format := fs.String("format", "", "output format (table, json, simple)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &monthlyCommand{
		format:     *format,
		configPath: configPath,
	}

	return cmd.Execute()
}

// runCompareCommand runs the compare command.
func runCompareCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	periodOnly := fs.Bool("period", false, "restrict the comparison to the active period")
	format := fs.String("format", "", "output format (table, json, simple)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &compareCommand{
		periodOnly: *periodOnly,
		format:     *format,
		configPath: configPath,
	}

	return cmd.Execute()
}

// runPeriodCommand runs the period command.
func runPeriodCommand(configPath string, args []string) error {
	cmd := &periodCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// runSettingsCommand runs the settings command.
func runSettingsCommand(configPath string, args []string) error {
	cmd := &settingsCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// runFuelCommand runs the fuel command.
func runFuelCommand(configPath string, args []string) error {
	cmd := &fuelCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// runExportCommand runs the export command.
func runExportCommand(configPath string, args []string) error {
	cmd := &exportCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// runBackupCommand runs the backup command.
func runBackupCommand(configPath string, args []string) error {
	cmd := &backupCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// runConfigCommand runs the config command.
func runConfigCommand(configPath string, args []string) error {
	cmd := &configCommand{
		configPath: configPath,
	}
	return cmd.Execute(args)
}

// runWatchCommand runs the watch command.
func runWatchCommand(configPath string, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	format := fs.String("format", "", "output format (table, json, simple)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := &watchCommand{
		format:     *format,
		configPath: configPath,
	}

	return cmd.Execute()
}

// showUsage displays usage information.
func showUsage() error {
	usage := `evlog - EV charging and running cost tracker

Usage:
  evlog [flags] <command> [command flags]

Commands:
  add         Log a charging session
  entry       Entry management (list, update, delete)
  cost        Cost management (add, list, update, delete, split, categories)
  summary     This month vs last month vs average
  monthly     Per-month charging totals
  compare     EV vs ICE cost comparison
  period      Active period management (show, set)
  settings    Price and assumption management (show, set-prices, set-compare, reset-compare)
  fuel        Fuel price history (record, list)
  export      CSV export (entries, costs)
  backup      Whole-ledger backup (export, import)
  config      Configuration management (show, path, init)
  watch       Re-render the summary when the ledger changes
  help        Show this help message

Global Flags:
  -config     Path to configuration file
  -version    Show version information

Examples:
  # Log 32.5 kWh charged at home overnight
  evlog add -kwh 32.5 -type home -note "overnight"

  # Log a session priced at the configured public rate
  evlog add -kwh 20 -type public

  # Repeat the last session's details with a new date
  evlog add -last -date 2024-06-14

  # List this month's entries
  evlog entry list

  # Record an insurance cost shared by both cars
  evlog cost add -category Insurance -amount 320 -applies both

  # Costs split by vehicle over the active period
  evlog cost split

  # Compare EV vs ICE over everything logged
  evlog compare

  # Change the active period
  evlog period set -mode last-30
  evlog period set -mode custom -from 2024-01-01 -to 2024-03-31

  # Record a fuel price change from today
  evlog fuel record -price 1.62

  # Export the charging log as CSV
  evlog export entries -dir ~/exports

  # Back up and restore the whole ledger
  evlog backup export -out backup.json
  evlog backup import -file backup.json

Version: %s
`

	fmt.Printf(usage, version)
	return nil
}
