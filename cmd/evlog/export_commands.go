package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmarinov/evlog/pkg/export"
)

// exportCommand writes CSV exports of the ledger.
type exportCommand struct {
	configPath string
}

// Execute runs the export command with subcommands.
func (c *exportCommand) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("export command requires a subcommand: entries, costs")
	}

	switch args[0] {
	case "entries":
		return c.entries(args[1:])
	case "costs":
		return c.costs(args[1:])
	default:
		return fmt.Errorf("unknown export subcommand: %s", args[0])
	}
}

// entries exports the charging log as CSV.
func (c *exportCommand) entries(args []string) error {
	fs := flag.NewFlagSet("export entries", flag.ExitOnError)
	dir := fs.String("dir", "", "output directory (default: configured export dir)")
	periodOnly := fs.Bool("period", false, "export only the active period")
	stdout := fs.Bool("stdout", false, "write CSV to stdout instead of a file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	entries := a.ledger.Entries()
	if *periodOnly {
		entries = a.ledger.EntriesInPeriod()
	}
	if len(entries) == 0 {
		return export.ErrNothingToExport
	}

	if *stdout {
		return export.WriteEntriesCSV(os.Stdout, entries)
	}

	outDir := *dir
	if outDir == "" {
		outDir = a.cfg.Export.Dir
	}

	path, err := export.SaveEntriesCSV(outDir, entries, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d entries to %s\n", len(entries), path)
	return nil
}

// costs exports the cost records as CSV.
func (c *exportCommand) costs(args []string) error {
	fs := flag.NewFlagSet("export costs", flag.ExitOnError)
	dir := fs.String("dir", "", "output directory (default: configured export dir)")
	periodOnly := fs.Bool("period", false, "export only the active period")
	stdout := fs.Bool("stdout", false, "write CSV to stdout instead of a file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	costs := a.ledger.Costs()
	if *periodOnly {
		costs = a.ledger.CostsInPeriod("")
	}
	if len(costs) == 0 {
		return export.ErrNothingToExport
	}

	if *stdout {
		return export.WriteCostsCSV(os.Stdout, costs)
	}

	outDir := *dir
	if outDir == "" {
		outDir = a.cfg.Export.Dir
	}

	path, err := export.SaveCostsCSV(outDir, costs, time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d costs to %s\n", len(costs), path)
	return nil
}

// backupCommand exports and restores the whole ledger document.
type backupCommand struct {
	configPath string
}

// Execute runs the backup command with subcommands.
func (c *backupCommand) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("backup command requires a subcommand: export, import")
	}

	switch args[0] {
	case "export":
		return c.export(args[1:])
	case "import":
		return c.restore(args[1:])
	default:
		return fmt.Errorf("unknown backup subcommand: %s", args[0])
	}
}

// export writes the whole document as JSON.
func (c *backupCommand) export(args []string) error {
	fs := flag.NewFlagSet("backup export", flag.ExitOnError)
	out := fs.String("out", "", "output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	raw, err := a.ledger.BackupJSON()
	if err != nil {
		return err
	}

	if *out == "" {
		fmt.Println(string(raw))
		return nil
	}

	if err := os.WriteFile(*out, append(raw, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	fmt.Printf("Backup written to %s\n", *out)
	return nil
}

// restore replaces the ledger content from a backup file.
func (c *backupCommand) restore(args []string) error {
	fs := flag.NewFlagSet("backup import", flag.ExitOnError)
	file := fs.String("file", "", "backup file to import (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("backup import requires -file")
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.ledger.ImportBackup(ctx, raw); err != nil {
		return err
	}

	fmt.Printf("Backup imported: %d entries, %d costs\n",
		len(a.ledger.Entries()), len(a.ledger.Costs()))
	return nil
}
