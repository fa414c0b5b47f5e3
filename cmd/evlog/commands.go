package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/dmarinov/evlog/pkg/config"
	"github.com/dmarinov/evlog/pkg/display"
	"github.com/dmarinov/evlog/pkg/domain"
	"github.com/dmarinov/evlog/pkg/ledger"
	"github.com/dmarinov/evlog/pkg/logger"
	"github.com/dmarinov/evlog/pkg/store"
)

// app bundles the components every command needs.
type app struct {
	cfg    *config.Config
	log    logger.Logger
	store  store.Store
	ledger *ledger.Ledger
}

// openApp loads configuration, opens the store and loads the ledger.
func openApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	st, err := store.NewBoltStore(cfg.Storage.DBPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	led, err := ledger.Open(ctx, st, log)
	if err != nil {
		closeErr := st.Close()
		if closeErr != nil {
			log.Error("failed to close store", "error", closeErr)
		}
		return nil, err
	}

	return &app{
		cfg:    cfg,
		log:    log,
		store:  st,
		ledger: led,
	}, nil
}

// close releases resources.
func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Error("failed to close store", "error", err)
		}
	}
}

// formatter builds a Formatter for the requested format, falling back to
// the configured default when format is empty. Color is enabled only when
// configured and stdout is a terminal.
func (a *app) formatter(format string, compact bool) display.Formatter {
	if format == "" {
		format = a.cfg.Display.DefaultFormat
	}
	return display.New(display.Config{
		Format:  display.ParseFormat(format),
		Color:   a.cfg.Display.ColorEnabled && term.IsTerminal(int(os.Stdout.Fd())),
		Compact: compact,
	})
}

// loadConfig loads configuration from the given path, or the default
// locations when the path is empty.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// addCommand logs a charging session.
type addCommand struct {
	date       string
	kwh        float64
	chargeType string
	price      float64
	note       string
	last       bool
	format     string
	configPath string
}

// Execute runs the add command.
func (c *addCommand) Execute() error {
	ctx := context.Background()

	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	in := ledger.EntryInput{
		Date:  c.date,
		Kwh:   c.kwh,
		Price: c.price,
		Note:  c.note,
	}

	// -last prefills the fields left unset from the most recent entry.
	if c.last {
		prev, ok := a.ledger.LastEntry()
		if !ok {
			return ledger.ErrNoEntries
		}
		if in.Kwh <= 0 {
			in.Kwh = prev.Kwh
		}
		if c.chargeType == "" {
			c.chargeType = string(prev.Type)
		}
		if in.Price <= 0 {
			in.Price = prev.Price
		}
		if in.Note == "" {
			in.Note = prev.Note
		}
	}

	chargeType, ok := domain.ParseChargeType(c.chargeType)
	if !ok {
		return fmt.Errorf("invalid charge type %q (expected one of: %s)", c.chargeType, chargeTypeList())
	}
	in.Type = chargeType

	entry, err := a.ledger.AddEntry(ctx, in)
	if err != nil {
		return err
	}

	fmt.Println("Entry added:")
	return a.formatter(c.format, true).FormatEntries(os.Stdout, []domain.ChargingEntry{entry})
}

// chargeTypeList returns the known charge types for error messages.
func chargeTypeList() string {
	out := ""
	for i, t := range domain.ChargeTypes {
		if i > 0 {
			out += ", "
		}
		out += string(t)
	}
	return out
}

// entryCommand manages charging entries.
type entryCommand struct {
	configPath string
}

// Execute runs the entry command with subcommands.
func (c *entryCommand) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("entry command requires a subcommand: list, update, delete")
	}

	switch args[0] {
	case "list":
		return c.list(args[1:])
	case "update":
		return c.update(args[1:])
	case "delete":
		return c.delete(args[1:])
	default:
		return fmt.Errorf("unknown entry subcommand: %s", args[0])
	}
}

// list shows charging entries, period-filtered unless -all is set.
func (c *entryCommand) list(args []string) error {
	fs := flag.NewFlagSet("entry list", flag.ExitOnError)
	all := fs.Bool("all", false, "list every entry instead of the active period")
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

	entries := a.ledger.EntriesInPeriod()
	if *all {
		entries = a.ledger.Entries()
	} else {
		if err := a.formatter(*format, true).FormatPeriod(os.Stdout, a.ledger.ActivePeriod()); err != nil {
			return err
		}
	}

	return a.formatter(*format, false).FormatEntries(os.Stdout, entries)
}

// update changes an existing entry. Fields left unset keep their value.
func (c *entryCommand) update(args []string) error {
	fs := flag.NewFlagSet("entry update", flag.ExitOnError)
	id := fs.String("id", "", "entry ID (required)")
	date := fs.String("date", "", "session date (YYYY-MM-DD)")
	kwh := fs.Float64("kwh", 0, "energy charged in kWh")
	chargeType := fs.String("type", "", "charge type (public, public-xp, home, home-xp)")
	price := fs.Float64("price", 0, "price per kWh")
	note := fs.String("note", "", "free-text note")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("entry update requires -id")
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	prev, ok := findEntry(a.ledger.Entries(), *id)
	if !ok {
		return fmt.Errorf("%w: %s", ledger.ErrEntryNotFound, *id)
	}

	in := ledger.EntryInput{
		Date:  prev.Date,
		Kwh:   prev.Kwh,
		Type:  prev.Type,
		Price: prev.Price,
		Note:  prev.Note,
	}
	if *date != "" {
		in.Date = *date
	}
	if *kwh > 0 {
		in.Kwh = *kwh
	}
	if *chargeType != "" {
		t, ok := domain.ParseChargeType(*chargeType)
		if !ok {
			return fmt.Errorf("invalid charge type %q (expected one of: %s)", *chargeType, chargeTypeList())
		}
		in.Type = t
	}
	if *price > 0 {
		in.Price = *price
	}
	if *note != "" {
		in.Note = *note
	}

	entry, err := a.ledger.UpdateEntry(ctx, *id, in)
	if err != nil {
		return err
	}

	fmt.Println("Entry updated:")
	return a.formatter("", true).FormatEntries(os.Stdout, []domain.ChargingEntry{entry})
}

// delete removes an entry.
func (c *entryCommand) delete(args []string) error {
	fs := flag.NewFlagSet("entry delete", flag.ExitOnError)
	id := fs.String("id", "", "entry ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("entry delete requires -id")
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.ledger.DeleteEntry(ctx, *id); err != nil {
		return err
	}

	fmt.Printf("Entry %s deleted\n", *id)
	return nil
}

// findEntry locates an entry by ID.
func findEntry(entries []domain.ChargingEntry, id string) (domain.ChargingEntry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return domain.ChargingEntry{}, false
}

// costCommand manages cost records.
type costCommand struct {
	configPath string
}

// Execute runs the cost command with subcommands.
func (c *costCommand) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("cost command requires a subcommand: add, list, update, delete, split, categories")
	}

	switch args[0] {
	case "add":
		return c.add(args[1:])
	case "list":
		return c.list(args[1:])
	case "update":
		return c.update(args[1:])
	case "delete":
		return c.delete(args[1:])
	case "split":
		return c.split(args[1:])
	case "categories":
		return c.categories(args[1:])
	default:
		return fmt.Errorf("unknown cost subcommand: %s", args[0])
	}
}

// add records a new cost.
func (c *costCommand) add(args []string) error {
	fs := flag.NewFlagSet("cost add", flag.ExitOnError)
	date := fs.String("date", "", "cost date (YYYY-MM-DD, default: today)")
	category := fs.String("category", "", "cost category, e.g. Tyres or Insurance (required)")
	amount := fs.Float64("amount", 0, "cost amount (required)")
	note := fs.String("note", "", "free-text note")
	applies := fs.String("applies", "other", "vehicle the cost concerns (ev, ice, both, other)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	cost, err := a.ledger.AddCost(ctx, ledger.CostInput{
		Date:     *date,
		Category: *category,
		Amount:   *amount,
		Note:     *note,
		Applies:  domain.ParseAppliesTo(*applies),
	})
	if err != nil {
		return err
	}

	fmt.Println("Cost added:")
	return a.formatter("", true).FormatCosts(os.Stdout, []domain.CostRecord{cost})
}

// list shows cost records, period-filtered unless -all is set.
func (c *costCommand) list(args []string) error {
	fs := flag.NewFlagSet("cost list", flag.ExitOnError)
	all := fs.Bool("all", false, "list every cost instead of the active period")
	applies := fs.String("applies", "", "filter by vehicle tag (ev, ice, both, other)")
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

	var costs []domain.CostRecord
	if *all {
		costs = a.ledger.Costs()
		if *applies != "" && *applies != "all" {
			want := domain.ParseAppliesTo(*applies)
			kept := costs[:0]
			for _, cost := range costs {
				if domain.ParseAppliesTo(string(cost.Applies)) == want {
					kept = append(kept, cost)
				}
			}
			costs = kept
		}
	} else {
		costs = a.ledger.CostsInPeriod(*applies)
		if err := a.formatter(*format, true).FormatPeriod(os.Stdout, a.ledger.ActivePeriod()); err != nil {
			return err
		}
	}

	if err := a.formatter(*format, false).FormatCosts(os.Stdout, costs); err != nil {
		return err
	}

	fmt.Printf("All-time total: %.2f\n", a.ledger.MaintenanceTotal())
	return nil
}

// update changes an existing cost. Fields left unset keep their value.
func (c *costCommand) update(args []string) error {
	fs := flag.NewFlagSet("cost update", flag.ExitOnError)
	id := fs.String("id", "", "cost ID (required)")
	date := fs.String("date", "", "cost date (YYYY-MM-DD)")
	category := fs.String("category", "", "cost category")
	amount := fs.Float64("amount", 0, "cost amount")
	note := fs.String("note", "", "free-text note")
	applies := fs.String("applies", "", "vehicle the cost concerns (ev, ice, both, other)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("cost update requires -id")
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	prev, ok := findCost(a.ledger.Costs(), *id)
	if !ok {
		return fmt.Errorf("%w: %s", ledger.ErrCostNotFound, *id)
	}

	in := ledger.CostInput{
		Date:     prev.Date,
		Category: prev.Category,
		Amount:   prev.Amount,
		Note:     prev.Note,
		Applies:  prev.Applies,
	}
	if *date != "" {
		in.Date = *date
	}
	if *category != "" {
		in.Category = *category
	}
	if *amount > 0 {
		in.Amount = *amount
	}
	if *note != "" {
		in.Note = *note
	}
	if *applies != "" {
		in.Applies = domain.ParseAppliesTo(*applies)
	}

	cost, err := a.ledger.UpdateCost(ctx, *id, in)
	if err != nil {
		return err
	}

	fmt.Println("Cost updated:")
	return a.formatter("", true).FormatCosts(os.Stdout, []domain.CostRecord{cost})
}

// delete removes a cost record.
func (c *costCommand) delete(args []string) error {
	fs := flag.NewFlagSet("cost delete", flag.ExitOnError)
	id := fs.String("id", "", "cost ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("cost delete requires -id")
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.ledger.DeleteCost(ctx, *id); err != nil {
		return err
	}

	fmt.Printf("Cost %s deleted\n", *id)
	return nil
}

// split shows the vehicle-target cost split over the active period.
func (c *costCommand) split(args []string) error {
	fs := flag.NewFlagSet("cost split", flag.ExitOnError)
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

	f := a.formatter(*format, false)
	if err := f.FormatPeriod(os.Stdout, a.ledger.ActivePeriod()); err != nil {
		return err
	}
	return f.FormatVehicleCosts(os.Stdout, a.ledger.VehicleCosts())
}

// categories shows the per-category cost split over the active period.
func (c *costCommand) categories(args []string) error {
	fs := flag.NewFlagSet("cost categories", flag.ExitOnError)
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

	f := a.formatter(*format, false)
	if err := f.FormatPeriod(os.Stdout, a.ledger.ActivePeriod()); err != nil {
		return err
	}
	return f.FormatCategories(os.Stdout, a.ledger.CategoryTotals())
}

// findCost locates a cost record by ID.
func findCost(costs []domain.CostRecord, id string) (domain.CostRecord, bool) {
	for _, c := range costs {
		if c.ID == id {
			return c, true
		}
	}
	return domain.CostRecord{}, false
}
