package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dmarinov/evlog/pkg/domain"
)

// settingsCommand manages prices and comparison assumptions.
type settingsCommand struct {
	configPath string
}

// Execute runs the settings command with subcommands.
func (c *settingsCommand) Execute(args []string) error {
	if len(args) == 0 {
		return c.show(nil)
	}

	switch args[0] {
	case "show":
		return c.show(args[1:])
	case "set-prices":
		return c.setPrices(args[1:])
	case "set-compare":
		return c.setCompare(args[1:])
	case "reset-compare":
		return c.resetCompare(args[1:])
	default:
		return fmt.Errorf("unknown settings subcommand: %s", args[0])
	}
}

// show displays the current settings.
func (c *settingsCommand) show(args []string) error {
	fs := flag.NewFlagSet("settings show", flag.ExitOnError)
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

	return a.formatter(*format, false).FormatSettings(os.Stdout, a.ledger.Settings())
}

// setPrices updates the per-category prices and the charger investment.
// Flags left unset keep their current value.
func (c *settingsCommand) setPrices(args []string) error {
	fs := flag.NewFlagSet("settings set-prices", flag.ExitOnError)
	public := fs.Float64("public", -1, "public charger price per kWh")
	publicXp := fs.Float64("public-xp", -1, "premium public charger price per kWh")
	home := fs.Float64("home", -1, "home charger price per kWh")
	homeXp := fs.Float64("home-xp", -1, "peak-tariff home price per kWh")
	hardware := fs.Float64("charger-hardware", -1, "home charger hardware cost")
	install := fs.Float64("charger-install", -1, "home charger installation cost")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	// Start from the stored settings so unset flags keep their value.
	// Zero is meaningful for prices and the charger spend, so the unset
	// sentinel is negative rather than zero.
	s := a.ledger.Settings()
	if *public >= 0 {
		s.Public = *public
	}
	if *publicXp >= 0 {
		s.PublicExpensive = *publicXp
	}
	if *home >= 0 {
		s.Home = *home
	}
	if *homeXp >= 0 {
		s.HomeExpensive = *homeXp
	}
	if *hardware >= 0 {
		s.ChargerHardware = *hardware
	}
	if *install >= 0 {
		s.ChargerInstall = *install
	}

	a.ledger.SetPrices(ctx, s)

	return a.formatter("", false).FormatSettings(os.Stdout, a.ledger.Settings())
}

// setCompare updates the comparison assumptions. Flags left unset keep
// their current value; a changed fuel price is recorded into the history.
func (c *settingsCommand) setCompare(args []string) error {
	fs := flag.NewFlagSet("settings set-compare", flag.ExitOnError)
	evMiles := fs.Float64("ev-miles-per-kwh", 0, "EV efficiency in miles per kWh")
	iceMpg := fs.Float64("ice-mpg", 0, "ICE efficiency in miles per gallon")
	perLitre := fs.Float64("ice-per-litre", 0, "current fuel price per litre")
	mode := fs.String("both-mode", "", "shared cost allocation (split, double)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	allocation := a.ledger.Settings().BothAllocation
	if *mode != "" {
		allocation = domain.ParseAllocationMode(*mode)
	}

	a.ledger.SetCompareAssumptions(ctx, *evMiles, *iceMpg, *perLitre, allocation)

	return a.formatter("", false).FormatSettings(os.Stdout, a.ledger.Settings())
}

// resetCompare restores the default comparison assumptions, keeping the
// fuel price history.
func (c *settingsCommand) resetCompare(args []string) error {
	fs := flag.NewFlagSet("settings reset-compare", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	a.ledger.ResetCompareAssumptions(ctx)

	fmt.Println("Comparison assumptions reset")
	return a.formatter("", false).FormatSettings(os.Stdout, a.ledger.Settings())
}

// fuelCommand manages the fuel price history.
type fuelCommand struct {
	configPath string
}

// Execute runs the fuel command with subcommands.
func (c *fuelCommand) Execute(args []string) error {
	if len(args) == 0 {
		return c.list(nil)
	}

	switch args[0] {
	case "record":
		return c.record(args[1:])
	case "list":
		return c.list(args[1:])
	default:
		return fmt.Errorf("unknown fuel subcommand: %s", args[0])
	}
}

// record stores a fuel price effective from a date.
func (c *fuelCommand) record(args []string) error {
	fs := flag.NewFlagSet("fuel record", flag.ExitOnError)
	price := fs.Float64("price", 0, "fuel price per litre (required)")
	date := fs.String("date", "", "effective date (YYYY-MM-DD, default: today)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	point, err := a.ledger.RecordFuelPrice(ctx, *price, *date)
	if err != nil {
		return err
	}

	fmt.Printf("Fuel price recorded: %.2f/litre from %s\n", point.Price, point.Date)
	return nil
}

// list displays the fuel price history.
func (c *fuelCommand) list(args []string) error {
	fs := flag.NewFlagSet("fuel list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, c.configPath)
	if err != nil {
		return err
	}
	defer a.close()

	s := a.ledger.Settings()
	if len(s.FuelPriceHistory) == 0 {
		fmt.Printf("No price history; flat price %.2f/litre applies to all dates\n", s.IcePerLitre)
		return nil
	}

	fmt.Println("Fuel price history:")
	for _, p := range s.FuelPriceHistory {
		fmt.Printf("  %s  %.2f/litre\n", p.Date, p.Price)
	}
	fmt.Printf("Current: %.2f/litre\n", s.IcePerLitre)
	return nil
}
