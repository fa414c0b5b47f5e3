// Package ledger owns the in-memory ledger document and applies every
// user-facing operation to it.
//
// Each mutation is applied to the document synchronously and followed by
// a full persistence write. Persistence failures are logged but never
// fail the operation: the in-memory state stays authoritative and the
// next successful save catches up.
package ledger

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmarinov/evlog/pkg/aggregate"
	"github.com/dmarinov/evlog/pkg/compare"
	"github.com/dmarinov/evlog/pkg/domain"
	"github.com/dmarinov/evlog/pkg/export"
	"github.com/dmarinov/evlog/pkg/logger"
	"github.com/dmarinov/evlog/pkg/period"
	"github.com/dmarinov/evlog/pkg/store"
)

// FuelPriceThreshold is the minimum per-litre change that records a new
// fuel price point. Smaller changes are treated as noise.
const FuelPriceThreshold = 0.005

// Reset values for the comparison assumptions. The fuel price is
// recorded from today onward, keeping the existing history.
const (
	resetEvMilesPerKwh = 2.8
	resetIceMpg        = 45.0
	resetIcePerLitre   = 1.44
)

// EntryInput carries the user-supplied fields of a charging entry.
type EntryInput struct {
	// Date defaults to today (UTC) when empty.
	Date string

	// Kwh must be positive.
	Kwh float64

	// Type is the charging category.
	Type domain.ChargeType

	// Price is the per-kWh price. Non-positive means "use the
	// configured price for the charging category".
	Price float64

	// Note is free text.
	Note string
}

// CostInput carries the user-supplied fields of a cost record.
type CostInput struct {
	// Date defaults to today (UTC) when empty.
	Date string

	// Category is required.
	Category string

	// Amount must be positive.
	Amount float64

	// Note is free text.
	Note string

	// Applies tags the vehicle; unknown values become "other".
	Applies domain.AppliesTo
}

// Ledger is the state-owning facade over the persisted document.
type Ledger struct {
	store    store.Store
	log      logger.Logger
	resolver *period.Resolver
	now      func() time.Time

	doc *domain.Document
}

// Option adjusts a Ledger at construction time.
type Option func(*Ledger)

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
		l.resolver = period.NewResolverAt(now)
	}
}

// Open loads the document from st and returns a ready Ledger.
//
// Parameters:
//   - ctx: context for the initial load
//   - st: backing store
//   - log: logger (may be nil)
//
// Returns an error only if the initial load fails; later save failures
// are logged, not returned.
func Open(ctx context.Context, st store.Store, log logger.Logger, opts ...Option) (*Ledger, error) {
	if log == nil {
		log = logger.Noop()
	}

	l := &Ledger{
		store:    st,
		log:      log,
		resolver: period.NewResolver(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	doc, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	l.doc = doc

	l.log.Debug("ledger loaded", "entries", len(doc.Entries), "costs", len(doc.Costs))

	return l, nil
}

// Entries returns a copy of all charging entries in insertion order.
func (l *Ledger) Entries() []domain.ChargingEntry {
	out := make([]domain.ChargingEntry, len(l.doc.Entries))
	copy(out, l.doc.Entries)
	return out
}

// Costs returns a copy of all cost records in insertion order.
func (l *Ledger) Costs() []domain.CostRecord {
	out := make([]domain.CostRecord, len(l.doc.Costs))
	copy(out, l.doc.Costs)
	return out
}

// Settings returns the current settings.
func (l *Ledger) Settings() domain.Settings {
	return l.doc.Settings
}

// LastEntry returns the most recently added entry, for prefilling a new
// one.
func (l *Ledger) LastEntry() (domain.ChargingEntry, bool) {
	if len(l.doc.Entries) == 0 {
		return domain.ChargingEntry{}, false
	}
	return l.doc.Entries[len(l.doc.Entries)-1], true
}

// AddEntry validates in and appends a new charging entry.
//
// A non-positive price falls back to the configured price for the
// charging category. Validation failures leave the document unchanged.
func (l *Ledger) AddEntry(ctx context.Context, in EntryInput) (domain.ChargingEntry, error) {
	entry, err := l.buildEntry(domain.NewEntryID(), in)
	if err != nil {
		return domain.ChargingEntry{}, err
	}

	l.doc.Entries = append(l.doc.Entries, entry)
	l.persist(ctx)

	l.log.Info("entry added", "id", entry.ID, "date", entry.Date, "kwh", entry.Kwh)

	return entry, nil
}

// UpdateEntry replaces the fields of an existing entry.
func (l *Ledger) UpdateEntry(ctx context.Context, id string, in EntryInput) (domain.ChargingEntry, error) {
	idx := l.entryIndex(id)
	if idx < 0 {
		return domain.ChargingEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	entry, err := l.buildEntry(id, in)
	if err != nil {
		return domain.ChargingEntry{}, err
	}

	l.doc.Entries[idx] = entry
	l.persist(ctx)

	l.log.Info("entry updated", "id", id)

	return entry, nil
}

// DeleteEntry removes an entry by id.
func (l *Ledger) DeleteEntry(ctx context.Context, id string) error {
	idx := l.entryIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}

	l.doc.Entries = append(l.doc.Entries[:idx], l.doc.Entries[idx+1:]...)
	l.persist(ctx)

	l.log.Info("entry deleted", "id", id)

	return nil
}

// AddCost validates in and appends a new cost record.
func (l *Ledger) AddCost(ctx context.Context, in CostInput) (domain.CostRecord, error) {
	cost, err := l.buildCost(domain.NewCostID(), in)
	if err != nil {
		return domain.CostRecord{}, err
	}

	l.doc.Costs = append(l.doc.Costs, cost)
	l.persist(ctx)

	l.log.Info("cost added", "id", cost.ID, "category", cost.Category, "amount", cost.Amount)

	return cost, nil
}

// UpdateCost replaces the fields of an existing cost record.
func (l *Ledger) UpdateCost(ctx context.Context, id string, in CostInput) (domain.CostRecord, error) {
	idx := l.costIndex(id)
	if idx < 0 {
		return domain.CostRecord{}, fmt.Errorf("%w: %s", ErrCostNotFound, id)
	}

	cost, err := l.buildCost(id, in)
	if err != nil {
		return domain.CostRecord{}, err
	}

	l.doc.Costs[idx] = cost
	l.persist(ctx)

	l.log.Info("cost updated", "id", id)

	return cost, nil
}

// DeleteCost removes a cost record by id.
func (l *Ledger) DeleteCost(ctx context.Context, id string) error {
	idx := l.costIndex(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrCostNotFound, id)
	}

	l.doc.Costs = append(l.doc.Costs[:idx], l.doc.Costs[idx+1:]...)
	l.persist(ctx)

	l.log.Info("cost deleted", "id", id)

	return nil
}

// SetPrices updates the per-category prices and charger investment.
func (l *Ledger) SetPrices(ctx context.Context, s domain.Settings) {
	l.doc.Settings.Public = s.Public
	l.doc.Settings.PublicExpensive = s.PublicExpensive
	l.doc.Settings.Home = s.Home
	l.doc.Settings.HomeExpensive = s.HomeExpensive
	l.doc.Settings.ChargerHardware = s.ChargerHardware
	l.doc.Settings.ChargerInstall = s.ChargerInstall

	l.persist(ctx)
	l.log.Info("prices updated")
}

// SetCompareAssumptions updates the comparison assumptions.
//
// Non-positive values leave the corresponding assumption unchanged. A
// changed fuel price (by at least FuelPriceThreshold) is recorded into
// the history effective today.
func (l *Ledger) SetCompareAssumptions(ctx context.Context, evMilesPerKwh, iceMpg, icePerLitre float64, mode domain.AllocationMode) {
	s := &l.doc.Settings

	if evMilesPerKwh > 0 {
		s.EvMilesPerKwh = evMilesPerKwh
	}
	if iceMpg > 0 {
		s.IceMpg = iceMpg
	}
	if icePerLitre > 0 && math.Abs(icePerLitre-s.IcePerLitre) >= FuelPriceThreshold {
		l.recordFuelPrice(icePerLitre, l.today())
	}
	s.BothAllocation = domain.ParseAllocationMode(string(mode))

	l.persist(ctx)
	l.log.Info("compare assumptions updated")
}

// RecordFuelPrice records a fuel price effective from date (today when
// empty), overwriting any existing point for that date, and makes it
// the current price.
//
// Returns the recorded point.
func (l *Ledger) RecordFuelPrice(ctx context.Context, price float64, date string) (domain.FuelPricePoint, error) {
	if !(price > 0) {
		return domain.FuelPricePoint{}, domain.ErrInvalidAmount
	}
	if date == "" {
		date = l.today()
	}
	if !domain.IsValidDate(date) {
		return domain.FuelPricePoint{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, date)
	}

	l.recordFuelPrice(price, date)
	l.persist(ctx)

	l.log.Info("fuel price recorded", "date", date, "price", price)

	return domain.FuelPricePoint{Date: date, Price: price}, nil
}

// ResetCompareAssumptions restores the default comparison assumptions.
//
// The fuel price history is kept: the reset price is recorded as a new
// point from today onward.
func (l *Ledger) ResetCompareAssumptions(ctx context.Context) {
	s := &l.doc.Settings
	s.EvMilesPerKwh = resetEvMilesPerKwh
	s.IceMpg = resetIceMpg
	s.BothAllocation = domain.AllocationSplit

	l.recordFuelPrice(resetIcePerLitre, l.today())

	l.persist(ctx)
	l.log.Info("compare assumptions reset")
}

// SetPeriod stores the active period selection.
func (l *Ledger) SetPeriod(ctx context.Context, sel domain.PeriodSelection) {
	sel.Mode = domain.ParsePeriodMode(string(sel.Mode))
	l.doc.UI = sel
	l.persist(ctx)
}

// ActivePeriod resolves the stored period selection against the clock.
func (l *Ledger) ActivePeriod() period.Period {
	return l.resolver.Resolve(l.doc.UI)
}

// EntriesInPeriod returns the entries inside the active period.
func (l *Ledger) EntriesInPeriod() []domain.ChargingEntry {
	return aggregate.FilterEntries(l.Entries(), l.ActivePeriod())
}

// CostsInPeriod returns the cost records inside the active period,
// optionally restricted to a vehicle tag ("" or "all" keeps everything).
func (l *Ledger) CostsInPeriod(applies string) []domain.CostRecord {
	costs := aggregate.FilterCosts(l.Costs(), l.ActivePeriod())

	filter := strings.ToLower(strings.TrimSpace(applies))
	if filter == "" || filter == "all" {
		return costs
	}

	want := domain.ParseAppliesTo(filter)
	kept := costs[:0]
	for _, c := range costs {
		if domain.ParseAppliesTo(string(c.Applies)) == want {
			kept = append(kept, c)
		}
	}
	return kept
}

// Summary builds the monthly summary over all entries.
func (l *Ledger) Summary() aggregate.Summary {
	return aggregate.BuildSummary(l.doc.Entries, l.now())
}

// MonthlyTotals returns per-month charging totals over all entries.
func (l *Ledger) MonthlyTotals() []aggregate.MonthTotals {
	return aggregate.MonthlyTotals(l.doc.Entries)
}

// Compare builds the EV versus ICE comparison.
//
// With periodOnly the entries and costs are restricted to the active
// period; otherwise the whole ledger is compared. Returns nil when no
// entries are in scope.
func (l *Ledger) Compare(periodOnly bool) *compare.Comparison {
	entries := l.doc.Entries
	costs := l.doc.Costs
	if periodOnly {
		p := l.ActivePeriod()
		entries = aggregate.FilterEntries(entries, p)
		costs = aggregate.FilterCosts(costs, p)
	}
	return compare.Build(entries, costs, l.doc.Settings)
}

// VehicleCosts returns the vehicle-target split over the active period.
func (l *Ledger) VehicleCosts() aggregate.VehicleTotals {
	return aggregate.SumByVehicleTarget(l.CostsInPeriod(""))
}

// CategoryTotals returns the per-category cost split over the active
// period.
func (l *Ledger) CategoryTotals() []aggregate.CategoryTotal {
	return aggregate.SumByCategory(l.CostsInPeriod(""))
}

// MaintenanceTotal returns the all-time sum of every cost record.
func (l *Ledger) MaintenanceTotal() float64 {
	var total float64
	for _, c := range l.doc.Costs {
		total += c.Amount
	}
	return total
}

// BackupJSON serializes the whole document.
func (l *Ledger) BackupJSON() ([]byte, error) {
	return export.BackupJSON(l.doc)
}

// ImportBackup replaces the document content from a backup payload.
//
// An invalid payload is rejected without mutating anything.
func (l *Ledger) ImportBackup(ctx context.Context, raw []byte) error {
	if err := export.ImportBackup(l.doc, raw); err != nil {
		return err
	}

	l.persist(ctx)
	l.log.Info("backup imported", "entries", len(l.doc.Entries), "costs", len(l.doc.Costs))

	return nil
}

// buildEntry validates and assembles an entry with the given id.
func (l *Ledger) buildEntry(id string, in EntryInput) (domain.ChargingEntry, error) {
	date := in.Date
	if date == "" {
		date = l.today()
	}

	entry := domain.ChargingEntry{
		ID:    id,
		Date:  date,
		Kwh:   in.Kwh,
		Type:  in.Type,
		Price: in.Price,
		Note:  strings.TrimSpace(in.Note),
	}

	if entry.Price <= 0 {
		entry.Price = l.doc.Settings.PriceFor(entry.Type)
	}

	if err := entry.Validate(); err != nil {
		return domain.ChargingEntry{}, err
	}
	return entry, nil
}

// buildCost validates and assembles a cost record with the given id.
func (l *Ledger) buildCost(id string, in CostInput) (domain.CostRecord, error) {
	date := in.Date
	if date == "" {
		date = l.today()
	}

	cost := domain.CostRecord{
		ID:       id,
		Date:     date,
		Category: strings.TrimSpace(in.Category),
		Amount:   in.Amount,
		Note:     strings.TrimSpace(in.Note),
		Applies:  domain.ParseAppliesTo(string(in.Applies)),
	}

	if err := cost.Validate(); err != nil {
		return domain.CostRecord{}, err
	}
	return cost, nil
}

// recordFuelPrice upserts a history point and makes it current.
func (l *Ledger) recordFuelPrice(price float64, date string) {
	s := &l.doc.Settings

	replaced := false
	for i := range s.FuelPriceHistory {
		if s.FuelPriceHistory[i].Date == date {
			s.FuelPriceHistory[i].Price = price
			replaced = true
			break
		}
	}
	if !replaced {
		s.FuelPriceHistory = append(s.FuelPriceHistory, domain.FuelPricePoint{Date: date, Price: price})
	}

	s.IcePerLitre = price
	s.Normalize()
}

func (l *Ledger) entryIndex(id string) int {
	for i := range l.doc.Entries {
		if l.doc.Entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) costIndex(id string) int {
	for i := range l.doc.Costs {
		if l.doc.Costs[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) today() string {
	return domain.FormatDate(l.now().UTC())
}

// persist writes the document through the store.
//
// Failures are logged and swallowed: the in-memory document stays
// valid and the next save retries the full write.
func (l *Ledger) persist(ctx context.Context) {
	if err := l.store.Save(ctx, l.doc); err != nil {
		l.log.Error("failed to persist ledger", "error", err)
	}
}
