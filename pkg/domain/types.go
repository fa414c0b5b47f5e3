// Package domain defines the data model for the EV cost ledger.
//
// The whole ledger is one JSON document: a list of charging entries, a list
// of maintenance/insurance costs, the cost settings, and the persisted UI
// period selection. Field names follow the on-disk document format, so the
// same structs serve persistence, backup export and backup import.
package domain

import (
	"sort"
	"strings"
)

// ChargeType identifies where a charging session took place.
type ChargeType string

const (
	// ChargePublic is a standard public charger.
	ChargePublic ChargeType = "public"

	// ChargePublicExpensive is a premium-rate public charger.
	ChargePublicExpensive ChargeType = "public-xp"

	// ChargeHome is the home charger on the standard tariff.
	ChargeHome ChargeType = "home"

	// ChargeHomeExpensive is home charging on the peak tariff.
	ChargeHomeExpensive ChargeType = "home-xp"
)

// ChargeTypes lists all known charge types in display order.
var ChargeTypes = []ChargeType{
	ChargePublic,
	ChargePublicExpensive,
	ChargeHome,
	ChargeHomeExpensive,
}

// ParseChargeType normalizes untrusted input to a ChargeType.
//
// Matching is case-insensitive. Returns false for unknown values.
func ParseChargeType(s string) (ChargeType, bool) {
	switch ChargeType(strings.ToLower(strings.TrimSpace(s))) {
	case ChargePublic:
		return ChargePublic, true
	case ChargePublicExpensive:
		return ChargePublicExpensive, true
	case ChargeHome:
		return ChargeHome, true
	case ChargeHomeExpensive:
		return ChargeHomeExpensive, true
	}
	return "", false
}

// AppliesTo tags a cost record with the vehicle it concerns.
type AppliesTo string

const (
	// AppliesEV marks a cost attributed to the electric vehicle only.
	AppliesEV AppliesTo = "ev"

	// AppliesICE marks a cost attributed to the combustion vehicle only.
	AppliesICE AppliesTo = "ice"

	// AppliesBoth marks a shared cost affecting both vehicles.
	AppliesBoth AppliesTo = "both"

	// AppliesOther marks a cost outside the EV/ICE comparison.
	// Legacy records without a tag are treated as AppliesOther.
	AppliesOther AppliesTo = "other"
)

// ParseAppliesTo normalizes untrusted input to an AppliesTo tag.
//
// Matching is case-insensitive; unknown or empty values fall back to
// AppliesOther, mirroring how legacy records are defaulted on load.
func ParseAppliesTo(s string) AppliesTo {
	switch AppliesTo(strings.ToLower(strings.TrimSpace(s))) {
	case AppliesEV:
		return AppliesEV
	case AppliesICE:
		return AppliesICE
	case AppliesBoth:
		return AppliesBoth
	default:
		return AppliesOther
	}
}

// PeriodMode selects how the active reporting period is derived.
type PeriodMode string

const (
	// PeriodThisMonth covers the current UTC calendar month.
	PeriodThisMonth PeriodMode = "this-month"

	// PeriodLastMonth covers the previous UTC calendar month.
	PeriodLastMonth PeriodMode = "last-month"

	// PeriodLast30 covers the 30-day inclusive window ending today.
	PeriodLast30 PeriodMode = "last-30"

	// PeriodCustom uses the stored from/to bounds.
	PeriodCustom PeriodMode = "custom"

	// PeriodAllTime matches every record.
	PeriodAllTime PeriodMode = "all-time"
)

// ParsePeriodMode normalizes untrusted input to a PeriodMode.
//
// Unknown or empty values fall back to PeriodThisMonth.
func ParsePeriodMode(s string) PeriodMode {
	switch PeriodMode(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodThisMonth:
		return PeriodThisMonth
	case PeriodLastMonth:
		return PeriodLastMonth
	case PeriodLast30:
		return PeriodLast30
	case PeriodCustom:
		return PeriodCustom
	case PeriodAllTime:
		return PeriodAllTime
	default:
		return PeriodThisMonth
	}
}

// AllocationMode controls how "both"-tagged costs are attributed in the
// all-in EV vs ICE totals.
type AllocationMode string

const (
	// AllocationSplit divides a shared cost evenly between the sides.
	AllocationSplit AllocationMode = "split"

	// AllocationDouble counts a shared cost fully against each side.
	AllocationDouble AllocationMode = "double"
)

// ParseAllocationMode normalizes untrusted input to an AllocationMode.
//
// Unknown or empty values fall back to AllocationSplit.
func ParseAllocationMode(s string) AllocationMode {
	switch AllocationMode(strings.ToLower(strings.TrimSpace(s))) {
	case AllocationDouble:
		return AllocationDouble
	default:
		return AllocationSplit
	}
}

// ChargingEntry is one logged charging session.
type ChargingEntry struct {
	// ID uniquely identifies the entry for edit/delete operations.
	ID string `json:"id"`

	// Date is the calendar day of the session in YYYY-MM-DD form.
	Date string `json:"date"`

	// Kwh is the energy delivered, in kilowatt-hours.
	Kwh float64 `json:"kwh"`

	// Type is the charging location category.
	Type ChargeType `json:"type"`

	// Price is the per-kWh price paid for this session.
	Price float64 `json:"price"`

	// Note is free text.
	Note string `json:"note,omitempty"`
}

// Cost returns the total cost of the session.
func (e ChargingEntry) Cost() float64 {
	return e.Kwh * e.Price
}

// CostRecord is one maintenance or insurance cost.
type CostRecord struct {
	// ID uniquely identifies the record for edit/delete operations.
	ID string `json:"id"`

	// Date is the calendar day of the cost in YYYY-MM-DD form.
	Date string `json:"date"`

	// Category is a free-text grouping, e.g. "Tyres" or "Insurance".
	Category string `json:"category"`

	// Amount is the cost amount.
	Amount float64 `json:"amount"`

	// Note is free text.
	Note string `json:"note,omitempty"`

	// Applies tags the vehicle the cost concerns.
	Applies AppliesTo `json:"applies"`
}

// FuelPricePoint is one effective-dated fuel price record.
type FuelPricePoint struct {
	// Date is the day the price takes effect, YYYY-MM-DD.
	Date string `json:"date"`

	// Price is the per-litre fuel price from that day onward.
	Price float64 `json:"price"`
}

// Settings holds the cost settings stored inside the document.
//
// Every numeric assumption has a fallback default applied by Normalize;
// downstream code can assume a normalized Settings is fully populated.
type Settings struct {
	// Per-kWh prices for each charging category.
	Public          float64 `json:"public"`
	PublicExpensive float64 `json:"public_xp"`
	Home            float64 `json:"home"`
	HomeExpensive   float64 `json:"home_xp"`

	// Home charger investment.
	ChargerHardware float64 `json:"chargerHardware"`
	ChargerInstall  float64 `json:"chargerInstall"`

	// Comparison assumptions.
	EvMilesPerKwh float64 `json:"evMilesPerKwh"`
	IceMpg        float64 `json:"iceMpg"`
	IcePerLitre   float64 `json:"icePerLitre"`

	// FuelPriceHistory is an ascending list of effective-dated fuel
	// prices. Empty history means IcePerLitre applies to all dates.
	FuelPriceHistory []FuelPricePoint `json:"icePerLitreHistory,omitempty"`

	// BothAllocation controls shared-cost attribution in all-in totals.
	BothAllocation AllocationMode `json:"bothAllocationMode,omitempty"`
}

// Default per-category prices and comparison assumptions.
const (
	DefaultPublicPrice          = 0.56
	DefaultPublicExpensivePrice = 0.76
	DefaultHomePrice            = 0.09
	DefaultHomeExpensivePrice   = 0.30

	DefaultEvMilesPerKwh = 3.0
	DefaultIceMpg        = 45.0
	DefaultIcePerLitre   = 1.50

	// LitresPerGallon converts imperial gallons to litres.
	LitresPerGallon = 4.546
)

// DefaultSettings returns a fully populated Settings value.
func DefaultSettings() Settings {
	return Settings{
		Public:          DefaultPublicPrice,
		PublicExpensive: DefaultPublicExpensivePrice,
		Home:            DefaultHomePrice,
		HomeExpensive:   DefaultHomeExpensivePrice,
		EvMilesPerKwh:   DefaultEvMilesPerKwh,
		IceMpg:          DefaultIceMpg,
		IcePerLitre:     DefaultIcePerLitre,
		BothAllocation:  AllocationSplit,
	}
}

// Normalize applies fallback defaults to every assumption field that is
// absent, non-numeric after decoding, or non-positive, and sorts the fuel
// price history ascending by date, dropping points with unparseable dates
// or non-positive prices.
//
// Per-category prices and the charger investment are kept as stored; zero
// is a meaningful value for those.
func (s *Settings) Normalize() {
	if !(s.EvMilesPerKwh > 0) {
		s.EvMilesPerKwh = DefaultEvMilesPerKwh
	}
	if !(s.IceMpg > 0) {
		s.IceMpg = DefaultIceMpg
	}
	if !(s.IcePerLitre > 0) {
		s.IcePerLitre = DefaultIcePerLitre
	}
	s.BothAllocation = ParseAllocationMode(string(s.BothAllocation))

	// Filter into a fresh slice: Settings values are copied around with
	// a shared history backing array, so the original must stay intact.
	if len(s.FuelPriceHistory) > 0 {
		kept := make([]FuelPricePoint, 0, len(s.FuelPriceHistory))
		for _, p := range s.FuelPriceHistory {
			if _, err := ParseDate(p.Date); err != nil {
				continue
			}
			if !(p.Price > 0) {
				continue
			}
			kept = append(kept, p)
		}
		s.FuelPriceHistory = kept
		sortPricePoints(s.FuelPriceHistory)
	}
}

// PriceFor returns the configured per-kWh price for a charge type,
// or 0 for an unknown type.
func (s Settings) PriceFor(t ChargeType) float64 {
	switch t {
	case ChargePublic:
		return s.Public
	case ChargePublicExpensive:
		return s.PublicExpensive
	case ChargeHome:
		return s.Home
	case ChargeHomeExpensive:
		return s.HomeExpensive
	default:
		return 0
	}
}

// ChargerInvestment returns the combined hardware and install spend.
func (s Settings) ChargerInvestment() float64 {
	return s.ChargerHardware + s.ChargerInstall
}

// PeriodSelection is the persisted period choice.
type PeriodSelection struct {
	Mode PeriodMode `json:"periodMode"`
	From string     `json:"periodFrom,omitempty"`
	To   string     `json:"periodTo,omitempty"`
}

// Document is the whole persisted ledger.
type Document struct {
	Entries  []ChargingEntry `json:"entries"`
	Costs    []CostRecord    `json:"costs"`
	Settings Settings        `json:"settings"`
	UI       PeriodSelection `json:"ui"`
}

// NewDocument returns a structurally complete empty document.
func NewDocument() *Document {
	return &Document{
		Entries:  []ChargingEntry{},
		Costs:    []CostRecord{},
		Settings: DefaultSettings(),
		UI:       PeriodSelection{Mode: PeriodThisMonth},
	}
}

// sortPricePoints sorts price points ascending by date string.
// ISO dates order lexicographically, so plain string comparison is enough.
func sortPricePoints(points []FuelPricePoint) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
}
