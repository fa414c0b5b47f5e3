// Package compare estimates what the logged EV charging would have cost
// in an equivalent combustion car, plus the home-charger payoff and
// all-in running cost totals for both vehicles.
package compare

import (
	"strings"

	"github.com/dmarinov/evlog/pkg/aggregate"
	"github.com/dmarinov/evlog/pkg/domain"
)

// InsuranceCategory is the cost category used for the insurance
// breakdown. Matching is case-insensitive.
const InsuranceCategory = "Insurance"

// Comparison is the EV versus ICE cost breakdown for a set of entries.
type Comparison struct {
	// TotalKwh is the energy charged across the entries.
	TotalKwh float64 `json:"totalKwh"`

	// EvCost is the charging spend, summed per entry at each entry's
	// own stored price.
	EvCost float64 `json:"evCost"`

	// Miles is the estimated distance driven on that energy.
	Miles float64 `json:"miles"`

	// IceCost is the estimated fuel spend to cover the same distance.
	IceCost float64 `json:"iceCost"`

	// Assumptions the estimate was computed with.
	EvMilesPerKwh float64 `json:"evMilesPerKwh"`
	IceMpg        float64 `json:"iceMpg"`
	IcePerLitre   float64 `json:"icePerLitre"`

	// UsedPriceHistory is true when IceCost was priced per entry from
	// the effective-dated fuel price history.
	UsedPriceHistory bool `json:"usedPriceHistory"`

	// Per-mile costs, zero when no distance.
	EvPerMile  float64 `json:"evPerMile"`
	IcePerMile float64 `json:"icePerMile"`

	// Home-charger payoff versus charging everything at the public
	// rate. Nil when no public rate is configured.
	PublicRate         float64  `json:"publicRate"`
	AllPublicCost      *float64 `json:"allPublicCost"`
	SavedVsPublic      *float64 `json:"savedVsPublic"`
	ChargerInvestment  float64  `json:"chargerInvestment"`
	RemainingToRecover *float64 `json:"remainingToRecover"`

	// Maintenance covers every cost record; Insurance only the
	// insurance-categorized ones.
	Maintenance aggregate.VehicleTotals `json:"maintenance"`
	Insurance   aggregate.VehicleTotals `json:"insurance"`

	// All-in running totals: energy/fuel plus attributed maintenance.
	// Difference is ICE minus EV, positive when ICE costs more.
	Allocation domain.AllocationMode `json:"allocation"`
	EvAllIn    float64               `json:"evAllIn"`
	IceAllIn   float64               `json:"iceAllIn"`
	Difference float64               `json:"difference"`
}

// Build computes the comparison for the given entries and costs.
//
// Returns nil when there are no entries. Assumption fields missing or
// non-positive in settings fall back to defaults, so Build never
// divides by zero.
func Build(entries []domain.ChargingEntry, costs []domain.CostRecord, settings domain.Settings) *Comparison {
	if len(entries) == 0 {
		return nil
	}

	settings.Normalize()

	cmp := &Comparison{
		EvMilesPerKwh: settings.EvMilesPerKwh,
		IceMpg:        settings.IceMpg,
		IcePerLitre:   settings.IcePerLitre,
		PublicRate:    settings.Public,
		Allocation:    settings.BothAllocation,
	}

	for _, e := range entries {
		cmp.TotalKwh += e.Kwh
		cmp.EvCost += e.Cost()
	}

	cmp.Miles = cmp.TotalKwh * settings.EvMilesPerKwh
	cmp.IceCost, cmp.UsedPriceHistory = iceFuelCost(entries, settings)

	if cmp.Miles > 0 {
		cmp.EvPerMile = cmp.EvCost / cmp.Miles
		cmp.IcePerMile = cmp.IceCost / cmp.Miles
	}

	if settings.Public > 0 {
		allPublic := cmp.TotalKwh * settings.Public
		saved := allPublic - cmp.EvCost
		cmp.AllPublicCost = &allPublic
		cmp.SavedVsPublic = &saved

		cmp.ChargerInvestment = settings.ChargerInvestment()
		if cmp.ChargerInvestment > 0 {
			remaining := cmp.ChargerInvestment - saved
			cmp.RemainingToRecover = &remaining
		}
	} else {
		cmp.ChargerInvestment = settings.ChargerInvestment()
	}

	cmp.Maintenance = aggregate.SumByVehicleTarget(costs)
	cmp.Insurance = aggregate.SumByVehicleTarget(filterCategory(costs, InsuranceCategory))

	evShare, iceShare := allocateShared(cmp.Maintenance, settings.BothAllocation)
	cmp.EvAllIn = cmp.EvCost + evShare
	cmp.IceAllIn = cmp.IceCost + iceShare
	cmp.Difference = cmp.IceAllIn - cmp.EvAllIn

	return cmp
}

// iceFuelCost estimates the fuel spend for the distance implied by the
// entries.
//
// With a fuel price history each entry's implied distance is priced at
// the history price in effect on the entry's date; without one, the
// whole distance is priced at the flat per-litre price. Returns the
// cost and whether the history was used.
func iceFuelCost(entries []domain.ChargingEntry, s domain.Settings) (float64, bool) {
	if len(s.FuelPriceHistory) == 0 {
		var totalKwh float64
		for _, e := range entries {
			totalKwh += e.Kwh
		}
		return fuelCostFor(totalKwh, s, s.IcePerLitre), false
	}

	var total float64
	for _, e := range entries {
		price := priceAsOf(s.FuelPriceHistory, e.Date, s.IcePerLitre)
		total += fuelCostFor(e.Kwh, s, price)
	}
	return total, true
}

// fuelCostFor converts energy to miles, miles to litres via imperial
// gallons, and prices the litres.
func fuelCostFor(kwh float64, s domain.Settings, perLitre float64) float64 {
	miles := kwh * s.EvMilesPerKwh
	gallons := miles / s.IceMpg
	litres := gallons * domain.LitresPerGallon
	return litres * perLitre
}

// priceAsOf returns the most recent history price whose effective date
// is on or before date.
//
// The history must be sorted ascending. Dates before the first point
// use the first point's price; an empty history uses fallback.
func priceAsOf(history []domain.FuelPricePoint, date string, fallback float64) float64 {
	if len(history) == 0 {
		return fallback
	}

	price := history[0].Price
	for _, p := range history {
		if p.Date > date {
			break
		}
		price = p.Price
	}
	return price
}

// allocateShared attributes maintenance to each vehicle for the all-in
// totals. Shared costs are halved in split mode and counted in full on
// both sides in double mode. Unattributed costs are excluded.
func allocateShared(t aggregate.VehicleTotals, mode domain.AllocationMode) (ev, ice float64) {
	switch mode {
	case domain.AllocationDouble:
		return t.EvOnly + t.Both, t.IceOnly + t.Both
	default:
		return t.EvOnly + t.Both/2, t.IceOnly + t.Both/2
	}
}

func filterCategory(costs []domain.CostRecord, category string) []domain.CostRecord {
	kept := make([]domain.CostRecord, 0, len(costs))
	for _, c := range costs {
		if strings.EqualFold(c.Category, category) {
			kept = append(kept, c)
		}
	}
	return kept
}
