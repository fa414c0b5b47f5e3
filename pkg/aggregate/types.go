package aggregate

// VehicleTotals partitions cost amounts by the vehicle they apply to.
//
// EV and ICE each include the shared bucket in full: a shared cost
// affects both vehicles equally, so it counts against each side.
// Total sums each underlying bucket exactly once.
type VehicleTotals struct {
	EvOnly  float64 `json:"evOnly"`
	IceOnly float64 `json:"iceOnly"`
	Both    float64 `json:"both"`
	Other   float64 `json:"other"`

	EV    float64 `json:"ev"`
	ICE   float64 `json:"ice"`
	Total float64 `json:"total"`
}

// CategoryTotal is the summed amount for one cost category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
}

// MonthTotals holds per-calendar-month charging totals.
type MonthTotals struct {
	// Month is the YYYY-MM key.
	Month string `json:"month"`

	// Kwh is the total energy charged in the month.
	Kwh float64 `json:"kwh"`

	// Cost is the total spend in the month.
	Cost float64 `json:"cost"`

	// Sessions is the number of charging sessions.
	Sessions int `json:"sessions"`

	// AvgPrice is Cost/Kwh, zero when no energy was charged.
	AvgPrice float64 `json:"avgPrice"`

	// PerDay is Cost spread over the month's calendar days.
	PerDay float64 `json:"perDay"`
}

// Summary compares the current and previous month against the
// across-all-months averages.
type Summary struct {
	// Current is the running month's totals, nil if it has no entries.
	Current *MonthTotals `json:"current"`

	// Previous is the prior month's totals, nil if it has no entries.
	Previous *MonthTotals `json:"previous"`

	// Months is the number of distinct months with data.
	Months int `json:"months"`

	// AvgKwh and AvgCost are plain means over months with data.
	AvgKwh  float64 `json:"avgKwh"`
	AvgCost float64 `json:"avgCost"`

	// AvgPrice is total cost over total energy across all months.
	AvgPrice float64 `json:"avgPrice"`
}
