package models

// PriceRange is an inclusive fare bound
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterState is a passenger's current query configuration. Held only in
// request scope, never persisted. An empty set on any clause means
// match-all, not match-none.
type FilterState struct {
	BoatTypes  []string   `json:"boatTypes"`
	Statuses   []string   `json:"statuses"`
	PriceRange PriceRange `json:"priceRange"`
	Days       []string   `json:"days"`
}

// DefaultPriceMax matches the mobile client's default upper fare bound
const DefaultPriceMax = 1000

// DefaultFilterState returns the unrestricted filter configuration
func DefaultFilterState() FilterState {
	return FilterState{
		BoatTypes:  []string{},
		Statuses:   []string{},
		PriceRange: PriceRange{Min: 0, Max: DefaultPriceMax},
		Days:       []string{},
	}
}
