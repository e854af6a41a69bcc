package engine

import (
	"fmt"
	"sort"
	"strings"
)

// ShipClass groups capital hulls by jump drive role.
type ShipClass string

const (
	ClassJumpFreighter  ShipClass = "jump_freighter"
	ClassCarrier        ShipClass = "carrier"
	ClassDreadnought    ShipClass = "dreadnought"
	ClassForceAuxiliary ShipClass = "force_auxiliary"
	ClassSupercarrier   ShipClass = "supercarrier"
	ClassTitan          ShipClass = "titan"
	ClassRorqual        ShipClass = "rorqual"
	ClassBlackOps       ShipClass = "black_ops"
)

// Isotope fuel variants, one per race.
const (
	IsotopeHelium   = "helium"
	IsotopeHydrogen = "hydrogen"
	IsotopeNitrogen = "nitrogen"
	IsotopeOxygen   = "oxygen"
)

var isotopeTypeIDs = map[string]int32{
	IsotopeHelium:   16274,
	IsotopeHydrogen: 17889,
	IsotopeNitrogen: 17888,
	IsotopeOxygen:   17887,
}

// IsotopeTypeID returns the market type id of an isotope fuel, or 0
// for an unknown isotope name.
func IsotopeTypeID(isotope string) int32 {
	return isotopeTypeIDs[strings.ToLower(isotope)]
}

// ShipSpec describes a capital hull's jump drive. Registry hulls and
// per-request custom specs go through the same Validate gate.
type ShipSpec struct {
	Key     string    `json:"key"`
	Name    string    `json:"name"`
	TypeID  int32     `json:"type_id"`
	Class   ShipClass `json:"class"`
	Isotope string    `json:"isotope"`
	// BaseRangeLY is the unskilled jump range in light years.
	BaseRangeLY float64 `json:"base_range_ly"`
	// FuelPerLY is the unskilled isotope burn per light year.
	FuelPerLY float64 `json:"fuel_per_ly"`
	// FuelCapacity is the isotope bay size.
	FuelCapacity float64 `json:"fuel_capacity"`
}

// Validate reports ErrInvalidShipSpecification for non-positive jump
// numbers. Zero values are treated as missing, not as free travel.
func (s ShipSpec) Validate() error {
	if s.BaseRangeLY <= 0 {
		return fmt.Errorf("%w: base range %.2f ly", ErrInvalidShipSpecification, s.BaseRangeLY)
	}
	if s.FuelPerLY <= 0 {
		return fmt.Errorf("%w: fuel per ly %.2f", ErrInvalidShipSpecification, s.FuelPerLY)
	}
	if s.FuelCapacity <= 0 {
		return fmt.Errorf("%w: fuel capacity %.2f", ErrInvalidShipSpecification, s.FuelCapacity)
	}
	return nil
}

// Built-in hull registry, keyed by lowercase hull name. Built once at
// package init; lookups never dispatch on strings at call time.
var shipRegistry = buildShipRegistry()

func buildShipRegistry() map[string]ShipSpec {
	hulls := []ShipSpec{
		// Dreadnoughts
		{Name: "Revelation", TypeID: 19720, Class: ClassDreadnought, Isotope: IsotopeHelium, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},
		{Name: "Moros", TypeID: 19722, Class: ClassDreadnought, Isotope: IsotopeOxygen, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},
		{Name: "Naglfar", TypeID: 19724, Class: ClassDreadnought, Isotope: IsotopeHydrogen, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},
		{Name: "Phoenix", TypeID: 19726, Class: ClassDreadnought, Isotope: IsotopeNitrogen, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},

		// Carriers
		{Name: "Archon", TypeID: 23757, Class: ClassCarrier, Isotope: IsotopeHelium, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},
		{Name: "Thanatos", TypeID: 23911, Class: ClassCarrier, Isotope: IsotopeOxygen, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},
		{Name: "Nidhoggur", TypeID: 24483, Class: ClassCarrier, Isotope: IsotopeHydrogen, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},
		{Name: "Chimera", TypeID: 23915, Class: ClassCarrier, Isotope: IsotopeNitrogen, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},

		// Force auxiliaries
		{Name: "Apostle", TypeID: 37604, Class: ClassForceAuxiliary, Isotope: IsotopeHelium, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},
		{Name: "Ninazu", TypeID: 37606, Class: ClassForceAuxiliary, Isotope: IsotopeOxygen, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},
		{Name: "Lif", TypeID: 37608, Class: ClassForceAuxiliary, Isotope: IsotopeHydrogen, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},
		{Name: "Minokawa", TypeID: 37605, Class: ClassForceAuxiliary, Isotope: IsotopeNitrogen, BaseRangeLY: 5.0, FuelPerLY: 1000, FuelCapacity: 25000},

		// Supercarriers
		{Name: "Aeon", TypeID: 23919, Class: ClassSupercarrier, Isotope: IsotopeHelium, BaseRangeLY: 5.0, FuelPerLY: 5000, FuelCapacity: 60000},
		{Name: "Nyx", TypeID: 23913, Class: ClassSupercarrier, Isotope: IsotopeOxygen, BaseRangeLY: 5.0, FuelPerLY: 5000, FuelCapacity: 60000},
		{Name: "Hel", TypeID: 22852, Class: ClassSupercarrier, Isotope: IsotopeHydrogen, BaseRangeLY: 5.0, FuelPerLY: 5000, FuelCapacity: 60000},
		{Name: "Wyvern", TypeID: 23917, Class: ClassSupercarrier, Isotope: IsotopeNitrogen, BaseRangeLY: 5.0, FuelPerLY: 5000, FuelCapacity: 60000},

		// Titans
		{Name: "Avatar", TypeID: 11567, Class: ClassTitan, Isotope: IsotopeHelium, BaseRangeLY: 5.0, FuelPerLY: 10000, FuelCapacity: 75000},
		{Name: "Erebus", TypeID: 671, Class: ClassTitan, Isotope: IsotopeOxygen, BaseRangeLY: 5.0, FuelPerLY: 10000, FuelCapacity: 75000},
		{Name: "Ragnarok", TypeID: 23773, Class: ClassTitan, Isotope: IsotopeHydrogen, BaseRangeLY: 5.0, FuelPerLY: 10000, FuelCapacity: 75000},
		{Name: "Leviathan", TypeID: 3764, Class: ClassTitan, Isotope: IsotopeNitrogen, BaseRangeLY: 5.0, FuelPerLY: 10000, FuelCapacity: 75000},

		// Jump freighters
		{Name: "Ark", TypeID: 28850, Class: ClassJumpFreighter, Isotope: IsotopeHelium, BaseRangeLY: 5.0, FuelPerLY: 3000, FuelCapacity: 40000},
		{Name: "Anshar", TypeID: 28846, Class: ClassJumpFreighter, Isotope: IsotopeOxygen, BaseRangeLY: 5.0, FuelPerLY: 3000, FuelCapacity: 40000},
		{Name: "Nomad", TypeID: 28848, Class: ClassJumpFreighter, Isotope: IsotopeHydrogen, BaseRangeLY: 5.0, FuelPerLY: 3000, FuelCapacity: 40000},
		{Name: "Rhea", TypeID: 28844, Class: ClassJumpFreighter, Isotope: IsotopeNitrogen, BaseRangeLY: 5.0, FuelPerLY: 3000, FuelCapacity: 40000},

		// Industrial capital
		{Name: "Rorqual", TypeID: 28352, Class: ClassRorqual, Isotope: IsotopeOxygen, BaseRangeLY: 5.0, FuelPerLY: 3000, FuelCapacity: 35000},

		// Black ops battleships
		{Name: "Redeemer", TypeID: 22428, Class: ClassBlackOps, Isotope: IsotopeHelium, BaseRangeLY: 3.5, FuelPerLY: 400, FuelCapacity: 7500},
		{Name: "Sin", TypeID: 22430, Class: ClassBlackOps, Isotope: IsotopeOxygen, BaseRangeLY: 3.5, FuelPerLY: 400, FuelCapacity: 7500},
		{Name: "Widow", TypeID: 22436, Class: ClassBlackOps, Isotope: IsotopeNitrogen, BaseRangeLY: 3.5, FuelPerLY: 400, FuelCapacity: 7500},
		{Name: "Panther", TypeID: 22440, Class: ClassBlackOps, Isotope: IsotopeHydrogen, BaseRangeLY: 3.5, FuelPerLY: 400, FuelCapacity: 7500},
	}
	reg := make(map[string]ShipSpec, len(hulls))
	for _, h := range hulls {
		h.Key = strings.ToLower(h.Name)
		reg[h.Key] = h
	}
	return reg
}

// ShipByKey returns a built-in hull by registry key (lowercase hull
// name, e.g. "ark").
func ShipByKey(key string) (ShipSpec, bool) {
	s, ok := shipRegistry[strings.ToLower(key)]
	return s, ok
}

// ShipByTypeID returns a built-in hull by EVE type id.
func ShipByTypeID(typeID int32) (ShipSpec, bool) {
	for _, s := range shipRegistry {
		if s.TypeID == typeID {
			return s, true
		}
	}
	return ShipSpec{}, false
}

// Ships returns every built-in hull, sorted by key.
func Ships() []ShipSpec {
	out := make([]ShipSpec, 0, len(shipRegistry))
	for _, s := range shipRegistry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
