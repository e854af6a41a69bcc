package engine

// RouteHop is a single system along a planned gate route.
type RouteHop struct {
	SystemID   int32   `json:"system_id"`
	SystemName string  `json:"system_name"`
	Security   float64 `json:"security"`
	Category   string  `json:"category"`
	// RiskScore is the system's risk at planning time.
	RiskScore float64 `json:"risk_score"`
	// DistLY is the gate distance from the previous hop (0 on the origin).
	DistLY float64 `json:"distance_ly"`
	// CumulativeCost is the weighted cost accumulated from the origin.
	CumulativeCost float64 `json:"cumulative_cost"`
}

// Route is a complete gate route between two systems.
type Route struct {
	Hops        []RouteHop `json:"hops"`
	TotalJumps  int        `json:"total_jumps"`
	TotalDistLY float64    `json:"total_distance_ly"`
	// TotalCost is the weighted cost of the whole route; equals
	// TotalDistLY when the profile's risk factor is zero.
	TotalCost float64 `json:"total_cost"`
	MinRisk   float64 `json:"min_risk"`
	AvgRisk   float64 `json:"avg_risk"`
	MaxRisk   float64 `json:"max_risk"`
	Profile   string  `json:"profile"`
}

// BridgeEdge is one traversable jump-bridge connection overlaid on the
// gate graph for a single routing request.
type BridgeEdge struct {
	A      int32   `json:"a"`
	B      int32   `json:"b"`
	DistLY float64 `json:"distance_ly"`
}

// RouteParams holds the inputs for gate route planning.
type RouteParams struct {
	Origin      string
	Destination string
	// Profile is a named routing profile from the risk config.
	Profile string
	// AvoidSystems and AvoidRegions are hard constraints: matching
	// systems are removed from the search space, not merely penalized.
	// Entries that resolve to nothing are ignored.
	AvoidSystems []string
	AvoidRegions []string
	// Bridges adds extra edges on top of the gate graph. Risk is
	// attributed to the entered endpoint exactly as for gates.
	Bridges []BridgeEdge
}

// JumpLeg is a single capital jump within a chain.
type JumpLeg struct {
	FromID      int32   `json:"from_id"`
	FromName    string  `json:"from_name"`
	ToID        int32   `json:"to_id"`
	ToName      string  `json:"to_name"`
	DistLY      float64 `json:"distance_ly"`
	Fuel        float64 `json:"fuel"`
	DurationMin float64 `json:"duration_minutes"`
	// FatigueMin is the estimated jump fatigue added by this leg.
	FatigueMin float64 `json:"fatigue_minutes"`
}

// JumpChain is a complete multi-leg capital jump plan.
type JumpChain struct {
	Legs        []JumpLeg `json:"legs"`
	TotalJumps  int       `json:"total_jumps"`
	TotalDistLY float64   `json:"total_distance_ly"`
	TotalFuel   float64   `json:"total_fuel"`
	TotalDurMin float64   `json:"total_duration_minutes"`
	// TotalFatigueMin is the accumulated fatigue estimate, capped.
	TotalFatigueMin float64 `json:"total_fatigue_minutes"`
	RequiresRefuel  bool    `json:"requires_refuel"`
	// RefuelPoints lists systems where the tank is topped up before
	// the departing leg, in chain order.
	RefuelPoints []int32 `json:"refuel_points"`
	// MaxRangeLY is the skill-adjusted range the chain was planned with.
	MaxRangeLY float64 `json:"max_range_ly"`
}

// JumpParams holds the inputs for capital jump planning.
type JumpParams struct {
	Origin      string
	Destination string
	Ship        ShipSpec
	// SkillLevel is Jump Drive Calibration, 0-5. Scales range.
	SkillLevel int
	// FuelSkillLevel is Jump Fuel Conservation, 0-5. Cuts fuel per LY
	// by 10% per level.
	FuelSkillLevel int
	// Avoid systems are excluded as waypoints. Unknown names are
	// ignored.
	Avoid []string
}

// SystemInRange is one candidate within a ship's jump range.
type SystemInRange struct {
	SystemID int32   `json:"system_id"`
	Name     string  `json:"name"`
	Security float64 `json:"security"`
	Category string  `json:"category"`
	DistLY   float64 `json:"distance_ly"`
	// Fuel is the isotope cost of jumping straight there.
	Fuel float64 `json:"fuel"`
}
