package engine

import (
	"errors"

	"eve-pathfinder/internal/graph"
)

// Planning failures are sentinel values. Callers branch with errors.Is;
// the HTTP layer maps each kind to a stable identifier and status code
// without parsing message text.
var (
	// ErrNoPathFound means avoidance filtering or a disconnected graph
	// left no gate path. A normal outcome, not a fault.
	ErrNoPathFound = errors.New("no path found")
	// ErrUnreachableDestination means no jump chain can reach the
	// destination at all.
	ErrUnreachableDestination = errors.New("unreachable destination")
	// ErrNoRouteInRange means the greedy chain hit a local dead end:
	// systems are in range but none makes forward progress.
	ErrNoRouteInRange = errors.New("no route in range")
	// ErrInvalidSkillLevel means a skill level outside 0-5.
	ErrInvalidSkillLevel = errors.New("invalid skill level")
	// ErrInvalidShipSpecification means a ship spec with non-positive
	// range, fuel rate, or capacity.
	ErrInvalidShipSpecification = errors.New("invalid ship specification")
	// ErrUnknownProfile means a routing profile name not present in the
	// risk config.
	ErrUnknownProfile = errors.New("unknown routing profile")
	// ErrInvalidRiskConfig means the risk config failed load-time
	// validation (band gaps/overlaps, bad clamp range, bad weights).
	ErrInvalidRiskConfig = errors.New("invalid risk config")
)

// ErrorCode returns the stable identifier for a planning error, or
// "Internal" for anything unrecognized.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, graph.ErrMalformedGraph):
		return "MalformedGraph"
	case errors.Is(err, graph.ErrUnknownSystem):
		return "UnknownSystem"
	case errors.Is(err, ErrNoPathFound):
		return "NoPathFound"
	case errors.Is(err, ErrUnreachableDestination):
		return "UnreachableDestination"
	case errors.Is(err, ErrNoRouteInRange):
		return "NoRouteInRange"
	case errors.Is(err, ErrInvalidSkillLevel):
		return "InvalidSkillLevel"
	case errors.Is(err, ErrInvalidShipSpecification):
		return "InvalidShipSpecification"
	case errors.Is(err, ErrUnknownProfile):
		return "UnknownProfile"
	case errors.Is(err, ErrInvalidRiskConfig):
		return "InvalidRiskConfig"
	default:
		return "Internal"
	}
}
