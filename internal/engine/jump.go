package engine

import (
	"fmt"
	"log"
	"math"

	"eve-pathfinder/internal/graph"
)

const (
	// maxChainIterations guards the greedy loop on pathological
	// datasets.
	maxChainIterations = 200
	// rangeEpsilon absorbs float error on range boundary comparisons.
	rangeEpsilon = 1e-9
	// Duration model: fixed per-jump overhead plus distance-scaled
	// transit, in minutes.
	jumpOverheadMin = 1.0
	jumpPerLYMin    = 0.5
	// fatigueCapMin caps accumulated jump fatigue.
	fatigueCapMin = 3000.0
)

// rangeMultiplier converts a Jump Drive Calibration level into a range
// bonus. Level 5 reaches 1.75x base range.
func rangeMultiplier(level int) float64 {
	return 1.0 + 0.15*float64(level)
}

func validSkill(level int) error {
	if level < 0 || level > 5 {
		return fmt.Errorf("%w: %d (must be 0-5)", ErrInvalidSkillLevel, level)
	}
	return nil
}

// MaxJumpRange returns the skill-adjusted jump range in light years.
func MaxJumpRange(ship ShipSpec, skillLevel int) (float64, error) {
	if err := ship.Validate(); err != nil {
		return 0, err
	}
	if err := validSkill(skillLevel); err != nil {
		return 0, err
	}
	return ship.BaseRangeLY * rangeMultiplier(skillLevel), nil
}

// EffectiveFuelPerLY applies Jump Fuel Conservation: isotope burn drops
// 10% per level.
func EffectiveFuelPerLY(ship ShipSpec, fuelSkillLevel int) (float64, error) {
	if err := ship.Validate(); err != nil {
		return 0, err
	}
	if err := validSkill(fuelSkillLevel); err != nil {
		return 0, err
	}
	return ship.FuelPerLY * (1.0 - 0.10*float64(fuelSkillLevel)), nil
}

// legFatigue estimates fatigue for one jump given the fatigue already
// accumulated. The activation timer stretches as fatigue builds; added
// fatigue is ten times the timer, accumulated up to the cap.
func legFatigue(distLY, currentMin float64) (added, total float64) {
	timer := distLY * (1 + currentMin/600)
	added = timer * 10
	total = currentMin + added
	if total > fatigueCapMin {
		total = fatigueCapMin
	}
	return added, total
}

// SystemsInRange lists systems within a ship's jump range of an origin,
// nearest first, with the isotope cost of jumping straight to each.
// securityFilter narrows to one category ("" keeps all); limit caps the
// list (0 = unlimited). The skill-adjusted range is returned alongside.
func SystemsInRange(u *graph.Universe, originName string, ship ShipSpec, skillLevel, fuelSkillLevel int, securityFilter string, limit int) ([]SystemInRange, float64, error) {
	origin, err := u.Resolve(originName)
	if err != nil {
		return nil, 0, err
	}
	maxRange, err := MaxJumpRange(ship, skillLevel)
	if err != nil {
		return nil, 0, err
	}
	fuelPerLY, err := EffectiveFuelPerLY(ship, fuelSkillLevel)
	if err != nil {
		return nil, 0, err
	}

	var out []SystemInRange
	for _, r := range u.SystemsWithinRange(origin, maxRange) {
		cat := string(r.System.Category())
		if securityFilter != "" && cat != securityFilter {
			continue
		}
		out = append(out, SystemInRange{
			SystemID: r.System.ID,
			Name:     r.System.Name,
			Security: r.System.Security,
			Category: cat,
			DistLY:   r.DistLY,
			Fuel:     r.DistLY * fuelPerLY,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, maxRange, nil
}

// PlanJumpChain builds a multi-leg capital jump plan from origin to
// destination. Waypoints are chosen greedily: among in-range systems
// not yet visited and not avoided, take the one closest to the
// destination; jump straight there once the destination is in range.
// The greedy heuristic is the contract; it is not globally optimal.
func PlanJumpChain(u *graph.Universe, p JumpParams) (*JumpChain, error) {
	origin, err := u.Resolve(p.Origin)
	if err != nil {
		return nil, err
	}
	dest, err := u.Resolve(p.Destination)
	if err != nil {
		return nil, err
	}
	maxRange, err := MaxJumpRange(p.Ship, p.SkillLevel)
	if err != nil {
		return nil, err
	}
	fuelPerLY, err := EffectiveFuelPerLY(p.Ship, p.FuelSkillLevel)
	if err != nil {
		return nil, err
	}

	avoid := make(map[int32]bool, len(p.Avoid))
	for _, name := range p.Avoid {
		if s, ok := u.ByName(name); ok {
			avoid[s.ID] = true
		}
	}
	if avoid[origin.ID] || avoid[dest.ID] {
		return nil, fmt.Errorf("%w: %s or %s is in the avoid list", ErrUnreachableDestination, origin.Name, dest.Name)
	}

	chain := &JumpChain{MaxRangeLY: maxRange}
	if origin.ID == dest.ID {
		return chain, nil
	}

	waypoints := []*graph.System{origin}
	visited := map[int32]bool{origin.ID: true}
	current := origin
	arrived := false

	for iter := 0; iter < maxChainIterations; iter++ {
		remaining := graph.DistanceLY(current, dest)
		if remaining <= maxRange+rangeEpsilon {
			waypoints = append(waypoints, dest)
			arrived = true
			break
		}

		var next *graph.System
		var nextRemaining, nextLeg float64
		candidates := 0
		for _, c := range u.SystemsWithinRange(current, maxRange) {
			if visited[c.System.ID] || avoid[c.System.ID] {
				continue
			}
			candidates++
			rem := graph.DistanceLY(c.System, dest)
			if next == nil || rem < nextRemaining-rangeEpsilon ||
				(math.Abs(rem-nextRemaining) <= rangeEpsilon && c.DistLY < nextLeg) {
				next, nextRemaining, nextLeg = c.System, rem, c.DistLY
			}
		}
		if candidates == 0 {
			return nil, fmt.Errorf("%w: stranded at %s, %.2f ly short of %s",
				ErrUnreachableDestination, current.Name, remaining, dest.Name)
		}
		if nextRemaining >= remaining-rangeEpsilon {
			return nil, fmt.Errorf("%w: nothing within %.2f ly of %s makes progress toward %s",
				ErrNoRouteInRange, maxRange, current.Name, dest.Name)
		}
		waypoints = append(waypoints, next)
		visited[next.ID] = true
		current = next
	}
	if !arrived {
		return nil, fmt.Errorf("%w: gave up after %d legs from %s toward %s",
			ErrUnreachableDestination, maxChainIterations, origin.Name, dest.Name)
	}

	// Walk the legs with a running fuel balance. A leg costing more
	// than the balance marks its origin as a refuel point and the tank
	// resets to capacity there; the balance never goes below zero.
	balance := p.Ship.FuelCapacity
	for i := 0; i < len(waypoints)-1; i++ {
		from, to := waypoints[i], waypoints[i+1]
		dist := graph.DistanceLY(from, to)
		fuel := dist * fuelPerLY

		if fuel > balance+rangeEpsilon {
			chain.RefuelPoints = append(chain.RefuelPoints, from.ID)
			chain.RequiresRefuel = true
			balance = p.Ship.FuelCapacity
		}
		balance -= fuel
		if balance < 0 {
			balance = 0
		}

		added, total := legFatigue(dist, chain.TotalFatigueMin)
		chain.TotalFatigueMin = total

		leg := JumpLeg{
			FromID:      from.ID,
			FromName:    from.Name,
			ToID:        to.ID,
			ToName:      to.Name,
			DistLY:      dist,
			Fuel:        fuel,
			DurationMin: jumpOverheadMin + jumpPerLYMin*dist,
			FatigueMin:  added,
		}
		chain.Legs = append(chain.Legs, leg)
		chain.TotalDistLY += dist
		chain.TotalFuel += fuel
		chain.TotalDurMin += leg.DurationMin
	}
	chain.TotalJumps = len(chain.Legs)

	log.Printf("[Jump] %s -> %s ship=%s jumps=%d dist=%.2fly fuel=%.0f refuels=%d",
		origin.Name, dest.Name, p.Ship.Name, chain.TotalJumps, chain.TotalDistLY, chain.TotalFuel, len(chain.RefuelPoints))
	return chain, nil
}
