package graph

import (
	"math"
	"sort"
)

// MetresPerLY converts dataset positions (metres) to light years.
const MetresPerLY = 9.461e15

// Vec3 is a position in metres.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// DistanceLY returns the straight-line distance between two systems in
// light years.
func DistanceLY(a, b *System) float64 {
	dx := a.Pos.X - b.Pos.X
	dy := a.Pos.Y - b.Pos.Y
	dz := a.Pos.Z - b.Pos.Z
	return math.Sqrt(dx*dx+dy*dy+dz*dz) / MetresPerLY
}

// InRange pairs a system with its straight-line distance from a scan
// origin.
type InRange struct {
	System *System
	DistLY float64
}

// SystemsWithinRange returns every system within rangeLY light years of
// origin, excluding origin itself, nearest first. The scan covers the
// full system set because capital jump drives ignore gate topology.
// Ties sort by system id so the order is stable across runs.
func (u *Universe) SystemsWithinRange(origin *System, rangeLY float64) []InRange {
	var out []InRange
	for _, s := range u.Systems {
		if s.ID == origin.ID {
			continue
		}
		if d := DistanceLY(origin, s); d <= rangeLY {
			out = append(out, InRange{System: s, DistLY: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistLY != out[j].DistLY {
			return out[i].DistLY < out[j].DistLY
		}
		return out[i].System.ID < out[j].System.ID
	})
	return out
}
