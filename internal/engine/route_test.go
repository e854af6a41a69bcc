package engine

import (
	"errors"
	"math"
	"testing"

	"eve-pathfinder/internal/graph"
)

func buildUniverse(t *testing.T, systems []graph.System, gates []graph.Gate, regions map[int32]string) *graph.Universe {
	t.Helper()
	u, err := graph.Build(systems, gates, regions)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return u
}

// corridorUniverse models the Jita-Amarr corridor: a short direct path
// through lowsec Niarja and a longer all-highsec detour.
//
//	Jita --1.0-- Perimeter --3.0-- Niarja --1.0-- Amarr
//	               |                                |
//	               +--1.6-- Madirmilire --1.6-- Ashab
//	                         (Ashab--Amarr 1.6)
func corridorUniverse(t *testing.T) *graph.Universe {
	t.Helper()
	systems := []graph.System{
		{ID: 30000142, Name: "Jita", RegionID: 10000002, Security: 0.95},
		{ID: 30000144, Name: "Perimeter", RegionID: 10000002, Security: 0.90},
		{ID: 30003504, Name: "Niarja", RegionID: 10000043, Security: 0.30},
		{ID: 30002187, Name: "Amarr", RegionID: 10000043, Security: 0.90},
		{ID: 30003398, Name: "Madirmilire", RegionID: 10000043, Security: 0.90},
		{ID: 30002189, Name: "Ashab", RegionID: 10000043, Security: 0.90},
	}
	gates := []graph.Gate{
		{From: 30000142, To: 30000144, DistLY: 1.0},
		{From: 30000144, To: 30003504, DistLY: 3.0},
		{From: 30003504, To: 30002187, DistLY: 1.0},
		{From: 30000144, To: 30003398, DistLY: 1.6},
		{From: 30003398, To: 30002189, DistLY: 1.6},
		{From: 30002189, To: 30002187, DistLY: 1.6},
	}
	regions := map[int32]string{10000002: "The Forge", 10000043: "Domain"}
	return buildUniverse(t, systems, gates, regions)
}

func hopNames(r *Route) []string {
	names := make([]string, len(r.Hops))
	for i, h := range r.Hops {
		names[i] = h.SystemName
	}
	return names
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestShortestMatchesPlainDistance(t *testing.T) {
	u := corridorUniverse(t)
	cfg := riskTestConfig()
	stats := map[int32]RiskInput{30003504: {Kills: 5}}

	r, err := PlanRoute(u, cfg, stats, RouteParams{Origin: "Jita", Destination: "Niarja", Profile: "shortest"})
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	if !sameNames(hopNames(r), []string{"Jita", "Perimeter", "Niarja"}) {
		t.Fatalf("route = %v", hopNames(r))
	}
	if r.TotalJumps != 2 {
		t.Errorf("TotalJumps = %d, want 2", r.TotalJumps)
	}
	if math.Abs(r.TotalCost-4.0) > 1e-9 {
		t.Errorf("TotalCost = %v, want 4.0", r.TotalCost)
	}
	// With risk factor zero the cost is exactly the gate distance,
	// regardless of how dangerous the systems are.
	if math.Abs(r.TotalCost-r.TotalDistLY) > 1e-9 {
		t.Errorf("cost %v != distance %v under shortest profile", r.TotalCost, r.TotalDistLY)
	}
	last := r.Hops[len(r.Hops)-1]
	if math.Abs(last.CumulativeCost-r.TotalCost) > 1e-9 {
		t.Errorf("final hop cumulative %v != total %v", last.CumulativeCost, r.TotalCost)
	}
	if r.Hops[0].CumulativeCost != 0 || r.Hops[0].DistLY != 0 {
		t.Errorf("origin hop carries cost: %+v", r.Hops[0])
	}
}

func TestSaferWeightsRiskIntoCost(t *testing.T) {
	u := corridorUniverse(t)
	cfg := riskTestConfig()
	stats := map[int32]RiskInput{30003504: {Kills: 5}} // Niarja risk 15 + 7.5 = 22.5

	r, err := PlanRoute(u, cfg, stats, RouteParams{Origin: "Jita", Destination: "Niarja", Profile: "safer"})
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	// 1.0*(1 + 0.5*2/100) + 3.0*(1 + 0.5*22.5/100) = 1.01 + 3.3375
	if math.Abs(r.TotalCost-4.3475) > 1e-9 {
		t.Errorf("TotalCost = %v, want 4.3475", r.TotalCost)
	}
	if math.Abs(r.MinRisk-2) > 1e-9 || math.Abs(r.MaxRisk-22.5) > 1e-9 {
		t.Errorf("risk range = [%v, %v], want [2, 22.5]", r.MinRisk, r.MaxRisk)
	}
	if want := (2 + 2 + 22.5) / 3; math.Abs(r.AvgRisk-want) > 1e-9 {
		t.Errorf("AvgRisk = %v, want %v", r.AvgRisk, want)
	}
	if r.Profile != "safer" {
		t.Errorf("Profile = %q", r.Profile)
	}
}

func TestRouteAsymmetry(t *testing.T) {
	u := corridorUniverse(t)
	cfg := riskTestConfig()
	stats := map[int32]RiskInput{30003504: {Kills: 5}}

	// Risk is attributed to the entered system, so the reverse route
	// pays Jita's risk instead of Niarja's and comes out cheaper.
	fwd, err := PlanRoute(u, cfg, stats, RouteParams{Origin: "Jita", Destination: "Niarja", Profile: "safer"})
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	rev, err := PlanRoute(u, cfg, stats, RouteParams{Origin: "Niarja", Destination: "Jita", Profile: "safer"})
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	// 3.0*1.01 + 1.0*1.01 = 4.04
	if math.Abs(rev.TotalCost-4.04) > 1e-9 {
		t.Errorf("reverse TotalCost = %v, want 4.04", rev.TotalCost)
	}
	if math.Abs(fwd.TotalCost-rev.TotalCost) < 1e-9 {
		t.Errorf("expected asymmetric costs, both %v", fwd.TotalCost)
	}

	// Reproducible: replanning either direction must not drift.
	fwd2, err := PlanRoute(u, cfg, stats, RouteParams{Origin: "Jita", Destination: "Niarja", Profile: "safer"})
	if err != nil {
		t.Fatalf("forward again: %v", err)
	}
	if math.Abs(fwd.TotalCost-fwd2.TotalCost) > 1e-9 || !sameNames(hopNames(fwd), hopNames(fwd2)) {
		t.Errorf("replan drifted: %v vs %v", fwd.TotalCost, fwd2.TotalCost)
	}
}

func TestRiskFactorTradesDistanceForSafety(t *testing.T) {
	u := corridorUniverse(t)
	cfg := riskTestConfig()
	stats := map[int32]RiskInput{30003504: {Kills: 60}} // Niarja 15 + 90 = 105, clamped to 100

	tests := []struct {
		profile   string
		wantDist  float64
		wantCost  float64
		viaNiarja bool
	}{
		{"shortest", 5.0, 5.0, true},
		// 1.0*1.01 + 3*1.6*1.01 = 5.858 via the highsec detour
		{"safer", 5.8, 5.858, false},
		// 1.0*1.02 + 3*1.6*1.02 = 5.916
		{"paranoid", 5.8, 5.916, false},
	}
	prevDist := 0.0
	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			r, err := PlanRoute(u, cfg, stats, RouteParams{Origin: "Jita", Destination: "Amarr", Profile: tt.profile})
			if err != nil {
				t.Fatalf("PlanRoute: %v", err)
			}
			if math.Abs(r.TotalDistLY-tt.wantDist) > 1e-9 {
				t.Errorf("TotalDistLY = %v, want %v", r.TotalDistLY, tt.wantDist)
			}
			if math.Abs(r.TotalCost-tt.wantCost) > 1e-9 {
				t.Errorf("TotalCost = %v, want %v", r.TotalCost, tt.wantCost)
			}
			via := false
			for _, h := range r.Hops {
				if h.SystemName == "Niarja" {
					via = true
				}
			}
			if via != tt.viaNiarja {
				t.Errorf("via Niarja = %v, want %v (route %v)", via, tt.viaNiarja, hopNames(r))
			}
			// Raising the risk factor never shortens the chosen route.
			if r.TotalDistLY < prevDist-1e-9 {
				t.Errorf("distance shrank from %v to %v", prevDist, r.TotalDistLY)
			}
			prevDist = r.TotalDistLY
		})
	}
}

func TestAvoidSystemForcesDetour(t *testing.T) {
	u := corridorUniverse(t)
	cfg := riskTestConfig()

	r, err := PlanRoute(u, cfg, nil, RouteParams{
		Origin: "Jita", Destination: "Amarr", Profile: "shortest",
		AvoidSystems: []string{"Niarja"},
	})
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	for _, h := range r.Hops {
		if h.SystemName == "Niarja" {
			t.Fatalf("avoided system in route: %v", hopNames(r))
		}
	}
	if math.Abs(r.TotalDistLY-5.8) > 1e-9 {
		t.Errorf("TotalDistLY = %v, want 5.8", r.TotalDistLY)
	}
}

func TestAvoidUnknownNamesIgnored(t *testing.T) {
	u := corridorUniverse(t)
	cfg := riskTestConfig()

	r, err := PlanRoute(u, cfg, nil, RouteParams{
		Origin: "Jita", Destination: "Niarja", Profile: "shortest",
		AvoidSystems: []string{"Polaris"},
		AvoidRegions: []string{"Jove Empire"},
	})
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	if math.Abs(r.TotalCost-4.0) > 1e-9 {
		t.Errorf("TotalCost = %v, want 4.0", r.TotalCost)
	}
}

func TestAvoidRegion(t *testing.T) {
	// Null bloc pocket with two routes out: one through Querious, one
	// through Period Basis.
	systems := []graph.System{
		{ID: 30004759, Name: "1DQ1-A", RegionID: 10000060, Security: -0.40},
		{ID: 30004767, Name: "T5ZI-S", RegionID: 10000050, Security: -0.30},
		{ID: 30004900, Name: "3-DMQT", RegionID: 10000063, Security: -0.20},
		{ID: 30004770, Name: "N-8YET", RegionID: 10000060, Security: -0.35},
	}
	gates := []graph.Gate{
		{From: 30004759, To: 30004767, DistLY: 1.0},
		{From: 30004767, To: 30004770, DistLY: 1.0},
		{From: 30004759, To: 30004900, DistLY: 2.0},
		{From: 30004900, To: 30004770, DistLY: 2.0},
	}
	regions := map[int32]string{10000060: "Delve", 10000050: "Querious", 10000063: "Period Basis"}
	u := buildUniverse(t, systems, gates, regions)
	cfg := riskTestConfig()

	r, err := PlanRoute(u, cfg, nil, RouteParams{
		Origin: "1DQ1-A", Destination: "N-8YET", Profile: "shortest",
		AvoidRegions: []string{"Querious"},
	})
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	if !sameNames(hopNames(r), []string{"1DQ1-A", "3-DMQT", "N-8YET"}) {
		t.Fatalf("route = %v", hopNames(r))
	}

	// Avoiding the destination's own region leaves no route at all.
	_, err = PlanRoute(u, cfg, nil, RouteParams{
		Origin: "1DQ1-A", Destination: "N-8YET", Profile: "shortest",
		AvoidRegions: []string{"Delve"},
	})
	if !errors.Is(err, ErrNoPathFound) {
		t.Errorf("avoid destination region: %v, want ErrNoPathFound", err)
	}
}

func TestAvoidedEndpoints(t *testing.T) {
	u := corridorUniverse(t)
	cfg := riskTestConfig()

	_, err := PlanRoute(u, cfg, nil, RouteParams{
		Origin: "Jita", Destination: "Niarja", Profile: "shortest",
		AvoidSystems: []string{"Jita"},
	})
	if !errors.Is(err, ErrNoPathFound) {
		t.Errorf("avoided origin: %v, want ErrNoPathFound", err)
	}

	_, err = PlanRoute(u, cfg, nil, RouteParams{
		Origin: "Jita", Destination: "Niarja", Profile: "shortest",
		AvoidSystems: []string{"Niarja"},
	})
	if !errors.Is(err, ErrNoPathFound) {
		t.Errorf("avoided destination: %v, want ErrNoPathFound", err)
	}
}

func TestNoPathFound(t *testing.T) {
	u := corridorUniverse(t)
	cfg := riskTestConfig()

	// Perimeter is Jita's only gate; removing it cuts Jita off.
	_, err := PlanRoute(u, cfg, nil, RouteParams{
		Origin: "Jita", Destination: "Amarr", Profile: "shortest",
		AvoidSystems: []string{"Perimeter"},
	})
	if !errors.Is(err, ErrNoPathFound) {
		t.Errorf("err = %v, want ErrNoPathFound", err)
	}
	if ErrorCode(err) != "NoPathFound" {
		t.Errorf("ErrorCode = %q, want NoPathFound", ErrorCode(err))
	}
}

func TestUnknownSystemAndProfile(t *testing.T) {
	u := corridorUniverse(t)
	cfg := riskTestConfig()

	_, err := PlanRoute(u, cfg, nil, RouteParams{Origin: "Polaris", Destination: "Jita", Profile: "shortest"})
	if !errors.Is(err, graph.ErrUnknownSystem) {
		t.Errorf("unknown origin: %v, want ErrUnknownSystem", err)
	}
	if ErrorCode(err) != "UnknownSystem" {
		t.Errorf("ErrorCode = %q, want UnknownSystem", ErrorCode(err))
	}

	_, err = PlanRoute(u, cfg, nil, RouteParams{Origin: "Jita", Destination: "Niarja", Profile: "yolo"})
	if !errors.Is(err, ErrUnknownProfile) {
		t.Errorf("unknown profile: %v, want ErrUnknownProfile", err)
	}
}

func TestSameSystemRoute(t *testing.T) {
	u := corridorUniverse(t)
	cfg := riskTestConfig()

	r, err := PlanRoute(u, cfg, nil, RouteParams{Origin: "Jita", Destination: "Jita", Profile: "safer"})
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	if len(r.Hops) != 1 || r.TotalJumps != 0 {
		t.Fatalf("hops = %d jumps = %d, want 1 and 0", len(r.Hops), r.TotalJumps)
	}
	if r.TotalCost != 0 || r.TotalDistLY != 0 {
		t.Errorf("totals = cost %v dist %v, want zero", r.TotalCost, r.TotalDistLY)
	}
	if math.Abs(r.MinRisk-2) > 1e-9 || math.Abs(r.MaxRisk-2) > 1e-9 {
		t.Errorf("risk = [%v, %v], want [2, 2]", r.MinRisk, r.MaxRisk)
	}
}

func TestEqualCostPrefersFewerJumps(t *testing.T) {
	// Hek to Rens: two jumps via Nakugard or three jumps via Lustrevik
	// and Eystur, both exactly 2.0 ly of gate distance.
	systems := []graph.System{
		{ID: 30002053, Name: "Hek", RegionID: 10000042, Security: 0.90},
		{ID: 30002054, Name: "Nakugard", RegionID: 10000042, Security: 0.90},
		{ID: 30002055, Name: "Lustrevik", RegionID: 10000042, Security: 0.90},
		{ID: 30002056, Name: "Eystur", RegionID: 10000030, Security: 0.90},
		{ID: 30002510, Name: "Rens", RegionID: 10000030, Security: 0.90},
	}
	gates := []graph.Gate{
		{From: 30002053, To: 30002054, DistLY: 1.0},
		{From: 30002054, To: 30002510, DistLY: 1.0},
		{From: 30002053, To: 30002055, DistLY: 0.5},
		{From: 30002055, To: 30002056, DistLY: 0.5},
		{From: 30002056, To: 30002510, DistLY: 1.0},
	}
	regions := map[int32]string{10000042: "Metropolis", 10000030: "Heimatar"}
	u := buildUniverse(t, systems, gates, regions)
	cfg := riskTestConfig()

	r, err := PlanRoute(u, cfg, nil, RouteParams{Origin: "Hek", Destination: "Rens", Profile: "shortest"})
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	if !sameNames(hopNames(r), []string{"Hek", "Nakugard", "Rens"}) {
		t.Fatalf("route = %v, want the two-jump path", hopNames(r))
	}
	if math.Abs(r.TotalCost-2.0) > 1e-9 {
		t.Errorf("TotalCost = %v, want 2.0", r.TotalCost)
	}
}

func TestBridgeOverlay(t *testing.T) {
	u := corridorUniverse(t)
	cfg := riskTestConfig()
	bridge := []BridgeEdge{{A: 30000142, B: 30003504, DistLY: 0.5}} // Jita <-> Niarja

	r, err := PlanRoute(u, cfg, nil, RouteParams{
		Origin: "Jita", Destination: "Niarja", Profile: "shortest",
		Bridges: bridge,
	})
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	if !sameNames(hopNames(r), []string{"Jita", "Niarja"}) {
		t.Fatalf("route = %v, want direct bridge hop", hopNames(r))
	}
	if math.Abs(r.TotalCost-0.5) > 1e-9 {
		t.Errorf("TotalCost = %v, want 0.5", r.TotalCost)
	}

	// Bridges are bidirectional even when declared one way.
	rev, err := PlanRoute(u, cfg, nil, RouteParams{
		Origin: "Niarja", Destination: "Jita", Profile: "shortest",
		Bridges: bridge,
	})
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if rev.TotalJumps != 1 {
		t.Errorf("reverse jumps = %d, want 1", rev.TotalJumps)
	}

	// Malformed overlay edges are dropped, not fatal.
	r, err = PlanRoute(u, cfg, nil, RouteParams{
		Origin: "Jita", Destination: "Niarja", Profile: "shortest",
		Bridges: []BridgeEdge{
			{A: 30000142, B: 30000142, DistLY: 0.1},
			{A: 30000142, B: 99, DistLY: 0.1},
			{A: 30000142, B: 30003504, DistLY: -1},
		},
	})
	if err != nil {
		t.Fatalf("PlanRoute: %v", err)
	}
	if math.Abs(r.TotalCost-4.0) > 1e-9 {
		t.Errorf("TotalCost = %v, want 4.0 with overlay edges dropped", r.TotalCost)
	}
}
