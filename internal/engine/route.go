package engine

import (
	"container/heap"
	"fmt"
	"log"
	"math"

	"eve-pathfinder/internal/graph"
)

// costEpsilon treats weighted costs within this distance as equal, so
// the fewer-hops tie-break stays deterministic under float rounding.
const costEpsilon = 1e-9

// PlanRoute finds the cheapest gate route between two named systems
// under a routing profile and hard avoidance constraints.
//
// Edge weight is dist * (1 + riskFactor * risk(entered)/100). Risk is
// attributed to the system being entered, so A->B and B->A can cost
// differently; that asymmetry is intended behavior, not a bug.
// Avoided systems and regions are removed from the search space
// entirely, unlike the soft risk weighting.
func PlanRoute(u *graph.Universe, cfg *RiskConfig, stats map[int32]RiskInput, p RouteParams) (*Route, error) {
	origin, err := u.Resolve(p.Origin)
	if err != nil {
		return nil, err
	}
	dest, err := u.Resolve(p.Destination)
	if err != nil {
		return nil, err
	}
	profile, err := cfg.Profile(p.Profile)
	if err != nil {
		return nil, err
	}

	avoidSys, avoidRegion := resolveAvoidance(u, p.AvoidSystems, p.AvoidRegions)
	excluded := func(id int32) bool {
		if avoidSys[id] {
			return true
		}
		if len(avoidRegion) > 0 {
			if s, ok := u.Lookup(id); ok && avoidRegion[s.RegionID] {
				return true
			}
		}
		return false
	}
	if excluded(origin.ID) || excluded(dest.ID) {
		return nil, fmt.Errorf("%w: %s to %s under avoidance constraints", ErrNoPathFound, origin.Name, dest.Name)
	}

	// Risk reports are computed lazily and memoized for the duration of
	// this request; stats lookups default to zero activity.
	reports := make(map[int32]RiskReport)
	riskOf := func(id int32) float64 {
		if r, ok := reports[id]; ok {
			return r.Score
		}
		s, ok := u.Lookup(id)
		if !ok {
			return 0
		}
		r := cfg.Score(s, stats[s.ID])
		reports[id] = r
		return r.Score
	}

	extra := bridgeAdjacency(u, p.Bridges)
	neighbors := func(id int32) []graph.Edge {
		base := u.Neighbors(id)
		ex, ok := extra[id]
		if !ok {
			return base
		}
		merged := make([]graph.Edge, 0, len(base)+len(ex))
		merged = append(merged, base...)
		merged = append(merged, ex...)
		return merged
	}

	if origin.ID == dest.ID {
		r := riskOf(origin.ID)
		return &Route{
			Hops: []RouteHop{{
				SystemID:   origin.ID,
				SystemName: origin.Name,
				Security:   origin.Security,
				Category:   string(origin.Category()),
				RiskScore:  r,
			}},
			Profile: profile.Name,
			MinRisk: r,
			AvgRisk: r,
			MaxRisk: r,
		}, nil
	}

	type nodeState struct {
		cost    float64
		hops    int
		prev    int32
		legDist float64
	}
	best := make(map[int32]nodeState)
	best[origin.ID] = nodeState{}

	pq := &routePQ{{systemID: origin.ID}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(routeItem)
		st := best[item.systemID]
		if item.cost > st.cost+costEpsilon ||
			(math.Abs(item.cost-st.cost) <= costEpsilon && item.hops > st.hops) {
			continue
		}
		if item.systemID == dest.ID {
			break
		}
		for _, e := range neighbors(item.systemID) {
			if excluded(e.To) {
				continue
			}
			w := e.DistLY * (1 + profile.RiskFactor*riskOf(e.To)/100)
			nc := item.cost + w
			nh := item.hops + 1

			cur, seen := best[e.To]
			better := !seen || nc < cur.cost-costEpsilon
			tie := seen && math.Abs(nc-cur.cost) <= costEpsilon && nh < cur.hops
			if !better && !tie {
				continue
			}
			best[e.To] = nodeState{cost: nc, hops: nh, prev: item.systemID, legDist: e.DistLY}
			heap.Push(pq, routeItem{systemID: e.To, cost: nc, hops: nh})
		}
	}

	final, ok := best[dest.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s to %s", ErrNoPathFound, origin.Name, dest.Name)
	}

	// Walk predecessor pointers back to the origin.
	ids := make([]int32, 0, final.hops+1)
	for at := dest.ID; ; at = best[at].prev {
		ids = append(ids, at)
		if at == origin.ID {
			break
		}
	}
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}

	route := &Route{
		Hops:    make([]RouteHop, 0, len(ids)),
		Profile: profile.Name,
	}
	risks := make([]float64, 0, len(ids))
	for _, id := range ids {
		s, _ := u.Lookup(id)
		st := best[id]
		risk := riskOf(id)
		route.Hops = append(route.Hops, RouteHop{
			SystemID:       id,
			SystemName:     s.Name,
			Security:       s.Security,
			Category:       string(s.Category()),
			RiskScore:      risk,
			DistLY:         st.legDist,
			CumulativeCost: st.cost,
		})
		route.TotalDistLY += st.legDist
		risks = append(risks, risk)
	}
	route.TotalJumps = len(route.Hops) - 1
	route.TotalCost = final.cost
	route.MinRisk = minFloat64(risks)
	route.AvgRisk = mean(risks)
	route.MaxRisk = maxFloat64(risks)

	log.Printf("[Route] %s -> %s profile=%s jumps=%d dist=%.2fly cost=%.2f",
		origin.Name, dest.Name, profile.Name, route.TotalJumps, route.TotalDistLY, route.TotalCost)
	return route, nil
}

// resolveAvoidance maps avoid lists to id sets. Names that resolve to
// nothing are skipped: avoidance is a filter, not a lookup API.
func resolveAvoidance(u *graph.Universe, systems, regions []string) (map[int32]bool, map[int32]bool) {
	avoidSys := make(map[int32]bool, len(systems))
	for _, name := range systems {
		if s, ok := u.ByName(name); ok {
			avoidSys[s.ID] = true
		}
	}
	avoidRegion := make(map[int32]bool, len(regions))
	for _, name := range regions {
		if id, ok := u.RegionByName(name); ok {
			avoidRegion[id] = true
		}
	}
	return avoidSys, avoidRegion
}

// bridgeAdjacency builds the per-request overlay adjacency from bridge
// edges. Ends that are not in the universe, self-loops, and negative
// distances are dropped.
func bridgeAdjacency(u *graph.Universe, bridges []BridgeEdge) map[int32][]graph.Edge {
	if len(bridges) == 0 {
		return nil
	}
	extra := make(map[int32][]graph.Edge, len(bridges)*2)
	for _, b := range bridges {
		if b.A == b.B || b.DistLY < 0 {
			continue
		}
		if _, ok := u.Lookup(b.A); !ok {
			continue
		}
		if _, ok := u.Lookup(b.B); !ok {
			continue
		}
		extra[b.A] = append(extra[b.A], graph.Edge{To: b.B, DistLY: b.DistLY})
		extra[b.B] = append(extra[b.B], graph.Edge{To: b.A, DistLY: b.DistLY})
	}
	return extra
}

// Priority queue for the weighted search. Orders by cumulative cost,
// then hop count, so equal-cost ties settle on the fewer-hop path.
type routeItem struct {
	systemID int32
	cost     float64
	hops     int
}

type routePQ []routeItem

func (pq routePQ) Len() int { return len(pq) }
func (pq routePQ) Less(i, j int) bool {
	if pq[i].cost != pq[j].cost {
		return pq[i].cost < pq[j].cost
	}
	return pq[i].hops < pq[j].hops
}
func (pq routePQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *routePQ) Push(x interface{}) { *pq = append(*pq, x.(routeItem)) }
func (pq *routePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
