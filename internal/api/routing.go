package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"eve-pathfinder/internal/engine"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))
	if from == "" || to == "" {
		writeError(w, 400, "from and to are required")
		return
	}
	profile := r.URL.Query().Get("profile")
	if profile == "" {
		profile = "shortest"
	}

	s.mu.RLock()
	data := s.data
	bsvc := s.bridges
	s.mu.RUnlock()

	params := engine.RouteParams{
		Origin:       from,
		Destination:  to,
		Profile:      profile,
		AvoidSystems: csvValues(r, "avoid"),
		AvoidRegions: csvValues(r, "avoid_regions"),
	}
	if boolQuery(r, "bridges", false) {
		params.Bridges = bsvc.Overlay()
	}

	started := time.Now()
	route, err := engine.PlanRoute(data.Universe, data.Risk, s.killStats(), params)
	if err != nil {
		planError(w, err)
		return
	}

	s.recordPlan("route", from, to, route.Profile, route.TotalJumps, route.TotalDistLY, route.TotalCost, started)
	writeJSON(w, route)
}

// routeSummary is one profile's result in a comparison. A profile that
// fails to produce a route carries the error instead of failing the
// whole comparison.
type routeSummary struct {
	Profile      string   `json:"profile"`
	TotalJumps   int      `json:"total_jumps"`
	TotalDistLY  float64  `json:"total_distance_ly"`
	TotalCost    float64  `json:"total_cost"`
	MaxRisk      float64  `json:"max_risk"`
	AvgRisk      float64  `json:"avg_risk"`
	HighsecJumps int      `json:"highsec_jumps"`
	LowsecJumps  int      `json:"lowsec_jumps"`
	NullsecJumps int      `json:"nullsec_jumps"`
	PathSystems  []string `json:"path_systems"`
	Error        string   `json:"error,omitempty"`
}

func (s *Server) handleCompareRoutes(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	var req struct {
		From       string   `json:"from"`
		To         string   `json:"to"`
		Profiles   []string `json:"profiles"`
		Avoid      []string `json:"avoid"`
		UseBridges bool     `json:"use_bridges"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if req.From == "" || req.To == "" {
		writeError(w, 400, "from and to are required")
		return
	}

	s.mu.RLock()
	data := s.data
	bsvc := s.bridges
	s.mu.RUnlock()

	if _, err := data.Universe.Resolve(req.From); err != nil {
		planError(w, err)
		return
	}
	if _, err := data.Universe.Resolve(req.To); err != nil {
		planError(w, err)
		return
	}

	// Empty profile list means compare everything configured.
	profiles := req.Profiles
	if len(profiles) == 0 {
		for _, p := range data.Risk.Profiles {
			profiles = append(profiles, p.Name)
		}
	}
	for _, p := range profiles {
		if _, err := data.Risk.Profile(p); err != nil {
			planError(w, err)
			return
		}
	}

	var overlay []engine.BridgeEdge
	if req.UseBridges {
		overlay = bsvc.Overlay()
	}

	stats := s.killStats()
	summaries := make([]routeSummary, 0, len(profiles))
	for _, profile := range profiles {
		route, err := engine.PlanRoute(data.Universe, data.Risk, stats, engine.RouteParams{
			Origin:       req.From,
			Destination:  req.To,
			Profile:      profile,
			AvoidSystems: req.Avoid,
			Bridges:      overlay,
		})
		if err != nil {
			summaries = append(summaries, routeSummary{Profile: profile, Error: err.Error()})
			continue
		}
		summaries = append(summaries, summarizeRoute(route))
	}

	writeJSON(w, map[string]interface{}{
		"from_system":    req.From,
		"to_system":      req.To,
		"routes":         summaries,
		"recommendation": compareRecommendation(summaries),
	})
}

func summarizeRoute(route *engine.Route) routeSummary {
	sum := routeSummary{
		Profile:     route.Profile,
		TotalJumps:  route.TotalJumps,
		TotalDistLY: round2(route.TotalDistLY),
		TotalCost:   round2(route.TotalCost),
		MaxRisk:     round1(route.MaxRisk),
		AvgRisk:     round1(route.AvgRisk),
		PathSystems: make([]string, 0, len(route.Hops)),
	}
	for _, hop := range route.Hops {
		sum.PathSystems = append(sum.PathSystems, hop.SystemName)
		switch hop.Category {
		case "highsec":
			sum.HighsecJumps++
		case "lowsec":
			sum.LowsecJumps++
		case "nullsec":
			sum.NullsecJumps++
		}
	}
	return sum
}

// compareRecommendation produces the one-line verdict for a route
// comparison: which profile is fastest, which is safest, and what the
// detour buys.
func compareRecommendation(routes []routeSummary) string {
	ok := make([]routeSummary, 0, len(routes))
	for _, r := range routes {
		if r.Error == "" {
			ok = append(ok, r)
		}
	}
	if len(ok) == 0 {
		return "No routes available"
	}
	if len(ok) == 1 {
		return fmt.Sprintf("Only %s profile calculated", ok[0].Profile)
	}

	shortest, safest := ok[0], ok[0]
	same := true
	for _, r := range ok[1:] {
		if r.TotalJumps < shortest.TotalJumps {
			shortest = r
		}
		if r.MaxRisk < safest.MaxRisk {
			safest = r
		}
		if r.TotalJumps != ok[0].TotalJumps || r.MaxRisk != ok[0].MaxRisk {
			same = false
		}
	}
	if same {
		return fmt.Sprintf("All profiles produce the same %d-jump route", ok[0].TotalJumps)
	}

	var parts []string
	if shortest.Profile != safest.Profile {
		jumpDiff := safest.TotalJumps - shortest.TotalJumps
		riskDiff := shortest.MaxRisk - safest.MaxRisk
		parts = append(parts, fmt.Sprintf(
			"'%s' is fastest (%d jumps) but riskier (max %.0f). '%s' adds %d jumps but reduces max risk by %.0f points.",
			shortest.Profile, shortest.TotalJumps, shortest.MaxRisk, safest.Profile, jumpDiff, riskDiff))
	} else {
		parts = append(parts, fmt.Sprintf(
			"'%s' is both fastest and safest (%d jumps, max risk %.0f)",
			shortest.Profile, shortest.TotalJumps, shortest.MaxRisk))
	}
	for _, r := range ok {
		if r.LowsecJumps == 0 && r.NullsecJumps == 0 && r.TotalJumps > 0 {
			parts = append(parts, fmt.Sprintf("'%s' stays entirely in highsec.", r.Profile))
			break
		}
	}
	return strings.Join(parts, " ")
}

// bulkRouteResult is one destination's outcome in a bulk request.
type bulkRouteResult struct {
	ToSystem    string   `json:"to_system"`
	Success     bool     `json:"success"`
	TotalJumps  int      `json:"total_jumps"`
	TotalCost   float64  `json:"total_cost"`
	MaxRisk     float64  `json:"max_risk"`
	AvgRisk     float64  `json:"avg_risk"`
	PathSystems []string `json:"path_systems,omitempty"`
	Error       string   `json:"error,omitempty"`
}

func (s *Server) handleBulkRoutes(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	var req struct {
		From       string   `json:"from"`
		To         []string `json:"to"`
		Profile    string   `json:"profile"`
		Avoid      []string `json:"avoid"`
		UseBridges bool     `json:"use_bridges"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if req.From == "" || len(req.To) == 0 {
		writeError(w, 400, "from and at least one destination are required")
		return
	}
	if req.Profile == "" {
		req.Profile = "shortest"
	}

	s.mu.RLock()
	data := s.data
	bsvc := s.bridges
	s.mu.RUnlock()

	origin, err := data.Universe.Resolve(req.From)
	if err != nil {
		planError(w, err)
		return
	}
	if _, err := data.Risk.Profile(req.Profile); err != nil {
		planError(w, err)
		return
	}

	var overlay []engine.BridgeEdge
	if req.UseBridges {
		overlay = bsvc.Overlay()
	}

	stats := s.killStats()
	results := make([]bulkRouteResult, 0, len(req.To))
	successful := 0
	for _, dest := range req.To {
		if d, ok := data.Universe.ByName(dest); ok && d.ID == origin.ID {
			results = append(results, bulkRouteResult{
				ToSystem: dest, Success: true, PathSystems: []string{origin.Name},
			})
			successful++
			continue
		}
		route, err := engine.PlanRoute(data.Universe, data.Risk, stats, engine.RouteParams{
			Origin:       req.From,
			Destination:  dest,
			Profile:      req.Profile,
			AvoidSystems: req.Avoid,
			Bridges:      overlay,
		})
		if err != nil {
			results = append(results, bulkRouteResult{ToSystem: dest, Error: err.Error()})
			continue
		}
		sum := summarizeRoute(route)
		results = append(results, bulkRouteResult{
			ToSystem:    dest,
			Success:     true,
			TotalJumps:  sum.TotalJumps,
			TotalCost:   sum.TotalCost,
			MaxRisk:     sum.MaxRisk,
			AvgRisk:     sum.AvgRisk,
			PathSystems: sum.PathSystems,
		})
		successful++
	}

	// Successful routes first, shortest first within them.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Success != results[j].Success {
			return results[i].Success
		}
		return results[i].TotalJumps < results[j].TotalJumps
	})

	writeJSON(w, map[string]interface{}{
		"from_system":        req.From,
		"profile":            req.Profile,
		"total_destinations": len(req.To),
		"successful":         successful,
		"failed":             len(req.To) - successful,
		"routes":             results,
	})
}

func (s *Server) handleSystemRisk(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()

	name := chi.URLParam(r, "name")
	sys, ok := data.Universe.ByName(name)
	if !ok {
		writeError(w, 404, "system '"+name+"' not found")
		return
	}

	var in engine.RiskInput
	if s.stats != nil {
		if boolQuery(r, "live", true) {
			in = s.stats.SystemStats(sys.ID)
		} else {
			in, _ = s.stats.Cached(sys.ID)
		}
	}

	writeJSON(w, data.Risk.Score(sys, in))
}

func (s *Server) handleRiskMap(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	var req struct {
		Systems []string `json:"systems"`
		Live    bool     `json:"live"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if len(req.Systems) == 0 {
		writeError(w, 400, "systems list is required")
		return
	}

	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()

	var ids []int32
	var unknown []string
	seen := make(map[int32]bool)
	for _, name := range req.Systems {
		sys, ok := data.Universe.ByName(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if !seen[sys.ID] {
			seen[sys.ID] = true
			ids = append(ids, sys.ID)
		}
	}

	var stats map[int32]engine.RiskInput
	if s.stats != nil {
		if req.Live {
			stats = s.stats.BulkStats(r.Context(), ids)
		} else {
			stats = s.killStats()
		}
	}

	reports := make([]engine.RiskReport, 0, len(ids))
	for _, id := range ids {
		sys, _ := data.Universe.Lookup(id)
		reports = append(reports, data.Risk.Score(sys, stats[id]))
	}

	resp := map[string]interface{}{"reports": reports}
	if unknown != nil {
		resp["unknown"] = unknown
	}
	writeJSON(w, resp)
}
