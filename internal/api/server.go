package api

import (
	"encoding/json"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"eve-pathfinder/internal/bridges"
	"eve-pathfinder/internal/config"
	"eve-pathfinder/internal/db"
	"eve-pathfinder/internal/engine"
	"eve-pathfinder/internal/sde"
	"eve-pathfinder/internal/zkillboard"

	"github.com/go-chi/chi/v5"
)

// Server is the HTTP API server that connects the dataset, the route
// and jump planners, the kill-stats service, and the database.
type Server struct {
	cfg     *config.Config
	db      *db.DB
	stats   *zkillboard.Service
	mu      sync.RWMutex
	data    *sde.Data
	bridges *bridges.Service
	ready   bool
	started time.Time
}

// NewServer creates a Server with the given config, database, and
// kill-stats service. Planning endpoints return 503 until SetSDE runs.
func NewServer(cfg *config.Config, database *db.DB, stats *zkillboard.Service) *Server {
	return &Server{
		cfg:     cfg,
		db:      database,
		stats:   stats,
		started: time.Now(),
	}
}

// SetSDE is called when the universe dataset finishes loading.
func (s *Server) SetSDE(data *sde.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
	s.bridges = bridges.NewService(s.db, data.Universe)
	s.ready = true
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware)

	r.Get("/api/status", s.handleStatus)
	r.Get("/api/systems/autocomplete", s.handleAutocomplete)
	r.Get("/api/systems/{name}", s.handleGetSystem)
	r.Get("/api/systems/{name}/neighbors", s.handleSystemNeighbors)
	// Routing
	r.Get("/api/route", s.handleRoute)
	r.Post("/api/route/compare", s.handleCompareRoutes)
	r.Post("/api/route/bulk", s.handleBulkRoutes)
	r.Get("/api/risk/system/{name}", s.handleSystemRisk)
	r.Post("/api/risk/map", s.handleRiskMap)
	// Capital jumps
	r.Get("/api/jump/range", s.handleJumpRange)
	r.Get("/api/jump/distance", s.handleJumpDistance)
	r.Get("/api/jump/systems-in-range", s.handleSystemsInRange)
	r.Post("/api/jump/plan", s.handleJumpPlan)
	r.Get("/api/ships", s.handleShips)
	r.Get("/api/ships/profiles", s.handleListShipProfiles)
	r.Post("/api/ships/profiles", s.handleSaveShipProfile)
	r.Delete("/api/ships/profiles/{id}", s.handleDeleteShipProfile)
	// Jump bridges
	r.Get("/api/bridges", s.handleListBridgeNetworks)
	r.Post("/api/bridges/import", s.handleImportBridges)
	r.Get("/api/bridges/{id}", s.handleGetBridgeNetwork)
	r.Patch("/api/bridges/{id}", s.handleToggleBridgeNetwork)
	r.Delete("/api/bridges/{id}", s.handleDeleteBridgeNetwork)
	// History
	r.Get("/api/history", s.handleHistory)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// planError maps a planner error to an HTTP status by its stable code.
// Bad request inputs are 400s, exhausted searches 404s, everything
// else a 500. The code is echoed so clients can branch without parsing
// message text.
func planError(w http.ResponseWriter, err error) {
	code := engine.ErrorCode(err)
	status := 500
	switch code {
	case "UnknownSystem", "UnknownProfile", "InvalidSkillLevel",
		"InvalidShipSpecification", "InvalidRiskConfig":
		status = 400
	case "NoPathFound", "UnreachableDestination", "NoRouteInRange":
		status = 404
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "code": code})
}

func intQuery(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolQuery(r *http.Request, name string, def bool) bool {
	v := strings.ToLower(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

// csvValues flattens repeated query params and comma-separated values
// into one list: ?avoid=Tama,Rancer&avoid=Uedama yields all three.
func csvValues(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// killStats returns the cached activity snapshot the route planner
// scores against. Planning never blocks on the network; missing stats
// degrade to security-only scoring.
func (s *Server) killStats() map[int32]engine.RiskInput {
	if s.stats == nil {
		return nil
	}
	return s.stats.Snapshot()
}

// recordPlan appends a plan summary to the history ring. Best effort;
// history failures never fail the request.
func (s *Server) recordPlan(kind, origin, dest, detail string, jumps int, distLY, metric float64, started time.Time) {
	if s.db == nil {
		return
	}
	s.db.InsertPlan(db.PlanRecord{
		Kind:        kind,
		Origin:      origin,
		Destination: dest,
		Detail:      detail,
		Jumps:       jumps,
		DistLY:      distLY,
		Metric:      metric,
		DurationMs:  time.Since(started).Milliseconds(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	ready := s.ready
	var systemCount, gateCount, regionCount int
	var dataset, generatedAt string
	var profiles []string
	if s.data != nil {
		systemCount = s.data.Universe.SystemCount()
		gateCount = s.data.Universe.GateCount()
		regionCount = len(s.data.Universe.RegionNames)
		dataset = s.data.DatasetName
		generatedAt = s.data.GeneratedAt
		for _, p := range s.data.Risk.Profiles {
			profiles = append(profiles, p.Name)
		}
	}
	s.mu.RUnlock()

	result := map[string]interface{}{
		"sde_loaded":     ready,
		"sde_systems":    systemCount,
		"sde_gates":      gateCount,
		"sde_regions":    regionCount,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	}
	if dataset != "" {
		result["dataset"] = dataset
	}
	if generatedAt != "" {
		result["generated_at"] = generatedAt
	}
	if profiles != nil {
		result["profiles"] = profiles
	}
	if s.stats != nil {
		result["kill_stats_cached"] = s.stats.CachedCount()
	}
	if s.db != nil {
		result["bridge_networks"] = len(s.db.ListBridgeNetworks())
	}

	writeJSON(w, result)
}

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	if q == "" || !s.isReady() {
		writeJSON(w, map[string][]string{"systems": {}})
		return
	}

	s.mu.RLock()
	names := s.data.Universe.Names()
	s.mu.RUnlock()

	var prefix, contains []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if strings.HasPrefix(lower, q) {
			prefix = append(prefix, name)
		} else if strings.Contains(lower, q) {
			contains = append(contains, name)
		}
	}

	result := append(prefix, contains...)
	if len(result) > 15 {
		result = result[:15]
	}

	writeJSON(w, map[string][]string{"systems": result})
}

func (s *Server) handleGetSystem(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	s.mu.RLock()
	u := s.data.Universe
	s.mu.RUnlock()

	name := chi.URLParam(r, "name")
	sys, ok := u.ByName(name)
	if !ok {
		writeError(w, 404, "system '"+name+"' not found")
		return
	}

	writeJSON(w, map[string]interface{}{
		"system_id":   sys.ID,
		"name":        sys.Name,
		"security":    sys.Security,
		"category":    string(sys.Category()),
		"region_id":   sys.RegionID,
		"region_name": u.RegionName(sys.RegionID),
		"gates":       len(u.Neighbors(sys.ID)),
	})
}

func (s *Server) handleSystemNeighbors(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	s.mu.RLock()
	u := s.data.Universe
	s.mu.RUnlock()

	name := chi.URLParam(r, "name")
	sys, ok := u.ByName(name)
	if !ok {
		writeError(w, 404, "system '"+name+"' not found")
		return
	}

	var names []string
	for _, e := range u.Neighbors(sys.ID) {
		if n, ok := u.Lookup(e.To); ok {
			names = append(names, n.Name)
		}
	}
	sort.Strings(names)
	if names == nil {
		names = []string{}
	}

	writeJSON(w, map[string][]string{"neighbors": names})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 50)
	writeJSON(w, map[string]interface{}{"plans": s.db.GetPlans(limit)})
}
