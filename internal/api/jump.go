package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"eve-pathfinder/internal/db"
	"eve-pathfinder/internal/engine"
	"eve-pathfinder/internal/graph"

	"github.com/go-chi/chi/v5"
)

// defaultShipKey is the hull assumed when a request names none. The
// Rhea is the workhorse jump freighter most haulers fly.
const defaultShipKey = "rhea"

func shipFromQuery(r *http.Request) (engine.ShipSpec, error) {
	key := strings.TrimSpace(r.URL.Query().Get("ship"))
	if key == "" {
		key = defaultShipKey
	}
	ship, ok := engine.ShipByKey(key)
	if !ok {
		return engine.ShipSpec{}, fmt.Errorf("unknown ship %q", key)
	}
	return ship, nil
}

func (s *Server) handleJumpRange(w http.ResponseWriter, r *http.Request) {
	ship, err := shipFromQuery(r)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	jdc := intQuery(r, "jdc", 5)
	jfc := intQuery(r, "jfc", 5)

	maxRange, err := engine.MaxJumpRange(ship, jdc)
	if err != nil {
		planError(w, err)
		return
	}
	fuelPerLY, err := engine.EffectiveFuelPerLY(ship, jfc)
	if err != nil {
		planError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"ship":          ship.Key,
		"ship_name":     ship.Name,
		"class":         string(ship.Class),
		"isotope":       ship.Isotope,
		"base_range_ly": ship.BaseRangeLY,
		"max_range_ly":  maxRange,
		"jdc_level":     jdc,
		"jfc_level":     jfc,
		"fuel_per_ly":   fuelPerLY,
		"fuel_capacity": ship.FuelCapacity,
	})
}

func (s *Server) handleJumpDistance(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	s.mu.RLock()
	u := s.data.Universe
	s.mu.RUnlock()

	a, err := u.Resolve(r.URL.Query().Get("from"))
	if err != nil {
		planError(w, err)
		return
	}
	b, err := u.Resolve(r.URL.Query().Get("to"))
	if err != nil {
		planError(w, err)
		return
	}

	writeJSON(w, map[string]interface{}{
		"from_system": a.Name,
		"to_system":   b.Name,
		"distance_ly": round2(graph.DistanceLY(a, b)),
	})
}

func (s *Server) handleSystemsInRange(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	origin := strings.TrimSpace(r.URL.Query().Get("origin"))
	if origin == "" {
		writeError(w, 400, "origin is required")
		return
	}
	ship, err := shipFromQuery(r)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	security := r.URL.Query().Get("security")
	switch security {
	case "", "highsec", "lowsec", "nullsec":
	default:
		writeError(w, 400, "security must be highsec, lowsec, or nullsec")
		return
	}
	jdc := intQuery(r, "jdc", 5)
	jfc := intQuery(r, "jfc", 5)
	limit := intQuery(r, "limit", 50)

	s.mu.RLock()
	u := s.data.Universe
	s.mu.RUnlock()

	systems, maxRange, err := engine.SystemsInRange(u, origin, ship, jdc, jfc, security, limit)
	if err != nil {
		planError(w, err)
		return
	}
	if systems == nil {
		systems = []engine.SystemInRange{}
	}

	writeJSON(w, map[string]interface{}{
		"origin":       origin,
		"ship":         ship.Key,
		"max_range_ly": maxRange,
		"count":        len(systems),
		"systems":      systems,
	})
}

func (s *Server) handleJumpPlan(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	var req struct {
		From       string           `json:"from"`
		To         string           `json:"to"`
		Ship       string           `json:"ship"`
		CustomShip *engine.ShipSpec `json:"custom_ship"`
		JDC        *int             `json:"jdc"`
		JFC        *int             `json:"jfc"`
		Avoid      []string         `json:"avoid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	if req.From == "" || req.To == "" {
		writeError(w, 400, "from and to are required")
		return
	}

	// A custom spec overrides the registry; otherwise the ship key
	// picks a built-in hull.
	var ship engine.ShipSpec
	if req.CustomShip != nil {
		ship = *req.CustomShip
		if ship.Name == "" {
			ship.Name = "Custom"
		}
		if err := ship.Validate(); err != nil {
			planError(w, err)
			return
		}
	} else {
		key := req.Ship
		if key == "" {
			key = defaultShipKey
		}
		var ok bool
		ship, ok = engine.ShipByKey(key)
		if !ok {
			writeError(w, 400, fmt.Sprintf("unknown ship %q", key))
			return
		}
	}

	jdc, jfc := 5, 5
	if req.JDC != nil {
		jdc = *req.JDC
	}
	if req.JFC != nil {
		jfc = *req.JFC
	}

	s.mu.RLock()
	u := s.data.Universe
	s.mu.RUnlock()

	started := time.Now()
	chain, err := engine.PlanJumpChain(u, engine.JumpParams{
		Origin:         req.From,
		Destination:    req.To,
		Ship:           ship,
		SkillLevel:     jdc,
		FuelSkillLevel: jfc,
		Avoid:          req.Avoid,
	})
	if err != nil {
		planError(w, err)
		return
	}

	s.recordPlan("jump", req.From, req.To, ship.Name, chain.TotalJumps, chain.TotalDistLY, chain.TotalFuel, started)

	writeJSON(w, struct {
		FromSystem string `json:"from_system"`
		ToSystem   string `json:"to_system"`
		Ship       string `json:"ship"`
		ShipName   string `json:"ship_name"`
		*engine.JumpChain
	}{req.From, req.To, ship.Key, ship.Name, chain})
}

func (s *Server) handleShips(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{"ships": engine.Ships()})
}

func (s *Server) handleListShipProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{"profiles": s.db.ListShipProfiles()})
}

func (s *Server) handleSaveShipProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		ShipKey        string `json:"ship_key"`
		SkillLevel     int    `json:"skill_level"`
		FuelSkillLevel int    `json:"fuel_skill_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, 400, "name is required")
		return
	}
	key := strings.ToLower(strings.TrimSpace(req.ShipKey))
	if _, ok := engine.ShipByKey(key); !ok {
		writeError(w, 400, fmt.Sprintf("unknown ship %q", req.ShipKey))
		return
	}
	if req.SkillLevel < 0 || req.SkillLevel > 5 || req.FuelSkillLevel < 0 || req.FuelSkillLevel > 5 {
		writeError(w, 400, "skill levels must be 0-5")
		return
	}

	p, err := s.db.SaveShipProfile(db.ShipProfile{
		Name:           req.Name,
		ShipKey:        key,
		SkillLevel:     req.SkillLevel,
		FuelSkillLevel: req.FuelSkillLevel,
	})
	if err != nil {
		writeError(w, 500, "failed to save profile")
		return
	}
	writeJSON(w, p)
}

func (s *Server) handleDeleteShipProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.db.DeleteShipProfile(id) {
		writeError(w, 404, "profile not found")
		return
	}
	writeJSON(w, map[string]interface{}{"status": "ok", "deleted": id})
}
