package sde

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"eve-pathfinder/internal/engine"
	"eve-pathfinder/internal/graph"
	"eve-pathfinder/internal/logger"
)

const (
	universeFileName = "universe.json"
	riskFileName     = "risk_config.json"
)

// Data holds the loaded dataset: the routable universe plus the risk
// model the planners run under.
type Data struct {
	Universe *graph.Universe
	Risk     *engine.RiskConfig
	// Dataset metadata, echoed on the status endpoint.
	DatasetName string
	GeneratedAt string
}

// Wire format of universe.json. Systems and gates reference numeric
// ids; gate distances are authoritative for routing and positions are
// in metres (for jump-range math).
type universeFile struct {
	Metadata struct {
		Name        string `json:"name"`
		GeneratedAt string `json:"generated_at"`
	} `json:"metadata"`
	Regions []regionEntry `json:"regions"`
	Systems []systemEntry `json:"systems"`
	Gates   []gateEntry   `json:"gates"`
}

type regionEntry struct {
	RegionID int32  `json:"region_id"`
	Name     string `json:"name"`
}

type systemEntry struct {
	SystemID int32   `json:"system_id"`
	Name     string  `json:"name"`
	RegionID int32   `json:"region_id"`
	Security float64 `json:"security_status"`
	Position struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	} `json:"position"`
}

type gateEntry struct {
	FromID int32   `json:"from_id"`
	ToID   int32   `json:"to_id"`
	DistLY float64 `json:"distance_ly"`
}

// Load reads universe.json and risk_config.json from dataDir and
// validates both. A missing risk config falls back to the built-in
// model; a missing or malformed universe is fatal.
func Load(dataDir string) (*Data, error) {
	logger.Info("SDE", "Loading universe dataset...")
	uf, err := readUniverse(filepath.Join(dataDir, universeFileName))
	if err != nil {
		return nil, err
	}

	systems := make([]graph.System, 0, len(uf.Systems))
	for _, s := range uf.Systems {
		systems = append(systems, graph.System{
			ID:       s.SystemID,
			Name:     s.Name,
			RegionID: s.RegionID,
			Security: s.Security,
			Pos:      graph.Vec3{X: s.Position.X, Y: s.Position.Y, Z: s.Position.Z},
		})
	}
	gates := make([]graph.Gate, 0, len(uf.Gates))
	for _, g := range uf.Gates {
		dist := g.DistLY
		if dist == 0 {
			dist = 1.0 // dataset convention: omitted distance means one "unit" gate
		}
		gates = append(gates, graph.Gate{From: g.FromID, To: g.ToID, DistLY: dist})
	}
	regions := make(map[int32]string, len(uf.Regions))
	for _, r := range uf.Regions {
		regions[r.RegionID] = r.Name
	}

	universe, err := graph.Build(systems, gates, regions)
	if err != nil {
		return nil, fmt.Errorf("build universe: %w", err)
	}

	risk, err := loadRiskConfig(filepath.Join(dataDir, riskFileName))
	if err != nil {
		return nil, err
	}

	data := &Data{
		Universe:    universe,
		Risk:        risk,
		DatasetName: uf.Metadata.Name,
		GeneratedAt: uf.Metadata.GeneratedAt,
	}

	logger.Section("Dataset Statistics")
	logger.Stats("Regions", len(regions))
	logger.Stats("Systems", universe.SystemCount())
	logger.Stats("Gates", universe.GateCount())
	logger.Stats("Risk bands", len(risk.Bands))
	logger.Stats("Profiles", len(risk.Profiles))
	return data, nil
}

func readUniverse(path string) (*universeFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe dataset: %w", err)
	}
	var uf universeFile
	if err := json.Unmarshal(raw, &uf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if len(uf.Systems) == 0 {
		return nil, fmt.Errorf("%w: dataset %s has no systems", graph.ErrMalformedGraph, filepath.Base(path))
	}
	return &uf, nil
}

// loadRiskConfig parses and validates the risk model. Validation here
// is the single gate: scoring never re-checks band coverage.
func loadRiskConfig(path string) (*engine.RiskConfig, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Warn("SDE", fmt.Sprintf("%s not found, using built-in risk model", filepath.Base(path)))
		return engine.DefaultRiskConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read risk config: %w", err)
	}
	var cfg engine.RiskConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", engine.ErrInvalidRiskConfig, filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}
