package bridges

import (
	"fmt"
	"strings"

	"eve-pathfinder/internal/db"
	"eve-pathfinder/internal/engine"
	"eve-pathfinder/internal/graph"
	"eve-pathfinder/internal/logger"
)

// Line separators tried in order. The bare dash form requires spaces
// around the dash so hyphenated nullsec names like 1DQ1-A survive.
var separators = []string{"<->", "<>", "-->", " - "}

// ParsedBridge is one bridge read from pasted text, resolved against
// the loaded universe.
type ParsedBridge struct {
	A      *graph.System
	B      *graph.System
	DistLY float64
}

// ParseResult carries the bridges that parsed plus per-line problems.
// A line that fails never aborts the rest of the paste.
type ParseResult struct {
	Bridges []ParsedBridge
	Errors  []string
}

func splitLine(line string) (left, right string, ok bool) {
	for _, sep := range separators {
		if i := strings.Index(line, sep); i >= 0 {
			return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+len(sep):]), true
		}
	}
	return "", "", false
}

// Parse reads pasted bridge text, one connection per line, in the
// formats "A <-> B", "A <> B", "A --> B" and "A - B". Blank lines and
// "#" comments are skipped. System names resolve case-insensitively;
// mirrored duplicates collapse onto one bridge. The bridge distance is
// computed from system positions since pastes carry none.
func Parse(u *graph.Universe, text string) ParseResult {
	var res ParseResult
	seen := make(map[[2]int32]bool)

	for i, raw := range strings.Split(text, "\n") {
		lineNum := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		left, right, ok := splitLine(line)
		if !ok || left == "" || right == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Could not parse %q", lineNum, line))
			continue
		}

		a, ok := u.ByName(left)
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Unknown system %q", lineNum, left))
			continue
		}
		b, ok := u.ByName(right)
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Unknown system %q", lineNum, right))
			continue
		}
		if a.ID == b.ID {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Bridge connects %s to itself", lineNum, a.Name))
			continue
		}

		key := [2]int32{a.ID, b.ID}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		res.Bridges = append(res.Bridges, ParsedBridge{A: a, B: b, DistLY: graph.DistanceLY(a, b)})
	}
	return res
}

// ImportReport summarizes one bridge import.
type ImportReport struct {
	NetworkID   string   `json:"network_id"`
	NetworkName string   `json:"network_name"`
	Imported    int      `json:"bridges_imported"`
	Skipped     int      `json:"bridges_skipped"`
	Errors      []string `json:"errors"`
}

// Service manages named bridge networks and produces the overlay the
// router consumes.
type Service struct {
	store *db.DB
	u     *graph.Universe
}

// NewService wires the bridge service over the persistent store and
// the loaded universe.
func NewService(store *db.DB, u *graph.Universe) *Service {
	return &Service{store: store, u: u}
}

// Import parses pasted bridge text into the named network, creating
// the network when it does not exist yet. With replace the network's
// bridge set is swapped for the parsed one; otherwise parsed bridges
// merge in and already-known pairs count as skipped.
func (s *Service) Import(networkName, text string, replace bool) (*ImportReport, error) {
	networkName = strings.TrimSpace(networkName)
	if networkName == "" {
		return nil, fmt.Errorf("bridge network name is required")
	}

	parsed := Parse(s.u, text)
	rows := make([]db.BridgeRow, len(parsed.Bridges))
	for i, b := range parsed.Bridges {
		rows[i] = db.BridgeRow{ASystemID: b.A.ID, BSystemID: b.B.ID, DistLY: b.DistLY}
	}

	network := s.networkByName(networkName)
	if network == nil {
		created, err := s.store.CreateBridgeNetwork(networkName)
		if err != nil {
			return nil, err
		}
		network = created
	}

	report := &ImportReport{
		NetworkID:   network.ID,
		NetworkName: network.Name,
		Errors:      parsed.Errors,
	}
	if replace {
		if err := s.store.ReplaceBridges(network.ID, rows); err != nil {
			return nil, err
		}
		report.Imported = len(rows)
	} else {
		added, err := s.store.AddBridges(network.ID, rows)
		if err != nil {
			return nil, err
		}
		report.Imported = added
		report.Skipped = len(rows) - added
	}

	logger.Info("Bridges", fmt.Sprintf("Imported %d bridges into %q (%d skipped, %d errors)",
		report.Imported, network.Name, report.Skipped, len(report.Errors)))
	return report, nil
}

func (s *Service) networkByName(name string) *db.BridgeNetwork {
	for _, n := range s.store.ListBridgeNetworks() {
		if strings.EqualFold(n.Name, name) {
			return &n
		}
	}
	return nil
}

// Overlay returns the bridges of every enabled network as router
// edges. Rows whose systems are missing from the loaded universe are
// dropped, which covers dataset swaps that removed a system.
func (s *Service) Overlay() []engine.BridgeEdge {
	rows := s.store.EnabledBridges()
	edges := make([]engine.BridgeEdge, 0, len(rows))
	for _, r := range rows {
		if _, ok := s.u.Lookup(r.ASystemID); !ok {
			continue
		}
		if _, ok := s.u.Lookup(r.BSystemID); !ok {
			continue
		}
		edges = append(edges, engine.BridgeEdge{A: r.ASystemID, B: r.BSystemID, DistLY: r.DistLY})
	}
	return edges
}
