package graph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errors reported by Build and by system lookups. Build-time problems are
// always ErrMalformedGraph; queries on a built universe never return it.
var (
	ErrMalformedGraph = errors.New("malformed graph")
	ErrUnknownSystem  = errors.New("unknown system")
)

// SecurityCategory is the discrete security class of a system.
type SecurityCategory string

const (
	SecurityHigh SecurityCategory = "highsec"
	SecurityLow  SecurityCategory = "lowsec"
	SecurityNull SecurityCategory = "nullsec"
)

// CategoryOf derives the discrete class from a raw security status.
// In-game security is displayed rounded to one decimal, so 0.45 rounds
// up to 0.5 and counts as highsec.
func CategoryOf(security float64) SecurityCategory {
	switch {
	case security >= 0.45:
		return SecurityHigh
	case security > 0.0:
		return SecurityLow
	default:
		return SecurityNull
	}
}

// System is one solar system node. Immutable after Build.
type System struct {
	ID       int32
	Name     string
	RegionID int32
	// Security is the raw security status (-1.0 to 1.0).
	Security float64
	// Pos is the system position in metres. Only capital jump math
	// reads it; gate routing uses per-gate distances.
	Pos Vec3
}

// Category returns the discrete security class of the system.
func (s *System) Category() SecurityCategory {
	return CategoryOf(s.Security)
}

// Gate is one undirected stargate connection in the input dataset.
type Gate struct {
	From int32
	To   int32
	// DistLY is the static gate distance in light years. It is
	// authoritative for routing and need not match the straight-line
	// distance between the endpoints.
	DistLY float64
}

// Edge is one adjacency entry of a built universe.
type Edge struct {
	To     int32
	DistLY float64
}

// Universe holds the solar system map and the stargate adjacency list.
// It is built once per dataset snapshot and never mutated afterwards;
// concurrent readers need no locking. Reloads construct a fresh
// Universe and swap the pointer.
type Universe struct {
	// Systems maps systemID -> system record.
	Systems map[int32]*System
	// Adj maps systemID -> gate edges. Gates are undirected; both
	// directions are present.
	Adj map[int32][]Edge
	// RegionNames maps regionID -> display name.
	RegionNames map[int32]string

	byName       map[string]*System
	regionByName map[string]int32
	names        []string
	gateCount    int
}

// Build validates the dataset and constructs the universe. It fails with
// ErrMalformedGraph on duplicate system ids or names, gates referencing
// unknown systems, self-loop gates, negative gate distances, or two gate
// records for the same pair disagreeing on distance. A disconnected
// graph is valid.
func Build(systems []System, gates []Gate, regionNames map[int32]string) (*Universe, error) {
	u := &Universe{
		Systems:      make(map[int32]*System, len(systems)),
		Adj:          make(map[int32][]Edge),
		RegionNames:  make(map[int32]string, len(regionNames)),
		byName:       make(map[string]*System, len(systems)),
		regionByName: make(map[string]int32, len(regionNames)),
		names:        make([]string, 0, len(systems)),
	}

	for i := range systems {
		s := systems[i]
		if _, dup := u.Systems[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate system id %d", ErrMalformedGraph, s.ID)
		}
		key := strings.ToLower(s.Name)
		if key == "" {
			return nil, fmt.Errorf("%w: system %d has no name", ErrMalformedGraph, s.ID)
		}
		if _, dup := u.byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate system name %q", ErrMalformedGraph, s.Name)
		}
		cp := s
		u.Systems[s.ID] = &cp
		u.byName[key] = &cp
		u.names = append(u.names, s.Name)
	}
	sort.Strings(u.names)

	type pair struct{ a, b int32 }
	seen := make(map[pair]float64, len(gates))
	for _, g := range gates {
		if g.From == g.To {
			return nil, fmt.Errorf("%w: self-loop gate at system %d", ErrMalformedGraph, g.From)
		}
		if g.DistLY < 0 {
			return nil, fmt.Errorf("%w: negative gate distance %f between %d and %d", ErrMalformedGraph, g.DistLY, g.From, g.To)
		}
		if _, ok := u.Systems[g.From]; !ok {
			return nil, fmt.Errorf("%w: gate references unknown system %d", ErrMalformedGraph, g.From)
		}
		if _, ok := u.Systems[g.To]; !ok {
			return nil, fmt.Errorf("%w: gate references unknown system %d", ErrMalformedGraph, g.To)
		}
		key := pair{g.From, g.To}
		if key.a > key.b {
			key.a, key.b = key.b, key.a
		}
		if d, dup := seen[key]; dup {
			if d != g.DistLY {
				return nil, fmt.Errorf("%w: gate %d-%d listed with distances %f and %f", ErrMalformedGraph, key.a, key.b, d, g.DistLY)
			}
			continue
		}
		seen[key] = g.DistLY
		u.Adj[g.From] = append(u.Adj[g.From], Edge{To: g.To, DistLY: g.DistLY})
		u.Adj[g.To] = append(u.Adj[g.To], Edge{To: g.From, DistLY: g.DistLY})
		u.gateCount++
	}

	for id, name := range regionNames {
		u.RegionNames[id] = name
		u.regionByName[strings.ToLower(name)] = id
	}
	return u, nil
}

// Lookup returns the system with the given id.
func (u *Universe) Lookup(id int32) (*System, bool) {
	s, ok := u.Systems[id]
	return s, ok
}

// ByName returns the system with the given name, case-insensitively.
func (u *Universe) ByName(name string) (*System, bool) {
	s, ok := u.byName[strings.ToLower(name)]
	return s, ok
}

// Resolve looks a system up by name and reports ErrUnknownSystem with
// the offending name when absent.
func (u *Universe) Resolve(name string) (*System, error) {
	if s, ok := u.ByName(name); ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSystem, name)
}

// Neighbors returns the gate edges of a system. Unknown ids yield an
// empty list so search loops can probe candidate ids without guarding.
func (u *Universe) Neighbors(id int32) []Edge {
	return u.Adj[id]
}

// RegionByName resolves a region display name, case-insensitively.
func (u *Universe) RegionByName(name string) (int32, bool) {
	id, ok := u.regionByName[strings.ToLower(name)]
	return id, ok
}

// RegionName returns the display name for a region id, or "" if unknown.
func (u *Universe) RegionName(id int32) string {
	return u.RegionNames[id]
}

// SystemCount returns the number of systems.
func (u *Universe) SystemCount() int {
	return len(u.Systems)
}

// GateCount returns the number of undirected gates.
func (u *Universe) GateCount() int {
	return u.gateCount
}

// Names returns all system names in sorted order. Callers must not
// mutate the returned slice.
func (u *Universe) Names() []string {
	return u.names
}

// SearchNames returns up to limit system names starting with the given
// prefix, case-insensitively, in sorted order. Used for autocomplete.
func (u *Universe) SearchNames(prefix string, limit int) []string {
	p := strings.ToLower(prefix)
	var out []string
	for _, name := range u.names {
		if !strings.HasPrefix(strings.ToLower(name), p) {
			continue
		}
		out = append(out, name)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
