package engine

import (
	"fmt"
	"sort"
	"strings"

	"eve-pathfinder/internal/graph"
)

// RiskInput carries externally supplied activity statistics for one
// system. Zero values mean "no recent activity known".
type RiskInput struct {
	Kills int `json:"recent_kills"`
	Pods  int `json:"recent_pods"`
}

// ClampRange bounds the final risk score.
type ClampRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RiskBand is one color band of the risk scale. Threshold is the
// inclusive lower score bound; a band runs up to the next band's
// threshold, the last band up to the clamp maximum.
type RiskBand struct {
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
	Color     string  `json:"color"`
}

// RoutingProfile selects how strongly risk penalizes distance in route
// cost. RiskFactor 0 ignores risk entirely.
type RoutingProfile struct {
	Name       string  `json:"name"`
	RiskFactor float64 `json:"risk_factor"`
}

// RiskConfig is the externally supplied risk model. Validate must pass
// before the config reaches scoring or routing; scoring itself never
// reports config errors.
type RiskConfig struct {
	SecurityWeights map[graph.SecurityCategory]float64 `json:"security_category_weights"`
	KillWeight      float64                            `json:"kill_weight"`
	PodWeight       float64                            `json:"pod_weight"`
	Clamp           ClampRange                         `json:"clamp"`
	// Bands must be sorted ascending by threshold, start at Clamp.Min,
	// and stay within the clamp range. Enforced by Validate.
	Bands    []RiskBand       `json:"bands"`
	Profiles []RoutingProfile `json:"routing_profiles"`
}

// RiskReport is the scored danger estimate for one system.
type RiskReport struct {
	SystemID   int32   `json:"system_id"`
	SystemName string  `json:"system_name"`
	Security   float64 `json:"security"`
	Category   string  `json:"category"`
	// Score is the clamped total.
	Score float64 `json:"score"`
	// Sub-scores before clamping.
	SecurityScore float64 `json:"security_score"`
	KillScore     float64 `json:"kill_score"`
	PodScore      float64 `json:"pod_score"`
	Band          string  `json:"band"`
	Color         string  `json:"color"`
}

// DefaultRiskConfig returns the built-in risk model used when no
// risk_config.json is present in the data directory.
func DefaultRiskConfig() *RiskConfig {
	return &RiskConfig{
		SecurityWeights: map[graph.SecurityCategory]float64{
			graph.SecurityHigh: 2,
			graph.SecurityLow:  15,
			graph.SecurityNull: 30,
		},
		KillWeight: 1.5,
		PodWeight:  2.5,
		Clamp:      ClampRange{Min: 0, Max: 100},
		Bands: []RiskBand{
			{Name: "safe", Threshold: 0, Color: "#3AF57A"},
			{Name: "moderate", Threshold: 25, Color: "#F5D33A"},
			{Name: "dangerous", Threshold: 60, Color: "#F53A3A"},
		},
		Profiles: []RoutingProfile{
			{Name: "shortest", RiskFactor: 0},
			{Name: "safer", RiskFactor: 0.5},
			{Name: "paranoid", RiskFactor: 1.0},
		},
	}
}

// Validate checks the config once at load time. Band coverage problems
// (gap before the first band, overlap, bands outside the clamp range)
// are config errors here, never scoring-time errors.
func (c *RiskConfig) Validate() error {
	if c.Clamp.Max <= c.Clamp.Min {
		return fmt.Errorf("%w: clamp max %.2f must exceed min %.2f", ErrInvalidRiskConfig, c.Clamp.Max, c.Clamp.Min)
	}
	if c.KillWeight < 0 || c.PodWeight < 0 {
		return fmt.Errorf("%w: kill/pod weights must be non-negative", ErrInvalidRiskConfig)
	}
	for _, cat := range []graph.SecurityCategory{graph.SecurityHigh, graph.SecurityLow, graph.SecurityNull} {
		w, ok := c.SecurityWeights[cat]
		if !ok {
			return fmt.Errorf("%w: missing security weight for %s", ErrInvalidRiskConfig, cat)
		}
		if w < 0 {
			return fmt.Errorf("%w: negative security weight for %s", ErrInvalidRiskConfig, cat)
		}
	}

	if len(c.Bands) == 0 {
		return fmt.Errorf("%w: no risk bands", ErrInvalidRiskConfig)
	}
	if !sort.SliceIsSorted(c.Bands, func(i, j int) bool {
		return c.Bands[i].Threshold < c.Bands[j].Threshold
	}) {
		return fmt.Errorf("%w: bands not sorted by threshold", ErrInvalidRiskConfig)
	}
	if c.Bands[0].Threshold != c.Clamp.Min {
		return fmt.Errorf("%w: first band starts at %.2f, leaving a gap from clamp min %.2f",
			ErrInvalidRiskConfig, c.Bands[0].Threshold, c.Clamp.Min)
	}
	for i, b := range c.Bands {
		if b.Name == "" || b.Color == "" {
			return fmt.Errorf("%w: band %d missing name or color", ErrInvalidRiskConfig, i)
		}
		if b.Threshold > c.Clamp.Max {
			return fmt.Errorf("%w: band %q starts above clamp max", ErrInvalidRiskConfig, b.Name)
		}
		if i > 0 && b.Threshold == c.Bands[i-1].Threshold {
			return fmt.Errorf("%w: bands %q and %q overlap at %.2f",
				ErrInvalidRiskConfig, c.Bands[i-1].Name, b.Name, b.Threshold)
		}
	}

	if len(c.Profiles) == 0 {
		return fmt.Errorf("%w: no routing profiles", ErrInvalidRiskConfig)
	}
	seen := make(map[string]bool, len(c.Profiles))
	for _, p := range c.Profiles {
		key := strings.ToLower(p.Name)
		if key == "" {
			return fmt.Errorf("%w: unnamed routing profile", ErrInvalidRiskConfig)
		}
		if seen[key] {
			return fmt.Errorf("%w: duplicate routing profile %q", ErrInvalidRiskConfig, p.Name)
		}
		seen[key] = true
		if p.RiskFactor < 0 {
			return fmt.Errorf("%w: profile %q has negative risk factor", ErrInvalidRiskConfig, p.Name)
		}
	}
	return nil
}

// Profile resolves a profile name, case-insensitively. The profile set
// is closed; unknown names are request errors.
func (c *RiskConfig) Profile(name string) (RoutingProfile, error) {
	for _, p := range c.Profiles {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return RoutingProfile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// Score computes the risk report for one system. Pure and
// deterministic; callers own any caching, since kill inputs are
// time-varying and the engine has no notion of staleness.
func (c *RiskConfig) Score(s *graph.System, in RiskInput) RiskReport {
	secScore := c.SecurityWeights[s.Category()]
	killScore := float64(in.Kills) * c.KillWeight
	podScore := float64(in.Pods) * c.PodWeight

	score := clamp(secScore+killScore+podScore, c.Clamp.Min, c.Clamp.Max)
	band := c.band(score)

	return RiskReport{
		SystemID:      s.ID,
		SystemName:    s.Name,
		Security:      s.Security,
		Category:      string(s.Category()),
		Score:         score,
		SecurityScore: secScore,
		KillScore:     killScore,
		PodScore:      podScore,
		Band:          band.Name,
		Color:         band.Color,
	}
}

// band returns the highest band whose threshold is <= score. Validate
// guarantees the first band starts at the clamp minimum, so a clamped
// score always lands in some band.
func (c *RiskConfig) band(score float64) RiskBand {
	out := c.Bands[0]
	for _, b := range c.Bands[1:] {
		if b.Threshold > score {
			break
		}
		out = b
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minFloat64(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	m := x[0]
	for _, v := range x[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxFloat64(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	m := x[0]
	for _, v := range x[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}
