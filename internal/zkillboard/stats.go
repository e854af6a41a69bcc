package zkillboard

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"eve-pathfinder/internal/db"
	"eve-pathfinder/internal/engine"
	"eve-pathfinder/internal/logger"
)

// DefaultStatsTTL balances freshness against Zkillboard's limits.
const DefaultStatsTTL = 10 * time.Minute

// DefaultWindow is the activity look-back used for risk scoring.
const DefaultWindow = 24 * time.Hour

// Trade hubs and pipe systems worth keeping warm for routing.
var hubSystemIDs = []int32{
	30000142, // Jita
	30002187, // Amarr
	30002659, // Dodixie
	30002510, // Rens
	30002053, // Hek
	30002813, // Tama
	30002718, // Rancer
	30002537, // Amamake
	30003504, // Niarja
	30005196, // Ahbazon
}

type statsEntry struct {
	input   engine.RiskInput
	fetched time.Time
}

// Service caches per-system kill activity with a TTL, collapses
// concurrent fetches for the same system, and persists results so a
// restart starts with warm stats instead of an empty cache.
type Service struct {
	client *Client
	store  *db.DB // optional
	window time.Duration
	ttl    time.Duration

	group singleflight.Group

	mu    sync.RWMutex
	cache map[int32]statsEntry
}

// NewService builds the stats service and warms its cache from rows
// the store persisted within the TTL.
func NewService(client *Client, store *db.DB, window, ttl time.Duration) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	s := &Service{
		client: client,
		store:  store,
		window: window,
		ttl:    ttl,
		cache:  make(map[int32]statsEntry),
	}
	if store != nil {
		rows := store.GetKillStatsSince(time.Now().Add(-ttl))
		for _, r := range rows {
			fetched, err := time.Parse(time.RFC3339, r.FetchedAt)
			if err != nil {
				continue
			}
			s.cache[r.SystemID] = statsEntry{
				input:   engine.RiskInput{Kills: r.Kills, Pods: r.Pods},
				fetched: fetched,
			}
		}
		if len(s.cache) > 0 {
			logger.Info("Zkillboard", fmt.Sprintf("Warmed kill stats for %d systems from store", len(s.cache)))
		}
	}
	return s
}

// Cached returns the cached activity for a system without fetching.
func (s *Service) Cached(systemID int32) (engine.RiskInput, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.cache[systemID]
	if !ok || time.Since(e.fetched) > s.ttl {
		return engine.RiskInput{}, false
	}
	return e.input, true
}

// CachedCount reports how many systems currently have live stats.
func (s *Service) CachedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.cache {
		if time.Since(e.fetched) <= s.ttl {
			n++
		}
	}
	return n
}

// Snapshot returns every cached entry still inside the TTL. Route
// planning scores against this map so it never blocks on the network;
// systems with no entry score as quiet.
func (s *Service) Snapshot() map[int32]engine.RiskInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int32]engine.RiskInput, len(s.cache))
	for id, e := range s.cache {
		if time.Since(e.fetched) > s.ttl {
			continue
		}
		out[id] = e.input
	}
	return out
}

// SystemStats returns activity for one system, fetching on a cache
// miss. Fetch failures degrade to zero activity rather than erroring,
// so a Zkillboard outage only flattens scores back to the static model.
func (s *Service) SystemStats(systemID int32) engine.RiskInput {
	if in, ok := s.Cached(systemID); ok {
		return in
	}
	v, _, _ := s.group.Do(strconv.FormatInt(int64(systemID), 10), func() (interface{}, error) {
		return s.fetch(systemID), nil
	})
	return v.(engine.RiskInput)
}

func (s *Service) fetch(systemID int32) engine.RiskInput {
	if s.client == nil {
		return engine.RiskInput{}
	}
	kills, err := s.client.SystemKills(systemID, s.window)
	if err != nil {
		logger.Warn("Zkillboard", fmt.Sprintf("Stats fetch failed for system %d: %v", systemID, err))
		return engine.RiskInput{}
	}
	ships, pods := CountActivity(kills)
	in := engine.RiskInput{Kills: ships, Pods: pods}

	s.mu.Lock()
	s.cache[systemID] = statsEntry{input: in, fetched: time.Now()}
	s.mu.Unlock()

	if s.store != nil {
		s.store.UpsertKillStats(systemID, ships, pods)
	}
	return in
}

// BulkStats returns activity for many systems, fetching uncached ones
// with bounded parallelism. Every requested id gets an entry; failed
// fetches stay at zero.
func (s *Service) BulkStats(ctx context.Context, systemIDs []int32) map[int32]engine.RiskInput {
	out := make(map[int32]engine.RiskInput, len(systemIDs))
	var missing []int32
	for _, id := range systemIDs {
		if in, ok := s.Cached(id); ok {
			out[id] = in
		} else {
			out[id] = engine.RiskInput{}
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out
	}

	var outMu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(5)
	for _, id := range missing {
		id := id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			in := s.SystemStats(id)
			outMu.Lock()
			out[id] = in
			outMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("Zkillboard", fmt.Sprintf("Bulk stats cut short: %v", err))
	}
	return out
}

// PreloadHubs fetches stats for the major trade hubs and pipes.
func (s *Service) PreloadHubs(ctx context.Context) {
	s.BulkStats(ctx, hubSystemIDs)
}

// RunPreloader keeps hub stats warm until the context is cancelled,
// refreshing at half the TTL and pruning stale persisted rows.
func (s *Service) RunPreloader(ctx context.Context) {
	s.PreloadHubs(ctx)
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PreloadHubs(ctx)
			if s.store != nil {
				s.store.PruneKillStats(time.Now().Add(-24 * time.Hour))
			}
		}
	}
}
