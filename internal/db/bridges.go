package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BridgeNetwork is a named set of jump bridges that can be toggled
// into route planning as extra graph edges.
type BridgeNetwork struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	Count     int    `json:"bridge_count"`
}

// BridgeRow is one stored bridge edge. Edges are stored with
// a_system_id < b_system_id so the unique index catches mirrored
// duplicates.
type BridgeRow struct {
	NetworkID string  `json:"network_id"`
	ASystemID int32   `json:"a_system_id"`
	BSystemID int32   `json:"b_system_id"`
	DistLY    float64 `json:"distance_ly"`
}

func canonicalPair(a, b int32) (int32, int32) {
	if a > b {
		return b, a
	}
	return a, b
}

// CreateBridgeNetwork inserts an empty enabled network. Names are
// unique.
func (d *DB) CreateBridgeNetwork(name string) (*BridgeNetwork, error) {
	now := time.Now().Format(time.RFC3339)
	n := &BridgeNetwork{
		ID:        uuid.NewString(),
		Name:      name,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := d.sql.Exec(
		"INSERT INTO bridge_networks (id, name, enabled, created_at, updated_at) VALUES (?, ?, 1, ?, ?)",
		n.ID, n.Name, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create bridge network %q: %w", name, err)
	}
	return n, nil
}

// ListBridgeNetworks returns all networks with their bridge counts,
// newest first.
func (d *DB) ListBridgeNetworks() []BridgeNetwork {
	rows, err := d.sql.Query(`
		SELECT n.id, n.name, n.enabled, n.created_at, n.updated_at,
		       (SELECT COUNT(*) FROM bridges b WHERE b.network_id = n.id)
		  FROM bridge_networks n
		 ORDER BY n.created_at DESC
	`)
	if err != nil {
		return []BridgeNetwork{}
	}
	defer rows.Close()

	var nets []BridgeNetwork
	for rows.Next() {
		var n BridgeNetwork
		rows.Scan(&n.ID, &n.Name, &n.Enabled, &n.CreatedAt, &n.UpdatedAt, &n.Count)
		nets = append(nets, n)
	}
	if nets == nil {
		return []BridgeNetwork{}
	}
	return nets
}

// GetBridgeNetwork returns one network, or nil if absent.
func (d *DB) GetBridgeNetwork(id string) *BridgeNetwork {
	var n BridgeNetwork
	err := d.sql.QueryRow(`
		SELECT n.id, n.name, n.enabled, n.created_at, n.updated_at,
		       (SELECT COUNT(*) FROM bridges b WHERE b.network_id = n.id)
		  FROM bridge_networks n
		 WHERE n.id = ?
	`, id).Scan(&n.ID, &n.Name, &n.Enabled, &n.CreatedAt, &n.UpdatedAt, &n.Count)
	if err != nil {
		return nil
	}
	return &n
}

// SetBridgeNetworkEnabled toggles a network. Returns false if the
// network does not exist.
func (d *DB) SetBridgeNetworkEnabled(id string, enabled bool) bool {
	res, err := d.sql.Exec(
		"UPDATE bridge_networks SET enabled = ?, updated_at = ? WHERE id = ?",
		enabled, time.Now().Format(time.RFC3339), id,
	)
	if err != nil {
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

// DeleteBridgeNetwork removes a network and its bridges.
func (d *DB) DeleteBridgeNetwork(id string) bool {
	d.sql.Exec("DELETE FROM bridges WHERE network_id = ?", id)
	res, err := d.sql.Exec("DELETE FROM bridge_networks WHERE id = ?", id)
	if err != nil {
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

// ReplaceBridges swaps a network's bridge set atomically.
func (d *DB) ReplaceBridges(networkID string, edges []BridgeRow) error {
	tx, err := d.sql.Begin()
	if err != nil {
		return fmt.Errorf("replace bridges: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM bridges WHERE network_id = ?", networkID); err != nil {
		return fmt.Errorf("replace bridges: %w", err)
	}
	for _, e := range edges {
		a, b := canonicalPair(e.ASystemID, e.BSystemID)
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO bridges (network_id, a_system_id, b_system_id, distance_ly) VALUES (?, ?, ?, ?)",
			networkID, a, b, e.DistLY,
		); err != nil {
			return fmt.Errorf("replace bridges: %w", err)
		}
	}
	if _, err := tx.Exec(
		"UPDATE bridge_networks SET updated_at = ? WHERE id = ?",
		time.Now().Format(time.RFC3339), networkID,
	); err != nil {
		return fmt.Errorf("replace bridges: %w", err)
	}
	return tx.Commit()
}

// AddBridges merges edges into a network, skipping ones already
// stored. Returns how many were actually added.
func (d *DB) AddBridges(networkID string, edges []BridgeRow) (int, error) {
	added := 0
	for _, e := range edges {
		a, b := canonicalPair(e.ASystemID, e.BSystemID)
		res, err := d.sql.Exec(
			"INSERT OR IGNORE INTO bridges (network_id, a_system_id, b_system_id, distance_ly) VALUES (?, ?, ?, ?)",
			networkID, a, b, e.DistLY,
		)
		if err != nil {
			return added, fmt.Errorf("add bridges: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	d.sql.Exec("UPDATE bridge_networks SET updated_at = ? WHERE id = ?",
		time.Now().Format(time.RFC3339), networkID)
	return added, nil
}

// NetworkBridges returns a network's edges.
func (d *DB) NetworkBridges(networkID string) []BridgeRow {
	return d.queryBridges("SELECT network_id, a_system_id, b_system_id, distance_ly FROM bridges WHERE network_id = ?", networkID)
}

// EnabledBridges returns the edges of every enabled network, the set
// the router overlays onto the gate graph.
func (d *DB) EnabledBridges() []BridgeRow {
	return d.queryBridges(`
		SELECT b.network_id, b.a_system_id, b.b_system_id, b.distance_ly
		  FROM bridges b
		  JOIN bridge_networks n ON n.id = b.network_id
		 WHERE n.enabled = 1
	`)
}

func (d *DB) queryBridges(query string, args ...interface{}) []BridgeRow {
	rows, err := d.sql.Query(query, args...)
	if err != nil {
		return []BridgeRow{}
	}
	defer rows.Close()

	var out []BridgeRow
	for rows.Next() {
		var r BridgeRow
		rows.Scan(&r.NetworkID, &r.ASystemID, &r.BSystemID, &r.DistLY)
		out = append(out, r)
	}
	if out == nil {
		return []BridgeRow{}
	}
	return out
}
