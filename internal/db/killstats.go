package db

import (
	"time"
)

// KillStatsRow is a cached per-system kill count snapshot.
type KillStatsRow struct {
	SystemID  int32  `json:"system_id"`
	Kills     int    `json:"kills"`
	Pods      int    `json:"pods"`
	FetchedAt string `json:"fetched_at"`
}

// UpsertKillStats stores the latest counts for a system.
func (d *DB) UpsertKillStats(systemID int32, kills, pods int) {
	d.sql.Exec(`
		INSERT INTO zkill_stats (system_id, kills, pods, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(system_id) DO UPDATE SET
			kills = excluded.kills,
			pods = excluded.pods,
			fetched_at = excluded.fetched_at
	`, systemID, kills, pods, time.Now().Format(time.RFC3339))
}

// GetKillStats returns the cached counts for a system along with
// their age, if present.
func (d *DB) GetKillStats(systemID int32) (KillStatsRow, bool) {
	var r KillStatsRow
	err := d.sql.QueryRow(
		"SELECT system_id, kills, pods, fetched_at FROM zkill_stats WHERE system_id = ?",
		systemID,
	).Scan(&r.SystemID, &r.Kills, &r.Pods, &r.FetchedAt)
	if err != nil {
		return KillStatsRow{}, false
	}
	return r, true
}

// GetKillStatsSince returns every cached row fetched after the cutoff,
// used to warm the in-memory cache at startup.
func (d *DB) GetKillStatsSince(cutoff time.Time) []KillStatsRow {
	rows, err := d.sql.Query(
		"SELECT system_id, kills, pods, fetched_at FROM zkill_stats WHERE fetched_at >= ?",
		cutoff.Format(time.RFC3339),
	)
	if err != nil {
		return []KillStatsRow{}
	}
	defer rows.Close()

	var out []KillStatsRow
	for rows.Next() {
		var r KillStatsRow
		rows.Scan(&r.SystemID, &r.Kills, &r.Pods, &r.FetchedAt)
		out = append(out, r)
	}
	if out == nil {
		return []KillStatsRow{}
	}
	return out
}

// PruneKillStats drops rows older than the cutoff.
func (d *DB) PruneKillStats(cutoff time.Time) int {
	res, err := d.sql.Exec("DELETE FROM zkill_stats WHERE fetched_at < ?", cutoff.Format(time.RFC3339))
	if err != nil {
		return 0
	}
	n, _ := res.RowsAffected()
	return int(n)
}
