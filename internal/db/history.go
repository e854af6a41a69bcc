package db

import (
	"time"
)

// historyRingSize bounds plan_history; the oldest rows roll off.
const historyRingSize = 200

// PlanRecord is a stored summary of one planning request.
type PlanRecord struct {
	ID          int64  `json:"id"`
	Timestamp   string `json:"timestamp"`
	Kind        string `json:"kind"` // "route" or "jump"
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	// Detail is the routing profile for routes, the hull name for
	// jump chains.
	Detail     string  `json:"detail"`
	Jumps      int     `json:"jumps"`
	DistLY     float64 `json:"distance_ly"`
	Metric     float64 `json:"metric"` // weighted cost or total fuel
	DurationMs int64   `json:"duration_ms"`
}

// InsertPlan appends a plan summary and trims the ring. Returns the
// new row id, or 0 on failure.
func (d *DB) InsertPlan(r PlanRecord) int64 {
	if r.Timestamp == "" {
		r.Timestamp = time.Now().Format(time.RFC3339)
	}
	res, err := d.sql.Exec(
		"INSERT INTO plan_history (timestamp, kind, origin, destination, detail, jumps, distance_ly, metric, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.Timestamp, r.Kind, r.Origin, r.Destination, r.Detail, r.Jumps, r.DistLY, r.Metric, r.DurationMs,
	)
	if err != nil {
		return 0
	}
	id, _ := res.LastInsertId()

	d.sql.Exec(
		"DELETE FROM plan_history WHERE id NOT IN (SELECT id FROM plan_history ORDER BY id DESC LIMIT ?)",
		historyRingSize,
	)
	return id
}

// GetPlans returns the last N plan summaries, newest first.
func (d *DB) GetPlans(limit int) []PlanRecord {
	if limit <= 0 || limit > historyRingSize {
		limit = 50
	}
	rows, err := d.sql.Query(
		"SELECT id, timestamp, kind, origin, destination, detail, jumps, distance_ly, metric, duration_ms FROM plan_history ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return []PlanRecord{}
	}
	defer rows.Close()

	var out []PlanRecord
	for rows.Next() {
		var r PlanRecord
		rows.Scan(&r.ID, &r.Timestamp, &r.Kind, &r.Origin, &r.Destination, &r.Detail, &r.Jumps, &r.DistLY, &r.Metric, &r.DurationMs)
		out = append(out, r)
	}
	if out == nil {
		return []PlanRecord{}
	}
	return out
}
