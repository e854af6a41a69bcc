package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ShipProfile is a saved hull + skills combination for jump planning.
type ShipProfile struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	ShipKey        string `json:"ship_key"`
	SkillLevel     int    `json:"skill_level"`
	FuelSkillLevel int    `json:"fuel_skill_level"`
	CreatedAt      string `json:"created_at"`
}

// SaveShipProfile inserts a profile, assigning an id when the caller
// leaves it empty.
func (d *DB) SaveShipProfile(p ShipProfile) (ShipProfile, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt == "" {
		p.CreatedAt = time.Now().Format(time.RFC3339)
	}
	_, err := d.sql.Exec(
		"INSERT INTO ship_profiles (id, name, ship_key, skill_level, fuel_skill_level, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.ShipKey, p.SkillLevel, p.FuelSkillLevel, p.CreatedAt,
	)
	if err != nil {
		return ShipProfile{}, fmt.Errorf("save ship profile %q: %w", p.Name, err)
	}
	return p, nil
}

// ListShipProfiles returns saved profiles, newest first.
func (d *DB) ListShipProfiles() []ShipProfile {
	rows, err := d.sql.Query(
		"SELECT id, name, ship_key, skill_level, fuel_skill_level, created_at FROM ship_profiles ORDER BY created_at DESC",
	)
	if err != nil {
		return []ShipProfile{}
	}
	defer rows.Close()

	var out []ShipProfile
	for rows.Next() {
		var p ShipProfile
		rows.Scan(&p.ID, &p.Name, &p.ShipKey, &p.SkillLevel, &p.FuelSkillLevel, &p.CreatedAt)
		out = append(out, p)
	}
	if out == nil {
		return []ShipProfile{}
	}
	return out
}

// GetShipProfile returns one profile, or nil if absent.
func (d *DB) GetShipProfile(id string) *ShipProfile {
	var p ShipProfile
	err := d.sql.QueryRow(
		"SELECT id, name, ship_key, skill_level, fuel_skill_level, created_at FROM ship_profiles WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.ShipKey, &p.SkillLevel, &p.FuelSkillLevel, &p.CreatedAt)
	if err != nil {
		return nil
	}
	return &p
}

// DeleteShipProfile removes a profile by id.
func (d *DB) DeleteShipProfile(id string) bool {
	res, err := d.sql.Exec("DELETE FROM ship_profiles WHERE id = ?", id)
	if err != nil {
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}
