package db

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory SQLite DB and runs migrations (for testing only).
func openTestDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func TestDB_MigrateIsIdempotent(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestDB_BridgeNetworkCRUD(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	n, err := d.CreateBridgeNetwork("Goon highway")
	if err != nil {
		t.Fatalf("CreateBridgeNetwork: %v", err)
	}
	if n.ID == "" || !n.Enabled {
		t.Fatalf("network = %+v", n)
	}

	if _, err := d.CreateBridgeNetwork("Goon highway"); err == nil {
		t.Error("duplicate network name accepted")
	}

	if err := d.ReplaceBridges(n.ID, []BridgeRow{
		{ASystemID: 100, BSystemID: 200, DistLY: 3.5},
		{ASystemID: 300, BSystemID: 200, DistLY: 2.0},
	}); err != nil {
		t.Fatalf("ReplaceBridges: %v", err)
	}

	got := d.GetBridgeNetwork(n.ID)
	if got == nil || got.Count != 2 {
		t.Fatalf("GetBridgeNetwork = %+v", got)
	}

	// Mirrored duplicates collapse onto the canonical pair order.
	added, err := d.AddBridges(n.ID, []BridgeRow{
		{ASystemID: 200, BSystemID: 100, DistLY: 3.5},
		{ASystemID: 400, BSystemID: 500, DistLY: 1.0},
	})
	if err != nil {
		t.Fatalf("AddBridges: %v", err)
	}
	if added != 1 {
		t.Errorf("added = %d, want 1 (mirror skipped)", added)
	}

	edges := d.NetworkBridges(n.ID)
	if len(edges) != 3 {
		t.Fatalf("NetworkBridges len = %d, want 3", len(edges))
	}
	for _, e := range edges {
		if e.ASystemID > e.BSystemID {
			t.Errorf("edge not canonical: %+v", e)
		}
	}

	if !d.SetBridgeNetworkEnabled(n.ID, false) {
		t.Error("SetBridgeNetworkEnabled returned false")
	}
	if len(d.EnabledBridges()) != 0 {
		t.Error("disabled network still contributes bridges")
	}
	d.SetBridgeNetworkEnabled(n.ID, true)
	if len(d.EnabledBridges()) != 3 {
		t.Error("re-enabled network missing from EnabledBridges")
	}

	if !d.DeleteBridgeNetwork(n.ID) {
		t.Error("DeleteBridgeNetwork returned false")
	}
	if d.GetBridgeNetwork(n.ID) != nil {
		t.Error("network survived delete")
	}
	if len(d.NetworkBridges(n.ID)) != 0 {
		t.Error("bridges survived network delete")
	}
	if d.DeleteBridgeNetwork("missing") {
		t.Error("deleting a missing network reported success")
	}
}

func TestDB_ReplaceBridgesSwapsSet(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	n, err := d.CreateBridgeNetwork("Test net")
	if err != nil {
		t.Fatalf("CreateBridgeNetwork: %v", err)
	}
	d.ReplaceBridges(n.ID, []BridgeRow{{ASystemID: 1, BSystemID: 2, DistLY: 1}})
	d.ReplaceBridges(n.ID, []BridgeRow{{ASystemID: 3, BSystemID: 4, DistLY: 2}})

	edges := d.NetworkBridges(n.ID)
	if len(edges) != 1 || edges[0].ASystemID != 3 {
		t.Errorf("replace kept old edges: %+v", edges)
	}
}

func TestDB_KillStats(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	d.UpsertKillStats(30000142, 12, 3)
	d.UpsertKillStats(30000142, 15, 4) // overwrite
	d.UpsertKillStats(30002187, 1, 0)

	r, ok := d.GetKillStats(30000142)
	if !ok || r.Kills != 15 || r.Pods != 4 {
		t.Errorf("GetKillStats = %+v, %v", r, ok)
	}
	if _, ok := d.GetKillStats(99); ok {
		t.Error("GetKillStats hit for unknown system")
	}

	warm := d.GetKillStatsSince(time.Now().Add(-time.Hour))
	if len(warm) != 2 {
		t.Errorf("GetKillStatsSince len = %d, want 2", len(warm))
	}

	if n := d.PruneKillStats(time.Now().Add(time.Hour)); n != 2 {
		t.Errorf("PruneKillStats = %d, want 2", n)
	}
	if len(d.GetKillStatsSince(time.Now().Add(-time.Hour))) != 0 {
		t.Error("rows survived prune")
	}
}

func TestDB_ShipProfiles(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	p, err := d.SaveShipProfile(ShipProfile{Name: "Hauler alt", ShipKey: "rhea", SkillLevel: 5, FuelSkillLevel: 4})
	if err != nil {
		t.Fatalf("SaveShipProfile: %v", err)
	}
	if p.ID == "" || p.CreatedAt == "" {
		t.Fatalf("profile not filled in: %+v", p)
	}

	got := d.GetShipProfile(p.ID)
	if got == nil || got.ShipKey != "rhea" || got.SkillLevel != 5 {
		t.Errorf("GetShipProfile = %+v", got)
	}

	list := d.ListShipProfiles()
	if len(list) != 1 {
		t.Errorf("ListShipProfiles len = %d, want 1", len(list))
	}

	if !d.DeleteShipProfile(p.ID) {
		t.Error("DeleteShipProfile returned false")
	}
	if d.GetShipProfile(p.ID) != nil {
		t.Error("profile survived delete")
	}
}

func TestDB_PlanHistoryRing(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	id := d.InsertPlan(PlanRecord{
		Kind: "route", Origin: "Jita", Destination: "Amarr",
		Detail: "safer", Jumps: 9, DistLY: 12.5, Metric: 13.1, DurationMs: 4,
	})
	if id <= 0 {
		t.Fatal("InsertPlan returned 0")
	}

	records := d.GetPlans(5)
	if len(records) != 1 {
		t.Fatalf("GetPlans len = %d, want 1", len(records))
	}
	if records[0].Kind != "route" || records[0].Detail != "safer" {
		t.Errorf("record = %+v", records[0])
	}
	if records[0].Timestamp == "" {
		t.Error("timestamp not defaulted")
	}

	// The ring keeps only the newest historyRingSize rows.
	for i := 0; i < historyRingSize+10; i++ {
		d.InsertPlan(PlanRecord{
			Kind: "jump", Origin: "B-R5RB", Destination: fmt.Sprintf("sys-%d", i),
			Detail: "Rhea", Jumps: 3, DistLY: 20, Metric: 9000,
		})
	}
	var count int
	d.sql.QueryRow("SELECT COUNT(*) FROM plan_history").Scan(&count)
	if count != historyRingSize {
		t.Errorf("ring size = %d, want %d", count, historyRingSize)
	}

	newest := d.GetPlans(1)
	if len(newest) != 1 || newest[0].Destination != fmt.Sprintf("sys-%d", historyRingSize+9) {
		t.Errorf("newest = %+v", newest)
	}
}
