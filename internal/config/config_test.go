package config

import (
	"testing"
	"time"
)

func TestDefault_Values(t *testing.T) {
	c := Default()
	if c == nil {
		t.Fatal("Default() returned nil")
	}
	if c.ListenAddr == "" || c.DataDir == "" {
		t.Errorf("defaults missing: %+v", c)
	}
	if !c.ZKillEnabled {
		t.Error("zkill should default to enabled")
	}
	if c.ZKillWindow != 24*time.Hour || c.ZKillTTL != 10*time.Minute {
		t.Errorf("zkill timings = %v / %v", c.ZKillWindow, c.ZKillTTL)
	}
}

func TestFromEnv_Overlay(t *testing.T) {
	t.Setenv("PATHFINDER_ADDR", "0.0.0.0:9999")
	t.Setenv("PATHFINDER_ZKILL_TTL", "5m")
	t.Setenv("PATHFINDER_ZKILL_ENABLED", "false")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.ListenAddr != "0.0.0.0:9999" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.ZKillTTL != 5*time.Minute {
		t.Errorf("ZKillTTL = %v", cfg.ZKillTTL)
	}
	if cfg.ZKillEnabled {
		t.Error("ZKillEnabled not overridden")
	}
	// Unset vars keep their defaults.
	if cfg.DataDir != "data" || cfg.ZKillWindow != 24*time.Hour {
		t.Errorf("defaults clobbered: %+v", cfg)
	}
}

func TestFromEnv_RejectsBadDuration(t *testing.T) {
	t.Setenv("PATHFINDER_ZKILL_WINDOW", "not-a-duration")
	if _, err := FromEnv(); err == nil {
		t.Error("bad duration accepted")
	}
}
