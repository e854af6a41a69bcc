package zkillboard

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"eve-pathfinder/internal/logger"
)

const baseURL = "https://zkillboard.com/api"

// Pod hull type ids: 670 (Capsule), 33328 (Genolution 'Auroral' Capsule).
const (
	podTypeID           = 670
	podGenolutionTypeID = 33328
)

// Client is a rate-limited Zkillboard API client.
// Zkillboard has strict rate limits: 10 requests per second max.
type Client struct {
	http      *http.Client
	userAgent string
	sem       chan struct{}
	mu        sync.Mutex
	lastReq   time.Time
}

// NewClient creates a Zkillboard client with rate limiting.
func NewClient(userAgent string) *Client {
	if userAgent == "" {
		userAgent = "eve-pathfinder/1.0 (https://github.com/user/eve-pathfinder)"
	}
	return &Client{
		http:      &http.Client{Timeout: 60 * time.Second}, // Zkillboard can be slow
		userAgent: userAgent,
		sem:       make(chan struct{}, 5), // Max 5 concurrent requests
	}
}

// Killmail is a single killmail from Zkillboard.
type Killmail struct {
	KillmailID int64    `json:"killmail_id"`
	Victim     *Victim  `json:"victim"`
	ZKB        *ZKBInfo `json:"zkb"`
}

// Victim identifies what was destroyed.
type Victim struct {
	CharacterID   int64 `json:"character_id"`
	CorporationID int64 `json:"corporation_id"`
	AllianceID    int64 `json:"alliance_id"`
	ShipTypeID    int32 `json:"ship_type_id"`
}

// ZKBInfo contains Zkillboard-specific killmail info.
type ZKBInfo struct {
	LocationID int64   `json:"locationID"`
	Hash       string  `json:"hash"`
	TotalValue float64 `json:"totalValue"`
	Points     int     `json:"points"`
	NPC        bool    `json:"npc"`
	Solo       bool    `json:"solo"`
	Awox       bool    `json:"awox"`
}

// SystemKills fetches killmails for a solar system over the past window.
func (c *Client) SystemKills(systemID int32, window time.Duration) ([]Killmail, error) {
	pastSeconds := int(window.Seconds())
	url := fmt.Sprintf("%s/kills/solarSystemID/%d/pastSeconds/%d/", baseURL, systemID, pastSeconds)

	var kills []Killmail
	if err := c.getJSON(url, &kills); err != nil {
		return nil, fmt.Errorf("get kills for system %d: %w", systemID, err)
	}

	return kills, nil
}

// CountActivity splits killmails into ship kills and pod kills. A
// killmail without victim data counts as a ship kill.
func CountActivity(kills []Killmail) (ships, pods int) {
	for _, k := range kills {
		if k.Victim != nil && (k.Victim.ShipTypeID == podTypeID || k.Victim.ShipTypeID == podGenolutionTypeID) {
			pods++
		} else {
			ships++
		}
	}
	return ships, pods
}

// getJSON fetches a URL and decodes JSON with rate limiting.
func (c *Client) getJSON(url string, dst interface{}) error {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	// Rate limit: minimum 200ms between requests
	c.mu.Lock()
	elapsed := time.Since(c.lastReq)
	if elapsed < 200*time.Millisecond {
		time.Sleep(200*time.Millisecond - elapsed)
	}
	c.lastReq = time.Now()
	c.mu.Unlock()

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		// Rate limited - wait and retry
		logger.Warn("Zkillboard", "Rate limited, waiting 10 seconds...")
		time.Sleep(10 * time.Second)
		return c.getJSON(url, dst)
	}

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("zkillboard %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}

// HealthCheck pings Zkillboard to verify connectivity.
func (c *Client) HealthCheck() bool {
	url := baseURL + "/stats/solarSystemID/30000142/" // Jita - always has data

	req, err := http.NewRequest("HEAD", url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode == 200
}
