package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListBridgeNetworks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{"networks": s.db.ListBridgeNetworks()})
}

func (s *Server) handleImportBridges(w http.ResponseWriter, r *http.Request) {
	if !s.isReady() {
		writeError(w, 503, "SDE not loaded yet")
		return
	}
	var req struct {
		NetworkName string `json:"network_name"`
		BridgeText  string `json:"bridge_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid json")
		return
	}

	s.mu.RLock()
	bsvc := s.bridges
	s.mu.RUnlock()

	report, err := bsvc.Import(req.NetworkName, req.BridgeText, boolQuery(r, "replace", true))
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	writeJSON(w, report)
}

func (s *Server) handleGetBridgeNetwork(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	n := s.db.GetBridgeNetwork(id)
	if n == nil {
		writeError(w, 404, "bridge network '"+id+"' not found")
		return
	}

	rows := s.db.NetworkBridges(id)
	type bridgeEntry struct {
		ASystemID int32   `json:"a_system_id"`
		AName     string  `json:"a_name,omitempty"`
		BSystemID int32   `json:"b_system_id"`
		BName     string  `json:"b_name,omitempty"`
		DistLY    float64 `json:"distance_ly"`
	}
	entries := make([]bridgeEntry, 0, len(rows))

	// Endpoint names resolve only once the dataset is up; ids always work.
	s.mu.RLock()
	data := s.data
	s.mu.RUnlock()
	for _, row := range rows {
		e := bridgeEntry{ASystemID: row.ASystemID, BSystemID: row.BSystemID, DistLY: row.DistLY}
		if data != nil {
			if sys, ok := data.Universe.Lookup(row.ASystemID); ok {
				e.AName = sys.Name
			}
			if sys, ok := data.Universe.Lookup(row.BSystemID); ok {
				e.BName = sys.Name
			}
		}
		entries = append(entries, e)
	}

	writeJSON(w, map[string]interface{}{"network": n, "bridges": entries})
}

func (s *Server) handleToggleBridgeNetwork(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v := r.URL.Query().Get("enabled")
	if v == "" {
		writeError(w, 400, "enabled query parameter is required")
		return
	}
	enabled := boolQuery(r, "enabled", false)

	if !s.db.SetBridgeNetworkEnabled(id, enabled) {
		writeError(w, 404, "bridge network '"+id+"' not found")
		return
	}
	writeJSON(w, map[string]interface{}{"status": "ok", "network": id, "enabled": enabled})
}

func (s *Server) handleDeleteBridgeNetwork(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.db.DeleteBridgeNetwork(id) {
		writeError(w, 404, "bridge network '"+id+"' not found")
		return
	}
	writeJSON(w, map[string]interface{}{"status": "ok", "deleted": id})
}
