package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jlucaswrk/marauder-tui/internal/protocol"
)

// handleStatus returns the link state and recording flag.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	state := s.engine.LinkState()
	writeJSON(w, http.StatusOK, map[string]any{
		"port":         state.Port,
		"connected":    state.Connected,
		"current_scan": state.CurrentScan,
		"recording":    s.engine.IsRecording(),
	})
}

// handleListAPs returns the discovered access points.
func (s *Server) handleListAPs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"aps": s.engine.APs()})
}

// handleListStations returns the discovered stations.
func (s *Server) handleListStations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stations": s.engine.Stations()})
}

// handleListBLE returns the discovered BLE devices.
func (s *Server) handleListBLE(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ble_devices": s.engine.BLEDevices()})
}

// handleActivity returns the activity feed, oldest first.
func (s *Server) handleActivity(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"activity": s.engine.Activity()})
}

// handleRawHistory returns the retained raw serial lines.
func (s *Server) handleRawHistory(w http.ResponseWriter, _ *http.Request) {
	if s.raw == nil {
		writeNotFound(w, "raw history not available")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lines": s.raw.RawHistory()})
}

// scanRequest is the payload for POST /commands/scan.
type scanRequest struct {
	Type string `json:"type"`
}

// handleScan starts a scan of the requested type.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	switch req.Type {
	case "ap", "wifi":
		s.engine.StartWifiScan()
	case "station":
		s.engine.StartStationScan()
	case "ble":
		s.engine.StartBleScan()
	default:
		writeBadRequest(w, "scan type must be ap, station, or ble")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"scan": req.Type})
}

// attackRequest is the payload for POST /commands/attack.
type attackRequest struct {
	Type    string `json:"type"`
	APIndex *int   `json:"ap_index,omitempty"`
}

// handleAttack launches an attack against previously scanned targets.
func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	var req attackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	switch req.Type {
	case "deauth":
		if req.APIndex == nil {
			writeBadRequest(w, "ap_index is required for deauth")
			return
		}
		if *req.APIndex < 0 || *req.APIndex >= len(s.engine.APs()) {
			writeBadRequest(w, "ap_index out of range: "+strconv.Itoa(*req.APIndex))
			return
		}
		s.engine.AttackDeauth(*req.APIndex)
	case "beacon":
		s.engine.AttackBeaconFlood()
	case "rickroll":
		s.engine.AttackRickroll()
	default:
		writeBadRequest(w, "attack type must be deauth, beacon, or rickroll")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"attack": req.Type})
}

// bleSpamRequest is the payload for POST /commands/blespam.
type bleSpamRequest struct {
	Target string `json:"target"`
}

// handleBleSpam launches a BLE spam attack.
func (s *Server) handleBleSpam(w http.ResponseWriter, r *http.Request) {
	var req bleSpamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if !protocol.ValidBLESpamTarget(req.Target) {
		writeBadRequest(w, "unknown BLE spam target: "+req.Target)
		return
	}

	s.engine.BleSpam(req.Target)
	writeJSON(w, http.StatusAccepted, map[string]string{"target": req.Target})
}

// handleStop stops whatever scan or attack is running.
func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.engine.StopScan()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "stopping"})
}

// handleClear wipes the collected scan results.
func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.engine.ClearResults()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// surveyLimit parses the optional ?limit query parameter.
func surveyLimit(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// handleSurveyAPs returns archived AP sightings.
func (s *Server) handleSurveyAPs(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeNotFound(w, "survey archive not enabled")
		return
	}
	sightings, err := s.archive.APSightings(r.Context(), surveyLimit(r))
	if err != nil {
		writeInternalError(w, "querying survey archive failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sightings": sightings})
}

// handleSurveyStations returns archived station sightings.
func (s *Server) handleSurveyStations(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeNotFound(w, "survey archive not enabled")
		return
	}
	sightings, err := s.archive.StationSightings(r.Context(), surveyLimit(r))
	if err != nil {
		writeInternalError(w, "querying survey archive failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sightings": sightings})
}

// handleSurveyBLE returns archived BLE sightings.
func (s *Server) handleSurveyBLE(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeNotFound(w, "survey archive not enabled")
		return
	}
	sightings, err := s.archive.BLESightings(r.Context(), surveyLimit(r))
	if err != nil {
		writeInternalError(w, "querying survey archive failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sightings": sightings})
}
