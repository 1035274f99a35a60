package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/comalice/occupancyx"
	"github.com/comalice/occupancyx/internal/production"
)

// eventRequest is the wire shape of a POST /events body.
type eventRequest struct {
	LocationID  string  `json:"location_id"`
	EventType   string  `json:"event_type"`
	Category    string  `json:"category"`
	SourceID    string  `json:"source_id"`
	OccupantID  string  `json:"occupant_id,omitempty"`
	DurationSec *int    `json:"duration_seconds,omitempty"`
	ForceState  *bool   `json:"force_state,omitempty"`
	TargetLock  string  `json:"target_lock,omitempty"`
}

func newEventHandler(engine *occupancyx.Engine, registry *production.BadgerRegistry, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}

		now := time.Now()
		ev := occupancyx.NewEvent(req.LocationID, occupancyx.EventType(req.EventType), req.Category, req.SourceID, now)
		if req.OccupantID != "" {
			ev = ev.WithOccupant(req.OccupantID)
		}
		if req.DurationSec != nil {
			ev = ev.WithDuration(time.Duration(*req.DurationSec) * time.Second)
		}
		if req.ForceState != nil {
			ev = ev.WithForceState(*req.ForceState)
		}
		if req.TargetLock != "" {
			ev.TargetLock = occupancyx.LockState(req.TargetLock)
		}

		res, err := engine.HandleEvent(ev, now)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		if registry != nil {
			snap := engine.ExportState()
			if err := registry.Register(r.Context(), "default", snap, now.Format(time.RFC3339Nano)); err != nil {
				logger.Warn().Err(err).Msg("failed to register snapshot version")
			}
		}

		writeJSON(w, http.StatusOK, res)
	}
}

func newStateHandler(engine *occupancyx.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		st, err := engine.State(id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func newExportHandler(engine *occupancyx.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, engine.ExportState())
	}
}

func newRestoreHandler(engine *occupancyx.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var snap occupancyx.Snapshot
		if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
			http.Error(w, "malformed snapshot body", http.StatusBadRequest)
			return
		}
		now := time.Now()
		res := engine.RestoreState(snap, now)
		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
