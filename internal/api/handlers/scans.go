// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vidra-media/vidra/internal/models"
	"github.com/vidra-media/vidra/internal/scheduler"
)

const defaultHistoryLimit = 20

// ScansHandler exposes manual scan triggers, scheduler status and scan
// history.
type ScansHandler struct {
	scheduler *scheduler.Scheduler
	history   *models.ScanHistoryStore
}

func NewScansHandler(sched *scheduler.Scheduler, history *models.ScanHistoryStore) *ScansHandler {
	return &ScansHandler{scheduler: sched, history: history}
}

func (h *ScansHandler) Routes(r chi.Router) {
	r.Get("/status", h.status)
	r.Post("/{folderID}/scan", h.trigger)
	r.Get("/{folderID}/history", h.listHistory)
}

func (h *ScansHandler) status(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.scheduler.GetStatus())
}

// trigger runs the scan synchronously; the response carries the result
// tallies. A scan already running on the folder yields 409.
func (h *ScansHandler) trigger(w http.ResponseWriter, r *http.Request) {
	folderID, ok := URLParamInt(w, r, "folderID")
	if !ok {
		return
	}

	result, err := h.scheduler.TriggerScan(r.Context(), folderID)
	if err != nil {
		switch {
		case errors.Is(err, scheduler.ErrScanInProgress):
			RespondError(w, http.StatusConflict, "Scan already in progress")
		case errors.Is(err, models.ErrWatchFolderNotFound):
			RespondError(w, http.StatusNotFound, "Watch folder not found")
		default:
			log.Error().Err(err).Int("folderID", folderID).Msg("Manual scan failed")
			RespondError(w, http.StatusInternalServerError, "Scan failed")
		}
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

func (h *ScansHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	folderID, ok := URLParamInt(w, r, "folderID")
	if !ok {
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			RespondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	records, err := h.history.ListByFolder(r.Context(), folderID, limit)
	if err != nil {
		log.Error().Err(err).Int("folderID", folderID).Msg("Failed to list scan history")
		RespondError(w, http.StatusInternalServerError, "Failed to list scan history")
		return
	}

	RespondJSON(w, http.StatusOK, records)
}
