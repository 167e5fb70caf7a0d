// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/vidra-media/vidra/internal/buildinfo"
)

// HealthHandler answers liveness probes and reports build info.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *HealthHandler) Version(w http.ResponseWriter, r *http.Request) {
	payload, err := buildinfo.JSON()
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "Failed to encode version")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
