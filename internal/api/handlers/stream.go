// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidra-media/vidra/internal/streaming"
)

// StreamHandler serves media file content with range support.
type StreamHandler struct {
	streamer *streaming.Streamer
}

func NewStreamHandler(streamer *streaming.Streamer) *StreamHandler {
	return &StreamHandler{streamer: streamer}
}

func (h *StreamHandler) Routes(r chi.Router) {
	r.Head("/{fileID}", h.head)
	r.Get("/{fileID}", h.get)
}

func (h *StreamHandler) head(w http.ResponseWriter, r *http.Request) {
	fileID, ok := URLParamInt64(w, r, "fileID")
	if !ok {
		return
	}
	h.streamer.ServeHead(w, r, fileID)
}

func (h *StreamHandler) get(w http.ResponseWriter, r *http.Request) {
	fileID, ok := URLParamInt64(w, r, "fileID")
	if !ok {
		return
	}
	h.streamer.ServeFile(w, r, fileID)
}
