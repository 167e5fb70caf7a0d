// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vidra-media/vidra/internal/models"
)

// WatchFoldersHandler serves the read-only watch folder surface. Folder
// administration happens through configuration, not this API.
type WatchFoldersHandler struct {
	folders *models.WatchFolderStore
	files   *models.MediaFileStore
}

func NewWatchFoldersHandler(folders *models.WatchFolderStore, files *models.MediaFileStore) *WatchFoldersHandler {
	return &WatchFoldersHandler{folders: folders, files: files}
}

func (h *WatchFoldersHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{folderID}", h.get)
	r.Get("/{folderID}/files", h.listFiles)
}

func (h *WatchFoldersHandler) list(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folders.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list watch folders")
		RespondError(w, http.StatusInternalServerError, "Failed to list watch folders")
		return
	}

	RespondJSON(w, http.StatusOK, folders)
}

func (h *WatchFoldersHandler) get(w http.ResponseWriter, r *http.Request) {
	folderID, ok := URLParamInt(w, r, "folderID")
	if !ok {
		return
	}

	folder, err := h.folders.GetByID(r.Context(), folderID)
	if err != nil {
		if errors.Is(err, models.ErrWatchFolderNotFound) {
			RespondError(w, http.StatusNotFound, "Watch folder not found")
			return
		}
		log.Error().Err(err).Int("folderID", folderID).Msg("Failed to get watch folder")
		RespondError(w, http.StatusInternalServerError, "Failed to get watch folder")
		return
	}

	RespondJSON(w, http.StatusOK, folder)
}

func (h *WatchFoldersHandler) listFiles(w http.ResponseWriter, r *http.Request) {
	folderID, ok := URLParamInt(w, r, "folderID")
	if !ok {
		return
	}

	if _, err := h.folders.GetByID(r.Context(), folderID); err != nil {
		if errors.Is(err, models.ErrWatchFolderNotFound) {
			RespondError(w, http.StatusNotFound, "Watch folder not found")
			return
		}
		log.Error().Err(err).Int("folderID", folderID).Msg("Failed to get watch folder")
		RespondError(w, http.StatusInternalServerError, "Failed to get watch folder")
		return
	}

	files, err := h.files.ListByFolder(r.Context(), folderID)
	if err != nil {
		log.Error().Err(err).Int("folderID", folderID).Msg("Failed to list files")
		RespondError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}

	RespondJSON(w, http.StatusOK, files)
}
