// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"

	"github.com/vidra-media/vidra/internal/models"
)

// FilesHandler exposes indexed media files for the player client.
type FilesHandler struct {
	files   *models.MediaFileStore
	folders *models.WatchFolderStore
}

func NewFilesHandler(files *models.MediaFileStore, folders *models.WatchFolderStore) *FilesHandler {
	return &FilesHandler{files: files, folders: folders}
}

func (h *FilesHandler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{fileID}", h.get)
}

func (h *FilesHandler) get(w http.ResponseWriter, r *http.Request) {
	fileID, ok := URLParamInt64(w, r, "fileID")
	if !ok {
		return
	}

	file, err := h.files.GetByID(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, models.ErrMediaFileNotFound) {
			RespondError(w, http.StatusNotFound, "File not found")
			return
		}
		log.Error().Err(err).Int64("fileID", fileID).Msg("Failed to get file")
		RespondError(w, http.StatusInternalServerError, "Failed to get file")
		return
	}

	RespondJSON(w, http.StatusOK, file)
}

// list returns every indexed file, optionally fuzzy-filtered by the q
// query parameter against titles.
func (h *FilesHandler) list(w http.ResponseWriter, r *http.Request) {
	folders, err := h.folders.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list watch folders")
		RespondError(w, http.StatusInternalServerError, "Failed to list files")
		return
	}

	var all []*models.MediaFile
	for _, folder := range folders {
		files, err := h.files.ListByFolder(r.Context(), folder.ID)
		if err != nil {
			log.Error().Err(err).Int("folderID", folder.ID).Msg("Failed to list files")
			RespondError(w, http.StatusInternalServerError, "Failed to list files")
			return
		}
		all = append(all, files...)
	}

	if query := r.URL.Query().Get("q"); query != "" {
		all = filterByTitle(all, query)
	}

	RespondJSON(w, http.StatusOK, all)
}

// filterByTitle keeps fuzzy title matches, best first.
func filterByTitle(files []*models.MediaFile, query string) []*models.MediaFile {
	type ranked struct {
		file *models.MediaFile
		rank int
	}

	var matches []ranked
	for _, file := range files {
		title := file.CanonicalTitle
		if title == "" {
			title = file.Title
		}
		if rank := fuzzy.RankMatchNormalizedFold(query, title); rank >= 0 {
			matches = append(matches, ranked{file: file, rank: rank})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].rank < matches[j].rank
	})

	out := make([]*models.MediaFile, len(matches))
	for i, m := range matches {
		out[i] = m.file
	}
	return out
}
