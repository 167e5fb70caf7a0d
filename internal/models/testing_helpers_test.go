// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vidra-media/vidra/internal/database"
)

// testDB opens a fresh migrated database in a temp dir.
func testDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "vidra.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// testFolder inserts a minimal local watch folder and returns it.
func testFolder(t *testing.T, store *WatchFolderStore, path string) *WatchFolder {
	t.Helper()

	folder, err := store.Create(context.Background(), &WatchFolder{
		Path:       path,
		Name:       filepath.Base(path),
		Kind:       FolderKindLocal,
		Enabled:    true,
		Schedule:   "0 2 * * *",
		Extensions: []string{".mkv", ".mp4"},
	})
	require.NoError(t, err)

	return folder
}

// testMediaFile builds a minimal indexable record.
func testMediaFile(folderID int, relPath string, size int64, modTime time.Time) *MediaFile {
	return &MediaFile{
		WatchFolderID: folderID,
		RelPath:       relPath,
		Size:          size,
		ModTime:       modTime,
		Title:         "Test Title",
		Kind:          ContentKindMovie,
		ExternalID:    "tt0000001",
	}
}
