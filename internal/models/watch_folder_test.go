// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchFolderCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	store := NewWatchFolderStore(db.Conn())

	created, err := store.Create(ctx, &WatchFolder{
		Path:              "//nas/media",
		Name:              "NAS",
		Kind:              FolderKindNetwork,
		Enabled:           true,
		Schedule:          "*/30 * * * *",
		Extensions:        []string{".mkv"},
		MinVideoSizeMB:    50,
		ExcludeExtensions: []string{".part", ".!qb"},
		Username:          "media",
		Password:          "s3cret",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Nil(t, created.LastScanAt)

	got, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, FolderKindNetwork, got.Kind)
	assert.Equal(t, []string{".part", ".!qb"}, got.ExcludeExtensions)
	assert.EqualValues(t, 50, got.MinVideoSizeMB)

	got.Enabled = false
	updated, err := store.Update(ctx, got)
	require.NoError(t, err)
	assert.False(t, updated.Enabled)

	enabled, err := store.ListEnabled(ctx)
	require.NoError(t, err)
	assert.Empty(t, enabled)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrWatchFolderNotFound)
}

func TestWatchFolderTouchLastScan(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	store := NewWatchFolderStore(db.Conn())
	folder := testFolder(t, store, "/data/movies")

	require.NoError(t, store.TouchLastScan(ctx, folder.ID))

	got, err := store.GetByID(ctx, folder.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastScanAt)
}

func TestDecryptedPassword(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	store := NewWatchFolderStore(db.Conn())

	folder, err := store.Create(ctx, &WatchFolder{
		Path:     "//nas/tv",
		Kind:     FolderKindNetwork,
		Enabled:  true,
		Schedule: "0 4 * * *",
		Password: "hunter2",
	})
	require.NoError(t, err)

	password, err := store.DecryptedPassword(ctx, folder.ID)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", password)

	_, err = store.DecryptedPassword(ctx, folder.ID+100)
	assert.ErrorIs(t, err, ErrWatchFolderNotFound)
}
