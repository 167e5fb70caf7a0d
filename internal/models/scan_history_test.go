// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanHistoryRecordAndList(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	folders := NewWatchFolderStore(db.Conn())
	history := NewScanHistoryStore(db.Conn())
	folder := testFolder(t, folders, "/data/movies")

	for i := 1; i <= 3; i++ {
		require.NoError(t, history.Record(ctx, &ScanRecord{
			WatchFolderID:  folder.ID,
			FilesFound:     i * 10,
			FilesProcessed: i,
			Duration:       time.Duration(i) * time.Second,
		}))
	}

	records, err := history.ListByFolder(ctx, folder.ID, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, 30, records[0].FilesFound)
	assert.Equal(t, 20, records[1].FilesFound)
	assert.Equal(t, 3*time.Second, records[0].Duration)
	assert.False(t, records[0].ScannedAt.IsZero())

	latest, err := history.LatestByFolder(ctx, folder.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 30, latest.FilesFound)
}

func TestScanHistoryLatestByFolderEmpty(t *testing.T) {
	db := testDB(t)

	folders := NewWatchFolderStore(db.Conn())
	history := NewScanHistoryStore(db.Conn())
	folder := testFolder(t, folders, "/data/empty")

	latest, err := history.LatestByFolder(context.Background(), folder.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}
