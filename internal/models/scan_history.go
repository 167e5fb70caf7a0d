// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"fmt"
	"time"

	"github.com/vidra-media/vidra/internal/dbinterface"
)

// ScanRecord is an append-only audit entry for one scan attempt.
type ScanRecord struct {
	ID             int64         `json:"id"`
	WatchFolderID  int           `json:"watchFolderId"`
	ScannedAt      time.Time     `json:"scannedAt"`
	FilesFound     int           `json:"filesFound"`
	FilesProcessed int           `json:"filesProcessed"`
	FilesSkipped   int           `json:"filesSkipped"`
	FilesRemoved   int           `json:"filesRemoved"`
	Errors         int           `json:"errors"`
	Duration       time.Duration `json:"duration"`
}

// ScanHistoryStore handles database operations for scan history.
type ScanHistoryStore struct {
	db dbinterface.Querier
}

// NewScanHistoryStore creates a new ScanHistoryStore.
func NewScanHistoryStore(db dbinterface.Querier) *ScanHistoryStore {
	return &ScanHistoryStore{db: db}
}

// Record appends one scan record. Records are never mutated or deleted.
func (s *ScanHistoryStore) Record(ctx context.Context, record *ScanRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scan_history (watch_folder_id, files_found, files_processed,
			files_skipped, files_removed, errors, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, record.WatchFolderID, record.FilesFound, record.FilesProcessed,
		record.FilesSkipped, record.FilesRemoved, record.Errors,
		record.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	return nil
}

// ListByFolder returns the most recent scan records for a folder.
func (s *ScanHistoryStore) ListByFolder(ctx context.Context, folderID, limit int) ([]*ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, watch_folder_id, scanned_at, files_found, files_processed,
			files_skipped, files_removed, errors, duration_ms
		FROM scan_history
		WHERE watch_folder_id = ?
		ORDER BY scanned_at DESC, id DESC
		LIMIT ?
	`, folderID, limit)
	if err != nil {
		return nil, fmt.Errorf("list scan history: %w", err)
	}
	defer rows.Close()

	var records []*ScanRecord
	for rows.Next() {
		var record ScanRecord
		var durationMs int64

		err := rows.Scan(
			&record.ID,
			&record.WatchFolderID,
			&record.ScannedAt,
			&record.FilesFound,
			&record.FilesProcessed,
			&record.FilesSkipped,
			&record.FilesRemoved,
			&record.Errors,
			&durationMs,
		)
		if err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}

		record.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, &record)
	}

	return records, rows.Err()
}

// LatestByFolder returns the most recent record for a folder, or nil.
func (s *ScanHistoryStore) LatestByFolder(ctx context.Context, folderID int) (*ScanRecord, error) {
	records, err := s.ListByFolder(ctx, folderID, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}
