// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package scanner runs the walk-diff-enrich-upsert-cleanup cycle for a
// single watch folder.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vidra-media/vidra/internal/metadata"
	"github.com/vidra-media/vidra/internal/metrics"
	"github.com/vidra-media/vidra/internal/models"
	"github.com/vidra-media/vidra/internal/storage"
)

// ScanResult tallies one completed scan.
type ScanResult struct {
	FilesFound int           `json:"filesFound"`
	Processed  int           `json:"processed"`
	Skipped    int           `json:"skipped"`
	Removed    int           `json:"removed"`
	Duration   time.Duration `json:"duration"`
}

type Scanner struct {
	folders *models.WatchFolderStore
	files   *models.MediaFileStore
	history *models.ScanHistoryStore

	local   *storage.LocalProvider
	network *storage.NetworkProvider

	enricher *metadata.Enricher
	metrics  *metrics.Collector
}

func New(
	folders *models.WatchFolderStore,
	files *models.MediaFileStore,
	history *models.ScanHistoryStore,
	local *storage.LocalProvider,
	network *storage.NetworkProvider,
	enricher *metadata.Enricher,
	collector *metrics.Collector,
) *Scanner {
	return &Scanner{
		folders:  folders,
		files:    files,
		history:  history,
		local:    local,
		network:  network,
		enricher: enricher,
		metrics:  collector,
	}
}

// Scan runs one full cycle for the folder. A failed scan is still
// recorded in history before the error is returned. Individual file
// errors never fail the scan; provider connect failures do.
func (s *Scanner) Scan(ctx context.Context, folderID int) (*ScanResult, error) {
	start := time.Now()

	folder, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("load watch folder %d: %w", folderID, err)
	}

	result, err := s.run(ctx, folder)

	duration := time.Since(start)
	s.metrics.ScanCompleted(folder.Path, err, duration)

	record := &models.ScanRecord{
		WatchFolderID: folder.ID,
		ScannedAt:     start,
		Duration:      duration,
	}
	if err != nil {
		record.Errors = 1
	} else {
		record.FilesFound = result.FilesFound
		record.FilesProcessed = result.Processed
		record.FilesSkipped = result.Skipped
		record.FilesRemoved = result.Removed
	}

	if recordErr := s.history.Record(ctx, record); recordErr != nil {
		log.Error().Err(recordErr).Int("folderID", folder.ID).Msg("scanner: failed to record scan history")
	}

	if err != nil {
		return nil, err
	}

	if touchErr := s.folders.TouchLastScan(ctx, folder.ID); touchErr != nil {
		log.Error().Err(touchErr).Int("folderID", folder.ID).Msg("scanner: failed to update last scan time")
	}

	result.Duration = duration

	log.Info().
		Int("folderID", folder.ID).
		Str("path", folder.Path).
		Int("found", result.FilesFound).
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Int("removed", result.Removed).
		Dur("duration", duration).
		Msg("scanner: scan complete")

	return result, nil
}

func (s *Scanner) run(ctx context.Context, folder *models.WatchFolder) (*ScanResult, error) {
	provider := storage.ForKind(folder.Kind, s.local, s.network)

	if err := provider.Connect(ctx, folder); err != nil {
		return nil, fmt.Errorf("connect folder %d: %w", folder.ID, err)
	}

	listing, err := provider.Scan(ctx, folder, storage.ScanOptions{
		Extensions:      folder.Extensions,
		MinFileSizeMB:   folder.MinVideoSizeMB,
		ExcludeSuffixes: folder.ExcludeExtensions,
	})
	if err != nil {
		return nil, fmt.Errorf("scan folder %d: %w", folder.ID, err)
	}

	result := &ScanResult{FilesFound: len(listing)}

	// All listed paths survive cleanup, including files that stay
	// unindexed for lack of an identity.
	seenPaths := make([]string, 0, len(listing))
	var dirty []*models.MediaFile

	for _, raw := range listing {
		seenPaths = append(seenPaths, raw.RelPath)

		existing, err := s.files.GetByPath(ctx, folder.ID, raw.RelPath)
		if err == nil && existing.Size == raw.Size && existing.ModTime.Equal(raw.ModTime) {
			result.Skipped++
			continue
		}
		if err != nil && !errors.Is(err, models.ErrMediaFileNotFound) {
			log.Error().Err(err).Str("relPath", raw.RelPath).Msg("scanner: lookup failed, skipping file")
			continue
		}

		info := s.enricher.Enrich(ctx, raw.Name, raw.Size)
		if info.Identity == nil {
			// The consuming client organizes content by identity, so
			// unresolved files are left out of the index.
			log.Debug().Str("relPath", raw.RelPath).Msg("scanner: no identity resolved, not indexing")
			continue
		}

		dirty = append(dirty, buildRecord(folder.ID, raw, info))
		result.Processed++
	}

	if len(dirty) > 0 {
		if err := s.files.UpsertBatch(ctx, dirty); err != nil {
			return nil, fmt.Errorf("upsert folder %d: %w", folder.ID, err)
		}
	}

	removed, err := s.files.RemoveNotInList(ctx, folder.ID, seenPaths)
	if err != nil {
		return nil, fmt.Errorf("cleanup folder %d: %w", folder.ID, err)
	}
	result.Removed = removed

	if count, err := s.files.CountByFolder(ctx, folder.ID); err == nil {
		s.metrics.SetFilesIndexed(folder.Path, count)
	}

	return result, nil
}

func buildRecord(folderID int, raw storage.RawFile, info *metadata.EnrichedInfo) *models.MediaFile {
	file := &models.MediaFile{
		WatchFolderID: folderID,
		RelPath:       raw.RelPath,
		Size:          raw.Size,
		ModTime:       raw.ModTime,
		Title:         info.Title,
		Kind:          info.Kind,
		Season:        info.Season,
		Episode:       info.Episode,
		Year:          info.Year,
		Resolution:    info.Resolution,
		Source:        info.Source,
		VideoCodec:    info.VideoCodec,
		AudioCodec:    info.AudioCodec,
		AudioChannels: info.AudioChannels,
		Languages:     info.Languages,
		ReleaseGroup:  info.ReleaseGroup,
		Flags:         info.Flags,
		Edition:       info.Edition,
	}

	if id := info.Identity; id != nil {
		file.ExternalID = id.ID
		file.CanonicalTitle = id.CanonicalTitle
		file.CanonicalYear = id.Year
		file.CanonicalType = id.Type
		file.YearRange = id.YearRange
		file.PosterURL = id.PosterURL
		file.Actors = id.Actors
		file.Similarity = id.Score
	}

	return file
}
