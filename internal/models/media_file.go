// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vidra-media/vidra/internal/dbinterface"
)

// ContentKind classifies what a media file contains.
type ContentKind string

const (
	ContentKindMovie   ContentKind = "movie"
	ContentKindSeries  ContentKind = "series"
	ContentKindUnknown ContentKind = "unknown" //nolint:goconst // type-safe enum value
)

var (
	ErrMediaFileNotFound = errors.New("media file not found")
)

// MediaFile is one indexed media file. The (Size, ModTime) pair is the sole
// dirtiness signal on re-scan; unchanged pairs leave the record untouched.
type MediaFile struct {
	ID            int64       `json:"id"`
	WatchFolderID int         `json:"watchFolderId"`
	RelPath       string      `json:"relPath"`
	Size          int64       `json:"size"`
	ModTime       time.Time   `json:"modTime"`
	Title         string      `json:"title"`
	Kind          ContentKind `json:"kind"`
	Season        *int        `json:"season,omitempty"`
	Episode       *int        `json:"episode,omitempty"`
	Year          *int        `json:"year,omitempty"`
	Resolution    string      `json:"resolution,omitempty"`
	Source        string      `json:"source,omitempty"`
	VideoCodec    string      `json:"videoCodec,omitempty"`
	AudioCodec    string      `json:"audioCodec,omitempty"`
	AudioChannels string      `json:"audioChannels,omitempty"`
	Languages     []string    `json:"languages"`
	ReleaseGroup  string      `json:"releaseGroup,omitempty"`
	Flags         []string    `json:"flags"`
	Edition       string      `json:"edition,omitempty"`

	// External catalog identity.
	ExternalID     string   `json:"externalId,omitempty"`
	CanonicalTitle string   `json:"canonicalTitle,omitempty"`
	CanonicalYear  *int     `json:"canonicalYear,omitempty"`
	CanonicalType  string   `json:"canonicalType,omitempty"`
	YearRange      string   `json:"yearRange,omitempty"`
	PosterURL      string   `json:"posterUrl,omitempty"`
	Actors         []string `json:"actors"`
	Similarity     float64  `json:"similarity"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MediaFileStore handles database operations for indexed media files.
type MediaFileStore struct {
	db dbinterface.TxBeginner
}

// NewMediaFileStore creates a new MediaFileStore.
func NewMediaFileStore(db dbinterface.TxBeginner) *MediaFileStore {
	return &MediaFileStore{db: db}
}

const mediaFileColumns = `
	id, watch_folder_id, rel_path, size, mod_time, title, kind, season, episode, year,
	resolution, source, video_codec, audio_codec, audio_channels, languages,
	release_group, flags, edition, external_id, canonical_title, canonical_year,
	canonical_type, year_range, poster_url, actors, similarity, created_at, updated_at`

// GetByID retrieves a media file by id.
func (s *MediaFileStore) GetByID(ctx context.Context, id int64) (*MediaFile, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+mediaFileColumns+` FROM media_files WHERE id = ?`, id)
	return scanMediaFile(row)
}

// GetByPath retrieves a media file by folder id and relative path.
func (s *MediaFileStore) GetByPath(ctx context.Context, folderID int, relPath string) (*MediaFile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT`+mediaFileColumns+` FROM media_files WHERE watch_folder_id = ? AND rel_path = ?`,
		folderID, relPath)
	return scanMediaFile(row)
}

// ListByFolder returns all indexed files for a folder ordered by path.
func (s *MediaFileStore) ListByFolder(ctx context.Context, folderID int) ([]*MediaFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT`+mediaFileColumns+` FROM media_files WHERE watch_folder_id = ? ORDER BY rel_path`,
		folderID)
	if err != nil {
		return nil, fmt.Errorf("list media files: %w", err)
	}
	defer rows.Close()

	var files []*MediaFile
	for rows.Next() {
		file, err := scanMediaFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// CountByFolder returns the number of indexed files for a folder.
func (s *MediaFileStore) CountByFolder(ctx context.Context, folderID int) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media_files WHERE watch_folder_id = ?`, folderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count media files: %w", err)
	}
	return count, nil
}

// UpsertBatch writes all records in a single transaction, keyed on
// (watch_folder_id, rel_path).
func (s *MediaFileStore) UpsertBatch(ctx context.Context, files []*MediaFile) error {
	if len(files) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO media_files (
			watch_folder_id, rel_path, size, mod_time, title, kind, season, episode, year,
			resolution, source, video_codec, audio_codec, audio_channels, languages,
			release_group, flags, edition, external_id, canonical_title, canonical_year,
			canonical_type, year_range, poster_url, actors, similarity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(watch_folder_id, rel_path) DO UPDATE SET
			size = excluded.size,
			mod_time = excluded.mod_time,
			title = excluded.title,
			kind = excluded.kind,
			season = excluded.season,
			episode = excluded.episode,
			year = excluded.year,
			resolution = excluded.resolution,
			source = excluded.source,
			video_codec = excluded.video_codec,
			audio_codec = excluded.audio_codec,
			audio_channels = excluded.audio_channels,
			languages = excluded.languages,
			release_group = excluded.release_group,
			flags = excluded.flags,
			edition = excluded.edition,
			external_id = excluded.external_id,
			canonical_title = excluded.canonical_title,
			canonical_year = excluded.canonical_year,
			canonical_type = excluded.canonical_type,
			year_range = excluded.year_range,
			poster_url = excluded.poster_url,
			actors = excluded.actors,
			similarity = excluded.similarity,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, file := range files {
		languages, err := marshalStrings(file.Languages)
		if err != nil {
			return err
		}
		flags, err := marshalStrings(file.Flags)
		if err != nil {
			return err
		}
		actors, err := marshalStrings(file.Actors)
		if err != nil {
			return err
		}

		_, err = stmt.ExecContext(ctx,
			file.WatchFolderID, file.RelPath, file.Size, file.ModTime, file.Title,
			file.Kind, nullableInt(file.Season), nullableInt(file.Episode), nullableInt(file.Year),
			file.Resolution, file.Source, file.VideoCodec, file.AudioCodec, file.AudioChannels,
			languages, file.ReleaseGroup, flags, file.Edition,
			file.ExternalID, file.CanonicalTitle, nullableInt(file.CanonicalYear),
			file.CanonicalType, file.YearRange, file.PosterURL, actors, file.Similarity,
		)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", file.RelPath, err)
		}
	}

	return tx.Commit()
}

// RemoveNotInList deletes every record of folderID whose rel_path is absent
// from keepPaths and returns how many were removed. An empty keepPaths
// removes all of the folder's records.
func (s *MediaFileStore) RemoveNotInList(ctx context.Context, folderID int, keepPaths []string) (int, error) {
	if len(keepPaths) == 0 {
		res, err := s.db.ExecContext(ctx,
			`DELETE FROM media_files WHERE watch_folder_id = ?`, folderID)
		if err != nil {
			return 0, fmt.Errorf("remove all media files: %w", err)
		}
		removed, _ := res.RowsAffected()
		return int(removed), nil
	}

	// SQLite caps bound parameters, so delete in chunks against a temp set.
	const chunkSize = 500

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin cleanup tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`CREATE TEMP TABLE keep_paths (rel_path TEXT PRIMARY KEY)`); err != nil {
		return 0, fmt.Errorf("create temp table: %w", err)
	}

	for start := 0; start < len(keepPaths); start += chunkSize {
		end := start + chunkSize
		if end > len(keepPaths) {
			end = len(keepPaths)
		}
		chunk := keepPaths[start:end]

		placeholders := strings.TrimSuffix(strings.Repeat("(?),", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, p := range chunk {
			args[i] = p
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO keep_paths (rel_path) VALUES `+placeholders, args...); err != nil {
			return 0, fmt.Errorf("fill temp table: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM media_files
		WHERE watch_folder_id = ?
		  AND rel_path NOT IN (SELECT rel_path FROM keep_paths)
	`, folderID)
	if err != nil {
		return 0, fmt.Errorf("remove stale media files: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DROP TABLE keep_paths`); err != nil {
		return 0, fmt.Errorf("drop temp table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	removed, _ := res.RowsAffected()
	return int(removed), nil
}

func scanMediaFile(row rowScanner) (*MediaFile, error) {
	var file MediaFile
	var season, episode, year, canonicalYear sql.NullInt64
	var languages, flags, actors string

	err := row.Scan(
		&file.ID,
		&file.WatchFolderID,
		&file.RelPath,
		&file.Size,
		&file.ModTime,
		&file.Title,
		&file.Kind,
		&season,
		&episode,
		&year,
		&file.Resolution,
		&file.Source,
		&file.VideoCodec,
		&file.AudioCodec,
		&file.AudioChannels,
		&languages,
		&file.ReleaseGroup,
		&flags,
		&file.Edition,
		&file.ExternalID,
		&file.CanonicalTitle,
		&canonicalYear,
		&file.CanonicalType,
		&file.YearRange,
		&file.PosterURL,
		&actors,
		&file.Similarity,
		&file.CreatedAt,
		&file.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMediaFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan media file: %w", err)
	}

	file.Season = intPtr(season)
	file.Episode = intPtr(episode)
	file.Year = intPtr(year)
	file.CanonicalYear = intPtr(canonicalYear)

	if err := unmarshalStrings(languages, &file.Languages); err != nil {
		return nil, err
	}
	if err := unmarshalStrings(flags, &file.Flags); err != nil {
		return nil, err
	}
	if err := unmarshalStrings(actors, &file.Actors); err != nil {
		return nil, err
	}

	return &file, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
