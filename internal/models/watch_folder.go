// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vidra-media/vidra/internal/dbinterface"
)

// FolderKind defines where a watch folder's files live.
type FolderKind string

const (
	FolderKindLocal   FolderKind = "local"
	FolderKindNetwork FolderKind = "network"
)

var (
	ErrWatchFolderNotFound = errors.New("watch folder not found")
)

// WatchFolder represents a configured scan target.
type WatchFolder struct {
	ID                int        `json:"id"`
	Path              string     `json:"path"`
	Name              string     `json:"name,omitempty"`
	Kind              FolderKind `json:"kind"`
	Enabled           bool       `json:"enabled"`
	Schedule          string     `json:"schedule"`
	Extensions        []string   `json:"extensions"`
	MinVideoSizeMB    int64      `json:"minVideoSizeMb"`
	ExcludeExtensions []string   `json:"excludeExtensions"`
	Username          string     `json:"username,omitempty"`
	Password          string     `json:"-"`
	LastScanAt        *time.Time `json:"lastScanAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// CredentialSource supplies the decrypted secret for a network folder.
// Encryption at rest is owned by an external collaborator; the DB-backed
// implementation below simply returns the stored value.
type CredentialSource interface {
	DecryptedPassword(ctx context.Context, folderID int) (string, error)
}

// WatchFolderStore handles database operations for watch folders.
type WatchFolderStore struct {
	db dbinterface.Querier
}

// NewWatchFolderStore creates a new WatchFolderStore.
func NewWatchFolderStore(db dbinterface.Querier) *WatchFolderStore {
	return &WatchFolderStore{db: db}
}

const watchFolderColumns = `
	id, path, name, kind, enabled, schedule, extensions, min_video_size_mb,
	exclude_extensions, username, password, last_scan_at, created_at, updated_at`

// GetByID retrieves a watch folder by id.
func (s *WatchFolderStore) GetByID(ctx context.Context, id int) (*WatchFolder, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+watchFolderColumns+` FROM watch_folders WHERE id = ?`, id)
	return scanWatchFolder(row)
}

// GetByPath retrieves a watch folder by its unique path.
func (s *WatchFolderStore) GetByPath(ctx context.Context, path string) (*WatchFolder, error) {
	row := s.db.QueryRowContext(ctx, `SELECT`+watchFolderColumns+` FROM watch_folders WHERE path = ?`, path)
	return scanWatchFolder(row)
}

// List returns all watch folders.
func (s *WatchFolderStore) List(ctx context.Context) ([]*WatchFolder, error) {
	return s.list(ctx, `SELECT`+watchFolderColumns+` FROM watch_folders ORDER BY id`)
}

// ListEnabled returns all enabled watch folders.
func (s *WatchFolderStore) ListEnabled(ctx context.Context) ([]*WatchFolder, error) {
	return s.list(ctx, `SELECT`+watchFolderColumns+` FROM watch_folders WHERE enabled = 1 ORDER BY id`)
}

func (s *WatchFolderStore) list(ctx context.Context, query string) ([]*WatchFolder, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list watch folders: %w", err)
	}
	defer rows.Close()

	var folders []*WatchFolder
	for rows.Next() {
		folder, err := scanWatchFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}

	return folders, rows.Err()
}

// Create inserts a new watch folder and returns it with its assigned id.
func (s *WatchFolderStore) Create(ctx context.Context, folder *WatchFolder) (*WatchFolder, error) {
	if folder.Kind == "" {
		folder.Kind = FolderKindLocal
	}

	extensions, err := marshalStrings(folder.Extensions)
	if err != nil {
		return nil, err
	}
	excluded, err := marshalStrings(folder.ExcludeExtensions)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO watch_folders (path, name, kind, enabled, schedule, extensions,
			min_video_size_mb, exclude_extensions, username, password)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, folder.Path, folder.Name, folder.Kind, folder.Enabled, folder.Schedule,
		extensions, folder.MinVideoSizeMB, excluded, folder.Username, folder.Password)
	if err != nil {
		return nil, fmt.Errorf("insert watch folder: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("watch folder insert id: %w", err)
	}

	return s.GetByID(ctx, int(id))
}

// Update replaces the mutable fields of an existing folder.
func (s *WatchFolderStore) Update(ctx context.Context, folder *WatchFolder) (*WatchFolder, error) {
	extensions, err := marshalStrings(folder.Extensions)
	if err != nil {
		return nil, err
	}
	excluded, err := marshalStrings(folder.ExcludeExtensions)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE watch_folders
		SET name = ?, kind = ?, enabled = ?, schedule = ?, extensions = ?,
			min_video_size_mb = ?, exclude_extensions = ?, username = ?, password = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, folder.Name, folder.Kind, folder.Enabled, folder.Schedule, extensions,
		folder.MinVideoSizeMB, excluded, folder.Username, folder.Password, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("update watch folder: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrWatchFolderNotFound
	}

	return s.GetByID(ctx, folder.ID)
}

// Delete removes a watch folder and, via FK cascade, its indexed files.
func (s *WatchFolderStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watch_folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete watch folder: %w", err)
	}

	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrWatchFolderNotFound
	}

	return nil
}

// TouchLastScan records the start of a scan attempt.
func (s *WatchFolderStore) TouchLastScan(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE watch_folders SET last_scan_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("touch last scan: %w", err)
	}
	return nil
}

// DecryptedPassword implements CredentialSource. The stored secret is
// returned as-is; decryption is the external credential collaborator's job.
func (s *WatchFolderStore) DecryptedPassword(ctx context.Context, folderID int) (string, error) {
	var password string
	err := s.db.QueryRowContext(ctx,
		`SELECT password FROM watch_folders WHERE id = ?`, folderID).Scan(&password)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrWatchFolderNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get folder password: %w", err)
	}
	return password, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWatchFolder(row rowScanner) (*WatchFolder, error) {
	var folder WatchFolder
	var extensions, excluded string
	var lastScanAt sql.NullTime

	err := row.Scan(
		&folder.ID,
		&folder.Path,
		&folder.Name,
		&folder.Kind,
		&folder.Enabled,
		&folder.Schedule,
		&extensions,
		&folder.MinVideoSizeMB,
		&excluded,
		&folder.Username,
		&folder.Password,
		&lastScanAt,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWatchFolderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan watch folder: %w", err)
	}

	if lastScanAt.Valid {
		folder.LastScanAt = &lastScanAt.Time
	}
	if err := unmarshalStrings(extensions, &folder.Extensions); err != nil {
		return nil, err
	}
	if err := unmarshalStrings(excluded, &folder.ExcludeExtensions); err != nil {
		return nil, err
	}

	return &folder, nil
}

func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal string list: %w", err)
	}
	return string(data), nil
}

func unmarshalStrings(data string, dest *[]string) error {
	if data == "" {
		*dest = []string{}
		return nil
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("unmarshal string list: %w", err)
	}
	if *dest == nil {
		*dest = []string{}
	}
	return nil
}
