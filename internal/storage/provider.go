// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package storage abstracts where a watch folder's files live: a local path
// or a network share mounted on demand.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vidra-media/vidra/internal/models"
)

var (
	// ErrMountFailed aborts a single scan attempt; it is never retried
	// automatically.
	ErrMountFailed = errors.New("mount failed")
)

// RawFile is one qualifying file from a provider listing.
type RawFile struct {
	Name    string    // Base name
	RelPath string    // Relative to the watch folder root
	AbsPath string    // Absolute path on the local filesystem
	Size    int64     // Size in bytes
	ModTime time.Time // Modification time
	Ext     string    // Lower-cased extension including the dot
}

// ScanOptions are the per-folder listing filters.
type ScanOptions struct {
	// Extensions is the allow-list (lower-cased, with dot). Empty allows
	// the default video set.
	Extensions []string

	// MinFileSizeMB excludes files below this size.
	MinFileSizeMB int64

	// ExcludeSuffixes drops in-progress downloads by filename suffix.
	ExcludeSuffixes []string
}

// Provider produces raw file listings for a watched folder.
type Provider interface {
	// Connect prepares the folder for scanning. No-op for local folders;
	// mounts the share for network folders.
	Connect(ctx context.Context, folder *models.WatchFolder) error

	// Scan walks the folder and returns all qualifying files. File-level
	// errors are logged and skipped, never fatal.
	Scan(ctx context.Context, folder *models.WatchFolder, opts ScanOptions) ([]RawFile, error)

	// Disconnect tears down folder state. No-op for local folders;
	// unmounts the share for network folders.
	Disconnect(folderID int) error
}

// ForKind returns the provider matching the folder kind.
func ForKind(kind models.FolderKind, local *LocalProvider, network *NetworkProvider) Provider {
	if kind == models.FolderKindNetwork {
		return network
	}
	return local
}
