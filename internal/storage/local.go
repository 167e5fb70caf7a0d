// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/vidra-media/vidra/internal/models"
)

// defaultVideoExtensions is used when a folder has no allow-list configured.
var defaultVideoExtensions = map[string]struct{}{
	".mkv": {}, ".mp4": {}, ".avi": {}, ".m4v": {}, ".wmv": {}, ".mov": {},
	".ts": {}, ".m2ts": {}, ".vob": {}, ".mpg": {}, ".mpeg": {}, ".webm": {}, ".flv": {},
}

// LocalProvider walks directories on the local filesystem.
type LocalProvider struct {
	// rootOverride replaces the folder path when scanning, used by the
	// network provider to scan a mount point under the folder's identity.
	rootOverride string
}

// NewLocalProvider creates a provider for local watch folders.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Connect is a no-op for local folders.
func (p *LocalProvider) Connect(_ context.Context, _ *models.WatchFolder) error {
	return nil
}

// Disconnect is a no-op for local folders.
func (p *LocalProvider) Disconnect(_ int) error {
	return nil
}

// Scan recursively walks the folder and returns qualifying files.
// Traversal errors are logged and that subtree is skipped.
func (p *LocalProvider) Scan(ctx context.Context, folder *models.WatchFolder, opts ScanOptions) ([]RawFile, error) {
	root := folder.Path
	if p.rootOverride != "" {
		root = p.rootOverride
	}
	root = filepath.Clean(root)

	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("stat scan root %s: %w", root, err)
	}

	allowed := allowedExtensions(opts.Extensions)

	var files []RawFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			log.Warn().Err(walkErr).Str("path", path).Msg("storage: walk error, skipping subtree")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		raw, ok := p.qualify(root, path, d, allowed, opts)
		if ok {
			files = append(files, raw)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}

// qualify applies the extension allow-list, temp-download suffix exclusion,
// and minimum size filter to a single regular file.
func (p *LocalProvider) qualify(root, path string, d fs.DirEntry, allowed map[string]struct{}, opts ScanOptions) (RawFile, bool) {
	name := d.Name()
	ext := strings.ToLower(filepath.Ext(name))

	if _, ok := allowed[ext]; !ok {
		return RawFile{}, false
	}

	for _, suffix := range opts.ExcludeSuffixes {
		if suffix != "" && strings.HasSuffix(strings.ToLower(name), strings.ToLower(suffix)) {
			return RawFile{}, false
		}
	}

	fi, err := d.Info()
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("storage: stat failed, skipping file")
		return RawFile{}, false
	}

	if opts.MinFileSizeMB > 0 && fi.Size() < opts.MinFileSizeMB*1024*1024 {
		return RawFile{}, false
	}

	relPath, err := filepath.Rel(root, path)
	if err != nil {
		relPath = name
	}

	return RawFile{
		Name:    name,
		RelPath: filepath.ToSlash(relPath),
		AbsPath: path,
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
		Ext:     ext,
	}, true
}

func allowedExtensions(configured []string) map[string]struct{} {
	if len(configured) == 0 {
		return defaultVideoExtensions
	}

	allowed := make(map[string]struct{}, len(configured))
	for _, ext := range configured {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	return allowed
}
