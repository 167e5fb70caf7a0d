// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package streaming serves indexed media files over HTTP with byte-range
// support for player seeking.
package streaming

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"

	"github.com/vidra-media/vidra/internal/cache"
	"github.com/vidra-media/vidra/internal/metrics"
	"github.com/vidra-media/vidra/internal/models"
	"github.com/vidra-media/vidra/internal/storage"
)

// readBufferSize is well above the io.Copy default so large media reads
// amortize syscall overhead.
const readBufferSize = 64 * 1024

var (
	ErrFileNotFound = errors.New("file not found")

	errInvalidRange = errors.New("invalid range")
)

// FileStat is the cached subset of os.FileInfo the streamer needs.
type FileStat struct {
	Size    int64
	ModTime time.Time
}

type Streamer struct {
	files   *models.MediaFileStore
	folders *models.WatchFolderStore
	network *storage.NetworkProvider

	statCache *cache.Cache[string, FileStat]
	statTTL   time.Duration

	metrics *metrics.Collector
}

func New(
	files *models.MediaFileStore,
	folders *models.WatchFolderStore,
	network *storage.NetworkProvider,
	statCache *cache.Cache[string, FileStat],
	statTTL time.Duration,
	collector *metrics.Collector,
) *Streamer {
	if statTTL <= 0 {
		statTTL = 5 * time.Minute
	}
	return &Streamer{
		files:     files,
		folders:   folders,
		network:   network,
		statCache: statCache,
		statTTL:   statTTL,
		metrics:   collector,
	}
}

// ServeHead writes the same headers a full GET would, without a body.
// Players probe with HEAD before seeking.
func (s *Streamer) ServeHead(w http.ResponseWriter, r *http.Request, fileID int64) {
	absPath, stat, err := s.resolve(r, fileID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.writeCommonHeaders(w, absPath, stat)
	w.Header().Set("Content-Length", strconv.FormatInt(stat.Size, 10))
	w.WriteHeader(http.StatusOK)
	s.metrics.StreamServed(http.StatusOK, 0)
}

// ServeFile streams the file, honoring a single bytes range when the
// client sends one.
func (s *Streamer) ServeFile(w http.ResponseWriter, r *http.Request, fileID int64) {
	absPath, stat, err := s.resolve(r, fileID)
	if err != nil {
		s.respondError(w, err)
		return
	}

	start, end := int64(0), stat.Size-1
	status := http.StatusOK

	if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
		start, end, err = parseRange(rangeHeader, stat.Size)
		if err != nil {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", stat.Size))
			http.Error(w, "requested range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
			s.metrics.StreamServed(http.StatusRequestedRangeNotSatisfiable, 0)
			return
		}
		status = http.StatusPartialContent
	}

	file, err := os.Open(absPath)
	if err != nil {
		log.Error().Err(err).Str("path", absPath).Msg("streaming: open failed")
		s.respondError(w, ErrFileNotFound)
		return
	}

	// The descriptor must be released exactly once whether the copy
	// finishes, fails, or the client disconnects mid-stream.
	var closeOnce sync.Once
	closeFile := func() {
		closeOnce.Do(func() {
			if err := file.Close(); err != nil {
				log.Error().Err(err).Str("path", absPath).Msg("streaming: close failed")
			}
		})
	}
	defer closeFile()

	go func() {
		<-r.Context().Done()
		closeFile()
	}()

	if start > 0 {
		if _, err := file.Seek(start, io.SeekStart); err != nil {
			log.Error().Err(err).Str("path", absPath).Msg("streaming: seek failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			s.metrics.StreamServed(http.StatusInternalServerError, 0)
			return
		}
	}

	length := end - start + 1

	s.writeCommonHeaders(w, absPath, stat)
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	if status == http.StatusPartialContent {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, stat.Size))
	}
	w.WriteHeader(status)

	buf := make([]byte, readBufferSize)
	written, err := io.CopyBuffer(w, io.LimitReader(file, length), buf)
	if err != nil {
		// Broken pipes and closed descriptors here mean the client went
		// away, which is routine for seeking players.
		log.Debug().Err(err).Str("path", absPath).Int64("written", written).Msg("streaming: copy interrupted")
	}

	s.metrics.StreamServed(status, written)
}

// resolve maps a file id to its absolute on-disk path and cached stat.
func (s *Streamer) resolve(r *http.Request, fileID int64) (string, FileStat, error) {
	ctx := r.Context()

	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, models.ErrMediaFileNotFound) {
			return "", FileStat{}, ErrFileNotFound
		}
		return "", FileStat{}, err
	}

	folder, err := s.folders.GetByID(ctx, file.WatchFolderID)
	if err != nil {
		return "", FileStat{}, err
	}

	base := folder.Path
	if folder.Kind == models.FolderKindNetwork {
		mountPoint, mounted := s.network.MountPoint(folder.ID)
		if !mounted {
			return "", FileStat{}, ErrFileNotFound
		}
		base = mountPoint
	}

	absPath := filepath.Join(base, filepath.FromSlash(file.RelPath))

	stat, err := s.stat(absPath)
	if err != nil {
		return "", FileStat{}, ErrFileNotFound
	}

	return absPath, stat, nil
}

// stat consults the cache first; repeated seeks from the same client
// would otherwise stat the file on every request.
func (s *Streamer) stat(absPath string) (FileStat, error) {
	if cached, ok := s.statCache.Get(absPath, s.statTTL); ok {
		return cached, nil
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return FileStat{}, err
	}

	stat := FileStat{Size: info.Size(), ModTime: info.ModTime()}
	s.statCache.Set(absPath, stat)
	return stat, nil
}

// videoMIMETypes covers the container formats the scanner indexes; the
// platform mime database cannot be relied on for these.
var videoMIMETypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".avi":  "video/x-msvideo",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".mpg":  "video/mpeg",
	".mpeg": "video/mpeg",
	".ts":   "video/mp2t",
	".m2ts": "video/mp2t",
	".3gp":  "video/3gpp",
	".ogv":  "video/ogg",
}

func (s *Streamer) writeCommonHeaders(w http.ResponseWriter, absPath string, stat FileStat) {
	ext := strings.ToLower(filepath.Ext(absPath))
	contentType := videoMIMETypes[ext]
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Last-Modified", stat.ModTime.UTC().Format(http.TimeFormat))
	w.Header().Set("ETag", etag(absPath, stat))
}

func (s *Streamer) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrFileNotFound) {
		http.Error(w, "file not found", http.StatusNotFound)
		s.metrics.StreamServed(http.StatusNotFound, 0)
		return
	}
	log.Error().Err(err).Msg("streaming: resolve failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
	s.metrics.StreamServed(http.StatusInternalServerError, 0)
}

// etag derives a strong validator from the file's path, size and mtime.
func etag(absPath string, stat FileStat) string {
	h := xxhash.New()
	fmt.Fprintf(h, "%s|%d|%d", absPath, stat.Size, stat.ModTime.UnixNano())
	return fmt.Sprintf(`"%x"`, h.Sum64())
}

// parseRange handles a single "bytes=<start>-<end>" range, end optional.
func parseRange(header string, size int64) (int64, int64, error) {
	const prefix = "bytes="
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return 0, 0, errInvalidRange
	}

	spec := header[len(prefix):]
	dash := -1
	for i := 0; i < len(spec); i++ {
		if spec[i] == '-' {
			dash = i
			break
		}
	}
	if dash < 0 {
		return 0, 0, errInvalidRange
	}

	startStr, endStr := spec[:dash], spec[dash+1:]
	if startStr == "" {
		return 0, 0, errInvalidRange
	}

	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil || start < 0 {
		return 0, 0, errInvalidRange
	}

	end := size - 1
	if endStr != "" {
		end, err = strconv.ParseInt(endStr, 10, 64)
		if err != nil {
			return 0, 0, errInvalidRange
		}
	}

	if start >= size || end >= size || start > end {
		return 0, 0, errInvalidRange
	}

	return start, end, nil
}
