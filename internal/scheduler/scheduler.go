// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package scheduler drives periodic folder scans. Each enabled folder
// gets one cron job; a per-folder guard keeps same-folder scans from
// overlapping while different folders scan concurrently.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/vidra-media/vidra/internal/models"
	"github.com/vidra-media/vidra/internal/scanner"
)

// ErrScanInProgress rejects a manual trigger while the same folder is
// already scanning. Scheduled firings hitting the guard are dropped
// silently, never queued.
var ErrScanInProgress = errors.New("scan already in progress")

// FolderStatus is one folder's entry in the status report.
type FolderStatus struct {
	FolderID int    `json:"folderId"`
	Path     string `json:"path"`
	Schedule string `json:"schedule"`
	Scanning bool   `json:"scanning"`
}

// Status is the scheduler-wide status report.
type Status struct {
	Running  bool           `json:"running"`
	Folders  []FolderStatus `json:"folders"`
	Scanning []int          `json:"scanning"`
}

// ScanRunner runs one scan cycle for a folder. *scanner.Scanner is the
// production implementation.
type ScanRunner interface {
	Scan(ctx context.Context, folderID int) (*scanner.ScanResult, error)
}

// FolderLister supplies the folders to schedule at startup.
type FolderLister interface {
	ListEnabled(ctx context.Context) ([]*models.WatchFolder, error)
}

type Scheduler struct {
	scanner ScanRunner
	folders FolderLister
	cron    *cron.Cron

	mu       sync.Mutex
	entries  map[int]cron.EntryID
	schedule map[int]string
	paths    map[int]string
	scanning map[int]bool
	started  bool
}

func New(sc ScanRunner, folders FolderLister) *Scheduler {
	return &Scheduler{
		scanner:  sc,
		folders:  folders,
		cron:     cron.New(),
		entries:  make(map[int]cron.EntryID),
		schedule: make(map[int]string),
		paths:    make(map[int]string),
		scanning: make(map[int]bool),
	}
}

// Start schedules every enabled folder and starts the cron runner. A
// folder with an invalid cron expression is logged and skipped; the
// others still run.
func (s *Scheduler) Start(ctx context.Context) error {
	folders, err := s.folders.ListEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list enabled folders: %w", err)
	}

	for _, folder := range folders {
		if err := s.AddWatchFolder(folder); err != nil {
			log.Error().Err(err).
				Int("folderID", folder.ID).
				Str("schedule", folder.Schedule).
				Msg("scheduler: skipping folder with invalid schedule")
		}
	}

	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	s.cron.Start()
	log.Info().Int("folders", len(folders)).Msg("scheduler: started")
	return nil
}

// Stop cancels all jobs and waits for running ones to return. Safe to
// call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	log.Info().Msg("scheduler: stopped")
}

// AddWatchFolder schedules one folder without touching the others.
// Re-adding an already scheduled folder replaces its job.
func (s *Scheduler) AddWatchFolder(folder *models.WatchFolder) error {
	if folder.Schedule == "" {
		return fmt.Errorf("folder %d has no schedule", folder.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[folder.ID]; ok {
		s.cron.Remove(existing)
	}

	folderID := folder.ID
	entryID, err := s.cron.AddFunc(folder.Schedule, func() {
		s.runScheduled(folderID)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", folder.Schedule, err)
	}

	s.entries[folder.ID] = entryID
	s.schedule[folder.ID] = folder.Schedule
	s.paths[folder.ID] = folder.Path

	log.Debug().
		Int("folderID", folder.ID).
		Str("schedule", folder.Schedule).
		Msg("scheduler: folder scheduled")
	return nil
}

// RemoveWatchFolder drops a folder's job. Unknown ids are a no-op.
func (s *Scheduler) RemoveWatchFolder(folderID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[folderID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, folderID)
		delete(s.schedule, folderID)
		delete(s.paths, folderID)
		log.Debug().Int("folderID", folderID).Msg("scheduler: folder unscheduled")
	}
}

// TriggerScan runs a scan synchronously and returns its result. If the
// folder is already scanning the call fails immediately with
// ErrScanInProgress instead of queueing.
func (s *Scheduler) TriggerScan(ctx context.Context, folderID int) (*scanner.ScanResult, error) {
	if !s.acquire(folderID) {
		return nil, fmt.Errorf("folder %d: %w", folderID, ErrScanInProgress)
	}
	defer s.release(folderID)

	return s.scanner.Scan(ctx, folderID)
}

// runScheduled is the cron callback. It has no caller to report to, so
// guard hits and scan failures are logged and swallowed.
func (s *Scheduler) runScheduled(folderID int) {
	if !s.acquire(folderID) {
		log.Warn().Int("folderID", folderID).Msg("scheduler: previous scan still running, skipping")
		return
	}
	defer s.release(folderID)

	if _, err := s.scanner.Scan(context.Background(), folderID); err != nil {
		log.Error().Err(err).Int("folderID", folderID).Msg("scheduler: scheduled scan failed")
	}
}

func (s *Scheduler) acquire(folderID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scanning[folderID] {
		return false
	}
	s.scanning[folderID] = true
	return true
}

func (s *Scheduler) release(folderID int) {
	s.mu.Lock()
	delete(s.scanning, folderID)
	s.mu.Unlock()
}

// GetStatus reports per-folder scheduling and the ids currently mid-scan.
func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:  s.started,
		Folders:  make([]FolderStatus, 0, len(s.entries)),
		Scanning: make([]int, 0, len(s.scanning)),
	}

	for folderID := range s.entries {
		status.Folders = append(status.Folders, FolderStatus{
			FolderID: folderID,
			Path:     s.paths[folderID],
			Schedule: s.schedule[folderID],
			Scanning: s.scanning[folderID],
		})
	}
	for folderID := range s.scanning {
		status.Scanning = append(status.Scanning, folderID)
	}

	sort.Slice(status.Folders, func(i, j int) bool {
		return status.Folders[i].FolderID < status.Folders[j].FolderID
	})
	sort.Ints(status.Scanning)

	return status
}
