// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vidra-media/vidra/internal/api"
	"github.com/vidra-media/vidra/internal/buildinfo"
	"github.com/vidra-media/vidra/internal/cache"
	"github.com/vidra-media/vidra/internal/config"
	"github.com/vidra-media/vidra/internal/database"
	"github.com/vidra-media/vidra/internal/domain"
	"github.com/vidra-media/vidra/internal/logger"
	"github.com/vidra-media/vidra/internal/metadata"
	"github.com/vidra-media/vidra/internal/metrics"
	"github.com/vidra-media/vidra/internal/models"
	"github.com/vidra-media/vidra/internal/scanner"
	"github.com/vidra-media/vidra/internal/scheduler"
	"github.com/vidra-media/vidra/internal/storage"
	"github.com/vidra-media/vidra/internal/streaming"
)

const shutdownGrace = 10 * time.Second

func RunServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the indexing and streaming server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to configuration file")
	return cmd
}

func serve(configPath string) error {
	cfg, err := config.New(configPath, buildinfo.Version)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Setup(cfg.Config)

	log.Info().
		Str("version", buildinfo.Version).
		Str("commit", buildinfo.Commit).
		Msg("starting vidra")

	db, err := database.New(cfg.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}()

	folders := models.NewWatchFolderStore(db.Conn())
	files := models.NewMediaFileStore(db.Conn())
	history := models.NewScanHistoryStore(db.Conn())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := syncWatchFolders(ctx, folders, cfg.Config.WatchFolders); err != nil {
		return fmt.Errorf("sync watch folders: %w", err)
	}

	resolver := metadata.NewHTTPResolver(
		cfg.Config.MetadataAPIURL,
		cfg.Config.MetadataAPIKey,
		time.Duration(cfg.Config.MetadataTimeoutSeconds)*time.Second,
	)
	metadataCache := cache.New[string, *metadata.EnrichedInfo](cfg.Config.MetadataCacheSize)
	enricher := metadata.NewEnricher(resolver, metadataCache,
		time.Duration(cfg.Config.MetadataCacheTTLHours)*time.Hour)

	local := storage.NewLocalProvider()
	network := storage.NewNetworkProvider(
		storage.CommandMounter{},
		folders,
		filepath.Join(cfg.Config.DataDir, "mounts"),
	)

	var collector *metrics.Collector
	if cfg.Config.MetricsEnabled {
		collector = metrics.NewCollector()
	}

	sc := scanner.New(folders, files, history, local, network, enricher, collector)
	sched := scheduler.New(sc, folders)

	statCache := cache.New[string, streaming.FileStat](cfg.Config.StatCacheSize)
	streamer := streaming.New(files, folders, network, statCache,
		time.Duration(cfg.Config.StatCacheTTLMinutes)*time.Minute, collector)

	server := api.NewServer(&api.Dependencies{
		Config:    cfg,
		Folders:   folders,
		Files:     files,
		History:   history,
		Scheduler: sched,
		Streamer:  streamer,
		Metrics:   collector,
	})

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")

		sched.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info().Msg("shutdown complete")
	return nil
}

// syncWatchFolders mirrors the config file's folder declarations into
// the store. Folders created by other means are left alone.
func syncWatchFolders(ctx context.Context, store *models.WatchFolderStore, declared []domain.WatchFolderConfig) error {
	for _, wf := range declared {
		kind := models.FolderKindLocal
		if wf.Kind == "network" {
			kind = models.FolderKindNetwork
		}

		folder := &models.WatchFolder{
			Path:              wf.Path,
			Name:              wf.Name,
			Kind:              kind,
			Enabled:           wf.Enabled,
			Schedule:          wf.Schedule,
			Extensions:        wf.Extensions,
			MinVideoSizeMB:    wf.MinVideoSizeMB,
			ExcludeExtensions: wf.ExcludeExtensions,
			Username:          wf.Username,
			Password:          wf.Password,
		}

		existing, err := store.GetByPath(ctx, wf.Path)
		switch {
		case err == nil:
			folder.ID = existing.ID
			if _, err := store.Update(ctx, folder); err != nil {
				return fmt.Errorf("update folder %s: %w", wf.Path, err)
			}
		case errors.Is(err, models.ErrWatchFolderNotFound):
			if _, err := store.Create(ctx, folder); err != nil {
				return fmt.Errorf("create folder %s: %w", wf.Path, err)
			}
		default:
			return fmt.Errorf("lookup folder %s: %w", wf.Path, err)
		}
	}

	if len(declared) > 0 {
		log.Info().Int("folders", len(declared)).Msg("watch folders synced from config")
	}

	return nil
}
