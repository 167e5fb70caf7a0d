// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package storage

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Hellseher/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/vidra-media/vidra/internal/domain"
	"github.com/vidra-media/vidra/internal/models"
)

const mountTimeout = 30 * time.Second

// Mounter mounts and unmounts SMB/CIFS shares. The command-backed
// implementation shells out to mount/umount; tests substitute a fake.
type Mounter interface {
	Mount(ctx context.Context, share, mountPoint, username, password string) error
	Unmount(ctx context.Context, mountPoint string) error
}

// CommandMounter mounts CIFS shares via the system mount command.
type CommandMounter struct{}

// Mount runs mount -t cifs with the given credentials. The password never
// reaches the process argument list in logs.
func (CommandMounter) Mount(ctx context.Context, share, mountPoint, username, password string) error {
	opts := fmt.Sprintf("username=%s,password=%s,iocharset=utf8", username, password)
	args := []string{"-t", "cifs", share, mountPoint, "-o", opts}

	loggable := shellquote.Join("mount", "-t", "cifs", share, mountPoint, "-o",
		fmt.Sprintf("username=%s,password=%s,iocharset=utf8", username, domain.RedactString(password)))
	log.Debug().Str("command", loggable).Msg("storage: mounting share")

	ctx, cancel := context.WithTimeout(ctx, mountTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "mount", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mount %s: %s: %w", share, strings.TrimSpace(string(output)), err)
	}

	return nil
}

// Unmount runs umount on the mount point.
func (CommandMounter) Unmount(ctx context.Context, mountPoint string) error {
	ctx, cancel := context.WithTimeout(ctx, mountTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "umount", mountPoint)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("umount %s: %s: %w", mountPoint, strings.TrimSpace(string(output)), err)
	}

	return nil
}

// NetworkProvider scans SMB shares by mounting them locally and delegating
// to a LocalProvider rooted at the mount point. Mounts are tracked per
// folder id and reused across scans; shares stay mounted until explicit
// Disconnect.
type NetworkProvider struct {
	mounter     Mounter
	credentials models.CredentialSource
	mountBase   string

	mu     sync.Mutex
	mounts map[int]string // folder id -> mount point
}

// NewNetworkProvider creates a provider that mounts shares under mountBase.
func NewNetworkProvider(mounter Mounter, credentials models.CredentialSource, mountBase string) *NetworkProvider {
	if mountBase == "" {
		mountBase = filepath.Join(os.TempDir(), "vidra-mounts")
	}
	return &NetworkProvider{
		mounter:     mounter,
		credentials: credentials,
		mountBase:   mountBase,
		mounts:      make(map[int]string),
	}
}

// Connect ensures the folder's share is mounted. An existing mount is
// reused; a failed mount is fatal for this scan attempt.
func (p *NetworkProvider) Connect(ctx context.Context, folder *models.WatchFolder) error {
	p.mu.Lock()
	_, mounted := p.mounts[folder.ID]
	p.mu.Unlock()
	if mounted {
		return nil
	}

	password, err := p.credentials.DecryptedPassword(ctx, folder.ID)
	if err != nil {
		return fmt.Errorf("%w: resolve credentials: %s", ErrMountFailed, err)
	}

	mountPoint := filepath.Join(p.mountBase, strconv.Itoa(folder.ID))
	if err := os.MkdirAll(mountPoint, 0o755); err != nil {
		return fmt.Errorf("%w: create mount point: %s", ErrMountFailed, err)
	}

	if err := p.mounter.Mount(ctx, folder.Path, mountPoint, folder.Username, password); err != nil {
		return fmt.Errorf("%w: %s", ErrMountFailed, err)
	}

	p.mu.Lock()
	p.mounts[folder.ID] = mountPoint
	p.mu.Unlock()

	log.Info().Int("folderID", folder.ID).Str("mountPoint", mountPoint).Msg("storage: share mounted")
	return nil
}

// Scan delegates to a LocalProvider rooted at the folder's mount point.
func (p *NetworkProvider) Scan(ctx context.Context, folder *models.WatchFolder, opts ScanOptions) ([]RawFile, error) {
	mountPoint, ok := p.MountPoint(folder.ID)
	if !ok {
		return nil, fmt.Errorf("%w: folder %d is not mounted", ErrMountFailed, folder.ID)
	}

	local := &LocalProvider{rootOverride: mountPoint}
	return local.Scan(ctx, folder, opts)
}

// Disconnect unmounts the folder's share, if mounted. Called on folder
// teardown and failure recovery, deliberately not after routine scans.
func (p *NetworkProvider) Disconnect(folderID int) error {
	p.mu.Lock()
	mountPoint, ok := p.mounts[folderID]
	delete(p.mounts, folderID)
	p.mu.Unlock()

	if !ok {
		return nil
	}

	if err := p.mounter.Unmount(context.Background(), mountPoint); err != nil {
		return err
	}

	log.Info().Int("folderID", folderID).Str("mountPoint", mountPoint).Msg("storage: share unmounted")
	return nil
}

// MountPoint reports the local mount point for a folder, if mounted.
func (p *NetworkProvider) MountPoint(folderID int) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	mountPoint, ok := p.mounts[folderID]
	return mountPoint, ok
}
