// Copyright (c) 2026, the vidra contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidra-media/vidra/internal/models"
)

type fakeMounter struct {
	mountCalls   int
	unmountCalls int
	mountErr     error
	lastShare    string
	lastUser     string
	lastPassword string

	// populate seeds the mount point with files on successful mount.
	populate func(mountPoint string)
}

func (m *fakeMounter) Mount(_ context.Context, share, mountPoint, username, password string) error {
	m.mountCalls++
	m.lastShare = share
	m.lastUser = username
	m.lastPassword = password
	if m.mountErr != nil {
		return m.mountErr
	}
	if m.populate != nil {
		m.populate(mountPoint)
	}
	return nil
}

func (m *fakeMounter) Unmount(_ context.Context, _ string) error {
	m.unmountCalls++
	return nil
}

type fakeCredentials struct {
	password string
	err      error
}

func (c *fakeCredentials) DecryptedPassword(_ context.Context, _ int) (string, error) {
	return c.password, c.err
}

func networkFolder(id int) *models.WatchFolder {
	return &models.WatchFolder{
		ID:       id,
		Path:     "//nas/media",
		Kind:     models.FolderKindNetwork,
		Username: "media",
	}
}

func TestNetworkConnectMountsOnce(t *testing.T) {
	t.Parallel()

	mounter := &fakeMounter{}
	p := NewNetworkProvider(mounter, &fakeCredentials{password: "s3cret"}, t.TempDir())
	folder := networkFolder(7)

	require.NoError(t, p.Connect(context.Background(), folder))
	require.NoError(t, p.Connect(context.Background(), folder))

	assert.Equal(t, 1, mounter.mountCalls, "existing mount should be reused")
	assert.Equal(t, "//nas/media", mounter.lastShare)
	assert.Equal(t, "media", mounter.lastUser)
	assert.Equal(t, "s3cret", mounter.lastPassword)

	mountPoint, ok := p.MountPoint(folder.ID)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(p.mountBase, "7"), mountPoint)
}

func TestNetworkConnectMountFailure(t *testing.T) {
	t.Parallel()

	mounter := &fakeMounter{mountErr: errors.New("cifs error")}
	p := NewNetworkProvider(mounter, &fakeCredentials{password: "x"}, t.TempDir())

	err := p.Connect(context.Background(), networkFolder(1))
	require.ErrorIs(t, err, ErrMountFailed)

	_, ok := p.MountPoint(1)
	assert.False(t, ok)
}

func TestNetworkConnectCredentialFailure(t *testing.T) {
	t.Parallel()

	mounter := &fakeMounter{}
	p := NewNetworkProvider(mounter, &fakeCredentials{err: errors.New("no such folder")}, t.TempDir())

	err := p.Connect(context.Background(), networkFolder(1))
	require.ErrorIs(t, err, ErrMountFailed)
	assert.Zero(t, mounter.mountCalls)
}

func TestNetworkScanDelegatesToLocal(t *testing.T) {
	t.Parallel()

	mounter := &fakeMounter{
		populate: func(mountPoint string) {
			path := filepath.Join(mountPoint, "Show", "S01E01.mkv")
			_ = os.MkdirAll(filepath.Dir(path), 0o755)
			_ = os.WriteFile(path, make([]byte, 4096), 0o644)
		},
	}
	p := NewNetworkProvider(mounter, &fakeCredentials{password: "x"}, t.TempDir())
	folder := networkFolder(3)

	require.NoError(t, p.Connect(context.Background(), folder))

	files, err := p.Scan(context.Background(), folder, ScanOptions{Extensions: []string{".mkv"}})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Show/S01E01.mkv", files[0].RelPath)
}

func TestNetworkScanUnmounted(t *testing.T) {
	t.Parallel()

	p := NewNetworkProvider(&fakeMounter{}, &fakeCredentials{password: "x"}, t.TempDir())

	_, err := p.Scan(context.Background(), networkFolder(9), ScanOptions{})
	assert.ErrorIs(t, err, ErrMountFailed)
}

func TestNetworkDisconnect(t *testing.T) {
	t.Parallel()

	mounter := &fakeMounter{}
	p := NewNetworkProvider(mounter, &fakeCredentials{password: "x"}, t.TempDir())
	folder := networkFolder(5)

	require.NoError(t, p.Connect(context.Background(), folder))
	require.NoError(t, p.Disconnect(folder.ID))
	assert.Equal(t, 1, mounter.unmountCalls)

	// Idempotent for unknown folders.
	require.NoError(t, p.Disconnect(folder.ID))
	assert.Equal(t, 1, mounter.unmountCalls)

	_, ok := p.MountPoint(folder.ID)
	assert.False(t, ok)
}
