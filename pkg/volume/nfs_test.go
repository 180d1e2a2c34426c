package volume

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nfsConfig() *types.VolumeConfig {
	return &types.VolumeConfig{
		Backend: types.BackendNfs,
		Nfs:     &types.NfsConfig{Server: "nas.local", Path: "/export/backups", Port: 2050},
	}
}

func TestNfsMountRunsMount(t *testing.T) {
	runner := &fakeRunner{}
	mounts := newFakeMounts()
	target := filepath.Join(t.TempDir(), "vol1")

	runner.onRun = func(name string, args []string) {
		if name == "mount" {
			mounts.set(target, "nfs4")
		}
	}

	backend := &NfsBackend{platform: PosixPlatform{}, runner: runner, mounts: mounts}
	result := backend.Mount(context.Background(), nfsConfig(), target)
	require.Equal(t, types.StatusMounted, result.Status)

	require.Equal(t, 1, runner.callCount())
	call := runner.call(0)
	assert.Equal(t, "mount", call.name)
	assert.True(t, hasArg(call.args, "nfs"))
	assert.True(t, hasArg(call.args, "nas.local:/export/backups"))
	assert.True(t, hasArg(call.args, "port=2050"))
}

func TestNfsMountForeignMountIsNotRecovered(t *testing.T) {
	runner := &fakeRunner{}
	mounts := newFakeMounts()
	target := t.TempDir()
	mounts.set(target, "ext4")

	backend := &NfsBackend{platform: PosixPlatform{}, runner: runner, mounts: mounts}
	result := backend.Mount(context.Background(), nfsConfig(), target)

	// Unlike CIFS there is no automatic force-unmount of a foreign mount.
	assert.Equal(t, types.ErrKindAlreadyMounted, result.Kind)
	assert.Equal(t, 0, runner.callCount())
}

func TestNfsUnmountNotMounted(t *testing.T) {
	runner := &fakeRunner{}
	backend := &NfsBackend{platform: PosixPlatform{}, runner: runner, mounts: newFakeMounts()}

	result := backend.Unmount(context.Background(), nfsConfig(), "/mnt/vol1")
	assert.Equal(t, types.StatusUnmounted, result.Status)
	assert.Equal(t, 0, runner.callCount())
}
