package volume

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/JBibu/zerobyte/pkg/common"
	"github.com/JBibu/zerobyte/pkg/secrets"
	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orchestratorFixture struct {
	orchestrator *Orchestrator
	runner       *fakeRunner
	mounts       *fakeMounts
	mountBase    string
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()

	runner := &fakeRunner{}
	mounts := newFakeMounts()
	mountBase := t.TempDir()

	orchestrator := NewOrchestrator(Config{
		MountBase: mountBase,
		Platform:  PosixPlatform{},
		Runner:    runner,
		Secrets:   secrets.StaticResolver{"ref-1": "s3cret"},
		Mounts:    mounts,
		Caps:      Capabilities{MountCifs: true, MountNfs: true},
	})

	return &orchestratorFixture{
		orchestrator: orchestrator,
		runner:       runner,
		mounts:       mounts,
		mountBase:    mountBase,
	}
}

// trackMounts makes successful mount/umount commands keep the fake mount
// table in sync, the way the real tools change /proc/mounts.
func (f *orchestratorFixture) trackMounts(target, fstype string) {
	f.runner.onRun = func(name string, args []string) {
		switch name {
		case "mount":
			f.mounts.set(target, fstype)
		case "umount":
			f.mounts.remove(target)
		}
	}
}

func smbVolume() *types.Volume {
	return &types.Volume{Name: "vol1", ExternalId: "ext-1", Config: *smbConfig()}
}

func TestOrchestratorMountsDirectoryVolume(t *testing.T) {
	f := newOrchestratorFixture(t)
	dir := t.TempDir()
	vol := &types.Volume{Name: "docs", ExternalId: "ext-docs", Config: *directoryConfig(dir)}

	result := f.orchestrator.EnsureMounted(context.Background(), vol)
	assert.Equal(t, types.StatusMounted, result.Status)
	assert.Equal(t, types.StateMounted, f.orchestrator.State(vol).State)
	assert.Equal(t, 0, f.runner.callCount())
}

func TestOrchestratorMountTarget(t *testing.T) {
	f := newOrchestratorFixture(t)

	vol := smbVolume()
	target, err := f.orchestrator.MountTarget(vol)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.mountBase, "vol1"), target)

	dirVol := &types.Volume{Name: "docs", Config: *directoryConfig("/data/docs/")}
	target, err = f.orchestrator.MountTarget(dirVol)
	require.NoError(t, err)
	assert.Equal(t, "/data/docs", target)
}

func TestOrchestratorMountIsIdempotent(t *testing.T) {
	f := newOrchestratorFixture(t)
	vol := smbVolume()
	target := filepath.Join(f.mountBase, vol.Name)
	f.trackMounts(target, "cifs")

	first := f.orchestrator.EnsureMounted(context.Background(), vol)
	require.Equal(t, types.StatusMounted, first.Status)
	require.Equal(t, 1, f.runner.callCount())

	// Second mount is satisfied by state plus the recent health check; the
	// mount tool does not run again.
	second := f.orchestrator.EnsureMounted(context.Background(), vol)
	assert.Equal(t, types.StatusMounted, second.Status)
	assert.Equal(t, 1, f.runner.callCount())
}

func TestOrchestratorConcurrentMountRunsOneCommand(t *testing.T) {
	f := newOrchestratorFixture(t)
	vol := smbVolume()
	target := filepath.Join(f.mountBase, vol.Name)
	f.trackMounts(target, "cifs")

	var wg sync.WaitGroup
	results := make([]types.OperationResult, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.orchestrator.EnsureMounted(context.Background(), vol)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, types.StatusMounted, results[0].Status)
	assert.Equal(t, types.StatusMounted, results[1].Status)
	assert.Equal(t, 1, f.runner.callCount())
}

func TestOrchestratorReleaseWhenUnmounted(t *testing.T) {
	f := newOrchestratorFixture(t)
	vol := smbVolume()

	result := f.orchestrator.Release(context.Background(), vol)
	assert.Equal(t, types.StatusUnmounted, result.Status)
	assert.Equal(t, 0, f.runner.callCount())
}

func TestOrchestratorMountThenRelease(t *testing.T) {
	f := newOrchestratorFixture(t)
	vol := smbVolume()
	target := filepath.Join(f.mountBase, vol.Name)
	f.trackMounts(target, "cifs")

	require.Equal(t, types.StatusMounted, f.orchestrator.EnsureMounted(context.Background(), vol).Status)

	result := f.orchestrator.Release(context.Background(), vol)
	assert.Equal(t, types.StatusUnmounted, result.Status)
	assert.Equal(t, types.StateUnmounted, f.orchestrator.State(vol).State)

	require.Equal(t, 2, f.runner.callCount())
	assert.Equal(t, "umount", f.runner.call(1).name)
}

func TestOrchestratorProbeReportsBusy(t *testing.T) {
	f := newOrchestratorFixture(t)
	vol := smbVolume()
	f.runner.block = make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.orchestrator.EnsureMounted(context.Background(), vol)
	}()

	// Wait for the mount command to be in flight.
	require.Eventually(t, func() bool {
		return f.runner.callCount() > 0
	}, time.Second, 5*time.Millisecond)

	result := f.orchestrator.Probe(context.Background(), vol)
	assert.Equal(t, types.ErrKindBusy, result.Kind)

	close(f.runner.block)
	<-done
}

func TestOrchestratorMountTimeoutLeavesErrorState(t *testing.T) {
	f := newOrchestratorFixture(t)
	vol := smbVolume()

	// The mount command hangs; a blocked runner only returns once the
	// operation context expires.
	f.runner.block = make(chan struct{})
	defer close(f.runner.block)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result := f.orchestrator.EnsureMounted(ctx, vol)
	assert.True(t, result.Failed())
	assert.Equal(t, types.ErrKindTimeout, result.Kind)

	// The volume must land in Error, never stay stuck in Mounting.
	state := f.orchestrator.State(vol)
	assert.Equal(t, types.StateError, state.State)
	assert.NotEmpty(t, state.LastError)
}

func TestOrchestratorKeepsSuccessAtDeadline(t *testing.T) {
	f := newOrchestratorFixture(t)
	vol := smbVolume()

	// The operation succeeds just as its context expires; the mount is real
	// and must not be rewritten into a timeout failure.
	op := func(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
		<-ctx.Done()
		return types.ResultMounted()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result := f.orchestrator.bounded(ctx, op, vol, "/mnt/vol1")
	assert.Equal(t, types.StatusMounted, result.Status)
	assert.Equal(t, types.ErrKindNone, result.Kind)
}

func TestOrchestratorMountFailureSetsErrorState(t *testing.T) {
	f := newOrchestratorFixture(t)
	vol := smbVolume()
	f.runner.responses = []runResponse{
		{result: common.RunResult{ExitCode: 32, Stderr: "mount error(13): Permission denied"}},
		{result: common.RunResult{ExitCode: 32, Stderr: "mount error(13): Permission denied"}},
	}

	result := f.orchestrator.EnsureMounted(context.Background(), vol)
	assert.True(t, result.Failed())
	assert.Equal(t, types.ErrKindAuth, result.Kind)

	state := f.orchestrator.State(vol)
	assert.Equal(t, types.StateError, state.State)
	assert.NotEmpty(t, state.LastError)
}

func TestOrchestratorRejectsInvalidConfig(t *testing.T) {
	f := newOrchestratorFixture(t)
	vol := &types.Volume{Name: "broken", Config: types.VolumeConfig{Backend: types.BackendSmb}}

	result := f.orchestrator.EnsureMounted(context.Background(), vol)
	assert.Equal(t, types.ErrKindConfig, result.Kind)
}

func TestOrchestratorRejectsUnsupportedBackend(t *testing.T) {
	runner := &fakeRunner{}
	orchestrator := NewOrchestrator(Config{
		MountBase: t.TempDir(),
		Platform:  PosixPlatform{},
		Runner:    runner,
		Secrets:   secrets.StaticResolver{},
		Mounts:    newFakeMounts(),
		Caps:      Capabilities{}, // no cifs tooling on the host
	})

	result := orchestrator.EnsureMounted(context.Background(), smbVolume())
	assert.Equal(t, types.ErrKindIO, result.Kind)
	assert.Equal(t, 0, runner.callCount())
}

func TestOrchestratorEmitsLifecycleEvents(t *testing.T) {
	events := common.NewEventBus(context.Background(), nil)

	var mu sync.Mutex
	var seen []common.EventType
	record := func(e common.Event) {
		mu.Lock()
		seen = append(seen, e.Type)
		mu.Unlock()
	}
	events.On(common.EventVolumeMounted, record)
	events.On(common.EventVolumeUnmounted, record)

	mountBase := t.TempDir()
	runner := &fakeRunner{}
	mounts := newFakeMounts()
	orchestrator := NewOrchestrator(Config{
		MountBase: mountBase,
		Platform:  PosixPlatform{},
		Runner:    runner,
		Secrets:   secrets.StaticResolver{"ref-1": "s3cret"},
		Mounts:    mounts,
		Caps:      Capabilities{MountCifs: true},
		Events:    events,
	})

	vol := smbVolume()
	target := filepath.Join(mountBase, vol.Name)
	runner.onRun = func(name string, args []string) {
		switch name {
		case "mount":
			mounts.set(target, "cifs")
		case "umount":
			mounts.remove(target)
		}
	}

	require.Equal(t, types.StatusMounted, orchestrator.EnsureMounted(context.Background(), vol).Status)
	require.Equal(t, types.StatusUnmounted, orchestrator.Release(context.Background(), vol).Status)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []common.EventType{common.EventVolumeMounted, common.EventVolumeUnmounted}, seen)
}
