package volume

import (
	"context"
	"errors"
	"path"
	"time"

	"github.com/JBibu/zerobyte/pkg/common"
	"github.com/JBibu/zerobyte/pkg/secrets"
	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
)

const (
	// OperationTimeout bounds every mount, unmount, and health-check
	// operation, including the external process call.
	OperationTimeout = 30 * time.Second

	// probeCacheTTL is how long a successful health check satisfies the fast
	// re-check EnsureMounted does on already-mounted volumes.
	probeCacheTTL = 10 * time.Second

	probeCacheSize = 128
)

// Config wires the orchestrator's collaborators.
type Config struct {
	MountBase string
	Platform  Platform
	Runner    common.Runner
	Secrets   secrets.Resolver
	Mounts    MountTable
	Caps      Capabilities
	Events    *common.EventBus
}

// Orchestrator drives the mount lifecycle of every volume. It serializes
// operations per volume, bounds each one with OperationTimeout, keeps the
// state registry current, and emits volume lifecycle events. Callers persist
// and broadcast state changes; the orchestrator only emits them.
type Orchestrator struct {
	mountBase  string
	platform   Platform
	registry   *Registry
	deps       Deps
	caps       Capabilities
	events     *common.EventBus
	probeCache *expirable.LRU[string, types.OperationResult]
}

func NewOrchestrator(cfg Config) *Orchestrator {
	return &Orchestrator{
		mountBase: cfg.MountBase,
		platform:  cfg.Platform,
		registry:  NewRegistry(),
		deps: Deps{
			Platform: cfg.Platform,
			Runner:   cfg.Runner,
			Secrets:  cfg.Secrets,
			Mounts:   cfg.Mounts,
		},
		caps:       cfg.Caps,
		events:     cfg.Events,
		probeCache: expirable.NewLRU[string, types.OperationResult](probeCacheSize, nil, probeCacheTTL),
	}
}

// State returns the registry snapshot for a volume.
func (o *Orchestrator) State(vol *types.Volume) StateInfo {
	return o.registry.State(vol.Name)
}

// Evict drops a deleted volume's registry entry and cached probe.
func (o *Orchestrator) Evict(vol *types.Volume) {
	o.probeCache.Remove(vol.Name)
	o.registry.Evict(vol.Name)
}

// MountTarget resolves the filesystem path (or UNC path on Windows) at which
// the volume's backend is expected to be reachable.
func (o *Orchestrator) MountTarget(vol *types.Volume) (string, error) {
	switch vol.Config.Backend {
	case types.BackendDirectory:
		return o.platform.NormalizePath(vol.Config.Directory.Path)
	case types.BackendSmb:
		if o.platform.IsWindows() {
			return o.platform.BuildUNCPath(vol.Config.Smb.Server, vol.Config.Smb.Share, ""), nil
		}
		return o.platform.NormalizePath(path.Join(o.mountBase, vol.Name))
	case types.BackendNfs:
		return o.platform.NormalizePath(path.Join(o.mountBase, vol.Name))
	default:
		return "", errors.New("unknown backend kind")
	}
}

// EnsureMounted brings the volume to the Mounted state. Already-mounted
// volumes get a fast health re-check instead of a second mount command.
func (o *Orchestrator) EnsureMounted(ctx context.Context, vol *types.Volume) types.OperationResult {
	entry := o.registry.entry(vol.Name)
	entry.opLock.Lock()
	defer entry.opLock.Unlock()

	backend, target, res := o.prepare(vol)
	if res != nil {
		return *res
	}

	if entry.current() == types.StateMounted {
		if probe := o.cachedProbe(ctx, vol, backend, target); !probe.Failed() {
			return types.ResultMounted()
		}
		// Unhealthy despite being marked mounted; fall through and remount.
		log.Warn().Str("volume", vol.Name).Msg("mounted volume failed health check, remounting")
	}

	entry.set(types.StateMounting, "")
	o.emit(common.EventVolumeUpdated, vol, types.StateMounting)

	result := o.bounded(ctx, backend.Mount, vol, target)
	if result.Failed() {
		entry.set(types.StateError, result.Error)
		o.emit(common.EventVolumeUpdated, vol, types.StateError)
		return result
	}

	entry.set(types.StateMounted, "")
	o.probeCache.Add(vol.Name, types.ResultMounted())
	o.emit(common.EventVolumeMounted, vol, types.StateMounted)
	log.Info().Str("volume", vol.Name).Str("target", target).Msg("volume mounted")
	return result
}

// Release brings the volume to the Unmounted state.
func (o *Orchestrator) Release(ctx context.Context, vol *types.Volume) types.OperationResult {
	entry := o.registry.entry(vol.Name)
	entry.opLock.Lock()
	defer entry.opLock.Unlock()

	backend, target, res := o.prepare(vol)
	if res != nil {
		return *res
	}

	o.probeCache.Remove(vol.Name)

	if entry.current() == types.StateUnmounted {
		return types.ResultUnmounted()
	}

	entry.set(types.StateUnmounting, "")
	o.emit(common.EventVolumeUpdated, vol, types.StateUnmounting)

	result := o.bounded(ctx, backend.Unmount, vol, target)
	if result.Failed() {
		entry.set(types.StateError, result.Error)
		o.emit(common.EventVolumeUpdated, vol, types.StateError)
		return result
	}

	entry.set(types.StateUnmounted, "")
	o.emit(common.EventVolumeUnmounted, vol, types.StateUnmounted)
	log.Info().Str("volume", vol.Name).Msg("volume unmounted")
	return result
}

// Probe health-checks the volume without mounting or unmounting anything.
// If another operation is in flight the probe reports Busy instead of
// queueing behind it.
func (o *Orchestrator) Probe(ctx context.Context, vol *types.Volume) types.OperationResult {
	entry := o.registry.entry(vol.Name)
	if !entry.opLock.TryLock() {
		return types.OperationResult{Status: types.StatusError, Kind: types.ErrKindBusy, Error: "operation in progress"}
	}
	defer entry.opLock.Unlock()

	backend, target, res := o.prepare(vol)
	if res != nil {
		return *res
	}

	result := o.bounded(ctx, backend.CheckHealth, vol, target)
	if result.Failed() {
		entry.set(types.StateError, result.Error)
		o.probeCache.Remove(vol.Name)
		o.emit(common.EventVolumeUpdated, vol, types.StateError)
		return result
	}

	entry.set(types.StateMounted, "")
	o.probeCache.Add(vol.Name, result)
	return result
}

// prepare validates config and capability support and resolves the backend
// and mount target. A non-nil result is a terminal error.
func (o *Orchestrator) prepare(vol *types.Volume) (Backend, string, *types.OperationResult) {
	if !vol.Config.Valid() {
		res := types.ResultError(types.ErrKindConfig, errors.New("invalid volume config: backend tag does not match populated config"))
		return nil, "", &res
	}

	if !o.caps.Supports(vol.Config.Backend, o.platform) {
		res := types.ResultError(types.ErrKindIO, errors.New("host tooling does not support backend "+string(vol.Config.Backend)))
		return nil, "", &res
	}

	backend, err := NewBackend(vol.Config.Backend, o.deps)
	if err != nil {
		res := types.ResultError(types.ErrKindConfig, err)
		return nil, "", &res
	}

	target, err := o.MountTarget(vol)
	if err != nil {
		res := types.ResultError(types.ErrKindConfig, err)
		return nil, "", &res
	}

	return backend, target, nil
}

type backendOp func(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult

// bounded runs one backend operation under the operation timeout. A deadline
// hit is surfaced as a Timeout error, never retried: a hung mount on a dead
// peer must not be silently retried into a resource leak. A result that
// succeeded right at the deadline stands; the share really is mounted.
func (o *Orchestrator) bounded(ctx context.Context, op backendOp, vol *types.Volume, target string) types.OperationResult {
	opCtx, cancel := context.WithTimeout(ctx, OperationTimeout)
	defer cancel()

	result := op(opCtx, &vol.Config, target)
	if result.Failed() && opCtx.Err() != nil && result.Kind != types.ErrKindTimeout {
		return types.ResultError(types.ErrKindTimeout, errors.New("operation timed out"))
	}
	return result
}

// cachedProbe returns a recent successful health check if one exists,
// otherwise runs CheckHealth under the operation timeout.
func (o *Orchestrator) cachedProbe(ctx context.Context, vol *types.Volume, backend Backend, target string) types.OperationResult {
	if cached, ok := o.probeCache.Get(vol.Name); ok && !cached.Failed() {
		return cached
	}

	result := o.bounded(ctx, backend.CheckHealth, vol, target)
	if !result.Failed() {
		o.probeCache.Add(vol.Name, result)
	}
	return result
}

func (o *Orchestrator) emit(t common.EventType, vol *types.Volume, state types.MountState) {
	if o.events == nil {
		return
	}
	o.events.Emit(common.VolumeEvent(t, vol.ExternalId, state.String()))
}
