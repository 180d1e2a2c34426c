package volume

import (
	"context"
	"fmt"
	"os"

	"github.com/JBibu/zerobyte/pkg/common"
	"github.com/JBibu/zerobyte/pkg/types"
)

// NfsBackend mounts NFS exports (POSIX only). Unlike SMB, a target occupied
// by a foreign mount is surfaced as an error rather than force-unmounted:
// automatic recovery has only been validated for CIFS mounts.
type NfsBackend struct {
	platform Platform
	runner   common.Runner
	mounts   MountTable
}

func (b *NfsBackend) Mount(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendNfs || cfg.Nfs == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendNfs, Got: cfg.Backend})
	}

	if res := b.CheckHealth(ctx, cfg, target); !res.Failed() {
		return types.ResultMounted()
	}

	fstype, mounted, err := b.mounts.FstypeAt(target)
	if err != nil {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("read mount table: %w", err))
	}
	if mounted && !isNFS(fstype) {
		return types.ResultError(types.ErrKindAlreadyMounted, fmt.Errorf("%s is mounted as %s, expected nfs", target, fstype))
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("create mount point: %w", err))
	}

	source := fmt.Sprintf("%s:%s", cfg.Nfs.Server, cfg.Nfs.Path)
	var options []string
	if cfg.Nfs.Port != 0 {
		options = append(options, fmt.Sprintf("port=%d", cfg.Nfs.Port))
	}

	mount := b.platform.MountCommand("nfs", source, target, options)
	result, err := b.runner.Run(ctx, mount.Name, mount.Args...)
	if kind, cerr := classifyRun(result, err); kind != types.ErrKindNone {
		return types.ResultError(kind, cerr)
	}
	return types.ResultMounted()
}

func (b *NfsBackend) Unmount(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendNfs || cfg.Nfs == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendNfs, Got: cfg.Backend})
	}

	_, mounted, err := b.mounts.FstypeAt(target)
	if err != nil {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("read mount table: %w", err))
	}
	if !mounted {
		return types.ResultUnmounted()
	}

	unmount := b.platform.UnmountCommand(target, false)
	result, err := b.runner.Run(ctx, unmount.Name, unmount.Args...)
	if kind, cerr := classifyRun(result, err); kind != types.ErrKindNone {
		return types.ResultError(kind, cerr)
	}

	os.Remove(target)
	return types.ResultUnmounted()
}

func (b *NfsBackend) CheckHealth(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendNfs || cfg.Nfs == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendNfs, Got: cfg.Backend})
	}

	fstype, mounted, err := b.mounts.FstypeAt(target)
	if err != nil {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("read mount table: %w", err))
	}
	if !mounted {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("%s is not mounted", target))
	}
	if !isNFS(fstype) {
		return types.ResultError(types.ErrKindAlreadyMounted, fmt.Errorf("%s is mounted as %s, expected nfs", target, fstype))
	}

	if _, err := os.ReadDir(target); err != nil {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("list %s: %w", target, err))
	}
	return types.ResultMounted()
}

func isNFS(fstype string) bool {
	return fstype == "nfs" || fstype == "nfs4"
}
