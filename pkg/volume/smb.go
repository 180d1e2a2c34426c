package volume

import (
	"context"
	"fmt"
	"os"

	"github.com/JBibu/zerobyte/pkg/common"
	"github.com/JBibu/zerobyte/pkg/secrets"
	"github.com/JBibu/zerobyte/pkg/types"
)

// SmbBackend mounts SMB shares as CIFS kernel mounts (POSIX). The share is
// mounted at a managed mount point owned by the orchestrator.
type SmbBackend struct {
	platform Platform
	runner   common.Runner
	secrets  secrets.Resolver
	mounts   MountTable
}

func (b *SmbBackend) Mount(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendSmb || cfg.Smb == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendSmb, Got: cfg.Backend})
	}

	// Already mounted and healthy: nothing to do, and no mount command runs.
	if res := b.CheckHealth(ctx, cfg, target); !res.Failed() {
		return types.ResultMounted()
	}

	// A target occupied by any existing mount is stale at this point (either
	// the wrong filesystem type or an unhealthy CIFS mount). Force-unmount
	// before remounting.
	_, mounted, err := b.mounts.FstypeAt(target)
	if err != nil {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("read mount table: %w", err))
	}
	if mounted {
		unmount := b.platform.UnmountCommand(target, true)
		result, err := b.runner.Run(ctx, unmount.Name, unmount.Args...)
		if kind, cerr := classifyRun(result, err); kind != types.ErrKindNone {
			return types.ResultError(types.ErrKindAlreadyMounted, fmt.Errorf("stale mount cleanup: %w", cerr))
		}
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("create mount point: %w", err))
	}

	password, err := b.secrets.Resolve(ctx, cfg.Smb.Password)
	if err != nil {
		return types.ResultError(types.ErrKindAuth, fmt.Errorf("resolve credentials: %w", err))
	}

	source := "//" + cfg.Smb.Server + "/" + cfg.Smb.Share
	options := b.mountOptions(cfg.Smb, password)

	mount := b.platform.MountCommand("cifs", source, target, options)
	result, err := b.runner.Run(ctx, mount.Name, mount.Args...)
	kind, cerr := classifyRun(result, err)
	if kind == types.ErrKindNone {
		return types.ResultMounted()
	}
	if kind == types.ErrKindTimeout {
		return types.ResultError(kind, cerr)
	}

	// Some servers only speak older dialects. Retry exactly once with legacy
	// security before surfacing the failure; the default attempt stays
	// strict.
	mount = b.platform.MountCommand("cifs", source, target, append(options, "sec=ntlm"))
	result, err = b.runner.Run(ctx, mount.Name, mount.Args...)
	if kind, _ = classifyRun(result, err); kind == types.ErrKindNone {
		return types.ResultMounted()
	}

	// Report the original failure; the legacy retry was a recovery attempt,
	// not the authoritative error.
	return types.ResultError(kind, cerr)
}

func (b *SmbBackend) Unmount(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendSmb || cfg.Smb == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendSmb, Got: cfg.Backend})
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

	// The mount point belongs to this volume; remove it so unmounted volumes
	// leave no empty directories under the mount base.
	os.Remove(target)

	return types.ResultUnmounted()
}

func (b *SmbBackend) CheckHealth(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendSmb || cfg.Smb == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendSmb, Got: cfg.Backend})
	}

	fstype, mounted, err := b.mounts.FstypeAt(target)
	if err != nil {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("read mount table: %w", err))
	}
	if !mounted {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("%s is not mounted", target))
	}
	if !isCIFS(fstype) {
		return types.ResultError(types.ErrKindAlreadyMounted, fmt.Errorf("%s is mounted as %s, expected cifs", target, fstype))
	}

	if _, err := os.ReadDir(target); err != nil {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("list %s: %w", target, err))
	}
	return types.ResultMounted()
}

// mountOptions builds the -o option list. The resolved password goes straight
// into the argument vector; it is never logged or retained.
func (b *SmbBackend) mountOptions(cfg *types.SmbConfig, password string) []string {
	options := []string{
		"user=" + cfg.Username,
		"pass=" + password,
		fmt.Sprintf("uid=%d", os.Getuid()),
		fmt.Sprintf("gid=%d", os.Getgid()),
	}
	if cfg.Domain != "" {
		options = append(options, "domain="+cfg.Domain)
	}
	if cfg.Vers != "" {
		options = append(options, "vers="+cfg.Vers)
	}
	if cfg.Port != 0 {
		options = append(options, fmt.Sprintf("port=%d", cfg.Port))
	}
	if cfg.ReadOnly {
		options = append(options, "ro")
	}
	return options
}

func isCIFS(fstype string) bool {
	return fstype == "cifs" || fstype == "smb3"
}
