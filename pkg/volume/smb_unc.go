package volume

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/JBibu/zerobyte/pkg/common"
	"github.com/JBibu/zerobyte/pkg/secrets"
	"github.com/JBibu/zerobyte/pkg/types"
)

// SmbUNCBackend reaches SMB shares over UNC paths (Windows). No local mount
// point exists; mounting means authenticating the share connection, and
// health means the UNC path is both reachable and listable.
type SmbUNCBackend struct {
	platform Platform
	runner   common.Runner
	secrets  secrets.Resolver
}

func (b *SmbUNCBackend) Mount(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendSmb || cfg.Smb == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendSmb, Got: cfg.Backend})
	}

	// An already-usable share needs no new connection.
	if res := b.CheckHealth(ctx, cfg, target); !res.Failed() {
		return types.ResultMounted()
	}

	password, err := b.secrets.Resolve(ctx, cfg.Smb.Password)
	if err != nil {
		return types.ResultError(types.ErrKindAuth, fmt.Errorf("resolve credentials: %w", err))
	}

	// /persistent:no keeps stale credentials from accumulating across
	// reboots.
	connect := b.platform.ConnectCommand(target, cfg.Smb.Username, cfg.Smb.Domain, password)
	result, err := b.runner.Run(ctx, connect.Name, connect.Args...)
	if kind, cerr := classifyRun(result, err); kind != types.ErrKindNone {
		return types.ResultError(kind, cerr)
	}

	// Authentication succeeding does not guarantee usable access; verify the
	// share actually lists.
	if res := b.CheckHealth(ctx, cfg, target); res.Failed() {
		return res
	}
	return types.ResultMounted()
}

func (b *SmbUNCBackend) Unmount(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendSmb || cfg.Smb == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendSmb, Got: cfg.Backend})
	}

	disconnect := b.platform.DisconnectCommand(target)
	result, err := b.runner.Run(ctx, disconnect.Name, disconnect.Args...)

	// "The network connection could not be found" means there is nothing to
	// disconnect; treat as already unmounted.
	if result.ExitCode != 0 && strings.Contains(strings.ToLower(result.Stderr+result.Stdout), "system error 2250") {
		return types.ResultUnmounted()
	}

	if kind, cerr := classifyRun(result, err); kind != types.ErrKindNone {
		return types.ResultError(kind, cerr)
	}
	return types.ResultUnmounted()
}

func (b *SmbUNCBackend) CheckHealth(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendSmb || cfg.Smb == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendSmb, Got: cfg.Backend})
	}

	info, err := os.Stat(target)
	if err != nil {
		return types.ResultError(types.ErrKindUnreachable, fmt.Errorf("stat %s: %w", target, err))
	}
	if !info.IsDir() {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("%s is not a directory", target))
	}

	// A share that stats but refuses to list is not usable for backups.
	if _, err := os.ReadDir(target); err != nil {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("share reachable but not listable: %w", err))
	}
	return types.ResultMounted()
}
