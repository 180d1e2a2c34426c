package volume

import (
	"context"
	"fmt"
	"os"

	"github.com/JBibu/zerobyte/pkg/types"
)

// DirectoryBackend backs a volume with a plain local directory. Mount and
// unmount are no-ops; health verifies the path is an existing directory.
type DirectoryBackend struct{}

func (b *DirectoryBackend) Mount(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendDirectory || cfg.Directory == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendDirectory, Got: cfg.Backend})
	}

	if res := b.CheckHealth(ctx, cfg, target); res.Failed() {
		return res
	}
	return types.ResultMounted()
}

func (b *DirectoryBackend) Unmount(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendDirectory || cfg.Directory == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendDirectory, Got: cfg.Backend})
	}
	return types.ResultUnmounted()
}

func (b *DirectoryBackend) CheckHealth(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult {
	if cfg.Backend != types.BackendDirectory || cfg.Directory == nil {
		return types.ResultError(types.ErrKindConfig, &types.ErrConfigMismatch{Want: types.BackendDirectory, Got: cfg.Backend})
	}

	info, err := os.Stat(target)
	if err != nil {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("stat %s: %w", target, err))
	}
	if !info.IsDir() {
		return types.ResultError(types.ErrKindIO, fmt.Errorf("%s is not a directory", target))
	}
	return types.ResultMounted()
}
