package volume

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/JBibu/zerobyte/pkg/common"
	"github.com/JBibu/zerobyte/pkg/secrets"
	"github.com/JBibu/zerobyte/pkg/types"
)

// Backend implements mount, unmount, and health checking for one backend
// kind. All three operations are idempotent: mounting a healthy mounted
// volume returns Mounted without re-running the mount tool, unmounting an
// unmounted volume returns Unmounted without error, and CheckHealth never
// mutates anything.
type Backend interface {
	Mount(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult
	Unmount(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult
	CheckHealth(ctx context.Context, cfg *types.VolumeConfig, target string) types.OperationResult
}

// Deps carries the collaborators injected into every backend.
type Deps struct {
	Platform Platform
	Runner   common.Runner
	Secrets  secrets.Resolver
	Mounts   MountTable
}

// NewBackend returns the strategy for the given backend kind. Platform
// variance is resolved here, once: strategies themselves never branch on the
// operating system.
func NewBackend(kind types.BackendKind, deps Deps) (Backend, error) {
	switch kind {
	case types.BackendDirectory:
		return &DirectoryBackend{}, nil
	case types.BackendSmb:
		if deps.Platform.IsWindows() {
			return &SmbUNCBackend{platform: deps.Platform, runner: deps.Runner, secrets: deps.Secrets}, nil
		}
		return &SmbBackend{platform: deps.Platform, runner: deps.Runner, secrets: deps.Secrets, mounts: deps.Mounts}, nil
	case types.BackendNfs:
		if deps.Platform.IsWindows() {
			return nil, fmt.Errorf("nfs backend is not supported on windows")
		}
		return &NfsBackend{platform: deps.Platform, runner: deps.Runner, mounts: deps.Mounts}, nil
	default:
		return nil, fmt.Errorf("unknown backend kind: %s", kind)
	}
}

// Capabilities records which external mount tooling is present on the host.
// Detected once at startup and passed by value; never re-read at call time.
type Capabilities struct {
	MountCifs bool
	MountNfs  bool
	Rclone    bool
}

// DetectCapabilities probes the host for the external tools backends depend
// on.
func DetectCapabilities() Capabilities {
	return Capabilities{
		MountCifs: lookPathOk("mount.cifs"),
		MountNfs:  lookPathOk("mount.nfs"),
		Rclone:    lookPathOk("rclone"),
	}
}

func lookPathOk(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Supports reports whether the host tooling can mount the given backend kind.
// Directory volumes need no external tooling, and Windows SMB uses net use,
// which is always present.
func (c Capabilities) Supports(kind types.BackendKind, platform Platform) bool {
	switch kind {
	case types.BackendDirectory:
		return true
	case types.BackendSmb:
		return platform.IsWindows() || c.MountCifs
	case types.BackendNfs:
		return !platform.IsWindows() && c.MountNfs
	default:
		return false
	}
}
