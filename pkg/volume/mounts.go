package volume

import (
	"github.com/shirou/gopsutil/v4/disk"
)

// MountTable answers what filesystem, if any, is mounted at a given path.
// Backends use it to detect stale mounts (a target occupied by a mount of an
// unexpected type) and to make unmount idempotent.
type MountTable interface {
	// FstypeAt returns the filesystem type mounted exactly at target, and
	// whether target is a mount point at all.
	FstypeAt(target string) (string, bool, error)
}

// SystemMountTable reads the host mount table.
type SystemMountTable struct{}

func (SystemMountTable) FstypeAt(target string) (string, bool, error) {
	partitions, err := disk.Partitions(true)
	if err != nil {
		return "", false, err
	}

	for _, p := range partitions {
		if p.Mountpoint == target {
			return p.Fstype, true, nil
		}
	}
	return "", false, nil
}
