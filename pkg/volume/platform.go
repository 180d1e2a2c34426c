package volume

import (
	"fmt"
	"path"
	"runtime"
	"strings"
)

// Command is an external command template produced by a Platform.
type Command struct {
	Name string
	Args []string
}

// Platform supplies the OS-conditional pieces of mount handling: path
// normalization, UNC path building, and the external command shapes for
// mounting and unmounting. Backends receive a Platform at construction and
// never inspect the operating system themselves.
type Platform interface {
	// IsWindows reports whether this platform uses UNC paths and network
	// share connections instead of local mount points.
	IsWindows() bool

	// NormalizePath returns a clean absolute path, or an error if the input
	// cannot be made absolute.
	NormalizePath(p string) (string, error)

	// BuildUNCPath converts server/share plus an optional POSIX-style
	// subpath into a UNC string.
	BuildUNCPath(server, share, subpath string) string

	// MountCommand returns the command that mounts a network filesystem of
	// the given type at target (POSIX only).
	MountCommand(fstype, source, target string, options []string) Command

	// UnmountCommand returns the command that unmounts target (POSIX only).
	UnmountCommand(target string, force bool) Command

	// ConnectCommand returns the command that authenticates against a UNC
	// share (Windows only). Credentials are never persisted across reboots.
	ConnectCommand(uncPath, username, domain, password string) Command

	// DisconnectCommand returns the command that drops a UNC share
	// connection (Windows only).
	DisconnectCommand(uncPath string) Command
}

// DetectPlatform returns the Platform for the running OS.
func DetectPlatform() Platform {
	if runtime.GOOS == "windows" {
		return WindowsPlatform{}
	}
	return PosixPlatform{}
}

// PosixPlatform mounts network shares at local mount points using the system
// mount/umount tools.
type PosixPlatform struct{}

func (PosixPlatform) IsWindows() bool { return false }

func (PosixPlatform) NormalizePath(p string) (string, error) {
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("path must be absolute: %s", p)
	}
	return path.Clean(p), nil
}

func (PosixPlatform) BuildUNCPath(server, share, subpath string) string {
	return buildUNC(server, share, subpath)
}

func (PosixPlatform) MountCommand(fstype, source, target string, options []string) Command {
	args := []string{"-t", fstype, source, target}
	if len(options) > 0 {
		args = append(args, "-o", strings.Join(options, ","))
	}
	return Command{Name: "mount", Args: args}
}

func (PosixPlatform) UnmountCommand(target string, force bool) Command {
	if force {
		return Command{Name: "umount", Args: []string{"-f", target}}
	}
	return Command{Name: "umount", Args: []string{target}}
}

func (PosixPlatform) ConnectCommand(uncPath, username, domain, password string) Command {
	return Command{}
}

func (PosixPlatform) DisconnectCommand(uncPath string) Command {
	return Command{}
}

// WindowsPlatform connects to network shares over UNC paths with net use.
// There is no local mount point.
type WindowsPlatform struct{}

func (WindowsPlatform) IsWindows() bool { return true }

func (WindowsPlatform) NormalizePath(p string) (string, error) {
	p = strings.ReplaceAll(p, "/", `\`)

	// UNC paths are already absolute.
	if strings.HasPrefix(p, `\\`) {
		return cleanBackslashes(p, true), nil
	}

	if len(p) < 2 || p[1] != ':' || !isDriveLetter(p[0]) {
		return "", fmt.Errorf("path must be drive-qualified: %s", p)
	}
	if len(p) == 2 || p[2] != '\\' {
		return "", fmt.Errorf("path must be absolute: %s", p)
	}
	return cleanBackslashes(p, false), nil
}

func (WindowsPlatform) BuildUNCPath(server, share, subpath string) string {
	return buildUNC(server, share, subpath)
}

func (WindowsPlatform) MountCommand(fstype, source, target string, options []string) Command {
	return Command{}
}

func (WindowsPlatform) UnmountCommand(target string, force bool) Command {
	return Command{}
}

func (WindowsPlatform) ConnectCommand(uncPath, username, domain, password string) Command {
	user := username
	if domain != "" {
		user = domain + `\` + username
	}
	return Command{
		Name: "net",
		Args: []string{"use", uncPath, password, "/user:" + user, "/persistent:no"},
	}
}

func (WindowsPlatform) DisconnectCommand(uncPath string) Command {
	return Command{Name: "net", Args: []string{"use", uncPath, "/delete", "/y"}}
}

func buildUNC(server, share, subpath string) string {
	unc := `\\` + server + `\` + share
	subpath = strings.Trim(strings.ReplaceAll(subpath, "/", `\`), `\`)
	if subpath != "" {
		unc += `\` + subpath
	}
	return unc
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// cleanBackslashes collapses repeated separators and drops a trailing one.
// UNC paths keep their leading double backslash.
func cleanBackslashes(p string, unc bool) string {
	prefix := ""
	if unc {
		prefix = `\\`
		p = strings.TrimPrefix(p, `\\`)
	}

	parts := []string{}
	for _, part := range strings.Split(p, `\`) {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}

	// A bare drive ("C:") is cwd-relative on Windows; keep the root slash.
	if !unc && len(parts) == 1 {
		return parts[0] + `\`
	}
	return prefix + strings.Join(parts, `\`)
}
