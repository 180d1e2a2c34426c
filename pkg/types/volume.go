package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// BackendKind discriminates the VolumeConfig tagged union.
type BackendKind string

const (
	BackendDirectory BackendKind = "directory"
	BackendSmb       BackendKind = "smb"
	BackendNfs       BackendKind = "nfs"
)

// SecretRef is an opaque handle to a stored credential. It is resolved to a
// plaintext value only at the moment of use and is the only credential form
// that may be persisted or logged.
type SecretRef string

// VolumeConfig describes how a volume is backed. Exactly one of the backend
// config pointers is set, matching Backend.
type VolumeConfig struct {
	Backend   BackendKind      `json:"backend"`
	Directory *DirectoryConfig `json:"directory,omitempty"`
	Smb       *SmbConfig       `json:"smb,omitempty"`
	Nfs       *NfsConfig       `json:"nfs,omitempty"`
}

type DirectoryConfig struct {
	Path string `json:"path"`
}

type SmbConfig struct {
	Server   string    `json:"server"`
	Share    string    `json:"share"`
	Port     int       `json:"port,omitempty"`
	Username string    `json:"username"`
	Password SecretRef `json:"password"`
	Domain   string    `json:"domain,omitempty"`
	Vers     string    `json:"vers,omitempty"`
	ReadOnly bool      `json:"read_only,omitempty"`
}

type NfsConfig struct {
	Server string `json:"server"`
	Port   int    `json:"port,omitempty"`
	Path   string `json:"path"`
}

// Valid reports whether exactly one backend config is set and matches the
// discriminant.
func (c *VolumeConfig) Valid() bool {
	switch c.Backend {
	case BackendDirectory:
		return c.Directory != nil && c.Smb == nil && c.Nfs == nil
	case BackendSmb:
		return c.Smb != nil && c.Directory == nil && c.Nfs == nil
	case BackendNfs:
		return c.Nfs != nil && c.Directory == nil && c.Smb == nil
	default:
		return false
	}
}

// MountState represents the lifecycle state of a volume's mount.
type MountState int

const (
	StateUnmounted MountState = iota
	StateMounting
	StateMounted
	StateUnmounting
	StateError
)

func (s MountState) String() string {
	switch s {
	case StateUnmounted:
		return "unmounted"
	case StateMounting:
		return "mounting"
	case StateMounted:
		return "mounted"
	case StateUnmounting:
		return "unmounting"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// MountState travels over the API as its string form.
func (s MountState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *MountState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "unmounted":
		*s = StateUnmounted
	case "mounting":
		*s = StateMounting
	case "mounted":
		*s = StateMounted
	case "unmounting":
		*s = StateUnmounting
	case "error":
		*s = StateError
	default:
		return fmt.Errorf("unknown mount state %q", name)
	}
	return nil
}

// MountStatus is the terminal status of a single backend operation.
type MountStatus string

const (
	StatusMounted   MountStatus = "mounted"
	StatusUnmounted MountStatus = "unmounted"
	StatusError     MountStatus = "error"
)

// ErrorKind classifies a failed operation. The orchestrator uses it to decide
// the single built-in recovery (stale-mount cleanup) and the single built-in
// retry (legacy dialect retry); everything else is surfaced unchanged.
type ErrorKind string

const (
	ErrKindNone           ErrorKind = ""
	ErrKindConfig         ErrorKind = "config_mismatch"
	ErrKindAuth           ErrorKind = "auth_failure"
	ErrKindUnreachable    ErrorKind = "unreachable"
	ErrKindAlreadyMounted ErrorKind = "already_mounted_elsewhere"
	ErrKindTimeout        ErrorKind = "timeout"
	ErrKindBusy           ErrorKind = "busy"
	ErrKindIO             ErrorKind = "io_failure"
)

// OperationResult is the only channel through which backend failures surface.
type OperationResult struct {
	Status MountStatus `json:"status"`
	Kind   ErrorKind   `json:"kind,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func (r OperationResult) Failed() bool {
	return r.Status == StatusError
}

// ResultMounted and friends build the common results.
func ResultMounted() OperationResult {
	return OperationResult{Status: StatusMounted}
}

func ResultUnmounted() OperationResult {
	return OperationResult{Status: StatusUnmounted}
}

func ResultError(kind ErrorKind, err error) OperationResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return OperationResult{Status: StatusError, Kind: kind, Error: msg}
}

// Volume is a persisted volume record. Name is the short stable identifier
// used for the per-volume mount point under the mount base directory.
type Volume struct {
	Id         uint         `json:"id"`
	ExternalId string       `json:"external_id"`
	Name       string       `json:"name"`
	Config     VolumeConfig `json:"config"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
