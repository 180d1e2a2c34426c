package types

import (
	"errors"
	"fmt"
)

// ErrVolumeNotFound is returned when a volume record does not exist
type ErrVolumeNotFound struct {
	ExternalId string
	Name       string
}

func (e *ErrVolumeNotFound) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("volume not found: %s", e.Name)
	}
	return fmt.Sprintf("volume not found: %s", e.ExternalId)
}

// From checks if the given error is an ErrVolumeNotFound
func (e *ErrVolumeNotFound) From(err error) bool {
	var notFound *ErrVolumeNotFound
	return errors.As(err, &notFound)
}

// ErrSecretNotFound is returned when a secret reference cannot be resolved
type ErrSecretNotFound struct {
	Ref string
}

func (e *ErrSecretNotFound) Error() string {
	return fmt.Sprintf("secret not found: %s", e.Ref)
}

// From checks if the given error is an ErrSecretNotFound
func (e *ErrSecretNotFound) From(err error) bool {
	var notFound *ErrSecretNotFound
	return errors.As(err, &notFound)
}

// ErrVolumeBusy is returned when an operation is requested while another
// operation on the same volume is still in flight
type ErrVolumeBusy struct {
	Name string
}

func (e *ErrVolumeBusy) Error() string {
	return fmt.Sprintf("volume busy: %s", e.Name)
}

// ErrConfigMismatch is returned when a backend receives a config whose tag
// does not match the backend kind. This is a programmer error and is never
// retried.
type ErrConfigMismatch struct {
	Want BackendKind
	Got  BackendKind
}

func (e *ErrConfigMismatch) Error() string {
	return fmt.Sprintf("config mismatch: backend %s received %s config", e.Want, e.Got)
}
