// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"context"
	"errors"
	"fmt"
)

const (
	// BackendBolt stores configurations in a BoltDB file.
	BackendBolt Backend = "bolt"
	// BackendSQLite stores configurations in a SQLite database.
	BackendSQLite Backend = "sqlite"
)

var (
	// ErrStoreUnavailable is the sentinel error wrapped by StoreUnavailableError.
	ErrStoreUnavailable = errors.New("settings store unavailable")

	// ErrInvalidBackend is returned when a Backend value is not recognized.
	ErrInvalidBackend = errors.New("invalid settings backend")
)

type (
	// Store maps command keys to their saved Configuration.
	//
	// Readers may run concurrently. Writers are not serialized against each
	// other: two launches of the same command racing on Put leave whichever
	// record was written last.
	Store interface {
		// Get returns the configuration stored for key. The boolean is false
		// when the key has never been configured.
		Get(ctx context.Context, key CommandKey) (Configuration, bool, error)
		// Put stores cfg under cfg.CommandKey(), replacing any previous record.
		Put(ctx context.Context, cfg Configuration) error
		// Keys lists every configured command key in ascending order.
		Keys(ctx context.Context) ([]CommandKey, error)
		// Close releases the backing file.
		Close() error
	}

	// Backend names a Store implementation.
	Backend string

	// InvalidBackendError is returned when a Backend value is not recognized.
	InvalidBackendError struct {
		Value Backend
	}

	// StoreUnavailableError is returned when the backing file cannot be
	// opened or created.
	StoreUnavailableError struct {
		Path  string
		Cause error
	}
)

// Error implements the error interface.
func (e *InvalidBackendError) Error() string {
	return fmt.Sprintf("invalid settings backend %q (valid: bolt, sqlite)", e.Value)
}

// Unwrap returns ErrInvalidBackend for errors.Is() compatibility.
func (e *InvalidBackendError) Unwrap() error { return ErrInvalidBackend }

// Validate returns an error if the Backend is not one of the defined backends.
// The zero value ("") is valid and selects BackendBolt.
func (b Backend) Validate() error {
	switch b {
	case BackendBolt, BackendSQLite, "":
		return nil
	default:
		return &InvalidBackendError{Value: b}
	}
}

// String returns the string representation of the Backend.
func (b Backend) String() string { return string(b) }

// Error implements the error interface.
func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("settings store %s is unavailable: %v", e.Path, e.Cause)
}

// Unwrap returns ErrStoreUnavailable so both the sentinel and the cause match errors.Is.
func (e *StoreUnavailableError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Cause} }

// Open opens (creating if needed) the store for backend at path.
func Open(ctx context.Context, backend Backend, path string) (Store, error) {
	switch backend {
	case BackendBolt, "":
		return OpenBolt(path)
	case BackendSQLite:
		return OpenSQLite(ctx, path)
	default:
		return nil, &InvalidBackendError{Value: backend}
	}
}
