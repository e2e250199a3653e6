// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"

	"pysolate/internal/settings"
)

// ErrInvalidUID is the sentinel error wrapped by InvalidUIDError.
var ErrInvalidUID = errors.New("invalid uid")

type (
	// InvalidUIDError is returned when a negative uid is requested.
	InvalidUIDError struct {
		Value int
	}

	// Flags are the per-launch capability requests.
	// PassTmp and Persist are the negations of --no-pass-tmp and --no-persist.
	Flags struct {
		PassDir     bool
		PassTmp     bool
		UID         int
		Persist     bool
		Interactive bool
		Privileged  bool
	}

	// Request is the input of a single resolution.
	Request struct {
		// FullCommand is the command line to run inside the container.
		FullCommand string
		// CommandKey overrides the key parsed from FullCommand when set.
		CommandKey settings.CommandKey
		Flags      Flags
		// Reset discards any stored Configuration and rebuilds it from Flags.
		Reset bool
	}

	// EffectiveConfig is the configuration actually used for one launch.
	EffectiveConfig struct {
		CommandKey  settings.CommandKey
		FullCommand string
		PassDir     bool
		PassTmp     bool
		UID         int
		Persist     bool
		Interactive bool
		Privileged  bool
		// Stored is the record that was merged (after any write).
		Stored settings.Configuration
		// Created is true when Stored was written by this resolution.
		Created bool
	}

	// ConfigurationStore is the subset of settings.Store the resolver needs.
	ConfigurationStore interface {
		Get(ctx context.Context, key settings.CommandKey) (settings.Configuration, bool, error)
		Put(ctx context.Context, cfg settings.Configuration) error
	}

	// Resolver computes EffectiveConfig values against a store.
	Resolver struct {
		store ConfigurationStore
	}
)

// DefaultFlags returns the flags of a launch where no option was given.
func DefaultFlags() Flags {
	return Flags{
		UID:     settings.DefaultUID,
		PassTmp: true,
		Persist: true,
	}
}

// Error implements the error interface.
func (e *InvalidUIDError) Error() string {
	return fmt.Sprintf("invalid uid %d: must be 0 or greater", e.Value)
}

// Unwrap returns ErrInvalidUID for errors.Is() compatibility.
func (e *InvalidUIDError) Unwrap() error { return ErrInvalidUID }

// Validate returns an error if the flags cannot describe a launch.
func (f Flags) Validate() error {
	if f.UID < 0 {
		return &InvalidUIDError{Value: f.UID}
	}
	return nil
}

// NewConfiguration builds a fresh Configuration purely from the flags.
// Extra options are applied last.
func (f Flags) NewConfiguration(fullCommand string, opts ...settings.Option) settings.Configuration {
	return settings.NewConfiguration(fullCommand, append([]settings.Option{
		settings.WithPassDir(f.PassDir),
		settings.WithPassTmp(f.PassTmp),
		settings.WithUID(f.UID),
		settings.WithPersist(f.Persist),
		settings.WithInteractive(f.Interactive),
		settings.WithPrivileged(f.Privileged),
	}, opts...)...)
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store ConfigurationStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve loads the stored Configuration for the request's command key,
// (re)creates it from the flags when absent or when a reset is requested,
// and merges it with the flags.
func (r *Resolver) Resolve(ctx context.Context, req Request) (EffectiveConfig, error) {
	if err := req.Flags.Validate(); err != nil {
		return EffectiveConfig{}, err
	}
	fresh := req.Flags.NewConfiguration(req.FullCommand, settings.WithCommandKey(string(req.CommandKey)))
	key := fresh.CommandKey()

	stored, found, err := r.store.Get(ctx, key)
	if err != nil {
		return EffectiveConfig{}, fmt.Errorf("load settings for %q: %w", key, err)
	}

	created := false
	if !found || req.Reset {
		if err := r.store.Put(ctx, fresh); err != nil {
			return EffectiveConfig{}, fmt.Errorf("save settings for %q: %w", key, err)
		}
		stored, created = fresh, true
	}

	eff := Merge(stored, req.Flags)
	eff.FullCommand = fresh.FullCommand()
	eff.Created = created
	return eff, nil
}

// Merge ORs every boolean of stored with the matching flag and takes the uid
// from the flags alone.
func Merge(stored settings.Configuration, flags Flags) EffectiveConfig {
	return EffectiveConfig{
		CommandKey:  stored.CommandKey(),
		FullCommand: stored.FullCommand(),
		PassDir:     stored.PassDir() || flags.PassDir,
		PassTmp:     stored.PassTmp() || flags.PassTmp,
		UID:         flags.UID,
		Persist:     stored.Persist() || flags.Persist,
		Interactive: stored.Interactive() || flags.Interactive,
		Privileged:  stored.Privileged() || flags.Privileged,
		Stored:      stored,
	}
}
