// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion is the version written into every stored record.
const SchemaVersion = 1

// ErrUnsupportedSchema is returned when a stored record was written by a newer
// or unknown schema.
var ErrUnsupportedSchema = errors.New("unsupported settings schema")

type (
	record struct {
		SchemaVersion int                 `json:"schema_version"`
		Configuration configurationRecord `json:"configuration"`
	}

	configurationRecord struct {
		CommandKey  string `json:"command_key"`
		FullCommand string `json:"full_command"`
		PassDir     bool   `json:"pass_dir"`
		PassTmp     bool   `json:"pass_tmp"`
		UID         int    `json:"uid"`
		Persist     bool   `json:"persist"`
		Interactive bool   `json:"interactive"`
		Privileged  bool   `json:"privileged"`
	}

	// UnsupportedSchemaError reports a record with an unknown schema version.
	UnsupportedSchemaError struct {
		Key     CommandKey
		Version int
	}
)

// Error implements the error interface.
func (e *UnsupportedSchemaError) Error() string {
	return fmt.Sprintf("settings for %q use schema version %d (supported: %d)", e.Key, e.Version, SchemaVersion)
}

// Unwrap returns ErrUnsupportedSchema for errors.Is() compatibility.
func (e *UnsupportedSchemaError) Unwrap() error { return ErrUnsupportedSchema }

func encodeConfiguration(c Configuration) ([]byte, error) {
	payload, err := json.Marshal(record{
		SchemaVersion: SchemaVersion,
		Configuration: configurationRecord{
			CommandKey:  string(c.commandKey),
			FullCommand: c.fullCommand,
			PassDir:     c.passDir,
			PassTmp:     c.passTmp,
			UID:         c.uid,
			Persist:     c.persist,
			Interactive: c.interactive,
			Privileged:  c.privileged,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal configuration: %w", err)
	}
	return payload, nil
}

func decodeConfiguration(key CommandKey, payload []byte) (Configuration, error) {
	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return Configuration{}, fmt.Errorf("unmarshal configuration %q: %w", key, err)
	}
	if rec.SchemaVersion != SchemaVersion {
		return Configuration{}, &UnsupportedSchemaError{Key: key, Version: rec.SchemaVersion}
	}
	r := rec.Configuration
	// The storage key is authoritative over the payload copy.
	return Configuration{
		commandKey:  key,
		fullCommand: r.FullCommand,
		passDir:     r.PassDir,
		passTmp:     r.PassTmp,
		uid:         r.UID,
		persist:     r.Persist,
		interactive: r.Interactive,
		privileged:  r.Privileged,
	}, nil
}
