// SPDX-License-Identifier: MPL-2.0

package invocation

import (
	"fmt"
	"io"

	"pysolate/internal/resolve"

	"github.com/pelletier/go-toml/v2"
)

// report is the TOML document written by Report.
type report struct {
	Command       string   `toml:"command"`
	Key           string   `toml:"key"`
	UID           int      `toml:"uid"`
	PassDir       bool     `toml:"pass_dir"`
	PassTmp       bool     `toml:"pass_tmp"`
	Persist       bool     `toml:"persist"`
	Interactive   bool     `toml:"interactive"`
	Privileged    bool     `toml:"privileged"`
	StoredCreated bool     `toml:"stored_created"`
	Argv          []string `toml:"argv,multiline"`
}

// Report writes the resolved configuration and the complete argv of inv to w
// as a TOML document followed by a copy-pasteable command line.
func Report(w io.Writer, inv Invocation, cfg resolve.EffectiveConfig) error {
	doc := report{
		Command:       cfg.FullCommand,
		Key:           cfg.CommandKey.String(),
		UID:           cfg.UID,
		PassDir:       cfg.PassDir,
		PassTmp:       cfg.PassTmp,
		Persist:       cfg.Persist,
		Interactive:   cfg.Interactive,
		Privileged:    cfg.Privileged,
		StoredCreated: cfg.Created,
		Argv:          inv.Argv,
	}

	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode launch report: %w", err)
	}

	line, err := JoinCommandLine(inv.Argv)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n$ %s\n", line); err != nil {
		return fmt.Errorf("failed to write launch report: %w", err)
	}
	return nil
}
