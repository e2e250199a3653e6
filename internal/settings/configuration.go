// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"fmt"
	"strings"
)

const (
	// DefaultCommand is run when no command is given.
	DefaultCommand = "bash"
	// DefaultUID is the container user when none is requested.
	DefaultUID = 1000
)

type (
	// CommandKey identifies a stored Configuration. It is the first
	// whitespace-delimited token of the full command line.
	CommandKey string

	// Configuration is the persisted launch preference for one command key.
	// Fields are unexported for immutability; build values with NewConfiguration.
	Configuration struct {
		commandKey  CommandKey
		fullCommand string
		passDir     bool
		passTmp     bool
		uid         int
		persist     bool
		interactive bool
		privileged  bool
	}

	// Option sets a single field of a Configuration under construction.
	Option func(*Configuration)
)

// ParseCommandKey extracts the command key from a full command line.
// An empty or blank command line yields the key of DefaultCommand.
func ParseCommandKey(fullCommand string) CommandKey {
	fields := strings.Fields(fullCommand)
	if len(fields) == 0 {
		return CommandKey(DefaultCommand)
	}
	return CommandKey(fields[0])
}

// String returns the key as a string.
func (k CommandKey) String() string { return string(k) }

// DirName returns a single path element safe to use as a directory name.
// Path separators are replaced so keys like "/usr/bin/vim" cannot escape
// the directory they are joined to.
func (k CommandKey) DirName() string {
	name := strings.ReplaceAll(string(k), "/", "_")
	switch name {
	case "", ".", "..":
		return "_" + name
	}
	return name
}

// WithPassDir sets whether the caller's working directory is forwarded.
func WithPassDir(v bool) Option { return func(c *Configuration) { c.passDir = v } }

// WithPassTmp sets whether a shared temp folder is mounted.
func WithPassTmp(v bool) Option { return func(c *Configuration) { c.passTmp = v } }

// WithUID sets the container user id. 0 runs the command as root.
func WithUID(uid int) Option { return func(c *Configuration) { c.uid = uid } }

// WithCommandKey stores the configuration under key instead of the key parsed
// from the full command. Blank keys are ignored.
func WithCommandKey(key string) Option {
	return func(c *Configuration) {
		if key = strings.TrimSpace(key); key != "" {
			c.commandKey = CommandKey(key)
		}
	}
}

// WithPersist sets whether a persistent per-command home is mounted.
func WithPersist(v bool) Option { return func(c *Configuration) { c.persist = v } }

// WithInteractive sets whether the container runs attached to the terminal.
func WithInteractive(v bool) Option { return func(c *Configuration) { c.interactive = v } }

// WithPrivileged sets whether the container runs privileged on the host network.
func WithPrivileged(v bool) Option { return func(c *Configuration) { c.privileged = v } }

// NewConfiguration builds a Configuration for fullCommand. The defaults are
// UID 1000, persistent home on, shared temp on, everything else off; opts
// override them in order. The key is always derived from fullCommand.
func NewConfiguration(fullCommand string, opts ...Option) Configuration {
	fullCommand = strings.TrimSpace(fullCommand)
	if fullCommand == "" {
		fullCommand = DefaultCommand
	}
	c := Configuration{
		commandKey:  ParseCommandKey(fullCommand),
		fullCommand: fullCommand,
		passDir:     false,
		passTmp:     true,
		uid:         DefaultUID,
		persist:     true,
		interactive: false,
		privileged:  false,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// CommandKey returns the key the configuration is stored under.
func (c Configuration) CommandKey() CommandKey { return c.commandKey }

// FullCommand returns the command line recorded when the configuration was created.
func (c Configuration) FullCommand() string { return c.fullCommand }

// PassDir reports whether the working directory is forwarded.
func (c Configuration) PassDir() bool { return c.passDir }

// PassTmp reports whether the shared temp folder is mounted.
func (c Configuration) PassTmp() bool { return c.passTmp }

// UID returns the recorded container user id.
func (c Configuration) UID() int { return c.uid }

// Persist reports whether the persistent home is mounted.
func (c Configuration) Persist() bool { return c.persist }

// Interactive reports whether the container runs attached.
func (c Configuration) Interactive() bool { return c.interactive }

// Privileged reports whether privileged mode and host networking are granted.
func (c Configuration) Privileged() bool { return c.privileged }

// String renders the configuration for logs.
func (c Configuration) String() string {
	return fmt.Sprintf("%s{uid=%d passDir=%t passTmp=%t persist=%t interactive=%t privileged=%t}",
		c.commandKey, c.uid, c.passDir, c.passTmp, c.persist, c.interactive, c.privileged)
}
