// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"pysolate/internal/settings"
)

const (
	// AppsDirName is the config-root subdirectory mounted at /apps.
	AppsDirName = "apps"
	// StorageDirName is the config-root subdirectory holding per-command homes.
	StorageDirName = "storage"
	// StoreFileName is the settings store file inside the config root.
	StoreFileName = "data.db"
	// SharedTempPrefix prefixes the per-command shared temp folder name.
	SharedTempPrefix = ".pysolate_"
	// DefaultTempRoot is the parent of shared temp folders.
	DefaultTempRoot = "/tmp"
	// X11SocketDir is the host X11 socket directory, bind-mounted verbatim.
	X11SocketDir = "/tmp/.X11-unix"

	dirPerm os.FileMode = 0o755
)

// ErrProvisioningFailed is the sentinel error wrapped by ProvisioningFailedError.
var ErrProvisioningFailed = errors.New("workspace provisioning failed")

type (
	// Layout locates the roots every workspace path derives from.
	Layout struct {
		// ConfigRoot holds apps/, storage/ and the settings store.
		ConfigRoot string
		// TempRoot holds the shared temp folders. Empty means DefaultTempRoot.
		TempRoot string
	}

	// Paths are the host directories used by a single launch.
	Paths struct {
		ConfigRoot   string
		AppsDir      string
		StorageDir   string
		StorePath    string
		CommandHome  string
		SharedTemp   string
		X11SocketDir string
	}

	// Provisioner creates workspace directories.
	Provisioner struct {
		layout Layout
	}

	// ProvisioningFailedError is returned when a directory cannot be created.
	ProvisioningFailedError struct {
		Path  string
		Cause error
	}
)

// Error implements the error interface.
func (e *ProvisioningFailedError) Error() string {
	return fmt.Sprintf("failed to create directory %s: %v", e.Path, e.Cause)
}

// Unwrap returns ErrProvisioningFailed and the cause for errors.Is() compatibility.
func (e *ProvisioningFailedError) Unwrap() []error {
	return []error{ErrProvisioningFailed, e.Cause}
}

// StorePath returns the settings store file.
func (l Layout) StorePath() string {
	return filepath.Join(l.ConfigRoot, StoreFileName)
}

// Paths returns the directories for key. Nothing is created.
func (l Layout) Paths(key settings.CommandKey) Paths {
	tempRoot := l.TempRoot
	if tempRoot == "" {
		tempRoot = DefaultTempRoot
	}
	storage := filepath.Join(l.ConfigRoot, StorageDirName)
	return Paths{
		ConfigRoot:   l.ConfigRoot,
		AppsDir:      filepath.Join(l.ConfigRoot, AppsDirName),
		StorageDir:   storage,
		StorePath:    l.StorePath(),
		CommandHome:  filepath.Join(storage, key.DirName()),
		SharedTemp:   filepath.Join(tempRoot, SharedTempPrefix+key.DirName()),
		X11SocketDir: X11SocketDir,
	}
}

// NewProvisioner creates a Provisioner for layout.
func NewProvisioner(layout Layout) *Provisioner {
	return &Provisioner{layout: layout}
}

// Layout returns the layout the provisioner creates directories in.
func (p *Provisioner) Layout() Layout {
	return p.layout
}

// Ensure creates the config root and its apps and storage subdirectories.
func (p *Provisioner) Ensure() error {
	root := p.layout.ConfigRoot
	for _, dir := range []string{
		root,
		filepath.Join(root, AppsDirName),
		filepath.Join(root, StorageDirName),
	} {
		if err := ensureDir(dir); err != nil {
			return err
		}
	}
	return nil
}

// EnsureCommandHome creates the persistent home of key and returns its path.
func (p *Provisioner) EnsureCommandHome(key settings.CommandKey) (string, error) {
	home := p.layout.Paths(key).CommandHome
	if err := ensureDir(home); err != nil {
		return "", err
	}
	return home, nil
}

// EnsureSharedTemp creates the shared temp folder of key and returns its path.
func (p *Provisioner) EnsureSharedTemp(key settings.CommandKey) (string, error) {
	dir := p.layout.Paths(key).SharedTemp
	if err := ensureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// ensureDir creates dir and its parents. An existing directory is success.
func ensureDir(dir string) error {
	if dir == "" {
		return &ProvisioningFailedError{Path: dir, Cause: errors.New("empty path")}
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return &ProvisioningFailedError{Path: dir, Cause: err}
	}
	return nil
}
