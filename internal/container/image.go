// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// createdLayouts are the timestamp layouts printed by `image inspect
// --format {{.Created}}`: RFC 3339 for Docker, Go's time.String for Podman.
var createdLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999 -0700 -0700",
}

// ErrUnparsableImageTimestamp is returned when the engine prints a creation
// time in an unknown layout.
var ErrUnparsableImageTimestamp = errors.New("unparsable image creation timestamp")

// ImageStaleness decides whether an image is old enough to offer a rebuild.
type ImageStaleness struct {
	// MaxAge is the age after which an image is stale. Zero or negative
	// disables the check.
	MaxAge time.Duration
}

// Stale reports whether an image created at created is older than MaxAge at now.
func (s ImageStaleness) Stale(created, now time.Time) bool {
	if s.MaxAge <= 0 {
		return false
	}
	return now.Sub(created) > s.MaxAge
}

// Age returns how long ago created was, truncated to the hour.
func Age(created, now time.Time) time.Duration {
	return now.Sub(created).Truncate(time.Hour)
}

// inspectCreated runs `image inspect` for image. An engine exit status means
// the image is absent; failures to run the engine at all are returned.
func (e *BaseCLIEngine) inspectCreated(ctx context.Context, image ImageTag) (time.Time, bool, error) {
	out, err := e.RunCommandWithOutput(ctx, "image", "inspect", "--format", "{{.Created}}", string(image))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	created, err := parseCreated(out)
	if err != nil {
		return time.Time{}, false, err
	}
	return created, true, nil
}

// parseCreated parses the first line printed by `image inspect`.
func parseCreated(out string) (time.Time, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	line = strings.TrimSpace(line)
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, line); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableImageTimestamp, line)
}
