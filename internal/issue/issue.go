// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog Issue.
type Id int

const (
	ContainerEngineNotFoundId Id = iota + 1
	DisplayNotSetId
	SettingsStoreUnavailableId
	WorkspaceProvisioningFailedId
	EngineInvocationFailedId
	ImageBuildFailedId
	ConfigLoadFailedId
)

type (
	// MarkdownMsg is the Markdown body of an Issue.
	MarkdownMsg string

	// HttpLink is a documentation link shown below an Issue.
	HttpLink string

	// Issue is a catalog entry explaining a failure and how to recover.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal Markdown using the glamour style at
// stylePath ("dark", "light", "notty", or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# No usable container engine found!

contain runs every application through Docker or Podman, and neither could be used.

## Things you can try:
- Install Podman (rootless, no sudo needed) or Docker
- Make sure the engine binary is on your PATH
- Docker runs through sudo unless you are root; install sudo or set:
~~~cue
engine: elevate: false
~~~

- Prefer a specific engine:
~~~cue
engine: preferred: "podman"
~~~`,
		extLinks: []HttpLink{"https://podman.io/docs/installation", "https://docs.docker.com/engine/install/"},
	}

	displayNotSetIssue = &Issue{
		id: DisplayNotSetId,
		mdMsg: `
# No X11 display!

The DISPLAY environment variable is empty, so there is no display to forward into the container.

## Things you can try:
- Run contain from inside a graphical session
- Over SSH, enable X11 forwarding:
~~~
$ ssh -X host
~~~

- Point DISPLAY at a running X server:
~~~
$ DISPLAY=:0 contain firefox
~~~`,
	}

	settingsStoreUnavailableIssue = &Issue{
		id: SettingsStoreUnavailableId,
		mdMsg: `
# Settings store unavailable!

The per-command settings database could not be opened or created.

## Common causes:
- Another contain process is holding the store lock
- The configuration root is not writable
- The database file was written by a newer version

## Things you can try:
- Wait for other launches to finish and retry
- Check the permissions of your configuration root
- Switch backends in config.cue:
~~~cue
store: backend: "sqlite"
~~~`,
	}

	workspaceProvisioningFailedIssue = &Issue{
		id: WorkspaceProvisioningFailedId,
		mdMsg: `
# Could not create the application directories!

contain needs its configuration root, a persistent home per command and a shared temp folder.

## Things you can try:
- Check that no file exists where a directory is expected
- Check directory permissions and free disk space
- Skip the persistent home for this launch with --no-persist
- Skip the shared temp folder with --no-pass-tmp`,
	}

	engineInvocationFailedIssue = &Issue{
		id: EngineInvocationFailedId,
		mdMsg: `
# The container engine could not be started!

The engine command was assembled but the engine failed to start or refused
to run the container.

## Things you can try:
- Re-run with --verbose to print the exact command line
- Run the printed command by hand to see the engine's own error
- If sudo asks for a password, run contain with --interactive once`,
	}

	imageBuildFailedIssue = &Issue{
		id: ImageBuildFailedId,
		mdMsg: `
# Image build failed!

The application image could not be rebuilt.

## Things you can try:
- Check the build output above for the failing Dockerfile step
- Verify image.build_context and image.dockerfile in config.cue
- Skip the rebuild with --skip-update-check and run the existing image`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file contains invalid CUE or values outside the schema.

## Things you can try:
- Check the field named in the error message
- Remove the file to fall back to built-in defaults
- Check PYSOLATE_* environment variables, which override the file`,
	}

	issues = map[Id]*Issue{
		containerEngineNotFoundIssue.Id():     containerEngineNotFoundIssue,
		displayNotSetIssue.Id():               displayNotSetIssue,
		settingsStoreUnavailableIssue.Id():    settingsStoreUnavailableIssue,
		workspaceProvisioningFailedIssue.Id(): workspaceProvisioningFailedIssue,
		engineInvocationFailedIssue.Id():      engineInvocationFailedIssue,
		imageBuildFailedIssue.Id():            imageBuildFailedIssue,
		configLoadFailedIssue.Id():            configLoadFailedIssue,
	}
)

// Values returns every catalog Issue ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
}

// Get returns the Issue with id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
