// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ReleaseInfoNotFoundId Id = iota + 1
	ReleaseInfoParseErrorId
	UnknownComponentId
	CheckoutFailedId
	ManifestParseErrorId
	MissingUpstreamReplaceId
	TidyFailedId
	ConfigLoadFailedId
	ChangelogFetchFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // must never be empty, because we need to have docs about all issue types
	extLinks []HttpLink  // external links that might be useful for the user
}

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

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	releaseInfoNotFoundIssue = &Issue{
		id: ReleaseInfoNotFoundId,
		mdMsg: `
# Release metadata not found!

We could not find the release metadata file that pins component commits.

## Things you can try:
- Check the path you passed to the command:
~~~
$ rebasectl go.mod --release-info path/to/release.json
~~~

- Generate the metadata from a published release payload first
- Verify the file is readable from the current directory`,
	}

	releaseInfoParseErrorIssue = &Issue{
		id: ReleaseInfoParseErrorId,
		mdMsg: `
# Failed to parse release metadata!

The release metadata file exists but is not valid.

## Common issues:
- Invalid JSON syntax
- A component is missing its commit or remote
- A commit is not a full 40-character lowercase SHA
- A remote is not an https://, git@, or ssh:// URL

## Example of valid metadata:
~~~json
{
  "release": "4.17.9",
  "components": {
    "kubernetes": {
      "commit": "0f7b1fe8005dbb79e6a1aea22be5bd6cd6e98fa5",
      "remote": "https://github.com/openshift/kubernetes.git"
    }
  }
}
~~~`,
	}

	unknownComponentIssue = &Issue{
		id: UnknownComponentId,
		mdMsg: `
# Unknown component referenced by a directive!

A manifest directive names a component that is not in the component registry.
This aborts the run: an invalid configuration must not be silently ignored.

## Things you can try:
- Check the trailing comment on the offending replace line for typos:
~~~
k8s.io/kubernetes => ... // from kubernetes
~~~

- List the known components:
~~~
$ rebasectl components
~~~

- If the component is genuinely new, add it to the registry first`,
	}

	checkoutFailedIssue = &Issue{
		id: CheckoutFailedId,
		mdMsg: `
# Component checkout failed!

We could not clone a component's fork or check out its pinned commit.

## Common causes:
- The remote URL is unreachable (network, auth)
- The pinned commit was garbage-collected or never pushed to the fork
- The staging directory is not writable

## Things you can try:
- Clone the remote manually and verify the commit exists:
~~~
$ git clone <remote> && git -C <repo> cat-file -t <commit>
~~~

- Remove the staging directory and retry (checkouts are ephemeral):
~~~
$ rm -rf _output/staging
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse the manifest!

The go.mod file could not be read or parsed.

## Things you can try:
- Check the manifest path in your configuration (manifest_path)
- Validate the file:
~~~
$ go mod edit -print
~~~

- Restore a clean copy from git and re-run:
~~~
$ git checkout -- go.mod
~~~`,
	}

	missingUpstreamReplaceIssue = &Issue{
		id: MissingUpstreamReplaceId,
		mdMsg: `
# Upstream manifest is missing a replace directive!

A 'from <component>' directive requires the upstream component's own go.mod
to carry a replace directive for the same module path, and it does not.
The upstream manifest is malformed for our purposes; the run aborts.

## Things you can try:
- Inspect the upstream component's go.mod at the pinned commit
- Check whether the module was renamed or dropped upstream this release
- If the module no longer needs to track upstream, pin it yourself:
~~~
example.com/mod => example.com/mod v1.2.3 // override dropped upstream in 4.17
~~~`,
	}

	tidyFailedIssue = &Issue{
		id: TidyFailedId,
		mdMsg: `
# Manifest normalization failed!

'go mod tidy' exited non-zero while settling the dependency graph.

## Common causes:
- A rewritten replace directive points at a commit the fork never published
- Conflicting requirements between components
- Network access to the module proxy is unavailable

## Things you can try:
- Re-run with verbose mode to see the tidy output:
~~~
$ rebasectl --verbose go.mod
~~~

- Run 'go mod tidy' by hand in the manifest directory and read its output
- Discard the partially-updated manifest and retry from a clean tree:
~~~
$ git checkout -- go.mod go.sum
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the rebasectl configuration file.

## Configuration file locations:
- Linux: ~/.config/rebasectl/config.cue
- macOS: ~/Library/Application Support/rebasectl/config.cue
- Windows: %APPDATA%\rebasectl\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ rebasectl config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~cue
staging_dir: "_output/staging"
manifest_path: "go.mod"

ui: {
  color_scheme: "auto"
  verbose: false
}
~~~`,
	}

	changelogFetchFailedIssue = &Issue{
		id: ChangelogFetchFailedId,
		mdMsg: `
# Changelog fetch failed!

The GitHub compare API request for a component's commit range failed.

## Common causes:
- Rate limiting (unauthenticated requests are limited to 60/hour)
- The component's remote is not hosted on github.com
- One of the pinned commits does not exist in the fork

## Things you can try:
- Configure a GitHub token:
~~~cue
github: {
  token: "<your token>"
}
~~~

- Verify both commits exist on the fork
- Skip components hosted outside GitHub`,
	}

	issues = map[Id]*Issue{
		releaseInfoNotFoundIssue.Id():    releaseInfoNotFoundIssue,
		releaseInfoParseErrorIssue.Id():  releaseInfoParseErrorIssue,
		unknownComponentIssue.Id():       unknownComponentIssue,
		checkoutFailedIssue.Id():         checkoutFailedIssue,
		manifestParseErrorIssue.Id():     manifestParseErrorIssue,
		missingUpstreamReplaceIssue.Id(): missingUpstreamReplaceIssue,
		tidyFailedIssue.Id():             tidyFailedIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		changelogFetchFailedIssue.Id():   changelogFetchFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
