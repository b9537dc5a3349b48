// SPDX-License-Identifier: MPL-2.0

// Package component defines the static table of upstream components tracked
// by the rebase engine.
//
// Every component belongs to exactly one policy class that decides how the
// distribution consumes it:
//   - [PolicyEmbedded]: compiled directly into the distribution binary; its
//     Go modules are resolved into the distribution's go.mod.
//   - [PolicyEmbeddedOperator]: vendored for its bindata/config assets only,
//     not its binary.
//   - [PolicyLoaded]: shipped as an image reference pulled at runtime, never
//     vendored.
//
// The default table is embedded in the binary as components.toml. Directive
// commands in the manifest may only name components from this table; an
// unknown name is a configuration error that aborts a rebase run.
package component
