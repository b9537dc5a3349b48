// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"rebasectl/pkg/checkout"
)

// memTimestamp is the fixed commit timestamp Mem embeds in fake
// pseudoversions. Determinism matters more than realism here: two
// normalizations of the same SHA must yield byte-identical directives.
const memTimestamp = "20250101000000"

type (
	// Mem is an in-memory Manifest used by tests in place of a real go.mod
	// plus the module tool. Normalize rewrites raw commit SHAs into a
	// deterministic fake pseudoversion and counts its invocations so tests
	// can assert on cache behavior.
	Mem struct {
		requires       map[string]string
		requireOrder   []string
		replaces       map[string]MemReplace
		replaceOrder   []string
		normalizeCalls int
	}

	// MemReplace is one replace directive held by Mem.
	MemReplace struct {
		NewPath string
		Version string
		Comment string
	}
)

var _ Manifest = (*Mem)(nil)

// NewMem returns an empty in-memory manifest.
func NewMem() *Mem {
	return &Mem{
		requires: make(map[string]string),
		replaces: make(map[string]MemReplace),
	}
}

// Path identifies the fake manifest in diagnostics.
func (m *Mem) Path() string { return "<mem>/go.mod" }

// SeedRequire pre-populates a require directive without going through the
// mutation API.
func (m *Mem) SeedRequire(modulePath, version string) {
	m.setRequire(modulePath, version)
}

// SeedReplace pre-populates a replace directive with an optional trailing
// comment (without the leading "//").
func (m *Mem) SeedReplace(oldPath, newPath, version, comment string) {
	if _, ok := m.replaces[oldPath]; !ok {
		m.replaceOrder = append(m.replaceOrder, oldPath)
	}
	m.replaces[oldPath] = MemReplace{NewPath: newPath, Version: version, Comment: comment}
}

// ReadDirective renders the replace directive for modulePath the way it
// would appear in a go.mod line.
func (m *Mem) ReadDirective(modulePath string) (string, bool, error) {
	rep, ok := m.replaces[modulePath]
	if !ok {
		return "", false, nil
	}
	raw := fmt.Sprintf("%s => %s %s", modulePath, rep.NewPath, rep.Version)
	if rep.Comment != "" {
		raw += " // " + rep.Comment
	}
	return raw, true, nil
}

// Replacements returns replace module paths in insertion order.
func (m *Mem) Replacements() ([]string, error) {
	return append([]string(nil), m.replaceOrder...), nil
}

// SetRequire sets the require directive for modulePath.
func (m *Mem) SetRequire(modulePath, version string) error {
	m.setRequire(modulePath, version)
	return nil
}

// SetReplace sets the replace directive for oldPath, keeping any comment
// already attached to it.
func (m *Mem) SetReplace(oldPath, newPath, version string) error {
	comment := ""
	if existing, ok := m.replaces[oldPath]; ok {
		comment = existing.Comment
	} else {
		m.replaceOrder = append(m.replaceOrder, oldPath)
	}
	m.replaces[oldPath] = MemReplace{NewPath: newPath, Version: version, Comment: comment}
	return nil
}

// SetDirectiveComment stamps the trailing comment of an existing replace
// directive.
func (m *Mem) SetDirectiveComment(modulePath, comment string) error {
	rep, ok := m.replaces[modulePath]
	if !ok {
		return fmt.Errorf("no replace directive for %s to annotate", modulePath)
	}
	rep.Comment = comment
	m.replaces[modulePath] = rep
	return nil
}

// Normalize rewrites every raw commit SHA version into the deterministic
// fake pseudoversion encoding and records the call.
func (m *Mem) Normalize(context.Context) error {
	m.normalizeCalls++
	for path, rep := range m.replaces {
		if checkout.IsCommitSHA(rep.Version) {
			rep.Version = FakePseudoversion(rep.Version)
			m.replaces[path] = rep
		}
	}
	for path, version := range m.requires {
		if checkout.IsCommitSHA(version) {
			m.requires[path] = FakePseudoversion(version)
		}
	}
	return nil
}

// NormalizeCalls reports how many times Normalize ran.
func (m *Mem) NormalizeCalls() int { return m.normalizeCalls }

// RequireVersion returns the require directive version for modulePath.
func (m *Mem) RequireVersion(modulePath string) (string, bool) {
	v, ok := m.requires[modulePath]
	return v, ok
}

// ReplaceFor returns the replace directive for oldPath.
func (m *Mem) ReplaceFor(oldPath string) (MemReplace, bool) {
	rep, ok := m.replaces[oldPath]
	return rep, ok
}

// Render serializes the fake manifest to a stable go.mod-like text so tests
// can diff whole-manifest state before and after a run. Requires are sorted;
// replaces keep insertion order like a real file would.
func (m *Mem) Render() string {
	var sb strings.Builder

	requirePaths := make([]string, 0, len(m.requires))
	for path := range m.requires {
		requirePaths = append(requirePaths, path)
	}
	sort.Strings(requirePaths)

	sb.WriteString("require (\n")
	for _, path := range requirePaths {
		fmt.Fprintf(&sb, "\t%s %s\n", path, m.requires[path])
	}
	sb.WriteString(")\n\nreplace (\n")
	for _, path := range m.replaceOrder {
		raw, _, _ := m.ReadDirective(path)
		fmt.Fprintf(&sb, "\t%s\n", raw)
	}
	sb.WriteString(")\n")

	return sb.String()
}

// FakePseudoversion derives the deterministic pseudoversion Mem's Normalize
// produces for a raw commit SHA.
func FakePseudoversion(sha string) string {
	return "v0.0.0-" + memTimestamp + "-" + sha[:12]
}

func (m *Mem) setRequire(modulePath, version string) {
	if _, ok := m.requires[modulePath]; !ok {
		m.requireOrder = append(m.requireOrder, modulePath)
	}
	m.requires[modulePath] = version
}
