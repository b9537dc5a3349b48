// SPDX-License-Identifier: MPL-2.0

// Package directive parses the trailing annotation comment that rides on a
// manifest replace line into a structured command. The grammar is tiny:
//
//	// from <component>
//	// staging <component>
//	// release <component>
//	// override <free-text reason>
//
// Anything else (or no comment at all) is carried through as Unknown or
// Absent so the resolver can skip it with a diagnostic instead of guessing.
package directive

import "strings"

type (
	// Kind is the command token of a directive.
	Kind string

	// Directive is one parsed annotation: the command, its raw trailing
	// argument, and the manifest line it came from.
	Directive struct {
		Kind Kind
		// Arg is the remainder after the command token: a component name
		// for From/Release, advisory free text for Override and Staging.
		Arg string
		// Raw is the full directive line the annotation was parsed from.
		Raw string
	}
)

const (
	// Absent means the line carries no annotation comment at all.
	Absent Kind = "absent"
	// From resolves the module against the named component's own manifest.
	From Kind = "from"
	// Staging resolves the module into the kubernetes staging tree.
	Staging Kind = "staging"
	// Release resolves the module to the named component's checkout commit.
	Release Kind = "release"
	// Override marks the line as hand-pinned; the resolver must not touch it.
	Override Kind = "override"
	// Unknown means the comment's command token is not part of the grammar.
	Unknown Kind = "unknown"
)

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }

// Parse extracts the annotation from a raw replace line. The split anchors
// on the rightmost "//" because module paths can legitimately contain the
// delimiter sequence (URLs in replacement targets).
func Parse(rawLine string) Directive {
	idx := strings.LastIndex(rawLine, "//")
	if idx < 0 {
		return Directive{Kind: Absent, Raw: rawLine}
	}

	comment := strings.TrimSpace(rawLine[idx+len("//"):])
	if comment == "" {
		return Directive{Kind: Absent, Raw: rawLine}
	}

	command, arg, _ := strings.Cut(comment, " ")
	d := Directive{Arg: strings.TrimSpace(arg), Raw: rawLine}
	switch Kind(command) {
	case From, Staging, Release, Override:
		d.Kind = Kind(command)
	default:
		d.Kind = Unknown
		d.Arg = comment
	}
	return d
}
