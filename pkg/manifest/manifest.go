// SPDX-License-Identifier: MPL-2.0

// Package manifest is the dependency-manifest collaborator of the rebase
// engine: a minimal read-one-directive / set-one-directive contract over a
// go.mod file, plus the Normalize operation that canonicalizes versions and
// recomputes the transitive closure.
//
// Two implementations exist: [GoMod], backed by a real go.mod file edited
// through golang.org/x/mod/modfile with Normalize shelling out to
// `go mod tidy`, and [Mem], a deterministic in-memory fake for tests.
package manifest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/mod/modfile"
)

// Manifest is the mutation surface the resolver and orchestrator need.
// All operations are strictly sequential: a mutation must fully commit
// before the next read, because Normalize re-derives transitive state from
// the current contents.
type Manifest interface {
	// Path returns the location of the manifest for diagnostics.
	Path() string

	// ReadDirective returns the raw textual replace directive line for
	// modulePath, including any trailing comment, or ok=false when the
	// module has no replace directive.
	ReadDirective(modulePath string) (raw string, ok bool, err error)

	// Replacements returns the module paths of all replace directives in
	// manifest order.
	Replacements() ([]string, error)

	// SetRequire sets (or adds) the require directive for modulePath.
	SetRequire(modulePath, version string) error

	// SetReplace sets (or adds) the replace directive for oldPath,
	// preserving any trailing comment already on the line.
	SetReplace(oldPath, newPath, version string) error

	// SetDirectiveComment replaces the trailing comment of modulePath's
	// replace directive so future runs are self-describing.
	SetDirectiveComment(modulePath, comment string) error

	// Normalize recomputes the transitive closure and rewrites raw commit
	// SHAs into canonical pseudoversions in-place.
	Normalize(ctx context.Context) error
}

// LookupReplace reads the replace directive for modulePath out of another
// module's go.mod (an upstream component's manifest). The returned target
// carries no comment: modfile parses directives structurally. ok=false
// means the upstream manifest has no replace for modulePath.
func LookupReplace(goModPath, modulePath string) (newPath, version string, ok bool, err error) {
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to read manifest %s: %w", goModPath, err)
	}
	f, err := modfile.Parse(goModPath, data, nil)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to parse manifest %s: %w", goModPath, err)
	}
	for _, rep := range f.Replace {
		if rep.Old.Path == modulePath {
			return rep.New.Path, rep.New.Version, true, nil
		}
	}
	return "", "", false, nil
}

// rawLine renders a parsed modfile line back to its textual form, tokens
// followed by any suffix comments.
func rawLine(line *modfile.Line) string {
	parts := make([]string, 0, len(line.Token)+len(line.Suffix))
	parts = append(parts, line.Token...)
	for _, c := range line.Suffix {
		parts = append(parts, strings.TrimSpace(c.Token))
	}
	return strings.Join(parts, " ")
}
