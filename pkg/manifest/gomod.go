// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// GoMod is the file-backed Manifest over a real go.mod. Every operation is
// a full read-modify-write cycle so that the on-disk file is always the
// single source of truth between operations.
type GoMod struct {
	path string
}

var _ Manifest = (*GoMod)(nil)

// NewGoMod returns a Manifest over the go.mod file at path. The file must
// already exist and parse; the rebase engine never creates a manifest from
// scratch.
func NewGoMod(path string) (*GoMod, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}
	if _, err := parseFile(abs); err != nil {
		return nil, err
	}
	return &GoMod{path: abs}, nil
}

// Path returns the manifest file location.
func (g *GoMod) Path() string { return g.path }

// ReadDirective returns the raw replace line for modulePath, trailing
// comment included.
func (g *GoMod) ReadDirective(modulePath string) (string, bool, error) {
	f, err := parseFile(g.path)
	if err != nil {
		return "", false, err
	}
	for _, rep := range f.Replace {
		if rep.Old.Path == modulePath {
			return rawLine(rep.Syntax), true, nil
		}
	}
	return "", false, nil
}

// Replacements returns the module paths of all replace directives in file
// order.
func (g *GoMod) Replacements() ([]string, error) {
	f, err := parseFile(g.path)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(f.Replace))
	for _, rep := range f.Replace {
		paths = append(paths, rep.Old.Path)
	}
	return paths, nil
}

// SetRequire sets the require directive for modulePath, adding it when
// missing.
func (g *GoMod) SetRequire(modulePath, version string) error {
	return g.edit(func(f *modfile.File) error {
		if err := f.AddRequire(modulePath, version); err != nil {
			return fmt.Errorf("failed to set require %s@%s: %w", modulePath, version, err)
		}
		return nil
	})
}

// SetReplace sets the replace directive for oldPath. modfile updates an
// existing directive's target in place, which keeps the trailing comment
// intact.
func (g *GoMod) SetReplace(oldPath, newPath, version string) error {
	return g.edit(func(f *modfile.File) error {
		if err := f.AddReplace(oldPath, "", newPath, version); err != nil {
			return fmt.Errorf("failed to set replace %s => %s %s: %w", oldPath, newPath, version, err)
		}
		return nil
	})
}

// SetDirectiveComment stamps the trailing comment of modulePath's replace
// directive.
func (g *GoMod) SetDirectiveComment(modulePath, comment string) error {
	return g.edit(func(f *modfile.File) error {
		for _, rep := range f.Replace {
			if rep.Old.Path == modulePath {
				rep.Syntax.Suffix = []modfile.Comment{{Token: "// " + comment, Suffix: true}}
				return nil
			}
		}
		return fmt.Errorf("no replace directive for %s to annotate", modulePath)
	})
}

// Normalize runs `go mod tidy` in the manifest's directory. The canonical
// pseudoversion encoding embeds the commit timestamp, which only the module
// tool can compute, so the engine never derives it directly.
func (g *GoMod) Normalize(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "go", "mod", "tidy")
	cmd.Dir = filepath.Dir(g.path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("go mod tidy failed: %w\n%s", err, out)
	}
	return nil
}

// edit applies fn to the parsed manifest and writes the result back.
func (g *GoMod) edit(fn func(*modfile.File) error) error {
	f, err := parseFile(g.path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		return err
	}
	f.Cleanup()
	data, err := f.Format()
	if err != nil {
		return fmt.Errorf("failed to format manifest: %w", err)
	}
	if err := os.WriteFile(g.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func parseFile(path string) (*modfile.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return f, nil
}
