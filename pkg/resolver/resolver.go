// SPDX-License-Identifier: MPL-2.0

// Package resolver turns one (module path, directive) pair into a manifest
// mutation. It is the central algorithm of the rebase engine: given the
// parsed annotation of a replace line it decides the new module path and
// version, issues the mutation, and reports what it did (or why it skipped).
package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"rebasectl/pkg/checkout"
	"rebasectl/pkg/component"
	"rebasectl/pkg/directive"
	"rebasectl/pkg/manifest"
)

// EtcdModulePrefix is the upstream module family that the etcd fork
// republishes as sub-modules of a single repository.
const EtcdModulePrefix = "go.etcd.io/etcd"

// pseudoversionRE extracts the canonical pseudoversion token from a
// normalized directive line: semver base, optional pre-release segments,
// then the 14-digit commit timestamp and 12-hex commit prefix that only the
// normalization tool can compute.
var pseudoversionRE = regexp.MustCompile(`v\d+\.\d+\.\d+-(?:[0-9A-Za-z]+\.)*\d{14}-[0-9a-f]{12}`)

var (
	// ErrMissingUpstreamReplace flags a from-chain whose upstream component
	// manifest has no replace directive for the module being resolved.
	ErrMissingUpstreamReplace = errors.New("upstream manifest has no replace directive for module")

	// ErrMalformedUpstreamVersion flags a from-chain whose upstream replace
	// directive carries a version string that is neither a commit SHA nor
	// valid semver.
	ErrMalformedUpstreamVersion = errors.New("upstream replace directive has malformed version")

	// ErrMissingCheckout flags a directive that names a component with no
	// checkout available in this run.
	ErrMissingCheckout = errors.New("no checkout available for component")

	// ErrNotEmbeddedComponent flags a directive that names a component the
	// distribution does not vendor. Only embedded components carry source
	// the manifest can be pinned to.
	ErrNotEmbeddedComponent = errors.New("component is not an embedded component")
)

type (
	// Source is the view of one component checkout the resolver needs:
	// where its manifest lives, which commit it sits at, and which remote
	// it came from. Satisfied by *checkout.Checkout and by test fakes.
	Source interface {
		GoModPath() string
		CurrentCommit() (checkout.CommitSHA, error)
		OriginURL() (checkout.RemoteURL, error)
	}

	// Outcome reports one resolution: either the replace mutation that was
	// applied, or the reason the module was skipped.
	Outcome struct {
		ModulePath string
		NewPath    string
		Version    string
		Skipped    bool
		Reason     string
	}

	// Resolver resolves directives against a set of component checkouts and
	// mutates the manifest directly. One Resolver serves one rebase run; the
	// pseudoversion cache inside it is never reused across runs.
	Resolver struct {
		manifest manifest.Manifest
		registry *component.Registry
		sources  map[string]Source
		cache    *PseudoversionCache
		logger   *log.Logger
	}

	// MissingUpstreamReplaceError is the Fatal raised when a from-chain
	// cannot find the module in the upstream component's manifest.
	MissingUpstreamReplaceError struct {
		Component  string
		ModulePath string
	}

	// MalformedUpstreamVersionError is the Fatal raised when a from-chain
	// copies through an upstream version that is neither a commit SHA nor
	// valid semver.
	MalformedUpstreamVersionError struct {
		Component  string
		ModulePath string
		Version    string
	}

	// NotEmbeddedComponentError is the Fatal raised when a from or release
	// directive names a registry component whose policy class is not
	// embedded-component.
	NotEmbeddedComponentError struct {
		Component string
		Policy    component.PolicyClass
	}
)

// Error implements the error interface for MissingUpstreamReplaceError.
func (e *MissingUpstreamReplaceError) Error() string {
	return fmt.Sprintf("component %q manifest has no replace directive for %q", e.Component, e.ModulePath)
}

// Unwrap allows errors.Is checks against ErrMissingUpstreamReplace.
func (e *MissingUpstreamReplaceError) Unwrap() error { return ErrMissingUpstreamReplace }

// Error implements the error interface for MalformedUpstreamVersionError.
func (e *MalformedUpstreamVersionError) Error() string {
	return fmt.Sprintf("component %q pins %q at malformed version %q", e.Component, e.ModulePath, e.Version)
}

// Unwrap allows errors.Is checks against ErrMalformedUpstreamVersion.
func (e *MalformedUpstreamVersionError) Unwrap() error { return ErrMalformedUpstreamVersion }

// Error implements the error interface for NotEmbeddedComponentError.
func (e *NotEmbeddedComponentError) Error() string {
	return fmt.Sprintf("component %q has policy class %q: only embedded components may be named by from and release directives", e.Component, e.Policy)
}

// Unwrap allows errors.Is checks against ErrNotEmbeddedComponent.
func (e *NotEmbeddedComponentError) Unwrap() error { return ErrNotEmbeddedComponent }

// New returns a Resolver over the given manifest and component checkouts,
// keyed by component name. The pseudoversion cache starts empty.
func New(m manifest.Manifest, registry *component.Registry, sources map[string]Source, logger *log.Logger) *Resolver {
	return &Resolver{
		manifest: m,
		registry: registry,
		sources:  sources,
		cache:    NewPseudoversionCache(),
		logger:   logger,
	}
}

// Resolve dispatches one parsed directive. A returned error is always
// Fatal: the caller must abort the run. Skippable conditions come back as
// a skipped Outcome with the error nil.
func (r *Resolver) Resolve(ctx context.Context, modulePath string, d directive.Directive) (Outcome, error) {
	switch d.Kind {
	case directive.From:
		return r.resolveFrom(ctx, modulePath, d.Arg)
	case directive.Staging:
		return r.resolveStaging(ctx, modulePath)
	case directive.Release:
		return r.resolveRelease(ctx, modulePath, d.Arg)
	case directive.Override:
		r.logger.Info("skipping override-pinned module", "module", modulePath, "reason", d.Arg)
		return Outcome{ModulePath: modulePath, Skipped: true, Reason: "override: " + d.Arg}, nil
	case directive.Absent:
		r.logger.Warn("module has no directive, skipping", "module", modulePath)
		return Outcome{ModulePath: modulePath, Skipped: true, Reason: "no directive"}, nil
	default:
		r.logger.Warn("unrecognized directive, skipping", "module", modulePath, "directive", d.Arg)
		return Outcome{ModulePath: modulePath, Skipped: true, Reason: "unrecognized directive: " + d.Arg}, nil
	}
}

// resolveFrom copies the upstream component's own replace directive for the
// module, rewriting staging-relative targets into the kubernetes fork's
// staging coordinates.
func (r *Resolver) resolveFrom(ctx context.Context, modulePath, componentName string) (Outcome, error) {
	src, err := r.source(componentName)
	if err != nil {
		return Outcome{}, err
	}

	newPath, version, ok, err := manifest.LookupReplace(src.GoModPath(), modulePath)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, &MissingUpstreamReplaceError{Component: componentName, ModulePath: modulePath}
	}

	// A staging-relative target only makes sense inside the upstream repo;
	// in the distribution's manifest it becomes an absolute path into the
	// kubernetes fork, pinned at the fork's commit pseudoversion.
	if strings.HasPrefix(newPath, "./staging") {
		kube, err := r.source(component.KubernetesComponent)
		if err != nil {
			return Outcome{}, err
		}
		origin, err := kube.OriginURL()
		if err != nil {
			return Outcome{}, err
		}
		rewritten := origin.ModulePath() + strings.TrimPrefix(newPath, ".")
		return r.applyPinned(ctx, modulePath, component.KubernetesComponent, kube, rewritten)
	}

	if err := checkUpstreamVersion(componentName, modulePath, version); err != nil {
		return Outcome{}, err
	}
	return r.apply(modulePath, newPath, version)
}

// checkUpstreamVersion validates a version string copied out of an upstream
// component's manifest. Raw commit SHAs pass through untouched (the final
// Normalize rewrites them into pseudoversions); anything else must be valid
// semver.
func checkUpstreamVersion(componentName, modulePath, version string) error {
	if checkout.IsCommitSHA(version) {
		return nil
	}
	if _, err := semver.NewVersion(version); err != nil {
		return &MalformedUpstreamVersionError{Component: componentName, ModulePath: modulePath, Version: version}
	}
	return nil
}

// resolveStaging pins the module into the kubernetes fork's staging tree at
// the fork's commit pseudoversion.
func (r *Resolver) resolveStaging(ctx context.Context, modulePath string) (Outcome, error) {
	kube, err := r.source(component.KubernetesComponent)
	if err != nil {
		return Outcome{}, err
	}
	origin, err := kube.OriginURL()
	if err != nil {
		return Outcome{}, err
	}
	newPath := origin.ModulePath() + "/staging/src/" + modulePath
	return r.applyPinned(ctx, modulePath, component.KubernetesComponent, kube, newPath)
}

// resolveRelease pins the module to the named component's checkout commit,
// redirecting the module path through the redirect table first.
func (r *Resolver) resolveRelease(ctx context.Context, modulePath, componentName string) (Outcome, error) {
	src, err := r.source(componentName)
	if err != nil {
		return Outcome{}, err
	}
	origin, err := src.OriginURL()
	if err != nil {
		return Outcome{}, err
	}

	newPath := origin.ModulePath()
	for _, rule := range redirectRules {
		if rule.matches(modulePath) {
			newPath = rule.rewrite(origin.ModulePath(), modulePath)
			break
		}
	}
	return r.applyPinned(ctx, modulePath, componentName, src, newPath)
}

// applyPinned resolves the component's pseudoversion (cache-checked) and
// applies the replace mutation.
func (r *Resolver) applyPinned(ctx context.Context, modulePath, componentName string, src Source, newPath string) (Outcome, error) {
	version, err := r.pseudoversion(ctx, componentName, src, modulePath, newPath)
	if err != nil {
		return Outcome{}, err
	}
	return r.apply(modulePath, newPath, version)
}

// apply logs and issues the replace mutation, the audit-trail line first.
func (r *Resolver) apply(modulePath, newPath, version string) (Outcome, error) {
	r.logger.Info("updating replace directive", "module", modulePath, "target", newPath, "version", version)
	if err := r.manifest.SetReplace(modulePath, newPath, version); err != nil {
		return Outcome{}, err
	}
	return Outcome{ModulePath: modulePath, NewPath: newPath, Version: version}, nil
}

// pseudoversion returns the component's derived pseudoversion, deriving it
// through the manifest on first use. Derivation pins a provisional replace
// at the raw commit SHA, normalizes the manifest (which rewrites the SHA
// into the canonical encoding), and regex-extracts the result back out. The
// timestamp inside the encoding is only computable by the normalization
// tool, so there is no shortcut around the round trip.
func (r *Resolver) pseudoversion(ctx context.Context, componentName string, src Source, modulePath, newPath string) (string, error) {
	if version, ok := r.cache.Lookup(componentName); ok {
		return version, nil
	}

	commit, err := src.CurrentCommit()
	if err != nil {
		return "", err
	}
	if err := r.manifest.SetReplace(modulePath, newPath, string(commit)); err != nil {
		return "", err
	}
	if err := r.manifest.Normalize(ctx); err != nil {
		return "", err
	}
	raw, ok, err := r.manifest.ReadDirective(modulePath)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("replace directive for %s vanished during normalization", modulePath)
	}
	version := pseudoversionRE.FindString(raw)
	if version == "" {
		return "", fmt.Errorf("no pseudoversion found in normalized directive %q", raw)
	}

	r.logger.Debug("derived pseudoversion", "component", componentName, "version", version)
	r.cache.Store(componentName, version)
	return version, nil
}

// source looks up the checkout for a component, validating the component
// name against the registry first. An unknown name is Fatal, and so is a
// component the distribution does not embed: only embedded components carry
// source the manifest can be pinned to.
func (r *Resolver) source(name string) (Source, error) {
	entry, err := r.registry.Lookup(name)
	if err != nil {
		return nil, err
	}
	if !r.registry.IsEmbedded(name) {
		return nil, &NotEmbeddedComponentError{Component: name, Policy: entry.Policy}
	}
	src, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingCheckout, name)
	}
	return src, nil
}
