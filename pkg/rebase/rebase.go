// SPDX-License-Identifier: MPL-2.0

// Package rebase orchestrates one full manifest update run: bootstrap
// requires, staging-tree enumeration, the directive walk over every
// existing replace, and the final normalization pass.
package rebase

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"rebasectl/pkg/component"
	"rebasectl/pkg/directive"
	"rebasectl/pkg/manifest"
	"rebasectl/pkg/resolver"
)

// StagingAnnotation is the comment stamped on staging-tree modules that had
// no directive yet, so future runs are self-describing.
const StagingAnnotation = "staging kubernetes"

type (
	// Source is the component-checkout view the orchestrator needs: the
	// resolver's contract plus staging-tree enumeration. Satisfied by
	// *checkout.Checkout and by test fakes.
	Source interface {
		resolver.Source
		StagingSubmodules() ([]string, error)
	}

	// Orchestrator drives one rebase run against one manifest. It is
	// strictly sequential: every mutation commits before the next read,
	// because normalization re-derives transitive state from the current
	// file contents.
	Orchestrator struct {
		manifest manifest.Manifest
		sources  map[string]Source
		resolver *resolver.Resolver
		logger   *log.Logger
	}

	// Result summarizes one run for CLI reporting.
	Result struct {
		Resolved int
		Skipped  int
	}
)

// New returns an Orchestrator over the manifest and the component checkouts
// of the current release, keyed by component name.
func New(m manifest.Manifest, registry *component.Registry, sources map[string]Source, logger *log.Logger) *Orchestrator {
	resolverSources := make(map[string]resolver.Source, len(sources))
	for name, src := range sources {
		resolverSources[name] = src
	}
	return &Orchestrator{
		manifest: m,
		sources:  sources,
		resolver: resolver.New(m, registry, resolverSources, logger),
		logger:   logger,
	}
}

// RunGoModUpdate performs the four-step update sequence. Order matters:
// later steps assume earlier ones established a consistent graph.
//
//  1. Force require directives for the bootstrap components to their
//     checkout commits (direct dependencies with no replace directive).
//  2. Walk the kubernetes staging tree: require each submodule at the
//     sentinel v0.0.0, resolve it into the fork's staging coordinates, and
//     stamp previously unannotated modules.
//  3. Walk every existing replace directive and dispatch its annotation.
//  4. Normalize once at the end to settle the transitive closure.
//
// Any returned error is Fatal; the manifest is left in whatever state the
// run reached and the caller recovers via git.
func (o *Orchestrator) RunGoModUpdate(ctx context.Context) (Result, error) {
	var res Result

	if err := o.updateBootstrapRequires(); err != nil {
		return res, err
	}
	if err := o.updateStagingModules(ctx, &res); err != nil {
		return res, err
	}
	if err := o.updateReplacedModules(ctx, &res); err != nil {
		return res, err
	}

	o.logger.Info("normalizing manifest", "path", o.manifest.Path())
	if err := o.manifest.Normalize(ctx); err != nil {
		return res, err
	}

	o.logger.Info("manifest update complete", "resolved", res.Resolved, "skipped", res.Skipped)
	return res, nil
}

// updateBootstrapRequires pins the bootstrap components' require directives
// to their checkout commits. The final normalization rewrites the raw SHAs
// into pseudoversions.
func (o *Orchestrator) updateBootstrapRequires() error {
	for _, name := range component.BootstrapComponents {
		src, ok := o.sources[name]
		if !ok {
			return fmt.Errorf("%w: %s", resolver.ErrMissingCheckout, name)
		}
		commit, err := src.CurrentCommit()
		if err != nil {
			return err
		}
		origin, err := src.OriginURL()
		if err != nil {
			return err
		}
		modulePath := origin.ModulePath()
		o.logger.Info("updating bootstrap require", "module", modulePath, "commit", commit)
		if err := o.manifest.SetRequire(modulePath, string(commit)); err != nil {
			return err
		}
	}
	return nil
}

// updateStagingModules enumerates the kubernetes staging tree and resolves
// every submodule into the fork's staging coordinates.
func (o *Orchestrator) updateStagingModules(ctx context.Context, res *Result) error {
	kube, ok := o.sources[component.KubernetesComponent]
	if !ok {
		return fmt.Errorf("%w: %s", resolver.ErrMissingCheckout, component.KubernetesComponent)
	}
	subs, err := kube.StagingSubmodules()
	if err != nil {
		return err
	}

	for _, sub := range subs {
		modulePath := "k8s.io/" + sub

		raw, hadDirective, err := o.manifest.ReadDirective(modulePath)
		if err != nil {
			return err
		}
		annotated := hadDirective && directive.Parse(raw).Kind != directive.Absent

		if err := o.manifest.SetRequire(modulePath, "v0.0.0"); err != nil {
			return err
		}
		out, err := o.resolver.Resolve(ctx, modulePath, directive.Directive{Kind: directive.Staging, Arg: component.KubernetesComponent})
		if err != nil {
			return err
		}
		count(res, out)

		if !annotated {
			if err := o.manifest.SetDirectiveComment(modulePath, StagingAnnotation); err != nil {
				return err
			}
		}
	}
	return nil
}

// updateReplacedModules walks every replace directive already present and
// dispatches its annotation through the resolver.
func (o *Orchestrator) updateReplacedModules(ctx context.Context, res *Result) error {
	paths, err := o.manifest.Replacements()
	if err != nil {
		return err
	}
	for _, modulePath := range paths {
		raw, ok, err := o.manifest.ReadDirective(modulePath)
		if err != nil {
			return err
		}
		if !ok {
			// Removed by an earlier mutation in this same walk.
			continue
		}
		out, err := o.resolver.Resolve(ctx, modulePath, directive.Parse(raw))
		if err != nil {
			return err
		}
		count(res, out)
	}
	return nil
}

func count(res *Result, out resolver.Outcome) {
	if out.Skipped {
		res.Skipped++
	} else {
		res.Resolved++
	}
}
