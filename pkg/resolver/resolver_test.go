// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"rebasectl/pkg/checkout"
	"rebasectl/pkg/component"
	"rebasectl/pkg/directive"
	"rebasectl/pkg/manifest"
)

const (
	kubeSHA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	etcdSHA = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

type fakeSource struct {
	goModPath string
	commit    checkout.CommitSHA
	origin    checkout.RemoteURL
}

func (f *fakeSource) GoModPath() string                          { return f.goModPath }
func (f *fakeSource) CurrentCommit() (checkout.CommitSHA, error) { return f.commit, nil }
func (f *fakeSource) OriginURL() (checkout.RemoteURL, error)     { return f.origin, nil }

func writeUpstreamGoMod(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "go.mod")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func newTestResolver(t *testing.T, m manifest.Manifest, sources map[string]Source) *Resolver {
	t.Helper()
	return New(m, component.DefaultRegistry(), sources, log.New(io.Discard))
}

func kubeSource(t *testing.T) *fakeSource {
	t.Helper()
	return &fakeSource{
		goModPath: writeUpstreamGoMod(t, "module k8s.io/kubernetes\n\ngo 1.25\n"),
		commit:    kubeSHA,
		origin:    "https://github.com/openshift/kubernetes.git",
	}
}

func TestResolveStaging(t *testing.T) {
	m := manifest.NewMem()
	r := newTestResolver(t, m, map[string]Source{
		component.KubernetesComponent: kubeSource(t),
	})

	got, err := r.Resolve(t.Context(), "k8s.io/api", directive.Directive{Kind: directive.Staging, Arg: "kubernetes"})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Skipped {
		t.Fatalf("Resolve() skipped: %s", got.Reason)
	}
	if want := "github.com/openshift/kubernetes/staging/src/k8s.io/api"; got.NewPath != want {
		t.Errorf("NewPath = %q, want %q", got.NewPath, want)
	}
	if want := manifest.FakePseudoversion(kubeSHA); got.Version != want {
		t.Errorf("Version = %q, want %q", got.Version, want)
	}

	rep, ok := m.ReplaceFor("k8s.io/api")
	if !ok {
		t.Fatal("manifest has no replace after Resolve()")
	}
	if rep.Version != manifest.FakePseudoversion(kubeSHA) {
		t.Errorf("manifest replace version = %q", rep.Version)
	}
}

func TestResolveStagingCachesPseudoversion(t *testing.T) {
	m := manifest.NewMem()
	r := newTestResolver(t, m, map[string]Source{
		component.KubernetesComponent: kubeSource(t),
	})

	for _, mod := range []string{"k8s.io/api", "k8s.io/apimachinery", "k8s.io/client-go"} {
		if _, err := r.Resolve(t.Context(), mod, directive.Directive{Kind: directive.Staging, Arg: "kubernetes"}); err != nil {
			t.Fatalf("Resolve(%s) error = %v", mod, err)
		}
	}

	// One derivation round trip for the whole component, not one per module.
	if m.NormalizeCalls() != 1 {
		t.Errorf("NormalizeCalls() = %d, want 1", m.NormalizeCalls())
	}
}

func TestResolveRelease(t *testing.T) {
	etcd := &fakeSource{
		goModPath: writeUpstreamGoMod(t, "module go.etcd.io/etcd/v3\n\ngo 1.25\n"),
		commit:    etcdSHA,
		origin:    "https://github.com/openshift/etcd",
	}

	t.Run("etcd sub-module keeps its suffix", func(t *testing.T) {
		m := manifest.NewMem()
		r := newTestResolver(t, m, map[string]Source{component.EtcdComponent: etcd})

		got, err := r.Resolve(t.Context(), "go.etcd.io/etcd/client/v3", directive.Directive{Kind: directive.Release, Arg: "etcd"})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if want := "github.com/openshift/etcd/client/v3"; got.NewPath != want {
			t.Errorf("NewPath = %q, want %q", got.NewPath, want)
		}
		if want := manifest.FakePseudoversion(etcdSHA); got.Version != want {
			t.Errorf("Version = %q, want %q", got.Version, want)
		}
	})

	t.Run("non-etcd module uses the fork path verbatim", func(t *testing.T) {
		m := manifest.NewMem()
		kube := kubeSource(t)
		r := newTestResolver(t, m, map[string]Source{component.KubernetesComponent: kube})

		got, err := r.Resolve(t.Context(), "k8s.io/kubernetes", directive.Directive{Kind: directive.Release, Arg: "kubernetes"})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if want := "github.com/openshift/kubernetes"; got.NewPath != want {
			t.Errorf("NewPath = %q, want %q", got.NewPath, want)
		}
	})

	t.Run("unknown component is fatal", func(t *testing.T) {
		m := manifest.NewMem()
		r := newTestResolver(t, m, nil)

		_, err := r.Resolve(t.Context(), "go.etcd.io/etcd/client/v3", directive.Directive{Kind: directive.Release, Arg: "not-a-component"})
		if !errors.Is(err, component.ErrUnknownComponent) {
			t.Errorf("Resolve() error = %v, want ErrUnknownComponent", err)
		}
	})
}

func TestResolveFrom(t *testing.T) {
	t.Run("plain upstream pin copied through", func(t *testing.T) {
		kube := kubeSource(t)
		upstream := "module k8s.io/kubernetes\n\ngo 1.25\n\nreplace github.com/google/cel-go => github.com/google/cel-go v0.20.1\n"
		kube.goModPath = writeUpstreamGoMod(t, upstream)

		m := manifest.NewMem()
		r := newTestResolver(t, m, map[string]Source{component.KubernetesComponent: kube})

		got, err := r.Resolve(t.Context(), "github.com/google/cel-go", directive.Directive{Kind: directive.From, Arg: "kubernetes"})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if got.NewPath != "github.com/google/cel-go" || got.Version != "v0.20.1" {
			t.Errorf("Resolve() = %q %q, want upstream pin copied through", got.NewPath, got.Version)
		}
		// No pseudoversion derivation for an explicit upstream pin.
		if m.NormalizeCalls() != 0 {
			t.Errorf("NormalizeCalls() = %d, want 0", m.NormalizeCalls())
		}
	})

	t.Run("staging-relative target rewritten to fork coordinates", func(t *testing.T) {
		kube := kubeSource(t)
		upstream := "module k8s.io/kubernetes\n\ngo 1.25\n\nreplace k8s.io/kube-aggregator => ./staging/src/k8s.io/kube-aggregator\n"
		kube.goModPath = writeUpstreamGoMod(t, upstream)

		m := manifest.NewMem()
		r := newTestResolver(t, m, map[string]Source{component.KubernetesComponent: kube})

		got, err := r.Resolve(t.Context(), "k8s.io/kube-aggregator", directive.Directive{Kind: directive.From, Arg: "kubernetes"})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if want := "github.com/openshift/kubernetes/staging/src/k8s.io/kube-aggregator"; got.NewPath != want {
			t.Errorf("NewPath = %q, want %q", got.NewPath, want)
		}
		if want := manifest.FakePseudoversion(kubeSHA); got.Version != want {
			t.Errorf("Version = %q, want %q", got.Version, want)
		}
	})

	t.Run("missing upstream replace is fatal", func(t *testing.T) {
		kube := kubeSource(t)
		m := manifest.NewMem()
		r := newTestResolver(t, m, map[string]Source{component.KubernetesComponent: kube})

		_, err := r.Resolve(t.Context(), "github.com/google/cel-go", directive.Directive{Kind: directive.From, Arg: "kubernetes"})
		if !errors.Is(err, ErrMissingUpstreamReplace) {
			t.Errorf("Resolve() error = %v, want ErrMissingUpstreamReplace", err)
		}
	})

	t.Run("unknown component is fatal", func(t *testing.T) {
		m := manifest.NewMem()
		r := newTestResolver(t, m, nil)

		_, err := r.Resolve(t.Context(), "github.com/google/cel-go", directive.Directive{Kind: directive.From, Arg: "no-such-thing"})
		var ucErr *component.UnknownComponentError
		if !errors.As(err, &ucErr) {
			t.Fatalf("Resolve() error = %v, want UnknownComponentError", err)
		}
		if ucErr.Name != "no-such-thing" {
			t.Errorf("UnknownComponentError.Name = %q", ucErr.Name)
		}
	})

	t.Run("upstream pseudoversion pin accepted", func(t *testing.T) {
		kube := kubeSource(t)
		upstream := "module k8s.io/kubernetes\n\ngo 1.25\n\nreplace k8s.io/klog/v2 => k8s.io/klog/v2 v2.120.1-0.20240101000000-cccccccccccc\n"
		kube.goModPath = writeUpstreamGoMod(t, upstream)

		m := manifest.NewMem()
		r := newTestResolver(t, m, map[string]Source{component.KubernetesComponent: kube})

		got, err := r.Resolve(t.Context(), "k8s.io/klog/v2", directive.Directive{Kind: directive.From, Arg: "kubernetes"})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if want := "v2.120.1-0.20240101000000-cccccccccccc"; got.Version != want {
			t.Errorf("Version = %q, want %q", got.Version, want)
		}
	})
}

func TestResolveRejectsNonEmbeddedComponents(t *testing.T) {
	// coredns is loaded-component and service-ca-operator is
	// embedded-component-operator: neither contributes vendored source, so a
	// directive naming them is a configuration error even when a checkout
	// happens to be staged.
	tests := []struct {
		name       string
		d          directive.Directive
		wantPolicy component.PolicyClass
	}{
		{
			name:       "from a loaded component",
			d:          directive.Directive{Kind: directive.From, Arg: "coredns"},
			wantPolicy: component.PolicyLoaded,
		},
		{
			name:       "release of an operator component",
			d:          directive.Directive{Kind: directive.Release, Arg: "service-ca-operator"},
			wantPolicy: component.PolicyEmbeddedOperator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := manifest.NewMem()
			m.SeedReplace("github.com/miekg/dns", "github.com/miekg/dns", "v1.1.58", "")
			before := m.Render()

			src := &fakeSource{
				goModPath: writeUpstreamGoMod(t, "module example.com/upstream\n\ngo 1.25\n\nreplace github.com/miekg/dns => github.com/miekg/dns v1.1.59\n"),
				commit:    etcdSHA,
				origin:    "https://github.com/openshift/fork",
			}
			r := newTestResolver(t, m, map[string]Source{tt.d.Arg: src})

			_, err := r.Resolve(t.Context(), "github.com/miekg/dns", tt.d)
			if !errors.Is(err, ErrNotEmbeddedComponent) {
				t.Fatalf("Resolve() error = %v, want ErrNotEmbeddedComponent", err)
			}
			var neErr *NotEmbeddedComponentError
			if !errors.As(err, &neErr) {
				t.Fatalf("Resolve() error = %v, want NotEmbeddedComponentError", err)
			}
			if neErr.Component != tt.d.Arg {
				t.Errorf("Component = %q, want %q", neErr.Component, tt.d.Arg)
			}
			if neErr.Policy != tt.wantPolicy {
				t.Errorf("Policy = %q, want %q", neErr.Policy, tt.wantPolicy)
			}
			if m.Render() != before {
				t.Error("manifest mutated by a rejected directive")
			}
		})
	}
}

func TestCheckUpstreamVersion(t *testing.T) {
	tests := []struct {
		name    string
		version string
		wantErr bool
	}{
		{name: "commit SHA passes through", version: etcdSHA, wantErr: false},
		{name: "explicit semver pin", version: "v0.20.1", wantErr: false},
		{name: "pseudoversion pin", version: "v0.0.0-20250101000000-aaaaaaaaaaaa", wantErr: false},
		{name: "malformed version", version: "not-a-version", wantErr: true},
		{name: "truncated SHA", version: "bbbbbbbbbbbb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkUpstreamVersion("kubernetes", "github.com/google/cel-go", tt.version)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("checkUpstreamVersion() error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrMalformedUpstreamVersion) {
				t.Fatalf("checkUpstreamVersion() error = %v, want ErrMalformedUpstreamVersion", err)
			}
			var mvErr *MalformedUpstreamVersionError
			if !errors.As(err, &mvErr) {
				t.Fatalf("checkUpstreamVersion() error = %v, want MalformedUpstreamVersionError", err)
			}
			if mvErr.Version != tt.version {
				t.Errorf("Version = %q, want %q", mvErr.Version, tt.version)
			}
		})
	}
}

func TestResolveSkips(t *testing.T) {
	tests := []struct {
		name       string
		d          directive.Directive
		wantReason string
	}{
		{
			name:       "override is never mutated",
			d:          directive.Directive{Kind: directive.Override, Arg: "pinned for CVE-2024-0874"},
			wantReason: "override: pinned for CVE-2024-0874",
		},
		{
			name:       "absent directive",
			d:          directive.Directive{Kind: directive.Absent},
			wantReason: "no directive",
		},
		{
			name:       "unknown directive",
			d:          directive.Directive{Kind: directive.Unknown, Arg: "frozen"},
			wantReason: "unrecognized directive: frozen",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := manifest.NewMem()
			m.SeedReplace("example.com/mod", "example.com/fork", "v1.0.0", "")
			before := m.Render()

			r := newTestResolver(t, m, nil)
			got, err := r.Resolve(t.Context(), "example.com/mod", tt.d)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !got.Skipped {
				t.Fatal("Resolve() Skipped = false")
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", got.Reason, tt.wantReason)
			}
			if m.Render() != before {
				t.Error("manifest mutated by a skip")
			}
		})
	}
}

func TestResolveIdempotence(t *testing.T) {
	m := manifest.NewMem()
	sources := map[string]Source{component.KubernetesComponent: kubeSource(t)}
	d := directive.Directive{Kind: directive.Staging, Arg: "kubernetes"}

	r1 := newTestResolver(t, m, sources)
	if _, err := r1.Resolve(t.Context(), "k8s.io/api", d); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	first := m.Render()

	// A fresh resolver (empty cache) against the unchanged inputs must land
	// on byte-identical directives.
	r2 := newTestResolver(t, m, sources)
	if _, err := r2.Resolve(t.Context(), "k8s.io/api", d); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if second := m.Render(); second != first {
		t.Errorf("second run changed the manifest:\nfirst:\n%s\nsecond:\n%s", first, second)
	}
}

func TestPseudoversionRegexp(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{
			name: "plain pseudoversion",
			line: "k8s.io/api => github.com/openshift/kubernetes/staging/src/k8s.io/api v0.0.0-20250101000000-aaaaaaaaaaaa // staging kubernetes",
			want: "v0.0.0-20250101000000-aaaaaaaaaaaa",
		},
		{
			name: "pre-release segment form",
			line: "go.etcd.io/etcd/client/v3 => github.com/openshift/etcd/client/v3 v3.5.1-0.20250101000000-bbbbbbbbbbbb",
			want: "v3.5.1-0.20250101000000-bbbbbbbbbbbb",
		},
		{
			name: "no pseudoversion",
			line: "github.com/coredns/coredns => github.com/coredns/coredns v1.11.3",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pseudoversionRE.FindString(tt.line); got != tt.want {
				t.Errorf("FindString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFatalErrorTypes(t *testing.T) {
	missing := &MissingUpstreamReplaceError{Component: "kubernetes", ModulePath: "k8s.io/api"}
	if !errors.Is(missing, ErrMissingUpstreamReplace) {
		t.Error("MissingUpstreamReplaceError should wrap ErrMissingUpstreamReplace")
	}
	if !strings.Contains(missing.Error(), "k8s.io/api") {
		t.Errorf("Error() = %q, want module path named", missing.Error())
	}

	malformed := &MalformedUpstreamVersionError{Component: "etcd", ModulePath: "go.etcd.io/etcd/api/v3", Version: "not-a-version"}
	if !errors.Is(malformed, ErrMalformedUpstreamVersion) {
		t.Error("MalformedUpstreamVersionError should wrap ErrMalformedUpstreamVersion")
	}
	if !strings.Contains(malformed.Error(), "not-a-version") {
		t.Errorf("Error() = %q, want version named", malformed.Error())
	}
}
