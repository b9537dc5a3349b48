// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"strings"
	"testing"
)

func TestMemNormalize(t *testing.T) {
	sha := strings.Repeat("ab", 20)

	m := NewMem()
	m.SeedReplace("k8s.io/kubernetes", "github.com/example/kubernetes", sha, "from kubernetes")
	m.SeedReplace("github.com/coredns/coredns", "github.com/coredns/coredns", "v1.11.3", "override pinned")
	m.SeedRequire("k8s.io/kubernetes", sha)

	if err := m.Normalize(t.Context()); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	rep, ok := m.ReplaceFor("k8s.io/kubernetes")
	if !ok {
		t.Fatal("ReplaceFor() ok = false")
	}
	if want := FakePseudoversion(sha); rep.Version != want {
		t.Errorf("replace version = %q, want %q", rep.Version, want)
	}
	if v, _ := m.RequireVersion("k8s.io/kubernetes"); v != FakePseudoversion(sha) {
		t.Errorf("require version = %q, want fake pseudoversion", v)
	}

	// Semver versions pass through untouched.
	rep, _ = m.ReplaceFor("github.com/coredns/coredns")
	if rep.Version != "v1.11.3" {
		t.Errorf("override version = %q, want untouched v1.11.3", rep.Version)
	}

	if m.NormalizeCalls() != 1 {
		t.Errorf("NormalizeCalls() = %d, want 1", m.NormalizeCalls())
	}
}

func TestMemReadDirective(t *testing.T) {
	m := NewMem()
	m.SeedReplace("k8s.io/api", "github.com/example/kubernetes/staging/src/k8s.io/api", "v0.0.0-20250101000000-abcdefabcdef", "staging kubernetes")

	raw, ok, err := m.ReadDirective("k8s.io/api")
	if err != nil {
		t.Fatalf("ReadDirective() error = %v", err)
	}
	if !ok {
		t.Fatal("ReadDirective() ok = false")
	}
	want := "k8s.io/api => github.com/example/kubernetes/staging/src/k8s.io/api v0.0.0-20250101000000-abcdefabcdef // staging kubernetes"
	if raw != want {
		t.Errorf("ReadDirective() = %q, want %q", raw, want)
	}

	if _, ok, _ := m.ReadDirective("k8s.io/client-go"); ok {
		t.Error("ReadDirective() ok = true for absent directive")
	}
}

func TestMemSetReplaceKeepsComment(t *testing.T) {
	m := NewMem()
	m.SeedReplace("k8s.io/kubernetes", "github.com/example/kubernetes", "v0.0.0-old", "from kubernetes")

	if err := m.SetReplace("k8s.io/kubernetes", "github.com/example/kubernetes", strings.Repeat("cd", 20)); err != nil {
		t.Fatalf("SetReplace() error = %v", err)
	}
	rep, _ := m.ReplaceFor("k8s.io/kubernetes")
	if rep.Comment != "from kubernetes" {
		t.Errorf("Comment = %q, want kept across SetReplace", rep.Comment)
	}
}

func TestMemRenderIsStable(t *testing.T) {
	build := func() *Mem {
		m := NewMem()
		m.SeedRequire("k8s.io/kubernetes", "v1.31.2")
		m.SeedRequire("k8s.io/api", "v0.0.0")
		m.SeedReplace("k8s.io/kubernetes", "github.com/example/kubernetes", "v0.0.0-x", "from kubernetes")
		m.SeedReplace("k8s.io/api", "github.com/example/kubernetes/staging/src/k8s.io/api", "v0.0.0-x", "staging kubernetes")
		return m
	}

	if build().Render() != build().Render() {
		t.Error("Render() not deterministic across identical manifests")
	}
	if !strings.Contains(build().Render(), "k8s.io/kubernetes => github.com/example/kubernetes") {
		t.Errorf("Render() missing replace block:\n%s", build().Render())
	}
}
