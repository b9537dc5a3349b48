// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	ids := []Id{
		ReleaseInfoNotFoundId,
		ReleaseInfoParseErrorId,
		UnknownComponentId,
		CheckoutFailedId,
		ManifestParseErrorId,
		MissingUpstreamReplaceId,
		TidyFailedId,
		ConfigLoadFailedId,
		ChangelogFetchFailedId,
	}

	for _, id := range ids {
		got := Get(id)
		if got == nil {
			t.Errorf("Get(%d) = nil", id)
			continue
		}
		if got.Id() != id {
			t.Errorf("Get(%d).Id() = %d", id, got.Id())
		}
		if got.MarkdownMsg() == "" {
			t.Errorf("Get(%d) has empty markdown message", id)
		}
	}

	if len(Values()) != len(ids) {
		t.Errorf("Values() has %d issues, want %d", len(Values()), len(ids))
	}
}

func TestGetUnknownId(t *testing.T) {
	if Get(Id(9999)) != nil {
		t.Error("Get() for unknown id should return nil")
	}
}

func TestRender(t *testing.T) {
	orig := render
	t.Cleanup(func() { render = orig })
	render = func(in, stylePath string) (string, error) {
		return in + "|" + stylePath, nil
	}

	out, err := Get(UnknownComponentId).Render("dark")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "Unknown component") {
		t.Errorf("Render() output missing issue text: %q", out)
	}
	if !strings.HasSuffix(out, "|dark") {
		t.Errorf("Render() did not pass style path through: %q", out)
	}
}
