// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

func TestFormatPath(t *testing.T) {
	tests := []struct {
		name string
		path []string
		want string
	}{
		{name: "empty", path: nil, want: ""},
		{name: "flat", path: []string{"staging_dir"}, want: "staging_dir"},
		{name: "nested", path: []string{"ui", "color_scheme"}, want: "ui.color_scheme"},
		{name: "index", path: []string{"components", "0", "commit"}, want: "components[0].commit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPath(tt.path); got != tt.want {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		if err := FormatError(nil, "config.cue"); err != nil {
			t.Errorf("FormatError(nil) = %v", err)
		}
	})

	t.Run("cue validation error names the path", func(t *testing.T) {
		ctx := cuecontext.New()
		schema := ctx.CompileString(`#Config: {ui: {verbose: bool}}`).LookupPath(cue.ParsePath("#Config"))
		user := ctx.CompileString(`ui: {verbose: "yes"}`)

		err := schema.Unify(user).Validate(cue.Concrete(false))
		if err == nil {
			t.Fatal("Validate() expected error")
		}
		got := FormatError(err, "config.cue")
		if !strings.Contains(got.Error(), "config.cue") || !strings.Contains(got.Error(), "verbose") {
			t.Errorf("FormatError() = %q, want file and field named", got)
		}
	})
}

func TestCheckFileSize(t *testing.T) {
	if err := CheckFileSize(make([]byte, 10), 10, "config.cue"); err != nil {
		t.Errorf("CheckFileSize() at limit error = %v", err)
	}
	if err := CheckFileSize(make([]byte, 11), 10, "config.cue"); err == nil {
		t.Error("CheckFileSize() expected error over limit")
	}
}
