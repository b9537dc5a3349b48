// SPDX-License-Identifier: MPL-2.0

package resolver

import "strings"

// redirectRule rewrites a module path to a differently-addressed source
// when a release directive resolves it. Rules are checked in order; the
// first match wins, and no match means the component fork's module path is
// used as-is.
type redirectRule struct {
	name    string
	matches func(modulePath string) bool
	rewrite func(forkPath, modulePath string) string
}

// redirectRules holds the known special cases. etcd publishes several
// sub-modules (api, client/v3, ...) out of one repository, so the fork path
// keeps the sub-module suffix after the go.etcd.io/etcd prefix.
var redirectRules = []redirectRule{
	{
		name: "etcd-submodules",
		matches: func(modulePath string) bool {
			return modulePath == EtcdModulePrefix || strings.HasPrefix(modulePath, EtcdModulePrefix+"/")
		},
		rewrite: func(forkPath, modulePath string) string {
			return forkPath + strings.TrimPrefix(modulePath, EtcdModulePrefix)
		},
	},
}
