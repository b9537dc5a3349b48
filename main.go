// SPDX-License-Identifier: MPL-2.0

package main

import cmd "rebasectl/cmd/rebasectl"

func main() {
	cmd.Execute()
}
