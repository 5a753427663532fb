// SPDX-License-Identifier: MPL-2.0

package main

import cmd "labpod-cli/cmd/labpod"

func main() {
	cmd.Execute()
}
