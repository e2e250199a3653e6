// SPDX-License-Identifier: MPL-2.0

package main

import cmd "pysolate/cmd/contain"

func main() {
	cmd.Execute()
}
