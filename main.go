// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/wxsinline/wxsinline/cmd/wxsinline"

func main() {
	cmd.Execute()
}
