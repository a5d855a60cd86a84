// relpack packages a desktop/mobile remote-access application into its
// platform distributable: a signed Windows installer, a macOS disk image or a
// version-stamped Android package.
package main

import "github.com/ofarch/relpack/cmd/relpack/cmd"

func main() {
	cmd.Execute()
}
