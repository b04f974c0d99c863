// Command gloin is the compiler driver for the gloin programming
// language: it wires the CLI (internal/maincmd) to os.Args and
// mainer.CurrentStdio, with build-version/date variables substituted at
// build time.
package main

import (
	"os"

	"github.com/mna/mainer"

	"github.com/mna/gloin/internal/maincmd"
)

var (
	// placeholder values, replaced on build
	version   = "{v}" // must be N.N[.N]
	buildDate = "{d}" // must be YYYY-mm-DD
)

func main() {
	c := maincmd.Cmd{BuildVersion: version, BuildDate: buildDate}
	os.Exit(int(c.Main(os.Args, mainer.CurrentStdio())))
}
