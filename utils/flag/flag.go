/*
flag Package set up cli flags shared across binaries

Usage:

	Flags listed in this package are shared across boundaries and binary-agnostic
	For binary dependent flags please define in their respective package
*/

package flag

import (
	"flag"
)

const (
	DevHarness = "dev_harness"
)

var (
	IsDevelopment *bool
	ServiceName   *string
)

func init() {
	IsDevelopment = flag.Bool("dev", true, "set to true if the current run is for development. default value is true")
	ServiceName = flag.String("service", DevHarness, "name of the running binary, used as a logging field")
}

// Parse must be called from main after all packages registered their flags.
// Calling flag.Parse in init would break test binaries, their -test.* flags
// are registered later than package init.
func Parse() {
	flag.Parse()
}
