// Command supercall is a linter that checks overriding methods call the
// implementation of the embedded type they shadow.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/mpyw/supercall"
)

func main() {
	singlechecker.Main(supercall.Analyzer)
}
