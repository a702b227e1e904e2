// Package dump formats tableau snapshots for diagnostics, using the
// go-spew pretty-printer.
package dump

import (
	"github.com/davecgh/go-spew/spew"
)

var config = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// Tableau renders v (typically a bfs.Snapshot) as an indented, deterministic
// dump suitable for -debug output or a failing test's t.Log.
func Tableau(v any) string {
	return config.Sdump(v)
}
