package validator

import "github.com/joetechbob/cypher-guard/src/cgerr"

// Result is Validate's return value (spec §6). A slice with nothing to
// report is left nil.
type Result struct {
	Valid        bool
	Errors       []*cgerr.ValidationError
	TypeWarnings []string
	TypeErrors   []string
}
