package emit

import (
	"errors"

	"go.oastate.dev/oastate/catalog"
)

// ErrAmbiguousOwner is returned (as a warning, not fatal) when an
// operation's body/response schema isn't a named catalog reference, so no
// type exists to attach a builder to. Owner assignment is re-checked here
// at emission time, so this reuses [catalog.ErrAmbiguousOwner] rather than
// minting a second sentinel for the same condition.
var ErrAmbiguousOwner = catalog.ErrAmbiguousOwner

var (
	// ErrEmission covers file-tree write failures.
	ErrEmission = errors.New("emit: failed writing output")
	// ErrConfig is returned for invalid Option combinations (e.g. an empty
	// output directory).
	ErrConfig = errors.New("emit: invalid configuration")
)
