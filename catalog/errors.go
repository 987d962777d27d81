package catalog

import "errors"

// ErrAmbiguousOwner is returned (as a warning, not fatal) when an
// operation's body/response schema isn't a named catalog reference, so no
// type exists to attach a builder to. The [emit] package reuses this
// sentinel directly since owner assignment is re-checked at emission.
var ErrAmbiguousOwner = errors.New("catalog: operation has no unambiguous owner type")
