// Package resolve rebinds every "$ref" placeholder in a [document.Document]
// to point directly at its target definition, so that downstream packages
// never have to dereference a pointer by name again.
//
// Resolution happens in place: a placeholder schema node (Ref set, every
// other field zero) is never mutated. Instead every pointer field that held
// a placeholder is rebound to the registry's pointer for the target
// definition, so two properties that both say `{"$ref": "#/definitions/Foo"}`
// end up pointing at the exact same *document.Schema[E] — the "shared
// handle" invariant the model synthesizer relies on to detect
// self-references by pointer identity rather than by name comparison.
//
// The algorithm tolerates cycles: a visited-set keyed by pointer identity
// ensures each reachable schema node is walked exactly once, so a
// self-referential schema (a property whose resolved type is the schema
// itself) terminates instead of recursing forever.
package resolve
