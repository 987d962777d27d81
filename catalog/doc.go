// Package catalog synthesizes a deterministic, alphabetically-ordered set of
// named data types (records, enumerations, and the array/map/boxed-reference
// containers that wrap them) from a resolved [document.Document].
//
// Every entry gets a stable module path and type name derived from its
// source: a dot-segmented definition name for named definitions, or the
// owning entry's path plus the field name for schemas synthesized from an
// anonymous inline object or enum. Two occurrences of the same named
// definition (found by pointer identity, thanks to [resolve.Resolve]'s
// shared-handle invariant) always produce the same catalog entry and the
// same [FieldType] reference; a schema that refers to its own entry,
// directly rather than through an array or map, is boxed.
package catalog
