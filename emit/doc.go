// Package emit attaches operations to catalog entries, builds the
// typestate-checked builder plan for each operation, and writes the
// resulting Rust source tree to disk.
//
// An operation's "owner" type is the catalog entry its builder is attached
// to as an inherent impl: a request-body operation (POST/PUT/PATCH) is
// owned by its body type, a response-reading operation (GET/DELETE/HEAD/
// OPTIONS) by its success response type. Builders carry one phantom type
// parameter per required path parameter or required owner field that isn't
// already supplied, with a `Missing<Name>`/`<Name>Exists` marker pair per
// parameter name (shared across every builder that needs it) and a
// `with_<field>` setter per parameter that flips Missing to Exists.
//
// Builder ordinals follow a single stable sort over every operation in the
// document, keyed by (OperationID, Path, Method): the first operation
// needing a given owner+verb name gets the bare name
// ("ConfigMapPostBuilder"); every later one with the same name appends a
// per-name count, 1 for the second, 2 for the third and so on
// ("ConfigMapGetBuilder1", "...Builder59"), so names stay stable across runs.
package emit
