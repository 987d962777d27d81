// Package document deserializes an OpenAPI v2 (Swagger) document into an
// in-memory tree with reference placeholders still in place.
//
// Document is generic over an extension payload type E, decoded from every
// schema's "x-*" keys (see [Extensions] for the default). Callers that need
// a bespoke extension profile (the Kubernetes profile this package ships
// being one example) supply their own E to [Load].
//
// document only parses; it never dereferences a "$ref" or imposes any
// ordering beyond what the source bytes already had. That is the
// [go.oastate.dev/oastate/resolve] package's job.
package document
