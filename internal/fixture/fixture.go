// Package fixture embeds a trimmed OpenAPI v2 document used by the
// end-to-end test at the repository root. It stands in for a full
// Kubernetes-scale specification while still exercising a self-referential
// schema, an enum, an additionalProperties/properties conflict, a field name
// that collides with a query parameter name, and a no-path-parameter
// operation alongside ordinary CRUD-style ones.
package fixture

import _ "embed"

//go:embed openapi.json
var OpenAPIV2 []byte
