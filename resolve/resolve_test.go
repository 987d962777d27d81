package resolve_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go.oastate.dev/oastate/document"
	"go.oastate.dev/oastate/resolve"
)

func load(t *testing.T, src string) *document.Document[document.NoExtensions] {
	t.Helper()
	doc, err := document.Load[document.NoExtensions](strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestResolve_SharedHandleIdentity(t *testing.T) {
	doc := load(t, `{
		"swagger": "2.0",
		"info": {"title": "t", "version": "v1"},
		"definitions": {
			"Widget": {"type": "object", "properties": {"name": {"type": "string"}}},
			"Box": {
				"type": "object",
				"properties": {
					"a": {"$ref": "#/definitions/Widget"},
					"b": {"$ref": "#/definitions/Widget"}
				}
			}
		},
		"paths": {}
	}`)

	resolved, err := resolve.Resolve(doc)
	require.NoError(t, err)

	box := resolved.Definitions["Box"]
	require.Same(t, box.Properties["a"], box.Properties["b"])
	require.Same(t, resolved.Definitions["Widget"], box.Properties["a"])
}

func TestResolve_DanglingReference(t *testing.T) {
	doc := load(t, `{
		"swagger": "2.0",
		"info": {"title": "t", "version": "v1"},
		"definitions": {
			"Box": {"type": "object", "properties": {"a": {"$ref": "#/definitions/Missing"}}}
		},
		"paths": {}
	}`)

	_, err := resolve.Resolve(doc)
	require.ErrorIs(t, err, resolve.ErrDanglingReference)
}

func TestResolve_UnsupportedScope(t *testing.T) {
	doc := load(t, `{
		"swagger": "2.0",
		"info": {"title": "t", "version": "v1"},
		"definitions": {
			"Box": {"type": "object", "properties": {"a": {"$ref": "#/parameters/Foo"}}}
		},
		"paths": {}
	}`)

	_, err := resolve.Resolve(doc)
	require.ErrorIs(t, err, resolve.ErrUnsupportedReferenceScope)
}

func TestResolve_SelfReferenceCycleTolerant(t *testing.T) {
	doc := load(t, `{
		"swagger": "2.0",
		"info": {"title": "t", "version": "v1"},
		"definitions": {
			"Tree": {
				"type": "object",
				"properties": {
					"children": {"type": "array", "items": {"$ref": "#/definitions/Tree"}},
					"not": {"$ref": "#/definitions/Tree"}
				}
			}
		},
		"paths": {}
	}`)

	resolved, err := resolve.Resolve(doc)
	require.NoError(t, err)

	tree := resolved.Definitions["Tree"]
	require.Same(t, tree, tree.Properties["children"].Items)
	require.Same(t, tree, tree.Properties["not"])
}

func TestResolve_DirectSelfAliasIsReferenceError(t *testing.T) {
	doc := load(t, `{
		"swagger": "2.0",
		"info": {"title": "t", "version": "v1"},
		"definitions": {
			"Alias": {"$ref": "#/definitions/Alias"}
		},
		"paths": {}
	}`)

	_, err := resolve.Resolve(doc)
	require.ErrorIs(t, err, resolve.ErrReference)
}

func TestResolve_Idempotent(t *testing.T) {
	doc := load(t, `{
		"swagger": "2.0",
		"info": {"title": "t", "version": "v1"},
		"definitions": {
			"Widget": {"type": "object", "properties": {"name": {"type": "string"}}},
			"Box": {"type": "object", "properties": {"a": {"$ref": "#/definitions/Widget"}}}
		},
		"paths": {}
	}`)

	first, err := resolve.Resolve(doc)
	require.NoError(t, err)

	second, err := resolve.Resolve(first)
	require.NoError(t, err)
	require.Same(t, first.Definitions["Widget"], second.Definitions["Box"].Properties["a"])
}

func TestResolve_OperationResponseAndParameterSchemas(t *testing.T) {
	doc := load(t, `{
		"swagger": "2.0",
		"info": {"title": "t", "version": "v1"},
		"definitions": {
			"Widget": {"type": "object", "properties": {"name": {"type": "string"}}}
		},
		"paths": {
			"/widgets": {
				"post": {
					"operationId": "createWidget",
					"parameters": [
						{"name": "body", "in": "body", "schema": {"$ref": "#/definitions/Widget"}}
					],
					"responses": {
						"200": {"description": "ok", "schema": {"$ref": "#/definitions/Widget"}}
					}
				}
			}
		}
	}`)

	resolved, err := resolve.Resolve(doc)
	require.NoError(t, err)

	op := resolved.Paths["/widgets"].Operations[document.MethodPost]
	require.Same(t, resolved.Definitions["Widget"], op.Parameters[0].Schema)
	require.Same(t, resolved.Definitions["Widget"], op.Responses["200"].Schema)
}
