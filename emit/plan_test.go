package emit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"go.oastate.dev/oastate/catalog"
	"go.oastate.dev/oastate/document"
	"go.oastate.dev/oastate/emit"
	"go.oastate.dev/oastate/resolve"
)

func buildPlan(t *testing.T, src string) (*catalog.Catalog, *emit.Plan, []catalog.Warning) {
	t.Helper()
	doc, err := document.Load[document.NoExtensions](strings.NewReader(src))
	require.NoError(t, err)
	resolved, err := resolve.Resolve(doc)
	require.NoError(t, err)
	cat, _, err := catalog.Synthesize(resolved)
	require.NoError(t, err)
	plan, warnings := emit.BuildPlan(resolved, cat)
	return cat, plan, warnings
}

const widgetDoc = `{
	"swagger": "2.0", "info": {"title":"t","version":"v1"},
	"definitions": {
		"io.example.v1.Widget": {
			"type": "object",
			"required": ["name"],
			"properties": {"name": {"type": "string"}, "size": {"type": "integer"}}
		}
	},
	"paths": {
		"/namespaces/{namespace}/widgets/{name}": {
			"get": {
				"operationId": "readWidget",
				"parameters": [
					{"name": "namespace", "in": "path", "required": true, "type": "string"},
					{"name": "name", "in": "path", "required": true, "type": "string"}
				],
				"responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/io.example.v1.Widget"}}}
			},
			"post": {
				"operationId": "createWidget",
				"parameters": [
					{"name": "namespace", "in": "path", "required": true, "type": "string"},
					{"name": "body", "in": "body", "schema": {"$ref": "#/definitions/io.example.v1.Widget"}}
				],
				"responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/io.example.v1.Widget"}}}
			}
		},
		"/apis": {
			"get": {
				"operationId": "getApiVersions",
				"responses": {"200": {"description": "ok"}}
			}
		}
	}
}`

func TestBuildPlan_OwnerAssignmentAndMarkers(t *testing.T) {
	_, plan, warnings := buildPlan(t, widgetDoc)
	require.NotEmpty(t, warnings) // getApiVersions has no schema owner

	names := make([]string, len(plan.Builders))
	for i, b := range plan.Builders {
		names[i] = b.Name
	}
	require.Contains(t, names, "WidgetGetBuilder")
	require.Contains(t, names, "WidgetPostBuilder")

	var getBuilder *emit.Builder
	for _, b := range plan.Builders {
		if b.Name == "WidgetGetBuilder" {
			getBuilder = b
		}
	}
	require.NotNil(t, getBuilder)
	markerNames := make([]string, len(getBuilder.Markers))
	for i, m := range getBuilder.Markers {
		markerNames[i] = m.Name
	}
	require.ElementsMatch(t, []string{"Namespace", "Name"}, markerNames)
}

func TestBuildPlan_UnitBuilderHasNoMarkers(t *testing.T) {
	doc, err := document.Load[document.NoExtensions](strings.NewReader(`{
		"swagger": "2.0", "info": {"title":"t","version":"v1"},
		"definitions": {
			"io.example.v1.ApiGroupList": {"type": "object", "properties": {"groups": {"type": "array", "items": {"type": "string"}}}}
		},
		"paths": {
			"/apis": {
				"get": {
					"operationId": "getApiGroupList",
					"responses": {"200": {"description": "ok", "schema": {"$ref": "#/definitions/io.example.v1.ApiGroupList"}}}
				}
			}
		}
	}`))
	require.NoError(t, err)
	resolved, err := resolve.Resolve(doc)
	require.NoError(t, err)
	cat, _, err := catalog.Synthesize(resolved)
	require.NoError(t, err)
	plan, _ := emit.BuildPlan(resolved, cat)

	require.Len(t, plan.Builders, 1)
	require.True(t, plan.Builders[0].IsUnit())
}

func TestBuildPlan_BuilderOrdinalsAreStable(t *testing.T) {
	_, plan1, _ := buildPlan(t, widgetDoc)
	_, plan2, _ := buildPlan(t, widgetDoc)

	require.Equal(t, len(plan1.Builders), len(plan2.Builders))
	for i := range plan1.Builders {
		require.Equal(t, plan1.Builders[i].Name, plan2.Builders[i].Name)
	}
}
