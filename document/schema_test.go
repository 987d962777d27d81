package document_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"go.oastate.dev/oastate/document"
)

func TestAdditionalProperties_BooleanForms(t *testing.T) {
	var trueAP document.AdditionalProperties[document.NoExtensions]
	require.NoError(t, json.Unmarshal([]byte(`true`), &trueAP))
	require.True(t, trueAP.Allowed)
	require.Nil(t, trueAP.Schema)

	var falseAP document.AdditionalProperties[document.NoExtensions]
	require.NoError(t, json.Unmarshal([]byte(`false`), &falseAP))
	require.False(t, falseAP.Allowed)
}

func TestAdditionalProperties_SchemaForm(t *testing.T) {
	var ap document.AdditionalProperties[document.NoExtensions]
	require.NoError(t, json.Unmarshal([]byte(`{"type":"string"}`), &ap))
	require.True(t, ap.Allowed)
	require.NotNil(t, ap.Schema)
	require.Equal(t, "string", ap.Schema.Type)
}

func TestSchema_ExtensionsDefault(t *testing.T) {
	const src = `{
		"type": "object",
		"x-kubernetes-patch-strategy": "merge,retainKeys",
		"x-kubernetes-patch-merge-key": "name",
		"x-kubernetes-group-version-kind": [{"group":"","kind":"Widget","version":"v1"}]
	}`

	var s document.Schema[document.Extensions]
	require.NoError(t, json.Unmarshal([]byte(src), &s))
	require.Equal(t, document.PatchStrategyMergeAndRetain, s.Extensions.KubernetesPatchStrategy)
	require.Equal(t, "name", s.Extensions.KubernetesPatchMergeKey)
	require.NotNil(t, s.Extensions.Raw)
}

func TestSchema_NoExtensionsIgnoresUnknownFields(t *testing.T) {
	var s document.Schema[document.NoExtensions]
	require.NoError(t, json.Unmarshal([]byte(`{"type":"string","x-anything":123}`), &s))
	require.Equal(t, "string", s.Type)
}
