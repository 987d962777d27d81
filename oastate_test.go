// End-to-end test driving the full document -> resolve -> catalog -> emit
// pipeline against a fixed OpenAPI v2 document and asserting on the emitted
// Rust source tree. Assertions check substring presence rather than exact
// byte offsets: calibrating exact offsets would require running the
// generator once to observe them, which this repository's build process
// never does.
package oastate_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.oastate.dev/oastate/internal/fixture"
	"go.oastate.dev/oastate/pipeline"
)

// assertFileContainsContent fails the test unless path's content contains
// want. It stands in for the original Rust test suite's
// assert_file_contains_content_at, which additionally pinned an exact byte
// offset; reproducing that here would require running the generator once to
// observe real offsets, which this repository never does.
func assertFileContainsContent(t *testing.T, outDir, relPath, want string) {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(outDir, relPath))
	require.NoError(t, err, "reading %s", relPath)
	assert.Contains(t, string(content), want, "%s should contain %q", relPath, want)
}

func runFixture(t *testing.T, configure func(*pipeline.Config)) (string, *pipeline.Result) {
	t.Helper()

	cfg := pipeline.NewConfig()
	cfg.Output = t.TempDir()
	if configure != nil {
		configure(cfg)
	}

	p, err := cfg.NewPipeline()
	require.NoError(t, err)

	result, err := p.Run(slog.New(slog.DiscardHandler), strings.NewReader(string(fixture.OpenAPIV2)))
	require.NoError(t, err)

	return cfg.Output, result
}

func TestPipeline_EmitsEveryDefinitionAsARustFile(t *testing.T) {
	outDir, result := runFixture(t, nil)

	// 9 definitions: ObjectMeta, OwnerReference, Protocol, JSONSchemaProps,
	// DeleteOptions, ConfigMap, ConfigMapList, ConfigMapVolumeSource,
	// FlexVolumeSource.
	assert.Equal(t, 9, result.Definitions)

	assertFileContainsContent(t, outDir, "io/k8s/api/core/v1/object_meta.rs", "pub struct ObjectMeta")
	assertFileContainsContent(t, outDir, "io/k8s/api/core/v1/owner_reference.rs", "pub struct OwnerReference")
	assertFileContainsContent(t, outDir, "io/k8s/api/core/v1/config_map.rs", "pub struct ConfigMap")
	assertFileContainsContent(t, outDir, "io/k8s/api/core/v1/config_map_list.rs", "pub struct ConfigMapList")
	assertFileContainsContent(t, outDir, "io/k8s/apimachinery/pkg/apis/meta/v1/delete_options.rs", "pub struct DeleteOptions")
}

func TestPipeline_RendersStringEnumAsRustEnum(t *testing.T) {
	outDir, _ := runFixture(t, nil)

	content, err := os.ReadFile(filepath.Join(outDir, "io/k8s/api/core/v1/protocol.rs"))
	require.NoError(t, err)

	assert.Contains(t, string(content), "pub enum Protocol")
	for _, variant := range []string{"Tcp", "Udp", "Sctp"} {
		assert.Contains(t, string(content), variant)
	}
}

func TestPipeline_BoxesSelfReferentialSchema(t *testing.T) {
	outDir, _ := runFixture(t, nil)

	content, err := os.ReadFile(filepath.Join(outDir,
		"io/k8s/apiextensions_apiserver/pkg/apis/apiextensions/v1beta1/json_schema_props.rs"))
	require.NoError(t, err)
	src := string(content)

	assert.Contains(t, src, "pub struct JsonSchemaProps")
	assert.Contains(t, src, "Box<crate::io::k8s::apiextensions_apiserver::"+
		"pkg::apis::apiextensions::v1beta1::JsonSchemaProps>")
}

func TestPipeline_WarnsWhenAdditionalPropertiesConflictsWithProperties(t *testing.T) {
	_, result := runFixture(t, nil)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "FlexVolumeSource") && strings.Contains(w, "additionalProperties") {
			found = true
		}
	}
	assert.True(t, found, "expected a FlexVolumeSource additionalProperties warning, got %v", result.Warnings)
}

func TestPipeline_WarnsOnOperationWithoutAnUnambiguousOwner(t *testing.T) {
	_, result := runFixture(t, nil)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "getCoreV1APIResources") {
			found = true
		}
	}
	assert.True(t, found, "expected a warning for the schema-less getCoreV1APIResources operation, got %v", result.Warnings)
}

func TestPipeline_EmitsTypestateBuildersForPathAndBodyParameters(t *testing.T) {
	outDir, _ := runFixture(t, nil)

	content, err := os.ReadFile(filepath.Join(outDir, "operations.rs"))
	require.NoError(t, err)
	src := string(content)

	// The read/replace/delete operations key off {namespace} and {name} path
	// parameters (list and create off {namespace} alone), each gated behind
	// its own typestate setter.
	assert.Contains(t, src, "with_namespace")
	assert.Contains(t, src, "with_name")

	// The delete operation, which also carries a DeleteOptions body, still
	// gets a builder of its own; its doc comment names the operation id.
	assert.Contains(t, src, "deleteCoreV1NamespacedConfigMap")
}

func TestPipeline_EmitsClientRuntimeInFirstCommonPrefixModule(t *testing.T) {
	outDir, _ := runFixture(t, nil)

	// Every fixture definition lives under "io", so that's where the client
	// runtime belongs rather than the crate root.
	content, err := os.ReadFile(filepath.Join(outDir, "io", "mod.rs"))
	require.NoError(t, err)
	src := string(content)

	assert.Contains(t, src, "pub enum ApiError")
	assert.Contains(t, src, "pub trait ApiClient")
	assert.Contains(t, src, "pub trait Sendable")
	assert.Contains(t, src, "pub fn apply_query")
}

func TestPipeline_SubstitutesPathParametersIntoRelPath(t *testing.T) {
	outDir, _ := runFixture(t, nil)

	content, err := os.ReadFile(filepath.Join(outDir, "operations.rs"))
	require.NoError(t, err)
	src := string(content)

	assert.Contains(t, src, `format!("/api/v1/namespaces/{}/configmaps/{}", self.namespace, self.name)`)
	assert.NotContains(t, src, "let _ =")
}

func TestPipeline_MergesQueryParameterWithCollidingBodyField(t *testing.T) {
	outDir, _ := runFixture(t, nil)

	content, err := os.ReadFile(filepath.Join(outDir, "operations.rs"))
	require.NoError(t, err)
	src := string(content)

	// gracePeriodSeconds is both a query parameter and a DeleteOptions body
	// field on deleteCoreV1NamespacedConfigMap; one setter must cover both.
	assert.Contains(t, src, "with_grace_period_seconds")
	assert.Contains(t, src, "self.body.grace_period_seconds = Some(value.into())")
	assert.Contains(t, src, `("gracePeriodSeconds", self.body.grace_period_seconds.as_ref().map(ToString::to_string))`)
	assert.Contains(t, src, "apply_query(builder, &pairs)")
}

func TestPipeline_EmitsUnitBuilderForOperationWithNoParameters(t *testing.T) {
	outDir, _ := runFixture(t, nil)

	content, err := os.ReadFile(filepath.Join(outDir, "operations.rs"))
	require.NoError(t, err)
	src := string(content)

	assert.Contains(t, src, "getCoreV1APIResources")
}

func TestPipeline_StrictModeTreatsFixtureWarningsAsErrors(t *testing.T) {
	cfg := pipeline.NewConfig()
	cfg.Output = t.TempDir()
	cfg.Strict = true

	p, err := cfg.NewPipeline()
	require.NoError(t, err)

	_, err = p.Run(slog.New(slog.DiscardHandler), strings.NewReader(string(fixture.OpenAPIV2)))
	require.ErrorIs(t, err, pipeline.ErrStrict)
}

func TestPipeline_NoneProfileStillEmitsEveryDefinition(t *testing.T) {
	outDir, result := runFixture(t, func(cfg *pipeline.Config) {
		cfg.ExtensionProfile = string(pipeline.ProfileNone)
	})

	assert.Equal(t, 9, result.Definitions)
	assertFileContainsContent(t, outDir, "io/k8s/api/core/v1/config_map.rs", "pub struct ConfigMap")
}
