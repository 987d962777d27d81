package document

import (
	"encoding/json"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// NoExtensions is the extension payload type for callers that don't care
// about "x-*" fields at all: Load[NoExtensions] parses them into nothing.
type NoExtensions struct{}

// PatchStrategy is the value of a "x-kubernetes-patch-strategy" extension.
type PatchStrategy string

const (
	PatchStrategyMerge          PatchStrategy = "merge"
	PatchStrategyRetainKeys     PatchStrategy = "retainKeys"
	PatchStrategyMergeAndRetain PatchStrategy = "merge,retainKeys"
	PatchStrategyReplace        PatchStrategy = "replace"
)

// Extensions is the default extension payload threaded through Schema[E]
// and Operation[E] when a caller doesn't supply a more specific E.
//
// It recognizes the two Kubernetes vendor extensions the fixture document
// actually uses (x-kubernetes-patch-strategy and x-kubernetes-patch-merge-key)
// and otherwise preserves every "x-*" key verbatim in Raw, decoded
// best-effort as a [jsonschema.Schema] so a caller walking Raw still gets
// structured access to extension values that are themselves schema-shaped
// (e.g. x-kubernetes-validations), the same "treat an extension blob as a
// sub-schema" move the Helm annotators reach for.
type Extensions struct {
	KubernetesPatchStrategy PatchStrategy
	KubernetesPatchMergeKey string
	Raw                     *jsonschema.Schema
}

func (e *Extensions) unmarshalFields(raw map[string]json.RawMessage) error {
	if v, ok := raw["x-kubernetes-patch-strategy"]; ok {
		_ = json.Unmarshal(v, &e.KubernetesPatchStrategy)
	}
	if v, ok := raw["x-kubernetes-patch-merge-key"]; ok {
		_ = json.Unmarshal(v, &e.KubernetesPatchMergeKey)
	}

	if len(raw) == 0 {
		return nil
	}
	blob, err := json.Marshal(raw)
	if err != nil {
		return nil //nolint:nilerr // Raw is best-effort metadata, not load-bearing.
	}
	var sch jsonschema.Schema
	if err := json.Unmarshal(blob, &sch); err == nil {
		e.Raw = &sch
	}
	return nil
}

// decodeExtensions collects every "x-*" key present in data's top-level JSON
// object and decodes them into E. E is handled as [NoExtensions],
// [Extensions], a type whose pointer has an
// `UnmarshalExtensionFields(map[string]json.RawMessage) error` method, or,
// for any other E, left at its zero value (extension keys are silently
// dropped).
func decodeExtensions[E any](data []byte) (E, error) {
	var zero E

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return zero, err
	}

	xs := make(map[string]json.RawMessage)
	for k, v := range top {
		if strings.HasPrefix(k, "x-") {
			xs[k] = v
		}
	}

	switch e := any(&zero).(type) {
	case *NoExtensions:
		return zero, nil
	case *Extensions:
		if err := e.unmarshalFields(xs); err != nil {
			return zero, err
		}
		return zero, nil
	case interface {
		UnmarshalExtensionFields(map[string]json.RawMessage) error
	}:
		if err := e.UnmarshalExtensionFields(xs); err != nil {
			return zero, err
		}
		return zero, nil
	default:
		return zero, nil
	}
}
