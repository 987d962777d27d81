package catalog

import (
	"strings"
	"unicode"
)

// rustReserved holds the Rust keywords a generated field, variant, or module
// segment name must not collide with. Collisions get a trailing underscore,
// matching the reference generator's `type_`/`enum_`/`ref_` convention.
var rustReserved = map[string]bool{
	"as": true, "break": true, "const": true, "continue": true, "crate": true,
	"dyn": true, "else": true, "enum": true, "extern": true, "false": true,
	"fn": true, "for": true, "if": true, "impl": true, "in": true, "let": true,
	"loop": true, "match": true, "mod": true, "move": true, "mut": true,
	"pub": true, "ref": true, "return": true, "self": true, "Self": true,
	"static": true, "struct": true, "super": true, "trait": true, "true": true,
	"type": true, "unsafe": true, "use": true, "where": true, "while": true,
	"async": true, "await": true, "dyn_": true, "box": true,
}

// splitWords splits an identifier into its constituent words on case
// transitions, underscores, and hyphens, the way every snake_case/camelCase
// mangler in the ecosystem does it: a run of uppercase letters followed by a
// lowercase one (an acronym bumping into a word, "JSONSchema") breaks before
// the last uppercase letter of the run, and every other uppercase letter
// starts a new word.
func splitWords(s string) []string {
	var words []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r):
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (len(cur) > 0 && nextLower && allUpper(cur)) {
				flush()
			}
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

func allUpper(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// UpperCamel renders s as an UpperCamelCase Rust type identifier:
// "JSONSchemaProps" -> "JsonSchemaProps", "api-extensions" -> "ApiExtensions".
func UpperCamel(s string) string {
	var sb strings.Builder
	for _, w := range splitWords(s) {
		if w == "" {
			continue
		}
		lw := strings.ToLower(w)
		sb.WriteString(strings.ToUpper(lw[:1]))
		sb.WriteString(lw[1:])
	}
	return sb.String()
}

// SnakeCase renders s as a snake_case Rust identifier segment:
// "patch-strategy" -> "patch_strategy", "grace_period_seconds" unchanged.
func SnakeCase(s string) string {
	words := splitWords(s)
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}
	return strings.Join(lower, "_")
}

// FieldName renders a JSON property name as a collision-free Rust field
// name: "$ref" and "$schema" get the special renames the reference client
// uses, everything else is snake_cased and suffixed with "_" if it collides
// with a Rust keyword.
func FieldName(jsonName string) string {
	switch jsonName {
	case "$ref":
		return "ref_"
	case "$schema":
		return "schema"
	}
	name := SnakeCase(jsonName)
	if rustReserved[name] {
		return name + "_"
	}
	return name
}

// ModulePath splits a dot-segmented definition name ("io.k8s.apiextensions-apiserver.pkg.apis.apiextensions.v1.JSONSchemaProps")
// into its module path (every segment but the last, snake_cased) and the
// final type name (UpperCamelCased).
func ModulePath(definitionName string) (path []string, typeName string) {
	segments := strings.Split(definitionName, ".")
	if len(segments) == 0 {
		return nil, ""
	}
	last := segments[len(segments)-1]
	for _, seg := range segments[:len(segments)-1] {
		path = append(path, moduleSegment(seg))
	}
	return path, UpperCamel(last)
}

func moduleSegment(seg string) string {
	name := SnakeCase(seg)
	if rustReserved[name] {
		return name + "_"
	}
	return name
}

// VariantName renders an enum literal as an UpperCamelCase variant
// identifier. Non-identifier separators (notably a comma, as in
// Kubernetes's "merge,retainKeys" patch strategy) join with "And" so the
// result stays a single readable word, e.g. "MergeAndRetain".
func VariantName(literal string) string {
	parts := strings.FieldsFunc(literal, func(r rune) bool {
		return r == ',' || r == ';'
	})
	if len(parts) <= 1 {
		return UpperCamel(literal)
	}
	out := make([]string, len(parts))
	for i, p := range parts {
		words := splitWords(strings.TrimSpace(p))
		if len(words) == 0 {
			continue
		}
		out[i] = UpperCamel(words[0])
	}
	return strings.Join(out, "And")
}
