package emit

import "go.oastate.dev/oastate/catalog"

// rustType renders a catalog.FieldType as Rust source, wrapping it in
// Option<...> when optional is true. References are rendered as absolute
// crate paths ("crate::io::k8s::api::core::v1::ConfigMap") so the renderer
// never has to compute a relative `super::` path from the current module.
func rustType(ft *catalog.FieldType, optional bool) string {
	base := rustTypeInner(ft)
	if optional {
		return "Option<" + base + ">"
	}
	return base
}

func rustTypeInner(ft *catalog.FieldType) string {
	if ft == nil {
		return "serde_json::Value"
	}
	switch ft.Kind {
	case catalog.KindPrimitive:
		return string(ft.Primitive)
	case catalog.KindReference:
		return crateReferencePath(ft.RefModulePath, ft.RefTypeName)
	case catalog.KindArray:
		return "Vec<" + rustTypeInner(ft.Elem) + ">"
	case catalog.KindMap:
		return "std::collections::BTreeMap<String, " + rustTypeInner(ft.Elem) + ">"
	case catalog.KindBox:
		return "Box<" + rustTypeInner(ft.Elem) + ">"
	case catalog.KindFile:
		return "Vec<u8>"
	default:
		return "serde_json::Value"
	}
}

// setterSignature returns a with_* setter's parameter type and the
// expression (referencing the bound name "value") that converts it to ft's
// storage representation. Sequence fields take `impl Iterator<Item = ...>`
// and `.collect()` rather than a pre-built `Vec`/`BTreeMap`, matching the
// reference builders' iterator-typed setters.
func setterSignature(ft *catalog.FieldType) (param, expr string) {
	if ft == nil {
		return "impl Into<serde_json::Value>", "value.into()"
	}
	switch ft.Kind {
	case catalog.KindArray:
		elem := rustTypeInner(ft.Elem)
		return "impl Iterator<Item = impl Into<" + elem + ">>",
			"value.map(Into::into).collect()"
	case catalog.KindMap:
		if ft.Elem != nil && ft.Elem.Kind == catalog.KindArray {
			innerElem := rustTypeInner(ft.Elem.Elem)
			return "impl Iterator<Item = (String, impl Iterator<Item = impl Into<" + innerElem + ">>)>",
				"value.map(|(k, v)| (k, v.map(Into::into).collect())).collect()"
		}
		return "impl Into<" + rustTypeInner(ft) + ">", "value.into()"
	default:
		return "impl Into<" + rustTypeInner(ft) + ">", "value.into()"
	}
}

func crateReferencePath(modulePath []string, typeName string) string {
	path := "crate"
	for _, seg := range modulePath {
		path += "::" + seg
	}
	return path + "::" + typeName
}
