package catalog

import (
	"sort"

	"go.oastate.dev/oastate/document"
)

// Synthesize builds the full catalog from a resolved document. doc must
// already have passed through [resolve.Resolve]; Synthesize does not
// dereference "$ref" itself.
func Synthesize[E any](doc *document.Document[E]) (*Catalog, []Warning, error) {
	s := &synthesizer[E]{
		cat: &Catalog{
			entries: make(map[string]*Entry),
		},
		byPtr: make(map[*document.Schema[E]]string),
	}

	for name, schema := range doc.Definitions {
		s.byPtr[schema] = name
	}

	names := make([]string, 0, len(doc.Definitions))
	for name := range doc.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s.entryFor(name, doc.Definitions[name])
	}

	sort.Strings(s.cat.order)
	return s.cat, s.warnings, nil
}

type synthesizer[E any] struct {
	cat      *Catalog
	byPtr    map[*document.Schema[E]]string // registered definition schema -> definition name
	warnings []Warning
}

func (s *synthesizer[E]) warn(defName, msg string) {
	s.warnings = append(s.warnings, Warning{DefinitionName: defName, Message: msg})
}

// entryFor returns the catalog entry for the definition named defName,
// building it (and registering it in the catalog) on first visit. Repeat
// visits, including ones reached through a cycle, return the same *Entry.
func (s *synthesizer[E]) entryFor(defName string, schema *document.Schema[E]) *Entry {
	if e, ok := s.cat.entries[defName]; ok {
		return e
	}

	modulePath, typeName := ModulePath(defName)
	entry := &Entry{
		DefinitionName: defName,
		ModulePath:     modulePath,
		TypeName:       typeName,
		Description:    schema.Description,
		schemaPtr:      schema,
	}
	// Register before recursing: a cyclic schema (a property whose type is
	// this very entry) must see a non-nil, already-keyed Entry when it loops
	// back, so it can be boxed instead of recursing forever.
	s.cat.entries[defName] = entry
	s.cat.order = append(s.cat.order, defName)

	switch {
	case len(schema.Enum) > 0 && (schema.Type == "" || schema.Type == "string"):
		entry.Enum = buildEnum(schema.Enum)
	case len(schema.Properties) > 0 || len(schema.AllOf) > 0:
		entry.Fields = s.buildFields(entry, schema)
	default:
		entry.Alias = s.inlineType(entry, defName, schema)
	}

	return entry
}

func buildEnum(values []string) []EnumVariant {
	variants := make([]EnumVariant, len(values))
	for i, v := range values {
		variants[i] = EnumVariant{Name: VariantName(v), Literal: v}
	}
	return variants
}

// buildFields composes entry's field list from its own properties plus any
// allOf-composed members. allOf is conjunctive (every branch's constraints
// hold simultaneously), so required sets union and properties union with the
// entry's own properties taking precedence on a name collision.
func (s *synthesizer[E]) buildFields(entry *Entry, schema *document.Schema[E]) []*Field {
	required := make(map[string]bool)
	fields := make(map[string]*Field)

	mergeBranchFields := func(branchFields []*Field, branchRequired map[string]bool) {
		for name := range branchRequired {
			required[name] = true
		}
		for _, f := range branchFields {
			fields[f.JSONName] = f
			if !f.Optional {
				required[f.JSONName] = true
			}
		}
	}

	for _, member := range schema.AllOf {
		if defName, ok := s.byPtr[member]; ok {
			// An allOf branch that's itself a registered definition: pull in
			// its already-resolved field shape rather than re-walking it, so
			// composed-from types stay in sync with their own entry.
			branch := s.entryFor(defName, member)
			mergeBranchFields(branch.Fields, nil)
			continue
		}
		mergeBranchFields(s.buildFields(entry, member), member.RequiredSet())
	}

	for name := range schema.RequiredSet() {
		required[name] = true
	}
	for name, propSchema := range schema.Properties {
		ft := s.fieldType(entry, name, propSchema)
		if ft.Kind == KindReference && isSameSchema(propSchema, entry.schemaPtr) {
			ft = &FieldType{Kind: KindBox, Elem: ft}
		}
		fields[name] = &Field{
			JSONName:    name,
			Name:        FieldName(name),
			Type:        ft,
			Optional:    !required[name],
			Description: propSchema.Description,
		}
	}

	if schema.AdditionalProperties != nil && schema.AdditionalProperties.Allowed &&
		schema.AdditionalProperties.Schema != nil && len(fields) > 0 {
		s.warn(entry.DefinitionName, "object has both properties and additionalProperties; additionalProperties ignored")
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Field, len(names))
	for i, name := range names {
		f := fields[name]
		f.Optional = !required[name]
		out[i] = f
	}
	return out
}

func isSameSchema[E any](s *document.Schema[E], owner any) bool {
	o, ok := owner.(*document.Schema[E])
	return ok && o == s
}

// fieldType resolves the Rust type for a property, array-item, or
// additionalProperties schema. fieldName is used only to name an anonymous
// sub-entry if schema turns out to be an inline object or enum.
func (s *synthesizer[E]) fieldType(owner *Entry, fieldName string, schema *document.Schema[E]) *FieldType {
	if schema == nil {
		return &FieldType{Kind: KindPrimitive, Primitive: PrimitiveValue}
	}

	if defName, ok := s.byPtr[schema]; ok {
		entry := s.entryFor(defName, schema)
		return &FieldType{Kind: KindReference, RefModulePath: entry.ModulePath, RefTypeName: entry.TypeName}
	}

	return s.inlineType(owner, fieldName, schema)
}

// inlineType computes the Rust type for schema's own shape, without first
// checking whether schema is itself a registered definition. Used both by
// fieldType (after that check has already missed) and by entryFor when
// building a definition's own container alias, where schema IS that
// definition's registered pointer and must be expanded rather than turned
// into a self-reference.
func (s *synthesizer[E]) inlineType(owner *Entry, fieldName string, schema *document.Schema[E]) *FieldType {
	switch schema.Type {
	case "string":
		if len(schema.Enum) > 0 {
			return s.anonymousEnum(owner, fieldName, schema)
		}
		return &FieldType{Kind: KindPrimitive, Primitive: PrimitiveString}
	case "integer":
		if schema.Format == "int64" {
			return &FieldType{Kind: KindPrimitive, Primitive: PrimitiveI64}
		}
		return &FieldType{Kind: KindPrimitive, Primitive: PrimitiveI32}
	case "number":
		return &FieldType{Kind: KindPrimitive, Primitive: PrimitiveF64}
	case "boolean":
		return &FieldType{Kind: KindPrimitive, Primitive: PrimitiveBool}
	case "array":
		return &FieldType{Kind: KindArray, Elem: s.fieldType(owner, fieldName, schema.Items)}
	case "object":
		switch {
		case len(schema.Properties) > 0:
			return s.anonymousObject(owner, fieldName, schema)
		case schema.AdditionalProperties != nil && schema.AdditionalProperties.Allowed &&
			schema.AdditionalProperties.Schema != nil:
			return &FieldType{Kind: KindMap, Elem: s.fieldType(owner, fieldName, schema.AdditionalProperties.Schema)}
		default:
			return &FieldType{Kind: KindMap, Elem: &FieldType{Kind: KindPrimitive, Primitive: PrimitiveValue}}
		}
	default:
		if len(schema.Enum) > 0 {
			return s.anonymousEnum(owner, fieldName, schema)
		}
		return &FieldType{Kind: KindPrimitive, Primitive: PrimitiveValue}
	}
}

func (s *synthesizer[E]) anonymousName(owner *Entry, fieldName string) (defName string, modulePath []string, typeName string) {
	defName = owner.DefinitionName + "." + fieldName
	modulePath = append(append([]string{}, owner.ModulePath...), SnakeCase(owner.TypeName))
	typeName = owner.TypeName + UpperCamel(fieldName)
	return defName, modulePath, typeName
}

func (s *synthesizer[E]) anonymousObject(owner *Entry, fieldName string, schema *document.Schema[E]) *FieldType {
	defName, modulePath, typeName := s.anonymousName(owner, fieldName)
	if e, ok := s.cat.entries[defName]; ok {
		return &FieldType{Kind: KindReference, RefModulePath: e.ModulePath, RefTypeName: e.TypeName}
	}

	entry := &Entry{
		DefinitionName: defName,
		ModulePath:     modulePath,
		TypeName:       typeName,
		Description:    schema.Description,
		schemaPtr:      schema,
	}
	s.cat.entries[defName] = entry
	s.cat.order = append(s.cat.order, defName)
	entry.Fields = s.buildFields(entry, schema)

	return &FieldType{Kind: KindReference, RefModulePath: modulePath, RefTypeName: typeName}
}

func (s *synthesizer[E]) anonymousEnum(owner *Entry, fieldName string, schema *document.Schema[E]) *FieldType {
	defName, modulePath, typeName := s.anonymousName(owner, fieldName)
	if e, ok := s.cat.entries[defName]; ok {
		return &FieldType{Kind: KindReference, RefModulePath: e.ModulePath, RefTypeName: e.TypeName}
	}

	entry := &Entry{
		DefinitionName: defName,
		ModulePath:     modulePath,
		TypeName:       typeName,
		Enum:           buildEnum(schema.Enum),
		schemaPtr:      schema,
	}
	s.cat.entries[defName] = entry
	s.cat.order = append(s.cat.order, defName)

	return &FieldType{Kind: KindReference, RefModulePath: modulePath, RefTypeName: typeName}
}
