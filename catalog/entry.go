package catalog

// Kind distinguishes the shapes a [FieldType] can take.
type Kind int

const (
	KindPrimitive Kind = iota
	KindReference
	KindArray
	KindMap
	KindBox
	KindFile
)

// Primitive names the built-in scalar Rust types a [FieldType] of
// KindPrimitive can be.
type Primitive string

const (
	PrimitiveString Primitive = "String"
	PrimitiveBool   Primitive = "bool"
	PrimitiveI32    Primitive = "i32"
	PrimitiveI64    Primitive = "i64"
	PrimitiveF64    Primitive = "f64"
	// PrimitiveValue stands in for a schema with no declared type
	// (OpenAPI's implicit "any"): emitted as serde_json::Value.
	PrimitiveValue Primitive = "serde_json::Value"
)

// FieldType describes the Rust type a field, array element, or map value
// resolves to.
type FieldType struct {
	Kind      Kind
	Primitive Primitive

	// Reference fields, set when Kind == KindReference or the Elem of a
	// Box/Array/Map eventually bottoms out at one.
	RefModulePath []string
	RefTypeName   string

	// Elem is the contained type for Array, Map, and Box.
	Elem *FieldType
}

// EnumVariant is one member of an [Entry]'s Enum.
type EnumVariant struct {
	Name    string // UpperCamelCase Rust variant identifier
	Literal string // the original JSON string value
}

// Field is one member of an [Entry]'s Fields, already sorted by JSONName at
// synthesis time.
type Field struct {
	JSONName    string
	Name        string
	Type        *FieldType
	Optional    bool
	Description string
}

// Entry is one named data type in the catalog: either a record (Fields set),
// an enum (Enum set), or a type alias for a container (Alias set). Exactly
// one of Fields, Enum, Alias is populated.
type Entry struct {
	// DefinitionName is the catalog key: the original dot-segmented
	// definition name for named definitions, or a synthesized
	// "<owner>.<field>" path for anonymous schemas.
	DefinitionName string
	ModulePath     []string
	TypeName       string
	Description    string

	Fields []*Field
	Enum   []EnumVariant
	Alias  *FieldType

	// schemaPtr is the resolved schema node this entry was built from; used
	// internally to recognize repeat visits by pointer identity.
	schemaPtr any
}

// IsRecord reports whether e is a struct-shaped entry.
func (e *Entry) IsRecord() bool { return e.Fields != nil }

// IsEnum reports whether e is a string-enum entry.
func (e *Entry) IsEnum() bool { return e.Enum != nil }

// IsAlias reports whether e is a container type alias.
func (e *Entry) IsAlias() bool { return e.Alias != nil }

// SchemaPtr returns the resolved schema node e was built from, as an `any`
// wrapping the original *document.Schema[E]. Used by the emit package to
// recognize an operation's body/response schema as a reference to e by
// pointer identity.
func (e *Entry) SchemaPtr() any { return e.schemaPtr }

// Catalog is the synthesized set of named data types, alphabetically ordered
// by DefinitionName.
type Catalog struct {
	entries map[string]*Entry
	order   []string
}

// Entries returns every entry, sorted alphabetically by DefinitionName.
func (c *Catalog) Entries() []*Entry {
	out := make([]*Entry, len(c.order))
	for i, name := range c.order {
		out[i] = c.entries[name]
	}
	return out
}

// Lookup finds an entry by its DefinitionName.
func (c *Catalog) Lookup(definitionName string) (*Entry, bool) {
	e, ok := c.entries[definitionName]
	return e, ok
}

// Warning is a non-fatal condition. [Synthesize] reports an object whose
// additionalProperties is ignored because it also declares properties, and
// the emit package reuses the type for an operation with no owner type.
// Unknown x- extension keys are not reported.
type Warning struct {
	DefinitionName string
	Message        string
}
