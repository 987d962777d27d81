package emit

import (
	"sort"
	"strings"

	"go.oastate.dev/oastate/catalog"
	"go.oastate.dev/oastate/document"
)

// Marker is one phantom type parameter a builder carries: a path parameter
// or required owner field that must be supplied before the builder can be
// turned into a request.
type Marker struct {
	// Name is the Rust-identifier-safe marker name, e.g. "Namespace".
	Name string
	// FieldName is the snake_case setter/field name, e.g. "namespace".
	FieldName string
	// RustType is the field's stored type.
	RustType string
	// SetterParam is the with_* setter's parameter type: usually
	// `impl Into<RustType>`, but `impl Iterator<Item = ...>` for sequence
	// fields so callers don't have to pre-build a Vec/BTreeMap.
	SetterParam string
	// ConvertExpr converts the bound parameter name "value" into RustType.
	ConvertExpr string
	// FromPath is true if this marker comes from a path parameter, false if
	// it comes from a required field of the owner type.
	FromPath bool
	// BodyField is true if this setter writes into the builder's secondary
	// request body (Builder.BodyType) rather than its owner/response body
	// (self.inner). Only set for optional setters sourced from a body
	// parameter whose schema differs from the operation's owner, e.g. a
	// DELETE's DeleteOptions payload.
	BodyField bool
}

// QueryParam is one query-string parameter a builder's request carries. A
// query parameter whose wire name case-insensitively matches a request-body
// field's JSON name collides with that field per the field/parameter
// collision rule: no separate storage is allocated for it, and its value is
// read back out of the body field at request-build time so the two can
// never diverge.
type QueryParam struct {
	// WireName is the literal query-string key, e.g. "gracePeriodSeconds".
	WireName string
	// FieldName is the snake_case identifier used to read/store the value:
	// the colliding body field's Rust field name when Collides is true, a
	// dedicated builder field otherwise.
	FieldName string
	// RustType is the bare (non-Option) Rust type backing the value.
	RustType string
	// Collides is true when WireName already has a same-valued slot on the
	// builder's request body.
	Collides bool
}

// Builder is one synthesized typestate builder for a single operation.
type Builder struct {
	Name        string // e.g. "ConfigMapPostBuilder", "ConfigMapGetBuilder1"
	OwnerModule []string
	OwnerType   string
	Method      document.HTTPMethod
	Path        string
	OperationID string
	EntryFn     string // inherent-impl method name on the owner type
	Markers     []Marker
	// OptionalSetters are non-required parameters/fields exposed as plain
	// with_<name> setters that don't change the builder's type.
	OptionalSetters []Marker

	// BodyModule/BodyType identify a secondary request-body type distinct
	// from OwnerType: set when the operation carries a body parameter whose
	// schema isn't the owner itself (every non-POST/PUT/PATCH method, e.g.
	// DELETE's optional DeleteOptions payload). Empty when the operation has
	// no such body.
	BodyModule []string
	BodyType   string

	// QueryParams are this builder's query-string parameters, precomputed
	// with collision detection already resolved against BodyType's fields.
	QueryParams []QueryParam

	// PathFormat is the operation's path template rewritten into a Rust
	// format! string, with every {param} segment replaced by "{}".
	// PathFormatArgs is the comma-joined "self.field" expression list
	// supplying those placeholders, in template order.
	PathFormat     string
	PathFormatArgs string
}

// HasBody reports whether b carries a secondary request body distinct from
// its owner/response type.
func (b *Builder) HasBody() bool { return b.BodyType != "" }

// PathFields returns the markers whose value is captured from a path
// parameter, each backed by its own String field on the builder struct.
func (b *Builder) PathFields() []Marker {
	var out []Marker
	for _, m := range b.Markers {
		if m.FromPath {
			out = append(out, m)
		}
	}
	return out
}

// StandaloneQueryParams returns b's query parameters that don't collide with
// a request-body field and therefore need their own Option<T> storage field.
func (b *Builder) StandaloneQueryParams() []QueryParam {
	var out []QueryParam
	for _, q := range b.QueryParams {
		if !q.Collides {
			out = append(out, q)
		}
	}
	return out
}

// MethodConst is the Rust reqwest::Method constant matching b.Method.
func (b *Builder) MethodConst() string {
	switch b.Method {
	case document.MethodGet:
		return "reqwest::Method::GET"
	case document.MethodPut:
		return "reqwest::Method::PUT"
	case document.MethodPost:
		return "reqwest::Method::POST"
	case document.MethodDelete:
		return "reqwest::Method::DELETE"
	case document.MethodPatch:
		return "reqwest::Method::PATCH"
	case document.MethodHead:
		return "reqwest::Method::HEAD"
	case document.MethodOptions:
		return "reqwest::Method::OPTIONS"
	default:
		return "reqwest::Method::GET"
	}
}

// IsUnit reports whether b has no markers, optional setters, or query
// parameters: the reference generator emits these as a bare unit struct with
// no `modify` override.
func (b *Builder) IsUnit() bool {
	return len(b.Markers) == 0 && len(b.OptionalSetters) == 0 && len(b.QueryParams) == 0
}

// MarkerStep is one with_<field> setter's fully precomputed generic
// parameter lists, so the Rust template only has to interpolate strings
// rather than do set-subtraction inside template actions.
type MarkerStep struct {
	Marker
	// ImplGenerics are the generic parameters the setter's impl block
	// declares: every marker except the one this step resolves.
	ImplGenerics string
	// BeforeSelf is this builder's generic argument list with this step's
	// marker fixed to Missing<Name> and every other left generic.
	BeforeSelf string
	// AfterSelf is the same list with this step's marker fixed to
	// <Name>Exists.
	AfterSelf string
}

// Steps returns one [MarkerStep] per marker, in the same order as Markers.
func (b *Builder) Steps() []MarkerStep {
	steps := make([]MarkerStep, len(b.Markers))
	for i, m := range b.Markers {
		var impl, before, after []string
		for j, o := range b.Markers {
			if j == i {
				before = append(before, "Missing"+o.Name)
				after = append(after, o.Name+"Exists")
				continue
			}
			impl = append(impl, o.Name)
			before = append(before, o.Name)
			after = append(after, o.Name)
		}
		steps[i] = MarkerStep{
			Marker:       m,
			ImplGenerics: joinStrings(impl, ", "),
			BeforeSelf:   joinStrings(before, ", "),
			AfterSelf:    joinStrings(after, ", "),
		}
	}
	return steps
}

// AllMissingSelf and AllExistsSelf are the generic argument lists with every
// marker Missing or every marker Exists, respectively.
func (b *Builder) AllMissingSelf() string {
	names := make([]string, len(b.Markers))
	for i, m := range b.Markers {
		names[i] = "Missing" + m.Name
	}
	return joinStrings(names, ", ")
}

func (b *Builder) AllExistsSelf() string {
	names := make([]string, len(b.Markers))
	for i, m := range b.Markers {
		names[i] = m.Name + "Exists"
	}
	return joinStrings(names, ", ")
}

// GenericParams is the bare comma-joined marker name list, used where the
// builder's struct/impl declares its own generic parameters.
func (b *Builder) GenericParams() string {
	names := make([]string, len(b.Markers))
	for i, m := range b.Markers {
		names[i] = m.Name
	}
	return joinStrings(names, ", ")
}

func joinStrings(ss []string, sep string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}

// Plan is the full C4 output: every marker-pair type needed across the
// document, plus every builder, in deterministic order.
type Plan struct {
	MarkerNames []string // sorted, deduplicated across all builders
	Builders    []*Builder
}

// BuildPlan assigns operation owners and constructs the typestate builder
// plan. Operations with no unambiguous owner are skipped and reported as
// warnings rather than failing the whole run, matching §7's non-fatal
// conditions.
func BuildPlan[E any](doc *document.Document[E], cat *catalog.Catalog) (*Plan, []catalog.Warning) {
	type opRef struct {
		path   string
		method document.HTTPMethod
		item   *document.PathItem[E]
		op     *document.Operation[E]
	}

	var ops []opRef
	for path, item := range doc.Paths {
		for _, method := range item.SortedMethods() {
			ops = append(ops, opRef{path: path, method: method, item: item, op: item.Operations[method]})
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		oi, oj := ops[i].op, ops[j].op
		if oi.OperationID != oj.OperationID {
			return oi.OperationID < oj.OperationID
		}
		if ops[i].path != ops[j].path {
			return ops[i].path < ops[j].path
		}
		return ops[i].method < ops[j].method
	})

	var warnings []catalog.Warning
	nameCount := make(map[string]int)
	markerSet := make(map[string]bool)
	plan := &Plan{}

	for _, o := range ops {
		owner, ok := resolveOwner(doc, cat, o.item, o.op, o.method)
		if !ok {
			warnings = append(warnings, catalog.Warning{
				DefinitionName: o.op.OperationID,
				Message:        ErrAmbiguousOwner.Error(),
			})
			continue
		}

		verb := verbWord(o.method)
		baseName := owner.TypeName + verb + "Builder"
		name := builderNameForOrdinal(baseName, nameCount[baseName])
		nameCount[baseName]++

		var bodyEntry *catalog.Entry
		if o.method != document.MethodPost && o.method != document.MethodPut && o.method != document.MethodPatch {
			if be, ok := resolveBodyEntry(cat, o.item, o.op); ok && be.DefinitionName != owner.DefinitionName {
				bodyEntry = be
			}
		}

		markers := markersFor(o.item, o.op, owner)
		optionalSetters := optionalSettersFor(owner, markers)
		if bodyEntry != nil {
			optionalSetters = append(optionalSetters, bodyOptionalSettersFor(bodyEntry, markers, optionalSetters)...)
			sort.Slice(optionalSetters, func(i, j int) bool { return optionalSetters[i].Name < optionalSetters[j].Name })
		}

		b := &Builder{
			Name:            name,
			OwnerModule:     owner.ModulePath,
			OwnerType:       owner.TypeName,
			Method:          o.method,
			Path:            o.path,
			OperationID:     o.op.OperationID,
			EntryFn:         catalog.SnakeCase(o.op.OperationID),
			Markers:         markers,
			OptionalSetters: optionalSetters,
		}
		if bodyEntry != nil {
			b.BodyModule = bodyEntry.ModulePath
			b.BodyType = bodyEntry.TypeName
		}
		b.QueryParams = queryParamsFor(o.item, o.op, bodyEntry)
		b.PathFormat, b.PathFormatArgs = formatPathExpr(o.path, markers)

		for _, m := range b.Markers {
			markerSet[m.Name] = true
		}
		plan.Builders = append(plan.Builders, b)
	}

	markerNames := make([]string, 0, len(markerSet))
	for name := range markerSet {
		markerNames = append(markerNames, name)
	}
	sort.Strings(markerNames)
	plan.MarkerNames = markerNames

	return plan, warnings
}

// builderNameForOrdinal returns name unchanged for the first (ordinal 0)
// builder with a given base name, and appends the ordinal for every
// subsequent one.
func builderNameForOrdinal(base string, ordinal int) string {
	if ordinal == 0 {
		return base
	}
	return base + itoa(ordinal)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func verbWord(m document.HTTPMethod) string {
	switch m {
	case document.MethodGet:
		return "Get"
	case document.MethodPut:
		return "Put"
	case document.MethodPost:
		return "Post"
	case document.MethodDelete:
		return "Delete"
	case document.MethodPatch:
		return "Patch"
	case document.MethodHead:
		return "Head"
	case document.MethodOptions:
		return "Options"
	default:
		return "Do"
	}
}

// resolveOwner implements §4.2's owner-assignment rule: POST/PUT/PATCH are
// owned by their body parameter's schema, everything else by the success
// (2xx, preferring "200") response's schema. Only a direct reference to a
// catalog entry counts; an inline or absent schema has no owner.
func resolveOwner[E any](doc *document.Document[E], cat *catalog.Catalog, item *document.PathItem[E], op *document.Operation[E], method document.HTTPMethod) (*catalog.Entry, bool) {
	switch method {
	case document.MethodPost, document.MethodPut, document.MethodPatch:
		for _, p := range op.Parameters {
			if p.In == document.LocationBody && p.Schema != nil {
				return entryForSchema(cat, p.Schema)
			}
		}
		for _, p := range item.Parameters {
			if p.In == document.LocationBody && p.Schema != nil {
				return entryForSchema(cat, p.Schema)
			}
		}
		return nil, false
	default:
		if resp, ok := op.Responses["200"]; ok && resp.Schema != nil {
			return entryForSchema(cat, resp.Schema)
		}
		codes := make([]string, 0, len(op.Responses))
		for c := range op.Responses {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		for _, c := range codes {
			if len(c) == 0 || c[0] != '2' {
				continue
			}
			if resp := op.Responses[c]; resp.Schema != nil {
				return entryForSchema(cat, resp.Schema)
			}
		}
		return nil, false
	}
}

func entryForSchema[E any](cat *catalog.Catalog, schema *document.Schema[E]) (*catalog.Entry, bool) {
	for _, e := range cat.Entries() {
		if matchesSchemaPtr(e, schema) {
			return e, true
		}
	}
	return nil, false
}

func matchesSchemaPtr[E any](e *catalog.Entry, schema *document.Schema[E]) bool {
	s, ok := e.SchemaPtr().(*document.Schema[E])
	return ok && s == schema
}

// resolveBodyEntry finds the catalog entry for an operation's body
// parameter, independent of owner assignment: used for non-POST/PUT/PATCH
// methods (DELETE, notably) whose request carries a body distinct from the
// owner the response schema assigns.
func resolveBodyEntry[E any](cat *catalog.Catalog, item *document.PathItem[E], op *document.Operation[E]) (*catalog.Entry, bool) {
	for _, p := range op.Parameters {
		if p.In == document.LocationBody && p.Schema != nil {
			return entryForSchema(cat, p.Schema)
		}
	}
	for _, p := range item.Parameters {
		if p.In == document.LocationBody && p.Schema != nil {
			return entryForSchema(cat, p.Schema)
		}
	}
	return nil, false
}

// collectParams merges a path item's and an operation's parameters of a
// given location into one slice in OpenAPI precedence order: path-level
// parameters first, with an operation-level parameter of the same name
// overriding (and keeping the position of) a path-level one.
func collectParams[E any](item *document.PathItem[E], op *document.Operation[E], loc document.ParameterLocation) []*document.Parameter[E] {
	var out []*document.Parameter[E]
	index := make(map[string]int)
	add := func(p *document.Parameter[E]) {
		if p.In != loc {
			return
		}
		if i, ok := index[p.Name]; ok {
			out[i] = p
			return
		}
		index[p.Name] = len(out)
		out = append(out, p)
	}
	for _, p := range item.Parameters {
		add(p)
	}
	for _, p := range op.Parameters {
		add(p)
	}
	return out
}

// queryRustType maps an OpenAPI v2 non-body parameter's primitive type/format
// to its Rust storage type. Query parameters carry their type directly
// (no $ref), so this doesn't need the catalog's schema-walking machinery.
func queryRustType(paramType, format string) string {
	switch paramType {
	case "integer":
		if format == "int64" {
			return "i64"
		}
		return "i32"
	case "number":
		return "f64"
	case "boolean":
		return "bool"
	default:
		return "String"
	}
}

// queryParamsFor collects an operation's query parameters, resolving
// collisions against bodyEntry's fields per the field/parameter collision
// rule: a query parameter whose wire name case-insensitively matches a body
// field's JSON name is satisfied by that field's own setter and storage
// rather than getting a second copy.
func queryParamsFor[E any](item *document.PathItem[E], op *document.Operation[E], bodyEntry *catalog.Entry) []QueryParam {
	params := collectParams(item, op, document.LocationQuery)
	if len(params) == 0 {
		return nil
	}

	out := make([]QueryParam, len(params))
	for i, p := range params {
		qp := QueryParam{
			WireName:  p.Name,
			FieldName: catalog.FieldName(p.Name),
			RustType:  queryRustType(p.Type, p.Format),
		}
		if bodyEntry != nil {
			for _, f := range bodyEntry.Fields {
				if strings.EqualFold(f.JSONName, p.Name) {
					qp.Collides = true
					qp.FieldName = f.Name
					qp.RustType = rustType(f.Type, false)
					break
				}
			}
		}
		out[i] = qp
	}
	return out
}

// formatPathExpr rewrites an operation's path template into a Rust format!
// string, replacing every "{param}" segment whose param matches a FromPath
// marker with "{}", and returns the comma-joined "self.field" argument list
// supplying those placeholders in template order.
func formatPathExpr(path string, markers []Marker) (format string, args string) {
	var sb strings.Builder
	var argList []string

	for i := 0; i < len(path); {
		if path[i] != '{' {
			sb.WriteByte(path[i])
			i++
			continue
		}
		end := strings.IndexByte(path[i:], '}')
		if end < 0 {
			sb.WriteString(path[i:])
			break
		}
		raw := path[i+1 : i+end]
		fieldName := catalog.FieldName(raw)
		matched := false
		for _, m := range markers {
			if m.FromPath && m.FieldName == fieldName {
				sb.WriteString("{}")
				argList = append(argList, "self."+m.FieldName)
				matched = true
				break
			}
		}
		if !matched {
			sb.WriteString(path[i : i+end+1])
		}
		i += end + 1
	}

	return sb.String(), joinStrings(argList, ", ")
}

// markersFor collects the phantom markers an operation's builder needs: one
// per required path parameter, plus one per required, not-yet-path-supplied
// field on the owner record, whatever the operation's method.
func markersFor[E any](item *document.PathItem[E], op *document.Operation[E], owner *catalog.Entry) []Marker {
	var markers []Marker
	seen := make(map[string]bool)

	add := func(name string, fromPath bool) {
		rustName := catalog.UpperCamel(name)
		if seen[rustName] {
			return
		}
		seen[rustName] = true
		markers = append(markers, Marker{
			Name:        rustName,
			FieldName:   catalog.FieldName(name),
			RustType:    "String",
			SetterParam: "impl Into<String>",
			ConvertExpr: "value.into()",
			FromPath:    fromPath,
		})
	}

	for _, p := range item.Parameters {
		if p.In == document.LocationPath && p.Required {
			add(p.Name, true)
		}
	}
	for _, p := range op.Parameters {
		if p.In == document.LocationPath && p.Required {
			add(p.Name, true)
		}
	}

	if owner != nil {
		for _, f := range owner.Fields {
			if !f.Optional && !seen[catalog.UpperCamel(f.JSONName)] {
				param, expr := setterSignature(f.Type)
				markers = append(markers, Marker{
					Name:        catalog.UpperCamel(f.JSONName),
					FieldName:   f.Name,
					RustType:    rustType(f.Type, false),
					SetterParam: param,
					ConvertExpr: expr,
					FromPath:    false,
				})
				seen[catalog.UpperCamel(f.JSONName)] = true
			}
		}
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].Name < markers[j].Name })
	return markers
}

// optionalSettersFor collects plain with_* setters for owner's optional
// fields not already covered by a required marker. These don't change the
// builder's phantom type, so they're only offered when the builder already
// carries at least one marker (and therefore an `inner` field to mutate);
// an all-optional owner with no path parameters stays a unit builder, per
// the reference's zero-parameter-builder special case.
func optionalSettersFor(owner *catalog.Entry, markers []Marker) []Marker {
	if owner == nil || len(markers) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(markers))
	for _, m := range markers {
		seen[m.Name] = true
	}

	var setters []Marker
	for _, f := range owner.Fields {
		name := catalog.UpperCamel(f.JSONName)
		if !f.Optional || seen[name] {
			continue
		}
		param, expr := setterSignature(f.Type)
		setters = append(setters, Marker{
			Name:        name,
			FieldName:   f.Name,
			RustType:    rustType(f.Type, true),
			SetterParam: param,
			ConvertExpr: expr,
			FromPath:    false,
		})
	}
	sort.Slice(setters, func(i, j int) bool { return setters[i].Name < setters[j].Name })
	return setters
}

// bodyOptionalSettersFor collects plain with_* setters for a secondary
// request body's fields (see Builder.BodyType), skipping any name already
// covered by a marker or an owner-derived optional setter. Each setter
// writes into self.body rather than self.inner.
func bodyOptionalSettersFor(body *catalog.Entry, markers, ownerSetters []Marker) []Marker {
	seen := make(map[string]bool, len(markers)+len(ownerSetters))
	for _, m := range markers {
		seen[m.Name] = true
	}
	for _, m := range ownerSetters {
		seen[m.Name] = true
	}

	var setters []Marker
	for _, f := range body.Fields {
		name := catalog.UpperCamel(f.JSONName)
		if seen[name] {
			continue
		}
		param, expr := setterSignature(f.Type)
		setters = append(setters, Marker{
			Name:        name,
			FieldName:   f.Name,
			RustType:    rustType(f.Type, true),
			SetterParam: param,
			ConvertExpr: expr,
			FromPath:    false,
			BodyField:   true,
		})
		seen[name] = true
	}
	return setters
}
