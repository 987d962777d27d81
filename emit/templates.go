package emit

import (
	"bytes"
	"fmt"
	"text/template"

	"go.oastate.dev/oastate/catalog"
)

var funcMap = template.FuncMap{
	"rustType": func(ft *catalog.FieldType, optional bool) string { return rustType(ft, optional) },
	"crateRef": crateReferencePath,
	"join": func(names []string, sep string) string {
		out := ""
		for i, n := range names {
			if i > 0 {
				out += sep
			}
			out += n
		}
		return out
	},
}

const recordTemplateSrc = `{{- if .Description}}
/// {{.Description}}
{{- end}}
#[derive(Debug, Clone, Default, PartialEq, serde::Serialize, serde::Deserialize)]
pub struct {{.TypeName}} {
{{- range .Fields}}
{{- if .Description}}
    /// {{.Description}}
{{- end}}
    #[serde(rename = "{{.JSONName}}"{{if .Optional}}, skip_serializing_if = "Option::is_none", default{{end}})]
    pub {{.Name}}: {{rustType .Type .Optional}},
{{- end}}
}
`

const enumTemplateSrc = `{{- if .Description}}
/// {{.Description}}
{{- end}}
#[derive(Debug, Clone, Copy, PartialEq, Eq, serde::Serialize, serde::Deserialize)]
pub enum {{.TypeName}} {
{{- range .Enum}}
    #[serde(rename = "{{.Literal}}")]
    {{.Name}},
{{- end}}
}
`

const aliasTemplateSrc = `pub type {{.TypeName}} = {{rustType .Alias false}};
`

const markerTemplateSrc = `// Phantom marker types for the typestate builders below. A builder's
// generic parameters sit in one of these two states until every required
// field has been supplied, at which point {{"Into<T>"}} becomes available.
{{range .}}pub struct Missing{{.}};
pub struct {{.}}Exists;
{{end}}`

// clientRuntimeSrc is the HTTP client runtime every Sendable builder depends
// on: ApiError/ApiClient/Sendable plus the query-serialization helper. It
// carries no per-document data, so it's emitted verbatim rather than run
// through text/template.
const clientRuntimeSrc = `/// An error produced by sending a [Sendable] request.
#[derive(Debug)]
pub enum ApiError {
    /// The server answered, but not with a 2xx status.
    Failure(String, reqwest::StatusCode),
    /// The request never produced a response: connect, TLS, decode, ...
    Transport(reqwest::Error),
}

impl std::fmt::Display for ApiError {
    fn fmt(&self, f: &mut std::fmt::Formatter<'_>) -> std::fmt::Result {
        match self {
            ApiError::Failure(path, status) => write!(f, "{} returned {}", path, status),
            ApiError::Transport(err) => write!(f, "transport error: {}", err),
        }
    }
}

impl std::error::Error for ApiError {
    fn source(&self) -> Option<&(dyn std::error::Error + 'static)> {
        match self {
            ApiError::Failure(..) => None,
            ApiError::Transport(err) => Some(err),
        }
    }
}

impl From<reqwest::Error> for ApiError {
    fn from(err: reqwest::Error) -> Self {
        ApiError::Transport(err)
    }
}

/// A configured HTTP endpoint a [Sendable] request is sent against.
pub trait ApiClient {
    /// The server's base URL. Defaults to a placeholder; implementors
    /// backed by a real deployment override it.
    fn base_url(&self) -> &'static str {
        "https://example.com"
    }

    /// Starts a request for rel_path under base_url, joined the way the
    /// implementor's reqwest::Client is configured to join them.
    fn request_builder(&self, method: reqwest::Method, rel_path: &str) -> reqwest::RequestBuilder;
}

/// Applies query pairs to builder, dropping every None-valued entry, per the
/// query-serialization contract every Sendable::modify override relies on.
pub fn apply_query(builder: reqwest::RequestBuilder, pairs: &[(&str, Option<String>)]) -> reqwest::RequestBuilder {
    let present: Vec<(&str, &str)> = pairs
        .iter()
        .filter_map(|(k, v)| v.as_deref().map(|v| (*k, v)))
        .collect();
    builder.query(&present)
}

/// A fully-built request: every required with_* setter on its typestate
/// builder has been called, so it can be turned into an HTTP call.
pub trait Sendable {
    /// The type the response body deserializes into.
    type Output: serde::de::DeserializeOwned;

    /// The request's HTTP method.
    const METHOD: reqwest::Method;

    /// The request's path relative to [ApiClient::base_url], with every
    /// "{param}" path segment already substituted.
    fn rel_path(&self) -> std::borrow::Cow<'static, str>;

    /// Applies query parameters or other per-request tweaks. The default is
    /// a no-op; builders with query parameters override it.
    fn modify(&self, builder: reqwest::RequestBuilder) -> reqwest::RequestBuilder {
        builder
    }

    /// Sends the request and returns the raw response, without checking its
    /// status or deserializing its body.
    async fn send_raw<C: ApiClient + Sync>(&self, client: &C) -> Result<reqwest::Response, ApiError> {
        let path = self.rel_path();
        let builder = client.request_builder(Self::METHOD, &path);
        let resp = self.modify(builder).send().await?;
        if !resp.status().is_success() {
            return Err(ApiError::Failure(path.into_owned(), resp.status()));
        }
        Ok(resp)
    }

    /// Sends the request and deserializes the response body as Output.
    async fn send<C: ApiClient + Sync>(&self, client: &C) -> Result<Self::Output, ApiError> {
        let resp = self.send_raw(client).await?;
        Ok(resp.json::<Self::Output>().await?)
    }
}
`

const builderTemplateSrc = `{{- $b := . -}}
{{- if $b.IsUnit}}
/// Builder for {{$b.OperationID}} ({{$b.Method}} {{$b.Path}}).
pub struct {{$b.Name}};

impl Sendable for {{$b.Name}} {
    type Output = {{crateRef $b.OwnerModule $b.OwnerType}};
    const METHOD: reqwest::Method = {{$b.MethodConst}};

    fn rel_path(&self) -> std::borrow::Cow<'static, str> {
        "{{$b.Path}}".into()
    }
}

impl {{crateRef $b.OwnerModule $b.OwnerType}} {
    pub fn {{$b.EntryFn}}() -> {{$b.Name}} {
        {{$b.Name}}
    }
}
{{- else}}
/// Builder for {{$b.OperationID}} ({{$b.Method}} {{$b.Path}}).
///
/// Every {{join (markerNames $b.Markers) ", "}} marker starts as Missing and
/// must be flipped to Exists via its with_* setter before this builder
/// converts {{"Into"}} the owner type.
#[repr(C)]
pub struct {{$b.Name}}<{{$b.GenericParams}}> {
    inner: {{crateRef $b.OwnerModule $b.OwnerType}},
{{- if $b.HasBody}}
    body: {{crateRef $b.BodyModule $b.BodyType}},
{{- end}}
{{- range $b.PathFields}}
    {{.FieldName}}: String,
{{- end}}
{{- range $b.StandaloneQueryParams}}
    {{.FieldName}}: Option<{{.RustType}}>,
{{- end}}
    _marker: std::marker::PhantomData<({{$b.GenericParams}})>,
}

impl {{$b.Name}}<{{$b.AllMissingSelf}}> {
    pub fn new(inner: {{crateRef $b.OwnerModule $b.OwnerType}}) -> Self {
        Self {
            inner,
{{- if $b.HasBody}}
            body: Default::default(),
{{- end}}
{{- range $b.PathFields}}
            {{.FieldName}}: String::new(),
{{- end}}
{{- range $b.StandaloneQueryParams}}
            {{.FieldName}}: None,
{{- end}}
            _marker: std::marker::PhantomData,
        }
    }
}

impl {{crateRef $b.OwnerModule $b.OwnerType}} {
    pub fn {{$b.EntryFn}}() -> {{$b.Name}}<{{$b.AllMissingSelf}}> {
        {{$b.Name}}::new(Default::default())
    }
}
{{range $b.Steps}}
impl<{{.ImplGenerics}}> {{$b.Name}}<{{.BeforeSelf}}> {
    /// Supplies the required "{{.FieldName}}" {{if .FromPath}}path {{end}}value.
    pub fn with_{{.FieldName}}(mut self, value: {{.SetterParam}}) -> {{$b.Name}}<{{.AfterSelf}}> {
        {{if .FromPath -}}
        self.{{.FieldName}} = {{.ConvertExpr}};
        {{- else -}}
        self.inner.{{.FieldName}} = Some({{.ConvertExpr}});
        {{- end}}
        unsafe { std::mem::transmute(self) }
    }
}
{{end}}
{{- if $b.OptionalSetters}}
impl<{{$b.GenericParams}}> {{$b.Name}}<{{$b.GenericParams}}> {
{{- range $b.OptionalSetters}}
    /// Supplies the optional "{{.FieldName}}" value.
    pub fn with_{{.FieldName}}(mut self, value: {{.SetterParam}}) -> Self {
        {{if .BodyField -}}
        self.body.{{.FieldName}} = Some({{.ConvertExpr}});
        {{- else -}}
        self.inner.{{.FieldName}} = Some({{.ConvertExpr}});
        {{- end}}
        self
    }
{{- end}}
}
{{end}}
{{- if $b.StandaloneQueryParams}}
impl<{{$b.GenericParams}}> {{$b.Name}}<{{$b.GenericParams}}> {
{{- range $b.StandaloneQueryParams}}
    /// Supplies the optional "{{.WireName}}" query parameter.
    pub fn with_{{.FieldName}}(mut self, value: impl Into<{{.RustType}}>) -> Self {
        self.{{.FieldName}} = Some(value.into());
        self
    }
{{- end}}
}
{{end}}
impl Sendable for {{$b.Name}}<{{$b.AllExistsSelf}}> {
    type Output = {{crateRef $b.OwnerModule $b.OwnerType}};
    const METHOD: reqwest::Method = {{$b.MethodConst}};

    fn rel_path(&self) -> std::borrow::Cow<'static, str> {
        format!("{{$b.PathFormat}}"{{if $b.PathFormatArgs}}, {{$b.PathFormatArgs}}{{end}}).into()
    }
{{- if $b.QueryParams}}

    fn modify(&self, builder: reqwest::RequestBuilder) -> reqwest::RequestBuilder {
        let pairs: Vec<(&str, Option<String>)> = vec![
        {{- range $b.QueryParams}}
            ("{{.WireName}}", {{if .Collides}}self.body.{{.FieldName}}{{else}}self.{{.FieldName}}{{end}}.as_ref().map(ToString::to_string)),
        {{- end}}
        ];
        apply_query(builder, &pairs)
    }
{{- end}}
}

impl From<{{$b.Name}}<{{$b.AllExistsSelf}}>> for {{crateRef $b.OwnerModule $b.OwnerType}} {
    fn from(b: {{$b.Name}}<{{$b.AllExistsSelf}}>) -> Self {
        b.inner
    }
}
{{- end}}
`

var tmpl = template.Must(template.New("emit").Funcs(template.FuncMap{
	"rustType": funcMap["rustType"],
	"crateRef": funcMap["crateRef"],
	"join":     funcMap["join"],
	"markerNames": func(ms []Marker) []string {
		names := make([]string, len(ms))
		for i, m := range ms {
			names[i] = m.Name
		}
		return names
	},
}).Parse(recordTemplateSrc))

func mustParse(name, src string) *template.Template {
	return template.Must(tmpl.New(name).Parse(src))
}

var (
	enumTemplate    = mustParse("enum", enumTemplateSrc)
	aliasTemplate   = mustParse("alias", aliasTemplateSrc)
	markerTemplate  = mustParse("markers", markerTemplateSrc)
	builderTemplate = mustParse("builder", builderTemplateSrc)
)

func renderEntry(e *catalog.Entry) (string, error) {
	var t *template.Template
	switch {
	case e.IsEnum():
		t = enumTemplate
	case e.IsAlias():
		t = aliasTemplate
	default:
		t = tmpl
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, e); err != nil {
		return "", fmt.Errorf("%w: rendering %s: %w", ErrEmission, e.DefinitionName, err)
	}
	return buf.String(), nil
}

func renderMarkers(names []string) (string, error) {
	var buf bytes.Buffer
	if err := markerTemplate.Execute(&buf, names); err != nil {
		return "", fmt.Errorf("%w: rendering markers: %w", ErrEmission, err)
	}
	return buf.String(), nil
}

func renderBuilder(b *Builder) (string, error) {
	var buf bytes.Buffer
	if err := builderTemplate.Execute(&buf, b); err != nil {
		return "", fmt.Errorf("%w: rendering builder %s: %w", ErrEmission, b.Name, err)
	}
	return buf.String(), nil
}

// renderClientRuntime returns the ApiError/ApiClient/Sendable runtime every
// generated operations.rs depends on.
func renderClientRuntime() string {
	return clientRuntimeSrc
}
