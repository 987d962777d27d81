package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Sentinel error kinds. Wrapped with context via fmt.Errorf("%w: ...", Err*);
// callers distinguish with errors.Is.
var (
	// ErrParse covers any malformed JSON or field that doesn't match the
	// shape this package expects.
	ErrParse = errors.New("document: parse error")
	// ErrVersion is returned when the "swagger" field isn't "2.0".
	ErrVersion = errors.New("document: unsupported version")
)

// Load parses an OpenAPI v2 document from r into a [Document], generic over
// the extension payload type E (use [NoExtensions] if extensions don't
// matter, or [Extensions] for the Kubernetes-aware default).
func Load[E any](r io.Reader) (*Document[E], error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading input: %w", ErrParse, err)
	}

	var doc Document[E]
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if doc.Swagger != VersionV2 {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrVersion, doc.Swagger, VersionV2)
	}

	for path, item := range doc.Paths {
		item.Path = path
	}

	return &doc, nil
}
