package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.oastate.dev/oastate/document"
)

// Sentinel error kinds, wrapped with context via fmt.Errorf and distinguished
// with errors.Is.
var (
	// ErrDanglingReference is returned when a "$ref" names a definition that
	// doesn't exist.
	ErrDanglingReference = errors.New("resolve: dangling reference")
	// ErrUnsupportedReferenceScope is returned when a "$ref" doesn't point
	// into "#/definitions/"; this pipeline only resolves references within
	// the document's own definitions.
	ErrUnsupportedReferenceScope = errors.New("resolve: unsupported reference scope")
	// ErrReference is returned when a reference chain loops back on itself
	// without ever reaching a concrete definition (e.g. a definition whose
	// own body is nothing but a $ref to itself).
	ErrReference = errors.New("resolve: reference cycle with no concrete target")
)

const definitionsPrefix = "#/definitions/"

// Resolve rebinds every reachable "$ref" placeholder in doc to point at its
// target definition and returns doc (mutated in place) for convenience.
// Resolve is idempotent: calling it again on an already-resolved document is
// a no-op walk that performs no rebinding.
func Resolve[E any](doc *document.Document[E]) (*document.Document[E], error) {
	r := &resolver[E]{
		registry: doc.Definitions,
		visited:  make(map[*document.Schema[E]]bool),
	}

	names := make([]string, 0, len(doc.Definitions))
	for name := range doc.Definitions {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cur := doc.Definitions[name]
		if err := r.substitute(&cur); err != nil {
			return nil, fmt.Errorf("definition %s: %w", name, err)
		}
		doc.Definitions[name] = cur
	}

	paths := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		item := doc.Paths[p]
		for _, param := range item.Parameters {
			if err := r.resolveParameter(param); err != nil {
				return nil, fmt.Errorf("path %s: %w", p, err)
			}
		}
		for _, method := range item.SortedMethods() {
			op := item.Operations[method]
			for _, param := range op.Parameters {
				if err := r.resolveParameter(param); err != nil {
					return nil, fmt.Errorf("path %s %s: %w", p, method, err)
				}
			}

			codes := make([]string, 0, len(op.Responses))
			for c := range op.Responses {
				codes = append(codes, c)
			}
			sort.Strings(codes)
			for _, c := range codes {
				resp := op.Responses[c]
				if err := r.substitute(&resp.Schema); err != nil {
					return nil, fmt.Errorf("path %s %s response %s: %w", p, method, c, err)
				}
			}
		}
	}

	return doc, nil
}

type resolver[E any] struct {
	registry map[string]*document.Schema[E]
	visited  map[*document.Schema[E]]bool
}

func (r *resolver[E]) resolveParameter(p *document.Parameter[E]) error {
	if err := r.substitute(&p.Schema); err != nil {
		return err
	}
	return r.substitute(&p.Items)
}

// substitute walks the $ref chain starting at *s (if any) until it reaches a
// concrete node, rebinds *s to point at that node, then walks the node's own
// children for further references.
func (r *resolver[E]) substitute(s **document.Schema[E]) error {
	cur := *s
	if cur == nil {
		return nil
	}

	seen := make(map[string]bool)
	for cur.Ref != "" {
		name, err := refTargetName(cur.Ref)
		if err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("%w: %s", ErrReference, name)
		}
		seen[name] = true

		target, ok := r.registry[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrDanglingReference, name)
		}
		cur = target
	}

	*s = cur
	return r.walk(cur)
}

func (r *resolver[E]) walk(s *document.Schema[E]) error {
	if s == nil || r.visited[s] {
		return nil
	}
	r.visited[s] = true

	if err := r.substitute(&s.Items); err != nil {
		return err
	}
	if err := r.substitute(&s.Not); err != nil {
		return err
	}

	if s.Properties != nil {
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			prop := s.Properties[name]
			if err := r.substitute(&prop); err != nil {
				return fmt.Errorf("property %s: %w", name, err)
			}
			s.Properties[name] = prop
		}
	}

	if s.AdditionalProperties != nil && s.AdditionalProperties.Schema != nil {
		if err := r.substitute(&s.AdditionalProperties.Schema); err != nil {
			return err
		}
	}

	for i := range s.AllOf {
		if err := r.substitute(&s.AllOf[i]); err != nil {
			return fmt.Errorf("allOf[%d]: %w", i, err)
		}
	}
	for i := range s.AnyOf {
		if err := r.substitute(&s.AnyOf[i]); err != nil {
			return fmt.Errorf("anyOf[%d]: %w", i, err)
		}
	}
	for i := range s.OneOf {
		if err := r.substitute(&s.OneOf[i]); err != nil {
			return fmt.Errorf("oneOf[%d]: %w", i, err)
		}
	}

	return nil
}

func refTargetName(ref string) (string, error) {
	if !strings.HasPrefix(ref, definitionsPrefix) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedReferenceScope, ref)
	}
	name := strings.TrimPrefix(ref, definitionsPrefix)
	if name == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedReferenceScope, ref)
	}
	return name, nil
}
