package pipeline

import (
	"fmt"
	"io"
	"log/slog"

	"go.oastate.dev/oastate/catalog"
	"go.oastate.dev/oastate/document"
	"go.oastate.dev/oastate/emit"
	"go.oastate.dev/oastate/resolve"
)

// Pipeline runs the full load -> resolve -> synthesize -> emit sequence
// against a single OpenAPI v2 document. Build one with [Config.NewPipeline].
type Pipeline struct {
	outDir      string
	strict      bool
	concurrency int
	profile     ExtensionProfile
}

// Result summarizes one [Pipeline.Run].
type Result struct {
	// Definitions is the number of catalog entries synthesized.
	Definitions int
	// Builders is the number of typestate builders emitted.
	Builders int
	// Warnings holds every non-fatal condition encountered, formatted as
	// "<name>: <message>".
	Warnings []string
}

// Run parses the OpenAPI v2 document read from r and writes the generated
// Rust source tree to the pipeline's configured output directory. Warnings
// (ambiguous owners, additionalProperties conflicts) are logged at
// [slog.LevelWarn] and, in strict mode, turn into an [ErrStrict] error
// instead of a successful [Result].
func (p *Pipeline) Run(logger *slog.Logger, r io.Reader) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch p.profile {
	case ProfileNone:
		return runPipeline[document.NoExtensions](p, logger, r)
	default:
		return runPipeline[document.Extensions](p, logger, r)
	}
}

func runPipeline[E any](p *Pipeline, logger *slog.Logger, r io.Reader) (*Result, error) {
	doc, err := document.Load[E](r)
	if err != nil {
		return nil, err
	}

	resolved, err := resolve.Resolve(doc)
	if err != nil {
		return nil, err
	}

	cat, catWarnings, err := catalog.Synthesize(resolved)
	if err != nil {
		return nil, err
	}

	plan, planWarnings := emit.BuildPlan(resolved, cat)

	warnings := make([]string, 0, len(catWarnings)+len(planWarnings))
	for _, w := range append(catWarnings, planWarnings...) {
		logger.Warn(w.Message, slog.String("definition", w.DefinitionName))
		warnings = append(warnings, fmt.Sprintf("%s: %s", w.DefinitionName, w.Message))
	}

	if p.strict && len(warnings) > 0 {
		return nil, fmt.Errorf("%w: %d warning(s)", ErrStrict, len(warnings))
	}

	var opts []emit.Option
	if p.concurrency > 0 {
		opts = append(opts, emit.WithConcurrency(p.concurrency))
	}

	if err := emit.Run(cat, plan, p.outDir, opts...); err != nil {
		return nil, err
	}

	return &Result{
		Definitions: len(cat.Entries()),
		Builders:    len(plan.Builders),
		Warnings:    warnings,
	}, nil
}
