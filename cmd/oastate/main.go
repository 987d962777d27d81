// Package main provides the CLI entry point for oastate, a tool that reads
// an OpenAPI v2 (Swagger) document and emits a typestate-checked Rust HTTP
// client library.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"go.oastate.dev/oastate/pipeline"
	"go.oastate.dev/oastate/profile"
	"go.oastate.dev/oastate/version"
)

func main() {
	cfg := pipeline.NewConfig()
	prof := profile.NewConfig().NewProfiler()

	rootCmd := &cobra.Command{
		Use:   "oastate [flags] <spec.json>",
		Short: "Generate a typestate Rust HTTP client from an OpenAPI v2 document",
		Long: `oastate reads an OpenAPI v2 (Swagger) document, resolves its $ref graph,
synthesizes a deterministic catalog of Rust types, and emits a directory tree
of Rust source implementing a typestate-checked HTTP client for the API.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return prof.Start()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return prof.Stop()
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return run(cfg, args[0])
		},
	}

	cfg.RegisterFlags(rootCmd.Flags())
	prof.RegisterFlags(rootCmd.PersistentFlags())

	if err := cfg.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}
	if err := prof.RegisterCompletions(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newWatchCommand(cfg))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *pipeline.Config, specPath string) error {
	if err := cfg.LoadFile(); err != nil {
		return err
	}

	handler, err := cfg.Log.NewHandler(os.Stderr)
	if err != nil {
		return err
	}
	logger := slog.New(handler)

	p, err := cfg.NewPipeline()
	if err != nil {
		return err
	}

	f, err := os.Open(specPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", specPath, err)
	}
	defer f.Close()

	result, err := p.Run(logger, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "wrote %d type(s) and %d builder(s) to %s (%d warning(s)), built with Go %s\n",
		result.Definitions, result.Builders, cfg.Output, len(result.Warnings), version.GoVersion)

	return nil
}
