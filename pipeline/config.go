package pipeline

import (
	"fmt"
	"os"
	"slices"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.oastate.dev/oastate/genlog"
)

// ExtensionProfile selects which [document.Document] extension payload type
// the pipeline parses with. Go generics fix this at compile time, so Run
// dispatches to one of two hardcoded instantiations rather than branching
// inside the generic document/resolve/catalog machinery.
type ExtensionProfile string

const (
	// ProfileKubernetes captures x-kubernetes-patch-strategy,
	// x-kubernetes-patch-merge-key, and a best-effort jsonschema-go view of
	// every other x-* key. The default: most Swagger 2.0 documents in the
	// wild are Kubernetes-derived or at least carry similarly-shaped
	// vendor extensions.
	ProfileKubernetes ExtensionProfile = "kubernetes"
	// ProfileNone discards every x-* key during parsing.
	ProfileNone ExtensionProfile = "none"
)

// Flags holds CLI flag names for pipeline configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Output           string
	Strict           string
	Concurrency      string
	ExtensionProfile string
	ConfigFile       string
}

// Config holds CLI flag values wiring the document/resolve/catalog/emit
// pipeline together. Flag *names* are indirected through [Flags] so
// embedders can rename them, the same shape as [go.oastate.dev/oastate/genlog.Config].
//
// Create instances with [NewConfig], register CLI flags with
// [Config.RegisterFlags], then build a runnable [Pipeline] with
// [Config.NewPipeline].
type Config struct {
	Flags Flags
	Log   *genlog.Config

	Output           string
	Strict           bool
	Concurrency      int
	ExtensionProfile string
	ConfigFile       string
}

// fileOverlay is the shape of the optional YAML config file: any field left
// zero there leaves the corresponding CLI-flag-or-default value untouched.
type fileOverlay struct {
	Output           string `yaml:"output"`
	Strict           bool   `yaml:"strict"`
	Concurrency      int    `yaml:"concurrency"`
	ExtensionProfile string `yaml:"extensionProfile"`
}

// NewConfig returns a new [Config] with default flag names and values.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Output:           "output",
			Strict:           "strict",
			Concurrency:      "concurrency",
			ExtensionProfile: "extension-profile",
			ConfigFile:       "config",
		},
		Log:              genlog.NewConfig(),
		Output:           "out",
		ExtensionProfile: string(ProfileKubernetes),
	}
}

// RegisterFlags adds pipeline flags, plus [genlog.Config]'s logging flags,
// to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Output, c.Flags.Output, "o", c.Output,
		"output directory for the generated Rust source tree")
	flags.BoolVar(&c.Strict, c.Flags.Strict, false,
		"treat non-fatal warnings (ambiguous owner, additionalProperties conflict) as errors")
	flags.IntVar(&c.Concurrency, c.Flags.Concurrency, 0,
		"number of files written concurrently (0 = runtime.GOMAXPROCS(0))")
	flags.StringVar(&c.ExtensionProfile, c.Flags.ExtensionProfile, c.ExtensionProfile,
		fmt.Sprintf("x-* vendor extension handling, one of: %s", allProfileStrings()))
	flags.StringVar(&c.ConfigFile, c.Flags.ConfigFile, "",
		"optional YAML config file overlaying output/strict/concurrency/extensionProfile")

	c.Log.RegisterFlags(flags)
}

// RegisterCompletions registers shell completions for the fixed-choice
// pipeline flags, plus [genlog.Config]'s.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.ExtensionProfile,
		cobra.FixedCompletions(allProfileStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.ExtensionProfile, err)
	}

	return c.Log.RegisterCompletions(cmd)
}

// LoadFile overlays YAML config file values onto c, for every field the
// file sets to a non-zero value. A no-op if c.ConfigFile is empty.
func (c *Config) LoadFile() error {
	if c.ConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(c.ConfigFile)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if overlay.Output != "" {
		c.Output = overlay.Output
	}
	if overlay.Strict {
		c.Strict = true
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.ExtensionProfile != "" {
		c.ExtensionProfile = overlay.ExtensionProfile
	}

	return nil
}

func allProfileStrings() []string {
	return []string{string(ProfileKubernetes), string(ProfileNone)}
}

func validProfile(p string) bool {
	return slices.Contains(allProfileStrings(), p)
}

// NewPipeline validates c and builds the runnable [Pipeline].
func (c *Config) NewPipeline() (*Pipeline, error) {
	if c.Output == "" {
		return nil, fmt.Errorf("%w: empty output directory", ErrConfig)
	}
	if !validProfile(c.ExtensionProfile) {
		return nil, fmt.Errorf("%w: unknown extension profile %q", ErrConfig, c.ExtensionProfile)
	}

	return &Pipeline{
		outDir:      c.Output,
		strict:      c.Strict,
		concurrency: c.Concurrency,
		profile:     ExtensionProfile(c.ExtensionProfile),
	}, nil
}
