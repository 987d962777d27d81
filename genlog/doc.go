// Package genlog provides structured logging handler construction for use
// with [log/slog], plus a fan-out [Publisher] so a long pipeline run can be
// observed live by a TUI without coupling the pipeline to one.
//
// It supports multiple output formats ([FormatJSON], [FormatLogfmt], and
// [FormatText]) and severity levels ([LevelError], [LevelWarn], [LevelInfo],
// and [LevelDebug]). Use [NewHandler] to create a handler directly, or use
// [Config] with CLI flag integration via [github.com/spf13/pflag] and shell
// completion support via [github.com/spf13/cobra].
//
// Typical usage creates a [Config], registers flags, then builds a handler
// at startup:
//
//	cfg := genlog.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// A [Publisher] fans out log output to multiple subscribers, which is useful
// for displaying logs inside a Bubble Tea TUI:
//
//	pub := genlog.NewPublisher()
//	handler := genlog.NewHandler(pub, genlog.LevelInfo, genlog.FormatJSON)
//	logger := slog.New(handler)
//
//	sub := pub.Subscribe()
//	go func() {
//	    for entry := range sub.C() {
//	        // Deliver entry to the TUI.
//	    }
//	}()
//
// Combine it with [io.MultiWriter] to write to multiple locations:
//
//	pub := genlog.NewPublisher()
//	w := io.MultiWriter(logFile, pub)
//	handler := genlog.NewHandler(w, genlog.LevelInfo, genlog.FormatJSON)
//	logger := slog.New(handler)
package genlog
