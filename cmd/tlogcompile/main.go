// tlogcompile reconstructs high-level browser session events (window,
// tab, and navigation lifecycle) from a raw browser-instrumentation log.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ajsharma/tlogcompile/internal/config"
	"github.com/ajsharma/tlogcompile/internal/diag"
	"github.com/ajsharma/tlogcompile/internal/event"
	"github.com/ajsharma/tlogcompile/internal/logx"
	"github.com/ajsharma/tlogcompile/internal/reader"
	"github.com/ajsharma/tlogcompile/internal/redact"
	"github.com/ajsharma/tlogcompile/internal/session"
	"github.com/ajsharma/tlogcompile/internal/sink"
)

var cfg = config.DefaultConfig()
var configPath string

var rootCmd = &cobra.Command{
	Use:     "tlogcompile <input-path>",
	Short:   "Compile a raw browser event log into a session-level event stream",
	Version: config.Version,
	Args:    cobra.ExactArgs(1),
	RunE:    run,
}

func init() {
	rootCmd.Flags().StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath,
		"output path (default: stdout)")
	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", cfg.Debug,
		"enable debug mode: verbose logging + crash dump on fatal error")
	rootCmd.Flags().BoolVar(&cfg.Redact, "redact", cfg.Redact,
		"redact sensitive query parameters in emitted URLs")
	rootCmd.Flags().StringSliceVar(&cfg.IgnoredEvents, "ignore", cfg.IgnoredEvents,
		"event names to drop before they reach the state machine")
	rootCmd.Flags().StringVar(&configPath, "config", "",
		"path to a YAML config file (flags override file values)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg.InputPath = args[0]

	if configPath != "" {
		fileCfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return err
		}
		mergeFlagOverrides(fileCfg, cmd)
		cfg = fileCfg
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	in, err := os.Open(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	out, closeOut, err := openOutput(cfg.OutputPath)
	if err != nil {
		return err
	}
	defer closeOut()

	r := reader.New(in, cfg.IgnoredEvents)
	log := logx.New(r, cfg.Debug)

	events, err := session.Compile(r, log)

	// After a fatal error the partial events feed only the crash dump; no
	// output events are written.
	toWrite := events
	if err != nil {
		toWrite = nil
	}

	s := sink.New(out)
	redactor := redact.New(cfg.Redact)
	for _, e := range toWrite {
		for _, field := range []string{"url", "href", "from_url", "original_url"} {
			if u, ok := e[field].(string); ok {
				e[field] = redactor.RedactURL(u)
			}
		}
		if writeErr := s.Write(e); writeErr != nil {
			return fmt.Errorf("writing output: %w", writeErr)
		}
	}
	if closeErr := s.Close(); closeErr != nil {
		return fmt.Errorf("flushing output: %w", closeErr)
	}

	if err != nil {
		var fatal *logx.FatalError
		line, msg := 0, err.Error()
		if errors.As(err, &fatal) {
			line, msg = fatal.Line, fatal.Msg
		}
		if cfg.Debug {
			path, dumpErr := diag.WriteCrashDump(cfg.CrashDumpDir, line, msg, emitterTail(events))
			if dumpErr == nil {
				fmt.Fprintf(os.Stderr, "crash dump written to %s\n", path)
			}
		}
		return err
	}
	return nil
}

// emitterTail returns the last few compiled events for the crash dump,
// mirroring the Python source's pdb-session context (spec §4.10).
func emitterTail(events []event.Event) []event.Event {
	const tailLen = 20
	if len(events) <= tailLen {
		return events
	}
	return events[len(events)-tailLen:]
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, f.Close, nil
}

// mergeFlagOverrides applies any flags the user explicitly set on the
// command line on top of the values loaded from the config file, so flags
// always win over file values.
func mergeFlagOverrides(fileCfg *config.Config, cmd *cobra.Command) {
	if cmd.Flags().Changed("output") {
		fileCfg.OutputPath = cfg.OutputPath
	}
	if cmd.Flags().Changed("debug") {
		fileCfg.Debug = cfg.Debug
	}
	if cmd.Flags().Changed("redact") {
		fileCfg.Redact = cfg.Redact
	}
	if cmd.Flags().Changed("ignore") {
		fileCfg.IgnoredEvents = cfg.IgnoredEvents
	}
	fileCfg.InputPath = cfg.InputPath
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
