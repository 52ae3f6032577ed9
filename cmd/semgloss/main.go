// Package main provides the semgloss binary entry point.
// Semgloss compiles a vocabulary of jargon and acronyms into a term index and
// answers "is this token a known term?" for annotating clients.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/semgloss/config"
	"github.com/c360studio/semgloss/glossary"
	"github.com/c360studio/semgloss/reload"
	"github.com/c360studio/semgloss/vocabulary"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semgloss"
)

// shutdownTimeout bounds graceful HTTP shutdown.
const shutdownTimeout = 10 * time.Second

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Glossary term recognition service",
		Long: `Semgloss compiles a vocabulary of acronyms and jargon into a term index
and answers whether a candidate token is a known term.

Lookups are case-insensitive and whitespace-tolerant. A 256-bit fingerprint
rejects most non-terms before the exact lookup runs.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides config")

	cmd.AddCommand(
		serveCmd(flags),
		compileCmd(flags),
		probeCmd(flags),
		initCmd(flags),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	}
}

func initCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		Long: `Init writes ~/.config/semgloss/config.yaml with the default settings.
An existing file is left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), flags.logLevel)
			path, created, err := config.NewLoader(logger).EnsureUserConfig()
			if err != nil {
				return fmt.Errorf("init user config: %w", err)
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "exists %s\n", path)
			}
			return nil
		},
	}
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the glossary HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides http.addr")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	if err := app.Start(signalCtx); err != nil {
		app.Shutdown(shutdownTimeout)
		return err
	}

	logger.Info("Semgloss ready", "version", Version, "addr", app.Addr())

	select {
	case <-signalCtx.Done():
		logger.Info("Received shutdown signal")
	case err := <-app.Errors():
		logger.Error("HTTP server failed", "error", err)
		app.Shutdown(shutdownTimeout)
		return err
	}

	app.Shutdown(shutdownTimeout)
	return nil
}

func compileCmd(flags *globalFlags) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the configured vocabulary and print index statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ix, files, err := reload.Build(reload.SourceFromConfig(cfg.Vocabulary), logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dump {
				data, err := vocabulary.Marshal(recordsToEntries(ix.Records()))
				if err != nil {
					return fmt.Errorf("marshal vocabulary: %w", err)
				}
				_, err = out.Write(data)
				return err
			}

			report := struct {
				Stats   any      `json:"stats"`
				Sources []string `json:"sources,omitempty"`
			}{Stats: ix.Stats(), Sources: files}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "Print the merged vocabulary as YAML instead of statistics")
	return cmd
}

func probeCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe [candidate...]",
		Short: "Probe candidates against the compiled vocabulary",
		Long: `Probe reports whether each candidate is a known term.
Candidates come from the arguments, or one per line on stdin when none are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ix, _, err := reload.Build(reload.SourceFromConfig(cfg.Vocabulary), logger)
			if err != nil {
				return err
			}

			candidates := args
			if len(candidates) == 0 {
				candidates, err = readCandidates(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			for _, candidate := range candidates {
				rec, ok := ix.Probe(candidate)
				if asJSON {
					result := struct {
						Candidate string `json:"candidate"`
						Matched   bool   `json:"matched"`
						Term      any    `json:"term,omitempty"`
					}{Candidate: candidate, Matched: ok}
					if ok {
						result.Term = rec
					}
					if err := enc.Encode(result); err != nil {
						return err
					}
					continue
				}
				if !ok {
					fmt.Fprintf(out, "%s\t-\n", candidate)
					continue
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", candidate, rec.Key, rec.Brief)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per candidate")
	return cmd
}

// setup loads configuration and builds the logger for a subcommand.
func setup(flags *globalFlags, logOut io.Writer) (*config.Config, *slog.Logger, error) {
	bootstrap := newLogger(logOut, flags.logLevel)

	cfg, err := config.NewLoader(bootstrap).Load(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Log.Level
	if flags.logLevel != "" {
		level = flags.logLevel
	}
	logger := newLogger(logOut, level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func readCandidates(r io.Reader) ([]string, error) {
	var candidates []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			candidates = append(candidates, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	return candidates, nil
}

func recordsToEntries(records []glossary.TermRecord) map[string]glossary.Entry {
	terms := make(map[string]glossary.Entry, len(records))
	for _, rec := range records {
		terms[rec.Key] = glossary.Entry{
			Text:       rec.Text,
			Brief:      rec.Brief,
			Definition: rec.Definition,
			Kind:       rec.Kind,
		}
	}
	return terms
}
