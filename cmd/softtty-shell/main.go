// Command softtty-shell is an interactive front-end for the virtual
// pseudo-terminal subsystem.
//
// It registers one subsystem instance and exposes its operations as
// shell commands: installing pairs through the ptmx control node,
// writing and reading across a pair, toggling the slave lock and
// packet mode, and driving flow control.
//
// Usage:
//
//	softtty-shell [flags]
//
// Flags:
//
//	-config string  Configuration file path (YAML)
//	-trace string   CBOR trace capture path (overrides the config file)
//	-verbose        Mirror trace events to the console via slog
//
// Examples:
//
//	# Run with defaults
//	softtty-shell
//
//	# Capture a trace while experimenting
//	softtty-shell -trace /tmp/session.tlog -verbose
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/softtty/softtty-go/pkg/config"
	"github.com/softtty/softtty-go/pkg/log"
	"github.com/softtty/softtty-go/pkg/pty"
)

func main() {
	configPath := flag.String("config", "", "configuration file path (YAML)")
	tracePath := flag.String("trace", "", "CBOR trace capture path")
	verbose := flag.Bool("verbose", false, "mirror trace events to the console")
	flag.Parse()

	if err := run(*configPath, *tracePath, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "softtty-shell:", err)
		os.Exit(1)
	}
}

func run(configPath, tracePath string, verbose bool) error {
	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}
	if tracePath != "" {
		cfg.TraceFile = tracePath
	}

	var sinks []log.Logger
	if cfg.TraceFile != "" {
		fl, err := log.NewFileLogger(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer fl.Close()
		sinks = append(sinks, fl)
	}
	if verbose {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		sinks = append(sinks, log.NewSlogAdapter(slog.New(handler)))
	}

	opts := cfg.Options()
	if len(sinks) > 0 {
		opts.Logger = log.NewMultiLogger(sinks...)
	}

	subsystem, err := pty.Register(opts)
	if err != nil {
		return fmt.Errorf("register subsystem: %w", err)
	}

	shell, err := newShell(subsystem, cfg.TraceFile)
	if err != nil {
		return err
	}
	defer shell.Close()

	return shell.Run()
}
