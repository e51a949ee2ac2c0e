package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/xterra/fieldreport/config"
	"github.com/xterra/fieldreport/observability"
	"github.com/xterra/fieldreport/render"
	"github.com/xterra/fieldreport/report"
)

type options struct {
	contentPath   string
	configPath    string
	outDir        string
	stdout        bool
	deterministic bool
	verbose       bool
}

// stdoutIsTerminal is replaced in tests.
var stdoutIsTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

func main() {
	os.Exit(cli(os.Args[1:], os.Stderr))
}

// cli returns the exit code: 2 for usage errors, 1 when the export fails.
func cli(args []string, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "fieldreport: %v\n", err)
		return 2
	}
	if err := run(opts, stderr); err != nil {
		fmt.Fprintf(stderr, "fieldreport: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("fieldreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: fieldreport [flags] <report.yaml>\n")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "fieldreport.yaml", "Configuration file (defaults apply when missing)")
	outDir := fs.String("out", "", "Output directory (overrides output.dir; \"-\" writes the PDF to stdout)")
	deterministic := fs.Bool("deterministic", false, "Omit the creation date so identical input gives identical bytes")
	verbose := fs.Bool("v", false, "Log debug messages")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return options{}, fmt.Errorf("expected one report content path, got %d arguments", fs.NArg())
	}
	opts.contentPath = fs.Arg(0)
	opts.configPath = *configPath
	opts.outDir = *outDir
	opts.stdout = *outDir == "-"
	opts.deterministic = *deterministic
	opts.verbose = *verbose
	return opts, nil
}

func run(opts options, stderr io.Writer) error {
	if opts.stdout && stdoutIsTerminal() {
		return fmt.Errorf("refusing to write PDF bytes to a terminal; redirect stdout or use -out <dir>")
	}

	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return err
	}
	if opts.deterministic {
		cfg.Output.Deterministic = true
	}

	res := report.ParseFile(opts.contentPath)
	if !res.Ok() {
		return res.Err
	}

	zl, err := newZap(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	logger := observability.NewZap(zl)

	engineOpts, err := render.ConfigOptions(cfg, filepath.Dir(opts.contentPath))
	if err != nil {
		return err
	}
	engine := render.New(append(engineOpts, render.WithLogger(logger))...)

	var sink render.Sink
	switch {
	case opts.stdout:
		sink = render.WriterSink{W: os.Stdout}
	case opts.outDir != "":
		sink = render.FileSink{Dir: opts.outDir}
	default:
		sink = render.FileSink{Dir: cfg.Output.Dir}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	art, err := engine.Export(ctx, res.Content, sink)
	if err != nil {
		return err
	}
	if !opts.stdout {
		fmt.Fprintf(stderr, "wrote %s (%d pages)\n", art.Name, art.Pages)
	}
	return nil
}

func newZap(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
