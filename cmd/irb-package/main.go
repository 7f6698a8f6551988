package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/a3tai/irb-packager/internal/config"
	"github.com/a3tai/irb-packager/internal/ledger"
	"github.com/a3tai/irb-packager/internal/logging"
	"github.com/a3tai/irb-packager/internal/pdf"
	"github.com/a3tai/irb-packager/internal/readability"
	"github.com/a3tai/irb-packager/internal/submission"
)

// options holds the command line settings
type options struct {
	workDir     string
	output      string
	format      string
	ledgerPath  string
	threshold   float64
	maxFileSize int64
	verbose     bool
	help        bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, manifestPath, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		printUsage(stderr)
		return 2
	}
	if opts.help {
		printHelp(stdout)
		return 0
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger := logging.New(stderr, level, false)

	if manifestPath, err = filepath.Abs(manifestPath); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	sub, err := submission.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	workDir := opts.workDir
	if workDir == "" {
		workDir = filepath.Dir(manifestPath)
	}
	if workDir, err = filepath.Abs(workDir); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	serviceOpts := pdf.ServiceOptions{
		MaxFileSize:   opts.maxFileSize,
		WorkDirectory: workDir,
		OutputName:    opts.output,
		Trigger:       readability.TriggerConfig{Threshold: opts.threshold},
		Logger:        logger,
	}
	if opts.ledgerPath != "" {
		l, err := ledger.Open(opts.ledgerPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer l.Close()
		serviceOpts.Recorder = l
	}

	svc, err := pdf.NewService(serviceOpts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	result, err := svc.BuildPackage(ctx, pdf.PackageBuildRequest{Submission: *sub})
	if err != nil {
		fmt.Fprintf(stderr, "Error building package: %v\n", err)
		return 1
	}

	if err := outputResult(stdout, opts.format, result); err != nil {
		fmt.Fprintf(stderr, "Error writing result: %v\n", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, stderr io.Writer) (*options, string, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("irb-package", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.workDir, "dir", "d", "", "Work directory for uploads and output (default: manifest directory)")
	fs.StringVarP(&opts.output, "output", "o", config.DefaultOutputName, "Package file name")
	fs.StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	fs.StringVar(&opts.ledgerPath, "ledger", "", "SQLite ledger to record the package in")
	fs.Float64Var(&opts.threshold, "threshold", readability.DefaultThreshold, "Grade level flagged as too high")
	fs.Int64Var(&opts.maxFileSize, "maxfilesize", config.DefaultMaxFileSize, "Maximum upload size in bytes")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "Log packaging steps to stderr")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, "", err
	}
	if opts.help {
		return opts, "", nil
	}
	if opts.format != "text" && opts.format != "json" {
		return nil, "", fmt.Errorf("invalid format %q (must be text or json)", opts.format)
	}
	if err := readability.ValidateThreshold(opts.threshold); err != nil {
		return nil, "", err
	}
	if fs.NArg() != 1 {
		return nil, "", fmt.Errorf("exactly one manifest file is required")
	}
	return opts, fs.Arg(0), nil
}

func outputResult(w io.Writer, format string, result *pdf.PackageBuildResult) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(w, "Package: %s\n", result.OutputPath)
	fmt.Fprintf(w, "Submission ID: %s\n", result.SubmissionID)
	fmt.Fprintf(w, "Pages: %d\n", result.Pages)
	fmt.Fprintf(w, "Document Reading Level: %s\n", result.Readability.Label)
	if result.Combined != nil {
		fmt.Fprintf(w, "Combined Reading Level: %s\n", result.Combined.Label)
	}
	for _, att := range result.Included {
		fmt.Fprintf(w, "  + %s (%s, %d page(s))\n", att.Name, att.Kind, att.Pages)
	}
	for _, att := range result.Skipped {
		fmt.Fprintf(w, "  - %s: %s\n", att.Name, att.Reason)
	}
	for _, path := range result.Originals {
		fmt.Fprintf(w, "Original copied: %s\n", path)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	return nil
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "irb-package - Build an IRB submission package from a YAML manifest")
	fmt.Fprintln(w)
	printUsage(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprintln(w, "  -d, --dir          Work directory for uploads and output (default: manifest directory)")
	fmt.Fprintln(w, "  -o, --output       Package file name (default: submission-package.pdf)")
	fmt.Fprintln(w, "  -f, --format       Output format: text (default), json")
	fmt.Fprintln(w, "      --ledger       SQLite ledger to record the package in")
	fmt.Fprintln(w, "      --threshold    Grade level flagged as too high (default: 12)")
	fmt.Fprintln(w, "      --maxfilesize  Maximum upload size in bytes")
	fmt.Fprintln(w, "  -v, --verbose      Log packaging steps to stderr")
	fmt.Fprintln(w, "  -h, --help         Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "MANIFEST:")
	fmt.Fprintln(w, "  form:")
	fmt.Fprintln(w, "    name: Ada Lovelace")
	fmt.Fprintln(w, "    email: ada@example.org")
	fmt.Fprintln(w, "    consent_text: You may stop at any time.")
	fmt.Fprintln(w, "    study_info_text: The study lasts two weeks.")
	fmt.Fprintln(w, "    not_robot: true")
	fmt.Fprintln(w, "  attachments:")
	fmt.Fprintln(w, "    - path: protocol.pdf")
	fmt.Fprintln(w, "    - path: consent.docx")
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "  irb-package [OPTIONS] <manifest.yaml>")
}
