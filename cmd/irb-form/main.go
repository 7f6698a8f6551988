package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/a3tai/irb-packager/internal/readability"
	"github.com/a3tai/irb-packager/internal/tui"
)

// options holds the command line settings
type options struct {
	consentFile string
	studyFile   string
	threshold   float64
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	consent, err := readOptional(opts.consentFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading consent text: %v\n", err)
		os.Exit(1)
	}
	study, err := readOptional(opts.studyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading study information: %v\n", err)
		os.Exit(1)
	}

	trigger := readability.NewTrigger(nil, readability.TriggerConfig{Threshold: opts.threshold})
	model := tui.NewModel(trigger, consent, study)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running form: %v\n", err)
		os.Exit(1)
	}

	// The alt screen is gone once Run returns; print the last label
	fb := model.Feedback()
	fmt.Printf("Reading Level: %s\n", fb.Label)
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("irb-form", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.consentFile, "consent", "", "File with initial consent form text")
	fs.StringVar(&opts.studyFile, "study", "", "File with initial study information text")
	fs.Float64Var(&opts.threshold, "threshold", readability.DefaultThreshold, "Grade level shown in the warning color")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := readability.ValidateThreshold(opts.threshold); err != nil {
		return nil, err
	}
	return opts, nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
