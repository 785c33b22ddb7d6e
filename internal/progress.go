package internal

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// analysisStages is the number of stage completions reported by Analyze
const analysisStages = 4

// UIManager handles user-facing status output. Everything goes to stderr so
// stdout carries only the report.
type UIManager interface {
	// NewStageBar counts finished stages out of total
	NewStageBar(total int, description string) ProgressBar
	// NewSpinner shows activity for a single long call
	NewSpinner(description string) ProgressBar

	Verbose(format string, args ...interface{})
	Printf(format string, args ...interface{})
	Println(args ...interface{})
}

// ProgressBar is a status indicator that can be advanced and relabeled
type ProgressBar interface {
	Advance()
	Describe(description string)
	Finish()
}

// StandardUIManager writes status to stderr unless quiet
type StandardUIManager struct {
	verbose bool
	quiet   bool
}

func NewUIManager(verbose, quiet bool) UIManager {
	return &StandardUIManager{
		verbose: verbose,
		quiet:   quiet,
	}
}

func (ui *StandardUIManager) NewStageBar(total int, description string) ProgressBar {
	if ui.quiet {
		return &statusBar{bar: progressbar.DefaultSilent(int64(total)), silent: true}
	}

	return &statusBar{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "#",
			SaucerPadding: ".",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)}
}

func (ui *StandardUIManager) NewSpinner(description string) ProgressBar {
	if ui.quiet {
		return &statusBar{bar: progressbar.DefaultSilent(-1), silent: true}
	}

	return &statusBar{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)}
}

func (ui *StandardUIManager) Verbose(format string, args ...interface{}) {
	if ui.verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func (ui *StandardUIManager) Printf(format string, args ...interface{}) {
	if !ui.quiet {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func (ui *StandardUIManager) Println(args ...interface{}) {
	if !ui.quiet {
		fmt.Fprintln(os.Stderr, args...)
	}
}

// statusBar wraps a progressbar; silent bars still count but never relabel
type statusBar struct {
	bar    *progressbar.ProgressBar
	silent bool
}

func (b *statusBar) Advance() {
	_ = b.bar.Add(1)
}

func (b *statusBar) Describe(description string) {
	if !b.silent {
		b.bar.Describe(description)
	}
}

func (b *statusBar) Finish() {
	_ = b.bar.Finish()
}
