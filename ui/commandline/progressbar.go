// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"os"
	"time"

	"github.com/gomlx/scalargrad/ui/notebooks"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version.
// But it requires some of the graphical symbols to be supported.
var ProgressbarStyle = progressbar.ThemeASCII

// ProgressBar displays the progress of a sweep. Increment can be called concurrently.
type ProgressBar struct {
	bar        *progressbar.ProgressBar
	termenv    *termenv.Output
	inNotebook bool
	start      time.Time
}

// NewProgressBar creates and displays a progress bar for numSteps evaluations.
func NewProgressBar(numSteps int, description string) *ProgressBar {
	pBar := &ProgressBar{
		inNotebook: notebooks.IsNotebook(),
		start:      time.Now(),
	}
	useANSI := !pBar.inNotebook
	if useANSI {
		pBar.termenv = termenv.NewOutput(os.Stdout)
		pBar.termenv.HideCursor()
	}
	pBar.bar = progressbar.NewOptions(numSteps,
		progressbar.OptionSetDescription(description),
		progressbar.OptionUseANSICodes(useANSI),
		progressbar.OptionEnableColorCodes(useANSI),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("evals"),
		progressbar.OptionSetTheme(ProgressbarStyle),
		progressbar.OptionSetWriter(os.Stdout),
	)
	return pBar
}

// Increment the progress by one evaluation.
func (pBar *ProgressBar) Increment() {
	_ = pBar.bar.Add(1)
}

// Finish completes the progress bar and prints the elapsed time.
func (pBar *ProgressBar) Finish() {
	_ = pBar.bar.Finish()
	if pBar.termenv != nil {
		pBar.termenv.ShowCursor()
	}
	fmt.Printf("\nDone in %s\n", FormatDuration(time.Since(pBar.start)))
}
