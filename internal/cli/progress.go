package cli

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// Progress shows a spinner on stderr while a cluster call is in flight.
// It is a no-op when quiet or when stderr is not a terminal.
type Progress struct {
	s *spinner.Spinner
}

// StartProgress starts a spinner with the given message.
func StartProgress(quiet bool, message string) *Progress {
	if quiet || !isTerminal(os.Stderr) {
		return &Progress{}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message
	s.Start()
	return &Progress{s: s}
}

// Stop stops the spinner. A non-nil err leaves a failure line behind.
func (p *Progress) Stop(err error) {
	if p == nil || p.s == nil {
		return
	}
	if err != nil {
		p.s.FinalMSG = text.FgRed.Sprint("❌ Request failed") + "\n"
	}
	p.s.Stop()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
