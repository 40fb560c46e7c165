package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"golang.org/x/term"
)

func infof(w io.Writer, format string, args ...any) {
	report(w, pterm.Info, format, args...)
}

// warnf reports a recoverable problem on w.
func warnf(w io.Writer, format string, args ...any) {
	report(w, pterm.Warning, format, args...)
}

// errorf reports a failure on w.
func errorf(w io.Writer, format string, args ...any) {
	report(w, pterm.Error, format, args...)
}

// report uses the styled pterm prefix on a terminal and a plain
// "WARNING: msg" line everywhere else, so redirected logs carry no escapes.
func report(w io.Writer, printer pterm.PrefixPrinter, format string, args ...any) {
	if isTerminal(w) {
		printer.WithWriter(w).Printfln(format, args...)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", printer.Prefix.Text, fmt.Sprintf(format, args...))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
