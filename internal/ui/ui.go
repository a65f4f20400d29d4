package ui

import (
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	DebugColor   = color.New(color.Faint)
)

var (
	out     io.Writer = os.Stderr
	verbose bool
)

// SetOutput redirects all status output; nil restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	out = w
}

// SetVerbose enables Debug output.
func SetVerbose(on bool) {
	verbose = on
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(out, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(out, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(out, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(out, format+"\n", a...)
}

func Debug(format string, a ...interface{}) {
	if !verbose {
		return
	}
	DebugColor.Fprintf(out, "debug: "+format+"\n", a...)
}

// Terminal reports command outcomes on stderr.
type Terminal struct{}

func (Terminal) Info(msg string) {
	Success("%s", msg)
}

func (Terminal) Error(msg string) {
	Error("%s", msg)
}
