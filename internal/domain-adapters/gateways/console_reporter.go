package gateways

import (
	"fmt"
	"io"
	"strings"

	"github.com/ochairo/pkgverify/internal/domain/entities"
)

const (
	colorGreen = "\033[92m"
	colorRed   = "\033[91m"
	colorReset = "\033[0m"
)

var separator = strings.Repeat("-", 79)

// ConsoleReporter prints one result line per verification, bracketed by separators
type ConsoleReporter struct {
	out   io.Writer
	color bool
}

// NewConsoleReporter creates a reporter writing to out
func NewConsoleReporter(out io.Writer, color bool) *ConsoleReporter {
	return &ConsoleReporter{out: out, color: color}
}

// Begin prints the opening separator
func (r *ConsoleReporter) Begin(_ entities.PackageRef) {
	fmt.Fprintln(r.out, separator)
}

// Report prints the SUCCESS or ERROR line for an outcome
func (r *ConsoleReporter) Report(outcome entities.Outcome) {
	name := outcome.Package.DisplayName()
	if outcome.OK() {
		fmt.Fprintf(r.out, "%s %s verification was successful\n", r.label("SUCCESS:", colorGreen), name)
		return
	}
	fmt.Fprintf(r.out, "%s %s verification failed %s\n", r.label("ERROR  :", colorRed), name, outcome.Reason)
}

// End prints the closing separator
func (r *ConsoleReporter) End(_ entities.PackageRef) {
	fmt.Fprintln(r.out, separator)
}

func (r *ConsoleReporter) label(text, color string) string {
	if !r.color {
		return text
	}
	return color + text + colorReset
}
