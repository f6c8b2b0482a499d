package smoke

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

type printer struct {
	w io.Writer
}

func (p printer) step(format string, args ...any) {
	fmt.Fprintln(p.w, cyan("→ "+fmt.Sprintf(format, args...)))
}

func (p printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, green("✓ "+fmt.Sprintf(format, args...)))
}

func (p printer) warn(format string, args ...any) {
	fmt.Fprintln(p.w, yellow("⚠ "+fmt.Sprintf(format, args...)))
}

func (p printer) fail(format string, args ...any) {
	fmt.Fprintln(p.w, red("✗ "+fmt.Sprintf(format, args...)))
}

func (p printer) status(label, format string, args ...any) {
	fmt.Fprintf(p.w, "  %s %s\n", bold(label+":"), fmt.Sprintf(format, args...))
}
