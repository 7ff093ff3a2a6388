package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const bannerWidth = 60

// Printer handles colored output
type Printer struct {
	out      io.Writer
	err      io.Writer
	useColor bool
	animate  bool

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	blue   *color.Color
	gray   *color.Color
	bold   *color.Color

	mu sync.Mutex // serialises writes with the spinner goroutine
}

// NewPrinter creates a new printer with color support
func NewPrinter() *Printer {
	p := newPrinter(os.Stdout, os.Stderr, isTerminal())
	p.animate = p.useColor
	return p
}

// NewPrinterWithWriters creates a printer with custom writers (for testing)
func NewPrinterWithWriters(out, err io.Writer, useColor bool) *Printer {
	return newPrinter(out, err, useColor)
}

// SetAnimate turns the progress spinner on or off
func (p *Printer) SetAnimate(enabled bool) {
	p.animate = enabled
}

func newPrinter(out, err io.Writer, useColor bool) *Printer {
	p := &Printer{
		out:      out,
		err:      err,
		useColor: useColor,
		green:    color.New(color.FgGreen, color.Bold),
		red:      color.New(color.FgRed, color.Bold),
		yellow:   color.New(color.FgYellow, color.Bold),
		cyan:     color.New(color.FgCyan, color.Bold),
		blue:     color.New(color.FgBlue, color.Bold),
		gray:     color.New(color.FgHiBlack),
		bold:     color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.green, p.red, p.yellow, p.cyan, p.blue, p.gray, p.bold} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) line(w io.Writer, c *color.Color, prefix, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = c.Fprintf(w, "%s%s", prefix, message)
	_, _ = fmt.Fprintln(w)
}

// Success prints a success message in green
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(p.out, p.green, "  ✅ ", format, args...)
}

// Error prints an error message in red to the error writer
func (p *Printer) Error(format string, args ...interface{}) {
	p.line(p.err, p.red, "✗ ", format, args...)
}

// Failure prints a failed indicator in red
func (p *Printer) Failure(format string, args ...interface{}) {
	p.line(p.out, p.red, "  ❌ ", format, args...)
}

// Warning prints a warning message in yellow
func (p *Printer) Warning(format string, args ...interface{}) {
	p.line(p.out, p.yellow, "  ⚠️  ", format, args...)
}

// Skip prints a skipped-step message in yellow
func (p *Printer) Skip(format string, args ...interface{}) {
	p.line(p.out, p.yellow, "  ⏭️  ", format, args...)
}

// Info prints an info message in cyan
func (p *Printer) Info(format string, args ...interface{}) {
	p.line(p.out, p.cyan, "", format, args...)
}

// Step prints a step message in blue
func (p *Printer) Step(format string, args ...interface{}) {
	p.line(p.out, p.blue, "▶ ", format, args...)
}

// Detail prints a detail message in gray, indented under the previous line
func (p *Printer) Detail(format string, args ...interface{}) {
	p.line(p.out, p.gray, "     ", format, args...)
}

// Print prints a plain message without color
func (p *Printer) Print(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Println prints a plain message with newline
func (p *Printer) Println(args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out, args...)
}

// Banner prints a framed title
func (p *Printer) Banner(title string) {
	rule := strings.Repeat("=", bannerWidth)
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, "\n%s\n", rule)
	_, _ = p.bold.Fprintf(p.out, "  %s", title)
	_, _ = fmt.Fprintf(p.out, "\n%s\n\n", rule)
}

// StepHeader prints the banner for workflow step n
func (p *Printer) StepHeader(n int, title string) {
	p.Banner(fmt.Sprintf("Step %d: %s", n, title))
}

// ServiceStatus prints one health-check row
func (p *Printer) ServiceStatus(ok bool, name, url string) {
	indicator, c := "❌", p.red
	if ok {
		indicator, c = "✅", p.green
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = c.Fprintf(p.out, "  %s", indicator)
	_, _ = fmt.Fprintf(p.out, " %-15s → %s\n", name, url)
}

// isTerminal checks if stdout is a terminal
func isTerminal() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
