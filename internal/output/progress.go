package output

import (
	"fmt"
	"sync"
	"time"
)

// Progress represents an active progress indicator
type Progress struct {
	printer   *Printer
	message   string
	startTime time.Time
	done      chan struct{}
	wg        sync.WaitGroup
	once      sync.Once
}

// Spinner characters for animation
var spinnerChars = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// StartProgress shows a spinner until Stop is called. On non-interactive
// output it prints nothing.
func (p *Printer) StartProgress(message string) *Progress {
	progress := &Progress{
		printer:   p,
		message:   message,
		startTime: time.Now(),
		done:      make(chan struct{}),
	}

	if p.animate {
		progress.wg.Add(1)
		go progress.animate()
	}

	return progress
}

// Stop stops the progress indicator and clears the line
func (p *Progress) Stop() {
	p.once.Do(func() {
		close(p.done)
		p.wg.Wait()
		if p.printer.animate {
			p.printer.mu.Lock()
			_, _ = fmt.Fprint(p.printer.out, "\r\033[K")
			p.printer.mu.Unlock()
		}
	})
}

// animate runs the spinner animation in a goroutine
func (p *Progress) animate() {
	defer p.wg.Done()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	spinnerIndex := 0
	p.render(spinnerIndex)

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			spinnerIndex++
			p.render(spinnerIndex)
		}
	}
}

// render displays the current progress state
func (p *Progress) render(spinnerIndex int) {
	spinner := spinnerChars[spinnerIndex%len(spinnerChars)]
	elapsed := formatDuration(time.Since(p.startTime))

	p.printer.mu.Lock()
	defer p.printer.mu.Unlock()
	_, _ = p.printer.cyan.Fprintf(p.printer.out, "\r  %s %s ", spinner, p.message)
	_, _ = p.printer.gray.Fprintf(p.printer.out, "[%s]", elapsed)
	_, _ = fmt.Fprint(p.printer.out, "\033[K")
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.0fs", d.Seconds())
}
