package app

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"mediasort/internal/sorter"
)

// ConsoleProgress renders run progress. On a terminal the file counter is
// redrawn in place; otherwise every file gets its own line.
type ConsoleProgress struct {
	w       io.Writer
	inPlace bool
	midLine bool
}

// NewConsoleProgress creates a ConsoleProgress writing to f, drawing in place
// when f is a terminal.
func NewConsoleProgress(f *os.File) *ConsoleProgress {
	return newConsoleProgress(f, term.IsTerminal(int(f.Fd())))
}

func newConsoleProgress(w io.Writer, inPlace bool) *ConsoleProgress {
	return &ConsoleProgress{w: w, inPlace: inPlace}
}

func (p *ConsoleProgress) FolderCreated(path string) {
	p.endLine()
	fmt.Fprintf(p.w, "Created folder %s\n", path)
}

func (p *ConsoleProgress) FileDone(index, total int, result sorter.CopyResult) {
	if result.Err != nil {
		p.endLine()
		fmt.Fprintf(p.w, "Failed %s: %v\n", result.Record.Source.String(), result.Err)
	}

	if !p.inPlace {
		fmt.Fprintf(p.w, "Copying file %d/%d\n", index, total)
		return
	}

	fmt.Fprintf(p.w, "\rCopying file %d/%d", index, total)
	p.midLine = true
	if index == total {
		p.endLine()
	}
}

// endLine terminates an in-place counter line so the next output starts clean.
func (p *ConsoleProgress) endLine() {
	if p.midLine {
		fmt.Fprintln(p.w)
		p.midLine = false
	}
}

var _ sorter.Progress = (*ConsoleProgress)(nil)
