package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Terminal is the shipped default Interface: a plain readline-style prompt
// over stdin/stdout. It highlights the guessed filename and, when one
// already exists, the previously-confirmed fallback, using color only when
// stdout is a real terminal. Prompts serialize via mu so two goroutines
// driving the same Terminal never interleave a dialog.
type Terminal struct {
	in  io.Reader
	out io.Writer

	mu sync.Mutex

	guessed   *color.Color
	confirmed *color.Color
}

// NewTerminal builds a Terminal reading from stdin and writing to stdout.
func NewTerminal() *Terminal {
	return NewTerminalIO(os.Stdin, os.Stdout)
}

// NewTerminalIO builds a Terminal over the given reader/writer, for tests.
func NewTerminalIO(in io.Reader, out io.Writer) *Terminal {
	colorize := false
	if f, ok := out.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	guessed := color.New(color.FgCyan)
	confirmed := color.New(color.FgGreen)
	if !colorize {
		guessed.DisableColor()
		confirmed.DisableColor()
	}
	return &Terminal{in: in, out: out, guessed: guessed, confirmed: confirmed}
}

// Suggest prints current and fallback, then reads one line from in. An
// empty line accepts fallback if non-empty, else current.
func (t *Terminal) Suggest(ctx context.Context, current, fallback string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "guessed filename: %s\n", t.guessed.Sprint(current))
	defaultValue := current
	if strings.TrimSpace(fallback) != "" {
		fmt.Fprintf(t.out, "previously confirmed: %s\n", t.confirmed.Sprint(fallback))
		defaultValue = fallback
	}
	fmt.Fprint(t.out, "accept, edit, or press enter for the default > ")

	scanner := bufio.NewScanner(t.in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("read prompt response: %w", err)
		}
		return "", fmt.Errorf("read prompt response: %w", io.EOF)
	}

	line := strings.TrimSpace(scanner.Text())
	if line == "" {
		return defaultValue, nil
	}
	return line, nil
}
