package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// LineReader yields one line of user input at a time. It returns io.EOF
// when input ends.
type LineReader interface {
	ReadLine() (string, error)
}

// Console is the user's input and output.
type Console struct {
	Reader LineReader
	Out    io.Writer

	restore func() error
}

// NewConsole reads lines from in and writes to out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{Reader: &scannerReader{s: bufio.NewScanner(in)}, Out: out}
}

// OpenConsole uses line editing when in is a terminal, and plain line
// reading otherwise. Close restores the terminal.
func OpenConsole(in *os.File, out io.Writer, prompt string) (*Console, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return NewConsole(in, out), nil
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw terminal: %w", err)
	}
	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, prompt)
	if w, h, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(w, h)
	}
	return &Console{
		Reader:  t,
		Out:     t,
		restore: func() error { return term.Restore(fd, old) },
	}, nil
}

// Close restores the terminal state.
func (c *Console) Close() error {
	if c.restore == nil {
		return nil
	}
	return c.restore()
}

type scannerReader struct {
	s *bufio.Scanner
}

func (r *scannerReader) ReadLine() (string, error) {
	if r.s.Scan() {
		return r.s.Text(), nil
	}
	if err := r.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Interact executes console lines until input ends, ctx is done or the user
// quits. Command errors are printed and do not stop the session.
func (app *Application) Interact(ctx context.Context, c *Console) error {
	fmt.Fprintln(c.Out, "Введите help для списка команд.")
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line, err := c.Reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		err = app.Exec(ctx, line)
		switch {
		case err == nil:
		case errors.Is(err, ErrQuit):
			return nil
		case errors.Is(err, ErrLoopClosed), errors.Is(err, context.Canceled):
			return nil
		default:
			fmt.Fprintf(c.Out, "error: %v\n", err)
		}
	}
}
