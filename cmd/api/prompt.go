package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// stdinPrompt asks the operator for a storage directory at startup.
type stdinPrompt struct {
	in  *bufio.Reader
	out io.Writer
}

func newStdinPrompt(in io.Reader, out io.Writer) *stdinPrompt {
	return &stdinPrompt{in: bufio.NewReader(in), out: out}
}

// StoragePath prints the question and reads one line. End of input without a
// line yields "" so the caller falls back to the default directory.
func (p *stdinPrompt) StoragePath(_ context.Context) (string, error) {
	if _, err := fmt.Fprint(p.out, "Absolute path for storing CSV/JSON logs (empty for default): "); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read storage path: %w", err)
	}
	return strings.TrimSpace(line), nil
}
