package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// readPassword is replaced in tests that need a terminal.
var readPassword = term.ReadPassword

// line prints prompt to stderr and reads one line from stdin.
func (rt *runtime) line(prompt string) (string, error) {
	fmt.Fprint(rt.streams.Err, prompt)
	s, err := rt.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(prompt), ": "), err)
	}
	return strings.TrimSpace(s), nil
}

// password reads a secret without echo when stdin is a terminal, and as a
// plain line otherwise.
func (rt *runtime) password(prompt string) (string, error) {
	f, ok := rt.streams.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return rt.line(prompt)
	}
	fmt.Fprint(rt.streams.Err, prompt)
	pw, err := readPassword(int(f.Fd()))
	fmt.Fprintln(rt.streams.Err)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
