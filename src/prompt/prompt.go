// Package prompt provides the small interactive pieces used by the download
// tooling: a yes/no confirmation and credential capture with masked password
// entry. Readers and writers are injected so the logic stays testable.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Reader wraps an input stream with a single buffer shared by every prompt,
// so a sequence of prompts on the same stream never loses type-ahead input
// to a previous call's read-ahead.
type Reader struct {
	src io.Reader
	br  *bufio.Reader
}

// NewReader returns a Reader over r. Create one per stream and reuse it for
// the whole prompt sequence.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: r, br: bufio.NewReader(r)}
}

// Confirm asks question and reads one line of input. Only the first
// character of the trimmed, lower-cased answer is inspected: 'y' yields true,
// 'n' yields false. Empty input yields the configured default. Any other
// non-empty answer yields false regardless of defaultNo.
func Confirm(in *Reader, w io.Writer, question string, defaultNo bool) bool {
	choices := " [y/N]: "
	if !defaultNo {
		choices = " [Y/n]: "
	}
	fmt.Fprint(w, question+choices)
	line, _ := in.br.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" {
		return !defaultNo
	}
	switch answer[0] {
	case 'y':
		return true
	case 'n':
		return false
	}
	return false
}

// Credentials holds a username/password pair for exactly one request.
type Credentials struct {
	Username string
	Password string
}

// Zero clears both fields. Callers drop the credentials after the request
// they were collected for has completed.
func (c *Credentials) Zero() {
	c.Username = ""
	c.Password = ""
}

// ReadCredentials prompts for a username and a password. When the underlying
// stream is a terminal the password is read without echo; otherwise (pipes,
// tests) it falls back to a plain line read.
func ReadCredentials(in *Reader, w io.Writer) (Credentials, error) {
	fmt.Fprintln(w, "Enter Splunk credentials for downloading new data")
	fmt.Fprint(w, "Splunk Username: ")
	user, err := in.br.ReadString('\n')
	if err != nil && user == "" {
		return Credentials{}, fmt.Errorf("read username: %w", err)
	}
	fmt.Fprint(w, "Splunk Password: ")
	pass, err := readPassword(in)
	fmt.Fprintln(w)
	if err != nil {
		return Credentials{}, fmt.Errorf("read password: %w", err)
	}
	return Credentials{Username: strings.TrimSpace(user), Password: pass}, nil
}

func readPassword(in *Reader) (string, error) {
	if f, ok := in.src.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := in.br.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
