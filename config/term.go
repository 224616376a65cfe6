package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

type TerminalIO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

var DefaultTermIO = TerminalIO{
	Stdin:  os.Stdin,
	Stdout: os.Stdout,
	Stderr: os.Stderr,
}

func (t *TerminalIO) Printf(msg string, args ...interface{}) {
	fmt.Fprintf(t.Stdout, msg, args...)
}

// MockTermIO returns a TerminalIO backed by buffers, for tests.
func MockTermIO(stdin string) (TerminalIO, *bytes.Buffer, *bytes.Buffer) {
	outb := &bytes.Buffer{}
	errb := &bytes.Buffer{}
	tio := TerminalIO{
		Stdin:  strings.NewReader(stdin),
		Stdout: outb,
		Stderr: errb,
	}
	return tio, outb, errb
}
