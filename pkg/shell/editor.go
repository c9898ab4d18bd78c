package shell

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// A minimal line editor. The terminal does the line editing.
type minEditor struct {
	in  *bufio.Reader
	out io.Writer
	eof bool
}

func newMinEditor(in, out *os.File) *minEditor {
	return &minEditor{in: bufio.NewReader(in), out: out}
}

// ReadLine shows the prompt and reads one line, without the line ending. A
// last line that is not terminated is returned without error; the next call
// then returns io.EOF.
func (ed *minEditor) ReadLine(prompt string) (string, error) {
	if ed.eof {
		return "", io.EOF
	}
	io.WriteString(ed.out, prompt)
	line, err := ed.in.ReadString('\n')
	if err == io.EOF && line != "" {
		ed.eof = true
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}
