package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

var errNoTerminal = errors.New("stdin unavailable")

// secretPrompt reads successive lines from a terminal with echo disabled.
// One buffered reader serves every prompt so that piped input is not lost
// between reads.
type secretPrompt struct {
	file   *os.File
	reader *bufio.Reader
}

func newSecretPrompt(file *os.File) *secretPrompt {
	prompt := &secretPrompt{file: file}
	if file != nil {
		prompt.reader = bufio.NewReader(file)
	}
	return prompt
}

func (prompt *secretPrompt) read() ([]byte, error) {
	if prompt.file == nil {
		return nil, errNoTerminal
	}

	var line string
	err := withEchoDisabled(prompt.file, func() error {
		var readErr error
		line, readErr = prompt.reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return readErr
		}
		if readErr != nil && line == "" {
			return io.ErrUnexpectedEOF
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
