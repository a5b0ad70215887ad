package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var errEmptyPassword = errors.New("password must not be empty")

// readPromptLine reads one line and strips the line ending. The caller is
// responsible for turning terminal echo off first.
func readPromptLine(input io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, errEmptyPassword
	}
	return []byte(line), nil
}
