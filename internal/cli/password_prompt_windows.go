//go:build windows

package cli

import (
	"errors"
	"os"

	"golang.org/x/sys/windows"
)

func readPasswordNoEcho(stdin *os.File) ([]byte, error) {
	if stdin == nil {
		return nil, errors.New("stdin unavailable")
	}

	handle := windows.Handle(stdin.Fd())
	var restore uint32
	if err := windows.GetConsoleMode(handle, &restore); err != nil {
		return nil, errors.New("stdin is not a console")
	}
	if err := windows.SetConsoleMode(handle, restore&^windows.ENABLE_ECHO_INPUT); err != nil {
		return nil, err
	}
	defer func() {
		_ = windows.SetConsoleMode(handle, restore)
	}()

	return readPromptLine(stdin)
}
