package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// In is read by the line prompts.
var In io.Reader = os.Stdin

var reader *bufio.Reader

func lineReader() *bufio.Reader {
	if reader == nil {
		reader = bufio.NewReader(In)
	}
	return reader
}

// SetInput redirects the line prompts, for tests.
func SetInput(r io.Reader) {
	In = r
	reader = nil
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	fmt.Print(label)
	input, err := lineReader().ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PromptPassword prompts user for a password (hidden input)
func PromptPassword(label string) (string, error) {
	fmt.Print(label)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return PromptString("")
	}
	bytepw, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return string(bytepw), nil
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	input, err := PromptString(label + " (y/n) ")
	if err != nil {
		return false, err
	}
	response := strings.ToLower(input)
	return response == "y" || response == "yes", nil
}
