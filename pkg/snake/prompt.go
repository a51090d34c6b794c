// Package snake asks for command input interactively when a terminal is
// attached.
package snake

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
)

// Choice is one selectable option.
type Choice struct {
	Name  string
	Short string
}

// IO is where prompts read and write. Zero values use the process stdio.
type IO struct {
	In  io.Reader
	Out io.Writer
}

func (p IO) stdin() io.ReadCloser {
	if p.In == nil {
		return os.Stdin
	}
	return io.NopCloser(p.In)
}

func (p IO) stdout() io.WriteCloser {
	if p.Out == nil {
		return os.Stdout
	}
	return nopWriteCloser{p.Out}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Interactive reports whether stdin and stdout are both terminals.
func Interactive() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

var selectTemplates = &promptui.SelectTemplates{
	Label:    "{{ . }}?",
	Active:   "➜  {{ .Name | bold }} {{ .Short | green }}",
	Inactive: "   {{ .Name }} {{ .Short | cyan }}",
	Selected: "{{ .Name | bold }}",
}

var promptTemplates = &promptui.PromptTemplates{
	Prompt:  "{{ . }} : ",
	Valid:   "{{ . | green }} : ",
	Invalid: "{{ . | red }} : ",
	Success: "{{ . | bold }} : ",
}

// Select asks for one of choices and returns its name.
func (p IO) Select(label string, choices []Choice) (string, error) {
	if len(choices) == 0 {
		return "", errors.New("snake: nothing to choose from")
	}
	searcher := func(input string, index int) bool {
		name := strings.ReplaceAll(strings.ToLower(choices[index].Name), " ", "")
		input = strings.ReplaceAll(strings.ToLower(input), " ", "")
		return strings.Contains(name, input)
	}

	prompt := promptui.Select{
		HideHelp:  true,
		Label:     label,
		Items:     choices,
		Templates: selectTemplates,
		Size:      10,
		Searcher:  searcher,
		Stdin:     p.stdin(),
		Stdout:    p.stdout(),
	}
	i, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("snake: select %s: %w", label, err)
	}
	return choices[i].Name, nil
}

// Text asks for a line of text, offering def as the starting value.
func (p IO) Text(label, def string) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Templates: promptTemplates,
		Stdin:     p.stdin(),
		Stdout:    p.stdout(),
	}
	result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("snake: %s: %w", label, err)
	}
	return result, nil
}

// Confirm asks a yes/no question. Anything but a yes is a no.
func (p IO) Confirm(label string) (bool, error) {
	validate := func(input string) error {
		if input == "" {
			return nil
		}
		_, err := ParseBool(input)
		return err
	}
	prompt := promptui.Prompt{
		Label:     label + " [y/N]",
		Templates: promptTemplates,
		Validate:  validate,
		Stdin:     p.stdin(),
		Stdout:    p.stdout(),
	}
	result, err := prompt.Run()
	if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("snake: %s: %w", label, err)
	}
	yes, _ := ParseBool(result)
	return yes, nil
}
