package cmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"resin-sdk-go/internal/api"
	"resin-sdk-go/internal/config"
	"resin-sdk-go/internal/session"

	"golang.org/x/term"
)

// App holds application state shared across commands.
type App struct {
	Settings config.Store
	Paths    config.Paths
	Session  *session.Manager
	API      *api.Client
	Logger   *slog.Logger
	In       io.Reader
	Out      io.Writer
	Err      io.Writer
	JSON     bool // output in JSON format

	lines *bufio.Reader // lazily wraps In
}

// SuccessColor returns the string wrapped in green ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) SuccessColor(s string) string {
	if isTerminal(a.Out) {
		return "\033[32m" + s + "\033[0m"
	}
	return s
}

// WarnColor returns the string wrapped in orange ANSI codes if stdout is a terminal,
// otherwise returns the string unchanged.
func (a *App) WarnColor(s string) string {
	if isTerminal(a.Out) {
		return "\033[38;5;214m" + s + "\033[0m"
	}
	return s
}

// Prompt writes prompt to Err and reads one line from In.
func (a *App) Prompt(prompt string) (string, error) {
	fmt.Fprint(a.Err, prompt)
	return a.readLine()
}

// PromptPassword reads a secret. On a terminal the input is not echoed;
// otherwise a plain line is read from In.
func (a *App) PromptPassword(prompt string) (string, error) {
	fmt.Fprint(a.Err, prompt)
	if f, ok := a.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.Err)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	return a.readLine()
}

func (a *App) readLine() (string, error) {
	if a.lines == nil {
		a.lines = bufio.NewReader(a.In)
	}
	line, err := a.lines.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
