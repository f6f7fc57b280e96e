package main

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/lpms-app/lpms/internal/config"
	"github.com/lpms-app/lpms/internal/validation"
)

// palette holds the ANSI styles for a theme
type palette struct {
	ok, bad, reset string
}

func paletteFor(theme string) palette {
	if theme == config.ThemeLight {
		return palette{ok: "\033[32m", bad: "\033[31m", reset: "\033[0m"}
	}
	return palette{ok: "\033[92m", bad: "\033[91m", reset: "\033[0m"}
}

// consoleNotifier shows submit outcomes as toast-style lines
type consoleNotifier struct {
	out io.Writer
	p   palette
}

func newNotifier(out io.Writer) *consoleNotifier {
	theme := config.ThemeDark
	if cfg != nil {
		theme = cfg.Theme
	}
	return &consoleNotifier{out: out, p: paletteFor(theme)}
}

func (n *consoleNotifier) Success(msg string) {
	fmt.Fprintf(n.out, "%s✓ %s%s\n", n.p.ok, msg, n.p.reset)
}

func (n *consoleNotifier) Error(msg string) {
	fmt.Fprintf(n.out, "%s✗ %s%s\n", n.p.bad, msg, n.p.reset)
}

// printFieldErrors lists form errors one field per line, sorted by field
func printFieldErrors(w io.Writer, errs validation.Errors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(w, "  %s: %s\n", f, errs[f])
	}
}

// refreshFunc adapts a function to editsession.Refresher
type refreshFunc func(ctx context.Context) error

func (f refreshFunc) Refresh(ctx context.Context) error { return f(ctx) }
