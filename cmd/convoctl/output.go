package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Mk-yl/convocation-portal/internal/models"
)

// printer renders workflow notifications as status lines.
type printer struct {
	out      io.Writer
	colorize bool
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out, colorize: shouldColorize(out)}
}

// Notify implements workflow.Notifier.
func (p *printer) Notify(n models.Notification) {
	label := fmt.Sprintf("[%s]", levelLabel(n.Level))
	if p.colorize {
		label = levelColor(n.Level).Sprint(label)
	}
	fmt.Fprintf(p.out, "%s %s\n", label, n.Message)
}

func levelLabel(level models.NotificationLevel) string {
	switch level {
	case models.LevelSuccess:
		return "OK"
	case models.LevelWarning:
		return "WARN"
	case models.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func levelColor(level models.NotificationLevel) *color.Color {
	switch level {
	case models.LevelSuccess:
		return color.New(color.FgGreen)
	case models.LevelWarning:
		return color.New(color.FgYellow)
	case models.LevelError:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgBlue)
	}
}

func printSection(w io.Writer, title string) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	if shouldColorize(w) {
		line = color.New(color.FgCyan).Sprint(line)
	}
	fmt.Fprintln(w, line)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
