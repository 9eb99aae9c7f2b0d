// Package output prints user-facing summaries: colored status lines,
// tables and JSON documents. Workflow events go through the logger instead.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// Check statuses shared by doctor and check.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

var out io.Writer = os.Stdout

// SetOutput redirects all output. A nil writer restores os.Stdout.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// JSON outputs data as indented JSON
func JSON(data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Table outputs rows under headers with left-aligned columns.
// Cells beyond the header count are dropped.
func Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	sep := make([]string, len(headers))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}

	writeRow(widths, headers)
	writeRow(widths, sep)
	for _, row := range rows {
		writeRow(widths, row)
	}
}

func writeRow(widths []int, cells []string) {
	line := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		line[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	_, _ = fmt.Fprintln(out, strings.TrimRight(strings.Join(line, "  "), " "))
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	_, _ = successColor.Fprintf(out, "✓ "+format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	_, _ = errorColor.Fprintf(out, "✗ "+format+"\n", args...)
}

// Warn prints a warning message
func Warn(format string, args ...interface{}) {
	_, _ = warnColor.Fprintf(out, "! "+format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	_, _ = infoColor.Fprintf(out, "→ "+format+"\n", args...)
}

// Print prints a plain message
func Print(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(out, format+"\n", args...)
}

// Status prints a message with the symbol and color of status.
// Unknown statuses print plain.
func Status(status, format string, args ...interface{}) {
	switch status {
	case StatusSuccess:
		Success(format, args...)
	case StatusWarning:
		Warn(format, args...)
	case StatusError:
		Error(format, args...)
	default:
		Print(format, args...)
	}
}

// Days formats d as whole days, rounding toward zero ("12 days", "-3 days").
func Days(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	if days == 1 || days == -1 {
		return fmt.Sprintf("%d day", days)
	}
	return fmt.Sprintf("%d days", days)
}

// Date formats t in UTC for tables.
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}
