package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"clipper/internal/status"
	"clipper/internal/watch"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 14

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag := "[" + statusKindLabel(kind) + "]"
	if message != "" {
		tag += " " + message
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", tag)
	if colorize {
		return statusKindColor(kind) + line + ansiReset
	}
	return line
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "BUSY"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

func kindForState(state status.State) statusKind {
	switch state {
	case status.StateCompleted:
		return statusOK
	case status.StateProcessing:
		return statusWarn
	case status.StateError:
		return statusError
	default:
		return statusInfo
	}
}

// renderStatus formats the status document as a header and a step table.
func renderStatus(doc status.Status, colorize bool) string {
	var b strings.Builder
	done, total := doc.Progress()
	b.WriteString(renderStatusLine("State", kindForState(doc.State), watch.Humanize(string(doc.State)), colorize) + "\n")
	b.WriteString(renderStatusLine("Progress", statusInfo, fmt.Sprintf("%d/%d steps", done, total), colorize) + "\n")
	if doc.Upload != nil {
		b.WriteString(renderStatusLine("Upload", statusInfo, *doc.Upload, colorize) + "\n")
	}
	if doc.RunID != "" {
		b.WriteString(renderStatusLine("Run", statusInfo, doc.RunID, colorize) + "\n")
	}
	if doc.Summary != nil {
		b.WriteString(renderStatusLine("Summary", statusOK, *doc.Summary, colorize) + "\n")
	}
	if doc.Error != nil {
		b.WriteString(renderStatusLine("Error", statusError, *doc.Error, colorize) + "\n")
	}

	rows := make([][]string, 0, len(doc.Steps))
	for _, step := range doc.Steps {
		rows = append(rows, []string{step.Label, watch.Humanize(string(step.State)), step.Detail})
	}
	b.WriteString(renderTable([]string{"Step", "State", "Detail"}, rows))
	b.WriteString("\n")
	return b.String()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
