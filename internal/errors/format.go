package errors

import (
	"fmt"
	"strings"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// colorEnabled controls whether ANSI colors are used.
var colorEnabled = true

// DisableColors disables ANSI color output.
func DisableColors() {
	colorEnabled = false
}

// color wraps text in ANSI color codes if colors are enabled.
func color(code, text string) string {
	if !colorEnabled {
		return text
	}
	return code + text + colorReset
}

// Format renders the error as a multi-line diagnostic for the terminal.
func (e *StrataError) Format() string {
	var sb strings.Builder

	header := e.Message
	if e.Code != "" {
		header = fmt.Sprintf("%s [%s]", e.Message, e.Code)
	}
	sb.WriteString(color(colorRed+colorBold, "error: "+header))
	sb.WriteByte('\n')

	if e.Path != "" {
		sb.WriteString(color(colorCyan, "  --> "+e.Path))
		sb.WriteByte('\n')
	}
	if e.Detail != "" {
		sb.WriteString("  " + e.Detail + "\n")
	}
	if e.Wrapped != nil {
		sb.WriteString(color(colorGray, "  caused by: "+e.Wrapped.Error()))
		sb.WriteByte('\n')
	}
	if e.Suggestion != "" {
		sb.WriteString(color(colorYellow, "  hint: "+e.Suggestion))
		sb.WriteByte('\n')
	}
	if e.DocURL != "" {
		sb.WriteString(color(colorGray, "  see "+e.DocURL))
		sb.WriteByte('\n')
	}

	return sb.String()
}
