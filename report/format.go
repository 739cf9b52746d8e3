// Package report renders analysis results as fixed-layout text. Rendering is a
// pure function of its input: the same result always yields the same bytes.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	bannerWidth    = 120
	delimiterWidth = 116

	// detailIndent starts every detail line under an entry.
	detailIndent = "       "

	// truncatedLength is how much of an over-long text survives truncation.
	truncatedLength = 100

	singleMessageLimit = 200
	chainMessageLimit  = 150
	responseLimit      = 150
)

func banner() string {
	return strings.Repeat("=", bannerWidth)
}

func rule() string {
	return strings.Repeat("-", bannerWidth)
}

func delimiter() string {
	return "  " + strings.Repeat("─", delimiterWidth)
}

// FormatField renders prefix followed by text. Text of limit characters or
// more is cut to its first 100 characters followed by its original length. Every
// continuation line of a multi-line text is indented to the display width of
// prefix so it stays aligned under its label.
func FormatField(prefix, text string, limit int) string {
	body := text
	suffix := ""
	if runes := []rune(text); len(runes) >= limit {
		body = string(runes[:min(truncatedLength, len(runes))])
		suffix = fmt.Sprintf("... [%d chars]", len(runes))
	}

	indent := strings.Repeat(" ", lipgloss.Width(prefix))
	return prefix + strings.Join(strings.Split(body, "\n"), "\n"+indent) + suffix
}

// lines collects report lines; String joins them with newlines.
type lines []string

func (l *lines) add(s ...string) {
	*l = append(*l, s...)
}

func (l *lines) addf(format string, args ...interface{}) {
	*l = append(*l, fmt.Sprintf(format, args...))
}

func (l lines) String() string {
	return strings.Join(l, "\n")
}

func title(name, version string) string {
	if version == "" {
		return name
	}
	return fmt.Sprintf("%s - v%s", name, version)
}
