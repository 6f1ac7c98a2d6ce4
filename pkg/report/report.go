// Package report renders validation results and model specs for people and
// machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ormasoftchile/argspec/pkg/validate"
)

// Format selects the report encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat accepts text, json, markdown and md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown report format %q (want text, json or markdown)", s)
}

// Report is the outcome of validating one args file.
type Report struct {
	Model    string             `json:"model,omitempty"`
	Args     string             `json:"args,omitempty"`
	Valid    bool               `json:"valid"`
	Warnings []validate.Warning `json:"warnings"`
}

// New builds a report for warnings.
func New(model, args string, warnings []validate.Warning) Report {
	if warnings == nil {
		warnings = []validate.Warning{}
	}
	return Report{Model: model, Args: args, Valid: len(warnings) == 0, Warnings: warnings}
}

// Options tunes Write.
type Options struct {
	// Styled enables colour in text reports and glamour rendering of
	// markdown reports.
	Styled bool
	// Width is the wrap width for styled markdown. Zero disables wrapping.
	Width int
}

var (
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("51"))
)

// Write renders r to w.
func Write(w io.Writer, format Format, r Report, opts Options) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		md := Markdown(r)
		if opts.Styled {
			out, err := RenderMarkdown(md, opts.Width)
			if err != nil {
				return err
			}
			md = out
		}
		_, err := io.WriteString(w, md)
		return err
	case FormatText, "":
		_, err := io.WriteString(w, Text(r, opts.Styled))
		return err
	}
	return fmt.Errorf("unknown report format %q", format)
}

// Text renders r as aligned plain text, one line per warning.
func Text(r Report, styled bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	if r.Model != "" {
		b.WriteString(style(headerStyle, r.Model))
		if r.Args != "" {
			b.WriteString(" (" + r.Args + ")")
		}
		b.WriteString("\n")
	}
	if r.Valid {
		b.WriteString(style(okStyle, "✓ all arguments are valid"))
		b.WriteString("\n")
		return b.String()
	}

	noun := "warnings"
	if len(r.Warnings) == 1 {
		noun = "warning"
	}
	b.WriteString(style(failStyle, fmt.Sprintf("✗ %d %s", len(r.Warnings), noun)))
	b.WriteString("\n")

	keys := make([]string, len(r.Warnings))
	width := 0
	for i, warn := range r.Warnings {
		keys[i] = strings.Join(warn.Keys, ", ")
		width = max(width, runewidth.StringWidth(keys[i]))
	}
	for i, warn := range r.Warnings {
		b.WriteString("  ")
		b.WriteString(style(keyStyle, runewidth.FillRight(keys[i], width)))
		b.WriteString("  ")
		b.WriteString(warn.Message)
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders r as a Markdown document with one table row per warning.
func Markdown(r Report) string {
	var b strings.Builder
	title := "Validation report"
	if r.Model != "" {
		title += ": " + r.Model
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if r.Args != "" {
		fmt.Fprintf(&b, "Args: `%s`\n\n", r.Args)
	}
	if r.Valid {
		b.WriteString("All arguments are valid.\n")
		return b.String()
	}
	b.WriteString("| Fields | Problem |\n|---|---|\n")
	for _, warn := range r.Warnings {
		fmt.Fprintf(&b, "| %s | %s |\n", cell(strings.Join(warn.Keys, ", ")), cell(warn.Message))
	}
	return b.String()
}

// RenderMarkdown renders md for a terminal.
func RenderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("init markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
