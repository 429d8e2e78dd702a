package verify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
)

// Heading is printed at the top of every report.
const Heading = "Hospital Management System - Comprehensive Verification"

// Output formats accepted by Write.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Formats lists the output formats in help order.
var Formats = []string{FormatText, FormatJSON, FormatMarkdown, FormatHTML}

var rule = strings.Repeat("=", 60)

// Write renders s to w in the given format.
func Write(w io.Writer, s Summary, format string) error {
	switch format {
	case "", FormatText:
		return WriteText(w, s)
	case FormatJSON:
		return WriteJSON(w, s)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(s))
		return err
	case FormatHTML:
		return WriteHTML(w, s)
	default:
		return fmt.Errorf("unknown output format %q (expected one of %s)", format, strings.Join(Formats, ", "))
	}
}

// TextPrinter prints results as they arrive, in the classic console layout.
type TextPrinter struct {
	w      io.Writer
	styles map[Level]lipgloss.Style
	bold   lipgloss.Style
}

// NewTextPrinter returns a printer for w. Colors are only emitted when w is
// a terminal.
func NewTextPrinter(w io.Writer) *TextPrinter {
	r := lipgloss.NewRenderer(w)
	return &TextPrinter{
		w: w,
		styles: map[Level]lipgloss.Style{
			LevelOK:      r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
			LevelWarning: r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
			LevelError:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
			LevelSkip:    r.NewStyle().Foreground(lipgloss.Color("8")),
		},
		bold: r.NewStyle().Bold(true),
	}
}

// Header prints the report banner.
func (p *TextPrinter) Header() {
	fmt.Fprintln(p.w, rule)
	fmt.Fprintln(p.w, p.bold.Render(Heading))
	fmt.Fprintln(p.w, rule)
}

// Result prints one check result. index is zero based.
func (p *TextPrinter) Result(index int, r Result) {
	if index > 0 {
		fmt.Fprintln(p.w)
	}
	fmt.Fprintf(p.w, "%d. %s...\n", index+1, r.Title)
	for _, line := range r.Lines {
		if line.Level == LevelInfo {
			fmt.Fprintf(p.w, "   %s\n", line.Text)
			continue
		}
		fmt.Fprintf(p.w, "   %s %s\n", p.tag(line.Level), line.Text)
	}
}

// Summary prints the verdict and the next steps.
func (p *TextPrinter) Summary(s Summary) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, rule)
	fmt.Fprintln(p.w, p.bold.Render("VERIFICATION SUMMARY"))
	fmt.Fprintln(p.w, rule)
	fmt.Fprintf(p.w, "Passed: %d/%d checks\n", s.Passed, s.Total)

	fmt.Fprintln(p.w)
	for i, msg := range s.Message() {
		if i == 0 {
			msg = p.verdictStyle(s.Verdict).Render(msg)
		}
		fmt.Fprintln(p.w, msg)
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "Next steps:")
	for i, step := range NextSteps {
		fmt.Fprintf(p.w, "%d. %s\n", i+1, step)
	}
}

func (p *TextPrinter) tag(level Level) string {
	return p.styles[level].Render(tagFor(level))
}

func (p *TextPrinter) verdictStyle(v Verdict) lipgloss.Style {
	switch v {
	case VerdictSuccess:
		return p.styles[LevelOK]
	case VerdictPartial:
		return p.styles[LevelWarning]
	default:
		return p.styles[LevelError]
	}
}

func tagFor(level Level) string {
	switch level {
	case LevelOK:
		return "[OK]"
	case LevelWarning:
		return "[WARNING]"
	case LevelError:
		return "[ERROR]"
	case LevelSkip:
		return "[SKIP]"
	default:
		return ""
	}
}

// WriteText renders the full console report.
func WriteText(w io.Writer, s Summary) error {
	p := NewTextPrinter(w)
	p.Header()
	for i, r := range s.Results {
		p.Result(i, r)
	}
	p.Summary(s)
	return nil
}

type jsonResult struct {
	Name       string           `json:"name"`
	Title      string           `json:"title"`
	Outcome    Outcome          `json:"outcome"`
	Passed     bool             `json:"passed"`
	Lines      []Line           `json:"lines,omitempty"`
	Counts     map[string]int64 `json:"counts,omitempty"`
	Error      string           `json:"error,omitempty"`
	DurationMs int64            `json:"duration_ms"`
}

type jsonSummary struct {
	Results   []jsonResult `json:"results"`
	Passed    int          `json:"passed"`
	Total     int          `json:"total"`
	Threshold float64      `json:"threshold"`
	Verdict   Verdict      `json:"verdict"`
	Message   string       `json:"message"`
}

// WriteJSON renders the summary as indented JSON.
func WriteJSON(w io.Writer, s Summary) error {
	out := jsonSummary{
		Results:   make([]jsonResult, 0, len(s.Results)),
		Passed:    s.Passed,
		Total:     s.Total,
		Threshold: s.Threshold,
		Verdict:   s.Verdict,
		Message:   s.Message()[0],
	}
	for _, r := range s.Results {
		jr := jsonResult{
			Name:       r.Name,
			Title:      r.Title,
			Outcome:    r.Outcome,
			Passed:     r.Passed(),
			Lines:      r.Lines,
			Counts:     r.Counts,
			DurationMs: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		out.Results = append(out.Results, jr)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// Markdown renders the summary as a markdown document.
func Markdown(s Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", Heading)

	for i, r := range s.Results {
		fmt.Fprintf(&sb, "## %d. %s (%s)\n\n", i+1, r.Title, r.Outcome)
		for _, line := range r.Lines {
			if tag := tagFor(line.Level); tag != "" {
				fmt.Fprintf(&sb, "- `%s` %s\n", tag, line.Text)
			} else {
				fmt.Fprintf(&sb, "- %s\n", line.Text)
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "Passed: %d/%d checks\n\n", s.Passed, s.Total)
	fmt.Fprintf(&sb, "**%s**\n\n", strings.Join(s.Message(), " "))
	sb.WriteString("### Next steps\n\n")
	for i, step := range NextSteps {
		fmt.Fprintf(&sb, "%d. `%s`\n", i+1, step)
	}
	return sb.String()
}

// WriteHTML renders the markdown report to a standalone HTML page.
func WriteHTML(w io.Writer, s Summary) error {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(s)), &body); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}

	_, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n", Heading, body.String())
	return err
}
