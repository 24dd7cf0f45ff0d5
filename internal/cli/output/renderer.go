// Package output renders command results for terminals, pipes and scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/spektr-org/marksheet/engine"
	"github.com/spektr-org/marksheet/export"
)

// Mode selects how results are written.
type Mode string

// Output modes. ModeAuto means text on a terminal and markdown otherwise.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeCSV      Mode = "csv"
	ModeJSON     Mode = "json"
	ModeYAML     Mode = "yaml"
)

// Renderer writes results to stdout and notes to stderr.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer creates a renderer. An empty mode means ModeAuto.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{out: out, errOut: errOut, mode: mode, styles: DefaultStyles()}
}

// EffectiveMode resolves ModeAuto against the output writer.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if isTerminal(r.out) {
		return ModeText
	}
	return ModeMarkdown
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Format maps the effective mode to an export format.
func (r *Renderer) Format() export.Format {
	switch r.EffectiveMode() {
	case ModeMarkdown:
		return export.FormatMarkdown
	case ModeCSV:
		return export.FormatCSV
	case ModeJSON:
		return export.FormatJSON
	case ModeYAML:
		return export.FormatYAML
	}
	return export.FormatText
}

// Structured reports whether output is a machine-readable document.
func (r *Renderer) Structured() bool {
	switch r.EffectiveMode() {
	case ModeCSV, ModeJSON, ModeYAML:
		return true
	}
	return false
}

// Writer returns the result writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// Styles returns the text-mode styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Println writes a line to the result writer.
func (r *Renderer) Println(a ...interface{}) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the result writer.
func (r *Renderer) Printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a heading suited to the mode; structured modes get none.
func (r *Renderer) Header(level int, text string) {
	switch r.EffectiveMode() {
	case ModeText:
		style := r.styles.Title
		if level <= 1 {
			style = r.styles.Header
		}
		r.Println(style.Render(text))
	case ModeMarkdown:
		r.Println(FormatHeader(level, text))
	}
}

// KeyValue writes one labelled fact.
func (r *Renderer) KeyValue(key, value string) {
	switch r.EffectiveMode() {
	case ModeText:
		r.Printf("%s %s\n", r.styles.Bold.Render(key+":"), value)
	case ModeMarkdown:
		r.Println(FormatKeyValue(key, value))
	}
}

// Success writes a confirmation to stderr so stdout stays parseable.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Success.Render(msg))
}

// Muted writes a low-emphasis note to stderr.
func (r *Renderer) Muted(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Muted.Render(msg))
}

// Table writes one table in the effective mode.
func (r *Renderer) Table(t *engine.Table) error {
	return export.Write(r.out, t, r.Format())
}

// Result writes an engine result in the effective mode.
func (r *Renderer) Result(res *engine.Result) error {
	return export.WriteResult(r.out, res, r.Format())
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as a YAML document.
func (r *Renderer) YAML(v interface{}) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
