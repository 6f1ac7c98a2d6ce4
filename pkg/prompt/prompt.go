// Package prompt asks for missing model arguments on the terminal.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

// ErrAborted is returned when the user interrupts the prompt.
var ErrAborted = errors.New("prompt aborted")

// LineReader reads one line of input per call.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
	Close() error
}

// Prompter fills in args interactively.
type Prompter struct {
	in  LineReader
	out io.Writer
}

// New returns a Prompter reading from the terminal with line editing.
func New() (*Prompter, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "done",
	})
	if err != nil {
		return nil, fmt.Errorf("init readline: %w", err)
	}
	return &Prompter{in: rl, out: os.Stdout}, nil
}

// NewWithReader returns a Prompter over an arbitrary line source.
func NewWithReader(in LineReader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out}
}

// Close releases the line reader.
func (p *Prompter) Close() error { return p.in.Close() }

// Fill asks for every field of s that args does not provide, in declaration
// order, and returns a new mapping. An empty answer leaves the field out.
// End of input stops prompting early; an interrupt returns ErrAborted.
func (p *Prompter) Fill(ctx context.Context, s *spec.Specification, args map[string]any) (map[string]any, error) {
	out := make(map[string]any, s.Len())
	maps.Copy(out, args)

	for _, f := range s.Fields() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if v, ok := out[f.Key]; ok && v != nil && v != "" {
			continue
		}

		fmt.Fprintln(p.out, describeField(f))
		p.in.SetPrompt(f.Key + "> ")
		line, err := p.in.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			return nil, ErrAborted
		}
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Key, err)
		}
		if line = strings.TrimSpace(line); line != "" {
			out[f.Key] = line
		}
	}
	return out, nil
}

func describeField(f spec.Field) string {
	var b strings.Builder
	b.WriteString(f.Key)
	if f.Name != "" {
		b.WriteString(" - " + f.Name)
	}
	fmt.Fprintf(&b, " [%s", f.Type)
	switch f.Required.Kind {
	case spec.Unconditional:
		b.WriteString(", required")
	case spec.Conditional:
		if len(f.Required.DependsOn) > 0 {
			b.WriteString(", required with " + strings.Join(f.Required.DependsOn, " or "))
		}
	}
	b.WriteString("]")
	if opts, ok := f.ValidationOptions["options"].([]any); ok && len(opts) > 0 {
		names := make([]string, len(opts))
		for i, o := range opts {
			names[i] = fmt.Sprint(o)
		}
		b.WriteString(" one of: " + strings.Join(names, ", "))
	}
	if f.About != "" {
		b.WriteString("\n  " + f.About)
	}
	return b.String()
}
